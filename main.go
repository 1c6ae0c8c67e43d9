package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/lwmacct/261019-go-pkg-interp/internal/command/client"
	"github.com/lwmacct/261019-go-pkg-interp/internal/command/render"
	"github.com/lwmacct/261019-go-pkg-interp/internal/command/server"
	"github.com/lwmacct/261019-go-pkg-interp/internal/version"
)

func main() {
	app := &cli.Command{
		Name:    version.AppRawName,
		Usage:   "字符串插值工具",
		Version: version.GetVersion(),
		Commands: []*cli.Command{
			version.Command,
			render.Command,
			client.Command,
			server.Command,
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
