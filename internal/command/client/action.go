package client

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/lwmacct/261019-go-pkg-interp/internal/command"
	"github.com/lwmacct/261019-go-pkg-interp/internal/config"
	"github.com/lwmacct/261019-go-pkg-interp/internal/version"
	"github.com/lwmacct/261019-go-pkg-interp/pkg/cfgm"
)

func newClient(cmd *cli.Command) (*Client, error) {
	cfg, err := cfgm.LoadCmd(cmd, config.DefaultConfig(), version.AppRawName,
		cfgm.WithEnvPrefix(command.EnvPrefix),
	)
	if err != nil {
		return nil, err
	}

	return New(cfg.Client)
}

func healthAction(ctx context.Context, cmd *cli.Command) error {
	c, err := newClient(cmd)
	if err != nil {
		return err
	}
	if err := c.Health(ctx); err != nil {
		return err
	}

	_, err = fmt.Fprintln(cmd.Root().Writer, "ok")

	return err
}

func renderAction(ctx context.Context, cmd *cli.Command) error {
	c, err := newClient(cmd)
	if err != nil {
		return err
	}

	var src io.Reader = cmd.Root().Reader
	if name := cmd.Args().First(); name != "" && name != "-" {
		f, err := os.Open(name)
		if err != nil {
			return err
		}
		defer func() { _ = f.Close() }()
		src = f
	}
	template, err := io.ReadAll(src)
	if err != nil {
		return err
	}

	resp, err := c.Render(ctx, RenderRequest{
		Template:   string(template),
		Delimiters: cmd.StringSlice("delimiter"),
		Escape:     cmd.String("escape"),
		Defines:    cmd.StringSlice("define"),
	})
	if err != nil {
		return err
	}
	for _, name := range resp.Unresolved {
		slog.Warn("Expression not resolved", "expression", name)
	}

	_, err = io.WriteString(cmd.Root().Writer, resp.Text)

	return err
}
