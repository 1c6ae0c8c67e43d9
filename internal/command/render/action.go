package render

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/urfave/cli/v3"

	"github.com/lwmacct/261019-go-pkg-interp/internal/command"
	"github.com/lwmacct/261019-go-pkg-interp/internal/config"
	"github.com/lwmacct/261019-go-pkg-interp/internal/render"
	"github.com/lwmacct/261019-go-pkg-interp/internal/version"
	"github.com/lwmacct/261019-go-pkg-interp/pkg/cfgm"
)

func action(ctx context.Context, cmd *cli.Command) error {
	// 加载配置：默认值 → 配置文件 → 环境变量 → CLI flags
	cfg, err := cfgm.LoadCmd(cmd, config.DefaultConfig(), version.AppRawName,
		cfgm.WithEnvPrefix(command.EnvPrefix),
	)
	if err != nil {
		return err
	}

	r, err := render.New(cfg.Render)
	if err != nil {
		return err
	}
	defer func() { _ = r.Close() }()

	root := cmd.Root()
	args := cmd.Args().Slice()
	if len(args) == 0 || (len(args) == 1 && args[0] == "-") {
		_, err := r.Stream(root.Writer, root.Reader, render.Request{})

		return err
	}

	results, err := r.Files(ctx, args, root.Writer)
	if err != nil {
		return err
	}

	rendered, skipped := 0, 0
	for _, res := range results {
		if res.Skipped {
			skipped++

			continue
		}
		rendered++
		if res.Target != "" {
			slog.Info("Rendered", "source", res.Source, "target", res.Target, "unresolved", len(res.Unresolved))
		}
	}
	if cfg.Render.OutDir != "" {
		_, _ = fmt.Fprintf(root.ErrWriter, "rendered %d, skipped %d\n", rendered, skipped)
	}

	return nil
}
