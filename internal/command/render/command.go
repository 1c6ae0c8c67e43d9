// Package render 提供模板渲染命令。
package render

import (
	"github.com/urfave/cli/v3"

	"github.com/lwmacct/261019-go-pkg-interp/internal/command"
)

// Command 渲染命令
var Command = &cli.Command{
	Name:      "render",
	Usage:     "渲染模板：标准输入、文件或 ** 通配符",
	ArgsUsage: "[template|glob|-]...",
	Action:    action,
	Flags: append(command.RenderFlags(),
		&cli.StringFlag{
			Name:    "render-out-dir",
			Aliases: []string{"out-dir", "o"},
			Value:   command.Defaults.Render.OutDir,
			Usage:   "输出目录，为空时写到标准输出",
		},
		&cli.StringFlag{
			Name:  "render-suffix",
			Value: command.Defaults.Render.Suffix,
			Usage: "输出文件名去掉的模板后缀",
		},
		&cli.StringFlag{
			Name:    "render-cache-file",
			Aliases: []string{"cache-file"},
			Value:   command.Defaults.Render.CacheFile,
			Usage:   "上下文缓存文件，模板与值均未变化时跳过渲染（需要 --out-dir）",
		},
	),
}
