// Package client 提供渲染服务的 HTTP 客户端命令。
package client

import (
	"github.com/urfave/cli/v3"

	"github.com/lwmacct/261019-go-pkg-interp/internal/command"
	"github.com/lwmacct/261019-go-pkg-interp/internal/version"
)

// Command 客户端命令
var Command = &cli.Command{
	Name:  "client",
	Usage: "渲染服务客户端",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "client-url",
			Aliases: []string{"s"},
			Value:   command.Defaults.Client.URL,
			Usage:   "服务器地址",
		},
		&cli.DurationFlag{
			Name:  "client-timeout",
			Value: command.Defaults.Client.Timeout,
			Usage: "请求超时时间",
		},
		&cli.IntFlag{
			Name:  "client-retries",
			Value: command.Defaults.Client.Retries,
			Usage: "重试次数",
		},
	},
	Commands: []*cli.Command{
		version.Command,
		{
			Name:   "health",
			Usage:  "检查服务器健康状态",
			Action: healthAction,
		},
		{
			Name:      "render",
			Usage:     "发送模板到服务器渲染，无参数时读取标准输入",
			ArgsUsage: "[file|-]",
			Action:    renderAction,
			Flags: []cli.Flag{
				&cli.StringSliceFlag{
					Name:    "define",
					Aliases: []string{"D"},
					Usage:   "请求级定义 key=value，可重复",
				},
				&cli.StringSliceFlag{
					Name:  "delimiter",
					Usage: "分隔符规格，可重复",
				},
				&cli.StringFlag{
					Name:  "escape",
					Usage: "转义串",
				},
			},
		},
	},
}
