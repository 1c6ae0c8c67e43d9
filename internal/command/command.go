// Package command 提供客户端、服务端与渲染命令的命令行功能。
package command

import (
	"github.com/urfave/cli/v3"

	"github.com/lwmacct/261019-go-pkg-interp/internal/config"
)

// Defaults 为默认配置的单一来源。
var Defaults = config.DefaultConfig()

// EnvPrefix 配置项对应的环境变量前缀，如 INTERP_RENDER_ESCAPE。
const EnvPrefix = "INTERP_"

// RenderFlags 返回 render 与 server 共用的值来源 flags。
//
// flag 名与配置路径一一对应（render.props → --render-props），由 cfgm 映射。
func RenderFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringSliceFlag{
			Name:    "render-delimiters",
			Aliases: []string{"delimiter"},
			Value:   Defaults.Render.Delimiters,
			Usage:   "分隔符规格，可重复，如 '${*}'、'@'、'#(*)'",
		},
		&cli.StringFlag{
			Name:    "render-escape",
			Aliases: []string{"escape"},
			Value:   Defaults.Render.Escape,
			Usage:   "转义串，如 '\\'",
		},
		&cli.StringSliceFlag{
			Name:    "render-props",
			Aliases: []string{"props"},
			Value:   Defaults.Render.Props,
			Usage:   "properties 值文件，可重复",
		},
		&cli.StringSliceFlag{
			Name:    "render-values",
			Aliases: []string{"values", "f"},
			Value:   Defaults.Render.Values,
			Usage:   "YAML/JSON 值文件，可重复，后者优先",
		},
		&cli.StringSliceFlag{
			Name:    "render-defines",
			Aliases: []string{"define", "D"},
			Value:   Defaults.Render.Defines,
			Usage:   "直接定义值 key=value，可重复",
		},
		&cli.BoolFlag{
			Name:  "render-env-ignore-case",
			Value: Defaults.Render.EnvIgnoreCase,
			Usage: "环境变量名忽略大小写",
		},
		&cli.BoolFlag{
			Name:  "render-no-env",
			Value: Defaults.Render.NoEnv,
			Usage: "不使用环境变量",
		},
		&cli.StringFlag{
			Name:    "render-sqlite",
			Aliases: []string{"sqlite"},
			Value:   Defaults.Render.SQLite,
			Usage:   "SQLite 值库 DSN",
		},
		&cli.StringFlag{
			Name:  "render-sql-query",
			Value: Defaults.Render.SQLQuery,
			Usage: "SQLite 取值查询，唯一参数为表达式名",
		},
		&cli.DurationFlag{
			Name:  "render-sql-timeout",
			Value: Defaults.Render.SQLTimeout,
			Usage: "单次查询超时",
		},
		&cli.BoolFlag{
			Name:    "render-strict",
			Aliases: []string{"strict"},
			Value:   Defaults.Render.Strict,
			Usage:   "存在未解析的表达式时失败",
		},
	}
}
