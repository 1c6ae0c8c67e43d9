// Package version 提供构建信息与 version 子命令。
//
// 构建时通过 -ldflags 注入：
//
//	go build -ldflags "-X github.com/lwmacct/261019-go-pkg-interp/internal/version.Version=v1.2.3 \
//	    -X github.com/lwmacct/261019-go-pkg-interp/internal/version.Commit=$(git rev-parse --short HEAD)"
package version

import (
	"context"
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/urfave/cli/v3"
)

// AppRawName 应用名称，用于默认配置路径与 User-Agent。
const AppRawName = "interp"

var (
	// Version 语义化版本号，未注入时取模块版本。
	Version = ""
	// Commit 构建时的提交哈希。
	Commit = ""
	// BuildTime 构建时间。
	BuildTime = ""
)

// GetVersion 返回版本号，未注入且无法从构建信息获取时返回 "dev"。
func GetVersion() string {
	if Version != "" {
		return Version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}

	return "dev"
}

// Info 返回多行构建信息。
func Info() string {
	return fmt.Sprintf("%s %s\ncommit: %s\nbuilt: %s\ngo: %s %s/%s",
		AppRawName, GetVersion(), orUnknown(Commit), orUnknown(BuildTime),
		runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}

	return s
}

// Command version 子命令。
var Command = &cli.Command{
	Name:  "version",
	Usage: "显示版本信息",
	Action: func(_ context.Context, cmd *cli.Command) error {
		_, err := fmt.Fprintln(cmd.Root().Writer, Info())

		return err
	},
}
