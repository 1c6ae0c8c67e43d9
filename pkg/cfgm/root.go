package cfgm

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
)

// ErrNoProjectRoot 表示从调用方源文件向上找不到 go.mod。
var ErrNoProjectRoot = errors.New("cfgm: project root not found")

// FindProjectRoot 从调用方源文件所在目录向上查找 go.mod，返回其所在目录。
//
// skip 为 0 表示直接调用 FindProjectRoot 的函数，每多一层封装加 1。
// 二进制在构建机器之外运行时源文件路径通常不存在，此时返回 [ErrNoProjectRoot]。
func FindProjectRoot(skip int) (string, error) {
	_, file, _, ok := runtime.Caller(skip + 1)
	if !ok {
		return "", ErrNoProjectRoot
	}

	dir := filepath.Dir(file)
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrNoProjectRoot
		}
		dir = parent
	}
}
