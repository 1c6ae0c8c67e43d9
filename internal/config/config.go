// Package config 提供应用配置管理。
//
// 配置加载优先级 (从低到高)：
//  1. 默认值 - DefaultConfig() 函数中定义
//  2. 配置文件 - 通过 WithAppName / WithConfigPaths 选项设置
//  3. 环境变量 - 通过 WithEnvPrefix 选项启用
//  4. CLI flags - 通过 WithCommand 选项设置
package config

import (
	"time"

	"github.com/lwmacct/261019-go-pkg-interp/pkg/valuesource"
)

// Config 应用配置。
type Config struct {
	Server ServerConfig `json:"server" desc:"服务端配置"`
	Client ClientConfig `json:"client" desc:"客户端配置"`
	Render RenderConfig `json:"render" desc:"渲染配置"`
}

// ServerConfig 服务端配置。
//
//nolint:tagliatelle
type ServerConfig struct {
	Addr     string        `json:"addr" desc:"服务器监听地址"`
	Timeout  time.Duration `json:"timeout" desc:"HTTP 读写超时"`
	Idletime time.Duration `json:"idletime" desc:"HTTP 空闲超时"`
	MaxBody  int64         `json:"max-body" desc:"POST /render 请求体上限（字节）"`
}

// ClientConfig 客户端配置。
type ClientConfig struct {
	URL     string        `json:"url" desc:"服务器地址"`
	Timeout time.Duration `json:"timeout" desc:"请求超时时间"`
	Retries int           `json:"retries" desc:"重试次数"`
}

// RenderConfig 渲染配置，render 命令与服务端共用。
//
//nolint:tagliatelle
type RenderConfig struct {
	Delimiters    []string      `json:"delimiters" desc:"分隔符规格，如 ${*}、@"`
	Escape        string        `json:"escape" desc:"转义串"`
	Props         []string      `json:"props" desc:"properties 值文件"`
	Values        []string      `json:"values" desc:"YAML 值文件，按路径取值"`
	Defines       []string      `json:"defines" desc:"直接定义的值 key=value"`
	EnvIgnoreCase bool          `json:"env-ignore-case" desc:"环境变量名忽略大小写"`
	NoEnv         bool          `json:"no-env" desc:"不使用环境变量"`
	SQLite        string        `json:"sqlite" desc:"SQLite 值库 DSN"`
	SQLQuery      string        `json:"sql-query" desc:"SQLite 取值查询"`
	SQLTimeout    time.Duration `json:"sql-timeout" desc:"单次查询超时"`
	CacheFile     string        `json:"cache-file" desc:"上下文缓存文件，值未变化时跳过渲染"`
	OutDir        string        `json:"out-dir" desc:"输出目录，为空时写到标准输出"`
	Suffix        string        `json:"suffix" desc:"输出文件名去掉的模板后缀"`
	Strict        bool          `json:"strict" desc:"存在未解析的表达式时失败"`
}

// DefaultConfig 返回默认配置。
// 注意：internal/command/command.go 中的 Defaults 变量引用此函数以实现单一配置来源。
func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Addr:     ":40117",
			Timeout:  15 * time.Second,
			Idletime: 60 * time.Second,
			MaxBody:  1 << 20,
		},
		Client: ClientConfig{
			URL:     `${API_BASE_URL:-http://localhost:40117}`,
			Timeout: 30 * time.Second,
			Retries: 3,
		},
		Render: RenderConfig{
			SQLQuery:   valuesource.DefaultSQLQuery,
			SQLTimeout: valuesource.DefaultSQLTimeout,
			Suffix:     ".tmpl",
		},
	}
}
