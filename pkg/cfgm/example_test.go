// Author: lwmacct (https://github.com/lwmacct)
package cfgm_test

import (
	"fmt"
	"os"

	"github.com/lwmacct/261019-go-pkg-interp/pkg/cfgm"
)

// Example_defaultPaths 演示 DefaultPaths 的搜索顺序。
func Example_defaultPaths() {
	// 不指定应用名称时，返回基础路径
	paths := cfgm.DefaultPaths()
	fmt.Println("基础路径数量:", len(paths))

	// 指定应用名称时，会包含应用专属配置路径
	paths = cfgm.DefaultPaths("myapp")
	fmt.Println("带应用名路径数量:", len(paths))

	// Output:
	// 基础路径数量: 2
	// 带应用名路径数量: 5
}

// Example_load 演示如何加载配置。
//
// Load 函数按以下优先级合并配置:
//  1. 默认值 (最低优先级)
//  2. 配置文件
//  3. 环境变量
//  4. CLI flags (最高优先级)
func Example_load() {
	type Config struct {
		Name  string `json:"name"`
		Debug bool   `json:"debug"`
	}

	defaultCfg := Config{
		Name:  "default-app",
		Debug: false,
	}

	// 使用函数选项模式加载配置
	// 配置文件不存在时，使用默认值
	cfg, err := cfgm.Load(defaultCfg,
		cfgm.WithConfigPaths("nonexistent.yaml"),
	)
	if err != nil {
		fmt.Println("加载失败:", err)

		return
	}

	fmt.Println("Name:", cfg.Name)
	fmt.Println("Debug:", cfg.Debug)

	// Output:
	// Name: default-app
	// Debug: false
}

// Example_load_withEnvPrefix 演示如何通过环境变量加载配置。
//
// 环境变量命名规则：
//   - 前缀 + 大写的配置 key
//   - 点号 (.) 和连字符 (-) 转为下划线 (_)
func Example_load_withEnvPrefix() {
	type Config struct {
		Name  string `json:"name"`
		Debug bool   `json:"debug"`
	}

	defaultCfg := Config{
		Name:  "default-app",
		Debug: false,
	}

	// 使用环境变量前缀 "MYAPP_"
	// 支持的环境变量：MYAPP_NAME, MYAPP_DEBUG
	cfg, err := cfgm.Load(defaultCfg,
		cfgm.WithEnvPrefix("MYAPP_"),
	)
	if err != nil {
		fmt.Println("加载失败:", err)

		return
	}

	// 如果设置了 MYAPP_NAME=prod-app，则 cfg.Name 为 "prod-app"
	// 如果没有设置环境变量，则使用默认值
	fmt.Println("Name:", cfg.Name)
	fmt.Println("Debug:", cfg.Debug)

	// Output:
	// Name: default-app
	// Debug: false
}

// Example_load_withJSONConfig 演示如何加载 JSON 格式的配置文件。
//
// Load 函数会根据文件扩展名自动选择解析器：
//   - .yaml, .yml → YAML 解析器
//   - .json → JSON 解析器
func Example_load_withJSONConfig() {
	type Config struct {
		Name  string `json:"name"`
		Debug bool   `json:"debug"`
	}

	// 创建临时 JSON 配置文件
	configContent := `{
  "name": "json-app",
  "debug": true
}`
	tmpFile := "/tmp/example_json_test.json"
	if err := os.WriteFile(tmpFile, []byte(configContent), 0600); err != nil {
		fmt.Println("创建临时文件失败:", err)

		return
	}
	defer func() { _ = os.Remove(tmpFile) }()

	defaultCfg := Config{
		Name:  "default-app",
		Debug: false,
	}

	// 根据 .json 扩展名自动使用 JSON 解析器
	cfg, err := cfgm.Load(defaultCfg,
		cfgm.WithConfigPaths(tmpFile),
	)
	if err != nil {
		fmt.Println("加载失败:", err)

		return
	}

	fmt.Println("Name:", cfg.Name)
	fmt.Println("Debug:", cfg.Debug)

	// Output:
	// Name: json-app
	// Debug: true
}

// Example_withAppName 演示如何使用 WithAppName 设置应用名称。
//
// WithAppName 会自动配置默认的配置文件搜索路径（如果未通过 WithConfigPaths 显式设置）。
func Example_withAppName() {
	type Config struct {
		Name  string `json:"name"`
		Debug bool   `json:"debug"`
	}

	defaultCfg := Config{
		Name:  "default-app",
		Debug: false,
	}

	// 使用 WithAppName 设置应用名称
	// 会自动搜索 .myapp.yaml, ~/.myapp.yaml, /etc/myapp/config.yaml 等路径
	cfg, err := cfgm.Load(defaultCfg,
		cfgm.WithAppName("myapp"),
	)
	if err != nil {
		fmt.Println("加载失败:", err)

		return
	}

	// 配置文件不存在时，使用默认值
	fmt.Println("Name:", cfg.Name)
	fmt.Println("Debug:", cfg.Debug)

	// Output:
	// Name: default-app
	// Debug: false
}

// Example_load_withInterpolation 演示配置文件中的 Shell 参数展开。
func Example_load_withInterpolation() {
	type Config struct {
		URL   string `json:"url"`
		Model string `json:"model"`
		Raw   string `json:"raw"`
	}

	_ = os.Setenv("EXAMPLE_HOST", "db.internal")
	defer func() { _ = os.Unsetenv("EXAMPLE_HOST") }()

	configContent := `url: "postgres://${EXAMPLE_HOST}:5432"
model: "${EXAMPLE_MODEL:-gpt-4}"
raw: "$${EXAMPLE_HOST}"
`
	tmpFile := "/tmp/example_interp_test.yaml"
	if err := os.WriteFile(tmpFile, []byte(configContent), 0600); err != nil {
		fmt.Println("创建临时文件失败:", err)

		return
	}
	defer func() { _ = os.Remove(tmpFile) }()

	cfg, err := cfgm.Load(Config{}, cfgm.WithConfigPaths(tmpFile))
	if err != nil {
		fmt.Println("加载失败:", err)

		return
	}

	fmt.Println("URL:", cfg.URL)
	fmt.Println("Model:", cfg.Model)
	fmt.Println("Raw:", cfg.Raw)

	// Output:
	// URL: postgres://db.internal:5432
	// Model: gpt-4
	// Raw: ${EXAMPLE_HOST}
}
