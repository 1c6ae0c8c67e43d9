package valuesource

import (
	"os"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/lwmacct/261019-go-pkg-interp/pkg/interp"
)

// EnvPrefix 环境变量表达式的可选前缀，如 ${env.HOME}。
const EnvPrefix = "env."

// Env 从环境变量快照中查找值。
//
// 快照在创建时生成，之后对进程环境的修改不可见。
type Env struct {
	vars            map[string]string
	caseInsensitive bool
}

// EnvOption 配置 [Env]。
type EnvOption func(*envOptions)

type envOptions struct {
	environ         []string
	caseInsensitive bool
	unsetEmpty      bool
}

// WithCaseInsensitive 查找时忽略大小写（key 统一折叠为大写）。
func WithCaseInsensitive() EnvOption {
	return func(o *envOptions) {
		o.caseInsensitive = true
	}
}

// WithEnviron 使用给定的 KEY=VALUE 列表代替 os.Environ()。
func WithEnviron(environ []string) EnvOption {
	return func(o *envOptions) {
		o.environ = environ
	}
}

// WithUnsetAsEmpty 未设置的变量展开为空串而不是保留原样，仅对 [Shell] 生效。
func WithUnsetAsEmpty() EnvOption {
	return func(o *envOptions) {
		o.unsetEmpty = true
	}
}

// NewEnv 创建环境变量来源。
func NewEnv(opts ...EnvOption) *Env {
	o := applyEnvOptions(opts)

	return &Env{
		vars:            environMap(o.environ, o.caseInsensitive),
		caseInsensitive: o.caseInsensitive,
	}
}

func applyEnvOptions(opts []EnvOption) envOptions {
	o := envOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.environ == nil {
		o.environ = os.Environ()
	}

	return o
}

// environMap 将 KEY=VALUE 列表转换为 map，fold 为 true 时 key 折叠为大写。
func environMap(environ []string, fold bool) map[string]string {
	vars := make(map[string]string, len(environ))
	for _, env := range environ {
		key, value, ok := strings.Cut(env, "=")
		if !ok || key == "" {
			continue
		}
		if fold {
			key = upper(key)
		}
		vars[key] = value
	}

	return vars
}

// upper 每次新建 Caser，Caser 有内部状态不能跨 goroutine 共享。
func upper(s string) string {
	return cases.Upper(language.Und).String(s)
}

func (s *Env) Value(expression string, _ interp.Delimiter) (any, error) {
	key := strings.TrimPrefix(expression, EnvPrefix)
	if s.caseInsensitive {
		key = upper(key)
	}
	v, ok := s.vars[key]
	if !ok {
		return nil, nil
	}

	return v, nil
}

// Lookup 按原始变量名查找，不处理前缀。
func (s *Env) Lookup(name string) (string, bool) {
	if s.caseInsensitive {
		name = upper(name)
	}
	v, ok := s.vars[name]

	return v, ok
}
