package templexp

import (
	"github.com/lwmacct/261019-go-pkg-interp/pkg/interp"
	"github.com/lwmacct/261019-go-pkg-interp/pkg/valuesource"
)

// Escape "$${VAR}" 输出字面量 "${VAR}"。
const Escape = "$"

// New 返回 Shell 参数展开解析器。
//
// 变量取自创建时的环境变量快照（可用 [valuesource.WithEnviron] 替换），
// 未设置的变量展开为空串，":=" 的赋值写入这份快照并对后续展开可见。
func New(opts ...valuesource.EnvOption) *interp.Interpolator {
	opts = append([]valuesource.EnvOption{valuesource.WithUnsetAsEmpty()}, opts...)

	return interp.New(
		interp.WithEscape(Escape),
		interp.WithValueSources(valuesource.NewShell(opts...)),
	)
}

// ExpandTemplate 对输入字符串执行 Shell 参数展开。
//
// 支持语法：
//   - ${VAR} - 变量替换
//   - ${VAR:-default} / ${VAR-default} - fallback
//   - ${VAR:+alt} / ${VAR+alt} - 替代值
//   - ${VAR:?msg} / ${VAR?msg} - 必填校验
//   - ${VAR:=default} / ${VAR=default} - 赋值（仅作用于当前展开）
//
// default 等单词中的 ${...} 会在取值后再展开，但单词本身不能含 "}"。
// 返回展开后的字符串；必填校验失败或循环引用时返回 error。
func ExpandTemplate(text string) (string, error) {
	return New().Interpolate(text)
}
