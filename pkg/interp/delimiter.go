package interp

import "strings"

// Delimiter 描述一对表达式起止标记，例如 "${" 与 "}"。
//
// Delimiter 是值类型，两个 Delimiter 当且仅当 Begin 与 End 都相同时相等，
// 因此注册多个分隔符时会按标记内容去重。
type Delimiter struct {
	Begin string
	End   string
}

// DefaultDelimiter 默认分隔符 ${...}，多分隔符模式下总是最先注册。
var DefaultDelimiter = Delimiter{Begin: "${", End: "}"}

// ParseDelimiter 解析 "PREFIX*SUFFIX" 形式的分隔符规格。
//
// 规则：
//   - "*" 分隔起止标记：`#(*)` → `#(` 与 `)`
//   - 不含 "*" 或 "*" 位于末尾时，结束标记与起始标记相同：`@` → `@...@`
//   - 空规格或起始标记为空时返回 [DefaultDelimiter]
func ParseDelimiter(spec string) Delimiter {
	begin, end, found := strings.Cut(spec, "*")
	if begin == "" {
		return DefaultDelimiter
	}
	if !found || end == "" {
		return Delimiter{Begin: begin, End: begin}
	}

	return Delimiter{Begin: begin, End: end}
}

// String 返回可被 [ParseDelimiter] 还原的规格字符串。
func (d Delimiter) String() string {
	return d.Begin + "*" + d.End
}

func (d Delimiter) valid() bool {
	return d.Begin != "" && d.End != ""
}
