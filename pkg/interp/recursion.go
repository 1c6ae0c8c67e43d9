package interp

import (
	"slices"
	"strings"
)

// RecursionInterceptor 记录正在解析中的表达式，用于发现循环引用。
//
// 引擎在解析每个表达式前调用 Started，结束后（包括出错路径）调用 Finished。
type RecursionInterceptor interface {
	// Started 标记表达式开始解析。
	Started(expression string)
	// Finished 标记表达式解析结束。
	Finished(expression string)
	// HasRecursiveExpression 报告表达式是否已开始且尚未结束。
	HasRecursiveExpression(expression string) bool
	// ExpressionCycle 返回从该表达式首次出现处到栈顶的表达式链。
	ExpressionCycle(expression string) []string
	// Clear 清空状态。
	Clear()
}

// SimpleRecursionInterceptor 不做任何规范化，直接记录表达式名。
type SimpleRecursionInterceptor struct {
	stack []string
}

// NewSimpleRecursionInterceptor 创建 [SimpleRecursionInterceptor]。
func NewSimpleRecursionInterceptor() *SimpleRecursionInterceptor {
	return &SimpleRecursionInterceptor{}
}

func (r *SimpleRecursionInterceptor) Started(expression string) {
	r.stack = append(r.stack, expression)
}

func (r *SimpleRecursionInterceptor) Finished(expression string) {
	if idx := lastIndex(r.stack, expression); idx >= 0 {
		r.stack = slices.Delete(r.stack, idx, idx+1)
	}
}

func (r *SimpleRecursionInterceptor) HasRecursiveExpression(expression string) bool {
	return slices.Contains(r.stack, expression)
}

func (r *SimpleRecursionInterceptor) ExpressionCycle(expression string) []string {
	idx := slices.Index(r.stack, expression)
	if idx < 0 {
		return nil
	}

	return slices.Clone(r.stack[idx:])
}

func (r *SimpleRecursionInterceptor) Clear() {
	r.stack = r.stack[:0]
}

// nakedExpr 是去掉前缀后的表达式。
// unprefixed 为 true 表示它未匹配任何前缀且不与带前缀形式互通。
type nakedExpr struct {
	name       string
	unprefixed bool
}

// PrefixAwareRecursionInterceptor 在比较前去掉已知前缀，
// 使 ${project.name} 与 ${pom.name} 被视为同一个表达式。
type PrefixAwareRecursionInterceptor struct {
	prefixes        []string
	allowUnprefixed bool
	stack           []nakedExpr
}

// NewPrefixAwareRecursionInterceptor 创建带前缀规范化的拦截器。
//
// prefixes 按顺序尝试，首个匹配的前缀（以及其后紧跟的一个 "."）会被去掉。
// allowUnprefixed 为 true 时，不带前缀的 "name" 与 "prefix.name" 视为同一表达式；
// 为 false 时两者互不相干，但不带前缀的表达式自身的重复仍会被发现。
func NewPrefixAwareRecursionInterceptor(prefixes []string, allowUnprefixed bool) *PrefixAwareRecursionInterceptor {
	return &PrefixAwareRecursionInterceptor{
		prefixes:        slices.Clone(prefixes),
		allowUnprefixed: allowUnprefixed,
	}
}

func (r *PrefixAwareRecursionInterceptor) normalize(expression string) nakedExpr {
	if trimmed, ok := TrimExpressionPrefix(expression, r.prefixes); ok {
		return nakedExpr{name: trimmed}
	}

	return nakedExpr{name: expression, unprefixed: !r.allowUnprefixed}
}

func (r *PrefixAwareRecursionInterceptor) Started(expression string) {
	r.stack = append(r.stack, r.normalize(expression))
}

func (r *PrefixAwareRecursionInterceptor) Finished(expression string) {
	if idx := lastIndex(r.stack, r.normalize(expression)); idx >= 0 {
		r.stack = slices.Delete(r.stack, idx, idx+1)
	}
}

func (r *PrefixAwareRecursionInterceptor) HasRecursiveExpression(expression string) bool {
	return slices.Contains(r.stack, r.normalize(expression))
}

func (r *PrefixAwareRecursionInterceptor) ExpressionCycle(expression string) []string {
	idx := slices.Index(r.stack, r.normalize(expression))
	if idx < 0 {
		return nil
	}

	cycle := make([]string, 0, len(r.stack)-idx)
	for _, e := range r.stack[idx:] {
		cycle = append(cycle, e.name)
	}

	return cycle
}

func (r *PrefixAwareRecursionInterceptor) Clear() {
	r.stack = r.stack[:0]
}

// TrimExpressionPrefix 去掉 expression 的首个匹配前缀。
//
// 前缀按顺序尝试；去掉前缀后若还以 "." 开头，再去掉这一个点。
// 没有前缀匹配时返回 ("", false)。
func TrimExpressionPrefix(expression string, prefixes []string) (string, bool) {
	for _, prefix := range prefixes {
		if rest, ok := strings.CutPrefix(expression, prefix); ok {
			return strings.TrimPrefix(rest, "."), true
		}
	}

	return "", false
}

func lastIndex[E comparable](s []E, v E) int {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == v {
			return i
		}
	}

	return -1
}
