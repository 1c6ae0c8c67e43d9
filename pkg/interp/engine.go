package interp

import (
	"bytes"
	"fmt"
	"log/slog"
	"strings"
)

// MaxPasses 多分隔符模式下一次调用最多扫描的轮数。
const MaxPasses = 10

// State 保存一次顶层调用的可变状态。
//
// [Interpolator] 每次调用都会新建 State；[Fixed] 由调用方传入，
// 同一个 State 不能被并发使用。
type State struct {
	interceptor  RecursionInterceptor
	unresolvable map[string]struct{}
	answers      map[string]any
	cacheAnswers bool
}

// NewState 创建使用 [SimpleRecursionInterceptor] 的空状态。
func NewState() *State {
	return &State{
		interceptor:  NewSimpleRecursionInterceptor(),
		unresolvable: make(map[string]struct{}),
	}
}

// SetRecursionInterceptor 替换循环检测器，nil 时恢复为 [SimpleRecursionInterceptor]。
func (s *State) SetRecursionInterceptor(ri RecursionInterceptor) {
	if ri == nil {
		ri = NewSimpleRecursionInterceptor()
	}
	s.interceptor = ri
}

// Unresolvable 报告完整表达式文本是否已被确认无法解析。
func (s *State) Unresolvable(whole string) bool {
	_, ok := s.unresolvable[whole]

	return ok
}

// Clear 清空不可解析集合与循环检测栈，使 State 可被复用。
func (s *State) Clear() {
	clear(s.unresolvable)
	s.interceptor.Clear()
}

// engine 是所有模式共享的解析核心，不同模式只在 locator 上有区别。
type engine struct {
	loc     locator
	sources []ValueSource
	post    []PostProcessor
	escape  string
	logger  *slog.Logger
}

// interpolate 对 input 执行多轮扫描，直到输出不再变化或达到轮数上限。
func (e *engine) interpolate(st *State, input string) (string, error) {
	if input == "" {
		return "", nil
	}

	last := input
	for tries := 1; ; tries++ {
		result, err := e.scan(st, input)
		if err != nil {
			return "", err
		}
		if result == last || tries >= e.loc.passes() {
			return result, nil
		}
		last = result
	}
}

// scan 从左到右扫描一轮，逐个解析表达式并写入结果。
func (e *engine) scan(st *State, input string) (string, error) {
	var buf bytes.Buffer
	buf.Grow(len(input))

	pos := 0
	for pos < len(input) {
		m, ok := e.loc.next(input, pos)
		if !ok {
			break
		}
		buf.WriteString(input[pos:m.start])

		// 未闭合的表达式从起始标记开始原样保留，扫描结束
		if !m.closed {
			pos = m.start

			break
		}

		if e.escaped(input, pos, m.start) {
			buf.Truncate(buf.Len() - len(e.escape))
			buf.WriteString(m.whole)
			pos = m.end

			continue
		}

		value, resolved, err := e.resolve(st, m)
		if err != nil {
			return "", err
		}
		if resolved {
			buf.WriteString(value)
		} else {
			buf.WriteString(m.whole)
		}
		pos = m.end
	}
	buf.WriteString(input[pos:])

	return buf.String(), nil
}

// escaped 报告起始标记前是否紧跟转义串。
// 转义串必须完整落在上一个表达式之后的原样文本内。
func (e *engine) escaped(input string, from, start int) bool {
	if e.escape == "" {
		return false
	}
	escStart := start - len(e.escape)

	return escStart >= from && input[escStart:start] == e.escape
}

// resolve 解析单个表达式；resolved 为 false 时调用方原样输出表达式。
func (e *engine) resolve(st *State, m match) (string, bool, error) {
	if st.Unresolvable(m.whole) {
		return "", false, nil
	}

	expr := strings.TrimPrefix(m.inner, ".")
	ri := st.interceptor
	if ri.HasRecursiveExpression(expr) {
		err := newCycleError(ri, expr, m.whole)
		e.logger.Debug("Expression cycle detected", "expression", m.whole, "cycle", err.Cycle)

		return "", false, err
	}

	ri.Started(expr)
	defer ri.Finished(expr)

	if cached, ok := st.answers[expr]; ok {
		return Stringify(cached), true, nil
	}

	value, err := e.lookup(ri, expr, m)
	if err != nil {
		return "", false, err
	}
	if value == nil {
		st.unresolvable[m.whole] = struct{}{}
		e.logger.Debug("Expression not resolved", "expression", m.whole)

		return "", false, nil
	}

	nested, err := e.interpolate(st, Stringify(value))
	if err != nil {
		return "", false, err
	}

	final, err := e.postProcess(expr, nested)
	if err != nil {
		return "", false, err
	}
	if st.cacheAnswers {
		st.answers[expr] = final
	}

	return Stringify(final), true, nil
}

// lookup 按顺序询问值来源，返回首个可用的值。
//
// 若某个值的字符串形式包含表达式本身，它只会被记为候选而不采用；
// 没有其他来源回答时，这种自引用按循环处理。
func (e *engine) lookup(ri RecursionInterceptor, expr string, m match) (any, error) {
	var best any
	for _, src := range e.sources {
		v, err := src.Value(expr, m.delim)
		if err != nil {
			return nil, fmt.Errorf("interp: resolve %s: %w", m.whole, err)
		}
		if isNil(v) {
			continue
		}
		if strings.Contains(Stringify(v), m.whole) {
			best = v

			continue
		}

		return v, nil
	}
	if best != nil {
		return nil, newCycleError(ri, expr, m.whole)
	}

	return nil, nil
}

func (e *engine) postProcess(expr string, value string) (any, error) {
	for _, p := range e.post {
		nv, err := p.Process(expr, value)
		if err != nil {
			return nil, fmt.Errorf("interp: post-process %s: %w", expr, err)
		}
		if !isNil(nv) {
			return nv, nil
		}
	}

	return value, nil
}
