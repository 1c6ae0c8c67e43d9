package interp

import (
	"log/slog"
	"slices"
)

// Interpolator 在字符串中查找表达式并用值来源的结果替换。
//
// Interpolator 持有可变的答案缓存与来源列表，不能被并发调用；
// 需要共享时使用 [Fixed]。
type Interpolator struct {
	single   Delimiter
	delims   []Delimiter  // 多分隔符模式，nil 表示单分隔符
	pattern  *patternSpec // 正则模式
	patterns *PatternCache

	sources []ValueSource
	post    []PostProcessor
	escape  string
	logger  *slog.Logger

	cacheAnswers bool
	answers      map[string]any
}

// New 创建 Interpolator，默认使用 ${...} 单分隔符模式。
//
// 示例：
//
//	in := interp.New(
//	    interp.WithValueSources(valuesource.Map{"name": "jason"}),
//	    interp.WithEscape(`\`),
//	)
//	out, err := in.Interpolate(`${name} is an \${noun}`)
func New(opts ...Option) *Interpolator {
	in := &Interpolator{
		single:  DefaultDelimiter,
		logger:  slog.Default(),
		answers: make(map[string]any),
	}
	for _, opt := range opts {
		opt(in)
	}
	if in.patterns == nil {
		in.patterns = NewPatternCache()
	}

	return in
}

// Interpolate 使用新的 [SimpleRecursionInterceptor] 解析 input。
func (in *Interpolator) Interpolate(input string) (string, error) {
	return in.InterpolateWith(input, nil)
}

// InterpolateWith 使用调用方提供的循环检测器解析 input。
//
// 发现循环引用时返回 [*CycleError]；值来源或后处理器的错误会中止调用并被包装返回。
// 未开启答案缓存时，调用结束后清空缓存。
func (in *Interpolator) InterpolateWith(input string, ri RecursionInterceptor) (string, error) {
	defer func() {
		if !in.cacheAnswers {
			clear(in.answers)
		}
	}()
	if input == "" {
		return "", nil
	}

	e, err := in.engine()
	if err != nil {
		return "", err
	}
	st := NewState()
	st.SetRecursionInterceptor(ri)
	st.answers = in.answers
	st.cacheAnswers = in.cacheAnswers

	return e.interpolate(st, input)
}

// engine 根据当前配置生成本次调用使用的解析核心。
func (in *Interpolator) engine() (*engine, error) {
	e := &engine{
		sources: slices.Clone(in.sources),
		post:    slices.Clone(in.post),
		escape:  in.escape,
		logger:  in.logger,
	}
	switch {
	case in.pattern != nil:
		loc, err := in.pattern.locator(in.patterns)
		if err != nil {
			return nil, err
		}
		e.loc = loc
	case in.delims != nil:
		e.loc = multiLocator{delims: slices.Clone(in.delims)}
	default:
		e.loc = singleLocator{delim: in.single}
	}

	return e, nil
}

// AddValueSource 在来源列表末尾追加来源。
func (in *Interpolator) AddValueSource(src ValueSource) {
	in.sources = append(in.sources, src)
}

// RemoveValueSource 移除首个与 src 相同的来源，返回是否移除成功。
//
// 函数类型等不可比较的来源无法被移除。
func (in *Interpolator) RemoveValueSource(src ValueSource) bool {
	idx := slices.IndexFunc(in.sources, func(s ValueSource) bool { return sameInstance(s, src) })
	if idx < 0 {
		return false
	}
	in.sources = slices.Delete(in.sources, idx, idx+1)

	return true
}

// AddPostProcessor 追加后处理器。
func (in *Interpolator) AddPostProcessor(p PostProcessor) {
	in.post = append(in.post, p)
}

// RemovePostProcessor 移除首个与 p 相同的后处理器。
func (in *Interpolator) RemovePostProcessor(p PostProcessor) bool {
	idx := slices.IndexFunc(in.post, func(q PostProcessor) bool { return sameInstance(q, p) })
	if idx < 0 {
		return false
	}
	in.post = slices.Delete(in.post, idx, idx+1)

	return true
}

// SetCacheAnswers 开启或关闭跨调用的答案缓存。
func (in *Interpolator) SetCacheAnswers(cache bool) {
	in.cacheAnswers = cache
}

// CacheAnswers 报告是否开启了答案缓存。
func (in *Interpolator) CacheAnswers() bool {
	return in.cacheAnswers
}

// ClearAnswers 清空答案缓存。
func (in *Interpolator) ClearAnswers() {
	clear(in.answers)
}

// SetEscapeString 设置转义串，空串表示不支持转义。
func (in *Interpolator) SetEscapeString(escape string) {
	in.escape = escape
}

// EscapeString 返回当前转义串。
func (in *Interpolator) EscapeString() string {
	return in.escape
}

// AddDelimiterSpec 注册额外的分隔符规格（见 [ParseDelimiter]），切换到多分隔符模式。
//
// 默认分隔符 ${...} 总是最先注册；当前的单分隔符也会被保留。
// 重复的规格会被忽略。
func (in *Interpolator) AddDelimiterSpec(spec string) *Interpolator {
	if in.delims == nil {
		in.delims = []Delimiter{DefaultDelimiter}
		if in.single != DefaultDelimiter {
			in.delims = append(in.delims, in.single)
		}
	}
	if d := ParseDelimiter(spec); !slices.Contains(in.delims, d) {
		in.delims = append(in.delims, d)
	}

	return in
}

// RemoveDelimiterSpec 移除多分隔符模式中的分隔符规格。
func (in *Interpolator) RemoveDelimiterSpec(spec string) bool {
	idx := slices.Index(in.delims, ParseDelimiter(spec))
	if idx < 0 {
		return false
	}
	in.delims = slices.Delete(in.delims, idx, idx+1)

	return true
}

// SetDelimiterSpecs 用 specs 替换全部分隔符，默认分隔符会被重新加入。
func (in *Interpolator) SetDelimiterSpecs(specs ...string) *Interpolator {
	in.delims = []Delimiter{DefaultDelimiter}
	for _, spec := range specs {
		if d := ParseDelimiter(spec); !slices.Contains(in.delims, d) {
			in.delims = append(in.delims, d)
		}
	}

	return in
}

// Delimiters 返回当前生效的分隔符（正则模式下返回 nil）。
func (in *Interpolator) Delimiters() []Delimiter {
	switch {
	case in.pattern != nil:
		return nil
	case in.delims != nil:
		return slices.Clone(in.delims)
	default:
		return []Delimiter{in.single}
	}
}

// Feedback 汇总所有值来源的诊断信息。
func (in *Interpolator) Feedback() []Feedback {
	var out []Feedback
	for _, src := range in.sources {
		if fp, ok := src.(FeedbackProvider); ok {
			out = append(out, fp.Feedback()...)
		}
	}

	return out
}

// ClearFeedback 清空所有值来源的诊断信息。
func (in *Interpolator) ClearFeedback() {
	for _, src := range in.sources {
		if fp, ok := src.(FeedbackProvider); ok {
			fp.ClearFeedback()
		}
	}
}
