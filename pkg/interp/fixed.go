package interp

import (
	"errors"
	"fmt"
)

// Fixed 是配置不可变的解析器，可以被多个 goroutine 共享。
//
// 每次调用的可变状态放在调用方传入的 [State] 中；
// 不支持答案缓存，也不能在创建后增删来源。
type Fixed struct {
	e *engine
}

// NewFixed 以与 [New] 相同的选项创建 [Fixed]。
//
// [WithCacheAnswers] 对 Fixed 无效。正则编译失败时返回错误。
func NewFixed(opts ...Option) (*Fixed, error) {
	in := New(opts...)
	for i, src := range in.sources {
		if isNil(src) {
			return nil, fmt.Errorf("interp: value source %d is nil", i)
		}
	}
	e, err := in.engine()
	if err != nil {
		return nil, err
	}

	return &Fixed{e: e}, nil
}

// MustNewFixed 调用 [NewFixed]，失败时 panic，适合包级变量初始化。
func MustNewFixed(opts ...Option) *Fixed {
	f, err := NewFixed(opts...)
	if err != nil {
		panic(err)
	}

	return f
}

// Interpolate 使用 st 解析 input；st 为 nil 时使用新的 [State]。
func (f *Fixed) Interpolate(input string, st *State) (string, error) {
	if st == nil {
		st = NewState()
	}

	return f.e.interpolate(st, input)
}

// Value 按顺序询问 Fixed 的值来源并对结果做完整解析，找不到时返回 nil。
//
// 与表达式扫描不同，这里直接以 expression 为名查找，不需要分隔符。
func (f *Fixed) Value(expression string, st *State) (any, error) {
	if st == nil {
		st = NewState()
	}
	if st.interceptor.HasRecursiveExpression(expression) {
		return nil, newCycleError(st.interceptor, expression, expression)
	}
	st.interceptor.Started(expression)
	defer st.interceptor.Finished(expression)

	for _, src := range f.e.sources {
		v, err := src.Value(expression, DefaultDelimiter)
		if err != nil {
			return nil, fmt.Errorf("interp: resolve %s: %w", expression, err)
		}
		if isNil(v) {
			continue
		}

		return f.e.interpolate(st, Stringify(v))
	}

	return nil, nil
}

// AsValueSource 将 Fixed 包装为 [ValueSource]，用于嵌套解析器。
//
// 解析失败（包括循环）不会中止外层调用，而是记录为诊断信息并视为无法回答。
func (f *Fixed) AsValueSource() ValueSource {
	return &fixedSource{f: f}
}

type fixedSource struct {
	f        *Fixed
	feedback []Feedback
}

func (s *fixedSource) Value(expression string, _ Delimiter) (any, error) {
	v, err := s.f.Value(expression, NewState())
	if err != nil {
		msg := "failed to resolve '" + expression + "'"
		if errors.Is(err, ErrCycle) {
			msg = "cycle while resolving '" + expression + "'"
		}
		s.feedback = append(s.feedback, Feedback{Message: msg, Err: err})

		return nil, nil
	}

	return v, nil
}

func (s *fixedSource) Feedback() []Feedback {
	out := append([]Feedback(nil), s.feedback...)
	for _, src := range s.f.e.sources {
		if fp, ok := src.(FeedbackProvider); ok {
			out = append(out, fp.Feedback()...)
		}
	}

	return out
}

func (s *fixedSource) ClearFeedback() {
	s.feedback = nil
	for _, src := range s.f.e.sources {
		if fp, ok := src.(FeedbackProvider); ok {
			fp.ClearFeedback()
		}
	}
}
