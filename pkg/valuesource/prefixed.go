package valuesource

import "github.com/lwmacct/261019-go-pkg-interp/pkg/interp"

// Prefixed 去掉表达式的前缀后交给被包装的来源。
//
// 没有匹配前缀的表达式只在 allowUnprefixed 为 true 时才会被转发。
// 被包装来源的诊断信息会透传。
type Prefixed struct {
	src             interp.ValueSource
	prefixes        []string
	allowUnprefixed bool
}

// NewPrefixed 创建前缀包装器，前缀按顺序尝试，如 "project." 与 "pom."。
func NewPrefixed(src interp.ValueSource, prefixes []string, allowUnprefixed bool) *Prefixed {
	return &Prefixed{
		src:             src,
		prefixes:        append([]string(nil), prefixes...),
		allowUnprefixed: allowUnprefixed,
	}
}

func (s *Prefixed) Value(expression string, delim interp.Delimiter) (any, error) {
	trimmed, ok := interp.TrimExpressionPrefix(expression, s.prefixes)
	if !ok {
		if !s.allowUnprefixed {
			return nil, nil
		}
		trimmed = expression
	}

	return s.src.Value(trimmed, delim)
}

func (s *Prefixed) Feedback() []interp.Feedback {
	if fp, ok := s.src.(interp.FeedbackProvider); ok {
		return fp.Feedback()
	}

	return nil
}

func (s *Prefixed) ClearFeedback() {
	if fp, ok := s.src.(interp.FeedbackProvider); ok {
		fp.ClearFeedback()
	}
}
