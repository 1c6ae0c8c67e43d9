package valuesource

import "github.com/lwmacct/261019-go-pkg-interp/pkg/interp"

// Map 按 key 直接查找值。
//
// 查找只读，可以被多个 goroutine 共享。
type Map map[string]any

func (m Map) Value(expression string, _ interp.Delimiter) (any, error) {
	v, ok := m[expression]
	if !ok {
		return nil, nil
	}

	return v, nil
}

// Single 只回答一个固定的表达式。
type Single struct {
	expression string
	response   any
}

// NewSingle 创建只对 expression 返回 response 的来源。
func NewSingle(expression string, response any) *Single {
	return &Single{expression: expression, response: response}
}

func (s *Single) Value(expression string, _ interp.Delimiter) (any, error) {
	if expression != s.expression {
		return nil, nil
	}

	return s.response, nil
}
