package valuesource

import (
	"strings"
	"sync"

	"github.com/lwmacct/261019-go-pkg-interp/pkg/interp"
)

// FeedbackLog 累积诊断信息，嵌入后即实现 [interp.FeedbackProvider]。
type FeedbackLog struct {
	mu    sync.Mutex
	items []interp.Feedback
}

// AddFeedback 记录一条诊断信息，err 可以为 nil。
func (l *FeedbackLog) AddFeedback(message string, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.items = append(l.items, interp.Feedback{Message: message, Err: err})
}

// Feedback 返回已记录诊断信息的副本。
func (l *FeedbackLog) Feedback() []interp.Feedback {
	l.mu.Lock()
	defer l.mu.Unlock()

	return append([]interp.Feedback(nil), l.items...)
}

// ClearFeedback 清空诊断信息。
func (l *FeedbackLog) ClearFeedback() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.items = nil
}

// DefaultFeedbackMessage [Feedbacking] 的默认消息，${expression} 会被替换为表达式名。
const DefaultFeedbackMessage = "'${expression}' not resolved"

// Feedbacking 从不回答，只为每个到达它的表达式记录一条诊断信息。
//
// 放在来源链末尾，即可得到所有未解析表达式的列表。
type Feedbacking struct {
	FeedbackLog
	message string
}

// NewFeedbacking 使用 [DefaultFeedbackMessage] 创建 [Feedbacking]。
func NewFeedbacking() *Feedbacking {
	return NewFeedbackingMessage(DefaultFeedbackMessage)
}

// NewFeedbackingMessage 使用自定义消息创建 [Feedbacking]。
func NewFeedbackingMessage(message string) *Feedbacking {
	return &Feedbacking{message: message}
}

func (s *Feedbacking) Value(expression string, _ interp.Delimiter) (any, error) {
	s.AddFeedback(strings.ReplaceAll(s.message, "${expression}", expression), nil)

	return nil, nil
}
