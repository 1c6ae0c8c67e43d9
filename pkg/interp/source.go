package interp

import (
	"fmt"
	"reflect"
)

// ValueSource 按表达式名查找值。
//
// 返回 nil 表示该来源无法回答，引擎会继续询问下一个来源；
// 返回 error 会中止整个 Interpolate 调用。
// delim 为匹配到的分隔符，来源可据此只回答特定语法（如只回答 @...@）。
type ValueSource interface {
	Value(expression string, delim Delimiter) (any, error)
}

// ValueSourceFunc 将函数适配为 [ValueSource]。
type ValueSourceFunc func(expression string, delim Delimiter) (any, error)

func (f ValueSourceFunc) Value(expression string, delim Delimiter) (any, error) {
	return f(expression, delim)
}

// LookupFunc 将不关心分隔符的查找函数适配为 [ValueSource]。
type LookupFunc func(expression string) (any, error)

func (f LookupFunc) Value(expression string, _ Delimiter) (any, error) {
	return f(expression)
}

// PostProcessor 在值被替换进结果前对其做变换。
//
// 返回 nil 表示不做修改，交给下一个处理器；首个非 nil 结果生效。
type PostProcessor interface {
	Process(expression string, value any) (any, error)
}

// PostProcessorFunc 将函数适配为 [PostProcessor]。
type PostProcessorFunc func(expression string, value any) (any, error)

func (f PostProcessorFunc) Process(expression string, value any) (any, error) {
	return f(expression, value)
}

// Feedback 是解析过程中产生的非致命诊断信息。
type Feedback struct {
	Message string
	Err     error
}

func (f Feedback) String() string {
	switch {
	case f.Err == nil:
		return f.Message
	case f.Message == "":
		return f.Err.Error()
	default:
		return f.Message + ": " + f.Err.Error()
	}
}

// FeedbackProvider 由需要上报诊断信息的 [ValueSource] 实现。
type FeedbackProvider interface {
	Feedback() []Feedback
	ClearFeedback()
}

// Stringify 返回值的字符串形式，用于替换与比较。
func Stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	default:
		return fmt.Sprint(v)
	}
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	default:
		return false
	}
}

// sameInstance 比较两个接口值是否指向同一实现，不可比较的类型返回 false 而不是 panic。
func sameInstance(a, b any) bool {
	ta := reflect.TypeOf(a)
	if ta == nil || ta != reflect.TypeOf(b) || !ta.Comparable() {
		return false
	}

	return a == b
}
