package interp

import (
	"errors"
	"fmt"
	"strings"
)

// ErrCycle 表达式循环引用，可用 errors.Is 判断。
var ErrCycle = errors.New("interp: expression cycle")

// CycleError 描述一次被发现的循环引用。
type CycleError struct {
	// Expression 触发检测的表达式名（已去掉分隔符）。
	Expression string
	// WholeExpression 触发检测的完整表达式文本（包含分隔符）。
	WholeExpression string
	// Cycle 当前解析链，末尾是重复出现的表达式。
	Cycle []string
}

func newCycleError(ri RecursionInterceptor, expression, whole string) *CycleError {
	return &CycleError{
		Expression:      expression,
		WholeExpression: whole,
		Cycle:           append(ri.ExpressionCycle(expression), expression),
	}
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("interp: detected recursive expression cycle in '%s' (%s): %s",
		e.Expression, e.WholeExpression, strings.Join(e.Cycle, " -> "))
}

// Is 使 errors.Is(err, ErrCycle) 成立。
func (e *CycleError) Is(target error) bool {
	return target == ErrCycle
}
