package valuesource

import (
	"fmt"
	"sync"

	"github.com/lwmacct/261019-go-pkg-interp/pkg/interp"
)

// Shell 按 Shell 参数展开语法回答表达式，变量取自环境变量快照。
//
// 支持语法：
//   - VAR - 变量替换
//   - VAR:-default / VAR-default - fallback
//   - VAR:+alt / VAR+alt - 替代值
//   - VAR:?msg / VAR?msg - 必填校验，失败时返回 error
//   - VAR:=default / VAR=default - 赋值（只写入本来源的快照）
//
// default 等单词不会在这里展开，引擎会对返回值继续插值。
// 单词中不能包含结束标记，${A:-${B}} 这样的嵌套写法不受支持。
type Shell struct {
	mu         sync.Mutex
	vars       map[string]string
	fold       bool
	unsetEmpty bool
}

// NewShell 创建 Shell 语法来源，可使用 [WithEnviron]、[WithCaseInsensitive]、[WithUnsetAsEmpty]。
func NewShell(opts ...EnvOption) *Shell {
	o := applyEnvOptions(opts)

	return &Shell{
		vars:       environMap(o.environ, o.caseInsensitive),
		fold:       o.caseInsensitive,
		unsetEmpty: o.unsetEmpty,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Shell Parameter Expansion
// ═══════════════════════════════════════════════════════════════════════════

func isVarNameStart(ch byte) bool {
	return (ch >= 'A' && ch <= 'Z') || (ch >= 'a' && ch <= 'z') || ch == '_'
}

func isVarNameChar(ch byte) bool {
	return isVarNameStart(ch) || (ch >= '0' && ch <= '9')
}

// parseShellParameter 拆分出变量名、操作符与单词，不是合法语法时 ok 为 false。
func parseShellParameter(expr string) (name, op, word string, ok bool) {
	if expr == "" || !isVarNameStart(expr[0]) {
		return "", "", "", false
	}

	i := 1
	for i < len(expr) && isVarNameChar(expr[i]) {
		i++
	}

	name = expr[:i]
	rest := expr[i:]
	if rest == "" {
		return name, "", "", true
	}

	if len(rest) >= 2 && rest[0] == ':' {
		switch rest[1] {
		case '-', '+', '?', '=':
			return name, rest[:2], rest[2:], true
		}
	}

	switch rest[0] {
	case '-', '+', '?', '=':
		return name, rest[:1], rest[1:], true
	}

	return "", "", "", false
}

func errorMessage(name, word string) error {
	if word == "" {
		return fmt.Errorf("valuesource: %s: parameter null or not set", name)
	}

	return fmt.Errorf("valuesource: %s: %s", name, word)
}

func (s *Shell) Value(expression string, _ interp.Delimiter) (any, error) {
	name, op, word, ok := parseShellParameter(expression)
	if !ok {
		return nil, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := name
	if s.fold {
		key = upper(name)
	}
	val, isSet := s.vars[key]
	nonEmpty := isSet && val != ""

	switch op {
	case "":
		if isSet {
			return val, nil
		}
		if s.unsetEmpty {
			return "", nil
		}

		return nil, nil
	case ":-":
		if !nonEmpty {
			return word, nil
		}
	case "-":
		if !isSet {
			return word, nil
		}
	case ":+":
		if nonEmpty {
			return word, nil
		}

		return "", nil
	case "+":
		if isSet {
			return word, nil
		}

		return "", nil
	case ":?":
		if !nonEmpty {
			return nil, errorMessage(name, word)
		}
	case "?":
		if !isSet {
			return nil, errorMessage(name, word)
		}
	case ":=":
		if !nonEmpty {
			s.vars[key] = word

			return word, nil
		}
	case "=":
		if !isSet {
			s.vars[key] = word

			return word, nil
		}
	}

	return val, nil
}
