package valuesource

import (
	"fmt"
	"os"
	"sync"

	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"

	"github.com/lwmacct/261019-go-pkg-interp/internal/tree"
	"github.com/lwmacct/261019-go-pkg-interp/pkg/interp"
)

// Object 在对象树中按路径查找值，如 build.directory 或 modules[0].name。
//
// 结构体按 json 标签转换为树，路径语法为 JSONPath 去掉开头的 "$."。
// 无法解析的路径记录为诊断信息并视为无法回答。
type Object struct {
	FeedbackLog

	root any

	mu    sync.RWMutex
	paths map[string]jp.Expr
}

// NewObject 包装任意 Go 值（结构体、map、切片）。
func NewObject(v any) *Object {
	return &Object{
		root:  tree.From(v),
		paths: make(map[string]jp.Expr),
	}
}

// ParseJSON 从 JSON 数据创建 [Object]。
func ParseJSON(data []byte) (*Object, error) {
	var root any
	if err := oj.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("valuesource: parse json: %w", err)
	}

	return NewObject(root), nil
}

// LoadYAML 按顺序加载 YAML（或 .json）文件并深度合并，后加载的文件优先。
func LoadYAML(paths ...string) (*Object, error) {
	root := make(map[string]any)
	for _, path := range paths {
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("valuesource: read %s: %w", path, err)
		}
		data, err := tree.Parse(path, content)
		if err != nil {
			return nil, fmt.Errorf("valuesource: parse %s: %w", path, err)
		}
		tree.Merge(root, data)
	}

	return NewObject(root), nil
}

func (s *Object) path(expression string) (jp.Expr, error) {
	s.mu.RLock()
	cached, ok := s.paths[expression]
	s.mu.RUnlock()
	if ok {
		return cached, nil
	}

	expr, err := jp.ParseString("$." + expression)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.paths[expression] = expr
	s.mu.Unlock()

	return expr, nil
}

func (s *Object) Value(expression string, _ interp.Delimiter) (any, error) {
	if s.root == nil || expression == "" {
		return nil, nil
	}

	expr, err := s.path(expression)
	if err != nil {
		s.AddFeedback(fmt.Sprintf("failed to parse path '%s'", expression), err)

		return nil, nil
	}

	results := expr.Get(s.root)
	if len(results) == 0 {
		return nil, nil
	}

	return results[0], nil
}

// Keys 返回对象树中所有叶子的点分路径。
func (s *Object) Keys() []string {
	m, ok := s.root.(map[string]any)
	if !ok {
		return nil
	}

	return tree.Keys(m)
}
