// Package objinterp 对对象树中的每个字符串做插值。
//
// 支持三种输入：
//
//   - 通用树 map[string]any / []any（[Tree]）
//   - 结构体，按 json 标签转换为树，插值后再解码回去（[Struct]）
//   - YAML 文档节点，保留注释与顺序（[YAML]）
//
// map 的 key 不参与插值。
package objinterp

import (
	"fmt"
	"strings"

	yamlv3 "go.yaml.in/yaml/v3"

	"github.com/lwmacct/261019-go-pkg-interp/internal/tree"
	"github.com/lwmacct/261019-go-pkg-interp/pkg/interp"
)

// Tree 返回插值后的新树，node 本身不会被修改。
//
// 错误信息包含出错值所在的路径，如 server.hosts[1]。
func Tree(node any, in *interp.Interpolator) (any, error) {
	return walk(node, in, "")
}

func walk(node any, in *interp.Interpolator, path string) (any, error) {
	switch typed := node.(type) {
	case string:
		out, err := in.Interpolate(typed)
		if err != nil {
			return nil, fmt.Errorf("objinterp: %s: %w", displayPath(path), err)
		}

		return out, nil
	case map[string]any:
		out := make(map[string]any, len(typed))
		for key, value := range typed {
			v, err := walk(value, in, joinPath(path, key))
			if err != nil {
				return nil, err
			}
			out[key] = v
		}

		return out, nil
	case []any:
		out := make([]any, len(typed))
		for i, value := range typed {
			v, err := walk(value, in, fmt.Sprintf("%s[%d]", path, i))
			if err != nil {
				return nil, err
			}
			out[i] = v
		}

		return out, nil
	default:
		return node, nil
	}
}

func joinPath(prefix, key string) string {
	if prefix == "" {
		return key
	}

	return prefix + "." + key
}

func displayPath(path string) string {
	if path == "" {
		return "<root>"
	}

	return path
}

// Struct 对 v 中所有带 json 标签的导出字段做插值，结果写回 v。
//
// 数值等非字符串字段在插值后按弱类型规则解码，例如字符串 "8080" 可以写回 int 字段。
func Struct[T any](v *T, in *interp.Interpolator) error {
	out, err := Tree(tree.FromStruct(v), in)
	if err != nil {
		return err
	}
	if err := tree.Decode(out, v); err != nil {
		return fmt.Errorf("objinterp: decode: %w", err)
	}

	return nil
}

// YAML 对文档中的标量值做插值，mapping 的 key 保持不变。
//
// 未加引号的字符串在插值后重新推断类型，"${PORT}" 展开为 8080 时会被当作整数；
// 加了引号的值始终是字符串。
func YAML(node *yamlv3.Node, in *interp.Interpolator) error {
	if node == nil {
		return nil
	}

	switch node.Kind {
	case yamlv3.DocumentNode, yamlv3.SequenceNode:
		for _, child := range node.Content {
			if err := YAML(child, in); err != nil {
				return err
			}
		}
	case yamlv3.MappingNode:
		for i := 1; i < len(node.Content); i += 2 {
			if err := YAML(node.Content[i], in); err != nil {
				return err
			}
		}
	case yamlv3.ScalarNode:
		return yamlScalar(node, in)
	}

	return nil
}

func yamlScalar(node *yamlv3.Node, in *interp.Interpolator) error {
	if node.ShortTag() != "!!str" {
		return nil
	}

	out, err := in.Interpolate(node.Value)
	if err != nil {
		return fmt.Errorf("objinterp: line %d: %w", node.Line, err)
	}
	if out == node.Value {
		return nil
	}

	node.Value = out
	if node.Style&(yamlv3.TaggedStyle|yamlv3.SingleQuotedStyle|yamlv3.DoubleQuotedStyle|yamlv3.LiteralStyle|yamlv3.FoldedStyle) == 0 {
		node.Tag = ""
	}
	if strings.Contains(out, "\n") && node.Style == 0 {
		node.Style = yamlv3.LiteralStyle
	}

	return nil
}
