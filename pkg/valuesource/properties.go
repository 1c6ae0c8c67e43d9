package valuesource

import (
	"fmt"

	"github.com/magiconair/properties"

	"github.com/lwmacct/261019-go-pkg-interp/pkg/interp"
)

// Properties 从 .properties 数据中查找值。
//
// 文件内的 ${...} 不会在加载时展开，而是交给解析器处理，
// 这样属性之间的引用同样受循环检测保护。
type Properties struct {
	props *properties.Properties
}

// NewProperties 包装已加载的属性集，p 为 nil 时视为空集。
func NewProperties(p *properties.Properties) *Properties {
	if p == nil {
		p = properties.NewProperties()
	}
	p.DisableExpansion = true

	return &Properties{props: p}
}

func newLoader() *properties.Loader {
	return &properties.Loader{Encoding: properties.UTF8, DisableExpansion: true}
}

// LoadProperties 按顺序加载多个文件，后加载的同名 key 覆盖先前的值。
func LoadProperties(paths ...string) (*Properties, error) {
	p, err := newLoader().LoadAll(paths)
	if err != nil {
		return nil, fmt.Errorf("valuesource: load properties: %w", err)
	}

	return NewProperties(p), nil
}

// ParseProperties 从内存数据解析属性集。
func ParseProperties(data []byte) (*Properties, error) {
	p, err := newLoader().LoadBytes(data)
	if err != nil {
		return nil, fmt.Errorf("valuesource: parse properties: %w", err)
	}

	return NewProperties(p), nil
}

func (s *Properties) Value(expression string, _ interp.Delimiter) (any, error) {
	v, ok := s.props.Get(expression)
	if !ok {
		return nil, nil
	}

	return v, nil
}

// Keys 返回全部 key，顺序与文件中一致。
func (s *Properties) Keys() []string {
	return s.props.Keys()
}

// Len 返回属性数量。
func (s *Properties) Len() int {
	return s.props.Len()
}
