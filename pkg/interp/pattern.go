package interp

import (
	"fmt"
	"regexp"
	"sync"
)

// DefaultPattern 正则模式的默认表达式，捕获组 1 为表达式名。
const DefaultPattern = `\$\{(.+?)\}`

// PatternCache 缓存已编译的正则，可在多个 [Interpolator] 间共享。
//
// 查找与写入在同一把锁内完成，可安全地并发使用。
type PatternCache struct {
	mu       sync.Mutex
	patterns map[string]*regexp.Regexp
}

// NewPatternCache 创建空的 [PatternCache]。
func NewPatternCache() *PatternCache {
	return &PatternCache{patterns: make(map[string]*regexp.Regexp)}
}

// Get 返回 expr 对应的已编译正则，首次使用时编译并缓存。
func (c *PatternCache) Get(expr string) (*regexp.Regexp, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if re, ok := c.patterns[expr]; ok {
		return re, nil
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("interp: compile pattern %q: %w", expr, err)
	}
	c.patterns[expr] = re

	return re, nil
}

// Len 返回已缓存的正则数量。
func (c *PatternCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.patterns)
}

// patternSpec 描述正则模式的配置。
type patternSpec struct {
	start  string // 起始正则，为空时使用默认 ${...}
	end    string
	prefix string // 可选的前缀正则，匹配到的前缀不计入表达式名
}

// locator 从缓存中取出（或编译）本次调用使用的正则。
func (p patternSpec) locator(cache *PatternCache) (regexLocator, error) {
	var (
		expr  string
		group = 1
		delim = DefaultDelimiter
	)
	switch {
	case p.start != "" || p.end != "":
		delim = Delimiter{Begin: p.start, End: p.end}
		expr = p.start + p.end
		if p.prefix != "" {
			expr = p.start + p.prefix + p.end
			group = 2
		}
	case p.prefix != "":
		expr = `\$\{(` + p.prefix + `)?(.+?)\}`
		group = 2
	default:
		expr = DefaultPattern
	}

	re, err := cache.Get(expr)
	if err != nil {
		return regexLocator{}, err
	}

	return regexLocator{re: re, group: group, delim: delim}, nil
}
