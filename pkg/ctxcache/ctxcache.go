// Package ctxcache 记录一次插值用到的表达式与值，并持久化为缓存文件，
// 下次运行时据此判断输出是否需要重新生成。
//
// 缓存文件第一行是全部值按插入顺序拼接后 SHA-1 的大写十六进制，
// 之后每行一个表达式名。同一个表达式得到过不同的值时，本次结果不可缓存。
//
//	cache := ctxcache.New("target/.interp-cache")
//	in := interp.New(
//	    interp.WithPostProcessors(cache.Recorder()),
//	    interp.WithValueSources(src),
//	)
//	out, err := in.Interpolate(text)
//	// ...
//	err = cache.Store()
package ctxcache

import (
	"bufio"
	"bytes"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"sync"

	"github.com/lwmacct/261019-go-pkg-interp/pkg/interp"
)

// Cache 在内存中记录表达式与值，调用 [Cache.Store] 时写入文件。
type Cache struct {
	path string

	mu        sync.Mutex
	keys      []string
	values    map[string]string
	cacheable bool
}

// New 创建使用 path 作为缓存文件的 [Cache]。
func New(path string) *Cache {
	return &Cache{
		path:      path,
		values:    make(map[string]string),
		cacheable: true,
	}
}

// Path 返回缓存文件路径。
func (c *Cache) Path() string {
	return c.path
}

// PutValue 记录表达式的值。同一个表达式再次出现不同的值时，缓存被标记为不可用。
func (c *Cache) PutValue(key string, value any) *Cache {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := interp.Stringify(value)
	existing, ok := c.values[key]
	switch {
	case !ok:
		c.keys = append(c.keys, key)
		c.values[key] = s
	case existing != s:
		c.cacheable = false
	}

	return c
}

// Cacheable 报告当前记录是否仍可以缓存。
func (c *Cache) Cacheable() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.cacheable
}

// Recorder 返回记录每个解析结果的后处理器。
//
// 它总是返回 nil，不改变值；需要放在后处理器链的最前面，
// 否则排在前面的处理器返回非 nil 后它不会被调用。
func (c *Cache) Recorder() interp.PostProcessor {
	return interp.PostProcessorFunc(func(expression string, value any) (any, error) {
		c.PutValue(expression, value)

		return nil, nil
	})
}

// Store 写入缓存文件；不可缓存时删除已有的缓存文件。
func (c *Cache) Store() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.cacheable {
		if err := os.Remove(c.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("ctxcache: remove %s: %w", c.path, err)
		}

		return nil
	}

	h := sha1.New()
	var buf bytes.Buffer
	for _, key := range c.keys {
		h.Write([]byte(c.values[key]))
		buf.WriteString(key)
		buf.WriteByte('\n')
	}

	content := hexHash(h.Sum(nil)) + "\n" + buf.String()
	if err := os.WriteFile(c.path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("ctxcache: write %s: %w", c.path, err)
	}

	return nil
}

// ResolvesToSameValues 用 f 重新解析缓存文件中的每个表达式，
// 报告得到的值是否与缓存时完全一致。缓存文件不存在时返回 false。
//
// st 在返回前会被清空；为 nil 时使用新的 [interp.State]。
func (c *Cache) ResolvesToSameValues(f *interp.Fixed, st *interp.State) (bool, error) {
	file, err := os.Open(c.path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("ctxcache: open %s: %w", c.path, err)
	}
	defer func() { _ = file.Close() }()

	if st == nil {
		st = interp.NewState()
	}
	defer st.Clear()

	scanner := bufio.NewScanner(file)
	if !scanner.Scan() {
		return false, scanner.Err()
	}
	want := strings.TrimSpace(scanner.Text())

	h := sha1.New()
	for scanner.Scan() {
		key := scanner.Text()
		if key == "" {
			continue
		}
		v, err := f.Value(key, st)
		if err != nil {
			return false, err
		}
		h.Write([]byte(interp.Stringify(v)))
	}
	if err := scanner.Err(); err != nil {
		return false, fmt.Errorf("ctxcache: read %s: %w", c.path, err)
	}

	return hexHash(h.Sum(nil)) == want, nil
}

// MustFilter 报告 target 是否需要由 source 重新生成：
// target 不存在，或 source 比 target 新。
func MustFilter(source, target string) bool {
	ti, err := os.Stat(target)
	if err != nil {
		return true
	}
	si, err := os.Stat(source)
	if err != nil {
		return true
	}

	return si.ModTime().After(ti.ModTime())
}

func hexHash(sum []byte) string {
	return strings.ToUpper(hex.EncodeToString(sum))
}
