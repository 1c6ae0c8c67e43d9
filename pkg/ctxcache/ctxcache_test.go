package ctxcache_test

import (
	"bufio"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lwmacct/261019-go-pkg-interp/pkg/ctxcache"
	"github.com/lwmacct/261019-go-pkg-interp/pkg/interp"
	"github.com/lwmacct/261019-go-pkg-interp/pkg/valuesource"
)

const (
	initialPayload  = "a${v1}payload\n"
	expectedPayload = "aabcpayload\n"
)

func basicCache(path string) *ctxcache.Cache {
	return ctxcache.New(path).PutValue("v1", "abc").PutValue("v2", "cde")
}

func matching() valuesource.Map {
	return valuesource.Map{"v1": "abc", "v2": "cde"}
}

func nonMatching() valuesource.Map {
	return valuesource.Map{"v1": "aDDc", "v2": "cde"}
}

func assertContents(t *testing.T, path string) {
	t.Helper()

	f, err := os.Open(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	require.NoError(t, scanner.Err())
	assert.Equal(t, []string{"D9F4E651F88121479D8C6CDA4441ECBA65687415", "v1", "v2"}, lines)
}

func TestStore(t *testing.T) {
	dir := t.TempDir()

	t.Run("basic", func(t *testing.T) {
		path := filepath.Join(dir, "store1.txt")
		require.NoError(t, basicCache(path).Store())
		assertContents(t, path)
	})

	t.Run("repeated equal values", func(t *testing.T) {
		path := filepath.Join(dir, "store2.txt")
		require.NoError(t, basicCache(path).PutValue("v1", "abc").Store())
		assertContents(t, path)
	})
}

func TestStore_Uncacheable(t *testing.T) {
	dir := t.TempDir()

	t.Run("deletes existing file", func(t *testing.T) {
		c := basicCache(filepath.Join(dir, "store3.txt"))
		require.NoError(t, c.Store())
		assert.FileExists(t, c.Path())

		c.PutValue("v1", "abdc")
		assert.False(t, c.Cacheable())
		require.NoError(t, c.Store())
		assert.NoFileExists(t, c.Path())

		require.NoError(t, c.Store())
		assert.NoFileExists(t, c.Path())
	})

	t.Run("never written", func(t *testing.T) {
		c := basicCache(filepath.Join(dir, "store4.txt"))
		c.PutValue("v1", "abdc")
		require.NoError(t, c.Store())
		assert.NoFileExists(t, c.Path())
	})
}

func TestResolvesToSameValues(t *testing.T) {
	tests := []struct {
		name   string
		source valuesource.Map
		want   bool
	}{
		{name: "matching", source: matching(), want: true},
		{name: "non matching", source: nonMatching(), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := basicCache(filepath.Join(t.TempDir(), "cache.txt"))
			require.NoError(t, c.Store())

			st := interp.NewState()
			same, err := c.ResolvesToSameValues(interp.MustNewFixed(interp.WithValueSources(tt.source)), st)
			require.NoError(t, err)
			assert.Equal(t, tt.want, same)
		})
	}
}

// interpolateOnce 解析一次并写入缓存文件，返回缓存文件路径。
func interpolateOnce(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "run.cache")
	c := basicCache(path)
	in := interp.New(
		interp.WithPostProcessors(c.Recorder()),
		interp.WithValueSources(matching()),
	)

	got, err := in.Interpolate(initialPayload)
	require.NoError(t, err)
	require.Equal(t, expectedPayload, got)
	require.True(t, c.Cacheable())
	require.NoError(t, c.Store())

	return path
}

func TestNextRun(t *testing.T) {
	tests := []struct {
		name   string
		source valuesource.Map
		want   bool
	}{
		{name: "needs to filter", source: nonMatching(), want: false},
		{name: "does not need to filter", source: matching(), want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next := basicCache(interpolateOnce(t))
			f := interp.MustNewFixed(interp.WithValueSources(tt.source))

			same, err := next.ResolvesToSameValues(f, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, same)
		})
	}
}

func TestResolvesToSameValues_MissingFile(t *testing.T) {
	c := basicCache(filepath.Join(t.TempDir(), "missing"))

	same, err := c.ResolvesToSameValues(interp.MustNewFixed(interp.WithValueSources(matching())), nil)
	require.NoError(t, err)
	assert.False(t, same)
}

func TestRecorder_ConflictingValues(t *testing.T) {
	c := ctxcache.New(filepath.Join(t.TempDir(), "c"))
	n := 0
	counter := interp.LookupFunc(func(string) (any, error) {
		n++

		return n, nil
	})
	in := interp.New(interp.WithPostProcessors(c.Recorder()), interp.WithValueSources(counter))

	got, err := in.Interpolate("${x} ${x}")
	require.NoError(t, err)
	assert.Equal(t, "1 2", got)
	assert.False(t, c.Cacheable())
}

func TestMustFilter(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "source.txt")
	target := filepath.Join(dir, "source.txt.interpolated")

	stamp := time.Now().Add(-time.Hour).Truncate(time.Second)
	require.NoError(t, os.WriteFile(source, []byte(initialPayload), 0o644))
	require.NoError(t, os.WriteFile(target, []byte(expectedPayload), 0o644))
	require.NoError(t, os.Chtimes(source, stamp, stamp))
	require.NoError(t, os.Chtimes(target, stamp, stamp))

	assert.False(t, ctxcache.MustFilter(source, target))

	later := stamp.Add(2 * time.Second)
	require.NoError(t, os.Chtimes(source, later, later))
	assert.True(t, ctxcache.MustFilter(source, target))

	assert.True(t, ctxcache.MustFilter(source, filepath.Join(dir, "does-not-exist")))
}
