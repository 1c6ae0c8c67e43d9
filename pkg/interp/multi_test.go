package interp_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lwmacct/261019-go-pkg-interp/pkg/interp"
	"github.com/lwmacct/261019-go-pkg-interp/pkg/valuesource"
)

func TestMulti_DifferentDelimiters(t *testing.T) {
	tests := []struct {
		name  string
		src   valuesource.Map
		input string
	}{
		{
			name:  "value uses the extra delimiter",
			src:   valuesource.Map{"name": "User", "otherName": "@name@"},
			input: "${otherName}",
		},
		{
			name:  "input uses the extra delimiter",
			src:   valuesource.Map{"name": "User", "otherName": "${name}"},
			input: "@otherName@",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := interp.New(interp.WithValueSources(tt.src)).AddDelimiterSpec("@")
			got, err := in.Interpolate(tt.input)
			require.NoError(t, err)
			assert.Equal(t, "User", got)
		})
	}
}

func TestMulti_Escapes(t *testing.T) {
	tests := []struct {
		name      string
		otherName string
		want      string
	}{
		{
			name:      "double then single escape",
			otherName: "##${first} and #${last}",
			want:      "#${first} and ${last}",
		},
		{
			name:      "single then double escape",
			otherName: "#${first} and ##${last}",
			want:      "${first} and #${last}",
		},
		{
			name:      "escapes mixed with a resolved expression",
			otherName: "###${first} and ##${second} and ${last}",
			want:      "##${first} and #${second} and beer",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := valuesource.Map{"name": "User", "last": "beer", "otherName": tt.otherName}
			in := interp.New(
				interp.WithDelimiterSpecs(),
				interp.WithEscape("#"),
				interp.WithValueSources(src),
			)
			got, err := in.Interpolate("${otherName}")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMulti_DelimiterPassedToSource(t *testing.T) {
	var seen []interp.Delimiter
	src := interp.ValueSourceFunc(func(expression string, delim interp.Delimiter) (any, error) {
		seen = append(seen, delim)

		return expression, nil
	})
	in := interp.New(interp.WithValueSources(src), interp.WithEscape("#"))
	in.AddDelimiterSpec("#(*)")

	got, err := in.Interpolate("#(test)")
	require.NoError(t, err)
	assert.Equal(t, "test", got)
	require.NotEmpty(t, seen)
	for _, d := range seen {
		assert.Equal(t, interp.Delimiter{Begin: "#(", End: ")"}, d)
	}
}

func TestMulti_EarliestStartWins(t *testing.T) {
	in := interp.New(
		interp.WithDelimiterSpecs("@", "<*>"),
		interp.WithValueSources(valuesource.Map{
			"a": "A",
			"b": "B",
		}),
	)

	got, err := in.Interpolate("@a@ ${b} <a>")
	require.NoError(t, err)
	assert.Equal(t, "A B A", got)
}

// 每一轮都扫描原始输入，上一轮的输出不会与后面的原样文本拼成新表达式。
func TestMulti_PassesRescanOriginalInput(t *testing.T) {
	in := interp.New(
		interp.WithDelimiterSpecs("@"),
		interp.WithValueSources(valuesource.Map{"a": "@name", "name": "User"}),
	)

	got, err := in.Interpolate("${a}@")
	require.NoError(t, err)
	assert.Equal(t, "@name@", got)
}

func TestMulti_SourceCanAnswerPerDelimiter(t *testing.T) {
	src := interp.ValueSourceFunc(func(expression string, delim interp.Delimiter) (any, error) {
		if delim.Begin != "@" {
			return nil, nil
		}

		return "at-" + expression, nil
	})
	in := interp.New(interp.WithDelimiterSpecs("@"), interp.WithValueSources(src))

	got, err := in.Interpolate("@x@ ${x}")
	require.NoError(t, err)
	assert.Equal(t, "at-x ${x}", got)
}

func TestMulti_PassLimit(t *testing.T) {
	n := 0
	counter := interp.LookupFunc(func(string) (any, error) {
		n++

		return n, nil
	})
	in := interp.New(interp.WithDelimiterSpecs("@"), interp.WithValueSources(counter))

	got, err := in.Interpolate("${x}")
	require.NoError(t, err)
	assert.Equal(t, "10", got, "output keeps changing so every pass runs")
	assert.Equal(t, interp.MaxPasses, n)
}

func TestMulti_StableOutputStopsEarly(t *testing.T) {
	src := newCountingSource(map[string]any{"a": "A"})
	in := interp.New(interp.WithDelimiterSpecs("@"), interp.WithValueSources(src))

	got, err := in.Interpolate("${a}")
	require.NoError(t, err)
	assert.Equal(t, "A", got)
	assert.Equal(t, 2, src.calls["a"], "second pass confirms the output is stable")
}

func TestMulti_Cycle(t *testing.T) {
	in := interp.New(
		interp.WithDelimiterSpecs("@"),
		interp.WithValueSources(valuesource.Map{"a": "@b@", "b": "${a}"}),
	)

	_, err := in.Interpolate("${a}")
	require.ErrorIs(t, err, interp.ErrCycle)
}

func TestRegex_Interpolate(t *testing.T) {
	src := valuesource.Map{"name": "jason", "project.name": "prefixed"}

	tests := []struct {
		name  string
		opts  []interp.Option
		input string
		want  string
	}{
		{
			name:  "default pattern",
			opts:  []interp.Option{interp.WithPattern("", "")},
			input: "hello ${name} and ${missing}",
			want:  "hello jason and ${missing}",
		},
		{
			name:  "optional prefix is dropped",
			opts:  []interp.Option{interp.WithPrefixPattern(`project\.`)},
			input: "${project.name} ${name}",
			want:  "jason jason",
		},
		{
			name:  "custom start and end",
			opts:  []interp.Option{interp.WithPattern(`@\{(`, `[^}]+)\}@`)},
			input: "@{name}@ ${name}",
			want:  "jason ${name}",
		},
		{
			name: "custom pattern with prefix group",
			opts: []interp.Option{
				interp.WithPattern(`\$\{(`, `)?(.+?)\}`),
				interp.WithPrefixPattern(`pom\.`),
			},
			input: "${pom.name}",
			want:  "jason",
		},
		{
			name:  "escape applies in regex mode",
			opts:  []interp.Option{interp.WithPattern("", ""), interp.WithEscape(`\`)},
			input: `\${name} ${name}`,
			want:  "${name} jason",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := append([]interp.Option{interp.WithValueSources(src)}, tt.opts...)
			got, err := interp.New(opts...).Interpolate(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRegex_EmptyMatchKeepsScanning(t *testing.T) {
	in := interp.New(
		interp.WithPattern(`(?:\$\{)?(`, `[a-z]*)\}?`),
		interp.WithValueSources(valuesource.Map{"name": "jason"}),
	)

	got, err := in.Interpolate("X ${name}! 你 ${name}")
	require.NoError(t, err)
	assert.Equal(t, "X jason! 你 jason", got)
}

func TestRegex_InvalidPattern(t *testing.T) {
	in := interp.New(interp.WithPattern(`(`, ``))

	_, err := in.Interpolate("anything")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "compile pattern")

	_, err = interp.NewFixed(interp.WithPattern(`(`, ``))
	require.Error(t, err)
}

func TestRegex_Cycle(t *testing.T) {
	in := interp.New(
		interp.WithPattern("", ""),
		interp.WithValueSources(valuesource.Map{"a": "${b}", "b": "${a}"}),
	)

	_, err := in.Interpolate("${a}")
	require.ErrorIs(t, err, interp.ErrCycle)
}

func TestPatternCache_Shared(t *testing.T) {
	cache := interp.NewPatternCache()
	src := valuesource.Map{"name": "jason"}

	for range 3 {
		in := interp.New(
			interp.WithPrefixPattern(`env\.`),
			interp.WithPatternCache(cache),
			interp.WithValueSources(src),
		)
		got, err := in.Interpolate("${env.name}")
		require.NoError(t, err)
		assert.Equal(t, "jason", got)
	}
	assert.Equal(t, 1, cache.Len())

	_, err := cache.Get(interp.DefaultPattern)
	require.NoError(t, err)
	assert.Equal(t, 2, cache.Len())
}
