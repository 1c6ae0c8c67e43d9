package valuesource_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lwmacct/261019-go-pkg-interp/pkg/interp"
	"github.com/lwmacct/261019-go-pkg-interp/pkg/valuesource"
)

func TestShell(t *testing.T) {
	environ := []string{"SET=value", "EMPTY="}

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "plain", input: "${SET}", want: "value"},
		{name: "unset plain is kept", input: "${UNSET}", want: "${UNSET}"},
		{name: "colon dash unset", input: "${UNSET:-fallback}", want: "fallback"},
		{name: "colon dash empty", input: "${EMPTY:-fallback}", want: "fallback"},
		{name: "colon dash set", input: "${SET:-fallback}", want: "value"},
		{name: "dash empty", input: "${EMPTY-fallback}", want: ""},
		{name: "dash unset", input: "${UNSET-fallback}", want: "fallback"},
		{name: "colon plus set", input: "${SET:+alt}", want: "alt"},
		{name: "colon plus empty", input: "[${EMPTY:+alt}]", want: "[]"},
		{name: "plus empty", input: "${EMPTY+alt}", want: "alt"},
		{name: "plus unset", input: "[${UNSET+alt}]", want: "[]"},
		{name: "question set", input: "${SET:?required}", want: "value"},
		{name: "assign then reuse", input: "${MODEL:=gpt-4}-${MODEL}", want: "gpt-4-gpt-4"},
		{name: "assign keeps set", input: "${SET:=other}", want: "value"},
		{name: "word is interpolated", input: "${UNSET:-@SET@}", want: "value"},
		{name: "invalid syntax is ignored", input: "${1abc} ${SET!}", want: "${1abc} ${SET!}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := interp.New(
				interp.WithDelimiterSpecs("@"),
				interp.WithValueSources(valuesource.NewShell(valuesource.WithEnviron(environ))),
			)
			got, err := in.Interpolate(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestShell_Required(t *testing.T) {
	tests := []struct {
		input string
		msg   string
	}{
		{input: "${EMPTY:?must be set}", msg: "EMPTY: must be set"},
		{input: "${UNSET:?}", msg: "UNSET: parameter null or not set"},
		{input: "${UNSET?gone}", msg: "UNSET: gone"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			in := interp.New(interp.WithValueSources(
				valuesource.NewShell(valuesource.WithEnviron([]string{"EMPTY="})),
			))
			_, err := in.Interpolate(tt.input)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestShell_UnsetAsEmpty(t *testing.T) {
	in := interp.New(interp.WithValueSources(valuesource.NewShell(
		valuesource.WithEnviron([]string{}),
		valuesource.WithUnsetAsEmpty(),
	)))

	got, err := in.Interpolate("[${NOPE}]")
	require.NoError(t, err)
	assert.Equal(t, "[]", got)
}

func TestShell_CaseInsensitive(t *testing.T) {
	in := interp.New(interp.WithValueSources(valuesource.NewShell(
		valuesource.WithEnviron([]string{"Path=/bin"}),
		valuesource.WithCaseInsensitive(),
	)))

	got, err := in.Interpolate("${PATH}")
	require.NoError(t, err)
	assert.Equal(t, "/bin", got)
}
