package interp_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lwmacct/261019-go-pkg-interp/pkg/interp"
)

func TestParseDelimiter(t *testing.T) {
	tests := []struct {
		spec string
		want interp.Delimiter
	}{
		{spec: "", want: interp.DefaultDelimiter},
		{spec: "${*}", want: interp.DefaultDelimiter},
		{spec: "@", want: interp.Delimiter{Begin: "@", End: "@"}},
		{spec: "@*", want: interp.Delimiter{Begin: "@", End: "@"}},
		{spec: "#(*)", want: interp.Delimiter{Begin: "#(", End: ")"}},
		{spec: "<<*>>", want: interp.Delimiter{Begin: "<<", End: ">>"}},
		{spec: "*}", want: interp.DefaultDelimiter},
	}

	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			assert.Equal(t, tt.want, interp.ParseDelimiter(tt.spec))
		})
	}
}

func TestDelimiter_StringRoundTrip(t *testing.T) {
	d := interp.Delimiter{Begin: "#(", End: ")"}
	assert.Equal(t, "#(*)", d.String())
	assert.Equal(t, d, interp.ParseDelimiter(d.String()))
}

func TestInterpolator_DelimiterRegistry(t *testing.T) {
	in := interp.New()
	assert.Equal(t, []interp.Delimiter{interp.DefaultDelimiter}, in.Delimiters())

	in.AddDelimiterSpec("@").AddDelimiterSpec("@").AddDelimiterSpec("#(*)")
	assert.Equal(t, []interp.Delimiter{
		interp.DefaultDelimiter,
		{Begin: "@", End: "@"},
		{Begin: "#(", End: ")"},
	}, in.Delimiters(), "duplicates are ignored and insertion order is kept")

	assert.True(t, in.RemoveDelimiterSpec("@"))
	assert.False(t, in.RemoveDelimiterSpec("@"))

	in.SetDelimiterSpecs("%*%")
	assert.Equal(t, []interp.Delimiter{
		interp.DefaultDelimiter,
		{Begin: "%", End: "%"},
	}, in.Delimiters(), "the default delimiter is always re-added first")
}

func TestInterpolator_AddDelimiterSpecKeepsCustomSingle(t *testing.T) {
	in := interp.New(interp.WithDelimiter("<", ">"))
	in.AddDelimiterSpec("@")

	assert.Equal(t, []interp.Delimiter{
		interp.DefaultDelimiter,
		{Begin: "<", End: ">"},
		{Begin: "@", End: "@"},
	}, in.Delimiters())
}
