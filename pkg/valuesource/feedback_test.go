package valuesource_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lwmacct/261019-go-pkg-interp/pkg/interp"
	"github.com/lwmacct/261019-go-pkg-interp/pkg/valuesource"
)

func TestFeedbacking(t *testing.T) {
	tests := []struct {
		name    string
		source  *valuesource.Feedbacking
		want    []string
		missing []string
	}{
		{
			name:    "default message",
			source:  valuesource.NewFeedbacking(),
			missing: []string{"a", "b.c"},
			want:    []string{"'a' not resolved", "'b.c' not resolved"},
		},
		{
			name:    "custom message",
			source:  valuesource.NewFeedbackingMessage("missing ${expression}!"),
			missing: []string{"x"},
			want:    []string{"missing x!"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, expr := range tt.missing {
				v, err := tt.source.Value(expr, interp.DefaultDelimiter)
				require.NoError(t, err)
				assert.Nil(t, v)
			}

			var got []string
			for _, fb := range tt.source.Feedback() {
				got = append(got, fb.Message)
			}
			assert.Equal(t, tt.want, got)

			tt.source.ClearFeedback()
			assert.Empty(t, tt.source.Feedback())
		})
	}
}

func TestFeedbacking_LastInChain(t *testing.T) {
	fb := valuesource.NewFeedbacking()
	in := interp.New(interp.WithValueSources(valuesource.Map{"known": "k"}, fb))

	got, err := in.Interpolate("${known} ${unknown} ${unknown}")
	require.NoError(t, err)
	assert.Equal(t, "k ${unknown} ${unknown}", got)
	require.Len(t, fb.Feedback(), 1, "an unresolvable expression is asked once per call")
}

func TestFeedbackLog(t *testing.T) {
	var log valuesource.FeedbackLog
	boom := errors.New("boom")

	log.AddFeedback("first", nil)
	log.AddFeedback("second", boom)

	items := log.Feedback()
	require.Len(t, items, 2)
	assert.Equal(t, "first", items[0].String())
	assert.Equal(t, "second: boom", items[1].String())

	items[0].Message = "changed"
	assert.Equal(t, "first", log.Feedback()[0].Message, "callers get a copy")
}
