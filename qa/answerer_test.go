package qa

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const passage = "The patient is an 86 -year -old female admitted for evaluation"

func TestNewAnswererRequiresCollaborators(t *testing.T) {
	_, err := NewAnswerer(nil, &fakeModel{}, Options{})
	require.ErrorIs(t, err, ErrModelNotConfigured)
	_, err = NewAnswerer(newFakeTokenizer(), nil, Options{})
	require.ErrorIs(t, err, ErrModelNotConfigured)
}

func TestAnswererAnswer(t *testing.T) {
	for name, decode := range decoders {
		t.Run(name, func(t *testing.T) {
			model := &fakeModel{startTok: "86", endTok: "-old"}
			a, err := NewAnswerer(newFakeTokenizer(), model, Options{Decoder: decode, MaxSeqLen: 32})
			require.NoError(t, err)

			ans, err := a.Answer(context.Background(), "How old is the patient?", passage)
			require.NoError(t, err)
			assert.True(t, ans.Found())
			assert.Equal(t, "86 -year -old", ans.Text)
			assert.InDelta(t, 10, ans.Score, 1e-9)
			assert.Equal(t, 1, model.calls)

			require.NoError(t, a.Close())
			assert.True(t, model.closed)
		})
	}
}

func TestAnswererNoAnswer(t *testing.T) {
	noSpan := func([]float32, []float32, []int) Span { return NoAnswer }
	a, err := NewAnswerer(newFakeTokenizer(), &fakeModel{}, Options{MaxSeqLen: 8, Decoder: noSpan})
	require.NoError(t, err)

	ans, err := a.Answer(context.Background(), "q", "p")
	require.NoError(t, err)
	assert.False(t, ans.Found())
	assert.Equal(t, NoAnswer, ans.Span)
	assert.Equal(t, "", ans.Text)
}

func TestAnswererPropagatesErrors(t *testing.T) {
	boom := errors.New("boom")
	a, err := NewAnswerer(newFakeTokenizer(), &fakeModel{err: boom}, Options{})
	require.NoError(t, err)

	_, err = a.Answer(context.Background(), "q", "p")
	require.ErrorIs(t, err, boom)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = a.Answer(ctx, "q", "p")
	require.ErrorIs(t, err, context.Canceled)

	short, err := NewAnswerer(newFakeTokenizer(), &fakeModel{}, Options{MaxSeqLen: 4})
	require.NoError(t, err)
	_, err = short.Answer(context.Background(), "a b c", "p")
	require.ErrorIs(t, err, ErrQuestionTooLong)
}
