package qa

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildInput(t *testing.T) {
	tok := newFakeTokenizer()
	in, err := BuildInput(tok, "How old", "she is 86", 10)
	require.NoError(t, err)

	assert.Equal(t, []string{"[CLS]", "how", "old", "[SEP]", "she", "is", "86"}, in.Tokens)
	assert.Len(t, in.IDs, 10)
	assert.Equal(t, []int64{1, 1, 1, 1, 1, 1, 1, 0, 0, 0}, in.Mask)
	assert.Equal(t, []int64{0, 0, 0, 0, 1, 1, 1, 0, 0, 0}, in.TypeIDs)
	assert.Equal(t, int64(101), in.IDs[0])
	assert.Equal(t, int64(102), in.IDs[3])
	assert.Equal(t, []int64{0, 0, 0}, in.IDs[7:])
	assert.False(t, in.Truncated)
	assert.Equal(t, []int{1, 1, 1, 1, 1, 1, 1, 0, 0, 0}, in.MaskInts())
}

func TestBuildInputDefaultLength(t *testing.T) {
	in, err := BuildInput(newFakeTokenizer(), "q", "p", 0)
	require.NoError(t, err)
	assert.Len(t, in.IDs, DefaultMaxSeqLen)
	assert.Len(t, in.Mask, DefaultMaxSeqLen)
}

func TestBuildInputTruncatesPassageTail(t *testing.T) {
	in, err := BuildInput(newFakeTokenizer(), "q", "a b c d e f", 6)
	require.NoError(t, err)
	assert.True(t, in.Truncated)
	assert.Equal(t, []string{"[CLS]", "q", "[SEP]", "a", "b", "c"}, in.Tokens)
	assert.Equal(t, []int64{1, 1, 1, 1, 1, 1}, in.Mask)
}

func TestBuildInputQuestionTooLong(t *testing.T) {
	_, err := BuildInput(newFakeTokenizer(), "a b c d e", "p", 6)
	require.ErrorIs(t, err, ErrQuestionTooLong)

	in, err := BuildInput(newFakeTokenizer(), "a b c d", "p", 6)
	require.NoError(t, err)
	assert.True(t, in.Truncated)
	assert.Len(t, in.Tokens, 6)
}
