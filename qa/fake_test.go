package qa

import (
	"context"
	"strings"
)

type fakeTokenizer struct {
	vocab map[string]int
}

func newFakeTokenizer() *fakeTokenizer {
	return &fakeTokenizer{vocab: map[string]int{"[PAD]": 0, "[UNK]": 100, "[CLS]": 101, "[SEP]": 102}}
}

func (f *fakeTokenizer) Tokenize(text string) ([]string, error) {
	return strings.Fields(strings.ToLower(text)), nil
}

func (f *fakeTokenizer) TokenIDs(tokens []string) []int {
	ids := make([]int, len(tokens))
	for i, tok := range tokens {
		id, ok := f.vocab[tok]
		if !ok {
			id = 1000 + len(f.vocab)
			f.vocab[tok] = id
		}
		ids[i] = id
	}
	return ids
}

func (f *fakeTokenizer) ClsToken() string { return "[CLS]" }
func (f *fakeTokenizer) SepToken() string { return "[SEP]" }

// fakeModel scores the positions of target tokens highest.
type fakeModel struct {
	startTok string
	endTok   string
	calls    int
	closed   bool
	err      error
}

func (m *fakeModel) Scores(_ context.Context, in *Input) ([]float32, []float32, error) {
	m.calls++
	if m.err != nil {
		return nil, nil, m.err
	}
	start := make([]float32, len(in.IDs))
	end := make([]float32, len(in.IDs))
	for i, tok := range in.Tokens {
		if tok == m.startTok {
			start[i] = 5
		}
		if tok == m.endTok {
			end[i] = 5
		}
	}
	return start, end, nil
}

func (m *fakeModel) Close() error {
	m.closed = true
	return nil
}
