package qa

import "fmt"

// BuildInput assembles [CLS] question [SEP] passage, converts it to ids and
// right-pads ids, mask and segment ids with zeros to maxSeqLen. Passage
// tokens past the limit are dropped.
func BuildInput(tok Tokenizer, question, passage string, maxSeqLen int) (*Input, error) {
	if maxSeqLen <= 0 {
		maxSeqLen = DefaultMaxSeqLen
	}
	qTokens, err := tok.Tokenize(question)
	if err != nil {
		return nil, fmt.Errorf("tokenize question: %w", err)
	}
	pTokens, err := tok.Tokenize(passage)
	if err != nil {
		return nil, fmt.Errorf("tokenize passage: %w", err)
	}
	head := len(qTokens) + 2
	if head > maxSeqLen {
		return nil, fmt.Errorf("%w: %d tokens, limit %d", ErrQuestionTooLong, head, maxSeqLen)
	}
	truncated := false
	if room := maxSeqLen - head; len(pTokens) > room {
		pTokens = pTokens[:room]
		truncated = true
	}

	tokens := make([]string, 0, head+len(pTokens))
	tokens = append(tokens, tok.ClsToken())
	tokens = append(tokens, qTokens...)
	tokens = append(tokens, tok.SepToken())
	tokens = append(tokens, pTokens...)

	ids := tok.TokenIDs(tokens)
	in := &Input{
		Tokens:    tokens,
		IDs:       make([]int64, maxSeqLen),
		Mask:      make([]int64, maxSeqLen),
		TypeIDs:   make([]int64, maxSeqLen),
		Truncated: truncated,
	}
	for i := range tokens {
		if i < len(ids) {
			in.IDs[i] = int64(ids[i])
		}
		in.Mask[i] = 1
		if i >= head {
			in.TypeIDs[i] = 1
		}
	}
	return in, nil
}
