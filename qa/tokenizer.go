package qa

import (
	"fmt"
	"path/filepath"

	"github.com/sugarme/tokenizer"
	"github.com/sugarme/tokenizer/pretrained"
)

// TokenizerConfig selects a HuggingFace tokenizer.json and its special tokens.
type TokenizerConfig struct {
	Path     string
	ClsToken string
	SepToken string
	UnkToken string
}

// HFTokenizer adapts a HuggingFace word-piece tokenizer.
type HFTokenizer struct {
	tk    *tokenizer.Tokenizer
	cfg   TokenizerConfig
	unkID int
}

// NewHFTokenizer loads the tokenizer definition at cfg.Path.
func NewHFTokenizer(cfg TokenizerConfig) (*HFTokenizer, error) {
	if cfg.Path == "" {
		return nil, ErrModelNotConfigured
	}
	if cfg.ClsToken == "" {
		cfg.ClsToken = "[CLS]"
	}
	if cfg.SepToken == "" {
		cfg.SepToken = "[SEP]"
	}
	if cfg.UnkToken == "" {
		cfg.UnkToken = "[UNK]"
	}
	tk, err := pretrained.FromFile(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("load tokenizer %s: %w", filepath.Base(cfg.Path), err)
	}
	unkID, ok := tk.TokenToId(cfg.UnkToken)
	if !ok {
		unkID = 0
	}
	return &HFTokenizer{tk: tk, cfg: cfg, unkID: unkID}, nil
}

// Tokenize splits text into word pieces without special tokens or padding.
func (t *HFTokenizer) Tokenize(text string) ([]string, error) {
	if text == "" {
		return nil, nil
	}
	en, err := t.tk.EncodeSingle(text, false)
	if err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	tokens := make([]string, 0, len(en.Tokens))
	for i, tok := range en.Tokens {
		if i < len(en.AttentionMask) && en.AttentionMask[i] == 0 {
			continue
		}
		tokens = append(tokens, tok)
	}
	return tokens, nil
}

// TokenIDs maps tokens to vocabulary ids; unknown tokens map to the
// unknown-token id.
func (t *HFTokenizer) TokenIDs(tokens []string) []int {
	ids := make([]int, len(tokens))
	for i, tok := range tokens {
		id, ok := t.tk.TokenToId(tok)
		if !ok {
			id = t.unkID
		}
		ids[i] = id
	}
	return ids
}

// ClsToken returns the classification token.
func (t *HFTokenizer) ClsToken() string { return t.cfg.ClsToken }

// SepToken returns the separator token.
func (t *HFTokenizer) SepToken() string { return t.cfg.SepToken }
