// Package qa answers questions over a passage by decoding the best
// contiguous span from a span-scoring model's start and end scores.
package qa

import (
	"context"
	"errors"
)

// DefaultMaxSeqLen is the fixed model input length.
const DefaultMaxSeqLen = 384

var (
	// ErrQuestionTooLong is returned when the question alone does not fit the
	// model input.
	ErrQuestionTooLong = errors.New("question does not fit the model input")
	// ErrModelNotConfigured is returned when no model or tokenizer is set up.
	ErrModelNotConfigured = errors.New("question answering model is not configured")
)

// Span is an inclusive token range.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// NoAnswer signals that no valid span exists.
var NoAnswer = Span{Start: -1, End: -1}

// Valid reports whether the span points at tokens.
func (s Span) Valid() bool {
	return s.Start >= 0 && s.End >= s.Start
}

// Len returns the number of tokens covered.
func (s Span) Len() int {
	if !s.Valid() {
		return 0
	}
	return s.End - s.Start + 1
}

// Input is a padded model input built from a question and passage.
type Input struct {
	// Tokens holds the real tokens only, without padding.
	Tokens  []string
	IDs     []int64
	Mask    []int64
	TypeIDs []int64
	// Truncated is set when passage tokens were dropped to fit.
	Truncated bool
}

// MaskInts returns the mask as ints for the decoder.
func (in *Input) MaskInts() []int {
	out := make([]int, len(in.Mask))
	for i, v := range in.Mask {
		out[i] = int(v)
	}
	return out
}

// Answer is the decoded result of one question.
type Answer struct {
	Text      string  `json:"text"`
	Span      Span    `json:"span"`
	Score     float64 `json:"score"`
	Truncated bool    `json:"truncated"`
}

// Found reports whether an answer span was decoded.
func (a Answer) Found() bool {
	return a.Span.Valid()
}

// Tokenizer exposes the minimal surface required to build model inputs.
type Tokenizer interface {
	Tokenize(text string) ([]string, error)
	TokenIDs(tokens []string) []int
	ClsToken() string
	SepToken() string
}

// Model scores every input position as a span start and span end.
type Model interface {
	Scores(ctx context.Context, in *Input) (start, end []float32, err error)
	Close() error
}
