package qa

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Options configure an Answerer.
type Options struct {
	MaxSeqLen     int
	Decoder       Decoder
	Reconstructor *Reconstructor
	Logger        *zap.Logger
}

// Answerer wires tokenizer, model, decoder and reconstructor together.
// Model calls are serialized since the model is not assumed thread-safe.
type Answerer struct {
	tok    Tokenizer
	model  Model
	opts   Options
	logger *zap.Logger

	mu sync.Mutex
}

// NewAnswerer validates its collaborators and applies option defaults.
func NewAnswerer(tok Tokenizer, model Model, opts Options) (*Answerer, error) {
	if tok == nil || model == nil {
		return nil, ErrModelNotConfigured
	}
	if opts.MaxSeqLen <= 0 {
		opts.MaxSeqLen = DefaultMaxSeqLen
	}
	if opts.Decoder == nil {
		opts.Decoder = DecodeSpan
	}
	if opts.Reconstructor == nil {
		opts.Reconstructor = NewReconstructor(DefaultRules()...)
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Answerer{tok: tok, model: model, opts: opts, logger: logger}, nil
}

// Answer extracts the best answer span for question from passage.
func (a *Answerer) Answer(ctx context.Context, question, passage string) (Answer, error) {
	in, err := BuildInput(a.tok, question, passage, a.opts.MaxSeqLen)
	if err != nil {
		return Answer{Span: NoAnswer}, err
	}
	if in.Truncated {
		a.logger.Debug("passage truncated to fit model input", zap.Int("max_seq_len", a.opts.MaxSeqLen))
	}
	if err := ctx.Err(); err != nil {
		return Answer{Span: NoAnswer}, err
	}

	a.mu.Lock()
	start, end, err := a.model.Scores(ctx, in)
	a.mu.Unlock()
	if err != nil {
		return Answer{Span: NoAnswer}, fmt.Errorf("score input: %w", err)
	}
	if len(start) != len(end) {
		return Answer{Span: NoAnswer}, errors.New("model returned start and end scores of different length")
	}

	span := a.opts.Decoder(start, end, in.MaskInts())
	ans := Answer{Span: span, Truncated: in.Truncated}
	if !span.Valid() {
		a.logger.Debug("no answer span decoded")
		return ans, nil
	}
	ans.Score = SpanScore(start, end, span)
	ans.Text = a.opts.Reconstructor.Text(in.Tokens, span)
	return ans, nil
}

// Close releases the model.
func (a *Answerer) Close() error {
	if a == nil || a.model == nil {
		return nil
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.model.Close()
}
