// Package app orchestrates the labeling and question answering pipelines
// for the CLI and HTTP front ends.
package app

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"yashubustudio/clinicalreport/internal/batch"
	"yashubustudio/clinicalreport/internal/config"
	"yashubustudio/clinicalreport/internal/ssplit"
	"yashubustudio/clinicalreport/labeler"
	"yashubustudio/clinicalreport/qa"
)

// AnswerOpener builds the answering engine on first use.
type AnswerOpener func(cfg config.QAConfig, logger *zap.Logger) (AnswerEngine, error)

// Option customizes a Service.
type Option func(*Service)

// WithAnswerer installs a ready engine and skips model loading.
func WithAnswerer(engine AnswerEngine) Option {
	return func(s *Service) { s.answerer = engine }
}

// WithAnswerOpener replaces the model loader.
func WithAnswerOpener(open AnswerOpener) Option {
	return func(s *Service) { s.openQA = open }
}

// WithDictionary uses dict instead of reading the phrase directory.
func WithDictionary(dict *labeler.Dictionary) Option {
	return func(s *Service) { s.dict = dict }
}

// WithSplitter replaces the sentence splitter.
func WithSplitter(sp ssplit.Splitter) Option {
	return func(s *Service) { s.splitter = sp }
}

// Service runs both pipelines. It is safe for concurrent use.
type Service struct {
	cfg      config.Config
	logger   *zap.Logger
	splitter ssplit.Splitter
	dict     *labeler.Dictionary
	labeler  *labeler.Labeler

	qaMu     sync.Mutex
	answerer AnswerEngine
	openQA   AnswerOpener
}

// NewService loads the phrase dictionary. The QA model is loaded lazily by
// the first Answer call.
func NewService(cfg config.Config, logger *zap.Logger, opts ...Option) (*Service, error) {
	cfg.ApplyDefaults()
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		cfg:      cfg,
		logger:   logger,
		splitter: ssplit.New(),
		openQA:   OpenAnswerer,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.dict == nil {
		dict, err := labeler.NewDictionaryLoader(cfg.Labels.PhrasesDir).Load()
		if err != nil {
			return nil, fmt.Errorf("load phrases: %w", err)
		}
		s.dict = dict
	}
	if s.dict.Size() == 0 {
		logger.Warn("no trigger phrases loaded, every category will be absent",
			zap.String("dir", cfg.Labels.PhrasesDir))
	} else {
		logger.Info("trigger phrases loaded",
			zap.String("dir", cfg.Labels.PhrasesDir),
			zap.Int("phrases", s.dict.Size()),
		)
	}
	s.labeler = labeler.NewLabeler(s.dict)
	return s, nil
}

// Config returns the effective configuration.
func (s *Service) Config() config.Config {
	return s.cfg
}

// Dictionary returns the loaded phrase dictionary.
func (s *Service) Dictionary() *labeler.Dictionary {
	return s.dict
}

// Close releases the answering engine if one was loaded.
func (s *Service) Close() error {
	s.qaMu.Lock()
	defer s.qaMu.Unlock()
	if s.answerer == nil {
		return nil
	}
	err := s.answerer.Close()
	s.answerer = nil
	return err
}

// Sentences splits a normalized report, optionally cleaning each sentence.
func (s *Service) Sentences(report string, cleanup bool) []string {
	sentences := s.splitter.Split(labeler.NormalizeReport(report))
	if cleanup {
		sentences = labeler.CleanAll(sentences)
	}
	return sentences
}

// ExtractLabels runs the labeling pipeline on one report.
func (s *Service) ExtractLabels(ctx context.Context, report string, cleanup bool) (LabelResult, error) {
	if strings.TrimSpace(report) == "" {
		return LabelResult{}, ErrEmptyReport
	}
	var res LabelResult
	err := guard("extract labels", func() error {
		if err := ctx.Err(); err != nil {
			return err
		}
		start := time.Now()
		sentences := s.Sentences(report, cleanup)
		obs := s.labeler.Label(sentences)
		res = LabelResult{
			Sentences:    sentences,
			Observations: obs.Ordered(),
			Present:      obs.Present(),
			Mentions:     s.labeler.Mentions(labeler.NormalizeReport(report), obs),
			Elapsed:      time.Since(start),
		}
		return nil
	})
	if err != nil {
		return LabelResult{}, err
	}
	s.logger.Debug("labels extracted",
		zap.Int("sentences", len(res.Sentences)),
		zap.Int("present", len(res.Present)),
		zap.Duration("elapsed", res.Elapsed),
	)
	return res, nil
}

// Label returns the observation map for a report. Blank text yields all
// categories absent.
func (s *Service) Label(ctx context.Context, report string, cleanup bool) (labeler.ObservationMap, error) {
	var obs labeler.ObservationMap
	err := guard("label report", func() error {
		if err := ctx.Err(); err != nil {
			return err
		}
		obs = s.labeler.Label(s.Sentences(report, cleanup))
		return nil
	})
	return obs, err
}

// Answer runs the question answering pipeline.
func (s *Service) Answer(ctx context.Context, passage, question string) (AnswerResult, error) {
	if strings.TrimSpace(passage) == "" || strings.TrimSpace(question) == "" {
		return AnswerResult{}, ErrMissingQAInput
	}
	engine, err := s.engine()
	if err != nil {
		return AnswerResult{}, err
	}
	var res AnswerResult
	err = guard("answer question", func() error {
		start := time.Now()
		ans, err := engine.Answer(ctx, question, passage)
		if err != nil {
			return err
		}
		res = AnswerResult{Answer: ans, Elapsed: time.Since(start)}
		return nil
	})
	if err != nil {
		return AnswerResult{}, err
	}
	s.logger.Debug("question answered",
		zap.Bool("found", res.Answer.Found()),
		zap.Bool("truncated", res.Answer.Truncated),
		zap.Duration("elapsed", res.Elapsed),
	)
	return res, nil
}

// engine returns the memoized answering engine. A failed load is retried on
// the next call.
func (s *Service) engine() (AnswerEngine, error) {
	s.qaMu.Lock()
	defer s.qaMu.Unlock()
	if s.answerer != nil {
		return s.answerer, nil
	}
	start := time.Now()
	engine, err := s.openQA(s.cfg.QA, s.logger)
	if err != nil {
		return nil, fmt.Errorf("load qa model: %w", err)
	}
	s.logger.Info("qa model loaded",
		zap.String("model", s.cfg.QA.ModelPath),
		zap.Duration("elapsed", time.Since(start)),
	)
	s.answerer = engine
	return engine, nil
}

// ProcessBatch labels every report of a CSV or TSV file. An empty output
// path writes a timestamped file in the configured output directory.
func (s *Service) ProcessBatch(ctx context.Context, input, output string, cleanup bool) (batch.Result, error) {
	if strings.TrimSpace(input) == "" {
		return batch.Result{}, ErrMissingUpload
	}
	if output == "" {
		output = batch.DefaultOutputPath(s.cfg.Batch.OutputDir, time.Now())
	}
	fn := func(ctx context.Context, report string) (labeler.ObservationMap, error) {
		return s.Label(ctx, report, cleanup)
	}
	return batch.Run(ctx, input, output, fn, batch.Options{
		ReadOptions: batch.ReadOptions{
			ReportColumn: s.cfg.Batch.ReportColumn,
			IDColumn:     s.cfg.Batch.IDColumn,
		},
		Workers: s.cfg.Batch.Workers,
		Logger:  s.logger,
	})
}

// OpenAnswerer loads the tokenizer and ONNX model named by cfg.
func OpenAnswerer(cfg config.QAConfig, logger *zap.Logger) (AnswerEngine, error) {
	if cfg.ModelPath == "" || cfg.TokenizerPath == "" {
		return nil, qa.ErrModelNotConfigured
	}
	tok, err := qa.NewHFTokenizer(qa.TokenizerConfig{
		Path:     cfg.TokenizerPath,
		ClsToken: cfg.ClsToken,
		SepToken: cfg.SepToken,
		UnkToken: cfg.UnkToken,
	})
	if err != nil {
		return nil, err
	}
	model, err := qa.NewOrtModel(qa.OrtConfig{
		SharedLibrary: cfg.OrtLibrary,
		ModelPath:     cfg.ModelPath,
		InputNames:    cfg.InputNames,
		OutputNames:   cfg.OutputNames,
	})
	if err != nil {
		return nil, err
	}
	var rules []qa.Rule
	if cfg.CollapseAtSign {
		rules = qa.DefaultRules()
	}
	answerer, err := qa.NewAnswerer(tok, model, qa.Options{
		MaxSeqLen:     cfg.MaxSeqLen,
		Decoder:       decoderFor(cfg.Decoder),
		Reconstructor: qa.NewReconstructor(rules...),
		Logger:        logger,
	})
	if err != nil {
		_ = model.Close()
		return nil, err
	}
	return answerer, nil
}

func decoderFor(name string) qa.Decoder {
	if name == config.DecoderLinear {
		return qa.DecodeSpanLinear
	}
	return qa.DecodeSpan
}
