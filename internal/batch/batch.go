package batch

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"yashubustudio/clinicalreport/labeler"
)

// DefaultWorkers bounds concurrent labeling when Options.Workers is unset.
const DefaultWorkers = 4

// LabelFunc labels one report. It must tolerate blank text.
type LabelFunc func(ctx context.Context, report string) (labeler.ObservationMap, error)

// Options configures Run.
type Options struct {
	ReadOptions
	Workers    int
	Categories []labeler.Category
	Logger     *zap.Logger
}

// Result summarizes a finished batch.
type Result struct {
	InputPath  string        `json:"input_path"`
	OutputPath string        `json:"output_path"`
	Rows       int           `json:"rows"`
	Elapsed    time.Duration `json:"elapsed"`
}

// Label runs fn over every row with at most workers in flight. The returned
// slice is indexed like rows. The first error cancels the remaining rows.
func Label(ctx context.Context, rows []Row, fn LabelFunc, workers int) ([]labeler.ObservationMap, error) {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	results := make([]labeler.ObservationMap, len(rows))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range rows {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			obs, err := fn(gctx, rows[i].Report)
			if err != nil {
				return fmt.Errorf("row %s: %w", rows[i].ID, err)
			}
			results[i] = obs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Run reads input, labels every row and writes the matrix to output. An
// empty output selects DefaultOutputPath in the current directory.
func Run(ctx context.Context, input, output string, fn LabelFunc, opts Options) (Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	start := time.Now()
	if output == "" {
		output = DefaultOutputPath(".", start)
	}
	rows, err := ReadFile(input, opts.ReadOptions)
	if err != nil {
		return Result{}, err
	}
	logger.Debug("batch input read", zap.String("input", input), zap.Int("rows", len(rows)))

	results, err := Label(ctx, rows, fn, opts.Workers)
	if err != nil {
		return Result{}, fmt.Errorf("label rows: %w", err)
	}
	categories := opts.Categories
	if len(categories) == 0 {
		categories = labeler.Categories()
	}
	if err := WriteResults(output, categories, rows, results); err != nil {
		return Result{}, err
	}
	res := Result{InputPath: input, OutputPath: output, Rows: len(rows), Elapsed: time.Since(start)}
	logger.Info("batch complete",
		zap.String("output", output),
		zap.Int("rows", res.Rows),
		zap.Duration("elapsed", res.Elapsed),
	)
	return res, nil
}
