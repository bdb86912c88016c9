package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/nao1215/sectxt/internal/model"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency is the number of files processed at once when no
// limit is configured.
const DefaultConcurrency = 4

// BatchProcessor handles concurrent processing of several input files.
//
// Design decision: We use a separate BatchProcessor rather than adding batch
// functionality to Pipeline because it keeps the Pipeline focused on a
// single file. A failed file never stops the others; its error is kept in
// its run.
type BatchProcessor struct {
	// pipelineFactory creates a fresh pipeline for each file so step
	// state never leaks between files.
	pipelineFactory func() *Pipeline
	concurrency     int
	logger          *slog.Logger
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of files processed at once.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchProcessor creates a new BatchProcessor.
func NewBatchProcessor(pipelineFactory func() *Pipeline, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		pipelineFactory: pipelineFactory,
		concurrency:     DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(bp)
	}
	if bp.logger == nil {
		bp.logger = slog.Default()
	}
	return bp
}

// ProcessBatch runs one pipeline per source and returns the runs in the
// order of sources. Runs of files that failed are returned as well.
// The error is non-nil only when ctx was cancelled; runs that never
// started are then nil.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, sources []string) ([]*model.Run, error) {
	runs := make([]*model.Run, len(sources))
	err := bp.ProcessBatchWithCallback(ctx, sources, func(run *model.Run, index int) {
		// Each index is written by exactly one goroutine.
		runs[index] = run
	})
	return runs, err
}

// ProcessBatchWithCallback runs one pipeline per source and calls callback
// for each finished run with the index of its source. callback is called
// from worker goroutines and must be safe for concurrent use.
func (bp *BatchProcessor) ProcessBatchWithCallback(
	ctx context.Context,
	sources []string,
	callback func(run *model.Run, index int),
) error {
	bp.logger.Debug("starting batch processing",
		"total_files", len(sources),
		"concurrency", bp.concurrency,
	)
	startTime := time.Now()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, source := range sources {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			run := model.NewRun(source)
			if err := bp.pipelineFactory().Execute(ctx, run); err != nil {
				bp.logger.Warn("processing failed",
					"source", source,
					"error", err,
				)
			}
			callback(run, i)
			return nil
		})
	}

	err := g.Wait()
	bp.logger.Debug("batch processing complete",
		"total_files", len(sources),
		"elapsed", time.Since(startTime),
	)
	return err
}
