package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/harvey/internal/config"
	"github.com/nao1215/harvey/internal/model"
)

// BatchProcessor investigates several people concurrently, bounded by a
// concurrency limit.
type BatchProcessor struct {
	// pipelineFactory creates a fresh pipeline for each investigation.
	pipelineFactory func() *Pipeline

	concurrency int

	// hint is applied to every investigation. It only makes sense for a
	// batch of one.
	hint string

	logger *slog.Logger

	// results holds the investigations in target order.
	results []*model.Investigation
	mu      sync.Mutex
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of concurrent investigations.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// WithGitHubHint sets the GitHub username or profile URL used instead of
// the user search.
func WithGitHubHint(hint string) BatchOption {
	return func(b *BatchProcessor) {
		b.hint = hint
	}
}

// NewBatchProcessor creates a BatchProcessor. pipelineFactory is called
// once per target.
func NewBatchProcessor(pipelineFactory func() *Pipeline, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		pipelineFactory: pipelineFactory,
		concurrency:     config.DefaultBatchSize,
		results:         make([]*model.Investigation, 0),
	}

	for _, opt := range opts {
		opt(bp)
	}

	if bp.logger == nil {
		bp.logger = slog.Default()
	}

	return bp
}

// ProcessBatch investigates every target and returns the investigations in
// target order. Every target gets an investigation with a snapshot, even
// when ctx is cancelled; the returned error is then ctx.Err().
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, targets []string) ([]*model.Investigation, error) {
	bp.logger.Info("starting batch processing",
		"total_targets", len(targets),
		"concurrency", bp.concurrency,
	)

	startTime := time.Now()
	bp.results = make([]*model.Investigation, len(targets))

	err := bp.ProcessBatchWithCallback(ctx, targets, func(inv *model.Investigation, index int) {
		bp.mu.Lock()
		bp.results[index] = inv
		bp.mu.Unlock()
	})

	bp.logger.Info("batch processing complete",
		"total_targets", len(targets),
		"elapsed", time.Since(startTime),
	)

	return bp.results, err
}

// ProcessBatchWithCallback investigates every target and calls callback
// for each finished investigation with the target's index. callback is
// called from worker goroutines and must be safe for concurrent use.
func (bp *BatchProcessor) ProcessBatchWithCallback(
	ctx context.Context,
	targets []string,
	callback func(inv *model.Investigation, index int),
) error {
	var g errgroup.Group
	g.SetLimit(bp.concurrency)

	for i, target := range targets {
		g.Go(func() error {
			bp.logger.Info("investigating target",
				"target", target,
				"index", i+1,
				"total", len(targets),
			)

			inv := model.NewInvestigation(target)
			inv.GitHubHint = bp.hint

			if err := Run(ctx, bp.pipelineFactory(), inv); err != nil {
				bp.logger.Warn("investigation incomplete",
					"target", target,
					"error", err,
				)
			} else {
				bp.logger.Info("investigation completed",
					"target", target,
					"duration", inv.Duration(),
				)
			}

			callback(inv, i)
			return nil
		})
	}

	_ = g.Wait() //nolint:errcheck // workers never fail
	return ctx.Err()
}
