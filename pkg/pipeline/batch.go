package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/hashicorp/go-hclog"
	"golang.org/x/sync/errgroup"

	"github.com/menta2k/bg-remover/internal/utils"
)

// ErrNoImages is returned when a directory holds no supported images.
var ErrNoImages = errors.New("no images found")

// BatchSummary tallies a batch run. Items keep the input order.
type BatchSummary struct {
	Items      []Item `json:"items"`
	Total      int    `json:"total"`
	Successful int    `json:"successful"`
	Failed     int    `json:"failed"`
}

// SuccessRate returns the percentage of successful items.
func (s *BatchSummary) SuccessRate() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Successful) / float64(s.Total) * 100
}

// Failures returns the failed items.
func (s *BatchSummary) Failures() []Item {
	var failed []Item
	for _, it := range s.Items {
		if !it.Success {
			failed = append(failed, it)
		}
	}
	return failed
}

// BatchProcessor runs a Pipeline over many images with bounded concurrency.
type BatchProcessor struct {
	pipeline    *Pipeline
	concurrency int
	logger      hclog.Logger
}

// NewBatchProcessor creates a batch processor. Concurrency below 1 means 1.
func NewBatchProcessor(p *Pipeline, concurrency int, logger hclog.Logger) *BatchProcessor {
	if concurrency < 1 {
		concurrency = 1
	}
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &BatchProcessor{pipeline: p, concurrency: concurrency, logger: logger}
}

// ProcessDirectory processes every supported image directly inside dir.
func (b *BatchProcessor) ProcessDirectory(ctx context.Context, dir string) (*BatchSummary, error) {
	files, err := utils.ListImageFiles(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoImages, dir)
	}
	b.logger.Info("found images", "dir", dir, "count", len(files))
	return b.ProcessFiles(ctx, files), nil
}

// ProcessFiles processes sources and returns the tally. A failing item never
// stops the others; cancelling ctx marks the remaining items failed.
func (b *BatchProcessor) ProcessFiles(ctx context.Context, sources []string) *BatchSummary {
	items := make([]Item, len(sources))

	var g errgroup.Group
	g.SetLimit(b.concurrency)
	for i, src := range sources {
		i, src := i, src
		g.Go(func() error {
			b.logger.Debug("processing", "index", i+1, "total", len(sources), "source", src)
			items[i] = b.pipeline.Process(ctx, src)
			return nil
		})
	}
	_ = g.Wait()

	summary := &BatchSummary{Items: items, Total: len(items)}
	for _, it := range items {
		if it.Success {
			summary.Successful++
		} else {
			summary.Failed++
		}
	}

	b.logger.Info("batch finished",
		"total", summary.Total,
		"successful", summary.Successful,
		"failed", summary.Failed,
		"success_rate", fmt.Sprintf("%.1f%%", summary.SuccessRate()),
	)
	return summary
}
