package refine

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/rcliao/mind-note/internal/model"
)

// BatchResult pairs one input with its refinement or input error.
type BatchResult struct {
	Index      int
	Refinement model.Refinement
	Err        error
}

// RefineBatch refines texts concurrently, at most concurrency at a time.
// Results keep input order; an invalid item does not fail the batch.
func (p *Pipeline) RefineBatch(ctx context.Context, texts []string, concurrency int) []BatchResult {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	results := make([]BatchResult, len(texts))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, text := range texts {
		g.Go(func() error {
			ref, err := p.Refine(gctx, text)
			results[i] = BatchResult{Index: i, Refinement: ref, Err: err}
			return nil
		})
	}
	_ = g.Wait()
	return results
}
