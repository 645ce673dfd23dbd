package source

import (
	"context"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/leadgen-my/leadgen-cli/internal/pipeline"
)

// CollectAll fans the query out across the given collectors in parallel
// and combines their payloads. A failed source is logged and skipped, never
// aborting the run; the second return value counts sources that failed.
func CollectAll(ctx context.Context, collectors []Collector, q Query, maxConcurrent int) ([]pipeline.RawPayload, int) {
	if maxConcurrent <= 0 {
		maxConcurrent = len(collectors)
	}

	var (
		mu       sync.Mutex
		payloads []pipeline.RawPayload
		failed   atomic.Int64
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrent)

	for _, c := range collectors {
		g.Go(func() error {
			found, err := c.Collect(gctx, q)
			if err != nil {
				failed.Add(1)
				zap.L().Error("source: collector failed",
					zap.String("collector", c.Name()),
					zap.Error(err))
				return nil
			}
			zap.L().Info("source: collected payloads",
				zap.String("collector", c.Name()),
				zap.Int("count", len(found)))
			mu.Lock()
			payloads = append(payloads, found...)
			mu.Unlock()
			return nil
		})
	}

	_ = g.Wait()
	return payloads, int(failed.Load())
}
