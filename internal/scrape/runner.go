package scrape

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/leadgen-my/leadgen-cli/internal/pipeline"
)

// ScrapeAll runs one scraper over multiple site URLs in parallel, bounded
// by maxConcurrent. A failed site is logged and skipped; the combined
// payloads of the successful sites are returned.
func ScrapeAll(ctx context.Context, s Scraper, urls []string, maxConcurrent int) []pipeline.RawPayload {
	if maxConcurrent <= 0 {
		maxConcurrent = 4
	}

	var (
		mu       sync.Mutex
		payloads []pipeline.RawPayload
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrent)

	for _, url := range urls {
		g.Go(func() error {
			found, err := s.Scrape(gctx, url)
			if err != nil {
				zap.L().Warn("scrape: site failed",
					zap.String("scraper", s.Name()),
					zap.String("url", url),
					zap.Error(err))
				return nil
			}
			mu.Lock()
			payloads = append(payloads, found...)
			mu.Unlock()
			return nil
		})
	}

	_ = g.Wait()
	return payloads
}
