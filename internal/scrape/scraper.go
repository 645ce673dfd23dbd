// Package scrape implements the HTML acquisition channels: directory
// listings, government ministry sites, and university faculty pages. Each
// scraper crawls a bounded set of pages and emits raw contact payloads for
// the standardization pipeline.
package scrape

import (
	"context"

	"github.com/leadgen-my/leadgen-cli/internal/fetcher"
	"github.com/leadgen-my/leadgen-cli/internal/model"
	"github.com/leadgen-my/leadgen-cli/internal/pipeline"
)

// Scraper crawls one site and returns its raw contact payloads.
type Scraper interface {
	Name() string
	Source() model.SourceType
	Scrape(ctx context.Context, baseURL string) ([]pipeline.RawPayload, error)
}

// Options bound a scraper's crawl.
type Options struct {
	Fetcher  fetcher.Fetcher
	MaxPages int
}

func (o Options) withDefaults() Options {
	if o.Fetcher == nil {
		o.Fetcher = fetcher.NewHTTPFetcher(fetcher.Options{})
	}
	if o.MaxPages <= 0 {
		o.MaxPages = 5
	}
	return o
}

// NewScraper returns the scraper for a scrape source type, or nil for
// non-scrape sources.
func NewScraper(source model.SourceType, opts Options) Scraper {
	switch source {
	case model.SourceDirectoryScrape:
		return NewDirectoryScraper(opts)
	case model.SourceGovernmentScrape:
		return NewGovernmentScraper(opts)
	case model.SourceUniversityScrape:
		return NewUniversityScraper(opts)
	}
	return nil
}
