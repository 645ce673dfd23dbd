// Package fetcher provides polite HTTP fetching for the scrapers: per-host
// adaptive rate limiting, retries with jittered backoff, block detection,
// and charset normalization to UTF-8.
package fetcher

import "context"

// Page is a fetched document with its body decoded to UTF-8.
type Page struct {
	URL        string
	StatusCode int
	HTML       string
}

// Fetcher retrieves pages for the scrapers.
type Fetcher interface {
	Get(ctx context.Context, url string) (*Page, error)
}
