package fetcher

import (
	"context"
	"io"
	"math/rand/v2"
	"net/http"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// maxBodyBytes caps how much of a response is read. Directory listings and
// staff pages rarely exceed this; anything larger is not a page worth parsing.
const maxBodyBytes = 2 << 20

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

const (
	baseDelay = 1 * time.Second
	maxDelay  = 30 * time.Second
)

// AdaptiveLimiter wraps a rate.Limiter and adjusts its rate based on observed
// responses: successes ramp the rate back up, 429s halve it.
type AdaptiveLimiter struct {
	mu          sync.Mutex
	limiter     *rate.Limiter
	initialRate rate.Limit
	maxRate     rate.Limit
	minRate     rate.Limit
	currentRate rate.Limit
}

// NewAdaptiveLimiter builds a limiter starting at rps requests per second.
// The rate floats between rps/4 and rps*2 depending on how the host responds.
func NewAdaptiveLimiter(rps float64, burst int) *AdaptiveLimiter {
	initial := rate.Limit(rps)
	return &AdaptiveLimiter{
		limiter:     rate.NewLimiter(initial, burst),
		initialRate: initial,
		maxRate:     initial * 2,
		minRate:     initial / 4,
		currentRate: initial,
	}
}

// Wait blocks until the limiter permits another request.
func (a *AdaptiveLimiter) Wait(ctx context.Context) error {
	return a.limiter.Wait(ctx)
}

// OnSuccess nudges the rate up after a successful response.
func (a *AdaptiveLimiter) OnSuccess() {
	a.mu.Lock()
	defer a.mu.Unlock()

	next := a.currentRate * 1.2
	if next > a.maxRate {
		next = a.maxRate
	}
	if next != a.currentRate {
		a.currentRate = next
		a.limiter.SetLimit(next)
	}
}

// OnRateLimit halves the rate after a 429.
func (a *AdaptiveLimiter) OnRateLimit() {
	a.mu.Lock()
	defer a.mu.Unlock()

	next := a.currentRate / 2
	if next < a.minRate {
		next = a.minRate
	}
	if next != a.currentRate {
		a.currentRate = next
		a.limiter.SetLimit(next)
		zap.L().Warn("rate limited, backing off",
			zap.Float64("rps", float64(next)))
	}
}

// Limit reports the current rate.
func (a *AdaptiveLimiter) Limit() rate.Limit {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.currentRate
}

// Options configure an HTTPFetcher. Zero values fall back to defaults suited
// to scraping small Malaysian sites politely.
type Options struct {
	UserAgent         string
	Timeout           time.Duration
	MaxRetries        int
	RequestsPerSecond float64
	Burst             int
}

// HTTPFetcher fetches pages over HTTP with one adaptive limiter per host.
type HTTPFetcher struct {
	client *http.Client
	opts   Options

	mu       sync.Mutex
	limiters map[string]*AdaptiveLimiter
}

var _ Fetcher = (*HTTPFetcher)(nil)

// NewHTTPFetcher builds a fetcher with sane defaults for any option left zero.
func NewHTTPFetcher(opts Options) *HTTPFetcher {
	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = 3
	}
	if opts.RequestsPerSecond <= 0 {
		opts.RequestsPerSecond = 0.5
	}
	if opts.Burst <= 0 {
		opts.Burst = 1
	}
	return &HTTPFetcher{
		client: &http.Client{
			Timeout: opts.Timeout,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 4,
				MaxConnsPerHost:     8,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		opts:     opts,
		limiters: make(map[string]*AdaptiveLimiter),
	}
}

// limiterFor returns the limiter for host, creating one at the base rate if
// needed. Scraped hosts are not known up front, so limiters are built on demand.
func (f *HTTPFetcher) limiterFor(host string) *AdaptiveLimiter {
	f.mu.Lock()
	defer f.mu.Unlock()

	lim, ok := f.limiters[host]
	if !ok {
		lim = NewAdaptiveLimiter(f.opts.RequestsPerSecond, f.opts.Burst)
		f.limiters[host] = lim
	}
	return lim
}

// Get fetches url, retrying transient failures, and returns the page with its
// body decoded to UTF-8.
func (f *HTTPFetcher) Get(ctx context.Context, url string) (*Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, eris.Wrapf(err, "fetcher: build request for %s", url)
	}
	req.Header.Set("User-Agent", f.opts.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9,ms;q=0.8")

	resp, err := f.doWithRetry(ctx, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, eris.Wrapf(err, "fetcher: read body from %s", url)
	}

	if blocked, kind := DetectBlock(resp, body); blocked {
		return nil, eris.Errorf("fetcher: blocked by %s (%s)", req.URL.Host, kind)
	}
	if resp.StatusCode >= 400 {
		return nil, eris.Errorf("fetcher: status %d from %s", resp.StatusCode, url)
	}

	html, err := DecodeHTML(body, resp.Header.Get("Content-Type"))
	if err != nil {
		zap.L().Warn("charset decode failed, using raw body",
			zap.String("url", url),
			zap.Error(err))
	}
	return &Page{URL: url, StatusCode: resp.StatusCode, HTML: html}, nil
}

// doWithRetry runs the request up to MaxRetries times, waiting on the host
// limiter before each attempt. 429 and 5xx responses back off and retry;
// anything else is returned as-is for the caller to judge.
func (f *HTTPFetcher) doWithRetry(ctx context.Context, req *http.Request) (*http.Response, error) {
	lim := f.limiterFor(req.URL.Host)

	var lastErr error
	for attempt := range f.opts.MaxRetries {
		if err := lim.Wait(ctx); err != nil {
			return nil, eris.Wrapf(err, "fetcher: wait for %s", req.URL.Host)
		}

		resp, err := f.client.Do(req.Clone(ctx))
		if err != nil {
			lastErr = err
			if berr := backoff(ctx, attempt); berr != nil {
				return nil, berr
			}
			continue
		}

		switch {
		case resp.StatusCode == http.StatusTooManyRequests:
			resp.Body.Close() //nolint:errcheck
			lim.OnRateLimit()
			lastErr = eris.Errorf("fetcher: rate limited by %s", req.URL.Host)
			if berr := backoff(ctx, attempt); berr != nil {
				return nil, berr
			}
		case resp.StatusCode >= 500:
			resp.Body.Close() //nolint:errcheck
			lastErr = eris.Errorf("fetcher: status %d from %s", resp.StatusCode, req.URL.Host)
			if berr := backoff(ctx, attempt); berr != nil {
				return nil, berr
			}
		default:
			lim.OnSuccess()
			return resp, nil
		}
	}
	return nil, eris.Wrapf(lastErr, "fetcher: giving up on %s after %d attempts", req.URL.Host, f.opts.MaxRetries)
}

// backoff sleeps for an exponentially growing delay with jitter, or returns
// early if ctx is done.
func backoff(ctx context.Context, attempt int) error {
	d := baseDelay * time.Duration(1<<attempt)
	if d > maxDelay {
		d = maxDelay
	}
	d += time.Duration(rand.Int64N(int64(d) / 2))

	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
