package fetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func newTestFetcher() *HTTPFetcher {
	return NewHTTPFetcher(Options{
		UserAgent:         "test-agent",
		Timeout:           5 * time.Second,
		MaxRetries:        3,
		RequestsPerSecond: 100,
		Burst:             1,
	})
}

func TestAdaptiveLimiter_SuccessRampsUp(t *testing.T) {
	lim := NewAdaptiveLimiter(10, 1)

	for range 4 {
		lim.OnSuccess()
	}

	// 10 * 1.2^4 overshoots the 2x ceiling, so the rate pins at 20.
	assert.Equal(t, rate.Limit(20), lim.Limit())
}

func TestAdaptiveLimiter_RateLimitBacksOff(t *testing.T) {
	lim := NewAdaptiveLimiter(10, 1)

	for range 3 {
		lim.OnRateLimit()
	}

	// Halving stops at the initial/4 floor.
	assert.Equal(t, rate.Limit(2.5), lim.Limit())
}

func TestGet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-agent", r.Header.Get("User-Agent"))
		assert.Equal(t, "en-US,en;q=0.9,ms;q=0.8", r.Header.Get("Accept-Language"))
		w.Write([]byte("<html><body><h1>Tech Solutions Sdn Bhd</h1></body></html>"))
	}))
	defer srv.Close()

	f := newTestFetcher()
	page, err := f.Get(context.Background(), srv.URL+"/contact")
	require.NoError(t, err)

	assert.Equal(t, srv.URL+"/contact", page.URL)
	assert.Equal(t, http.StatusOK, page.StatusCode)
	assert.Contains(t, page.HTML, "Tech Solutions Sdn Bhd")
}

func TestGet_RetriesServerError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte("<html>recovered</html>"))
	}))
	defer srv.Close()

	f := newTestFetcher()
	page, err := f.Get(context.Background(), srv.URL)
	require.NoError(t, err)

	assert.Contains(t, page.HTML, "recovered")
	assert.Equal(t, int32(2), calls.Load())
}

func TestGet_GivesUpAfterMaxRetries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	f := NewHTTPFetcher(Options{MaxRetries: 1, RequestsPerSecond: 100})
	_, err := f.Get(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "giving up")
}

func TestGet_TooManyRequestsHalvesRate(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte("<html>ok</html>"))
	}))
	defer srv.Close()

	f := newTestFetcher()
	_, err := f.Get(context.Background(), srv.URL)
	require.NoError(t, err)

	u, err := url.Parse(srv.URL)
	require.NoError(t, err)

	// 100 rps halved to 50 by the 429, then one success nudges it to 60.
	assert.InDelta(t, 60, float64(f.limiterFor(u.Host).Limit()), 0.001)
}

func TestGet_Blocked(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><div class="g-recaptcha"></div></body></html>`))
	}))
	defer srv.Close()

	f := newTestFetcher()
	_, err := f.Get(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "blocked")
	assert.Contains(t, err.Error(), "captcha")
}

func TestGet_ClientErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	f := newTestFetcher()
	_, err := f.Get(context.Background(), srv.URL+"/missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
}

func TestGet_DecodesCharset(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=windows-1252")
		w.Write([]byte("<html><body>caf\xe9</body></html>"))
	}))
	defer srv.Close()

	f := newTestFetcher()
	page, err := f.Get(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Contains(t, page.HTML, "café")
}
