// Package places provides a client for an actor-style map-listing search
// API that extracts business information from map listings.
package places

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
)

// Client defines the map-listing search operations.
type Client interface {
	// Search runs a business search, optionally scoped to a location, and
	// returns up to limit listings.
	Search(ctx context.Context, query, location string, limit int) ([]Listing, error)
}

// Coordinates is a listing's position.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Listing is one business record returned by the search actor. Field names
// match the raw payload consumed by the map-listing mapper.
type Listing struct {
	Name        string       `json:"name"`
	Address     string       `json:"address"`
	Phone       string       `json:"phone"`
	Website     string       `json:"website"`
	Rating      float64      `json:"rating"`
	Reviews     int          `json:"reviews"`
	Category    string       `json:"category"`
	Description string       `json:"description"`
	Coordinates *Coordinates `json:"coordinates,omitempty"`
}

// searchRequest is the actor invocation payload.
type searchRequest struct {
	URL   string `json:"url"`
	Limit int    `json:"limit"`
}

// searchResponse is the actor response envelope.
type searchResponse struct {
	Status  string    `json:"status"`
	Error   string    `json:"error"`
	Results []Listing `json:"results"`
}

// Option configures the places client.
type Option func(*httpClient)

// WithBaseURL sets the actor endpoint.
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewClient creates a map-listing search client. The endpoint has no usable
// default; callers configure it via WithBaseURL.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey: apiKey,
		http: &http.Client{
			Timeout: 60 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *httpClient) Search(ctx context.Context, query, location string, limit int) ([]Listing, error) {
	if c.baseURL == "" {
		return nil, eris.New("places: base URL not configured")
	}
	if limit <= 0 {
		limit = 20
	}

	fullQuery := query
	if location != "" {
		fullQuery = query + " in " + location
	}

	payload, err := json.Marshal(searchRequest{URL: fullQuery, Limit: limit})
	if err != nil {
		return nil, eris.Wrap(err, "places: marshal request")
	}

	body, statusCode, err := c.retryDo(ctx, payload)
	if err != nil {
		return nil, eris.Wrap(err, "places: request failed")
	}
	if statusCode != http.StatusOK {
		return nil, eris.Errorf("places: unexpected status %d: %s", statusCode, string(body))
	}

	var result searchResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, eris.Wrap(err, "places: unmarshal response")
	}
	if result.Error != "" {
		return nil, eris.Errorf("places: actor error: %s", result.Error)
	}

	if len(result.Results) > limit {
		result.Results = result.Results[:limit]
	}
	return result.Results, nil
}

// retryableStatusCode returns true if the HTTP status code should trigger a retry.
func retryableStatusCode(code int) bool {
	return code == http.StatusTooManyRequests ||
		code == http.StatusInternalServerError ||
		code == http.StatusBadGateway ||
		code == http.StatusServiceUnavailable
}

// retryDo posts the payload with exponential backoff retries on transient
// failures (429, 500, 502, 503).
func (c *httpClient) retryDo(ctx context.Context, payload []byte) ([]byte, int, error) {
	const maxAttempts = 3
	backoff := 1 * time.Second

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(payload))
		if err != nil {
			return nil, 0, eris.Wrap(err, "places: create request")
		}
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			lastErr = err
			if attempt < maxAttempts {
				select {
				case <-ctx.Done():
					return nil, 0, ctx.Err()
				case <-time.After(backoff):
				}
				backoff *= 2
				continue
			}
			return nil, 0, lastErr
		}

		body, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if readErr != nil {
			return nil, resp.StatusCode, eris.Wrap(readErr, "places: read response body")
		}

		if retryableStatusCode(resp.StatusCode) && attempt < maxAttempts {
			lastErr = eris.Errorf("places: status %d: %s", resp.StatusCode, string(body))
			select {
			case <-ctx.Done():
				return nil, 0, ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
			continue
		}

		return body, resp.StatusCode, nil
	}

	return nil, 0, lastErr
}
