// Package instagram provides a client for an actor-style profile scraper
// used to collect social-profile lead payloads.
package instagram

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

// Client defines the profile scraper operations.
type Client interface {
	// Profile fetches a single business profile by username.
	Profile(ctx context.Context, username string) (*Profile, error)
	// SearchBusinesses searches profiles by keyword or hashtag and returns
	// up to limit business profiles.
	SearchBusinesses(ctx context.Context, query string, limit int) ([]Profile, error)
}

// Profile is one business profile. Field names match the raw payload
// consumed by the social-profile mapper.
type Profile struct {
	Username         string `json:"username"`
	FullName         string `json:"full_name"`
	Biography        string `json:"biography"`
	Email            string `json:"email"`
	Phone            string `json:"phone"`
	Website          string `json:"website"`
	BusinessCategory string `json:"business_category"`
	Address          string `json:"address"`
	City             string `json:"city"`
	ZipCode          string `json:"zip_code"`
	Followers        int    `json:"followers"`
	IsBusiness       bool   `json:"is_business"`
}

// scrapeRequest is the actor invocation payload.
type scrapeRequest struct {
	Search       string `json:"search,omitempty"`
	SearchType   string `json:"searchType,omitempty"`
	ResultsLimit int    `json:"resultsLimit"`
	ResultsType  string `json:"resultsType"`
}

// scrapeResponse is the actor response envelope.
type scrapeResponse struct {
	Error   string    `json:"error"`
	Results []Profile `json:"results"`
}

// Option configures the instagram client.
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

// NewClient creates a profile scraper client. The endpoint has no usable
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

func (c *httpClient) Profile(ctx context.Context, username string) (*Profile, error) {
	username = strings.TrimPrefix(strings.TrimSpace(username), "@")
	if username == "" {
		return nil, eris.New("instagram: empty username")
	}

	results, err := c.scrape(ctx, scrapeRequest{
		Search:       username,
		SearchType:   "user",
		ResultsLimit: 1,
		ResultsType:  "details",
	})
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, eris.Errorf("instagram: profile %q not found", username)
	}
	return &results[0], nil
}

func (c *httpClient) SearchBusinesses(ctx context.Context, query string, limit int) ([]Profile, error) {
	if limit <= 0 {
		limit = 20
	}

	searchType := "hashtag"
	if strings.HasPrefix(query, "@") {
		searchType = "user"
	}

	results, err := c.scrape(ctx, scrapeRequest{
		Search:       strings.TrimPrefix(query, "@"),
		SearchType:   searchType,
		ResultsLimit: limit,
		ResultsType:  "details",
	})
	if err != nil {
		return nil, err
	}

	// Personal accounts carry no business contact fields worth mapping.
	business := results[:0:0]
	for _, p := range results {
		if p.IsBusiness {
			business = append(business, p)
		}
	}
	if len(business) > limit {
		business = business[:limit]
	}
	return business, nil
}

func (c *httpClient) scrape(ctx context.Context, req scrapeRequest) ([]Profile, error) {
	if c.baseURL == "" {
		return nil, eris.New("instagram: base URL not configured")
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, eris.Wrap(err, "instagram: marshal request")
	}

	body, statusCode, err := c.retryDo(ctx, payload)
	if err != nil {
		return nil, eris.Wrap(err, "instagram: request failed")
	}
	if statusCode != http.StatusOK {
		return nil, eris.Errorf("instagram: unexpected status %d: %s", statusCode, string(body))
	}

	var result scrapeResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, eris.Wrap(err, "instagram: unmarshal response")
	}
	if result.Error != "" {
		return nil, eris.Errorf("instagram: actor error: %s", result.Error)
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
			return nil, 0, eris.Wrap(err, "instagram: create request")
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
			return nil, resp.StatusCode, eris.Wrap(readErr, "instagram: read response body")
		}

		if retryableStatusCode(resp.StatusCode) && attempt < maxAttempts {
			lastErr = eris.Errorf("instagram: status %d: %s", resp.StatusCode, string(body))
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
