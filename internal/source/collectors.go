package source

import (
	"context"

	"go.uber.org/zap"

	"github.com/leadgen-my/leadgen-cli/internal/model"
	"github.com/leadgen-my/leadgen-cli/internal/pipeline"
	"github.com/leadgen-my/leadgen-cli/pkg/instagram"
	"github.com/leadgen-my/leadgen-cli/pkg/places"
	"github.com/leadgen-my/leadgen-cli/pkg/webreader"
)

// PlacesCollector produces map-listing payloads from the places client.
type PlacesCollector struct {
	client places.Client
}

// NewPlacesCollector builds a places collector.
func NewPlacesCollector(client places.Client) *PlacesCollector {
	return &PlacesCollector{client: client}
}

func (c *PlacesCollector) Name() string { return "places" }

func (c *PlacesCollector) Source() model.SourceType { return model.SourceMapListing }

func (c *PlacesCollector) Collect(ctx context.Context, q Query) ([]pipeline.RawPayload, error) {
	listings, err := c.client.Search(ctx, q.Search, q.Location, q.Limit)
	if err != nil {
		return nil, err
	}

	payloads := make([]pipeline.RawPayload, 0, len(listings))
	for _, l := range listings {
		data := map[string]any{
			"name":        l.Name,
			"address":     l.Address,
			"phone":       l.Phone,
			"website":     l.Website,
			"rating":      l.Rating,
			"reviews":     l.Reviews,
			"category":    l.Category,
			"description": l.Description,
		}
		if l.Coordinates != nil {
			data["coordinates"] = map[string]any{
				"latitude":  l.Coordinates.Latitude,
				"longitude": l.Coordinates.Longitude,
			}
		}
		payloads = append(payloads, pipeline.RawPayload{Source: c.Source(), Data: data})
	}
	return payloads, nil
}

// InstagramCollector produces social-profile payloads from the instagram
// client: direct @username lookups plus hashtag business searches.
type InstagramCollector struct {
	client instagram.Client
}

// NewInstagramCollector builds an instagram collector.
func NewInstagramCollector(client instagram.Client) *InstagramCollector {
	return &InstagramCollector{client: client}
}

func (c *InstagramCollector) Name() string { return "instagram" }

func (c *InstagramCollector) Source() model.SourceType { return model.SourceSocialProfile }

func (c *InstagramCollector) Collect(ctx context.Context, q Query) ([]pipeline.RawPayload, error) {
	var payloads []pipeline.RawPayload
	for _, tag := range q.Hashtags {
		profiles, err := c.client.SearchBusinesses(ctx, tag, q.Limit)
		if err != nil {
			// One failed hashtag should not sink the rest.
			zap.L().Warn("source: instagram search failed",
				zap.String("query", tag),
				zap.Error(err))
			continue
		}
		for _, p := range profiles {
			payloads = append(payloads, pipeline.RawPayload{Source: c.Source(), Data: profileData(p)})
		}
	}
	return payloads, nil
}

func profileData(p instagram.Profile) map[string]any {
	return map[string]any{
		"username":          p.Username,
		"full_name":         p.FullName,
		"biography":         p.Biography,
		"email":             p.Email,
		"phone":             p.Phone,
		"website":           p.Website,
		"business_category": p.BusinessCategory,
		"address":           p.Address,
		"city":              p.City,
		"zip_code":          p.ZipCode,
	}
}

// WebReaderCollector produces web-page payloads: direct page reads for
// explicit URLs and search-result pages for the free-text query.
type WebReaderCollector struct {
	client webreader.Client
}

// NewWebReaderCollector builds a webreader collector.
func NewWebReaderCollector(client webreader.Client) *WebReaderCollector {
	return &WebReaderCollector{client: client}
}

func (c *WebReaderCollector) Name() string { return "webreader" }

func (c *WebReaderCollector) Source() model.SourceType { return model.SourceWebPage }

func (c *WebReaderCollector) Collect(ctx context.Context, q Query) ([]pipeline.RawPayload, error) {
	var payloads []pipeline.RawPayload

	for _, url := range q.URLs {
		resp, err := c.client.Read(ctx, url)
		if err != nil {
			zap.L().Warn("source: page read failed",
				zap.String("url", url),
				zap.Error(err))
			continue
		}
		payloads = append(payloads, pipeline.RawPayload{Source: c.Source(), Data: map[string]any{
			"title":   resp.Data.Title,
			"content": resp.Data.Content,
			"url":     resp.Data.URL,
		}})
	}

	if q.Search != "" {
		query := q.Search
		if q.Location != "" {
			query += " " + q.Location
		}
		resp, err := c.client.Search(ctx, query)
		if err != nil {
			if len(payloads) > 0 {
				zap.L().Warn("source: page search failed", zap.Error(err))
				return payloads, nil
			}
			return nil, err
		}
		results := resp.Data
		if q.Limit > 0 && len(results) > q.Limit {
			results = results[:q.Limit]
		}
		for _, r := range results {
			payloads = append(payloads, pipeline.RawPayload{Source: c.Source(), Data: map[string]any{
				"title":   r.Title,
				"content": r.Content,
				"url":     r.URL,
			}})
		}
	}

	return payloads, nil
}
