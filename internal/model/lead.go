package model

import "time"

// DefaultCountry is assigned to every standardized lead; the pipeline only
// targets Malaysian businesses.
const DefaultCountry = "Malaysia"

// Coordinates is a latitude/longitude pair. The zero value means the
// location is unknown; a lead's location counts as present only when both
// components are set.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// IsZero reports whether either coordinate is missing.
func (c Coordinates) IsZero() bool {
	return c.Latitude == 0 || c.Longitude == 0
}

// Lead is the canonical record exchanged between collection, deduplication,
// persistence, and outreach. Field names on the wire follow the JSON tags.
type Lead struct {
	ID           string            `json:"id,omitempty"`
	Organization string            `json:"organization"`
	PersonName   string            `json:"person_name,omitempty"`
	Role         string            `json:"role,omitempty"`
	Email        string            `json:"email,omitempty"`
	Phone        string            `json:"phone,omitempty"`
	Address      string            `json:"address,omitempty"`
	City         string            `json:"city,omitempty"`
	State        string            `json:"state,omitempty"`
	PostalCode   string            `json:"postal_code,omitempty"`
	Country      string            `json:"country,omitempty"`
	Website      string            `json:"website,omitempty"`
	Industry     string            `json:"industry,omitempty"`
	Source       SourceType        `json:"source"`
	SourceURL    string            `json:"source_url,omitempty"`
	SocialMedia  map[string]string `json:"social_media,omitempty"`
	Location     *Coordinates      `json:"location,omitempty"`
	Rating       float64           `json:"rating,omitempty"`
	ReviewsCount int               `json:"reviews_count,omitempty"`
	Notes        string            `json:"notes,omitempty"`
	Status       LeadStatus        `json:"status,omitempty"`

	// Timestamp is the collection time, RFC3339 on the wire.
	Timestamp time.Time `json:"timestamp"`

	// Metadata maps source tag -> raw source payload. Enrichment only adds
	// keys, never overwrites existing ones.
	Metadata map[string]any `json:"metadata,omitempty"`

	// CompletenessScore is derived from the other fields and recomputed
	// after every merge; it is never the source of truth.
	CompletenessScore float64 `json:"completeness_score"`

	CreatedAt time.Time `json:"created_at,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// Clone returns a deep copy of the lead. Enrichment operates on copies so
// callers' inputs are never mutated.
func (l Lead) Clone() Lead {
	out := l
	if l.SocialMedia != nil {
		out.SocialMedia = make(map[string]string, len(l.SocialMedia))
		for k, v := range l.SocialMedia {
			out.SocialMedia[k] = v
		}
	}
	if l.Metadata != nil {
		out.Metadata = make(map[string]any, len(l.Metadata))
		for k, v := range l.Metadata {
			out.Metadata[k] = v
		}
	}
	if l.Location != nil {
		loc := *l.Location
		out.Location = &loc
	}
	return out
}

// HasLocation reports whether both coordinates are set.
func (l Lead) HasLocation() bool {
	return l.Location != nil && !l.Location.IsZero()
}

// HasSocialMedia reports whether any platform entry is non-empty.
func (l Lead) HasSocialMedia() bool {
	for _, v := range l.SocialMedia {
		if v != "" {
			return true
		}
	}
	return false
}
