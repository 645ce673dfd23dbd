package pipeline

import (
	"fmt"
	"strings"

	"github.com/leadgen-my/leadgen-cli/internal/model"
	"github.com/leadgen-my/leadgen-cli/internal/normalize"
)

// mapListing handles map/places listing payloads: business name, phone,
// website, a free-text address, coordinates, rating, and a comma-separated
// category list. Listings rarely carry a structured email, so one is pulled
// from description text when present.
func mapListing(p map[string]any, lead *model.Lead) error {
	lead.Organization = str(p, "name")
	lead.Phone = str(p, "phone")
	lead.Website = str(p, "website")

	if addr := str(p, "address"); addr != "" {
		parts := normalize.ParseAddress(addr)
		lead.Address = parts.Street
		lead.City = parts.City
		lead.State = parts.State
		lead.PostalCode = parts.PostalCode
	}
	if coords, ok := p["coordinates"].(map[string]any); ok {
		lead.Location = &model.Coordinates{
			Latitude:  num(coords, "latitude"),
			Longitude: num(coords, "longitude"),
		}
	}
	lead.Rating = num(p, "rating")
	lead.ReviewsCount = int(num(p, "reviews"))
	if cat, ok := p["category"]; ok {
		lead.Industry = firstCategory(cat)
	}
	for _, key := range []string{"description", "bio"} {
		if lead.Email != "" {
			break
		}
		if text := str(p, key); text != "" {
			lead.Email = normalize.ExtractContactInfo(text).Email
		}
	}
	return nil
}

// mapSocialProfile handles social profile payloads. A payload without a
// username carries nothing attributable, so only the provenance copy is
// kept.
func mapSocialProfile(p map[string]any, lead *model.Lead) error {
	username := str(p, "username")
	if username == "" {
		return nil
	}
	lead.Organization = str(p, "full_name")
	lead.Email = str(p, "email")
	lead.Phone = str(p, "phone")
	lead.Website = str(p, "website")
	lead.Industry = str(p, "business_category")
	lead.SocialMedia = map[string]string{
		"instagram": "https://www.instagram.com/" + username,
	}
	if v, ok := p["address"]; ok {
		lead.Address = asString(v)
	}
	if v, ok := p["city"]; ok {
		lead.City = asString(v)
	}
	if v, ok := p["zip_code"]; ok {
		lead.PostalCode = asString(v)
	}
	return nil
}

// mapWebPage handles scraped page payloads: the organization comes from the
// title (segment before " | "), contact details are extracted from the page
// text, and the page URL becomes both website and source URL.
func mapWebPage(p map[string]any, lead *model.Lead) error {
	content := str(p, "content")
	if _, ok := p["content"]; !ok {
		content = str(p, "title")
	}
	if title := str(p, "title"); title != "" {
		lead.Organization = strings.TrimSpace(strings.Split(title, " | ")[0])
	}
	info := normalize.ExtractContactInfo(content)
	lead.Email = info.Email
	lead.Phone = info.Phone
	lead.Address = info.Address
	lead.Website = str(p, "url")
	lead.SourceURL = str(p, "url")
	return nil
}

// ContactMapper maps a flat contact record. Callers handling manual or
// imported payloads register it for those sources.
var ContactMapper MapperFunc = mapContact

// mapContact handles directory, government, and university scrape payloads,
// which arrive as flat contact records.
func mapContact(p map[string]any, lead *model.Lead) error {
	lead.Organization = str(p, "organization")
	if lead.Organization == "" {
		lead.Organization = str(p, "name")
	}
	lead.PersonName = str(p, "person_name")
	lead.Role = str(p, "role")
	lead.Email = str(p, "email")
	lead.Phone = str(p, "phone")
	lead.Website = str(p, "website")
	lead.SourceURL = str(p, "url")

	if addr := str(p, "address"); addr != "" {
		parts := normalize.ParseAddress(addr)
		lead.Address = parts.Street
		lead.City = parts.City
		lead.State = parts.State
		lead.PostalCode = parts.PostalCode
	}
	if v := str(p, "city"); v != "" {
		lead.City = v
	}
	if v := str(p, "state"); v != "" {
		lead.State = v
	}
	if v := str(p, "postal_code"); v != "" {
		lead.PostalCode = v
	}
	if v, ok := p["industry"]; ok {
		lead.Industry = firstCategory(v)
	}
	return nil
}

// str returns the payload value for key as a string, or "" when absent.
func str(p map[string]any, key string) string {
	v, ok := p[key]
	if !ok {
		return ""
	}
	return asString(v)
}

func asString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case nil:
		return ""
	case fmt.Stringer:
		return s.String()
	}
	return fmt.Sprintf("%v", v)
}

// num returns the payload value for key as a float64, tolerating the JSON
// decoder's number types.
func num(p map[string]any, key string) float64 {
	switch n := p[key].(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	}
	return 0
}

// firstCategory returns the first entry of a category value, which sources
// deliver either as a comma-separated string or as a list.
func firstCategory(v any) string {
	switch cat := v.(type) {
	case string:
		return strings.TrimSpace(strings.Split(cat, ",")[0])
	case []string:
		if len(cat) > 0 {
			return strings.TrimSpace(cat[0])
		}
	case []any:
		if len(cat) > 0 {
			return strings.TrimSpace(asString(cat[0]))
		}
	}
	return ""
}
