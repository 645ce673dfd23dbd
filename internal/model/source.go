package model

import (
	"fmt"
	"strings"
)

// SourceType identifies the acquisition channel a lead came from. The tag is
// also the key under which the raw payload is stored in Lead.Metadata.
type SourceType string

const (
	SourceMapListing       SourceType = "map-listing"
	SourceSocialProfile    SourceType = "social-profile"
	SourceWebPage          SourceType = "web-page"
	SourceDirectoryScrape  SourceType = "directory-scrape"
	SourceGovernmentScrape SourceType = "government-scrape"
	SourceUniversityScrape SourceType = "university-scrape"
	SourceManual           SourceType = "manual"
	SourceImported         SourceType = "imported"
	SourceOther            SourceType = "other"
)

// SourceTypes lists all known acquisition channels in display order.
func SourceTypes() []SourceType {
	return []SourceType{
		SourceMapListing,
		SourceSocialProfile,
		SourceWebPage,
		SourceDirectoryScrape,
		SourceGovernmentScrape,
		SourceUniversityScrape,
		SourceManual,
		SourceImported,
		SourceOther,
	}
}

// Valid reports whether s is one of the known source tags.
func (s SourceType) Valid() bool {
	switch s {
	case SourceMapListing, SourceSocialProfile, SourceWebPage,
		SourceDirectoryScrape, SourceGovernmentScrape, SourceUniversityScrape,
		SourceManual, SourceImported, SourceOther:
		return true
	}
	return false
}

func (s SourceType) String() string { return string(s) }

// ParseSourceType converts CLI/API input into a SourceType. Underscores are
// accepted in place of hyphens.
func ParseSourceType(raw string) (SourceType, error) {
	s := SourceType(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(raw)), "_", "-"))
	if !s.Valid() {
		return "", fmt.Errorf("unknown source type %q", raw)
	}
	return s, nil
}
