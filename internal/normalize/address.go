package normalize

import (
	"regexp"
	"strings"
)

// malaysianStates is scanned in order; the first name found in an address
// wins, so ordering is part of the contract.
var malaysianStates = []string{
	"Johor", "Kedah", "Kelantan", "Kuala Lumpur", "Labuan", "Melaka",
	"Negeri Sembilan", "Pahang", "Penang", "Perak", "Perlis", "Putrajaya",
	"Sabah", "Sarawak", "Selangor", "Terengganu",
}

// federalTerritories double as their own city when the address carries no
// separate city segment.
var federalTerritories = map[string]bool{
	"Kuala Lumpur": true,
	"Labuan":       true,
	"Putrajaya":    true,
}

var postalCodeRe = regexp.MustCompile(`\b\d{5}\b`)

// States returns the recognized Malaysian state names in scan order.
func States() []string {
	out := make([]string, len(malaysianStates))
	copy(out, malaysianStates)
	return out
}

// AddressParts holds the components recovered from a free-text address.
// Fields a parse could not recover are empty.
type AddressParts struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
}

// ParseAddress splits a free-text Malaysian address into street, city,
// state, and postal code. It is a best-effort splitter: malformed addresses
// degrade to partial results, never errors.
//
// The postal code is the first five-digit token. The state is the first
// recognized state name occurring in the string; the comma segments before
// it become street and city. Without a state, the last comma segment (after
// dropping a trailing "Malaysia") is taken as the city. A federal territory
// stands in as the city when no city segment exists.
func ParseAddress(address string) AddressParts {
	var parts AddressParts
	if address == "" {
		return parts
	}
	parts.PostalCode = postalCodeRe.FindString(address)

	for _, state := range malaysianStates {
		i := strings.Index(address, state)
		if i < 0 {
			continue
		}
		parts.State = state
		segs := splitSegments(address[:i])
		switch {
		case len(segs) >= 2:
			parts.City = dropToken(segs[len(segs)-1], parts.PostalCode)
			parts.Street = strings.Join(segs[:len(segs)-1], ", ")
		case len(segs) == 1:
			parts.Street = segs[0]
		}
		break
	}

	if parts.State == "" && strings.Contains(address, ",") {
		segs := splitSegments(address)
		country := false
		if n := len(segs); n > 0 && strings.EqualFold(segs[n-1], "malaysia") {
			segs, country = segs[:n-1], true
		}
		switch n := len(segs); {
		case n >= 2:
			parts.City = dropToken(segs[n-1], parts.PostalCode)
			parts.Street = strings.Join(segs[:n-1], ", ")
		case n == 1 && country:
			parts.City = dropToken(segs[0], parts.PostalCode)
		case n == 1:
			parts.Street = segs[0]
		}
	}

	if parts.City == "" && federalTerritories[parts.State] {
		parts.City = parts.State
	}
	if parts.Street == "" && parts.City == "" {
		if i := strings.Index(address, ","); i >= 0 {
			parts.Street = strings.TrimSpace(address[:i])
		} else {
			parts.Street = strings.TrimSpace(address)
		}
	}
	return parts
}

// splitSegments splits on commas, trims each piece, and drops empties.
func splitSegments(s string) []string {
	raw := strings.Split(s, ",")
	segs := make([]string, 0, len(raw))
	for _, seg := range raw {
		if t := strings.TrimSpace(seg); t != "" {
			segs = append(segs, t)
		}
	}
	return segs
}

// dropToken removes the first occurrence of token from s and tidies the
// remaining whitespace.
func dropToken(s, token string) string {
	if token != "" {
		s = strings.Replace(s, token, "", 1)
	}
	return strings.Join(strings.Fields(s), " ")
}
