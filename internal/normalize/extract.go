package normalize

import (
	"regexp"
	"strings"
)

var (
	emailRe = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)

	// Country-code form first, local "0x" form second; the first pattern
	// that matches wins.
	phoneRes = []*regexp.Regexp{
		regexp.MustCompile(`(?:\+60|0060|60)(?:\d[ -]?){8,10}`),
		regexp.MustCompile(`0\d(?:\d[ -]?){7,9}`),
	}

	// Number + "Jalan" + a recognized state or "Malaysia" + postcode. Only
	// well-formed Malaysian street addresses embedded in prose match.
	addressRe = regexp.MustCompile(`(?i)\d+\s+Jalan\s+[A-Za-z0-9\s,]+` +
		`(?:Kuala Lumpur|Penang|Johor|Selangor|Sabah|Sarawak|Perak|Melaka|Negeri Sembilan|` +
		`Pahang|Terengganu|Kelantan|Putrajaya|Labuan|Perlis|Kedah|Malaysia)` +
		`[A-Za-z0-9\s,]*\d{5}`)

	phoneSeparators = strings.NewReplacer(" ", "", "-", "")
)

// ContactInfo holds contact details pulled out of free text. Fields with no
// match are empty.
type ContactInfo struct {
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// ExtractContactInfo scans arbitrary text for an email address, a Malaysian
// phone number, and a Malaysian street address. First match wins per field;
// malformed text yields empty fields, never an error.
func ExtractContactInfo(text string) ContactInfo {
	var info ContactInfo
	if text == "" {
		return info
	}
	info.Email = emailRe.FindString(text)
	for _, re := range phoneRes {
		if m := re.FindString(text); m != "" {
			info.Phone = phoneSeparators.Replace(m)
			break
		}
	}
	info.Address = strings.TrimSpace(addressRe.FindString(text))
	return info
}
