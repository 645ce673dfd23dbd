package normalize

import "strings"

// orgSuffixTerms are corporate suffixes stripped from organization names
// before comparison. "sdn bhd" must come before "bhd" so the combined form
// is removed whole.
var orgSuffixTerms = []string{
	"sdn bhd",
	"bhd",
	"berhad",
	"enterprise",
	"company",
	"inc",
	"llc",
	"ltd",
	"limited",
}

// Organization reduces an organization name to a comparison key: lowercase,
// punctuation removed, Malaysian corporate suffixes stripped, the standalone
// word "malaysia" dropped, whitespace collapsed. Empty input yields "".
func Organization(name string) string {
	if name == "" {
		return ""
	}
	s := stripNonAlnum(strings.ToLower(name))

	// Suffix stripping loops until stable so removals that expose new
	// occurrences ("sdn bhd sdn bhd") still end at a fixed point.
	for changed := true; changed; {
		changed = false
		for _, term := range orgSuffixTerms {
			if strings.Contains(s, term) {
				s = strings.ReplaceAll(s, term, "")
				changed = true
			}
		}
	}

	fields := strings.Fields(s)
	kept := fields[:0]
	for _, f := range fields {
		if f != "malaysia" {
			kept = append(kept, f)
		}
	}
	return strings.Join(kept, " ")
}

// Phone reduces a phone number to a digit string with Malaysia's country
// code: non-digits are removed, a leading "0" becomes "60", an existing "60"
// prefix is kept. This is a comparison key, not E.164 validation.
func Phone(phone string) string {
	var b strings.Builder
	b.Grow(len(phone))
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	switch {
	case digits == "":
		return ""
	case strings.HasPrefix(digits, "60"):
		return digits
	case strings.HasPrefix(digits, "0"):
		return "60" + digits[1:]
	}
	return digits
}

// Website reduces a URL to a comparison key: lowercase, protocol and "www."
// prefixes removed, trailing slashes removed. Stripping repeats until stable
// so nested prefixes cannot survive a single pass.
func Website(url string) string {
	if url == "" {
		return ""
	}
	s := strings.ToLower(url)
	for {
		prev := s
		s = strings.TrimPrefix(s, "http://")
		s = strings.TrimPrefix(s, "https://")
		s = strings.TrimPrefix(s, "www.")
		s = strings.TrimRight(s, "/")
		if s == prev {
			return s
		}
	}
}

// stripNonAlnum keeps lowercase letters, digits, and whitespace; everything
// else is dropped.
func stripNonAlnum(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ', r == '\t', r == '\n', r == '\r':
			b.WriteRune(' ')
		}
	}
	return b.String()
}
