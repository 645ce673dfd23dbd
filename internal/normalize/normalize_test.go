package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrganization(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"dotted suffix", "TECH SOLUTIONS SDN. BHD.", "tech solutions"},
		{"plain suffix", "Tech Solutions Sdn Bhd", "tech solutions"},
		{"punctuated name", "Tech-Solutions (M) Bhd", "techsolutions m"},
		{"geographic qualifier", "Tech Solutions Malaysia", "tech solutions"},
		{"qualifier inside word kept", "Malaysian Delights Enterprise", "malaysian delights"},
		{"berhad", "Maybank Berhad", "maybank"},
		{"company substring", "Different Company", "different"},
		{"suffix only", "Sdn Bhd", ""},
		{"empty", "", ""},
		{"whitespace collapse", "  Alpha \t Beta  ", "alpha beta"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Organization(tt.in))
		})
	}
}

func TestOrganizationIdempotent(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"TECH SOLUTIONS SDN. BHD.",
		"Tech Solutions Malaysia",
		"ltltdd",
		"sdn sdn bhd bhd",
		"Kuala Lumpur Kopitiam Sdn Bhd",
		"",
	}
	for _, in := range inputs {
		once := Organization(in)
		assert.Equal(t, once, Organization(once), "input %q", in)
	}
}

func TestPhone(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"local with dashes", "012-345-6789", "60123456789"},
		{"international", "+60123456789", "60123456789"},
		{"already country coded", "60123456789", "60123456789"},
		{"spaces and parens", "(03) 1234 5678", "60312345678"},
		{"foreign number kept", "6512345678", "6512345678"},
		{"double zero prefix", "0060312345678", "60060312345678"},
		{"no digits", "call me", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Phone(tt.in))
		})
	}
}

func TestPhoneIdempotent(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"012-345-6789", "+60123456789", "0060312345678", "99", ""} {
		once := Phone(in)
		assert.Equal(t, once, Phone(once), "input %q", in)
	}
}

func TestWebsite(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"https www", "https://www.techsolutions.my", "techsolutions.my"},
		{"http bare", "http://techsolutions.my", "techsolutions.my"},
		{"path kept", "www.example.com/index.html", "example.com/index.html"},
		{"trailing slash", "https://example.com/", "example.com"},
		{"many trailing slashes", "example.com///", "example.com"},
		{"uppercase", "HTTP://WWW.Example.COM/", "example.com"},
		{"nested prefixes", "http://www.http://example.com", "example.com"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Website(tt.in))
		})
	}
}

func TestWebsiteIdempotent(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"https://www.example.com/", "http://www.http://x/", "example.com", ""} {
		once := Website(in)
		assert.Equal(t, once, Website(once), "input %q", in)
	}
}
