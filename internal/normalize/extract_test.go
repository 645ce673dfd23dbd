package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractContactInfo(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want ContactInfo
	}{
		{
			name: "email and international phone",
			in:   "Contact us at info@example.com or call +60123456789 for more information.",
			want: ContactInfo{Email: "info@example.com", Phone: "+60123456789"},
		},
		{
			name: "phone with separators cleaned",
			in:   "Ring 012-345 6789 during office hours.",
			want: ContactInfo{Phone: "0123456789"},
		},
		{
			name: "country code pattern wins over local",
			in:   "ring 0312345678 or +60198765432",
			want: ContactInfo{Phone: "+60198765432"},
		},
		{
			name: "embedded street address",
			in:   "Our showroom is at 88 Jalan Imbi, Kuala Lumpur 55100 next to the park.",
			want: ContactInfo{Address: "88 Jalan Imbi, Kuala Lumpur 55100"},
		},
		{
			name: "first email wins",
			in:   "sales@one.example or support@two.example",
			want: ContactInfo{Email: "sales@one.example"},
		},
		{
			name: "garbage yields empty",
			in:   "@@@ +6 01 Jalan",
			want: ContactInfo{},
		},
		{
			name: "empty",
			in:   "",
			want: ContactInfo{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ExtractContactInfo(tt.in))
		})
	}
}

func TestExtractContactInfoPageContent(t *testing.T) {
	t.Parallel()

	content := "Tech Solutions is a leading software development company based in " +
		"Kuala Lumpur. Contact us at sales@techsolutions.my or call our office at " +
		"+60378901234. Visit us at 123 Jalan Bukit Bintang, Kuala Lumpur."

	info := ExtractContactInfo(content)
	assert.Equal(t, "sales@techsolutions.my", info.Email)
	assert.Equal(t, "+60378901234", info.Phone)
	assert.Empty(t, info.Address, "address without postcode should not match")
}
