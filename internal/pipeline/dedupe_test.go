package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leadgen-my/leadgen-cli/internal/model"
)

func TestDeduplicateMergesVariants(t *testing.T) {
	t.Parallel()

	leads := []model.Lead{
		{
			Organization: "Tech Solutions Sdn Bhd",
			Email:        "info@techsolutions.my",
			Phone:        "+60312345678",
			Source:       model.SourceMapListing,
		},
		{
			Organization: "Tech Solutions Malaysia",
			Email:        "info@techsolutions.my",
			Website:      "https://www.techsolutions.my",
			Source:       model.SourceSocialProfile,
		},
		{
			Organization: "Tech Solutions",
			Phone:        "+60312345678",
			Address:      "123 Jalan Bukit Bintang",
			Source:       model.SourceWebPage,
		},
		{
			Organization: "Different Company",
			Email:        "contact@different.com",
			Phone:        "+60399998888",
			Source:       model.SourceMapListing,
		},
	}

	unique := Deduplicate(leads)
	require.Len(t, unique, 2)

	tech := unique[0]
	assert.Equal(t, "Tech Solutions Sdn Bhd", tech.Organization, "highest-scoring variant is primary")
	assert.Equal(t, "info@techsolutions.my", tech.Email)
	assert.Equal(t, "+60312345678", tech.Phone)
	assert.Equal(t, "https://www.techsolutions.my", tech.Website)
	assert.Equal(t, "123 Jalan Bukit Bintang", tech.Address)

	diff := unique[1]
	assert.Equal(t, "Different Company", diff.Organization)
	assert.Equal(t, "contact@different.com", diff.Email)
}

func TestDeduplicateStandardizedTrio(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	google, err := reg.Standardize(listingPayload(), model.SourceMapListing)
	require.NoError(t, err)
	insta, err := reg.Standardize(profilePayload(), model.SourceSocialProfile)
	require.NoError(t, err)
	web, err := reg.Standardize(pagePayload(), model.SourceWebPage)
	require.NoError(t, err)

	unique := Deduplicate([]model.Lead{google, insta, web})
	require.Len(t, unique, 1)

	merged := unique[0]
	assert.Equal(t, "Tech Solutions Sdn Bhd", merged.Organization)
	assert.Contains(t, merged.Metadata, "map-listing")
	assert.Contains(t, merged.Metadata, "social-profile")
	assert.Contains(t, merged.Metadata, "web-page")
	assert.Equal(t, Score(merged), merged.CompletenessScore)
}

func TestDeduplicateKeepsFirstOccurrenceOrder(t *testing.T) {
	t.Parallel()

	leads := []model.Lead{
		{Organization: "Zeta Trading", Email: "zeta@trade.my"},
		{Organization: "Alpha Retail", Email: "alpha@retail.my"},
		{Organization: "Zeta Trading Sdn Bhd", Phone: "+60355556666"},
	}

	unique := Deduplicate(leads)
	require.Len(t, unique, 2)
	assert.Equal(t, "Zeta Trading", unique[0].Organization)
	assert.Equal(t, "Alpha Retail", unique[1].Organization)
	assert.Equal(t, "+60355556666", unique[0].Phone, "variant fields are absorbed")
}

func TestDeduplicateEmptyOrganizations(t *testing.T) {
	t.Parallel()

	leads := []model.Lead{
		{Email: "first@nameless.my", Source: model.SourceWebPage},
		{Email: "first@nameless.my", Source: model.SourceImported},
		{Organization: "Sdn Bhd", Phone: "+60312340000", Source: model.SourceManual},
	}

	unique := Deduplicate(leads)
	require.Len(t, unique, 3, "unidentifiable leads are never merged")
	for _, lead := range unique {
		assert.Equal(t, Score(lead), lead.CompletenessScore, "singletons are scored too")
	}
}

func TestDeduplicateDistinctOrgsSharingIdentifiers(t *testing.T) {
	t.Parallel()

	// Same phone under two genuinely different names stays two leads; the
	// collision guard only fires on an organization-name match.
	leads := []model.Lead{
		{Organization: "Alpha Catering", Phone: "+60312345678"},
		{Organization: "Beta Catering", Phone: "+60312345678"},
	}

	unique := Deduplicate(leads)
	assert.Len(t, unique, 2)
}

func TestDeduplicateCountProperties(t *testing.T) {
	t.Parallel()

	t.Run("empty input", func(t *testing.T) {
		t.Parallel()
		assert.Empty(t, Deduplicate(nil))
		assert.Empty(t, Deduplicate([]model.Lead{}))
	})

	t.Run("never grows", func(t *testing.T) {
		t.Parallel()
		batches := [][]model.Lead{
			{{Organization: "One"}},
			{{Organization: "A"}, {Organization: "A Sdn Bhd"}, {Organization: "B"}},
			{{Email: "only@contact.my"}, {Email: "only@contact.my"}},
		}
		for _, batch := range batches {
			assert.LessOrEqual(t, len(Deduplicate(batch)), len(batch))
		}
	})
}

func TestDeduplicateDoesNotMutateInput(t *testing.T) {
	t.Parallel()

	leads := []model.Lead{
		{Organization: "Stable Sdn Bhd", Email: "a@stable.my"},
		{Organization: "Stable", Phone: "+60312345678"},
	}
	Deduplicate(leads)

	assert.Empty(t, leads[0].Phone, "inputs keep their original fields")
	assert.Zero(t, leads[0].CompletenessScore)
}
