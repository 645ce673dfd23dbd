package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leadgen-my/leadgen-cli/internal/model"
)

func TestEnrichAcrossSources(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	google, err := reg.Standardize(listingPayload(), model.SourceMapListing)
	require.NoError(t, err)
	insta, err := reg.Standardize(profilePayload(), model.SourceSocialProfile)
	require.NoError(t, err)
	web, err := reg.Standardize(pagePayload(), model.SourceWebPage)
	require.NoError(t, err)

	enriched := Enrich(google, []model.Lead{insta, web})

	assert.Equal(t, "Tech Solutions Sdn Bhd", enriched.Organization, "primary keeps its name")
	assert.Equal(t, "info@techsolutions.my", enriched.Email, "email adopted from profile")
	assert.Equal(t, "+60312345678", enriched.Phone, "primary phone wins")
	assert.Equal(t, "https://www.techsolutions.my", enriched.Website, "primary website wins")
	assert.Equal(t, "https://www.instagram.com/techsolutionsmy", enriched.SocialMedia["instagram"])

	assert.Contains(t, enriched.Metadata, "map-listing")
	assert.Contains(t, enriched.Metadata, "social-profile")
	assert.Contains(t, enriched.Metadata, "web-page")

	assert.Equal(t, Score(enriched), enriched.CompletenessScore, "score must be fresh after merge")
}

func TestEnrichNeverRegressesPrimary(t *testing.T) {
	t.Parallel()

	primary := model.Lead{
		Organization: "Essential Foods",
		Email:        "orders@essential.my",
		Phone:        "+60311112222",
		City:         "Ipoh",
		Source:       model.SourceManual,
	}
	noisy := model.Lead{
		Organization: "Essential Foods Sdn Bhd",
		Email:        "other@essential.my",
		Phone:        "+60399990000",
		City:         "Kuala Lumpur",
		State:        "Perak",
		Source:       model.SourceWebPage,
	}

	enriched := Enrich(primary, []model.Lead{noisy})

	assert.Equal(t, primary.Email, enriched.Email)
	assert.Equal(t, primary.Phone, enriched.Phone)
	assert.Equal(t, primary.City, enriched.City)
	assert.Equal(t, "Perak", enriched.State, "missing field is filled")
}

func TestEnrichFirstCandidateWins(t *testing.T) {
	t.Parallel()

	primary := model.Lead{Organization: "Gap Co"}
	first := model.Lead{Email: "first@gap.my", Source: model.SourceWebPage}
	second := model.Lead{Email: "second@gap.my", Role: "Owner", Source: model.SourceImported}

	enriched := Enrich(primary, []model.Lead{first, second})
	assert.Equal(t, "first@gap.my", enriched.Email)
	assert.Equal(t, "Owner", enriched.Role)
}

func TestEnrichDoesNotMutateInputs(t *testing.T) {
	t.Parallel()

	primary := model.Lead{
		Organization: "Immutable Sdn Bhd",
		SocialMedia:  map[string]string{"facebook": "https://facebook.com/immutable"},
		Metadata:     map[string]any{"manual": map[string]any{"note": "original"}},
		Source:       model.SourceManual,
	}
	candidate := model.Lead{
		Email:       "hello@immutable.my",
		SocialMedia: map[string]string{"instagram": "https://instagram.com/immutable"},
		Source:      model.SourceSocialProfile,
	}

	enriched := Enrich(primary, []model.Lead{candidate})

	assert.Empty(t, primary.Email, "primary must not be mutated")
	assert.NotContains(t, primary.SocialMedia, "instagram")
	assert.NotContains(t, primary.Metadata, "social-profile")
	assert.Zero(t, primary.CompletenessScore)

	assert.Equal(t, "hello@immutable.my", enriched.Email)
	assert.Contains(t, enriched.SocialMedia, "instagram")
	assert.Contains(t, enriched.SocialMedia, "facebook")
}

func TestEnrichMetadataAccumulates(t *testing.T) {
	t.Parallel()

	primary := model.Lead{
		Organization: "Meta Co",
		Metadata:     map[string]any{"map-listing": map[string]any{"name": "Meta Co"}},
		Source:       model.SourceMapListing,
	}

	t.Run("existing keys are never overwritten", func(t *testing.T) {
		t.Parallel()
		clash := model.Lead{
			Source:   model.SourceMapListing,
			Metadata: map[string]any{"map-listing": map[string]any{"name": "Impostor"}},
		}
		enriched := Enrich(primary, []model.Lead{clash})
		payload, ok := enriched.Metadata["map-listing"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "Meta Co", payload["name"])
	})

	t.Run("candidate without metadata yields empty payload", func(t *testing.T) {
		t.Parallel()
		bare := model.Lead{Email: "x@meta.my", Source: model.SourceManual}
		enriched := Enrich(primary, []model.Lead{bare})
		assert.Equal(t, map[string]any{}, enriched.Metadata["manual"])
	})

	t.Run("metadata never shrinks", func(t *testing.T) {
		t.Parallel()
		others := []model.Lead{
			{Source: model.SourceWebPage},
			{Source: model.SourceImported},
		}
		enriched := Enrich(primary, others)
		assert.GreaterOrEqual(t, len(enriched.Metadata), len(primary.Metadata))
	})
}
