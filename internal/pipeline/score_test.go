package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/leadgen-my/leadgen-cli/internal/model"
)

func TestScoreBounds(t *testing.T) {
	t.Parallel()

	t.Run("empty lead scores zero", func(t *testing.T) {
		t.Parallel()
		assert.Zero(t, Score(model.Lead{}))
	})

	t.Run("fully populated lead scores one", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, 1.0, Score(fullLead()))
	})

	t.Run("all scores stay in range", func(t *testing.T) {
		t.Parallel()
		leads := []model.Lead{
			{},
			fullLead(),
			{Organization: "Solo"},
			{Email: "a@b.my", Phone: "0312345678"},
		}
		for _, lead := range leads {
			s := Score(lead)
			assert.GreaterOrEqual(t, s, 0.0)
			assert.LessOrEqual(t, s, 1.0)
		}
	})
}

func TestScorePartialLead(t *testing.T) {
	t.Parallel()

	lead := model.Lead{
		Organization: "Partial Company",
		Website:      "https://www.partial.com",
	}
	s := Score(lead)
	assert.InDelta(t, 1.9/9.0, s, 1e-9)
	assert.Greater(t, s, 0.2)
	assert.Less(t, s, 0.5)
}

func TestScoreNearlyComplete(t *testing.T) {
	t.Parallel()

	lead := fullLead()
	lead.Location = nil
	assert.Greater(t, Score(lead), 0.9)
}

func TestScorePresenceRules(t *testing.T) {
	t.Parallel()

	t.Run("half coordinates do not count", func(t *testing.T) {
		t.Parallel()
		with := model.Lead{Location: &model.Coordinates{Latitude: 3.1, Longitude: 101.7}}
		without := model.Lead{Location: &model.Coordinates{Latitude: 3.1}}
		assert.Greater(t, Score(with), Score(without))
		assert.Zero(t, Score(without))
	})

	t.Run("empty platform URLs do not count", func(t *testing.T) {
		t.Parallel()
		lead := model.Lead{SocialMedia: map[string]string{"facebook": ""}}
		assert.Zero(t, Score(lead))
	})

	t.Run("rating and reviews are not scored", func(t *testing.T) {
		t.Parallel()
		assert.Zero(t, Score(model.Lead{Rating: 4.9, ReviewsCount: 300}))
	})
}

func TestEffectiveScore(t *testing.T) {
	t.Parallel()

	lead := model.Lead{Organization: "Acme Catering"}
	assert.InDelta(t, 1.0/9.0, EffectiveScore(lead), 1e-9)

	lead.CompletenessScore = 0.75
	assert.Equal(t, 0.75, EffectiveScore(lead))
}
