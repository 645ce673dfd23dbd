package outreach

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leadgen-my/leadgen-cli/internal/model"
)

func TestDefaultTargeting(t *testing.T) {
	targeting := DefaultTargeting()

	require.Len(t, targeting.Tiers, 3)
	assert.Equal(t, 0.7, targeting.Tiers["high"].MinScore)
	assert.Equal(t, "exec_tone", targeting.Tiers["high"].Template)
	assert.Equal(t, 3, targeting.Tiers["high"].FollowUpDays)
	assert.Equal(t, 0.5, targeting.Tiers["medium"].MinScore)
	assert.Equal(t, 0.3, targeting.Tiers["low"].MinScore)
}

func TestTierFor(t *testing.T) {
	targeting := DefaultTargeting()

	tests := []struct {
		name string
		lead model.Lead
		want string
	}{
		{"high score", model.Lead{CompletenessScore: 0.85}, "high"},
		{"medium score", model.Lead{CompletenessScore: 0.55}, "medium"},
		{"low score", model.Lead{CompletenessScore: 0.35}, "low"},
		{"below all thresholds", model.Lead{CompletenessScore: 0.1}, "low"},
		{"medium promoted by kl", model.Lead{CompletenessScore: 0.55, City: "Kuala Lumpur"}, "high"},
		{"low promoted by penang", model.Lead{CompletenessScore: 0.35, State: "Penang"}, "medium"},
		{"low not promoted to high by kl", model.Lead{CompletenessScore: 0.35, City: "Cyberjaya"}, "medium"},
		{"boost via address", model.Lead{CompletenessScore: 0.35, Address: "12 Jalan Besar, Johor Bahru"}, "medium"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, targeting.TierFor(tt.lead))
		})
	}
}

func TestStrategyFor(t *testing.T) {
	targeting := DefaultTargeting()

	strat := targeting.StrategyFor(model.Lead{CompletenessScore: 0.8, Industry: "Technology"})
	assert.Equal(t, "high", strat.Tier)
	assert.Equal(t, "exec_tone", strat.Template)
	assert.Equal(t, 3, strat.FollowUpDays)
	assert.Contains(t, strat.IndustryInsight, "MSC status")

	// Category keyword overrides the tier template.
	strat = targeting.StrategyFor(model.Lead{CompletenessScore: 0.8, Industry: "Government Agency"})
	assert.Equal(t, "government", strat.Template)

	strat = targeting.StrategyFor(model.Lead{CompletenessScore: 0.6, Organization: "Universiti Malaya"})
	assert.Equal(t, "university", strat.Template)

	strat = targeting.StrategyFor(model.Lead{CompletenessScore: 0.6, Industry: "Logistics"})
	assert.Equal(t, "default", strat.Template)
	assert.Empty(t, strat.IndustryInsight)
}

func TestLoadTargeting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "targeting.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
tiers:
  high:
    min_score: 0.9
    template: custom
    follow_up_days: 1
`), 0o644))

	targeting, err := LoadTargeting(path)
	require.NoError(t, err)
	assert.Equal(t, 0.9, targeting.Tiers["high"].MinScore)

	_, err = LoadTargeting(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	// Empty path falls back to defaults.
	targeting, err = LoadTargeting("")
	require.NoError(t, err)
	assert.Len(t, targeting.Tiers, 3)
}
