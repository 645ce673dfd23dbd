package outreach

import (
	_ "embed"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/leadgen-my/leadgen-cli/internal/model"
)

//go:embed targeting.yaml
var defaultTargetingYAML []byte

// Tier describes one targeting tier.
type Tier struct {
	Description  string  `yaml:"description"`
	MinScore     float64 `yaml:"min_score"`
	Template     string  `yaml:"template"`
	FollowUpDays int     `yaml:"follow_up_days"`
}

// Targeting maps leads to outreach tiers. Category keywords can pick a
// template directly and location boosts promote leads from high-value
// cities one tier up.
type Targeting struct {
	Tiers            map[string]Tier    `yaml:"tiers"`
	Categories       map[string]string  `yaml:"categories"`
	LocationBoosts   map[string]float64 `yaml:"location_boosts"`
	IndustryInsights map[string]string  `yaml:"industry_insights"`
}

// Strategy is the resolved outreach plan for one lead.
type Strategy struct {
	Tier            string  `json:"tier"`
	Template        string  `json:"template"`
	MinScore        float64 `json:"min_score"`
	FollowUpDays    int     `json:"follow_up_days"`
	IndustryInsight string  `json:"industry_insight,omitempty"`
}

// DefaultTargeting returns the built-in targeting rules.
func DefaultTargeting() *Targeting {
	t, err := parseTargeting(defaultTargetingYAML)
	if err != nil {
		// The embedded file is part of the build.
		panic(err)
	}
	return t
}

// LoadTargeting reads targeting rules from a YAML file. An empty path
// returns the defaults.
func LoadTargeting(path string) (*Targeting, error) {
	if path == "" {
		return DefaultTargeting(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "outreach: read targeting file %s", path)
	}
	t, err := parseTargeting(raw)
	if err != nil {
		return nil, eris.Wrapf(err, "outreach: parse targeting file %s", path)
	}
	return t, nil
}

func parseTargeting(raw []byte) (*Targeting, error) {
	var t Targeting
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return nil, eris.Wrap(err, "outreach: unmarshal targeting")
	}
	if len(t.Tiers) == 0 {
		return nil, eris.New("outreach: targeting has no tiers")
	}
	return &t, nil
}

// tierOrder is scanned highest first so a lead lands in the best tier its
// score qualifies for.
var tierOrder = []string{"high", "medium", "low"}

// TierFor picks the tier for a lead: the highest tier whose minimum score
// the lead's completeness meets. Leads in boosted locations climb one tier,
// with a full boost required to reach high.
func (t *Targeting) TierFor(lead model.Lead) string {
	name := "low"
	for _, candidate := range tierOrder {
		tier, ok := t.Tiers[candidate]
		if !ok {
			continue
		}
		if lead.CompletenessScore >= tier.MinScore {
			name = candidate
			break
		}
	}

	boost := t.locationBoost(lead)
	switch {
	case name == "medium" && boost >= 1.0:
		return "high"
	case name == "low" && boost >= 0.5:
		return "medium"
	}
	return name
}

// locationBoost returns the strongest boost matching the lead's city,
// state, or address.
func (t *Targeting) locationBoost(lead model.Lead) float64 {
	boost := 0.0
	for place, b := range t.LocationBoosts {
		if containsFold(lead.City, place) || containsFold(lead.State, place) || containsFold(lead.Address, place) {
			if b > boost {
				boost = b
			}
		}
	}
	return boost
}

// StrategyFor resolves the full outreach plan for a lead. A category match
// on the lead's industry overrides the tier template.
func (t *Targeting) StrategyFor(lead model.Lead) Strategy {
	name := t.TierFor(lead)
	tier := t.Tiers[name]

	template := tier.Template
	if template == "" {
		template = DefaultTemplateName
	}
	for keyword, tpl := range t.Categories {
		if containsFold(lead.Industry, keyword) || containsFold(lead.Organization, keyword) {
			template = tpl
			break
		}
	}

	return Strategy{
		Tier:            name,
		Template:        template,
		MinScore:        tier.MinScore,
		FollowUpDays:    tier.FollowUpDays,
		IndustryInsight: t.insightFor(lead),
	}
}

func (t *Targeting) insightFor(lead model.Lead) string {
	for keyword, insight := range t.IndustryInsights {
		if containsFold(lead.Industry, keyword) {
			return insight
		}
	}
	return ""
}

func containsFold(haystack, needle string) bool {
	if haystack == "" || needle == "" {
		return false
	}
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
