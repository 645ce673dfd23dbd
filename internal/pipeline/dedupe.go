package pipeline

import (
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/leadgen-my/leadgen-cli/internal/model"
	"github.com/leadgen-my/leadgen-cli/internal/normalize"
)

// leadGroup collects leads sharing one normalized organization key. An
// empty key marks a singleton group that never merges by name.
type leadGroup struct {
	key   string
	leads []model.Lead
}

// Deduplicate reduces a batch to one enriched lead per distinct
// organization. Leads are grouped by normalized organization name; within a
// group the highest-scoring lead absorbs the others' fields. A group whose
// organization key was already emitted AND that shares an email, phone, or
// website with an earlier lead is dropped as a duplicate. Output preserves
// first-occurrence order.
//
// Two groups with different organization names but a shared identifier are
// intentionally NOT merged; the collision guard is conservative.
func Deduplicate(leads []model.Lead) []model.Lead {
	if len(leads) == 0 {
		return []model.Lead{}
	}

	groups := make([]leadGroup, 0, len(leads))
	index := make(map[string]int)
	for _, lead := range leads {
		key := normalize.Organization(lead.Organization)
		if key == "" {
			// Unidentifiable leads pass through as their own group.
			groups = append(groups, leadGroup{leads: []model.Lead{lead}})
			continue
		}
		if i, ok := index[key]; ok {
			groups[i].leads = append(groups[i].leads, lead)
			continue
		}
		index[key] = len(groups)
		groups = append(groups, leadGroup{key: key, leads: []model.Lead{lead}})
	}

	unique := make([]model.Lead, 0, len(groups))
	seenOrgs := make(map[string]bool)
	seenEmails := make(map[string]bool)
	seenPhones := make(map[string]bool)
	seenWebsites := make(map[string]bool)

	for _, g := range groups {
		sort.SliceStable(g.leads, func(i, j int) bool {
			return Score(g.leads[i]) > Score(g.leads[j])
		})
		resolved := Enrich(g.leads[0], g.leads[1:])

		email := strings.ToLower(resolved.Email)
		phone := normalize.Phone(resolved.Phone)
		website := normalize.Website(resolved.Website)

		if g.key != "" && seenOrgs[g.key] &&
			((email != "" && seenEmails[email]) ||
				(phone != "" && seenPhones[phone]) ||
				(website != "" && seenWebsites[website])) {
			continue
		}

		unique = append(unique, resolved)
		if g.key != "" {
			seenOrgs[g.key] = true
		}
		if email != "" {
			seenEmails[email] = true
		}
		if phone != "" {
			seenPhones[phone] = true
		}
		if website != "" {
			seenWebsites[website] = true
		}
	}

	zap.L().Info("pipeline: deduplicated leads",
		zap.Int("input", len(leads)),
		zap.Int("unique", len(unique)))
	return unique
}
