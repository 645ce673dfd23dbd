package pipeline

import (
	"math"

	"go.uber.org/zap"

	"github.com/leadgen-my/leadgen-cli/internal/model"
)

// DefaultMinScore is the completeness threshold applied when the caller
// does not choose one.
const DefaultMinScore = 0.5

// statFields are the scalar fields reported in per-field completeness
// statistics, in display order.
var statFields = []string{
	"organization", "person_name", "role", "email", "phone",
	"address", "city", "state", "postal_code", "website", "industry",
}

// FieldStat counts how many leads populate one field.
type FieldStat struct {
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// Completeness summarizes lead quality across a batch.
type Completeness struct {
	AverageScore float64              `json:"average_score"`
	Fields       map[string]FieldStat `json:"fields"`
}

// Stats is the read-only summary consumed by reporting and the CLI.
type Stats struct {
	TotalLeads   int            `json:"total_leads"`
	Sources      map[string]int `json:"sources"`
	Completeness Completeness   `json:"completeness"`
}

// FilterByCompleteness keeps leads whose effective completeness score meets
// minScore. The input is not mutated.
func FilterByCompleteness(leads []model.Lead, minScore float64) []model.Lead {
	filtered := make([]model.Lead, 0, len(leads))
	for _, lead := range leads {
		if EffectiveScore(lead) >= minScore {
			filtered = append(filtered, lead)
		}
	}
	zap.L().Info("pipeline: filtered leads by completeness",
		zap.Int("input", len(leads)),
		zap.Int("kept", len(filtered)),
		zap.Float64("min_score", minScore))
	return filtered
}

// Summarize aggregates batch statistics: totals, per-source counts, field
// completeness, and the average score. An empty batch yields a zeroed
// structure with empty maps.
func Summarize(leads []model.Lead) Stats {
	stats := Stats{
		Sources:      make(map[string]int),
		Completeness: Completeness{Fields: make(map[string]FieldStat)},
	}
	if len(leads) == 0 {
		return stats
	}
	stats.TotalLeads = len(leads)

	var sum float64
	for _, lead := range leads {
		source := lead.Source.String()
		if source == "" {
			source = "unknown"
		}
		stats.Sources[source]++
		sum += EffectiveScore(lead)
	}

	total := float64(len(leads))
	for _, field := range statFields {
		count := 0
		for _, lead := range leads {
			if scalarField(lead, field) != "" {
				count++
			}
		}
		stats.Completeness.Fields[field] = FieldStat{
			Count:      count,
			Percentage: roundTo(float64(count)/total*100, 1),
		}
	}
	stats.Completeness.AverageScore = roundTo(sum/total, 2)
	return stats
}

func roundTo(v float64, decimals int) float64 {
	shift := math.Pow(10, float64(decimals))
	return math.Round(v*shift) / shift
}
