package pipeline

import "github.com/leadgen-my/leadgen-cli/internal/model"

// fieldWeights is the completeness weight table. Identity signals (name,
// email, phone) weigh the most; locality detail the least.
var fieldWeights = map[string]float64{
	"organization": 1.0,
	"person_name":  0.7,
	"role":         0.5,
	"email":        1.0,
	"phone":        1.0,
	"address":      0.8,
	"city":         0.6,
	"state":        0.4,
	"postal_code":  0.3,
	"website":      0.9,
	"industry":     0.7,
	"social_media": 0.6,
	"location":     0.5,
}

// Score rates a lead's completeness in [0,1]: the weight sum of populated
// fields over the total weight. Social media counts when any platform URL is
// set; location counts only when both coordinates are set. Deterministic and
// side-effect free.
func Score(lead model.Lead) float64 {
	var total, got float64
	for field, weight := range fieldWeights {
		total += weight
		if fieldPresent(lead, field) {
			got += weight
		}
	}
	return got / total
}

// EffectiveScore returns the stored completeness score, computing it fresh
// when the lead has never been scored.
func EffectiveScore(lead model.Lead) float64 {
	if lead.CompletenessScore > 0 {
		return lead.CompletenessScore
	}
	return Score(lead)
}

func fieldPresent(lead model.Lead, field string) bool {
	switch field {
	case "social_media":
		return lead.HasSocialMedia()
	case "location":
		return lead.HasLocation()
	}
	return scalarField(lead, field) != ""
}

// scalarField maps a weight-table field name to its lead value.
func scalarField(lead model.Lead, field string) string {
	switch field {
	case "organization":
		return lead.Organization
	case "person_name":
		return lead.PersonName
	case "role":
		return lead.Role
	case "email":
		return lead.Email
	case "phone":
		return lead.Phone
	case "address":
		return lead.Address
	case "city":
		return lead.City
	case "state":
		return lead.State
	case "postal_code":
		return lead.PostalCode
	case "website":
		return lead.Website
	case "industry":
		return lead.Industry
	}
	return ""
}
