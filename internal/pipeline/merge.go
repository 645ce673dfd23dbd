package pipeline

import "github.com/leadgen-my/leadgen-cli/internal/model"

// Enrich fills the primary lead's missing fields from the candidates, in
// input order, first value wins. The primary's own non-empty fields are
// never overwritten. Social media platforms and metadata keys are only
// added, never replaced. The completeness score is recomputed on the result.
// Neither the primary nor the candidates are mutated.
func Enrich(primary model.Lead, others []model.Lead) model.Lead {
	out := primary.Clone()
	for _, cand := range others {
		fillMissing(&out, cand)

		for platform, url := range cand.SocialMedia {
			if url == "" {
				continue
			}
			if out.SocialMedia == nil {
				out.SocialMedia = make(map[string]string)
			}
			if out.SocialMedia[platform] == "" {
				out.SocialMedia[platform] = url
			}
		}

		src := cand.Source.String()
		if src == "" {
			continue
		}
		if out.Metadata == nil {
			out.Metadata = make(map[string]any)
		}
		if _, ok := out.Metadata[src]; !ok {
			payload, ok := cand.Metadata[src]
			if !ok {
				payload = map[string]any{}
			}
			out.Metadata[src] = payload
		}
	}
	out.CompletenessScore = Score(out)
	return out
}

// fillMissing copies src's scalar fields into dst where dst has none.
func fillMissing(dst *model.Lead, src model.Lead) {
	if dst.Email == "" {
		dst.Email = src.Email
	}
	if dst.Phone == "" {
		dst.Phone = src.Phone
	}
	if dst.Website == "" {
		dst.Website = src.Website
	}
	if dst.PersonName == "" {
		dst.PersonName = src.PersonName
	}
	if dst.Role == "" {
		dst.Role = src.Role
	}
	if dst.Industry == "" {
		dst.Industry = src.Industry
	}
	if dst.Address == "" {
		dst.Address = src.Address
	}
	if dst.City == "" {
		dst.City = src.City
	}
	if dst.State == "" {
		dst.State = src.State
	}
	if dst.PostalCode == "" {
		dst.PostalCode = src.PostalCode
	}
}
