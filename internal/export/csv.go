package export

import (
	"encoding/csv"
	"os"
	"strconv"
	"time"

	"github.com/rotisserie/eris"

	"github.com/leadgen-my/leadgen-cli/internal/model"
)

// WriteCSV writes leads to a CSV file with the wire header.
func WriteCSV(leads []model.Lead, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "export: create %s", path)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return eris.Wrap(err, "export: write csv header")
	}
	for _, lead := range leads {
		if err := w.Write(leadRow(lead)); err != nil {
			return eris.Wrap(err, "export: write csv row")
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return eris.Wrap(err, "export: flush csv")
	}
	return f.Close()
}

func leadRow(lead model.Lead) []string {
	timestamp := ""
	if !lead.Timestamp.IsZero() {
		timestamp = lead.Timestamp.UTC().Format(time.RFC3339)
	}
	rating := ""
	if lead.Rating > 0 {
		rating = strconv.FormatFloat(lead.Rating, 'f', -1, 64)
	}
	reviews := ""
	if lead.ReviewsCount > 0 {
		reviews = strconv.Itoa(lead.ReviewsCount)
	}

	return []string{
		lead.Organization,
		lead.PersonName,
		lead.Role,
		lead.Email,
		lead.Phone,
		lead.Address,
		lead.City,
		lead.State,
		lead.PostalCode,
		lead.Country,
		lead.Website,
		lead.Industry,
		string(lead.Source),
		lead.SourceURL,
		string(lead.Status),
		rating,
		reviews,
		strconv.FormatFloat(lead.CompletenessScore, 'f', 2, 64),
		timestamp,
		lead.Notes,
	}
}

// ReadCSV reads leads from a CSV file written with the wire header, or any
// CSV whose header row uses the same column names in any order. Unknown
// columns are ignored.
func ReadCSV(path string) ([]model.Lead, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "export: open %s", path)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, eris.Wrapf(err, "export: read csv %s", path)
	}
	if len(records) == 0 {
		return nil, nil
	}

	cols := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		cols[name] = i
	}

	leads := make([]model.Lead, 0, len(records)-1)
	for _, rec := range records[1:] {
		field := func(name string) string {
			i, ok := cols[name]
			if !ok || i >= len(rec) {
				return ""
			}
			return rec[i]
		}

		lead := model.Lead{
			Organization: field("organization"),
			PersonName:   field("person_name"),
			Role:         field("role"),
			Email:        field("email"),
			Phone:        field("phone"),
			Address:      field("address"),
			City:         field("city"),
			State:        field("state"),
			PostalCode:   field("postal_code"),
			Country:      field("country"),
			Website:      field("website"),
			Industry:     field("industry"),
			Source:       model.SourceType(field("source")),
			SourceURL:    field("source_url"),
			Status:       model.LeadStatus(field("status")),
			Notes:        field("notes"),
		}
		if v := field("rating"); v != "" {
			lead.Rating, _ = strconv.ParseFloat(v, 64)
		}
		if v := field("reviews_count"); v != "" {
			lead.ReviewsCount, _ = strconv.Atoi(v)
		}
		if v := field("completeness_score"); v != "" {
			lead.CompletenessScore, _ = strconv.ParseFloat(v, 64)
		}
		if v := field("timestamp"); v != "" {
			if ts, err := time.Parse(time.RFC3339, v); err == nil {
				lead.Timestamp = ts
			}
		}
		leads = append(leads, lead)
	}
	return leads, nil
}
