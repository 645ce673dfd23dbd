// Package export writes lead collections to CSV, XLSX, and JSON files and
// reads them back for import and re-processing.
package export

import (
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/leadgen-my/leadgen-cli/internal/model"
)

// Format is an export file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatJSON Format = "json"
)

// ParseFormat parses a format name, case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatCSV:
		return FormatCSV, nil
	case FormatXLSX:
		return FormatXLSX, nil
	case FormatJSON:
		return FormatJSON, nil
	}
	return "", eris.Errorf("export: unknown format %q", s)
}

// FormatForPath infers the format from a file extension, defaulting to JSON.
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV
	case ".xlsx":
		return FormatXLSX
	default:
		return FormatJSON
	}
}

// Write writes leads to path in the given format.
func Write(leads []model.Lead, format Format, path string) error {
	switch format {
	case FormatCSV:
		return WriteCSV(leads, path)
	case FormatXLSX:
		return WriteXLSX(leads, path)
	case FormatJSON:
		return WriteJSON(leads, path)
	}
	return eris.Errorf("export: unknown format %q", format)
}

// header is the column order shared by the CSV and XLSX writers; names
// match the JSON wire tags.
var header = []string{
	"organization",
	"person_name",
	"role",
	"email",
	"phone",
	"address",
	"city",
	"state",
	"postal_code",
	"country",
	"website",
	"industry",
	"source",
	"source_url",
	"status",
	"rating",
	"reviews_count",
	"completeness_score",
	"timestamp",
	"notes",
}
