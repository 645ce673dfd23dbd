package export

import (
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/leadgen-my/leadgen-cli/internal/model"
)

// WriteXLSX writes leads to an XLSX workbook with a single Leads sheet.
// Rating, review count, and completeness are numeric cells so spreadsheet
// sorting works on them.
func WriteXLSX(leads []model.Lead, path string) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Leads")
	if err != nil {
		return eris.Wrap(err, "export: add xlsx sheet")
	}

	headerRow := sheet.AddRow()
	for _, name := range header {
		headerRow.AddCell().SetString(name)
	}

	for _, lead := range leads {
		row := sheet.AddRow()
		for i, value := range leadRow(lead) {
			cell := row.AddCell()
			switch {
			case header[i] == "rating" && value != "":
				cell.SetFloat(lead.Rating)
			case header[i] == "completeness_score":
				cell.SetFloat(lead.CompletenessScore)
			case header[i] == "reviews_count" && value != "":
				cell.SetInt(lead.ReviewsCount)
			default:
				cell.SetString(value)
			}
		}
	}

	if err := f.Save(path); err != nil {
		return eris.Wrapf(err, "export: save %s", path)
	}
	return nil
}
