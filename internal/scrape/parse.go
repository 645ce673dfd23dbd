package scrape

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/leadgen-my/leadgen-cli/internal/model"
	"github.com/leadgen-my/leadgen-cli/internal/normalize"
	"github.com/leadgen-my/leadgen-cli/internal/pipeline"
)

// honorificNameRe matches Malaysian honorific-prefixed person names in
// running text ("Dr. Ahmad Faizal", "Puan Siti Aminah").
var honorificNameRe = regexp.MustCompile(`(?:En|Encik|Puan|Cik|Dr|Prof|Ir|Tuan|Datin|Datuk|Dato'|Tan Sri)\.?\s+([A-Z][A-Za-z' ]+)`)

// titleSeparators split a page title from its site-name suffix.
var titleSeparators = []string{" | ", " - ", " « ", " » ", " :: "}

// orgName extracts an organization name from the page: a site-title
// heading, the cleaned title tag, the og:site_name meta, or the host name
// as a last resort.
func orgName(doc *goquery.Document, pageURL string) string {
	head := doc.Find("h1, h2").FilterFunction(func(_ int, sel *goquery.Selection) bool {
		class, _ := sel.Attr("class")
		class = strings.ToLower(class)
		return strings.Contains(class, "site-title") || strings.Contains(class, "logo")
	}).First()
	if name := strings.TrimSpace(head.Text()); name != "" {
		return name
	}

	if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
		for _, sep := range titleSeparators {
			if strings.Contains(title, sep) {
				return strings.TrimSpace(strings.Split(title, sep)[0])
			}
		}
		return title
	}

	if name, ok := doc.Find(`meta[property="og:site_name"]`).Attr("content"); ok && name != "" {
		return name
	}

	if u, err := url.Parse(pageURL); err == nil && u.Host != "" {
		host := strings.TrimPrefix(u.Host, "www.")
		return strings.ToUpper(strings.Split(host, ".")[0])
	}
	return ""
}

// contactPayload builds one raw contact payload for a source type.
func contactPayload(source model.SourceType, org, person, role, email, phone, pageURL string) pipeline.RawPayload {
	return pipeline.RawPayload{
		Source: source,
		Data: map[string]any{
			"organization": org,
			"person_name":  person,
			"role":         role,
			"email":        email,
			"phone":        phone,
			"url":          pageURL,
		},
	}
}

// tableColumns identifies the name/role/email/phone column positions from a
// header row. Malay and English header labels are both recognized.
func tableColumns(header *goquery.Selection) (name, role, email, phone int) {
	name, role, email, phone = -1, -1, -1, -1
	header.Find("th, td").Each(func(i int, cell *goquery.Selection) {
		text := strings.ToLower(cell.Text())
		switch {
		case strings.Contains(text, "name") || strings.Contains(text, "nama"):
			name = i
		case strings.Contains(text, "position") || strings.Contains(text, "jawatan") ||
			strings.Contains(text, "role") || strings.Contains(text, "title"):
			role = i
		case strings.Contains(text, "email") || strings.Contains(text, "e-mail") ||
			strings.Contains(text, "emel"):
			email = i
		case strings.Contains(text, "phone") || strings.Contains(text, "tel"):
			phone = i
		}
	})
	return name, role, email, phone
}

// contactsFromTables extracts person contacts from header-driven tables.
// When a column was not identified from the header, the first cell is
// assumed to be the name, the second the role, and email/phone are searched
// across all cells.
func contactsFromTables(doc *goquery.Document, source model.SourceType, org, pageURL string) []pipeline.RawPayload {
	var payloads []pipeline.RawPayload

	doc.Find("table").Each(func(_ int, table *goquery.Selection) {
		rows := table.Find("tr")
		if rows.Length() < 2 {
			return
		}
		nameCol, roleCol, emailCol, phoneCol := tableColumns(rows.First())

		rows.Slice(1, rows.Length()).Each(func(_ int, row *goquery.Selection) {
			cells := row.Find("td, th")
			if cells.Length() < 2 {
				return
			}

			cellText := func(i int) string {
				if i < 0 || i >= cells.Length() {
					return ""
				}
				return strings.TrimSpace(cells.Eq(i).Text())
			}

			person := cellText(nameCol)
			if person == "" {
				person = cellText(0)
			}
			role := cellText(roleCol)
			if role == "" && nameCol != 1 {
				role = cellText(1)
			}

			email := normalize.ExtractContactInfo(cellText(emailCol)).Email
			phone := normalize.ExtractContactInfo(cellText(phoneCol)).Phone
			if email == "" || phone == "" {
				info := normalize.ExtractContactInfo(row.Text())
				if email == "" {
					email = info.Email
				}
				if phone == "" {
					phone = info.Phone
				}
			}

			if person != "" || role != "" {
				payloads = append(payloads, contactPayload(source, org, person, role, email, phone, pageURL))
			}
		})
	})

	return payloads
}

// staffSectionKeywords mark containers that hold staff or management
// listings.
var staffSectionKeywords = []string{"staff", "team", "management", "pegawai", "pengurusan", "directory", "direktori", "faculty"}

// contactsFromStaffSections extracts person contacts from structured staff
// or management listings.
func contactsFromStaffSections(doc *goquery.Document, source model.SourceType, org, pageURL string) []pipeline.RawPayload {
	var payloads []pipeline.RawPayload

	sections := doc.Find("div, section, ul").FilterFunction(func(_ int, sel *goquery.Selection) bool {
		return classContains(sel, staffSectionKeywords...)
	})

	sections.Each(func(_ int, section *goquery.Selection) {
		entries := section.Find("div, li, article").FilterFunction(func(_ int, sel *goquery.Selection) bool {
			return classContains(sel, "staff", "member", "profile", "card")
		})
		if entries.Length() == 0 && goquery.NodeName(section) == "ul" {
			entries = section.Find("li")
		}
		if entries.Length() == 0 {
			return
		}

		entries.Each(func(_ int, entry *goquery.Selection) {
			person := staffEntryName(entry)
			if person == "" {
				return
			}

			role := strings.TrimSpace(entry.Find(".role, .position, .jawatan, .title").First().Text())
			text := entry.Text()
			if role == "" {
				role = roleAfterName(text, person)
			}

			info := normalize.ExtractContactInfo(text)
			email, phone := info.Email, info.Phone
			if href, ok := entry.Find(`a[href^="mailto:"]`).Attr("href"); ok && email == "" {
				email = strings.Split(strings.TrimPrefix(href, "mailto:"), "?")[0]
			}
			if href, ok := entry.Find(`a[href^="tel:"]`).Attr("href"); ok && phone == "" {
				phone = strings.TrimPrefix(href, "tel:")
			}

			payloads = append(payloads, contactPayload(source, org, person, role, email, phone, pageURL))
		})
	})

	return payloads
}

// staffEntryName pulls the person name from a staff entry: a name-classed
// element, a heading, or an honorific match in the entry text.
func staffEntryName(entry *goquery.Selection) string {
	named := entry.Find("h3, h4, h5, strong, b, span, div").FilterFunction(func(_ int, sel *goquery.Selection) bool {
		return classContains(sel, "name", "nama")
	}).First()
	if name := strings.TrimSpace(named.Text()); name != "" {
		return name
	}
	if name := strings.TrimSpace(entry.Find("h3, h4, h5").First().Text()); name != "" {
		return name
	}
	if m := honorificNameRe.FindStringSubmatch(entry.Text()); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}

// roleAfterName returns the text line following the line that holds the
// person's name, the usual layout of unstructured staff listings.
func roleAfterName(text, person string) string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	for i, line := range lines {
		if strings.Contains(line, person) && i+1 < len(lines) {
			return lines[i+1]
		}
	}
	return ""
}

// contactFromContactSections extracts one organization-level payload from
// contact sections: the page's general email, phone, and street address.
func contactFromContactSections(doc *goquery.Document, source model.SourceType, org, pageURL string) []pipeline.RawPayload {
	section := doc.Find("div, section, footer").FilterFunction(func(_ int, sel *goquery.Selection) bool {
		if id, ok := sel.Attr("id"); ok && strings.Contains(strings.ToLower(id), "contact") {
			return true
		}
		return classContains(sel, "contact", "hubungi")
	}).First()
	if section.Length() == 0 {
		return nil
	}

	info := normalize.ExtractContactInfo(section.Text())
	if info.Email == "" {
		if href, ok := section.Find(`a[href^="mailto:"]`).Attr("href"); ok {
			info.Email = strings.Split(strings.TrimPrefix(href, "mailto:"), "?")[0]
		}
	}
	if info.Phone == "" {
		if href, ok := section.Find(`a[href^="tel:"]`).Attr("href"); ok {
			info.Phone = strings.TrimPrefix(href, "tel:")
		}
	}
	if info.Email == "" && info.Phone == "" && info.Address == "" {
		return nil
	}

	payload := contactPayload(source, org, "", "", info.Email, info.Phone, pageURL)
	if info.Address != "" {
		payload.Data["address"] = info.Address
	}
	return []pipeline.RawPayload{payload}
}

// classContains reports whether the selection's class attribute contains
// any of the keywords, case-insensitively.
func classContains(sel *goquery.Selection, keywords ...string) bool {
	class, ok := sel.Attr("class")
	if !ok {
		return false
	}
	class = strings.ToLower(class)
	for _, kw := range keywords {
		if strings.Contains(class, kw) {
			return true
		}
	}
	return false
}
