package scrape

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/leadgen-my/leadgen-cli/internal/model"
	"github.com/leadgen-my/leadgen-cli/internal/pipeline"
)

// uniKeywords mark paths likely to hold faculty and staff listings.
var uniKeywords = []string{
	"staff", "faculty", "fakulti", "lecturer", "pensyarah", "academic",
	"directory", "direktori", "department", "jabatan", "school", "people",
	"profile", "contact", "hubungi", "kakitangan",
}

// uniSeedPaths are the listing pages tried first on every university site.
var uniSeedPaths = []string{
	"/staff", "/directory", "/faculty", "/academic-staff",
	"/ms/direktori", "/contact",
}

// deptHeadingKeywords identify a department or faculty heading on a page.
var deptHeadingKeywords = []string{"faculty", "department", "school", "fakulti", "jabatan"}

// UniversityScraper crawls university sites for faculty and staff
// contacts. The department or faculty name, when found, is appended to the
// university name so leads stay attributable to their unit.
type UniversityScraper struct {
	opts   Options
	filter *LinkFilter
}

// NewUniversityScraper builds a university scraper.
func NewUniversityScraper(opts Options) *UniversityScraper {
	return &UniversityScraper{
		opts:   opts.withDefaults(),
		filter: NewLinkFilter(uniKeywords, uniSeedPaths),
	}
}

func (s *UniversityScraper) Name() string { return "university" }

func (s *UniversityScraper) Source() model.SourceType { return model.SourceUniversityScrape }

// Scrape crawls the university site and returns its contact payloads.
func (s *UniversityScraper) Scrape(ctx context.Context, baseURL string) ([]pipeline.RawPayload, error) {
	payloads, err := crawl(ctx, s.opts.Fetcher, baseURL, s.filter, s.opts.MaxPages, s.parsePage)
	zap.L().Info("scrape: university site done",
		zap.String("url", baseURL),
		zap.Int("contacts", len(payloads)))
	return payloads, err
}

func (s *UniversityScraper) parsePage(doc *goquery.Document, pageURL string) []pipeline.RawPayload {
	org := orgName(doc, pageURL)
	if dept := departmentName(doc); dept != "" && !strings.Contains(org, dept) {
		org = org + " - " + dept
	}

	var payloads []pipeline.RawPayload
	payloads = append(payloads, contactsFromTables(doc, s.Source(), org, pageURL)...)
	payloads = append(payloads, contactsFromStaffSections(doc, s.Source(), org, pageURL)...)
	payloads = append(payloads, contactFromContactSections(doc, s.Source(), org, pageURL)...)
	return payloads
}

// departmentName finds the first heading naming a faculty, department, or
// school.
func departmentName(doc *goquery.Document) string {
	var dept string
	doc.Find("h1, h2, h3").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		text := strings.TrimSpace(sel.Text())
		lower := strings.ToLower(text)
		for _, kw := range deptHeadingKeywords {
			if strings.Contains(lower, kw) {
				dept = text
				return false
			}
		}
		return true
	})
	return dept
}
