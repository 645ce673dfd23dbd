package scrape

import (
	"context"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/leadgen-my/leadgen-cli/internal/model"
	"github.com/leadgen-my/leadgen-cli/internal/pipeline"
)

// govKeywords mark paths likely to hold ministry contact information, in
// descending relevance. Malay and English forms are both covered.
var govKeywords = []string{
	"contact", "hubungi", "direktori", "directory", "staff", "pegawai",
	"pengurusan", "management", "organisasi", "organisation", "carta",
	"jabatan", "bahagian", "about", "tentang", "profile",
}

// govSeedPaths are the contact pages tried first on every ministry site.
var govSeedPaths = []string{
	"/contact", "/contact-us", "/hubungi", "/hubungi-kami",
	"/en/contact", "/ms/hubungi", "/directory", "/ms/direktori",
	"/en/about-us", "/ms/mengenai-kami",
}

// GovernmentScraper crawls Malaysian government ministry sites for officer
// contacts: directory tables, management listings, and contact sections.
type GovernmentScraper struct {
	opts   Options
	filter *LinkFilter
}

// NewGovernmentScraper builds a ministry scraper.
func NewGovernmentScraper(opts Options) *GovernmentScraper {
	return &GovernmentScraper{
		opts:   opts.withDefaults(),
		filter: NewLinkFilter(govKeywords, govSeedPaths),
	}
}

func (s *GovernmentScraper) Name() string { return "government" }

func (s *GovernmentScraper) Source() model.SourceType { return model.SourceGovernmentScrape }

// Scrape crawls the ministry site and returns its contact payloads.
func (s *GovernmentScraper) Scrape(ctx context.Context, baseURL string) ([]pipeline.RawPayload, error) {
	payloads, err := crawl(ctx, s.opts.Fetcher, baseURL, s.filter, s.opts.MaxPages, s.parsePage)
	zap.L().Info("scrape: ministry site done",
		zap.String("url", baseURL),
		zap.Int("contacts", len(payloads)))
	return payloads, err
}

// parsePage tries each extraction strategy in order: tables, staff
// listings, then the page's contact section.
func (s *GovernmentScraper) parsePage(doc *goquery.Document, pageURL string) []pipeline.RawPayload {
	org := orgName(doc, pageURL)

	var payloads []pipeline.RawPayload
	payloads = append(payloads, contactsFromTables(doc, s.Source(), org, pageURL)...)
	payloads = append(payloads, contactsFromStaffSections(doc, s.Source(), org, pageURL)...)
	payloads = append(payloads, contactFromContactSections(doc, s.Source(), org, pageURL)...)
	return payloads
}
