package scrape

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/leadgen-my/leadgen-cli/internal/model"
	"github.com/leadgen-my/leadgen-cli/internal/normalize"
	"github.com/leadgen-my/leadgen-cli/internal/pipeline"
)

// maxProfilesPerPage caps how many business profiles one listing page may
// queue, keeping crawls polite on dense category pages.
const maxProfilesPerPage = 10

// DirectoryScraper scrapes business directory category pages (yellow-pages
// and businesslist style): paginated listing pages linking to per-business
// profile pages.
type DirectoryScraper struct {
	opts Options
}

// NewDirectoryScraper builds a directory scraper.
func NewDirectoryScraper(opts Options) *DirectoryScraper {
	return &DirectoryScraper{opts: opts.withDefaults()}
}

func (s *DirectoryScraper) Name() string { return "directory" }

func (s *DirectoryScraper) Source() model.SourceType { return model.SourceDirectoryScrape }

// Scrape walks a category URL's pagination, visiting each listed business
// profile. Failed pages are skipped.
func (s *DirectoryScraper) Scrape(ctx context.Context, categoryURL string) ([]pipeline.RawPayload, error) {
	categoryURL = strings.TrimRight(categoryURL, "/")
	var payloads []pipeline.RawPayload
	visited := make(map[string]bool)

	for pageNum := 1; pageNum <= s.opts.MaxPages; pageNum++ {
		if err := ctx.Err(); err != nil {
			return payloads, err
		}

		pageURL := categoryURL
		if pageNum > 1 {
			pageURL = fmt.Sprintf("%s/page-%d", categoryURL, pageNum)
		}

		page, err := s.opts.Fetcher.Get(ctx, pageURL)
		if err != nil {
			zap.L().Warn("scrape: directory page fetch failed",
				zap.String("url", pageURL),
				zap.Error(err))
			continue
		}
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(page.HTML))
		if err != nil {
			continue
		}

		links := businessLinks(doc, pageURL)
		if len(links) == 0 {
			break
		}
		for _, link := range links {
			if visited[link] {
				continue
			}
			visited[link] = true

			profile, err := s.opts.Fetcher.Get(ctx, link)
			if err != nil {
				zap.L().Debug("scrape: business profile fetch failed",
					zap.String("url", link),
					zap.Error(err))
				continue
			}
			profileDoc, err := goquery.NewDocumentFromReader(strings.NewReader(profile.HTML))
			if err != nil {
				continue
			}
			if payload, ok := parseBusinessProfile(profileDoc, link); ok {
				payloads = append(payloads, payload)
			}
		}
	}

	zap.L().Info("scrape: directory category done",
		zap.String("category", categoryURL),
		zap.Int("contacts", len(payloads)))
	return payloads, nil
}

// businessLinks extracts profile links from a directory listing page:
// listing cards first, then any anchor under a known profile path.
func businessLinks(doc *goquery.Document, pageURL string) []string {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil
	}

	seen := make(map[string]bool)
	var links []string
	add := func(href string) {
		ref, err := url.Parse(href)
		if err != nil {
			return
		}
		abs := base.ResolveReference(ref)
		if abs.Host != base.Host {
			return
		}
		link := abs.String()
		if !seen[link] && len(links) < maxProfilesPerPage {
			seen[link] = true
			links = append(links, link)
		}
	}

	cards := doc.Find("div").FilterFunction(func(_ int, sel *goquery.Selection) bool {
		return classContains(sel, "company", "listing", "business-card", "business-listing")
	})
	cards.Each(func(_ int, card *goquery.Selection) {
		if href, ok := card.Find("a.link_search[href]").Attr("href"); ok {
			add(href)
			return
		}
		card.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
			href, _ := a.Attr("href")
			if isProfilePath(href) {
				add(href)
				return false
			}
			return true
		})
	})

	if len(links) == 0 {
		doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
			href, _ := a.Attr("href")
			if isProfilePath(href) {
				add(href)
			}
		})
	}
	return links
}

func isProfilePath(href string) bool {
	return strings.Contains(href, "/company/") ||
		strings.Contains(href, "/business/") ||
		strings.Contains(href, "/profile/")
}

// parseBusinessProfile extracts one contact payload from a business profile
// page. Profiles without a name and without any contact signal are dropped.
func parseBusinessProfile(doc *goquery.Document, pageURL string) (pipeline.RawPayload, bool) {
	org := strings.TrimSpace(doc.Find("h1.business-name, h1.title, h2.business-name").First().Text())
	if org == "" {
		org = orgName(doc, pageURL)
	}

	body := doc.Find("body").Text()
	info := normalize.ExtractContactInfo(body)
	if info.Email == "" {
		if href, ok := doc.Find(`a[href^="mailto:"]`).Attr("href"); ok {
			info.Email = strings.Split(strings.TrimPrefix(href, "mailto:"), "?")[0]
		}
	}
	if info.Phone == "" {
		if href, ok := doc.Find(`a[href^="tel:"]`).Attr("href"); ok {
			info.Phone = strings.TrimPrefix(href, "tel:")
		}
	}

	if org == "" && info.Email == "" && info.Phone == "" {
		return pipeline.RawPayload{}, false
	}

	payload := contactPayload(model.SourceDirectoryScrape, org, "", "", info.Email, info.Phone, pageURL)
	if info.Address != "" {
		payload.Data["address"] = info.Address
	}
	if website := externalWebsite(doc, pageURL); website != "" {
		payload.Data["website"] = website
	}
	return payload, true
}

// externalWebsite returns the profile's off-site website link, if any.
func externalWebsite(doc *goquery.Document, pageURL string) string {
	base, err := url.Parse(pageURL)
	if err != nil {
		return ""
	}

	var website string
	doc.Find(`a[href^="http"]`).EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href, _ := a.Attr("href")
		u, err := url.Parse(href)
		if err != nil || u.Host == "" || u.Host == base.Host {
			return true
		}
		label := strings.ToLower(strings.TrimSpace(a.Text()))
		class, _ := a.Attr("class")
		if strings.Contains(label, "website") || strings.Contains(strings.ToLower(class), "website") {
			website = href
			return false
		}
		return true
	})
	return website
}
