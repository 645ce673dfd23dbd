package scrape

import (
	"net/url"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// maxFollowLinks caps how many links one page may contribute to the crawl
// queue.
const maxFollowLinks = 20

// LinkFilter selects which on-site links a crawl follows. Links are kept
// when their path contains one of the keywords; seed paths are visited
// unconditionally.
type LinkFilter struct {
	keywords  []string
	seedPaths []string
}

// NewLinkFilter builds a filter from path keywords and seed paths.
func NewLinkFilter(keywords, seedPaths []string) *LinkFilter {
	return &LinkFilter{keywords: keywords, seedPaths: seedPaths}
}

// Seeds returns the absolute seed URLs for a base URL.
func (f *LinkFilter) Seeds(baseURL string) []string {
	base := strings.TrimRight(baseURL, "/")
	seeds := make([]string, 0, len(f.seedPaths))
	for _, p := range f.seedPaths {
		seeds = append(seeds, base+p)
	}
	return seeds
}

// Relevant filters candidate links down to same-host URLs whose path
// matches a keyword, most relevant first, capped at maxFollowLinks.
func (f *LinkFilter) Relevant(links []string, baseURL string) []string {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil
	}

	seen := make(map[string]bool)
	var kept []string
	for _, link := range links {
		u, err := url.Parse(link)
		if err != nil || u.Host != base.Host {
			continue
		}
		u.Fragment = ""
		clean := u.String()
		if seen[clean] {
			continue
		}
		if f.matches(u.Path) {
			seen[clean] = true
			kept = append(kept, clean)
		}
	}

	// Prefer links whose path matches an earlier keyword.
	sort.SliceStable(kept, func(i, j int) bool {
		return f.rank(kept[i]) < f.rank(kept[j])
	})
	if len(kept) > maxFollowLinks {
		kept = kept[:maxFollowLinks]
	}
	return kept
}

func (f *LinkFilter) matches(path string) bool {
	path = strings.ToLower(path)
	for _, kw := range f.keywords {
		if strings.Contains(path, kw) {
			return true
		}
	}
	return false
}

func (f *LinkFilter) rank(link string) int {
	link = strings.ToLower(link)
	for i, kw := range f.keywords {
		if strings.Contains(link, kw) {
			return i
		}
	}
	return len(f.keywords)
}

// pageLinks collects the absolute href targets of a parsed page.
func pageLinks(doc *goquery.Document, pageURL string) []string {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil
	}

	var links []string
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok || href == "" || strings.HasPrefix(href, "#") ||
			strings.HasPrefix(href, "mailto:") || strings.HasPrefix(href, "tel:") ||
			strings.HasPrefix(href, "javascript:") {
			return
		}
		ref, err := url.Parse(href)
		if err != nil {
			return
		}
		links = append(links, base.ResolveReference(ref).String())
	})
	return links
}
