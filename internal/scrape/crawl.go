package scrape

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/leadgen-my/leadgen-cli/internal/fetcher"
	"github.com/leadgen-my/leadgen-cli/internal/pipeline"
)

// parseFunc extracts the raw contact payloads of one parsed page.
type parseFunc func(doc *goquery.Document, pageURL string) []pipeline.RawPayload

// maxCrawlDepth bounds how far a crawl follows links away from its seeds.
const maxCrawlDepth = 2

type crawlItem struct {
	url   string
	depth int
}

// crawl walks a site breadth-first from the base URL and the filter's
// seeds, parsing each page for payloads and following filter-approved
// links. Fetch and parse failures skip the page, never the crawl.
func crawl(ctx context.Context, f fetcher.Fetcher, baseURL string, filter *LinkFilter, maxPages int, parse parseFunc) ([]pipeline.RawPayload, error) {
	queue := make([]crawlItem, 0, maxPages)
	queue = append(queue, crawlItem{url: strings.TrimRight(baseURL, "/")})
	for _, seed := range filter.Seeds(baseURL) {
		queue = append(queue, crawlItem{url: seed})
	}

	visited := make(map[string]bool)
	var payloads []pipeline.RawPayload
	pages := 0

	for len(queue) > 0 && pages < maxPages {
		if err := ctx.Err(); err != nil {
			return payloads, err
		}

		item := queue[0]
		queue = queue[1:]
		if visited[item.url] {
			continue
		}
		visited[item.url] = true
		pages++

		page, err := f.Get(ctx, item.url)
		if err != nil {
			zap.L().Debug("scrape: page fetch failed",
				zap.String("url", item.url),
				zap.Error(err))
			continue
		}

		doc, err := goquery.NewDocumentFromReader(strings.NewReader(page.HTML))
		if err != nil {
			zap.L().Debug("scrape: page parse failed",
				zap.String("url", item.url),
				zap.Error(err))
			continue
		}

		found := parse(doc, item.url)
		payloads = append(payloads, found...)
		zap.L().Debug("scrape: page done",
			zap.String("url", item.url),
			zap.Int("contacts", len(found)))

		if item.depth < maxCrawlDepth {
			for _, link := range filter.Relevant(pageLinks(doc, item.url), baseURL) {
				if !visited[link] {
					queue = append(queue, crawlItem{url: link, depth: item.depth + 1})
				}
			}
		}
	}

	return payloads, nil
}
