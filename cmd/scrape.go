package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/leadgen-my/leadgen-cli/internal/model"
	"github.com/leadgen-my/leadgen-cli/internal/scrape"
)

var (
	scrapeKind     string
	scrapeURLs     []string
	scrapeMaxPages int
	scrapeMinScore float64
	scrapeOut      string
	scrapeSave     bool
)

// scrapeSourceForKind maps the CLI --kind value onto a scrape source type.
func scrapeSourceForKind(kind string) (model.SourceType, error) {
	switch kind {
	case "directory":
		return model.SourceDirectoryScrape, nil
	case "government":
		return model.SourceGovernmentScrape, nil
	case "university":
		return model.SourceUniversityScrape, nil
	}
	return "", eris.Errorf("unknown scrape kind %q (directory, government, university)", kind)
}

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Scrape Malaysian directory, government, or university sites for contacts",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		source, err := scrapeSourceForKind(scrapeKind)
		if err != nil {
			return err
		}
		if len(scrapeURLs) == 0 {
			return eris.New("pass at least one --url")
		}

		maxPages := scrapeMaxPages
		if maxPages == 0 {
			maxPages = cfg.Scrape.MaxPages
		}
		scraper := scrape.NewScraper(source, scrape.Options{
			Fetcher:  newFetcher(),
			MaxPages: maxPages,
		})
		if scraper == nil {
			return eris.Errorf("no scraper for source %s", source)
		}

		payloads := scrape.ScrapeAll(ctx, scraper, scrapeURLs, cfg.Scrape.MaxConcurrent)
		zap.L().Info("scrape complete",
			zap.String("kind", scrapeKind),
			zap.Int("sites", len(scrapeURLs)),
			zap.Int("contacts", len(payloads)),
		)

		leads, err := newMapperRegistry().StandardizeBatch(payloads)
		if err != nil {
			return eris.Wrap(err, "standardize payloads")
		}

		minScore := scrapeMinScore
		if !cmd.Flags().Changed("min-score") {
			minScore = cfg.Pipeline.MinScore
		}
		leads = finishLeads(leads, minScore, true)

		return deliverLeads(ctx, leads, scrapeOut, scrapeSave)
	},
}

func init() {
	scrapeCmd.Flags().StringVar(&scrapeKind, "kind", "directory", "site kind: directory, government, or university")
	scrapeCmd.Flags().StringSliceVar(&scrapeURLs, "url", nil, "base URL to scrape (repeatable)")
	scrapeCmd.Flags().IntVar(&scrapeMaxPages, "max-pages", 0, "pages to crawl per site (default from config)")
	scrapeCmd.Flags().Float64Var(&scrapeMinScore, "min-score", 0, "completeness threshold (default from config)")
	scrapeCmd.Flags().StringVar(&scrapeOut, "out", "", "output file (.json, .csv, or .xlsx)")
	scrapeCmd.Flags().BoolVar(&scrapeSave, "save", false, "save leads to the store")
	rootCmd.AddCommand(scrapeCmd)
}
