package main

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/leadgen-my/leadgen-cli/internal/model"
	"github.com/leadgen-my/leadgen-cli/internal/pipeline"
	"github.com/leadgen-my/leadgen-cli/internal/source"
	"github.com/leadgen-my/leadgen-cli/pkg/instagram"
	"github.com/leadgen-my/leadgen-cli/pkg/places"
	"github.com/leadgen-my/leadgen-cli/pkg/webreader"
)

var (
	collectSources    []string
	collectQuery      string
	collectLocation   string
	collectCategories []string
	collectHashtags   []string
	collectURLs       []string
	collectLimit      int
	collectMinScore   float64
	collectDedupe     bool
	collectOut        string
	collectSave       bool
)

var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Collect leads from the configured acquisition sources",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("collect"); err != nil {
			return err
		}
		if collectQuery == "" && len(collectCategories) == 0 && len(collectHashtags) == 0 && len(collectURLs) == 0 {
			return eris.New("pass --query, --categories, --hashtags, or --urls")
		}

		registry := buildCollectorRegistry()
		collectors, err := pickCollectors(registry, collectSources)
		if err != nil {
			return err
		}
		if len(collectors) == 0 {
			return eris.New("no collectors available: configure at least one source endpoint")
		}

		// Each category becomes its own search pass; without categories
		// there is a single pass for the bare query.
		searches := []string{collectQuery}
		if len(collectCategories) > 0 {
			searches = searches[:0]
			for _, category := range collectCategories {
				searches = append(searches, strings.TrimSpace(category+" "+collectQuery))
			}
		}

		var payloads []pipeline.RawPayload
		for i, search := range searches {
			q := source.Query{
				Search:   search,
				Location: collectLocation,
				Limit:    collectLimit,
			}
			// Hashtags and direct URLs are not per-category; run them once.
			if i == 0 {
				q.Hashtags = collectHashtags
				q.URLs = collectURLs
			}
			batch, failed := source.CollectAll(ctx, collectors, q, cfg.Scrape.MaxConcurrent)
			if failed > 0 {
				zap.L().Warn("some sources failed",
					zap.String("search", search),
					zap.Int("failed", failed))
			}
			payloads = append(payloads, batch...)
		}

		leads, err := newMapperRegistry().StandardizeBatch(payloads)
		if err != nil {
			return eris.Wrap(err, "standardize payloads")
		}

		minScore := collectMinScore
		if !cmd.Flags().Changed("min-score") {
			minScore = cfg.Pipeline.MinScore
		}
		leads = finishLeads(leads, minScore, collectDedupe)

		return deliverLeads(ctx, leads, collectOut, collectSave)
	},
}

// buildCollectorRegistry registers a collector for every source whose
// endpoint is configured. Missing endpoints just narrow the run.
func buildCollectorRegistry() *source.Registry {
	registry := source.NewRegistry()

	if cfg.Places.BaseURL != "" {
		client := places.NewClient(cfg.Places.Key, places.WithBaseURL(cfg.Places.BaseURL))
		registry.Register(source.NewPlacesCollector(client))
	} else {
		zap.L().Debug("places endpoint not configured, skipping collector")
	}

	if cfg.Instagram.BaseURL != "" {
		client := instagram.NewClient(cfg.Instagram.Key, instagram.WithBaseURL(cfg.Instagram.BaseURL))
		registry.Register(source.NewInstagramCollector(client))
	} else {
		zap.L().Debug("instagram endpoint not configured, skipping collector")
	}

	opts := []webreader.Option{}
	if cfg.WebReader.BaseURL != "" {
		opts = append(opts, webreader.WithBaseURL(cfg.WebReader.BaseURL))
	}
	if cfg.WebReader.SearchBaseURL != "" {
		opts = append(opts, webreader.WithSearchBaseURL(cfg.WebReader.SearchBaseURL))
	}
	registry.Register(source.NewWebReaderCollector(webreader.NewClient(cfg.WebReader.Key, opts...)))

	return registry
}

// pickCollectors resolves --sources names against the registry; empty means
// all registered collectors.
func pickCollectors(registry *source.Registry, names []string) ([]source.Collector, error) {
	if len(names) == 0 {
		return registry.List(), nil
	}

	collectors := make([]source.Collector, 0, len(names))
	for _, name := range names {
		st, err := model.ParseSourceType(name)
		if err != nil {
			return nil, err
		}
		c := registry.Get(st)
		if c == nil {
			return nil, eris.Errorf("source %s is not configured", name)
		}
		collectors = append(collectors, c)
	}
	return collectors, nil
}

func init() {
	collectCmd.Flags().StringSliceVar(&collectSources, "sources", nil, "source types to collect from (default all configured)")
	collectCmd.Flags().StringVar(&collectQuery, "query", "", "business search query, e.g. \"law firms\"")
	collectCmd.Flags().StringVar(&collectLocation, "location", "Malaysia", "location scope for the search")
	collectCmd.Flags().StringSliceVar(&collectCategories, "categories", nil, "business categories, one search pass each")
	collectCmd.Flags().StringSliceVar(&collectHashtags, "hashtags", nil, "instagram hashtags or @usernames")
	collectCmd.Flags().StringSliceVar(&collectURLs, "urls", nil, "web pages to read directly")
	collectCmd.Flags().IntVar(&collectLimit, "limit", 50, "per-source result cap")
	collectCmd.Flags().Float64Var(&collectMinScore, "min-score", 0, "completeness threshold (default from config)")
	collectCmd.Flags().BoolVar(&collectDedupe, "dedupe", true, "deduplicate collected leads")
	collectCmd.Flags().StringVar(&collectOut, "out", "", "output file (.json, .csv, or .xlsx)")
	collectCmd.Flags().BoolVar(&collectSave, "save", false, "save leads to the store")
	rootCmd.AddCommand(collectCmd)
}
