package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/leadgen-my/leadgen-cli/internal/export"
	"github.com/leadgen-my/leadgen-cli/internal/fetcher"
	"github.com/leadgen-my/leadgen-cli/internal/model"
	"github.com/leadgen-my/leadgen-cli/internal/pipeline"
	"github.com/leadgen-my/leadgen-cli/internal/store"
)

// initStore opens and migrates the configured store backend. Callers close
// it.
func initStore(ctx context.Context) (store.Store, error) {
	if err := cfg.Validate("store"); err != nil {
		return nil, err
	}

	var (
		st  store.Store
		err error
	)
	switch cfg.Store.Driver {
	case "sqlite":
		path := cfg.Store.Path
		if path == "" {
			path = "leadgen.db"
		}
		st, err = store.NewSQLite(path)
	case "postgres":
		st, err = store.NewPostgres(ctx, cfg.Store.DatabaseURL, &store.PoolConfig{
			MaxConns: cfg.Store.MaxConns,
			MinConns: cfg.Store.MinConns,
		})
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
	if err != nil {
		return nil, err
	}

	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}
	return st, nil
}

// newMapperRegistry builds the payload mapper registry with the manual and
// imported sources wired to the flat contact mapper.
func newMapperRegistry() *pipeline.Registry {
	reg := pipeline.NewRegistry()
	reg.Register(model.SourceManual, pipeline.ContactMapper)
	reg.Register(model.SourceImported, pipeline.ContactMapper)
	return reg
}

// newFetcher builds the polite HTTP fetcher the scrapers share.
func newFetcher() *fetcher.HTTPFetcher {
	return fetcher.NewHTTPFetcher(fetcher.Options{
		UserAgent:         cfg.Fetch.UserAgent,
		Timeout:           time.Duration(cfg.Fetch.TimeoutSecs) * time.Second,
		MaxRetries:        cfg.Fetch.MaxRetries,
		RequestsPerSecond: cfg.Fetch.RequestsPerSecond,
		Burst:             cfg.Fetch.Burst,
	})
}

// finishLeads applies the shared tail of every acquisition command: dedupe,
// completeness filter, summary log.
func finishLeads(leads []model.Lead, minScore float64, dedupe bool) []model.Lead {
	if dedupe {
		leads = pipeline.Deduplicate(leads)
	}
	if minScore > 0 {
		leads = pipeline.FilterByCompleteness(leads, minScore)
	}

	stats := pipeline.Summarize(leads)
	zap.L().Info("pipeline summary",
		zap.Int("leads", stats.TotalLeads),
		zap.Any("sources", stats.Sources),
		zap.Float64("avg_score", stats.Completeness.AverageScore),
	)
	return leads
}

// deliverLeads writes leads to a file, the store, or both. At least one
// destination must be chosen.
func deliverLeads(ctx context.Context, leads []model.Lead, outPath string, save bool) error {
	if outPath == "" && !save {
		return eris.New("nothing to do: pass --out and/or --save")
	}

	if outPath != "" {
		if err := export.Write(leads, export.FormatForPath(outPath), outPath); err != nil {
			return err
		}
		zap.L().Info("wrote leads", zap.String("path", outPath), zap.Int("count", len(leads)))
	}

	if save {
		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		n, err := st.SaveLeads(ctx, leads)
		if err != nil {
			return eris.Wrap(err, "save leads")
		}
		zap.L().Info("saved leads", zap.Int("count", n))
	}
	return nil
}
