package pipeline

import (
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/leadgen-my/leadgen-cli/internal/model"
)

// MapperFunc populates a lead from one raw source payload. The lead arrives
// with source, timestamp, country, and metadata already set.
type MapperFunc func(payload map[string]any, lead *model.Lead) error

// RawPayload pairs a raw source payload with the channel it came from.
type RawPayload struct {
	Source model.SourceType `json:"source"`
	Data   map[string]any   `json:"data"`
}

// Registry dispatches raw payloads to per-source mappers. Construct one per
// process with NewRegistry and share it by reference.
type Registry struct {
	mu      sync.RWMutex
	mappers map[model.SourceType]MapperFunc
}

// NewRegistry returns a registry with the built-in mappers registered:
// map-listing, social-profile, web-page, and a generic contact mapper for
// the three scrape channels.
func NewRegistry() *Registry {
	r := &Registry{mappers: make(map[model.SourceType]MapperFunc)}
	r.Register(model.SourceMapListing, mapListing)
	r.Register(model.SourceSocialProfile, mapSocialProfile)
	r.Register(model.SourceWebPage, mapWebPage)
	r.Register(model.SourceDirectoryScrape, mapContact)
	r.Register(model.SourceGovernmentScrape, mapContact)
	r.Register(model.SourceUniversityScrape, mapContact)
	return r
}

// Register adds or replaces the mapper for a source type.
func (r *Registry) Register(source model.SourceType, fn MapperFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mappers[source] = fn
}

// Get returns the mapper for a source type, or nil if none is registered.
func (r *Registry) Get(source model.SourceType) MapperFunc {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.mappers[source]
}

// Sources returns the source types with a registered mapper.
func (r *Registry) Sources() []model.SourceType {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]model.SourceType, 0, len(r.mappers))
	for s := range r.mappers {
		out = append(out, s)
	}
	return out
}

// Standardize converts one raw payload into a canonical lead. Source,
// timestamp, and country are always populated; the untouched payload is
// stored under metadata[source]. An unregistered source type logs a warning
// and returns the bare lead rather than an error, so callers must tolerate
// partially empty leads.
func (r *Registry) Standardize(payload map[string]any, source model.SourceType) (model.Lead, error) {
	lead := model.Lead{
		Country:   model.DefaultCountry,
		Source:    source,
		Timestamp: time.Now(),
	}
	fn := r.Get(source)
	if fn == nil {
		zap.L().Warn("pipeline: unknown source type", zap.String("source", source.String()))
		return lead, nil
	}
	lead.Metadata = map[string]any{source.String(): payload}
	if err := fn(payload, &lead); err != nil {
		return model.Lead{}, eris.Wrapf(err, "pipeline: mapping %s payload", source)
	}
	return lead, nil
}

// StandardizeBatch maps a batch of raw payloads, logging and skipping items
// whose mapper fails. A nil batch is a caller contract violation and is the
// only error case.
func (r *Registry) StandardizeBatch(items []RawPayload) ([]model.Lead, error) {
	if items == nil {
		return nil, eris.New("pipeline: standardize batch: nil input")
	}
	leads := make([]model.Lead, 0, len(items))
	for _, item := range items {
		lead, err := r.Standardize(item.Data, item.Source)
		if err != nil {
			zap.L().Error("pipeline: standardize item failed",
				zap.String("source", item.Source.String()),
				zap.Error(err))
			continue
		}
		leads = append(leads, lead)
	}
	return leads, nil
}
