// Package source wires the acquisition clients into collectors the CLI can
// fan out over. The registry is an explicit object constructed once per
// process and passed by reference, replacing any notion of a process-global
// client table: collectors are registered at startup and looked up by
// source type.
package source

import (
	"context"
	"sync"

	"github.com/leadgen-my/leadgen-cli/internal/model"
	"github.com/leadgen-my/leadgen-cli/internal/pipeline"
)

// Query carries the search parameters a collect run fans out to every
// enabled collector. Each collector reads the fields that apply to it.
type Query struct {
	Search   string   // free-text business search (places, webreader)
	Location string   // location scope, e.g. "Kuala Lumpur" (places)
	Hashtags []string // hashtags or @usernames to look up (instagram)
	URLs     []string // pages to read directly (webreader)
	Limit    int      // per-collector result cap
}

// Collector produces raw payloads from one acquisition channel.
type Collector interface {
	Name() string
	Source() model.SourceType
	Collect(ctx context.Context, q Query) ([]pipeline.RawPayload, error)
}

// Registry holds the process's collectors.
type Registry struct {
	mu         sync.RWMutex
	collectors map[model.SourceType]Collector
}

// NewRegistry creates an empty collector registry.
func NewRegistry() *Registry {
	return &Registry{collectors: make(map[model.SourceType]Collector)}
}

// Register adds or replaces the collector for its source type.
func (r *Registry) Register(c Collector) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.collectors[c.Source()] = c
}

// Get returns the collector for a source type, or nil if none is registered.
func (r *Registry) Get(source model.SourceType) Collector {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.collectors[source]
}

// List returns the registered collectors in source-type display order.
func (r *Registry) List() []Collector {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Collector, 0, len(r.collectors))
	for _, source := range model.SourceTypes() {
		if c, ok := r.collectors[source]; ok {
			out = append(out, c)
		}
	}
	return out
}
