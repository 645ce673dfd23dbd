package store

import (
	"context"
	"time"

	"github.com/leadgen-my/leadgen-cli/internal/model"
)

// LeadFilter specifies criteria for listing leads.
type LeadFilter struct {
	Status   model.LeadStatus `json:"status,omitempty"`
	Source   model.SourceType `json:"source,omitempty"`
	Search   string           `json:"search,omitempty"`
	MinScore float64          `json:"min_score,omitempty"`
	Limit    int              `json:"limit,omitempty"`
	Offset   int              `json:"offset,omitempty"`
}

// Store defines the persistence interface for the lead pipeline. Leads keep
// their IDs across saves, so re-importing an exported file updates rows in
// place instead of duplicating them. Getters return (nil, nil) when the row
// does not exist.
type Store interface {
	// Leads
	SaveLeads(ctx context.Context, leads []model.Lead) (int, error)
	GetLead(ctx context.Context, id string) (*model.Lead, error)
	ListLeads(ctx context.Context, filter LeadFilter) ([]model.Lead, error)
	UpdateLeadStatus(ctx context.Context, id string, status model.LeadStatus, note string) error
	StatusHistory(ctx context.Context, leadID string) ([]model.StatusChange, error)

	// Outreach generations
	RecordGeneration(ctx context.Context, gen model.EmailGeneration) (int64, error)
	GetGeneration(ctx context.Context, id int64) (*model.EmailGeneration, error)
	ListGenerations(ctx context.Context, leadID, template string) ([]model.EmailGeneration, error)
	MarkGenerationSent(ctx context.Context, id int64, sentAt time.Time) error

	// Aggregates
	DashboardStats(ctx context.Context) (*model.DashboardStats, error)

	// Lifecycle
	Ping(ctx context.Context) error
	Migrate(ctx context.Context) error
	Close() error
}
