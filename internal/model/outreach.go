package model

import "time"

// EmailGeneration is a stored outreach email produced for a lead. A
// generation starts as a draft and is marked sent once delivery succeeds.
type EmailGeneration struct {
	ID        int64      `json:"id,omitempty"`
	LeadID    string     `json:"lead_id"`
	Template  string     `json:"template"`
	Subject   string     `json:"subject"`
	Body      string     `json:"body"`
	Recipient string     `json:"recipient"`
	CreatedAt time.Time  `json:"created_at"`
	SentAt    *time.Time `json:"sent_at,omitempty"`
}

// Sent reports whether the generation has been delivered.
func (g EmailGeneration) Sent() bool { return g.SentAt != nil }

// DashboardStats is the aggregate snapshot served by the API and the stats
// command.
type DashboardStats struct {
	TotalLeads      int                `json:"total_leads"`
	ByStatus        map[LeadStatus]int `json:"by_status"`
	BySource        map[SourceType]int `json:"by_source"`
	EmailsGenerated int                `json:"emails_generated"`
	EmailsSent      int                `json:"emails_sent"`
	AverageScore    float64            `json:"average_score"`
}
