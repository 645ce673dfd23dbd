package model

import (
	"fmt"
	"strings"
	"time"
)

// LeadStatus tracks where a lead sits in the outreach lifecycle.
type LeadStatus string

const (
	StatusNew          LeadStatus = "new"
	StatusContacted    LeadStatus = "contacted"
	StatusResponded    LeadStatus = "responded"
	StatusQualified    LeadStatus = "qualified"
	StatusDisqualified LeadStatus = "disqualified"
	StatusBooked       LeadStatus = "booked"
	StatusClosed       LeadStatus = "closed"
	StatusGhosted      LeadStatus = "ghosted"
)

// Valid reports whether s is a known lifecycle status.
func (s LeadStatus) Valid() bool {
	switch s {
	case StatusNew, StatusContacted, StatusResponded, StatusQualified,
		StatusDisqualified, StatusBooked, StatusClosed, StatusGhosted:
		return true
	}
	return false
}

func (s LeadStatus) String() string { return string(s) }

// ParseLeadStatus converts CLI/API input into a LeadStatus.
func ParseLeadStatus(raw string) (LeadStatus, error) {
	s := LeadStatus(strings.ToLower(strings.TrimSpace(raw)))
	if !s.Valid() {
		return "", fmt.Errorf("unknown lead status %q", raw)
	}
	return s, nil
}

// StatusChange is one row of a lead's status history.
type StatusChange struct {
	ID        int64      `json:"id,omitempty"`
	LeadID    string     `json:"lead_id"`
	From      LeadStatus `json:"from,omitempty"`
	To        LeadStatus `json:"to"`
	Note      string     `json:"note,omitempty"`
	ChangedAt time.Time  `json:"changed_at"`
}
