package ledger

import (
	"time"

	"github.com/google/uuid"
)

// State is the whole in-memory object graph: one consistency domain,
// persisted and reloaded as a single document.
type State struct {
	Session       SessionMetadata            `json:"session"`
	Services      map[string]*ManagedService `json:"services"`
	Transactions  []*Transaction             `json:"transactions"`
	Decisions     []*Decision                `json:"decisions"`
	Opportunities []*MarketOpportunity       `json:"opportunities"`
	Customers     map[string]*Customer       `json:"customers"`
	Snapshots     []*BusinessSnapshot        `json:"snapshots"`
	Interactions  []*InteractionRecord       `json:"interactions"`
	Discoveries   []*TechnicalDiscovery      `json:"discoveries"`
	Blockers      []*Blocker                 `json:"blockers"`
	Milestones    []*ProgressMilestone       `json:"milestones"`
}

// NewState initializes an empty graph with fresh session metadata.
func NewState() *State {
	now := Now()
	return &State{
		Session: SessionMetadata{
			SessionID:          uuid.NewString(),
			StartedAt:          now,
			LastActivityAt:     now,
			PersistenceEnabled: true,
		},
		Services:  make(map[string]*ManagedService),
		Customers: make(map[string]*Customer),
	}
}

// ResetSession issues fresh session metadata for a newly loaded state. The
// loaded collections carry over; the session identity does not.
func (s *State) ResetSession() {
	now := Now()
	s.Session = SessionMetadata{
		SessionID:          uuid.NewString(),
		StartedAt:          now,
		LastActivityAt:     now,
		PersistenceEnabled: true,
	}
	if s.Services == nil {
		s.Services = make(map[string]*ManagedService)
	}
	if s.Customers == nil {
		s.Customers = make(map[string]*Customer)
	}
}

// Now returns the current wall clock in milliseconds since epoch, the
// timestamp unit used throughout the graph.
func Now() int64 {
	return time.Now().UnixMilli()
}

// SameLocalDay reports whether two millisecond timestamps fall on the same
// calendar day in local time.
func SameLocalDay(a, b int64) bool {
	ta, tb := time.UnixMilli(a).Local(), time.UnixMilli(b).Local()
	ya, ma, da := ta.Date()
	yb, mb, db := tb.Date()
	return ya == yb && ma == mb && da == db
}

// DailyRevenue recomputes a service's revenue for the local day containing
// asOf from its transactions. Recomputed in full rather than incremented so
// the counter cannot drift.
func (s *State) DailyRevenue(serviceID string, asOf int64) float64 {
	var total float64
	for _, txn := range s.Transactions {
		if txn.ServiceID == serviceID && SameLocalDay(txn.CreatedAt, asOf) {
			total += txn.Amount
		}
	}
	return total
}

// FindDecision returns the decision with the given ID, or nil.
func (s *State) FindDecision(id string) *Decision {
	for _, d := range s.Decisions {
		if d.ID == id {
			return d
		}
	}
	return nil
}

// FindOpportunity returns the opportunity with the given ID, or nil.
func (s *State) FindOpportunity(id string) *MarketOpportunity {
	for _, o := range s.Opportunities {
		if o.ID == id {
			return o
		}
	}
	return nil
}

// FindBlocker returns the blocker with the given ID, or nil.
func (s *State) FindBlocker(id string) *Blocker {
	for _, b := range s.Blockers {
		if b.ID == id {
			return b
		}
	}
	return nil
}

// LatestSnapshot returns the most recent business snapshot, or nil when none
// has been saved yet.
func (s *State) LatestSnapshot() *BusinessSnapshot {
	var latest *BusinessSnapshot
	for _, snap := range s.Snapshots {
		if latest == nil || snap.CreatedAt >= latest.CreatedAt {
			latest = snap
		}
	}
	return latest
}
