package ledger

// ServiceStatus represents the lifecycle state of a managed service
type ServiceStatus string

const (
	StatusActive  ServiceStatus = "active"
	StatusScaling ServiceStatus = "scaling"
	StatusPaused  ServiceStatus = "paused"
	StatusKilled  ServiceStatus = "killed"
)

// DecisionOutcome represents the resolution state of a logged decision
type DecisionOutcome string

const (
	OutcomeApproved     DecisionOutcome = "approved"
	OutcomeDenied       DecisionOutcome = "denied"
	OutcomePending      DecisionOutcome = "pending"
	OutcomeAutoApproved DecisionOutcome = "auto_approved"
)

// OpportunityStatus represents the pipeline stage of a market opportunity
type OpportunityStatus string

const (
	OpportunityDiscovered   OpportunityStatus = "discovered"
	OpportunityAnalyzing    OpportunityStatus = "analyzing"
	OpportunityImplementing OpportunityStatus = "implementing"
	OpportunityDeployed     OpportunityStatus = "deployed"
	OpportunityFailed       OpportunityStatus = "failed"
)

// BlockerStatus represents the investigation state of a blocker
type BlockerStatus string

const (
	BlockerIdentified    BlockerStatus = "identified"
	BlockerInvestigating BlockerStatus = "investigating"
	BlockerResolved      BlockerStatus = "resolved"
	BlockerEscalated     BlockerStatus = "escalated"
)

// ScalingConfig holds the per-service thresholds the lifecycle engine
// evaluates against. Thresholds are daily-profit boundaries in dollars.
type ScalingConfig struct {
	AutoScale     bool    `json:"auto_scale"`
	MaxDailySpend float64 `json:"max_daily_spend"`
	KillThreshold float64 `json:"kill_threshold"`
}

// ManagedService is one autonomous revenue-generating unit.
// killed is terminal; killed services are retained for history.
type ManagedService struct {
	ID                 string             `json:"id"`
	Name               string             `json:"name"`
	Type               string             `json:"type,omitempty"`
	Status             ServiceStatus      `json:"status"`
	DailyRevenue       float64            `json:"daily_revenue"`
	DailyCosts         float64            `json:"daily_costs"`
	TotalRevenue       float64            `json:"total_revenue"`
	CustomerCount      int                `json:"customer_count"`
	PerformanceMetrics map[string]float64 `json:"performance_metrics,omitempty"`
	Scaling            ScalingConfig      `json:"scaling"`
	CreatedAt          int64              `json:"created_at"`
	LastUpdateAt       int64              `json:"last_update_at"`
}

// Transaction is a single immutable monetary event tied to a service.
type Transaction struct {
	ID            string            `json:"id"`
	ServiceID     string            `json:"service_id"`
	Amount        float64           `json:"amount"`
	Currency      string            `json:"currency"`
	CustomerID    string            `json:"customer_id,omitempty"`
	ExternalTxnID string            `json:"external_transaction_id,omitempty"`
	Metadata      map[string]string `json:"metadata,omitempty"`
	CreatedAt     int64             `json:"created_at"`
}

// Decision is an audit entry capturing a choice, its justification, and its
// estimated business impact. Outcome may move from pending to a resolved
// value; the record itself is never deleted.
type Decision struct {
	ID            string          `json:"id"`
	Type          string          `json:"type"`
	Context       string          `json:"context"`
	Outcome       DecisionOutcome `json:"outcome"`
	RevenueImpact float64         `json:"revenue_impact"`
	Risk          string          `json:"risk"`
	Confidence    float64         `json:"confidence"`
	CreatedAt     int64           `json:"created_at"`
	ResolvedAt    int64           `json:"resolved_at,omitempty"`
}

// MarketOpportunity is a candidate new revenue idea. Status advances
// monotonically forward except for an explicit failed.
type MarketOpportunity struct {
	ID              string            `json:"id"`
	Description     string            `json:"description"`
	MarketSize      *float64          `json:"market_size,omitempty"`
	Competition     *float64          `json:"competition,omitempty"`
	ProfitPotential *float64          `json:"profit_potential,omitempty"`
	EffortDays      *float64          `json:"effort_days,omitempty"`
	Status          OpportunityStatus `json:"status"`
	DiscoveredAt    int64             `json:"discovered_at"`
}

// Customer is an end-user of the portfolio's services, updated additively.
type Customer struct {
	ID           string  `json:"id"`
	TotalSpend   float64 `json:"total_spend"`
	Satisfaction float64 `json:"satisfaction,omitempty"`
	ChurnRisk    float64 `json:"churn_risk,omitempty"`
	FirstSeenAt  int64   `json:"first_seen_at"`
	LastSeenAt   int64   `json:"last_seen_at"`
}

// BusinessSnapshot is an immutable point-in-time summary of the portfolio.
// The latest by timestamp is authoritative.
type BusinessSnapshot struct {
	ID                 string   `json:"id"`
	TotalDailyRevenue  float64  `json:"total_daily_revenue"`
	TotalDailyCosts    float64  `json:"total_daily_costs"`
	ActiveServices     int      `json:"active_services"`
	Priorities         []string `json:"priorities,omitempty"`
	PendingDecisionIDs []string `json:"pending_decision_ids,omitempty"`
	SessionNote        string   `json:"session_note,omitempty"`
	CreatedAt          int64    `json:"created_at"`
}

// Extraction holds the keyword-family hit lists pulled from one interaction.
type Extraction struct {
	Tasks        []string `json:"tasks,omitempty"`
	Technologies []string `json:"technologies,omitempty"`
	Decisions    []string `json:"decisions_made,omitempty"`
	Blockers     []string `json:"blockers_identified,omitempty"`
}

// InteractionRecord is one logged exchange between the caller and the
// reasoning agent, with heuristic classification attached.
type InteractionRecord struct {
	ID          string     `json:"id"`
	SessionID   string     `json:"session_id"`
	UserMessage string     `json:"user_message"`
	Response    string     `json:"response"`
	ContextType string     `json:"context_type"`
	Extracted   Extraction `json:"extracted_entities"`
	Importance  float64    `json:"importance"`
	CreatedAt   int64      `json:"created_at"`
}

// TechnicalDiscovery is a structured note about something learned.
type TechnicalDiscovery struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	Description string `json:"description"`
	CreatedAt   int64  `json:"created_at"`
}

// Blocker is an obstacle surfaced by extraction or direct logging.
// resolved and escalated are terminal.
type Blocker struct {
	ID          string        `json:"id"`
	Description string        `json:"description"`
	Severity    string        `json:"severity"`
	Status      BlockerStatus `json:"status"`
	NextSteps   string        `json:"next_steps,omitempty"`
	CreatedAt   int64         `json:"created_at"`
	ResolvedAt  int64         `json:"resolved_at,omitempty"`
}

// ProgressMilestone marks a completed step worth remembering across sessions.
type ProgressMilestone struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	CreatedAt   int64  `json:"created_at"`
}

// SessionMetadata describes the current process run. It rides inside the
// snapshot rather than being persisted as a separate entity; a fresh session
// ID is issued on every load.
type SessionMetadata struct {
	SessionID          string `json:"session_id"`
	StartedAt          int64  `json:"started_at"`
	LastActivityAt     int64  `json:"last_activity_at"`
	PersistenceEnabled bool   `json:"persistence_enabled"`
}
