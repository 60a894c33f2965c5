// Package portfolio holds the write-side operations for the business ledger:
// service registration, performance updates (which drive the lifecycle
// engine), transactions, decisions, opportunities, and business snapshots.
package portfolio

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/hyperfocal/ledgermind/internal/domain/lifecycle"
	"github.com/hyperfocal/ledgermind/internal/ledger"
	"github.com/hyperfocal/ledgermind/internal/store"
)

// Defaults supplies the configured lifecycle thresholds applied when a
// registration omits them.
type Defaults struct {
	AutoScale      bool
	MaxDailySpend  float64
	KillThreshold  float64
	ScaleThreshold float64
}

// Service handles portfolio write operations.
type Service struct {
	store    *store.Store
	defaults Defaults
	logger   *slog.Logger
}

// NewService creates a portfolio service backed by the given store.
func NewService(st *store.Store, defaults Defaults, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{store: st, defaults: defaults, logger: logger}
}

// RegisterRequest defines service registration inputs. Nil optionals fall
// back to the configured defaults.
type RegisterRequest struct {
	Name          string
	Type          string
	AutoScale     *bool
	MaxDailySpend *float64
	KillThreshold *float64
}

// RegisterService creates a new managed service in active status.
func (s *Service) RegisterService(_ context.Context, req RegisterRequest) (*ledger.ManagedService, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, fmt.Errorf("%w: service name is required", ErrInvalidInput)
	}

	scaling := ledger.ScalingConfig{
		AutoScale:     s.defaults.AutoScale,
		MaxDailySpend: s.defaults.MaxDailySpend,
		KillThreshold: s.defaults.KillThreshold,
	}
	if req.AutoScale != nil {
		scaling.AutoScale = *req.AutoScale
	}
	if req.MaxDailySpend != nil {
		scaling.MaxDailySpend = *req.MaxDailySpend
	}
	if req.KillThreshold != nil {
		scaling.KillThreshold = *req.KillThreshold
	}

	now := ledger.Now()
	svc := &ledger.ManagedService{
		ID:           uuid.NewString(),
		Name:         req.Name,
		Type:         req.Type,
		Status:       ledger.StatusActive,
		Scaling:      scaling,
		CreatedAt:    now,
		LastUpdateAt: now,
	}

	err := s.store.Mutate(func(st *ledger.State) error {
		st.Services[svc.ID] = svc
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("service registered", "service_id", svc.ID, "name", svc.Name,
		"auto_scale", scaling.AutoScale, "kill_threshold", scaling.KillThreshold)
	return cloneService(svc), nil
}

// PerformanceUpdate carries a performance snapshot reported by a managed
// service collaborator.
type PerformanceUpdate struct {
	ServiceID     string
	DailyRevenue  float64
	DailyCosts    float64
	CustomerCount int
	Metrics       map[string]float64
}

// UpdateResult reports the applied update plus any lifecycle transition it
// triggered, so automatic side effects are never hidden from the caller.
type UpdateResult struct {
	Service     *ledger.ManagedService
	DailyProfit float64
	Transition  *lifecycle.Transition
}

// UpdatePerformance applies a performance snapshot to a service and runs the
// lifecycle engine synchronously over the new counters.
func (s *Service) UpdatePerformance(_ context.Context, req PerformanceUpdate) (*UpdateResult, error) {
	var result UpdateResult
	err := s.store.Mutate(func(st *ledger.State) error {
		svc, ok := st.Services[req.ServiceID]
		if !ok {
			return fmt.Errorf("%w: %s", ErrServiceNotFound, req.ServiceID)
		}

		svc.DailyRevenue = req.DailyRevenue
		svc.DailyCosts = req.DailyCosts
		svc.CustomerCount = req.CustomerCount
		if req.Metrics != nil {
			svc.PerformanceMetrics = req.Metrics
		}
		svc.LastUpdateAt = ledger.Now()

		if tr := lifecycle.Evaluate(svc, s.defaults.ScaleThreshold); tr != nil {
			svc.Status = tr.To
			st.Decisions = append(st.Decisions, tr.Decision)
			result.Transition = tr
		}

		result.Service = cloneService(svc)
		result.DailyProfit = svc.DailyRevenue - svc.DailyCosts
		return nil
	})
	if err != nil {
		return nil, err
	}

	if tr := result.Transition; tr != nil {
		s.logger.Info("lifecycle transition", "service_id", req.ServiceID,
			"from", tr.From, "to", tr.To, "decision_type", tr.Decision.Type,
			"revenue_impact", tr.Decision.RevenueImpact)
	}
	return &result, nil
}

// TransactionRequest defines a monetary event supplied by the payment
// collaborator.
type TransactionRequest struct {
	ServiceID     string
	Amount        float64
	Currency      string
	CustomerID    string
	ExternalTxnID string
	Metadata      map[string]string
}

// RecordTransaction appends an immutable transaction, recomputes the owning
// service's daily revenue from scratch, and upserts the customer's spend.
func (s *Service) RecordTransaction(_ context.Context, req TransactionRequest) (*ledger.Transaction, error) {
	if req.Amount == 0 {
		return nil, fmt.Errorf("%w: transaction amount must be non-zero", ErrInvalidInput)
	}
	currency := req.Currency
	if currency == "" {
		currency = "USD"
	}

	txn := &ledger.Transaction{
		ID:            uuid.NewString(),
		ServiceID:     req.ServiceID,
		Amount:        req.Amount,
		Currency:      currency,
		CustomerID:    req.CustomerID,
		ExternalTxnID: req.ExternalTxnID,
		Metadata:      req.Metadata,
		CreatedAt:     ledger.Now(),
	}

	err := s.store.Mutate(func(st *ledger.State) error {
		svc, ok := st.Services[req.ServiceID]
		if !ok {
			return fmt.Errorf("%w: %s", ErrServiceNotFound, req.ServiceID)
		}

		st.Transactions = append(st.Transactions, txn)
		// Recomputed, not incremented, so the counter cannot drift.
		svc.DailyRevenue = st.DailyRevenue(svc.ID, txn.CreatedAt)
		svc.TotalRevenue += txn.Amount

		if req.CustomerID != "" {
			cust, ok := st.Customers[req.CustomerID]
			if !ok {
				cust = &ledger.Customer{ID: req.CustomerID, FirstSeenAt: txn.CreatedAt}
				st.Customers[req.CustomerID] = cust
			}
			cust.TotalSpend += txn.Amount
			cust.LastSeenAt = txn.CreatedAt
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return txn, nil
}

// DecisionRequest defines manual decision-logging inputs.
type DecisionRequest struct {
	Type            string
	Context         string
	Outcome         ledger.DecisionOutcome
	ExpectedRevenue float64
	Risk            string
	Confidence      float64
}

// LogDecision appends a decision record.
func (s *Service) LogDecision(_ context.Context, req DecisionRequest) (*ledger.Decision, error) {
	if strings.TrimSpace(req.Type) == "" {
		return nil, fmt.Errorf("%w: decision type is required", ErrInvalidInput)
	}
	if req.Confidence < 0 || req.Confidence > 1 {
		return nil, fmt.Errorf("%w: confidence must be within [0,1]", ErrInvalidInput)
	}
	outcome := req.Outcome
	if outcome == "" {
		outcome = ledger.OutcomePending
	}
	if !validOutcome(outcome) {
		return nil, fmt.Errorf("%w: unknown outcome %q", ErrInvalidInput, outcome)
	}
	risk := req.Risk
	if risk == "" {
		risk = "medium"
	}

	dec := &ledger.Decision{
		ID:            uuid.NewString(),
		Type:          req.Type,
		Context:       req.Context,
		Outcome:       outcome,
		RevenueImpact: req.ExpectedRevenue,
		Risk:          risk,
		Confidence:    req.Confidence,
		CreatedAt:     ledger.Now(),
	}

	err := s.store.Mutate(func(st *ledger.State) error {
		st.Decisions = append(st.Decisions, dec)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dec, nil
}

// ResolveDecision updates a pending decision's outcome.
func (s *Service) ResolveDecision(_ context.Context, id string, outcome ledger.DecisionOutcome) (*ledger.Decision, error) {
	if !validOutcome(outcome) {
		return nil, fmt.Errorf("%w: unknown outcome %q", ErrInvalidInput, outcome)
	}
	var resolved *ledger.Decision
	err := s.store.Mutate(func(st *ledger.State) error {
		dec := st.FindDecision(id)
		if dec == nil {
			return fmt.Errorf("%w: %s", ErrDecisionNotFound, id)
		}
		dec.Outcome = outcome
		if outcome != ledger.OutcomePending {
			dec.ResolvedAt = ledger.Now()
		}
		copied := *dec
		resolved = &copied
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resolved, nil
}

// ListDecisions returns decisions, newest first, optionally pending only.
func (s *Service) ListDecisions(_ context.Context, pendingOnly bool) []*ledger.Decision {
	var out []*ledger.Decision
	s.store.View(func(st *ledger.State) {
		for i := len(st.Decisions) - 1; i >= 0; i-- {
			dec := st.Decisions[i]
			if pendingOnly && dec.Outcome != ledger.OutcomePending {
				continue
			}
			copied := *dec
			out = append(out, &copied)
		}
	})
	return out
}

// OpportunityRequest defines market-opportunity discovery inputs.
type OpportunityRequest struct {
	Description     string
	MarketSize      *float64
	Competition     *float64
	ProfitPotential *float64
	EffortDays      *float64
}

// AddOpportunity records a newly discovered market opportunity.
func (s *Service) AddOpportunity(_ context.Context, req OpportunityRequest) (*ledger.MarketOpportunity, error) {
	if strings.TrimSpace(req.Description) == "" {
		return nil, fmt.Errorf("%w: opportunity description is required", ErrInvalidInput)
	}
	opp := &ledger.MarketOpportunity{
		ID:              uuid.NewString(),
		Description:     req.Description,
		MarketSize:      req.MarketSize,
		Competition:     req.Competition,
		ProfitPotential: req.ProfitPotential,
		EffortDays:      req.EffortDays,
		Status:          ledger.OpportunityDiscovered,
		DiscoveredAt:    ledger.Now(),
	}
	err := s.store.Mutate(func(st *ledger.State) error {
		st.Opportunities = append(st.Opportunities, opp)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return opp, nil
}

// opportunityStage orders the pipeline; failed sits outside it and is always
// reachable from a non-terminal stage.
var opportunityStage = map[ledger.OpportunityStatus]int{
	ledger.OpportunityDiscovered:   0,
	ledger.OpportunityAnalyzing:    1,
	ledger.OpportunityImplementing: 2,
	ledger.OpportunityDeployed:     3,
}

// AdvanceOpportunity moves an opportunity forward in the pipeline. Backward
// moves are rejected; deployed and failed are terminal.
func (s *Service) AdvanceOpportunity(_ context.Context, id string, status ledger.OpportunityStatus) (*ledger.MarketOpportunity, error) {
	_, forward := opportunityStage[status]
	if !forward && status != ledger.OpportunityFailed {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, status)
	}
	var updated *ledger.MarketOpportunity
	err := s.store.Mutate(func(st *ledger.State) error {
		opp := st.FindOpportunity(id)
		if opp == nil {
			return fmt.Errorf("%w: %s", ErrOpportunityNotFound, id)
		}
		if opp.Status == ledger.OpportunityFailed || opp.Status == ledger.OpportunityDeployed {
			return fmt.Errorf("%w: %s is terminal", ErrInvalidTransition, opp.Status)
		}
		if status != ledger.OpportunityFailed && opportunityStage[status] <= opportunityStage[opp.Status] {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, opp.Status, status)
		}
		opp.Status = status
		copied := *opp
		updated = &copied
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// ListOpportunities returns a copy of all opportunities, unranked. Ranking
// is an analytics concern.
func (s *Service) ListOpportunities(_ context.Context) []*ledger.MarketOpportunity {
	var out []*ledger.MarketOpportunity
	s.store.View(func(st *ledger.State) {
		for _, opp := range st.Opportunities {
			copied := *opp
			out = append(out, &copied)
		}
	})
	return out
}

// GetService returns a copy of one managed service.
func (s *Service) GetService(_ context.Context, id string) (*ledger.ManagedService, error) {
	var svc *ledger.ManagedService
	s.store.View(func(st *ledger.State) {
		if found, ok := st.Services[id]; ok {
			svc = cloneService(found)
		}
	})
	if svc == nil {
		return nil, fmt.Errorf("%w: %s", ErrServiceNotFound, id)
	}
	return svc, nil
}

// ListServices returns copies of all managed services.
func (s *Service) ListServices(_ context.Context) []*ledger.ManagedService {
	var out []*ledger.ManagedService
	s.store.View(func(st *ledger.State) {
		for _, svc := range st.Services {
			out = append(out, cloneService(svc))
		}
	})
	return out
}

// ListCustomers returns copies of all customers.
func (s *Service) ListCustomers(_ context.Context) []*ledger.Customer {
	var out []*ledger.Customer
	s.store.View(func(st *ledger.State) {
		for _, cust := range st.Customers {
			copied := *cust
			out = append(out, &copied)
		}
	})
	return out
}

// SaveSnapshot creates an immutable point-in-time summary of the portfolio.
func (s *Service) SaveSnapshot(_ context.Context, sessionNote string, priorities []string) (*ledger.BusinessSnapshot, error) {
	snap := &ledger.BusinessSnapshot{
		ID:          uuid.NewString(),
		SessionNote: sessionNote,
		Priorities:  priorities,
		CreatedAt:   ledger.Now(),
	}
	err := s.store.Mutate(func(st *ledger.State) error {
		for _, svc := range st.Services {
			if svc.Status == ledger.StatusActive || svc.Status == ledger.StatusScaling {
				snap.TotalDailyRevenue += svc.DailyRevenue
				snap.TotalDailyCosts += svc.DailyCosts
				snap.ActiveServices++
			}
		}
		for _, dec := range st.Decisions {
			if dec.Outcome == ledger.OutcomePending {
				snap.PendingDecisionIDs = append(snap.PendingDecisionIDs, dec.ID)
			}
		}
		st.Snapshots = append(st.Snapshots, snap)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("business snapshot saved", "snapshot_id", snap.ID,
		"active_services", snap.ActiveServices)
	return snap, nil
}

// LatestSnapshot returns the most recent business snapshot, or nil.
func (s *Service) LatestSnapshot(_ context.Context) *ledger.BusinessSnapshot {
	var snap *ledger.BusinessSnapshot
	s.store.View(func(st *ledger.State) {
		if latest := st.LatestSnapshot(); latest != nil {
			copied := *latest
			snap = &copied
		}
	})
	return snap
}

func validOutcome(o ledger.DecisionOutcome) bool {
	switch o {
	case ledger.OutcomeApproved, ledger.OutcomeDenied, ledger.OutcomePending, ledger.OutcomeAutoApproved:
		return true
	}
	return false
}

func cloneService(svc *ledger.ManagedService) *ledger.ManagedService {
	copied := *svc
	if svc.PerformanceMetrics != nil {
		copied.PerformanceMetrics = make(map[string]float64, len(svc.PerformanceMetrics))
		for k, v := range svc.PerformanceMetrics {
			copied.PerformanceMetrics[k] = v
		}
	}
	return &copied
}
