package insight

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/hyperfocal/ledgermind/internal/domain/portfolio"
	"github.com/hyperfocal/ledgermind/internal/ledger"
	"github.com/hyperfocal/ledgermind/internal/store"
)

// DecisionLogger is the slice of the portfolio service the feedback loop
// re-enters when extraction surfaces decision terms.
type DecisionLogger interface {
	LogDecision(ctx context.Context, req portfolio.DecisionRequest) (*ledger.Decision, error)
}

// Service handles interaction logging, auxiliary records, and the session
// context projection.
type Service struct {
	store     *store.Store
	decisions DecisionLogger
	logger    *slog.Logger
}

// NewService creates an insight service backed by the given store.
func NewService(st *store.Store, decisions DecisionLogger, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{store: st, decisions: decisions, logger: logger}
}

// InteractionResult reports the stored interaction and every auxiliary
// record the feedback loop materialized, so side effects are visible to the
// caller.
type InteractionResult struct {
	Record    *ledger.InteractionRecord
	Decisions []*ledger.Decision
	Blockers  []*ledger.Blocker
}

// LogInteraction stores one request/response exchange with heuristic
// classification attached, then re-enters the decision and blocker logging
// paths for every matched decision/blocker term. Unstructured text becomes
// structured entities without a second manual call.
func (s *Service) LogInteraction(ctx context.Context, userMessage, response string) (*InteractionResult, error) {
	if strings.TrimSpace(userMessage) == "" && strings.TrimSpace(response) == "" {
		return nil, fmt.Errorf("%w: interaction text is empty", ErrInvalidInput)
	}

	extracted := Extract(userMessage, response)
	rec := &ledger.InteractionRecord{
		ID:          uuid.NewString(),
		SessionID:   s.store.SessionID(),
		UserMessage: userMessage,
		Response:    response,
		ContextType: extracted.Category,
		Extracted:   extracted.Extracted,
		Importance:  extracted.Importance,
		CreatedAt:   ledger.Now(),
	}

	err := s.store.Mutate(func(st *ledger.State) error {
		st.Interactions = append(st.Interactions, rec)
		return nil
	})
	if err != nil {
		return nil, err
	}

	result := &InteractionResult{Record: rec}
	for _, term := range extracted.Extracted.Decisions {
		dec, err := s.decisions.LogDecision(ctx, portfolio.DecisionRequest{
			Type:       "extracted_from_conversation",
			Context:    fmt.Sprintf("keyword %q matched in interaction %s", term, rec.ID),
			Outcome:    ledger.OutcomePending,
			Risk:       "medium",
			Confidence: 0.5,
		})
		if err != nil {
			return nil, fmt.Errorf("materializing extracted decision: %w", err)
		}
		result.Decisions = append(result.Decisions, dec)
	}
	for _, term := range extracted.Extracted.Blockers {
		blocker, err := s.LogBlocker(ctx, BlockerRequest{
			Description: fmt.Sprintf("keyword %q matched in interaction %s", term, rec.ID),
			Severity:    "medium",
		})
		if err != nil {
			return nil, fmt.Errorf("materializing extracted blocker: %w", err)
		}
		result.Blockers = append(result.Blockers, blocker)
	}

	s.logger.Debug("interaction logged", "interaction_id", rec.ID,
		"context_type", rec.ContextType, "importance", rec.Importance,
		"decisions", len(result.Decisions), "blockers", len(result.Blockers))
	return result, nil
}

// BlockerRequest defines blocker logging inputs.
type BlockerRequest struct {
	Description string
	Severity    string
	NextSteps   string
}

// LogBlocker records a new blocker in identified status.
func (s *Service) LogBlocker(_ context.Context, req BlockerRequest) (*ledger.Blocker, error) {
	if strings.TrimSpace(req.Description) == "" {
		return nil, fmt.Errorf("%w: blocker description is required", ErrInvalidInput)
	}
	severity := req.Severity
	if severity == "" {
		severity = "medium"
	}
	blocker := &ledger.Blocker{
		ID:          uuid.NewString(),
		Description: req.Description,
		Severity:    severity,
		Status:      ledger.BlockerIdentified,
		NextSteps:   req.NextSteps,
		CreatedAt:   ledger.Now(),
	}
	err := s.store.Mutate(func(st *ledger.State) error {
		st.Blockers = append(st.Blockers, blocker)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return blocker, nil
}

// UpdateBlockerStatus advances a blocker. resolved and escalated are
// terminal; no transition may revert them.
func (s *Service) UpdateBlockerStatus(_ context.Context, id string, status ledger.BlockerStatus) (*ledger.Blocker, error) {
	switch status {
	case ledger.BlockerInvestigating, ledger.BlockerResolved, ledger.BlockerEscalated:
	default:
		return nil, fmt.Errorf("%w: cannot move a blocker to %q", ErrInvalidTransition, status)
	}

	var updated *ledger.Blocker
	err := s.store.Mutate(func(st *ledger.State) error {
		blocker := st.FindBlocker(id)
		if blocker == nil {
			return fmt.Errorf("%w: %s", ErrBlockerNotFound, id)
		}
		if blocker.Status == ledger.BlockerResolved || blocker.Status == ledger.BlockerEscalated {
			return fmt.Errorf("%w: %s is terminal", ErrInvalidTransition, blocker.Status)
		}
		blocker.Status = status
		if status == ledger.BlockerResolved || status == ledger.BlockerEscalated {
			blocker.ResolvedAt = ledger.Now()
		}
		copied := *blocker
		updated = &copied
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// LogDiscovery records a technical discovery.
func (s *Service) LogDiscovery(_ context.Context, discoveryType, description string) (*ledger.TechnicalDiscovery, error) {
	if strings.TrimSpace(description) == "" {
		return nil, fmt.Errorf("%w: discovery description is required", ErrInvalidInput)
	}
	if discoveryType == "" {
		discoveryType = "general"
	}
	disc := &ledger.TechnicalDiscovery{
		ID:          uuid.NewString(),
		Type:        discoveryType,
		Description: description,
		CreatedAt:   ledger.Now(),
	}
	err := s.store.Mutate(func(st *ledger.State) error {
		st.Discoveries = append(st.Discoveries, disc)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return disc, nil
}

// LogMilestone records a progress milestone.
func (s *Service) LogMilestone(_ context.Context, description string) (*ledger.ProgressMilestone, error) {
	if strings.TrimSpace(description) == "" {
		return nil, fmt.Errorf("%w: milestone description is required", ErrInvalidInput)
	}
	milestone := &ledger.ProgressMilestone{
		ID:          uuid.NewString(),
		Description: description,
		CreatedAt:   ledger.Now(),
	}
	err := s.store.Mutate(func(st *ledger.State) error {
		st.Milestones = append(st.Milestones, milestone)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return milestone, nil
}

const (
	defaultMaxInteractions = 10
	recentDiscoveries      = 5
	recentMilestones       = 3
)

// ContextRequest selects what the session context projection includes.
type ContextRequest struct {
	MaxInteractions    int
	IncludeDiscoveries bool
	IncludeBlockers    bool
	IncludeMilestones  bool
}

// ContextSnapshot is a bounded, read-only projection of recent records for
// session handoff. Sections are always present; empty collections yield
// empty sections rather than missing ones.
type ContextSnapshot struct {
	Session      ledger.SessionMetadata      `json:"session"`
	Interactions []ledger.InteractionRecord  `json:"recent_interactions"`
	Discoveries  []ledger.TechnicalDiscovery `json:"recent_discoveries"`
	OpenBlockers []ledger.Blocker            `json:"open_blockers"`
	Milestones   []ledger.ProgressMilestone  `json:"recent_milestones"`
}

// SessionContext assembles the handoff snapshot. Interactions are limited to
// the current session's most recent MaxInteractions, oldest first within
// that window. The projection is never persisted.
func (s *Service) SessionContext(_ context.Context, req ContextRequest) ContextSnapshot {
	maxInteractions := req.MaxInteractions
	if maxInteractions <= 0 {
		maxInteractions = defaultMaxInteractions
	}

	snapshot := ContextSnapshot{
		Interactions: []ledger.InteractionRecord{},
		Discoveries:  []ledger.TechnicalDiscovery{},
		OpenBlockers: []ledger.Blocker{},
		Milestones:   []ledger.ProgressMilestone{},
	}

	s.store.View(func(st *ledger.State) {
		snapshot.Session = st.Session

		var sessionInteractions []*ledger.InteractionRecord
		for _, rec := range st.Interactions {
			if rec.SessionID == st.Session.SessionID {
				sessionInteractions = append(sessionInteractions, rec)
			}
		}
		if len(sessionInteractions) > maxInteractions {
			sessionInteractions = sessionInteractions[len(sessionInteractions)-maxInteractions:]
		}
		for _, rec := range sessionInteractions {
			snapshot.Interactions = append(snapshot.Interactions, *rec)
		}

		if req.IncludeDiscoveries {
			start := len(st.Discoveries) - recentDiscoveries
			if start < 0 {
				start = 0
			}
			for _, disc := range st.Discoveries[start:] {
				snapshot.Discoveries = append(snapshot.Discoveries, *disc)
			}
		}
		if req.IncludeBlockers {
			for _, blocker := range st.Blockers {
				if blocker.Status != ledger.BlockerResolved {
					snapshot.OpenBlockers = append(snapshot.OpenBlockers, *blocker)
				}
			}
		}
		if req.IncludeMilestones {
			start := len(st.Milestones) - recentMilestones
			if start < 0 {
				start = 0
			}
			for _, milestone := range st.Milestones[start:] {
				snapshot.Milestones = append(snapshot.Milestones, *milestone)
			}
		}
	})
	return snapshot
}
