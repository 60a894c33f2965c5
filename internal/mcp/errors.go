package mcp

import (
	"errors"
	"fmt"

	"github.com/hyperfocal/ledgermind/internal/domain/insight"
	"github.com/hyperfocal/ledgermind/internal/domain/portfolio"
)

// APIError represents an MCP error response.
type APIError struct {
	Code         string `json:"code"`
	Message      string `json:"message"`
	RecoveryHint string `json:"recovery_hint,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// MapError maps domain errors to MCP error codes. Unknown errors pass
// through unchanged.
func MapError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, portfolio.ErrServiceNotFound):
		return &APIError{Code: "SERVICE_NOT_FOUND", Message: err.Error(), RecoveryHint: "Check the service ID or call list_services"}
	case errors.Is(err, portfolio.ErrDecisionNotFound):
		return &APIError{Code: "DECISION_NOT_FOUND", Message: err.Error(), RecoveryHint: "Call list_decisions to find valid IDs"}
	case errors.Is(err, portfolio.ErrOpportunityNotFound):
		return &APIError{Code: "OPPORTUNITY_NOT_FOUND", Message: err.Error(), RecoveryHint: "Call list_opportunities to find valid IDs"}
	case errors.Is(err, insight.ErrBlockerNotFound):
		return &APIError{Code: "BLOCKER_NOT_FOUND", Message: err.Error(), RecoveryHint: "Call get_session_context to see open blockers"}
	case errors.Is(err, portfolio.ErrInvalidTransition), errors.Is(err, insight.ErrInvalidTransition):
		return &APIError{Code: "INVALID_TRANSITION", Message: err.Error(), RecoveryHint: "Terminal states cannot be changed"}
	case errors.Is(err, portfolio.ErrInvalidInput), errors.Is(err, insight.ErrInvalidInput):
		return &APIError{Code: "VALIDATION_ERROR", Message: err.Error()}
	default:
		return err
	}
}
