package portfolio

import "errors"

var (
	// ErrServiceNotFound indicates the managed service doesn't exist.
	ErrServiceNotFound = errors.New("service not found")
	// ErrDecisionNotFound indicates the decision doesn't exist.
	ErrDecisionNotFound = errors.New("decision not found")
	// ErrOpportunityNotFound indicates the opportunity doesn't exist.
	ErrOpportunityNotFound = errors.New("opportunity not found")
	// ErrInvalidInput indicates malformed or out-of-range input.
	ErrInvalidInput = errors.New("invalid input")
	// ErrInvalidTransition indicates a backward or terminal-state transition.
	ErrInvalidTransition = errors.New("invalid status transition")
)
