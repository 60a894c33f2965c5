package insight

import "errors"

var (
	// ErrBlockerNotFound indicates the blocker doesn't exist.
	ErrBlockerNotFound = errors.New("blocker not found")
	// ErrInvalidInput indicates malformed input to a logging operation.
	ErrInvalidInput = errors.New("invalid input")
	// ErrInvalidTransition indicates a disallowed blocker status change.
	ErrInvalidTransition = errors.New("invalid blocker transition")
)
