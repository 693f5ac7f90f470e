package state

import "errors"

// Sentinel errors shared across components so callers can errors.Is against
// them instead of string-matching (grounded on internal/tools's sentinel
// error pattern used across the codebase).
var (
	ErrEmptyAction       = errors.New("state: step decision carries no actions")
	ErrStaleIndex        = errors.New("state: selector map index not available")
	ErrActionNotFound    = errors.New("state: action not registered")
	ErrMissingParam      = errors.New("state: required parameter missing")
	ErrInvalidParam      = errors.New("state: parameter failed validation")
	ErrAspectRatioMismatch = errors.New("state: screenshot and viewport aspect ratios diverge")
)
