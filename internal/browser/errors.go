package browser

import "errors"

var (
	ErrNotStarted      = errors.New("browser: session not started")
	ErrElementNotFound = errors.New("browser: element not found for index")
	ErrAspectMismatch  = errors.New("browser: screenshot and viewport aspect ratios diverge")
)
