package actions

import "errors"

var (
	ErrActionAlreadyRegistered = errors.New("actions: already registered")
	ErrActionNotFound          = errors.New("actions: not found")
	ErrMissingRequiredParam    = errors.New("actions: missing required parameter")
)
