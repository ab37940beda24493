package manager

import "errors"

// Error taxonomy. Callers match with errors.Is; messages carry the detail.
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidState = errors.New("invalid state")
	ErrForbidden    = errors.New("forbidden")
	ErrValidation   = errors.New("validation error")
)
