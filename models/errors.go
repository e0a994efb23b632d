package models

import "errors"

// Sentinel errors for the service layer. Services wrap these with context
// via fmt.Errorf("...: %w", ...); handlers map them to HTTP status codes
// with errors.Is. Validation and authorization failures are always raised
// before any mutation.
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation failed")
	ErrConflict     = errors.New("conflict")
)
