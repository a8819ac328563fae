package models

import "errors"

// Error taxonomy shared by store, services and handlers. Services wrap
// these with context via fmt.Errorf("...: %w", err); handlers map them
// to HTTP statuses with errors.Is.
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrValidation   = errors.New("validation failed")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
)
