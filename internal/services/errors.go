package services

import (
	"errors"
)

// Sentinel errors shared by all entity services. Handlers map these onto
// HTTP statuses; anything else is an internal error.
var (
	ErrNotFound          = errors.New("not found")
	ErrForbidden         = errors.New("forbidden")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrConflict          = errors.New("conflict")
)

// Page is the list-response envelope: the requested window plus the total
// number of documents matching the same filter, so clients can page reliably.
type Page[T any] struct {
	Items  []T   `json:"items"`
	Total  int64 `json:"total"`
	Limit  int   `json:"limit"`
	Offset int   `json:"offset"`
}
