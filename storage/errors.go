package storage

import "errors"

// Common storage errors.
var (
	// ErrNotFound is returned when nothing has been persisted yet.
	ErrNotFound = errors.New("not found")
)
