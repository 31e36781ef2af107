package storage

import "errors"

// Sentinel errors for storage operations.
var (
	// ErrNotFound is returned when a partner does not exist or lies outside
	// the caller's tenant.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when a partner with the given ID, or an API key
	// with the same lookup prefix, already exists.
	ErrConflict = errors.New("already exists")
)
