package storage

import "errors"

// Sentinel errors for storage operations.
var (
	// ErrNotFound is returned when a user or message does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicate is returned when a record with the given unique key
	// already exists.
	ErrDuplicate = errors.New("record already exists")
)
