package dictionary

import "errors"

var (
	// ErrNotFound is returned when a mutation references a dictionary or entry that does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when creating an entry whose key already exists.
	ErrConflict = errors.New("already exists")
	// ErrValidation is returned for entries that would break the dictionary invariants.
	ErrValidation = errors.New("invalid entry")
)
