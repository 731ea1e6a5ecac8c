package domain

import "errors"

var (
	// ErrNotFound is returned when a record does not exist in storage.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate signals a unique-constraint violation reported by storage.
	ErrDuplicate = errors.New("duplicate key")
	// ErrConflict is returned when a source name or url is already taken.
	ErrConflict = errors.New("conflict")
	// ErrInvalid marks input that failed validation.
	ErrInvalid = errors.New("invalid input")
)
