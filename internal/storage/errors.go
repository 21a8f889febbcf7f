package storage

import "errors"

var (
	// ErrNotFound is returned when a resource is not found.
	ErrNotFound = errors.New("resource not found")

	// ErrDuplicate is returned when attempting to create a resource that already exists.
	ErrDuplicate = errors.New("resource already exists")

	// ErrConflict is returned when a versioned update loses a race with a
	// concurrent writer and no row matches the expected version.
	ErrConflict = errors.New("concurrent modification conflict")
)
