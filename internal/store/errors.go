package store

import "errors"

var (
	// ErrRunNotFound is returned when no stored run matches an ID.
	ErrRunNotFound = errors.New("run not found")

	// ErrAmbiguousID is returned when an ID prefix matches several runs.
	ErrAmbiguousID = errors.New("run ID prefix is ambiguous")
)
