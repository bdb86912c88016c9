package document

import "errors"

var (
	// ErrMissingContact is returned when no Contact field survives validation.
	ErrMissingContact = errors.New("no valid Contact field")

	// ErrInvalidMaxAge is returned for a non-positive maximum lifetime.
	ErrInvalidMaxAge = errors.New("maximum age must be at least one day")
)
