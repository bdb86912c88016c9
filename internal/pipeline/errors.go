package pipeline

import "errors"

var (
	// ErrNoInput is returned by steps that need a document that was never read.
	ErrNoInput = errors.New("no input was read")

	// ErrInputTooLarge is returned when an input exceeds the size limit.
	ErrInputTooLarge = errors.New("input too large")

	// ErrDeclined is returned when the user declines signing.
	ErrDeclined = errors.New("signing declined")

	// ErrNothingToSign is returned when validation produced no document.
	ErrNothingToSign = errors.New("no document to sign")
)
