package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and provide specific
// information about what is wrong with the configuration.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances in Validate(). This allows callers to use
// errors.Is() for programmatic error handling while still providing
// human-readable messages.
var (
	// ErrNoInput is returned when no security.txt file is given.
	ErrNoInput = errors.New("no input specified: provide a security.txt path or '-' for stdin")

	// ErrInvalidMaxAge is returned when the maximum document lifetime is not
	// at least one day. RFC 9116 recommends less than a year.
	ErrInvalidMaxAge = errors.New("invalid max age: must be at least 1 day")

	// ErrInvalidTimeout is returned when the timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidConcurrency is returned when the number of parallel URL
	// checks is not positive.
	ErrInvalidConcurrency = errors.New("invalid concurrency: must be positive")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified. Only one output format can be used at a time.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrInvalidMaxBodySize is returned when the max body size is negative.
	// Use 0 to fall back to the default limit.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")

	// ErrKeyringRequired is returned when a signing key is selected without
	// a keyring file to find it in.
	ErrKeyringRequired = errors.New("a keyring file is required when a signing key is selected (--keyring)")

	// ErrConflictingTorModes is returned when --tor and --offline are combined.
	ErrConflictingTorModes = errors.New("conflicting options: --tor cannot be used with --offline")
)
