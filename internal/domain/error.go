package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound           = errors.New("entity not found")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrInvalidExecContext = errors.New("invalid executor context")

	// Document extraction errors. Both are per-file conditions: the caller
	// skips the file and keeps going as long as at least one document parses.
	ErrUnsupportedFormat = errors.New("unsupported document format")
	ErrParseFailure      = errors.New("document parse failure")

	// Generation error taxonomy. Authentication aborts immediately,
	// InvalidStructure aborts without retry, the rest consume retry budget.
	ErrAuthentication   = errors.New("generation service authentication failed")
	ErrEmptyResponse    = errors.New("generation service returned an empty response")
	ErrInvalidJSON      = errors.New("generation response is not valid JSON")
	ErrInvalidStructure = errors.New("generation response is missing required structure")
	ErrRetriesExhausted = errors.New("generation retries exhausted")
)
