package database

import "errors"

// Store sentinel errors. Handlers map these onto the HTTP error envelope.
var (
	// ErrNotFound covers unknown ids and cross-case entities alike, so a
	// caller can never distinguish "exists on another case" from "does not
	// exist".
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when a state transition loses the store-level
	// compare-and-swap, e.g. a second check-in on the same instance.
	ErrConflict = errors.New("conflict")
)
