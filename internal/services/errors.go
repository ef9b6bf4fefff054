package services

import "errors"

// Service-level sentinel errors, mapped to API errors at the transport
// boundary.
var (
	// ErrSessionNotFound is returned when no analysis session exists
	// for the given identifier.
	ErrSessionNotFound = errors.New("analysis session not found")

	// ErrNoFileLoaded is returned when a session exists but has no
	// dataset yet.
	ErrNoFileLoaded = errors.New("no file loaded for session")
)
