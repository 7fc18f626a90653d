package domain

import "errors"

// Sentinel errors for the site tools service
var (
	// ErrNotFound indicates the requested document, version or record was not found
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates the resource already exists (e.g., duplicate document id)
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates validation failure on input parameters
	ErrInvalidInput = errors.New("invalid input parameters")

	// ErrVersionConflict indicates a new version does not come after the latest one
	ErrVersionConflict = errors.New("version conflict")

	// ErrUnauthorized indicates a missing or invalid identity
	ErrUnauthorized = errors.New("unauthorized")

	// ErrRateLimited indicates the caller exceeded its submission rate
	ErrRateLimited = errors.New("rate limited")
)
