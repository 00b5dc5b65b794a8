// Package apperrors defines the failure taxonomy shared by repositories,
// controllers, and the HTTP boundary. Callers classify failures with
// errors.Is and wrap these sentinels with %w to add detail.
package apperrors

import "errors"

var (
	// ErrUnauthorized indicates no verified owner identity was present on a
	// request that requires one.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNotFound indicates the referenced record does not exist. Revoking a
	// share owned by a different user deliberately maps here as well, so a
	// caller cannot distinguish "missing" from "not yours".
	ErrNotFound = errors.New("not found")

	// ErrValidation indicates the request payload failed validation.
	ErrValidation = errors.New("validation failed")

	// ErrUpstream indicates a dependency (database, cache, catalog, image
	// store) failed. Propagated, never retried internally.
	ErrUpstream = errors.New("upstream failure")
)
