// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import "errors"

// Common sentinels across repo/service layers.
var (
	// ErrNotFound indicates the requested transmission does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidTransition indicates a status change out of a terminal state.
	ErrInvalidTransition = errors.New("invalid transition")

	// ErrInvalidStatus indicates a requested status that is not a terminal one.
	ErrInvalidStatus = errors.New("invalid status")

	// ErrUnauthorized indicates failed authentication/authorization.
	ErrUnauthorized = errors.New("unauthorized")
)
