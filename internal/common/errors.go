// Package common defines shared sentinel errors used across server layers.
// Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Auth errors.
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrInvalidToken    = errors.New("invalid token")

	// Request validation errors.
	ErrInvalidRequest = errors.New("invalid request")

	// Authorization errors (authenticated, wrong owner).
	ErrForbidden = errors.New("forbidden")

	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Missing provider credentials or other startup/runtime misconfiguration.
	ErrMisconfigured = errors.New("misconfigured")

	// The external provider rejected or failed the call.
	ErrUpstream = errors.New("upstream error")

	// Generic internal flow control.
	ErrInternal = errors.New("internal error")
)
