// Package common defines shared constants and sentinel errors used across
// client and server layers of gophauth. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Input errors, surfaced to the caller and never retried.
	ErrValidation        = errors.New("validation error")
	ErrDuplicateEmail    = errors.New("email already registered")
	ErrDuplicateUsername = errors.New("username already registered")

	// Raised once authentication already succeeded.
	ErrInactiveAccount = errors.New("inactive account")

	// Hashing failed for a reason other than bad input.
	ErrHashing = errors.New("password hashing failed")

	// Token errors. They are told apart only for logging; transports
	// collapse them into ErrorUnauthorized.
	ErrInvalidToken     = errors.New("invalid token")
	ErrInvalidSignature = errors.New("invalid token signature")
	ErrTokenExpired     = errors.New("token expired")
	ErrUnauthenticated  = errors.New("unauthenticated")
)
