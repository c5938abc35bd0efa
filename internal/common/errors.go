// Package common defines sentinel errors and constants shared by the
// repositories, the lifecycle services and the transport. Callers should use
// errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Lifecycle errors. ErrorAccessDenied carries no detail: it
	// also covers "already in the requested state" cases so that callers cannot
	// probe for other players' pending requests.
	ErrorAccessDenied = errors.New("access denied")
	ErrorConflict     = errors.New("conflict")
	ErrorInvalidInput = errors.New("invalid input")

	// Infrastructure errors.
	ErrorPersistence      = errors.New("persistence error")
	ErrorStoreUnavailable = errors.New("store unavailable")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)
