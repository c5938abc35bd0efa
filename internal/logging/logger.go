// Package logging defines the structured-logging interface used across the
// project and its slog-backed implementation.
package logging

import "context"

// Logger is a context-aware, structured logger.
//
// The variadic args are interpreted as key–value pairs, e.g.:
//
//	log.Info(ctx, "character validated", "character_id", id, "actor", actor)
type Logger interface {
	// Debug logs detail useful while diagnosing a single operation.
	Debug(ctx context.Context, msg string, args ...any)

	// Info logs a completed state change.
	Info(ctx context.Context, msg string, args ...any)

	// Warn logs a refused operation: denied access or a lost race.
	Warn(ctx context.Context, msg string, args ...any)

	// Error logs an infrastructure failure.
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that always includes the given key–value pairs.
	With(args ...any) Logger
}
