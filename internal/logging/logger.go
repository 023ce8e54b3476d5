// Package logging defines the structured-logging interface used across
// securelogin. The production implementation wraps log/slog.
package logging

import "context"

// Logger is a context-aware, structured logger.
//
// The variadic args are interpreted as key–value pairs, e.g.:
//
//	log.Info(ctx, "account unlocked", "id", id)
type Logger interface {
	// Debug logs high-volume diagnostics such as per-attempt audit lines.
	Debug(ctx context.Context, msg string, args ...any)

	// Info logs lifecycle events.
	Info(ctx context.Context, msg string, args ...any)

	// Warn logs recoverable failures (duplicates, bad credentials).
	Warn(ctx context.Context, msg string, args ...any)

	// Error logs unexpected failures with full detail.
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that always includes the given key–value pairs.
	With(args ...any) Logger
}

// Nop discards everything. Handy for tests and optional collaborators.
type Nop struct{}

func (Nop) Debug(context.Context, string, ...any) {}
func (Nop) Info(context.Context, string, ...any)  {}
func (Nop) Warn(context.Context, string, ...any)  {}
func (Nop) Error(context.Context, string, ...any) {}
func (n Nop) With(...any) Logger                  { return n }
