// Package log provides the structured logging interface used by SHARP.
//
// The interface is slog-shaped so callers can plug in any backend. The
// production backend wraps zerolog (see NewZerologLogger); tests use
// TestLogger to capture JSON lines.
//
// Example usage:
//
//	logger := log.GetLogger().With(
//	    log.ModelNameKey, "Explainer",
//	    log.SessionIDKey, session.ID(),
//	)
//	logger.Info("Computing influence matrix",
//	    log.OperationKey, log.OperationAll,
//	    log.SamplesKey, 1000,
//	    log.FeaturesKey, 5,
//	)
package log

import (
	"context"
)

// Logger defines a structured logging interface compatible with Go's log/slog.
//
// Fields are passed as alternating key-value pairs. With returns a child
// logger whose fields are included in every subsequent record.
type Logger interface {
	// Debug logs a debug-level message with optional structured fields.
	Debug(msg string, fields ...any)

	// Info logs an info-level message with optional structured fields.
	Info(msg string, fields ...any)

	// Warn logs a warning-level message with optional structured fields.
	Warn(msg string, fields ...any)

	// Error logs an error-level message with optional structured fields.
	// If the first field is an error, it is attached together with its
	// stack trace when one is available.
	//
	//   logger.Error("Influence computation failed",
	//       err,
	//       log.OperationKey, log.OperationIndividual,
	//   )
	Error(msg string, fields ...any)

	// With returns a new Logger with the given fields pre-populated.
	With(fields ...any) Logger

	// Enabled reports whether the logger emits log records at the given level.
	Enabled(ctx context.Context, level Level) bool
}

// Level represents a logging level, compatible with slog.Level.
type Level int

// Standard logging levels, values are compatible with slog.Level.
const (
	LevelDebug Level = -4
	LevelInfo  Level = 0
	LevelWarn  Level = 4
	LevelError Level = 8
)

// String returns the string representation of the log level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel converts a textual level ("debug", "info", "warn", "error")
// into a Level. Unknown values fall back to LevelInfo.
func ParseLevel(level string) Level {
	switch level {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}
