package logger

import (
	"fmt"
	"strings"
)

// Logger defines the interface for logging operations across walkv.
// All packages use this interface, allowing for flexible logger implementations.
type Logger interface {
	// Debug logs a debug-level message with optional structured fields.
	Debug(msg string, fields ...interface{})

	// Info logs an info-level message with optional structured fields.
	Info(msg string, fields ...interface{})

	// Warn logs a warning-level message with optional structured fields.
	Warn(msg string, fields ...interface{})

	// Error logs an error-level message with the error and optional structured fields.
	Error(msg string, err error, fields ...interface{})
}

// Closeable is an optional interface for loggers that need cleanup.
type Closeable interface {
	// Close gracefully closes the logger, flushing any pending messages.
	Close() error
}

// Level orders log severities. A logger emits messages at or above its level.
type Level uint8

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return "unknown"
	}
}

// ParseLevel maps "debug", "info", "warn"/"warning" or "error" (any case) to a Level.
// An empty string is info.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "", "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, wrapLoggerErr("parse level", ErrInvalidLevel, fmt.Errorf("level %q", s), "")
	}
}

// NoOpLogger is a no-operation logger that discards all messages.
// Used as the default logger for tests and when logging is disabled.
type NoOpLogger struct{}

// Debug is a no-op implementation.
func (NoOpLogger) Debug(string, ...interface{}) {}

// Info is a no-op implementation.
func (NoOpLogger) Info(string, ...interface{}) {}

// Warn is a no-op implementation.
func (NoOpLogger) Warn(string, ...interface{}) {}

// Error is a no-op implementation.
func (NoOpLogger) Error(string, error, ...interface{}) {}

// Verify NoOpLogger implements Logger interface
var _ Logger = NoOpLogger{}
