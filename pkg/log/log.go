// Package log provides structured logging for the beacon node and
// validator client. It wraps Go's log/slog with per-module child
// loggers and the six-level scheme the CLI's --debug-level flag
// exposes (trace, debug, info, warn, error, crit).
package log

import (
	"context"
	"errors"
	"log/slog"
	"os"
)

// slog only defines Debug/Info/Warn/Error; trace and crit are
// expressed as levels below/above those via slog's integer level
// space, matching slog's own documented extension pattern.
const (
	LevelTrace = slog.LevelDebug - 4
	LevelCrit  = slog.LevelError + 4
)

// ErrUnknownLevel is returned by ParseLevel for a name outside the
// CLI's --debug-level enum.
var ErrUnknownLevel = errors.New("log: unknown level")

// ParseLevel maps a --debug-level flag value to its slog.Level.
func ParseLevel(name string) (slog.Level, error) {
	switch name {
	case "trace":
		return LevelTrace, nil
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	case "crit":
		return LevelCrit, nil
	default:
		return 0, ErrUnknownLevel
	}
}

// Logger wraps slog.Logger with per-module context.
type Logger struct {
	inner *slog.Logger
}

// defaultLogger is the process-wide logger used by the package-level
// convenience functions.
var defaultLogger *Logger

func init() {
	defaultLogger = New(slog.LevelInfo)
}

// New creates a Logger that writes JSON to stderr at the given level.
func New(level slog.Level) *Logger {
	h := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{inner: slog.New(h)}
}

// NewWithHandler creates a Logger backed by the supplied slog.Handler.
// This is useful for testing or for writing to a custom destination.
func NewWithHandler(h slog.Handler) *Logger {
	return &Logger{inner: slog.New(h)}
}

// SetDefault replaces the package-level default logger.
func SetDefault(l *Logger) {
	if l != nil {
		defaultLogger = l
	}
}

// Default returns the current package-level default logger.
func Default() *Logger {
	return defaultLogger
}

// Module returns a child logger with an additional "module" attribute.
// This is the primary way subsystems (shuffle, committee, duties,
// keystore, ...) obtain their own contextual logger.
func (l *Logger) Module(name string) *Logger {
	return &Logger{inner: l.inner.With("module", name)}
}

// With returns a child logger with additional key-value context.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{inner: l.inner.With(args...)}
}

// Trace logs at LevelTrace.
func (l *Logger) Trace(msg string, args ...any) {
	l.inner.Log(context.Background(), LevelTrace, msg, args...)
}

// Debug logs at LevelDebug.
func (l *Logger) Debug(msg string, args ...any) { l.inner.Debug(msg, args...) }

// Info logs at LevelInfo.
func (l *Logger) Info(msg string, args ...any) { l.inner.Info(msg, args...) }

// Warn logs at LevelWarn.
func (l *Logger) Warn(msg string, args ...any) { l.inner.Warn(msg, args...) }

// Error logs at LevelError.
func (l *Logger) Error(msg string, args ...any) { l.inner.Error(msg, args...) }

// Crit logs at LevelCrit. Per §7's CLI error policy, a crit record is
// the single log line a failing CLI invocation emits before a
// non-zero exit; it does not imply the process exits on its own.
func (l *Logger) Crit(msg string, args ...any) {
	l.inner.Log(context.Background(), LevelCrit, msg, args...)
}

// ---------------------------------------------------------------------------
// Package-level convenience functions -- delegate to defaultLogger.
// ---------------------------------------------------------------------------

// Trace logs at LevelTrace using the default logger.
func Trace(msg string, args ...any) { defaultLogger.Trace(msg, args...) }

// Debug logs at LevelDebug using the default logger.
func Debug(msg string, args ...any) { defaultLogger.Debug(msg, args...) }

// Info logs at LevelInfo using the default logger.
func Info(msg string, args ...any) { defaultLogger.Info(msg, args...) }

// Warn logs at LevelWarn using the default logger.
func Warn(msg string, args ...any) { defaultLogger.Warn(msg, args...) }

// Error logs at LevelError using the default logger.
func Error(msg string, args ...any) { defaultLogger.Error(msg, args...) }

// Crit logs at LevelCrit using the default logger.
func Crit(msg string, args ...any) { defaultLogger.Crit(msg, args...) }
