// Package logging is the logging interface waldb's recovery and facade
// code actually drive: an Info line for ordinary lifecycle events (open,
// recover) and a Warn line for the one anomaly this store tolerates
// rather than fails on (a torn log tail). There is no Error, Debug, or
// Fatal level here — every failure waldb can produce is already returned
// to the caller as an error value, and a single-process library with no
// background goroutines has no asynchronous fault to report through a
// separate Fatal path the way a multi-threaded compaction loop would.
//
// Log format: YYYY/MM/DD HH:MM:SS LEVEL [component] message
//
// Example: 2026/07/31 18:45:13 INFO [db] opened /tmp/db.log with 0 recovered keys
//
// Component namespace prefixes are used for filtering:
//   - [wal]      — log writer/reader operations
//   - [recovery] — WAL replay at Open
//   - [db]       — general database operations
package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"reflect"
)

// Level gates which of the two lines waldb emits a logger actually writes.
type Level int

const (
	// LevelWarn suppresses Infof, keeping only the torn-tail warning.
	LevelWarn Level = iota
	// LevelInfo logs both Infof and Warnf.
	LevelInfo
)

// String returns the string representation of the level.
func (l Level) String() string {
	switch l {
	case LevelWarn:
		return "WARN"
	case LevelInfo:
		return "INFO"
	default:
		return "UNKNOWN"
	}
}

// Logger receives the two kinds of line waldb emits. Callers may wrap
// their own structured logger (slog, zap) by implementing it.
//
// Concurrency: DefaultLogger and Discard are safe for concurrent use, but
// waldb itself is single-threaded — a user-provided Logger only needs to
// be as safe as the caller's own use of the database.
type Logger interface {
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
}

// DefaultLogger writes log.Logger-formatted lines to an io.Writer, gated
// by Level. Level is read-only after construction — create a new logger
// to change it.
type DefaultLogger struct {
	logger *log.Logger
	level  Level
}

// NewDefaultLogger creates a new default logger with the specified level,
// writing to stderr.
func NewDefaultLogger(level Level) *DefaultLogger {
	return &DefaultLogger{
		logger: log.New(os.Stderr, "", log.LstdFlags),
		level:  level,
	}
}

// NewLogger creates a new logger with the specified output and level.
func NewLogger(w io.Writer, level Level) *DefaultLogger {
	return &DefaultLogger{
		logger: log.New(w, "", log.LstdFlags),
		level:  level,
	}
}

// Level returns the logging level.
func (l *DefaultLogger) Level() Level {
	return l.level
}

// Warnf logs a formatted warning message. Warnings are always logged
// regardless of level.
func (l *DefaultLogger) Warnf(format string, args ...any) {
	_ = l.logger.Output(2, "WARN "+fmt.Sprintf(format, args...))
}

// Infof logs a formatted informational message.
func (l *DefaultLogger) Infof(format string, args ...any) {
	if l.level >= LevelInfo {
		_ = l.logger.Output(2, "INFO "+fmt.Sprintf(format, args...))
	}
}

// Namespace prefixes for log messages.
const (
	// NSWAL is the namespace for log writer/reader operations.
	NSWAL = "[wal] "
	// NSRecovery is the namespace for WAL replay at Open.
	NSRecovery = "[recovery] "
	// NSDB is the namespace for general database operations.
	NSDB = "[db] "
)

// IsNil returns true if the logger is nil or a typed-nil.
// A typed-nil occurs when a nil pointer is assigned to an interface:
//
//	var l *MyLogger = nil
//	opts.Logger = l  // Interface is not nil, but underlying pointer is
//
// Calling methods on a typed-nil panics, so this function detects both cases.
func IsNil(l Logger) bool {
	if l == nil {
		return true
	}
	v := reflect.ValueOf(l)
	return v.Kind() == reflect.Ptr && v.IsNil()
}

// OrDefault returns the provided logger if it is valid (non-nil and not
// typed-nil), otherwise returns a default WARN-level logger. This ensures
// db.logger is never nil after Open().
func OrDefault(l Logger) Logger {
	if IsNil(l) {
		return NewDefaultLogger(LevelWarn)
	}
	return l
}
