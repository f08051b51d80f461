// Package logging wraps logr.Logger with the five severity channels the
// core's error design names: debug, very_verbose, verbose, err, and error.
package logging

import (
	"github.com/go-logr/logr"
)

// Verbosity levels, ascending. Passed to logr.Logger.V(); a sink's
// minimum verbosity filters out anything above it.
const (
	LevelVerbose     = 0
	LevelVeryVerbose = 1
	LevelDebug       = 2
)

// NewLogger wraps an existing logr.Logger. A zero-value sink discards
// everything, matching logr.Discard().
func NewLogger(log logr.Logger) *Logger {
	if log.GetSink() == nil {
		log = logr.Discard()
	}
	return &Logger{log: log}
}

// DefaultLogger discards everything; callers opt into output with
// NewLogger(logr.New(...)) or NewSimpleLogger.
func DefaultLogger() *Logger {
	return &Logger{log: logr.Discard()}
}

// Logger is the logging collaborator every lvmcore package takes by
// reference (or via option.WithLogger). Kept deliberately thin.
type Logger struct {
	log logr.Logger
}

// Debug logs at the most verbose channel, the kernel-facing detail a
// developer debugging the codec or activation engine would want.
func (l *Logger) Debug(msg string, keysAndValues ...interface{}) {
	l.log.V(LevelDebug).Info(msg, keysAndValues...)
}

// VeryVerbose logs non-fatal parse rejections: bad magic, foreign VG,
// an orphan PV — anything that aborts locally and hands control back
// to the caller without being an operation failure.
func (l *Logger) VeryVerbose(msg string, keysAndValues ...interface{}) {
	l.log.V(LevelVeryVerbose).Info(msg, keysAndValues...)
}

// Verbose logs routine progress: an LV activated, a PV written.
func (l *Logger) Verbose(msg string, keysAndValues ...interface{}) {
	l.log.V(LevelVerbose).Info(msg, keysAndValues...)
}

// Err logs a recoverable error that aborts the current step but not
// necessarily the whole operation (e.g. one PV in a batch write).
func (l *Logger) Err(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error(err, msg, keysAndValues...)
}

// Error logs a fatal operation error and tags it with the "stack"
// marker convention the original carried on every early-return path.
func (l *Logger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error(err, msg, append(append([]interface{}{}, keysAndValues...), "stack", true)...)
}
