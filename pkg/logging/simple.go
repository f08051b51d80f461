package logging

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/fatih/color"
	"github.com/go-logr/logr"
)

// Channel labels and colors, one per spec §6.5 channel. err and error
// both arrive through the sink's Error method (logr has no separate
// hook for them); they're told apart by the "stack" marker Logger.Error
// appends and Logger.Err doesn't.
var (
	verboseColor     = color.New(color.FgGreen).SprintFunc()
	veryVerboseColor = color.New(color.FgCyan).SprintFunc()
	debugColor       = color.New(color.FgBlue).SprintFunc()
	errColor         = color.New(color.FgYellow).SprintFunc()
	errorColor       = color.New(color.FgRed, color.Bold).SprintFunc()
)

// SimpleLogSink is a logr.LogSink that writes human-readable, level
// filtered, optionally colorized text to an io.Writer. It backs the
// CLI's default logger (no structured sink configured).
type SimpleLogSink struct {
	writer       io.Writer
	minVerbosity int
	name         string
	keyValues    []interface{}
	mutex        sync.Mutex
	callDepth    int
	useColor     bool
}

// NewSimpleLogSink creates a new SimpleLogSink. If writer is nil, it
// defaults to os.Stdout. minVerbosity sets the highest V() level that
// is still enabled, mapping onto LevelVerbose/LevelVeryVerbose/LevelDebug.
func NewSimpleLogSink(writer io.Writer, minVerbosity int, useColor bool) *SimpleLogSink {
	if writer == nil {
		writer = os.Stdout
	}
	return &SimpleLogSink{
		writer:       writer,
		minVerbosity: minVerbosity,
		useColor:     useColor,
	}
}

func (s *SimpleLogSink) Init(info logr.RuntimeInfo) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.callDepth = info.CallDepth
}

// Enabled reports whether level is at or below the sink's configured
// verbosity, i.e. whether that channel is turned on.
func (s *SimpleLogSink) Enabled(level int) bool {
	return level <= s.minVerbosity
}

// Info logs the debug/very_verbose/verbose channels; level picks which.
func (s *SimpleLogSink) Info(level int, msg string, keysAndValues ...interface{}) {
	if !s.Enabled(level) {
		return
	}
	s.log(false, level, msg, keysAndValues...)
}

// Error logs the err/error channels. Logger.Error appends a "stack"
// marker that Logger.Err never does; that marker, not the level
// argument (logr always passes 0 here), is what distinguishes a fatal,
// aborted-operation error from a recoverable one.
func (s *SimpleLogSink) Error(err error, msg string, keysAndValues ...interface{}) {
	allKeysAndValues := append(keysAndValues, "error", err)
	s.log(true, 0, msg, allKeysAndValues...)
}

func hasStackMarker(keysAndValues []interface{}) bool {
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		if key, ok := keysAndValues[i].(string); ok && key == "stack" {
			if v, ok := keysAndValues[i+1].(bool); ok && v {
				return true
			}
		}
	}
	return false
}

func (s *SimpleLogSink) WithValues(keysAndValues ...interface{}) logr.LogSink {
	newKeyValues := append(append([]interface{}{}, s.keyValues...), keysAndValues...)
	return &SimpleLogSink{
		writer:       s.writer,
		minVerbosity: s.minVerbosity,
		name:         s.name,
		keyValues:    newKeyValues,
		useColor:     s.useColor,
	}
}

func (s *SimpleLogSink) WithName(name string) logr.LogSink {
	newName := name
	if s.name != "" {
		newName = fmt.Sprintf("%s.%s", s.name, name)
	}
	return &SimpleLogSink{
		writer:       s.writer,
		minVerbosity: s.minVerbosity,
		name:         newName,
		keyValues:    append([]interface{}{}, s.keyValues...),
		useColor:     s.useColor,
	}
}

func (s *SimpleLogSink) V(level int) logr.LogSink {
	return &SimpleLogSink{
		writer:       s.writer,
		minVerbosity: s.minVerbosity,
		name:         s.name,
		keyValues:    append([]interface{}{}, s.keyValues...),
		useColor:     s.useColor,
	}
}

// log formats and writes one record. isError selects between the
// err/error channels (told apart by the stack marker) and the
// debug/very_verbose/verbose channels (told apart by level).
func (s *SimpleLogSink) log(isError bool, level int, msg string, keysAndValues ...interface{}) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	var label string
	switch {
	case isError && hasStackMarker(keysAndValues):
		label = fmt.Sprintf("%s ", errorColor("[ERROR]"))
	case isError:
		label = fmt.Sprintf("%s ", errColor("[ERR]"))
	default:
		switch level {
		case LevelVerbose:
			label = fmt.Sprintf("%s ", verboseColor("[VERBOSE]"))
		case LevelVeryVerbose:
			label = fmt.Sprintf("%s ", veryVerboseColor("[VERY_VERBOSE]"))
		case LevelDebug:
			label = fmt.Sprintf("%s ", debugColor("[DEBUG]"))
		default:
			label = fmt.Sprintf("[LEVEL %d] ", level)
		}
	}

	fullMsg := msg
	if s.name != "" {
		fullMsg = fmt.Sprintf("[%s] %s", s.name, msg)
	}
	fullMsg = label + fullMsg

	fmt.Fprintln(s.writer, fullMsg)

	for i := 0; i < len(keysAndValues)-1; i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			key = fmt.Sprintf("key%d", i/2)
		}
		value := keysAndValues[i+1]
		fmt.Fprintf(s.writer, "  %s: %v\n", key, value)
	}
}

// NewSimpleLogger wraps a SimpleLogSink in a logr.Logger. If writer is
// nil, it defaults to os.Stdout.
func NewSimpleLogger(writer io.Writer, minVerbosity int, useColor bool) logr.Logger {
	sink := NewSimpleLogSink(writer, minVerbosity, useColor)
	return logr.New(sink)
}
