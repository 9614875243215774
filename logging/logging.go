// Package logging contains the structured logger used by the evaluator and the command line tool.
package logging

import (
	"io"
	"os"
	"testing"

	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

var globalLogger = NewLogger("motioneval")

// Global returns the global logger.
func Global() Logger {
	return globalLogger
}

// NewLogger returns a new logger that outputs Info+ logs to stderr in UTC. Stdout is left to
// command output such as reports and tables.
func NewLogger(name string) Logger {
	return NewWriterLogger(name, INFO, os.Stderr)
}

// NewWriterLogger returns a new logger that outputs logs at level and above to w in UTC.
func NewWriterLogger(name string, level Level, w io.Writer) Logger {
	return newLogger(name, level, true, NewWriterAppender(w))
}

// NewTestLogger returns a new logger that outputs Debug+ logs to the test in local time.
func NewTestLogger(tb testing.TB) Logger {
	logger, _ := NewObservedTestLogger(tb)
	return logger
}

// NewObservedTestLogger is like NewTestLogger but also saves logs to an in memory observer.
func NewObservedTestLogger(tb testing.TB) (Logger, *observer.ObservedLogs) {
	logger := newLogger("", DEBUG, false, NewTestAppender(tb))
	observerCore, observedLogs := observer.New(zapcore.DebugLevel)
	logger.AddAppender(observerCore)
	return logger, observedLogs
}
