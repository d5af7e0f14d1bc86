package logging

import (
	"github.com/go-logr/logr"
)

const (
	LEVEL_INFO  = 0
	LEVEL_DEBUG = 1
	LEVEL_TRACE = 2
)

// NewLogger wraps an existing logr.Logger. A zero value logger is replaced by logr.Discard().
func NewLogger(log logr.Logger) *Logger {
	if log.GetSink() == nil {
		log = logr.Discard()
	}
	return &Logger{log: log}
}

// DefaultLogger returns a Logger that drops everything. Libraries stay quiet unless the caller hands them a sink.
func DefaultLogger() *Logger {
	return &Logger{log: logr.Discard()}
}

// Logger is a thin wrapper around logr.Logger so the decoding and navigation packages only see four verbs.
type Logger struct {
	log logr.Logger
}

// Named returns a child logger whose messages are prefixed with the given component name.
func (l *Logger) Named(name string) *Logger {
	if l == nil {
		return DefaultLogger()
	}
	return &Logger{log: l.log.WithName(name)}
}

// With returns a child logger that attaches the key/value pairs to every message.
func (l *Logger) With(keysAndValues ...interface{}) *Logger {
	if l == nil {
		return DefaultLogger()
	}
	return &Logger{log: l.log.WithValues(keysAndValues...)}
}

// Logr exposes the underlying logr.Logger.
func (l *Logger) Logr() logr.Logger {
	return l.log
}

func (l *Logger) Debug(msg string, keysAndValues ...interface{}) {
	l.log.V(LEVEL_DEBUG).Info(msg, keysAndValues...)
}

func (l *Logger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Info(msg, keysAndValues...)
}

func (l *Logger) Trace(msg string, keysAndValues ...interface{}) {
	l.log.V(LEVEL_TRACE).Info(msg, keysAndValues...)
}

// Warn is logged at info level with a "warning" marker. logr has no separate warning level.
func (l *Logger) Warn(msg string, keysAndValues ...interface{}) {
	l.log.Info(msg, append([]interface{}{"warning", true}, keysAndValues...)...)
}

func (l *Logger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error(err, msg, keysAndValues...)
}
