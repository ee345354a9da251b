// Package logging contains the structured loggers used across the alignment pipeline. A logger
// writes every entry through its appenders; zap supplies the entry, field and level types.
package logging

import (
	"sync"

	"go.uber.org/zap"
)

var (
	globalMu     sync.RWMutex
	globalLogger = NewDebugLogger("startup")

	// GlobalLogLevel is raised to debug by the CLI debug flag. Every logger obeys it regardless of
	// its own level.
	GlobalLogLevel = zap.NewAtomicLevelAt(zap.InfoLevel)
)

// ReplaceGlobal replaces the global logger.
func ReplaceGlobal(logger Logger) {
	globalMu.Lock()
	globalLogger = logger
	globalMu.Unlock()
}

// Global returns the global logger.
func Global() Logger {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalLogger
}

// NewLogger returns a new logger that outputs Info+ logs to stdout in UTC.
func NewLogger(name string) Logger {
	return newImpl(name, INFO, true, NewStdoutAppender())
}

// NewDebugLogger returns a new logger that outputs Debug+ logs to stdout in UTC.
func NewDebugLogger(name string) Logger {
	return newImpl(name, DEBUG, true, NewStdoutAppender())
}

// NewBlankLogger returns a Debug+ logger without any appender. Entries are dropped until one is
// added.
func NewBlankLogger(name string) Logger {
	return newImpl(name, DEBUG, true)
}
