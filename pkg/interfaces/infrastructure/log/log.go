// Package log defines the logger interface shared by the indexer and the CLI.
package log

import "go.uber.org/zap"

// Logger is a leveled, structured logger
type Logger interface {
	Debug(msg string)
	Debugf(format string, args ...interface{})

	Info(msg string)
	Infof(format string, args ...interface{})

	Warn(msg string)
	Warnf(format string, args ...interface{})

	Error(msg string)
	Errorf(format string, args ...interface{})

	// Fatal logs and exits the process
	Fatal(msg string)
	Fatalf(format string, args ...interface{})

	// With returns a logger carrying the given key/value pairs
	With(args ...interface{}) Logger

	// Sync flushes buffered entries
	Sync() error

	// GetZapLogger exposes the underlying zap logger
	GetZapLogger() *zap.Logger
}
