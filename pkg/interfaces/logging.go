// Package interfaces holds the contracts shared between the render engine,
// its project generator and host applications.
package interfaces

import "context"

// Logger is the leveled logger every kb package writes to. Its method set
// matches github.com/goliatone/go-logger so those loggers plug in directly.
// Args alternate key and value.
type Logger interface {
	Trace(msg string, args ...any)
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	Fatal(msg string, args ...any)
	WithContext(ctx context.Context) Logger
}

// FieldsLogger is implemented by loggers able to carry structured fields on
// every later entry.
type FieldsLogger interface {
	WithFields(fields map[string]any) Logger
}

// LoggerProvider hands out loggers by module name such as kb.render.
type LoggerProvider interface {
	GetLogger(name string) Logger
}
