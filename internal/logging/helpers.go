package logging

import (
	"maps"

	"github.com/goliatone/go-kb/pkg/interfaces"
)

// WithFields returns logger with fields attached when it implements
// interfaces.FieldsLogger, and logger unchanged otherwise. The map is cloned
// so callers may keep mutating their copy.
func WithFields(logger interfaces.Logger, fields map[string]any) interfaces.Logger {
	fieldsLogger, ok := logger.(interfaces.FieldsLogger)
	if !ok || len(fields) == 0 {
		return logger
	}
	return fieldsLogger.WithFields(maps.Clone(fields))
}
