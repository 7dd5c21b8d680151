package logging

import (
	"context"
	"strings"

	"github.com/goliatone/go-kb/pkg/interfaces"
)

const (
	rootModule      = "kb"
	renderModule    = "kb.render"
	sourceModule    = "kb.source"
	outputModule    = "kb.output"
	generatorModule = "kb.generator"
	commandModule   = "kb.commands"
)

const (
	fieldRenderID   = "render_id"
	fieldSourcePath = "source_path"
	fieldSourceID   = "document_id"
	fieldOutputPath = "output_path"
)

// ModuleLogger returns a module-scoped logger, defaulting to a no-op
// implementation when no provider is supplied. The returned logger attaches
// the module identifier as structured context so downstream entries can be
// filtered predictably.
func ModuleLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	if module == "" {
		module = rootModule
	}

	logger := NoOp()
	if provider != nil {
		if provided := provider.GetLogger(module); provided != nil {
			logger = provided
		}
	}

	if fieldsLogger, ok := logger.(interfaces.FieldsLogger); ok {
		return fieldsLogger.WithFields(map[string]any{
			"module": module,
		})
	}

	return WithFields(logger, map[string]any{
		"module": module,
	})
}

// RenderLogger returns the logger namespace reserved for the render engine.
func RenderLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, renderModule)
}

// SourceLogger returns the logger namespace reserved for source loading.
func SourceLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, sourceModule)
}

// OutputLogger returns the logger namespace reserved for output writers.
func OutputLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, outputModule)
}

// GeneratorLogger returns the logger namespace reserved for build orchestration.
func GeneratorLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, generatorModule)
}

// CommandLogger returns the logger namespace reserved for command handlers,
// optionally narrowed to one command module.
func CommandLogger(provider interfaces.LoggerProvider, name string) interfaces.Logger {
	if trimmed := strings.TrimSpace(name); trimmed != "" {
		return ModuleLogger(provider, commandModule+"."+trimmed)
	}
	return ModuleLogger(provider, commandModule)
}

// WithRenderContext tags every entry of one render call with its id.
func WithRenderContext(logger interfaces.Logger, renderID string) interfaces.Logger {
	if trimmed := strings.TrimSpace(renderID); trimmed != "" {
		return WithFields(logger, map[string]any{fieldRenderID: trimmed})
	}
	return logger
}

// ContextWithRenderID annotates ctx with the render id so loggers bound to it
// through WithContext tag their entries with the same run.
func ContextWithRenderID(ctx context.Context, renderID string) context.Context {
	if trimmed := strings.TrimSpace(renderID); trimmed != "" {
		return ContextWithFields(ctx, map[string]any{fieldRenderID: trimmed})
	}
	return ctx
}

// WithSourceContext enriches the provided logger with the source file path
// and document id. Empty values are ignored.
func WithSourceContext(logger interfaces.Logger, path, id string) interfaces.Logger {
	fields := map[string]any{}
	if trimmed := strings.TrimSpace(path); trimmed != "" {
		fields[fieldSourcePath] = trimmed
	}
	if trimmed := strings.TrimSpace(id); trimmed != "" {
		fields[fieldSourceID] = trimmed
	}
	return WithFields(logger, fields)
}

// WithOutputContext enriches the provided logger with an output file path.
func WithOutputContext(logger interfaces.Logger, path string) interfaces.Logger {
	if trimmed := strings.TrimSpace(path); trimmed != "" {
		return WithFields(logger, map[string]any{fieldOutputPath: trimmed})
	}
	return logger
}

// NoOp returns a logger that drops every log entry. It satisfies the Logger
// contract so services can safely operate when logging is disabled.
func NoOp() interfaces.Logger {
	return noopLogger{}
}

type noopLogger struct{}

var _ interfaces.Logger = noopLogger{}

func (noopLogger) Trace(string, ...any) {}
func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Fatal(string, ...any) {}

func (n noopLogger) WithFields(map[string]any) interfaces.Logger {
	return n
}

func (n noopLogger) WithContext(context.Context) interfaces.Logger {
	return n
}
