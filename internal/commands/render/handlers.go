package rendercmd

import (
	"context"
	"strings"

	"github.com/goliatone/go-kb/internal/commands"
	"github.com/goliatone/go-kb/internal/generator"
	"github.com/goliatone/go-kb/internal/logging"
	"github.com/goliatone/go-kb/pkg/interfaces"
)

// RenderProjectHandler runs generator builds using the shared command handler foundation.
type RenderProjectHandler struct {
	inner *commands.Handler[RenderProjectCommand]
}

// NewRenderProjectHandler constructs a handler wired to the provided generator service.
func NewRenderProjectHandler(service generator.Service, logger interfaces.Logger, opts ...commands.HandlerOption[RenderProjectCommand]) *RenderProjectHandler {
	baseLogger := logger
	if baseLogger == nil {
		baseLogger = logging.NoOp()
	}

	exec := func(ctx context.Context, msg RenderProjectCommand) error {
		if service == nil {
			return generator.ErrServiceDisabled
		}
		result, err := service.Build(ctx, generator.BuildOptions{
			OutputDir: strings.TrimSpace(msg.OutputDir),
			DryRun:    msg.DryRun,
			Force:     msg.Force,
			HTML:      msg.HTML,
		})
		operation := "render"
		if msg.DryRun {
			operation = "diff"
		}
		invokeCallback(msg.ResultCallback, ResultEnvelope{
			Result: result,
			Metadata: map[string]any{
				"operation": operation,
			},
		})
		return err
	}

	handlerOpts := []commands.HandlerOption[RenderProjectCommand]{
		commands.WithLogger[RenderProjectCommand](baseLogger),
		commands.WithOperation[RenderProjectCommand]("render.project"),
		commands.WithMessageFields(func(msg RenderProjectCommand) map[string]any {
			fields := map[string]any{}
			if msg.OutputDir != "" {
				fields["output_dir"] = strings.TrimSpace(msg.OutputDir)
			}
			if msg.DryRun {
				fields["dry_run"] = true
			}
			if msg.Force {
				fields["force"] = true
			}
			if msg.HTML {
				fields["html"] = true
			}
			return fields
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[RenderProjectCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &RenderProjectHandler{
		inner: commands.NewHandler(exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[RenderProjectCommand].
func (h *RenderProjectHandler) Execute(ctx context.Context, msg RenderProjectCommand) error {
	return h.inner.Execute(ctx, msg)
}

// PreviewDocumentHandler renders one document for display.
type PreviewDocumentHandler struct {
	inner *commands.Handler[PreviewDocumentCommand]
}

// NewPreviewDocumentHandler constructs a handler that previews documents through the generator.
func NewPreviewDocumentHandler(service generator.Service, logger interfaces.Logger, opts ...commands.HandlerOption[PreviewDocumentCommand]) *PreviewDocumentHandler {
	baseLogger := logger
	if baseLogger == nil {
		baseLogger = logging.NoOp()
	}

	exec := func(ctx context.Context, msg PreviewDocumentCommand) error {
		if service == nil {
			return generator.ErrServiceDisabled
		}
		preview, err := service.Preview(ctx, strings.TrimSpace(msg.DocumentID))
		if err != nil {
			return err
		}
		if msg.Callback != nil {
			msg.Callback(preview)
		}
		return nil
	}

	handlerOpts := []commands.HandlerOption[PreviewDocumentCommand]{
		commands.WithLogger[PreviewDocumentCommand](baseLogger),
		commands.WithOperation[PreviewDocumentCommand]("render.preview"),
		commands.WithMessageFields(func(msg PreviewDocumentCommand) map[string]any {
			return map[string]any{"document_id": strings.TrimSpace(msg.DocumentID)}
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[PreviewDocumentCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &PreviewDocumentHandler{
		inner: commands.NewHandler(exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[PreviewDocumentCommand].
func (h *PreviewDocumentHandler) Execute(ctx context.Context, msg PreviewDocumentCommand) error {
	return h.inner.Execute(ctx, msg)
}

func invokeCallback(cb ResultCallback, envelope ResultEnvelope) {
	if cb == nil {
		return
	}
	cb(envelope)
}
