package rendercmd

import (
	"path/filepath"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/goliatone/go-kb/internal/generator"
)

const (
	renderProjectMessageType   = "kb.render.project"
	previewDocumentMessageType = "kb.render.preview"
)

// ResultCallback receives build results produced by generator operations. The callback is optional
// and is invoked synchronously from the handler when a BuildResult is available.
type ResultCallback func(ResultEnvelope)

// ResultEnvelope captures the outcome of a render command execution.
type ResultEnvelope struct {
	Result   *generator.BuildResult
	Metadata map[string]any
}

// PreviewCallback receives the document rendered by a preview command.
type PreviewCallback func(*generator.Preview)

// RenderProjectCommand renders every root of the loaded project and saves the output.
type RenderProjectCommand struct {
	// OutputDir overrides the configured output directory.
	OutputDir      string         `json:"output_dir,omitempty"`
	DryRun         bool           `json:"dry_run,omitempty"`
	Force          bool           `json:"force,omitempty"`
	HTML           bool           `json:"html,omitempty"`
	ResultCallback ResultCallback `json:"-"`
}

// Type implements command.Message.
func (RenderProjectCommand) Type() string { return renderProjectMessageType }

// Validate ensures the output directory override is usable.
func (m RenderProjectCommand) Validate() error {
	errs := validation.Errors{}
	if m.OutputDir != "" {
		trimmed := strings.TrimSpace(m.OutputDir)
		switch {
		case trimmed == "":
			errs["output_dir"] = validation.NewError("kb.render.project.output_dir_blank", "output_dir must not be blank when set")
		case filepath.Clean(trimmed) == string(filepath.Separator):
			errs["output_dir"] = validation.NewError("kb.render.project.output_dir_root", "output_dir must not be the filesystem root")
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// PreviewDocumentCommand renders a single document without writing it.
type PreviewDocumentCommand struct {
	DocumentID string          `json:"document_id"`
	Callback   PreviewCallback `json:"-"`
}

// Type implements command.Message.
func (PreviewDocumentCommand) Type() string { return previewDocumentMessageType }

// Validate ensures a document id is present.
func (m PreviewDocumentCommand) Validate() error {
	return validation.Errors{
		"document_id": validation.Validate(strings.TrimSpace(m.DocumentID), validation.Required),
	}.Filter()
}
