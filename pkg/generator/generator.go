// Package generator exposes the knowledge-base project build API.
// Use NewService with Config and Dependencies to render a source tree into
// markdown files, optionally with HTML copies, or to preview one document.
package generator

import internal "github.com/goliatone/go-kb/internal/generator"

type (
	Service       = internal.Service
	Config        = internal.Config
	HTMLConfig    = internal.HTMLConfig
	BuildOptions  = internal.BuildOptions
	BuildResult   = internal.BuildResult
	Preview       = internal.Preview
	ProjectLoader = internal.ProjectLoader
	Dependencies  = internal.Dependencies
)

var (
	ErrServiceDisabled   = internal.ErrServiceDisabled
	ErrLoaderRequired    = internal.ErrLoaderRequired
	ErrOutputDirRequired = internal.ErrOutputDirRequired
	ErrDocumentNotFound  = internal.ErrDocumentNotFound
)

// NewService wires a project generator with the supplied configuration and dependencies.
func NewService(cfg Config, deps Dependencies) Service {
	return internal.NewService(cfg, deps)
}

// NewDisabledService returns a Service that fails all operations with ErrServiceDisabled.
func NewDisabledService() Service {
	return internal.NewDisabledService()
}
