package generator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-kb/internal/logging"
	"github.com/goliatone/go-kb/internal/metadata"
	"github.com/goliatone/go-kb/internal/node"
	"github.com/goliatone/go-kb/internal/output"
	"github.com/goliatone/go-kb/internal/render"
	"github.com/goliatone/go-kb/internal/source"
	"github.com/goliatone/go-kb/pkg/interfaces"
)

const codeDocumentNotFound = "GENERATOR_DOCUMENT_NOT_FOUND"

var (
	// ErrServiceDisabled indicates the generator feature is disabled.
	ErrServiceDisabled = errors.New("generator: service disabled")
	// ErrLoaderRequired indicates the service was built without a source loader.
	ErrLoaderRequired = errors.New("generator: source loader is required")
	// ErrOutputDirRequired indicates neither the config nor the build options name an output directory.
	ErrOutputDirRequired = errors.New("generator: output directory is required")
	// ErrDocumentNotFound indicates a preview for an id the project does not define.
	ErrDocumentNotFound = errors.New("generator: document not found")
)

// Service describes the knowledge-base build contract.
type Service interface {
	Build(ctx context.Context, opts BuildOptions) (*BuildResult, error)
	Preview(ctx context.Context, documentID string) (*Preview, error)
}

// Config captures runtime behaviour toggles for the generator.
type Config struct {
	// SourceDir is handed to the loader; "." loads the whole filesystem.
	SourceDir string
	OutputDir string
	// Roots lists document ids rendered in addition to front matter roots.
	Roots []string
	// Paths maps document ids to output directories; "*" matches the rest.
	Paths  map[string]string
	Render render.Options
	HTML   HTMLConfig
	// Timeout bounds a single render pass. Zero disables the bound.
	Timeout time.Duration
}

// HTMLConfig enables HTML copies of the rendered markdown.
type HTMLConfig struct {
	Enabled bool
	Options output.ParseOptions
}

// BuildOptions narrows or overrides a single build run.
type BuildOptions struct {
	// OutputDir overrides Config.OutputDir when set.
	OutputDir string
	DryRun    bool
	// Force rewrites unchanged files.
	Force bool
	// HTML adds HTML copies even when Config.HTML is disabled.
	HTML bool
}

// BuildResult reports aggregated build metadata.
type BuildResult struct {
	Documents int
	Files     []interfaces.OutputFile
	Written   []string
	Unchanged []string
	OutputDir string
	Duration  time.Duration
	DryRun    bool
}

// Preview is a single document rendered on its own.
type Preview struct {
	DocumentID string
	Title      string
	Path       string
	Markdown   string
}

// ProjectLoader loads the source document graph.
type ProjectLoader interface {
	Load(ctx context.Context, dir string) (*source.Project, error)
}

// Dependencies lists the collaborators required by the generator.
type Dependencies struct {
	Loader ProjectLoader
	Logger interfaces.Logger
}

// NewService wires a generator implementation with the provided configuration and dependencies.
func NewService(cfg Config, deps Dependencies) Service {
	if deps.Logger == nil {
		deps.Logger = logging.NoOp()
	}
	return &service{
		cfg:  cfg,
		deps: deps,
		now:  time.Now,
	}
}

// NewDisabledService returns a Service that fails all operations with ErrServiceDisabled.
func NewDisabledService() Service {
	return disabledService{}
}

type service struct {
	cfg  Config
	deps Dependencies
	now  func() time.Time
}

type disabledService struct{}

func (s *service) Build(ctx context.Context, opts BuildOptions) (*BuildResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	outputDir := strings.TrimSpace(opts.OutputDir)
	if outputDir == "" {
		outputDir = strings.TrimSpace(s.cfg.OutputDir)
	}
	if outputDir == "" {
		return nil, ErrOutputDirRequired
	}

	start := s.now()
	project, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	roots, err := project.Roots(s.cfg.Roots...)
	if err != nil {
		return nil, err
	}
	renderOpts, err := s.renderOptions(project)
	if err != nil {
		return nil, err
	}

	files, err := s.render(ctx, roots, renderOpts)
	if err != nil {
		return nil, err
	}

	outputs := files
	if opts.HTML || s.cfg.HTML.Enabled {
		parseOpts := s.cfg.HTML.Options
		if parseOpts.SourceExtension == "" {
			parseOpts.SourceExtension = renderOpts.Extension
		}
		pages, err := output.HTML(files, parseOpts)
		if err != nil {
			return nil, err
		}
		outputs = make([]interfaces.OutputFile, 0, len(files)+len(pages))
		outputs = append(outputs, files...)
		outputs = append(outputs, pages...)
	}

	saved, err := output.Save(ctx, outputs, output.Options{
		Root:   outputDir,
		DryRun: opts.DryRun,
		Force:  opts.Force,
		Logger: s.deps.Logger,
	})
	if err != nil {
		return nil, err
	}

	result := &BuildResult{
		Documents: len(project.Documents),
		Files:     outputs,
		Written:   saved.Written,
		Unchanged: saved.Unchanged,
		OutputDir: outputDir,
		Duration:  s.now().Sub(start),
		DryRun:    opts.DryRun,
	}
	s.deps.Logger.Info("generator.build.completed",
		"documents", result.Documents,
		"files", len(result.Files),
		"written", len(result.Written),
		"unchanged", len(result.Unchanged),
		"dry_run", result.DryRun,
		"duration", result.Duration,
	)
	return result, nil
}

func (s *service) Preview(ctx context.Context, documentID string) (*Preview, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	id := strings.TrimSpace(documentID)

	project, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	doc, ok := project.Document(id)
	if !ok {
		return nil, goerrors.Wrap(fmt.Errorf("%w: %q", ErrDocumentNotFound, id), goerrors.CategoryValidation, "preview document is unknown").
			WithTextCode(codeDocumentNotFound)
	}
	renderOpts, err := s.renderOptions(project)
	if err != nil {
		return nil, err
	}
	// The previewed document is the only root, so it is discovered and
	// emitted first.
	files, err := s.render(ctx, []*node.KB{doc.KB}, renderOpts)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("generator: preview of %q produced no output", id)
	}
	return &Preview{
		DocumentID: doc.ID,
		Title:      doc.KB.Title,
		Path:       files[0].Path,
		Markdown:   files[0].Text,
	}, nil
}

func (s *service) load(ctx context.Context) (*source.Project, error) {
	if s.deps.Loader == nil {
		return nil, ErrLoaderRequired
	}
	dir := strings.TrimSpace(s.cfg.SourceDir)
	if dir == "" {
		dir = "."
	}
	return s.deps.Loader.Load(ctx, dir)
}

// renderOptions layers the project's front matter annotations over the
// configured render options.
func (s *service) renderOptions(project *source.Project) (render.Options, error) {
	opts := s.cfg.Render
	paths, err := project.DirectoryPaths(s.cfg.Paths)
	if err != nil {
		return render.Options{}, err
	}
	opts.Paths = paths
	opts.Filenames = projectFilenames(opts.Filenames, project.Filenames)
	if opts.Logger == nil {
		opts.Logger = s.deps.Logger
	}
	if opts.Extension == "" {
		opts.Extension = render.DefaultExtension
	}
	return opts, nil
}

// projectFilenames combines configured filename annotations with the ones
// from front matter. Front matter wins where both name the same document.
func projectFilenames(configured metadata.Lookup, fromSource metadata.Table) metadata.Lookup {
	switch lookup := configured.(type) {
	case nil:
		return fromSource
	case metadata.Table:
		return metadata.Merge(lookup, fromSource)
	default:
		return metadata.Chain(fromSource, lookup)
	}
}

func (s *service) render(ctx context.Context, roots []*node.KB, opts render.Options) ([]interfaces.OutputFile, error) {
	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}
	return render.Render(ctx, roots, opts)
}

func (disabledService) Build(context.Context, BuildOptions) (*BuildResult, error) {
	return nil, ErrServiceDisabled
}

func (disabledService) Preview(context.Context, string) (*Preview, error) {
	return nil, ErrServiceDisabled
}
