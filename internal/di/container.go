package di

import (
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/goliatone/go-kb/internal/commands"
	rendercmd "github.com/goliatone/go-kb/internal/commands/render"
	"github.com/goliatone/go-kb/internal/generator"
	"github.com/goliatone/go-kb/internal/logging"
	"github.com/goliatone/go-kb/internal/logging/console"
	"github.com/goliatone/go-kb/internal/logging/gologger"
	"github.com/goliatone/go-kb/internal/output"
	"github.com/goliatone/go-kb/internal/render"
	"github.com/goliatone/go-kb/internal/runtimeconfig"
	"github.com/goliatone/go-kb/internal/source"
	"github.com/goliatone/go-kb/pkg/interfaces"
)

// Container wires the loader, the generator and the command handlers for
// one project configuration.
type Container struct {
	Config runtimeconfig.Config

	loggerProvider interfaces.LoggerProvider
	logWriter      io.Writer
	sourceFS       fs.FS

	loader    *source.Loader
	generator generator.Service

	renderHandler  *rendercmd.RenderProjectHandler
	previewHandler *rendercmd.PreviewDocumentHandler
	handlerOpts    handlerOptions
}

type handlerOptions struct {
	render  []commands.HandlerOption[rendercmd.RenderProjectCommand]
	preview []commands.HandlerOption[rendercmd.PreviewDocumentCommand]
}

// Option mutates the container before services are built.
type Option func(*Container)

// WithLoggerProvider overrides the provider derived from the logging config.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(c *Container) {
		c.loggerProvider = provider
	}
}

// WithLogWriter redirects console provider output. Defaults to stderr.
func WithLogWriter(writer io.Writer) Option {
	return func(c *Container) {
		c.logWriter = writer
	}
}

// WithSourceFS replaces the filesystem documents are loaded from. Defaults
// to the configured source directory on disk.
func WithSourceFS(fsys fs.FS) Option {
	return func(c *Container) {
		c.sourceFS = fsys
	}
}

// WithGeneratorService swaps the generator used by the command handlers.
func WithGeneratorService(svc generator.Service) Option {
	return func(c *Container) {
		c.generator = svc
	}
}

// WithRenderHandlerOptions appends options to the render command handler.
func WithRenderHandlerOptions(opts ...commands.HandlerOption[rendercmd.RenderProjectCommand]) Option {
	return func(c *Container) {
		c.handlerOpts.render = append(c.handlerOpts.render, opts...)
	}
}

// WithPreviewHandlerOptions appends options to the preview command handler.
func WithPreviewHandlerOptions(opts ...commands.HandlerOption[rendercmd.PreviewDocumentCommand]) Option {
	return func(c *Container) {
		c.handlerOpts.preview = append(c.handlerOpts.preview, opts...)
	}
}

// NewContainer validates cfg and builds the services it describes.
func NewContainer(cfg runtimeconfig.Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Container{Config: cfg}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	if err := c.configureLoggerProvider(); err != nil {
		return nil, err
	}
	c.configureGenerator()
	c.configureCommands()

	logging.ModuleLogger(c.loggerProvider, "kb.di").Debug("container.configured",
		"source", cfg.SourceDir(),
		"output", cfg.OutputDir(),
		"roots", len(cfg.Roots),
		"filename_style", cfg.FilenameStyle,
		"html", cfg.HTML.Enabled,
	)
	return c, nil
}

func (c *Container) configureLoggerProvider() error {
	if c.loggerProvider != nil {
		return nil
	}
	switch strings.ToLower(strings.TrimSpace(c.Config.Logging.Provider)) {
	case "gologger":
		provider, err := gologger.NewProvider(gologger.FromRuntime(c.Config.Logging))
		if err != nil {
			return err
		}
		c.loggerProvider = provider
	default:
		writer := c.logWriter
		if writer == nil {
			writer = os.Stderr
		}
		provider, err := console.FromRuntime(c.Config.Logging, writer)
		if err != nil {
			return err
		}
		c.loggerProvider = provider
	}
	return nil
}

func (c *Container) configureGenerator() {
	if c.generator != nil {
		return
	}
	fsys := c.sourceFS
	if fsys == nil {
		fsys = os.DirFS(c.Config.SourceDir())
	}
	c.loader = source.NewLoader(fsys, source.LoaderConfig{
		Logger: logging.SourceLogger(c.loggerProvider),
	})
	c.generator = generator.NewService(c.generatorConfig(), generator.Dependencies{
		Loader: c.loader,
		Logger: logging.GeneratorLogger(c.loggerProvider),
	})
}

func (c *Container) generatorConfig() generator.Config {
	cfg := c.Config
	return generator.Config{
		SourceDir: ".",
		OutputDir: cfg.OutputDir(),
		Roots:     append([]string(nil), cfg.Roots...),
		Paths:     cfg.Paths,
		Render:    c.RenderOptions(),
		HTML: generator.HTMLConfig{
			Enabled: cfg.HTML.Enabled,
			Options: output.ParseOptions{
				Extensions:      append([]string(nil), cfg.HTML.Extensions...),
				HardWraps:       cfg.HTML.HardWraps,
				Unsafe:          cfg.HTML.Unsafe,
				SourceExtension: cfg.Extension,
			},
		},
		Timeout: cfg.RenderTimeout,
	}
}

// RenderOptions maps the project config onto engine options. Directory
// paths and explicit filenames come from the loaded project at build time.
func (c *Container) RenderOptions() render.Options {
	cfg := c.Config
	opts := render.Options{
		DefaultEmbedCondition: cfg.DefaultEmbed.Condition,
		DefaultEmitCondition:  cfg.DefaultEmit,
		RemarkPrefixes:        cfg.RemarkPrefixes,
		Extension:             cfg.Extension,
		Concurrency:           cfg.Concurrency,
		Logger:                logging.RenderLogger(c.loggerProvider),
	}
	if strings.EqualFold(strings.TrimSpace(cfg.FilenameStyle), "slug") {
		opts.TransformFilename = render.SlugTransformFilename
	}
	return opts
}

func (c *Container) configureCommands() {
	logger := commands.CommandLogger(c.loggerProvider, "render")
	c.renderHandler = rendercmd.NewRenderProjectHandler(c.generator, logger, c.handlerOpts.render...)
	c.previewHandler = rendercmd.NewPreviewDocumentHandler(c.generator, logger, c.handlerOpts.preview...)
}

// LoggerProvider returns the provider shared by every module logger.
func (c *Container) LoggerProvider() interfaces.LoggerProvider {
	return c.loggerProvider
}

// GeneratorService returns the configured build service.
func (c *Container) GeneratorService() generator.Service {
	return c.generator
}

// RenderHandler returns the render project command handler.
func (c *Container) RenderHandler() *rendercmd.RenderProjectHandler {
	return c.renderHandler
}

// PreviewHandler returns the preview command handler.
func (c *Container) PreviewHandler() *rendercmd.PreviewDocumentHandler {
	return c.previewHandler
}
