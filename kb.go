// Package kb renders graphs of knowledge-base documents into markdown files
// with resolved cross-document links and unique filenames.
package kb

import (
	"context"

	"github.com/goliatone/go-kb/internal/builder"
	"github.com/goliatone/go-kb/internal/di"
	"github.com/goliatone/go-kb/internal/generator"
	"github.com/goliatone/go-kb/internal/metadata"
	"github.com/goliatone/go-kb/internal/node"
	"github.com/goliatone/go-kb/internal/render"
	"github.com/goliatone/go-kb/internal/style"
	"github.com/goliatone/go-kb/pkg/interfaces"
)

// Content model.
type (
	KB             = node.KB
	Node           = node.Node
	Text           = node.Text
	Fragment       = node.Fragment
	Link           = node.Link
	LinkFunc       = node.LinkFunc
	FallbackFunc   = node.FallbackFunc
	Embed          = node.Embed
	List           = node.List
	Block          = node.Block
	Inline         = node.Inline
	Lazy           = node.Lazy
	Producer       = node.Producer
	LinkTarget     = node.LinkTarget
	URL            = node.URL
	EmbedCondition = node.EmbedCondition
	EmbedBool      = node.EmbedBool
	ReferenceCount = node.ReferenceCount
	NoSeries       = node.NoSeries
	EmitCondition  = node.EmitCondition
)

const (
	EmitUnset  = node.EmitUnset
	EmitAlways = node.EmitAlways
	EmitNever  = node.EmitNever
)

// Styles understood by the render engine.
type (
	InlineStyle = style.InlineStyle
	BlockStyle  = style.BlockStyle
)

var (
	Em        = style.Em
	Strike    = style.Strike
	Code      = style.Code
	Quote     = style.Quote
	CodeBlock = style.CodeBlock
	Doc       = builder.Doc
)

// Rendering.
type (
	RenderOptions  = render.Options
	Engine         = render.Engine
	OutputFile     = interfaces.OutputFile
	FilenameTable  = metadata.Table
	FilenameLookup = metadata.Lookup
	KBOption       = builder.KBOption
)

var (
	ErrUnknownNode    = render.ErrUnknownNode
	ErrLazyProducer   = render.ErrLazyProducer
	ErrNilDocument    = render.ErrNilDocument
	ErrInvalidOptions = render.ErrInvalidOptions
)

// New returns a factory producing KBs titled title.
func New(title string, opts ...KBOption) builder.Factory[*KB] {
	return builder.New(title, opts...)
}

// WithEmbedCondition sets the embed condition of created KBs.
func WithEmbedCondition(condition EmbedCondition) KBOption {
	return builder.WithEmbedCondition(condition)
}

// WithEmitCondition sets the emit condition of created KBs.
func WithEmitCondition(condition EmitCondition) KBOption {
	return builder.WithEmitCondition(condition)
}

// Build normalizes args into a fragment in order.
func Build(args ...any) Fragment { return builder.Build(args...) }

// Template normalizes literal segments and interpolations, stripping the
// common indentation of the literal text.
func Template(parts ...any) Fragment { return builder.Template(parts...) }

// NewLink links to a KB or a URL string.
func NewLink(target any, label ...string) *Link { return builder.Link(target, label...) }

// NewList builds a list from items.
func NewList(items ...any) *List { return builder.List(items...) }

// Defer wraps produce so it runs when the engine reaches it.
func Defer(produce func(ctx context.Context) (any, error)) *Lazy { return builder.Lazy(produce) }

// CodeBlockLang styles content as a code block in language.
func CodeBlockLang(language string) builder.Factory[*Block] { return style.CodeBlockLang(language) }

// Remark styles content as a themed remark block.
func Remark(theme string) builder.Factory[*Block] { return style.Remark(theme) }

// Render renders roots and every KB reachable from them.
func Render(ctx context.Context, roots []*KB, opts RenderOptions) ([]OutputFile, error) {
	return render.Render(ctx, roots, opts)
}

// NewEngine returns a reusable engine for opts.
func NewEngine(opts RenderOptions) *Engine { return render.New(opts) }

// GeneratorService exports the project build contract.
type GeneratorService = generator.Service

// Module represents the top level knowledge-base runtime façade.
type Module struct {
	container *di.Container
}

// NewModule constructs a module using the provided configuration and optional DI overrides.
func NewModule(cfg Config, opts ...di.Option) (*Module, error) {
	container, err := di.NewContainer(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Module{container: container}, nil
}

// Container exposes the underlying DI container for advanced integrations.
func (m *Module) Container() *di.Container {
	return m.container
}

// Generator returns the configured build service.
func (m *Module) Generator() GeneratorService {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.GeneratorService()
}
