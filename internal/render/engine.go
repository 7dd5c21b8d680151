package render

import (
	"context"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-kb/internal/assemble"
	"github.com/goliatone/go-kb/internal/logging"
	"github.com/goliatone/go-kb/internal/mdast"
	"github.com/goliatone/go-kb/internal/node"
	"github.com/goliatone/go-kb/pkg/interfaces"
)

// Engine renders KB graphs into output files. An Engine holds no per-call
// state, so concurrent Render calls are independent.
type Engine struct {
	opts Options
}

// New constructs an engine with opts.
func New(opts Options) *Engine {
	return &Engine{opts: opts}
}

// Render renders roots and every KB reachable from them with opts.
func Render(ctx context.Context, roots []*node.KB, opts Options) ([]interfaces.OutputFile, error) {
	return New(opts).Render(ctx, roots)
}

// Render resolves every KB reachable from roots, assigns unique filenames,
// and returns one output file per emitted KB in discovery order. Any failure
// aborts the whole call.
func (e *Engine) Render(ctx context.Context, roots []*node.KB) ([]interfaces.OutputFile, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := e.opts.Validate(); err != nil {
		return nil, invalidOptions(err)
	}
	for i, root := range roots {
		if root == nil {
			return nil, contractViolation(ErrNilDocument, "root at position "+itoa(i))
		}
	}

	p := newPass(ctx, resolveOptions(e.opts))
	start := time.Now()
	p.logger.Debug("render.start", "roots", len(roots))

	for _, root := range roots {
		inst, err := p.ensure(root, nil)
		if err != nil {
			p.logger.Error("render.failed", "error", err)
			return nil, err
		}
		inst.root = true
	}

	p.assignFilenames()

	files, err := p.emitAll()
	if err != nil {
		p.logger.Error("render.failed", "error", err)
		return nil, err
	}

	p.logger.Info("render.completed",
		"instances", len(p.order),
		"files", len(files),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return files, nil
}

// pass is the state of one render call.
type pass struct {
	ctx       context.Context
	opts      resolvedOptions
	logger    interfaces.Logger
	instances map[*node.KB]*instance
	order     []*instance
	lazies    *lazyCache
	queue     []*instance
	queued    map[*instance]struct{}
	expanding map[*node.Lazy]struct{}
}

func newPass(ctx context.Context, opts resolvedOptions) *pass {
	renderID := uuid.NewString()
	return &pass{
		ctx:       logging.ContextWithRenderID(ctx, renderID),
		opts:      opts,
		logger:    logging.WithRenderContext(opts.Logger, renderID),
		instances: map[*node.KB]*instance{},
		lazies:    newLazyCache(opts.Concurrency),
		queued:    map[*instance]struct{}{},
		expanding: map[*node.Lazy]struct{}{},
	}
}

// ensure returns the instance for kb, creating it and interpreting its
// content on first encounter. The instance is registered before its content
// is interpreted so reference cycles terminate.
func (p *pass) ensure(kb *node.KB, from *node.KB) (*instance, error) {
	if kb == nil {
		return nil, contractViolation(ErrNilDocument, "link or embed target is nil")
	}
	inst, ok := p.instances[kb]
	if !ok {
		inst = p.newInstance(kb)
		emit, err := p.renderDocument(inst)
		if err != nil {
			return nil, err
		}
		inst.emit = emit
	}
	if from != nil && from != kb {
		inst.refs[from] = struct{}{}
	}
	return inst, nil
}

func (p *pass) newInstance(kb *node.KB) *instance {
	inst := &instance{
		kb:        kb,
		index:     len(p.order),
		refs:      map[*node.KB]struct{}{},
		linkRefs:  map[*node.KB]struct{}{},
		embedRefs: map[*node.KB]struct{}{},
	}
	if explicit, ok := p.opts.Filenames.Filename(kb); ok {
		explicit = strings.TrimSuffix(strings.TrimSpace(explicit), p.opts.Extension)
		inst.filename = p.stem(explicit)
		inst.explicit = true
	} else {
		inst.filename = p.stem(kb.Title)
	}
	p.instances[kb] = inst
	p.order = append(p.order, inst)
	p.logger.Debug("render.instance.created",
		"title", kb.Title,
		"index", inst.index,
		"filename", inst.filename,
		"explicit_filename", inst.explicit,
	)
	return inst
}

func (p *pass) stem(name string) string {
	if stem := p.opts.TransformFilename(name); stem != "" {
		return stem
	}
	return fallbackStem
}

// assignFilenames makes every filename unique. Explicit names are claimed
// first so derived stems never take them.
func (p *pass) assignFilenames() {
	registry := newNameRegistry()
	claim := func(inst *instance) {
		name, collided := registry.claim(inst.filename)
		if collided {
			p.logger.Debug("render.filename.collision", "title", inst.kb.Title, "requested", inst.filename, "assigned", name)
		}
		inst.filename = name
	}
	for _, inst := range p.order {
		if inst.explicit {
			claim(inst)
		}
	}
	for _, inst := range p.order {
		if !inst.explicit {
			claim(inst)
		}
	}
}

// emitAll renders every emitted instance. Roots and force-emitted instances
// seed the queue; instances receive a file as soon as any other document
// materializes a link to them.
func (p *pass) emitAll() ([]interfaces.OutputFile, error) {
	for _, inst := range p.order {
		if inst.root || inst.kb.EmitCondition.Resolve(p.opts.DefaultEmitCondition) {
			p.enqueue(inst)
		}
	}

	texts := map[*instance]string{}
	for len(p.queue) > 0 {
		if err := p.ctx.Err(); err != nil {
			return nil, err
		}
		inst := p.queue[0]
		p.queue = p.queue[1:]

		tree := inst.emit(EmitContext{
			HeaderLevel: 1,
			Block:       true,
			host:        inst,
			inlining:    &inliningPath{inst: inst},
		})
		root := &mdast.Root{Children: assemble.Blocks(tree)}
		texts[inst] = mdast.ToMarkdown(root)
	}

	emitted := make([]*instance, 0, len(texts))
	for inst := range texts {
		emitted = append(emitted, inst)
	}
	sort.Slice(emitted, func(i, j int) bool { return emitted[i].index < emitted[j].index })

	files := make([]interfaces.OutputFile, 0, len(emitted))
	for _, inst := range emitted {
		files = append(files, interfaces.OutputFile{
			Path: p.outputPath(inst),
			Text: texts[inst],
		})
	}
	return files, nil
}

func (p *pass) enqueue(inst *instance) {
	if _, ok := p.queued[inst]; ok {
		return
	}
	p.queued[inst] = struct{}{}
	p.queue = append(p.queue, inst)
}

func (p *pass) outputPath(inst *instance) string {
	return path.Join(p.opts.directory(inst.kb), inst.filename+p.opts.Extension)
}

// linkURL materializes a link from scope, rendered inside host, to target.
func (p *pass) linkURL(target *instance, scope *instance, host *instance) string {
	switch {
	case scope.kb != target.kb:
		target.linkRefs[scope.kb] = struct{}{}
	case host != target:
		target.linkRefs[host.kb] = struct{}{}
	}
	if len(target.linkRefs) > 0 {
		p.enqueue(target)
	}
	return relativeURL(p.opts.directory(host.kb), p.outputPath(target))
}

// shouldEmbed resolves the effective embed condition of a site.
func (p *pass) shouldEmbed(site node.EmbedCondition, target *instance) bool {
	condition := node.FirstCondition(site, target.kb.EmbedCondition, p.opts.DefaultEmbedCondition)
	switch c := condition.(type) {
	case node.EmbedBool:
		return bool(c)
	case node.ReferenceCount:
		return len(target.refs) <= c.MaxReferenceCount
	case node.NoSeries:
		// Series-aware embedding is not defined yet.
		return false
	default:
		return false
	}
}
