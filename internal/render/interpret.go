package render

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/goliatone/go-kb/internal/assemble"
	"github.com/goliatone/go-kb/internal/mdast"
	"github.com/goliatone/go-kb/internal/node"
	"github.com/goliatone/go-kb/internal/style"
)

const maxHeadingDepth = 6

var (
	paragraphSeparator = regexp.MustCompile(`(?:\r?\n\s*){2,}`)
	inlineLineBreak    = regexp.MustCompile(`\r?\n\s*`)
)

// EmitContext is the position an emit function renders into.
type EmitContext struct {
	// HeaderLevel is the depth of the next document heading.
	HeaderLevel int
	// Block is false inside inline styles, links and inline lists.
	Block bool
	// CodeText renders text verbatim and links as their labels.
	CodeText bool

	host     *instance
	inlining *inliningPath
}

func (c EmitContext) nested() EmitContext {
	c.HeaderLevel++
	return c
}

func (c EmitContext) inline() EmitContext {
	c.Block = false
	return c
}

func (c EmitContext) code() EmitContext {
	c.CodeText = true
	return c
}

// inliningPath is the chain of documents whose content is being inlined at
// the current emission point, starting with the emitted document.
type inliningPath struct {
	inst   *instance
	parent *inliningPath
}

func (p *inliningPath) contains(inst *instance) bool {
	for cur := p; cur != nil; cur = cur.parent {
		if cur.inst == inst {
			return true
		}
	}
	return false
}

func (p *inliningPath) push(inst *instance) *inliningPath {
	return &inliningPath{inst: inst, parent: p}
}

// emitFunc produces a fresh emission tree for a context. Emission trees are
// never shared between calls, so assembly may update them in place.
type emitFunc func(EmitContext) mdast.Emission

func emitNothing(EmitContext) mdast.Emission { return nil }

type instance struct {
	kb       *node.KB
	index    int
	filename string
	explicit bool
	root     bool
	// refs holds every other document resolving this one, linkRefs the ones
	// that rendered a link to it and embedRefs the ones that inlined it.
	refs      map[*node.KB]struct{}
	linkRefs  map[*node.KB]struct{}
	embedRefs map[*node.KB]struct{}
	emit      emitFunc
}

// renderDocument interprets the content of inst once. The resulting emit
// function opens the document with its title heading in block position.
func (p *pass) renderDocument(inst *instance) (emitFunc, error) {
	content, err := p.interpret(inst, inst.kb.Content)
	if err != nil {
		return nil, err
	}
	title := inst.kb.Title
	return func(ctx EmitContext) mdast.Emission {
		body := content(ctx.nested())
		if !ctx.Block {
			return body
		}
		return mdast.Seq{
			&mdast.Heading{
				Depth:    headingDepth(ctx.HeaderLevel),
				Children: []mdast.Phrasing{&mdast.Text{Value: title}},
			},
			body,
		}
	}, nil
}

func headingDepth(level int) int {
	switch {
	case level < 1:
		return 1
	case level > maxHeadingDepth:
		return maxHeadingDepth
	default:
		return level
	}
}

// interpret turns content of scope into an emit function, discovering every
// KB it links to or embeds.
func (p *pass) interpret(scope *instance, content node.Node) (emitFunc, error) {
	if err := p.ctx.Err(); err != nil {
		return nil, err
	}
	switch n := content.(type) {
	case nil:
		return emitNothing, nil
	case node.Text:
		return renderText(string(n)), nil
	case node.Fragment:
		return p.renderFragment(scope, n)
	case *node.Link:
		if n == nil {
			return nil, contractViolation(ErrUnknownNode, "nil *node.Link")
		}
		return p.renderLink(scope, n)
	case *node.Embed:
		if n == nil {
			return nil, contractViolation(ErrUnknownNode, "nil *node.Embed")
		}
		return p.renderEmbed(scope, n)
	case *node.List:
		if n == nil {
			return nil, contractViolation(ErrUnknownNode, "nil *node.List")
		}
		return p.renderList(scope, n)
	case *node.Block:
		if n == nil {
			return nil, contractViolation(ErrUnknownNode, "nil *node.Block")
		}
		return p.renderBlock(scope, n)
	case *node.Inline:
		if n == nil {
			return nil, contractViolation(ErrUnknownNode, "nil *node.Inline")
		}
		return p.renderInline(scope, n)
	case *node.Lazy:
		if n == nil {
			return nil, contractViolation(ErrUnknownNode, "nil *node.Lazy")
		}
		resolved, err := p.lazies.resolve(p.ctx, n)
		if err != nil {
			return nil, lazyFailure(scope.kb.Title, err)
		}
		return p.expand(scope, n, resolved)
	default:
		return nil, contractViolation(ErrUnknownNode, fmt.Sprintf("%T", content))
	}
}

// interpretAll forces the lazy siblings of children together and interprets
// them in source order.
func (p *pass) interpretAll(scope *instance, children []node.Node) ([]emitFunc, error) {
	resolved, err := p.lazies.resolveAll(p.ctx, children)
	if err != nil {
		return nil, lazyFailure(scope.kb.Title, err)
	}
	emits := make([]emitFunc, len(resolved))
	for i, child := range resolved {
		var emit emitFunc
		if lazy, ok := children[i].(*node.Lazy); ok && lazy != nil {
			emit, err = p.expand(scope, lazy, child)
		} else {
			emit, err = p.interpret(scope, child)
		}
		if err != nil {
			return nil, err
		}
		emits[i] = emit
	}
	return emits, nil
}

// expand interprets the content lazy resolved to. Content that contains
// lazy again would expand without end, so it fails.
func (p *pass) expand(scope *instance, lazy *node.Lazy, resolved node.Node) (emitFunc, error) {
	if _, active := p.expanding[lazy]; active {
		return nil, lazyFailure(scope.kb.Title, fmt.Errorf("%w: content contains its own producer", ErrLazyProducer))
	}
	p.expanding[lazy] = struct{}{}
	defer delete(p.expanding, lazy)
	return p.interpret(scope, resolved)
}

func renderText(text string) emitFunc {
	return func(ctx EmitContext) mdast.Emission {
		switch {
		case ctx.CodeText:
			return &mdast.Text{Value: text}
		case !ctx.Block:
			return &mdast.Text{Value: inlineLineBreak.ReplaceAllString(text, " ")}
		}
		parts := paragraphSeparator.Split(text, -1)
		out := make(mdast.Seq, 0, 2*len(parts))
		for i, part := range parts {
			if i > 0 {
				out = append(out, mdast.ParagraphBreak{})
			}
			if part != "" {
				out = append(out, &mdast.ParagraphFragment{
					Children: []mdast.Phrasing{&mdast.Text{Value: part}},
				})
			}
		}
		return out
	}
}

func (p *pass) renderFragment(scope *instance, fragment node.Fragment) (emitFunc, error) {
	emits, err := p.interpretAll(scope, fragment)
	if err != nil {
		return nil, err
	}
	return func(ctx EmitContext) mdast.Emission {
		out := make(mdast.Seq, len(emits))
		for i, emit := range emits {
			out[i] = emit(ctx)
		}
		return out
	}, nil
}

func (p *pass) renderLink(scope *instance, link *node.Link) (emitFunc, error) {
	switch target := link.Target.(type) {
	case node.URL:
		url := string(target)
		label := labelOr(link.Label, url)
		return func(ctx EmitContext) mdast.Emission {
			if ctx.CodeText {
				return &mdast.Text{Value: label}
			}
			return newLink(url, label)
		}, nil
	case *node.KB:
		inst, err := p.ensure(target, scope.kb)
		if err != nil {
			return nil, err
		}
		label := labelOr(link.Label, target.Title)
		return func(ctx EmitContext) mdast.Emission {
			if ctx.CodeText {
				return &mdast.Text{Value: label}
			}
			return newLink(p.linkURL(inst, scope, ctx.host), label)
		}, nil
	default:
		return nil, contractViolation(ErrUnknownNode, fmt.Sprintf("link target %T", link.Target))
	}
}

func newLink(url, label string) *mdast.Link {
	return &mdast.Link{
		URL:      url,
		Title:    label,
		Children: []mdast.Phrasing{&mdast.Text{Value: label}},
	}
}

func labelOr(label, fallback string) string {
	if label != "" {
		return label
	}
	return fallback
}

// renderEmbed decides per emission whether to inline the target or render
// the fallback. The fallback is interpreted once, up front.
func (p *pass) renderEmbed(scope *instance, embed *node.Embed) (emitFunc, error) {
	if embed.Target == nil {
		return nil, contractViolation(ErrNilDocument, "embed target is nil in "+strconv.Quote(scope.kb.Title))
	}
	target, err := p.ensure(embed.Target, scope.kb)
	if err != nil {
		return nil, err
	}

	fallback := embed.Fallback
	if fallback == nil {
		fallback = node.BareLink
	}
	kb := embed.Target
	linkBack, err := p.interpret(scope, fallback(func(label string) *node.Link {
		return &node.Link{Target: kb, Label: label}
	}))
	if err != nil {
		return nil, err
	}

	condition := embed.Condition
	return func(ctx EmitContext) mdast.Emission {
		if ctx.inlining.contains(target) || !p.shouldEmbed(condition, target) {
			return linkBack(ctx)
		}
		if scope != target {
			target.embedRefs[scope.kb] = struct{}{}
		}
		inner := ctx
		inner.inlining = ctx.inlining.push(target)
		return target.emit(inner)
	}, nil
}

func (p *pass) renderList(scope *instance, list *node.List) (emitFunc, error) {
	items, err := p.interpretAll(scope, list.Items)
	if err != nil {
		return nil, err
	}
	return func(ctx EmitContext) mdast.Emission {
		switch {
		case ctx.Block && ctx.CodeText:
			out := make(mdast.Seq, 0, 3*len(items))
			for i, item := range items {
				if i > 0 {
					out = append(out, &mdast.Text{Value: "\n"})
				}
				out = append(out, &mdast.Text{Value: "- "}, item(ctx))
			}
			return out
		case ctx.Block:
			out := &mdast.List{Items: make([]*mdast.ListItem, len(items))}
			for i, item := range items {
				out.Items[i] = &mdast.ListItem{Children: assemble.Blocks(item(ctx))}
			}
			return out
		default:
			out := make(mdast.Seq, 0, 2*len(items))
			for i, item := range items {
				if i > 0 {
					out = append(out, &mdast.Text{Value: ", "})
				}
				out = append(out, item(ctx))
			}
			return out
		}
	}, nil
}

func (p *pass) renderBlock(scope *instance, block *node.Block) (emitFunc, error) {
	content, err := p.interpret(scope, block.Content)
	if err != nil {
		return nil, err
	}
	decoded, ok := style.DecodeBlockStyle(block.Style)
	if !ok {
		return content, nil
	}

	switch decoded.Class {
	case style.BlockCode:
		lang := decoded.Language
		return func(ctx EmitContext) mdast.Emission {
			if !ctx.Block {
				return &mdast.InlineCode{Value: assemble.TextContent(content(ctx.code()), false)}
			}
			return &mdast.Code{Lang: lang, Value: assemble.TextContent(content(ctx.code()), true)}
		}, nil
	case style.BlockQuote:
		return func(ctx EmitContext) mdast.Emission {
			if !ctx.Block {
				return content(ctx)
			}
			return &mdast.Blockquote{Children: assemble.Blocks(content(ctx))}
		}, nil
	case style.BlockRemark:
		prefix := p.opts.remarkPrefix(decoded.Theme)
		return func(ctx EmitContext) mdast.Emission {
			if !ctx.Block {
				return mdast.Seq{&mdast.Text{Value: prefix}, content(ctx)}
			}
			return &mdast.Blockquote{Children: assemble.Blocks(mdast.Seq{
				&mdast.ParagraphFragment{Children: []mdast.Phrasing{&mdast.Text{Value: prefix}}},
				content(ctx),
			})}
		}, nil
	default:
		return content, nil
	}
}

func (p *pass) renderInline(scope *instance, inline *node.Inline) (emitFunc, error) {
	content, err := p.interpret(scope, inline.Content)
	if err != nil {
		return nil, err
	}
	decoded, ok := style.DecodeInlineStyle(inline.Style)
	if !ok {
		return content, nil
	}

	switch decoded.Class {
	case style.InlineEmphasis:
		return func(ctx EmitContext) mdast.Emission {
			return &mdast.Strong{Children: assemble.Inlines(content(ctx.inline()))}
		}, nil
	case style.InlineStrikethrough:
		return func(ctx EmitContext) mdast.Emission {
			return &mdast.Delete{Children: assemble.Inlines(content(ctx.inline()))}
		}, nil
	case style.InlineCode:
		return func(ctx EmitContext) mdast.Emission {
			return &mdast.InlineCode{Value: assemble.TextContent(content(ctx.inline().code()), false)}
		}, nil
	default:
		return content, nil
	}
}

func itoa(i int) string {
	return strconv.Itoa(i)
}
