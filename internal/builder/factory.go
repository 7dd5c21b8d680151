package builder

import "github.com/goliatone/go-kb/internal/node"

// Factory turns author input into a value of type T. T uses template mode,
// Of uses a plain argument list.
type Factory[T any] struct {
	build func(node.Node) T
}

// NewFactory wraps a constructor receiving the normalized fragment.
func NewFactory[T any](build func(node.Node) T) Factory[T] {
	if build == nil {
		panic("builder: factory constructor cannot be nil")
	}
	return Factory[T]{build: build}
}

// T builds from template-shaped arguments, see Template.
func (f Factory[T]) T(parts ...any) T {
	return f.build(Template(parts...))
}

// Of builds from a plain argument list, see Build.
func (f Factory[T]) Of(args ...any) T {
	return f.build(Build(args...))
}

// Doc produces plain content fragments.
var Doc = NewFactory(func(content node.Node) node.Node { return content })

// KBOption configures a KB created through New.
type KBOption func(*node.KB)

// WithEmbedCondition sets the KB's own embed condition.
func WithEmbedCondition(condition node.EmbedCondition) KBOption {
	return func(kb *node.KB) {
		kb.EmbedCondition = condition
	}
}

// WithEmitCondition forces or suppresses emitting the KB as its own file.
func WithEmitCondition(condition node.EmitCondition) KBOption {
	return func(kb *node.KB) {
		kb.EmitCondition = condition
	}
}

// New returns a factory for KBs titled title. Every call of the factory
// creates a distinct KB.
func New(title string, opts ...KBOption) Factory[*node.KB] {
	return NewFactory(func(content node.Node) *node.KB {
		kb := &node.KB{Title: title, Content: content}
		for _, opt := range opts {
			if opt != nil {
				opt(kb)
			}
		}
		return kb
	})
}

// AsKB returns a function lifting content into a KB titled title. A value
// that already is a KB is returned unchanged.
func AsKB(title string, opts ...KBOption) func(value any) *node.KB {
	factory := New(title, opts...)
	return func(value any) *node.KB {
		if kb, ok := value.(*node.KB); ok && kb != nil {
			return kb
		}
		return factory.Of(value)
	}
}

// Link creates a link to a KB or, for a string, to an external URL.
func Link(target any, label ...string) *node.Link {
	link := &node.Link{}
	switch t := target.(type) {
	case *node.KB:
		link.Target = t
	case node.URL:
		link.Target = t
	case string:
		link.Target = node.URL(t)
	default:
		panic("builder: link target must be a *node.KB or a URL string")
	}
	if len(label) > 0 {
		link.Label = label[0]
	}
	return link
}

// List creates a list. KB items become embeds deferring to the KB's own
// condition, everything else is normalized like Build arguments.
func List(items ...any) *node.List {
	list := &node.List{Items: make([]node.Node, 0, len(items))}
	for _, item := range items {
		switch v := item.(type) {
		case *node.KB:
			list.Items = append(list.Items, v.Embed(node.BareLink, nil))
		case node.Node:
			list.Items = append(list.Items, v)
		default:
			list.Items = append(list.Items, Build(v))
		}
	}
	return list
}

// Block returns a factory for blocks carrying style.
func Block(style any) Factory[*node.Block] {
	return NewFactory(func(content node.Node) *node.Block {
		return &node.Block{Content: content, Style: style}
	})
}

// Inline returns a factory for inline runs carrying style.
func Inline(style any) Factory[*node.Inline] {
	return NewFactory(func(content node.Node) *node.Inline {
		return &node.Inline{Content: content, Style: style}
	})
}
