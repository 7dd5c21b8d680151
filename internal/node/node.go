package node

import "context"

// Node is the content of a document. A nil Node renders nothing.
type Node interface {
	isNode()
}

// Text is primitive prose.
type Text string

// Fragment is an ordered sequence of nodes rendered as their concatenation.
type Fragment []Node

// Link references either an external URL or another KB.
type Link struct {
	Target LinkTarget
	// Label overrides the text of the link. Empty means the URL or the
	// target title.
	Label string
}

// LinkFunc builds a Link back to an embed target. An empty label keeps the
// target title.
type LinkFunc func(label string) *Link

// FallbackFunc produces the content rendered in place of an embed that
// resolves to a link.
type FallbackFunc func(link LinkFunc) Node

// Embed inlines a KB or degrades to a link depending on Condition.
type Embed struct {
	Target    *KB
	Condition EmbedCondition
	Fallback  FallbackFunc
}

// List is an ordered list of items.
type List struct {
	Items []Node
}

// Block wraps content in a block-level style. Style is opaque to the model
// and decoded by the style codec.
type Block struct {
	Content Node
	Style   any
}

// Inline wraps content in an inline style.
type Inline struct {
	Content Node
	Style   any
}

// Producer yields deferred content. It may block; the engine calls it at most
// once per render call.
type Producer func(ctx context.Context) (Node, error)

// Lazy defers the production of content until the engine reaches it.
type Lazy struct {
	Produce Producer
}

func (Text) isNode()     {}
func (Fragment) isNode() {}
func (*Link) isNode()    {}
func (*Embed) isNode()   {}
func (*List) isNode()    {}
func (*Block) isNode()   {}
func (*Inline) isNode()  {}
func (*Lazy) isNode()    {}

// LinkTarget is either a URL or a *KB.
type LinkTarget interface {
	isLinkTarget()
}

// URL is an external link target used verbatim.
type URL string

func (URL) isLinkTarget() {}
func (*KB) isLinkTarget() {}

// BareLink is the fallback used when an embed has no custom one: a link to
// the target labelled with its title.
func BareLink(link LinkFunc) Node {
	return link("")
}
