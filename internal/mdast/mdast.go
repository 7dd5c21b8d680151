// Package mdast is the markdown syntax tree produced by the render engine and
// the emission units the engine builds before paragraph assembly.
package mdast

// Emission is a node of the emission tree: nil, a Seq, a
// *ParagraphFragment or any markdown Node.
type Emission interface {
	emission()
}

// Seq is a nested ordered sequence of emissions.
type Seq []Emission

// ParagraphFragment is an inline run that is not wrapped in a paragraph yet
// and merges with adjacent runs during assembly.
type ParagraphFragment struct {
	Children []Phrasing
}

// ParagraphBreak closes the open paragraph so the next inline run starts a
// new one.
type ParagraphBreak struct{}

// Node is any markdown node.
type Node interface {
	Emission
	Type() string
}

// Phrasing is inline content.
type Phrasing interface {
	Node
	phrasing()
}

// Block is flow content.
type Block interface {
	Node
	block()
}

type (
	// Root holds a whole document.
	Root struct {
		Children []Block
	}

	Paragraph struct {
		Children []Phrasing
	}

	Heading struct {
		Depth    int
		Children []Phrasing
	}

	Blockquote struct {
		Children []Block
	}

	List struct {
		Items []*ListItem
	}

	ListItem struct {
		Children []Block
	}

	Code struct {
		Lang  string
		Value string
	}

	Text struct {
		Value string
	}

	Strong struct {
		Children []Phrasing
	}

	Delete struct {
		Children []Phrasing
	}

	InlineCode struct {
		Value string
	}

	Link struct {
		URL      string
		Title    string
		Children []Phrasing
	}
)

func (Seq) emission()                {}
func (*ParagraphFragment) emission() {}
func (ParagraphBreak) emission()     {}
func (*Root) emission()              {}
func (*Paragraph) emission()         {}
func (*Heading) emission()           {}
func (*Blockquote) emission()        {}
func (*List) emission()              {}
func (*ListItem) emission()          {}
func (*Code) emission()              {}
func (*Text) emission()              {}
func (*Strong) emission()            {}
func (*Delete) emission()            {}
func (*InlineCode) emission()        {}
func (*Link) emission()              {}

func (*Root) Type() string       { return "root" }
func (*Paragraph) Type() string  { return "paragraph" }
func (*Heading) Type() string    { return "heading" }
func (*Blockquote) Type() string { return "blockquote" }
func (*List) Type() string       { return "list" }
func (*ListItem) Type() string   { return "listItem" }
func (*Code) Type() string       { return "code" }
func (*Text) Type() string       { return "text" }
func (*Strong) Type() string     { return "strong" }
func (*Delete) Type() string     { return "delete" }
func (*InlineCode) Type() string { return "inlineCode" }
func (*Link) Type() string       { return "link" }

func (*Paragraph) block()  {}
func (*Heading) block()    {}
func (*Blockquote) block() {}
func (*List) block()       {}
func (*Code) block()       {}

func (*Text) phrasing()       {}
func (*Strong) phrasing()     {}
func (*Delete) phrasing()     {}
func (*InlineCode) phrasing() {}
func (*Link) phrasing()       {}
