// Package assemble flattens emission trees into markdown nodes, merging
// adjacent inline runs into paragraphs.
package assemble

import (
	"strings"
	"unicode"

	"github.com/goliatone/go-kb/internal/mdast"
)

type state struct {
	// open is the paragraph receiving inline runs. It has already been
	// emitted, so appending to it updates the output in place.
	open *mdast.Paragraph
}

// Blocks assembles tree in block mode: inline runs are merged into
// paragraphs, bare inline nodes open paragraphs, and block nodes close the
// open paragraph. Leading whitespace of a paragraph and trailing whitespace
// at its close are trimmed.
func Blocks(tree mdast.Emission) []mdast.Block {
	return BlockContents(Nodes(tree))
}

// Nodes assembles tree in block mode and returns every emitted node,
// including ones that are neither block nor inline.
func Nodes(tree mdast.Emission) []mdast.Node {
	st := &state{}
	out := make([]mdast.Node, 0, 8)
	walk(tree, st, &out)
	st.close()
	return out
}

func walk(tree mdast.Emission, st *state, out *[]mdast.Node) {
	switch unit := tree.(type) {
	case nil:
	case mdast.Seq:
		for _, child := range unit {
			walk(child, st, out)
		}
	case mdast.ParagraphBreak:
		st.close()
	case *mdast.ParagraphFragment:
		if unit == nil {
			return
		}
		if st.open != nil {
			st.open.Children = append(st.open.Children, unit.Children...)
			return
		}
		paragraph := &mdast.Paragraph{Children: append([]mdast.Phrasing(nil), unit.Children...)}
		trimLeading(paragraph)
		st.open = paragraph
		*out = append(*out, paragraph)
	case *mdast.Paragraph:
		st.close()
		st.open = unit
		*out = append(*out, unit)
	case mdast.Block:
		st.close()
		*out = append(*out, unit)
	case mdast.Phrasing:
		if st.open != nil {
			st.open.Children = append(st.open.Children, unit)
			return
		}
		st.open = &mdast.Paragraph{Children: []mdast.Phrasing{unit}}
		*out = append(*out, st.open)
	case mdast.Node:
		*out = append(*out, unit)
	}
}

func (st *state) close() {
	if st.open == nil {
		return
	}
	trimTrailing(st.open)
	st.open = nil
}

// Inlines assembles tree in inline mode: the content of paragraphs and
// inline runs is collected as one flat inline sequence and block nodes are
// dropped.
func Inlines(tree mdast.Emission) []mdast.Phrasing {
	out := make([]mdast.Phrasing, 0, 4)
	collectInline(tree, &out)
	return out
}

func collectInline(tree mdast.Emission, out *[]mdast.Phrasing) {
	switch unit := tree.(type) {
	case nil:
	case mdast.Seq:
		for _, child := range unit {
			collectInline(child, out)
		}
	case *mdast.ParagraphFragment:
		if unit != nil {
			*out = append(*out, unit.Children...)
		}
	case *mdast.Paragraph:
		if unit != nil {
			*out = append(*out, unit.Children...)
		}
	case mdast.Phrasing:
		*out = append(*out, unit)
	}
}

// BlockContents keeps block nodes and groups runs of inline nodes into
// implicit paragraphs. Other nodes are dropped.
func BlockContents(nodes []mdast.Node) []mdast.Block {
	out := make([]mdast.Block, 0, len(nodes))
	var implicit *mdast.Paragraph
	flush := func() {
		if implicit != nil {
			out = append(out, implicit)
			implicit = nil
		}
	}
	for _, n := range nodes {
		switch v := n.(type) {
		case mdast.Block:
			flush()
			out = append(out, v)
		case mdast.Phrasing:
			if implicit == nil {
				implicit = &mdast.Paragraph{}
			}
			implicit.Children = append(implicit.Children, v)
		}
	}
	flush()
	return out
}

// TextContent returns the plain text of tree assembled in block or inline
// mode.
func TextContent(tree mdast.Emission, block bool) string {
	if !block {
		inlines := Inlines(tree)
		nodes := make([]mdast.Node, len(inlines))
		for i, n := range inlines {
			nodes[i] = n
		}
		return mdast.ToString(nodes...)
	}
	return mdast.ToString(Nodes(tree)...)
}

// trimLeading and trimTrailing replace the edge text node instead of
// mutating it, since emission trees may share text nodes.
func trimLeading(paragraph *mdast.Paragraph) {
	if len(paragraph.Children) == 0 {
		return
	}
	if text, ok := paragraph.Children[0].(*mdast.Text); ok {
		paragraph.Children[0] = &mdast.Text{Value: strings.TrimLeftFunc(text.Value, unicode.IsSpace)}
	}
}

func trimTrailing(paragraph *mdast.Paragraph) {
	last := len(paragraph.Children) - 1
	if last < 0 {
		return
	}
	if text, ok := paragraph.Children[last].(*mdast.Text); ok {
		paragraph.Children[last] = &mdast.Text{Value: strings.TrimRightFunc(text.Value, unicode.IsSpace)}
	}
}
