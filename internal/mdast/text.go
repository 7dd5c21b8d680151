package mdast

import "strings"

// ToString concatenates the textual content of nodes without separators.
func ToString(nodes ...Node) string {
	var b strings.Builder
	for _, n := range nodes {
		writeString(&b, n)
	}
	return b.String()
}

func writeString(b *strings.Builder, n Node) {
	switch v := n.(type) {
	case *Text:
		b.WriteString(v.Value)
	case *InlineCode:
		b.WriteString(v.Value)
	case *Code:
		b.WriteString(v.Value)
	case *Root:
		for _, child := range v.Children {
			writeString(b, child)
		}
	case *Paragraph:
		writePhrasingString(b, v.Children)
	case *Heading:
		writePhrasingString(b, v.Children)
	case *Strong:
		writePhrasingString(b, v.Children)
	case *Delete:
		writePhrasingString(b, v.Children)
	case *Link:
		writePhrasingString(b, v.Children)
	case *Blockquote:
		for _, child := range v.Children {
			writeString(b, child)
		}
	case *List:
		for _, item := range v.Items {
			writeString(b, item)
		}
	case *ListItem:
		if v == nil {
			return
		}
		for _, child := range v.Children {
			writeString(b, child)
		}
	}
}

func writePhrasingString(b *strings.Builder, children []Phrasing) {
	for _, child := range children {
		writeString(b, child)
	}
}
