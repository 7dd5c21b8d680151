package mdast

import (
	"strings"
)

// ToMarkdown serializes a document. Blocks are separated by a blank line and
// the output ends with a newline unless the document is empty.
func ToMarkdown(root *Root) string {
	if root == nil || len(root.Children) == 0 {
		return ""
	}
	return joinBlocks(root.Children) + "\n"
}

func joinBlocks(blocks []Block) string {
	parts := make([]string, 0, len(blocks))
	for _, block := range blocks {
		if text := writeBlock(block); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, "\n\n")
}

func writeBlock(block Block) string {
	switch b := block.(type) {
	case *Paragraph:
		return writePhrasing(b.Children)
	case *Heading:
		depth := min(max(b.Depth, 1), 6)
		content := writePhrasing(b.Children)
		if content == "" {
			return strings.Repeat("#", depth)
		}
		return strings.Repeat("#", depth) + " " + strings.ReplaceAll(content, "\n", " ")
	case *Blockquote:
		return prefixLines(joinBlocks(b.Children), "> ", ">")
	case *List:
		items := make([]string, 0, len(b.Items))
		for _, item := range b.Items {
			items = append(items, writeListItem(item))
		}
		return strings.Join(items, "\n")
	case *Code:
		fence := fenceFor(b.Value, '`', 3)
		return fence + b.Lang + "\n" + b.Value + "\n" + fence
	default:
		return ""
	}
}

func writeListItem(item *ListItem) string {
	if item == nil {
		return "*"
	}
	content := joinBlocks(item.Children)
	if content == "" {
		return "*"
	}
	lines := strings.Split(content, "\n")
	for i := range lines {
		switch {
		case i == 0:
			lines[i] = "* " + lines[i]
		case lines[i] != "":
			lines[i] = "  " + lines[i]
		}
	}
	return strings.Join(lines, "\n")
}

func writePhrasing(children []Phrasing) string {
	var b strings.Builder
	for i, child := range children {
		b.WriteString(writeInline(child, i == 0))
	}
	return b.String()
}

func writeInline(node Phrasing, atStart bool) string {
	switch n := node.(type) {
	case *Text:
		return escapeText(n.Value, atStart)
	case *Strong:
		return "**" + writePhrasing(n.Children) + "**"
	case *Delete:
		return "~~" + writePhrasing(n.Children) + "~~"
	case *InlineCode:
		fence := fenceFor(n.Value, '`', 1)
		value := n.Value
		if strings.HasPrefix(value, "`") || strings.HasSuffix(value, "`") {
			value = " " + value + " "
		}
		return fence + value + fence
	case *Link:
		label := writePhrasing(n.Children)
		url := n.URL
		if url == "" || strings.ContainsAny(url, " \t\n") {
			url = "<" + url + ">"
		}
		if n.Title == "" {
			return "[" + label + "](" + url + ")"
		}
		return "[" + label + "](" + url + " \"" + strings.ReplaceAll(n.Title, `"`, `\"`) + "\")"
	default:
		return ""
	}
}

// fenceFor returns a run of marker longer than any run inside value and at
// least minimum long.
func fenceFor(value string, marker byte, minimum int) string {
	longest, current := 0, 0
	for i := 0; i < len(value); i++ {
		if value[i] == marker {
			current++
			longest = max(longest, current)
			continue
		}
		current = 0
	}
	return strings.Repeat(string(marker), max(minimum, longest+1))
}

func prefixLines(text, prefix, emptyPrefix string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if line == "" {
			lines[i] = emptyPrefix
			continue
		}
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n")
}

// escapeText escapes characters that would otherwise start markdown
// constructs. Line-start constructs are only escaped where a line begins.
func escapeText(value string, atStart bool) string {
	var b strings.Builder
	b.Grow(len(value))
	lineStart := atStart
	for i := 0; i < len(value); i++ {
		c := value[i]
		if lineStart {
			if end := orderedMarker(value, i); end > 0 {
				b.WriteString(value[i:end])
				b.WriteByte('\\')
				b.WriteByte(value[end])
				i = end
				lineStart = false
				continue
			}
		}
		switch c {
		case '\\', '`', '*', '[', ']', '<', '~':
			b.WriteByte('\\')
		case '&':
			if entityAt(value, i) {
				b.WriteByte('\\')
			}
		case '_':
			if wordBoundary(value, i) {
				b.WriteByte('\\')
			}
		case '#', '>':
			if lineStart {
				b.WriteByte('\\')
			}
		case '-', '+':
			if lineStart && (i+1 == len(value) || value[i+1] == ' ') {
				b.WriteByte('\\')
			}
		}
		b.WriteByte(c)
		if c == '\n' {
			lineStart = true
		} else if c != ' ' {
			lineStart = false
		}
	}
	return b.String()
}

// orderedMarker returns the index of the delimiter when value[i:] opens an
// ordered list item: one to nine digits, then '.' or ')', then a space, a
// tab, a newline or the end of the text. It returns -1 otherwise.
func orderedMarker(value string, i int) int {
	j := i
	for j < len(value) && j-i < 10 && isDigit(value[j]) {
		j++
	}
	if j == i || j-i > 9 || j == len(value) || (value[j] != '.' && value[j] != ')') {
		return -1
	}
	if next := j + 1; next < len(value) && value[next] != ' ' && value[next] != '\t' && value[next] != '\n' {
		return -1
	}
	return j
}

// entityAt reports whether value[i:] starts an HTML entity or numeric
// character reference such as &amp; &#35; or &#x23;.
func entityAt(value string, i int) bool {
	j := i + 1
	if j < len(value) && value[j] == '#' {
		j++
		hex := j < len(value) && (value[j] == 'x' || value[j] == 'X')
		if hex {
			j++
		}
		start := j
		for j < len(value) && (isDigit(value[j]) || hex && isHexLetter(value[j])) {
			j++
		}
		return j > start && j < len(value) && value[j] == ';'
	}
	start := j
	for j < len(value) && (isDigit(value[j]) || isLetter(value[j])) {
		j++
	}
	return j > start && isLetter(value[start]) && j < len(value) && value[j] == ';'
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isLetter(c byte) bool { return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' }

func isHexLetter(c byte) bool { return c >= 'a' && c <= 'f' || c >= 'A' && c <= 'F' }

func wordBoundary(value string, i int) bool {
	before := i == 0 || !isWordByte(value[i-1])
	after := i+1 == len(value) || !isWordByte(value[i+1])
	return before || after
}

func isWordByte(c byte) bool {
	return c == '_' || c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= 0x80
}
