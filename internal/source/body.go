package source

import (
	"regexp"
	"strings"

	"github.com/goliatone/go-kb/internal/builder"
	"github.com/goliatone/go-kb/internal/node"
	"github.com/goliatone/go-kb/internal/style"
)

var (
	inlineDirective = regexp.MustCompile(
		`(!?)\[\[([^\]|]+)(?:\|([^\]]*))?\]\]` +
			"|`([^`]+)`" +
			`|\[([^\]]+)\]\(((?:https?|mailto):[^)\s]+)\)` +
			`|\*\*([^*]+)\*\*` +
			`|~~([^~]+)~~`)
	fenceOpen   = regexp.MustCompile("^```\\s*([\\w+-]*)\\s*$")
	fenceClose  = regexp.MustCompile("^```\\s*$")
	remarkTitle = regexp.MustCompile(`^\[!(\w+)\]\s*$`)
)

// resolver maps document ids to their KBs.
type resolver interface {
	resolve(id string) (*node.KB, error)
}

// parseBody turns a markdown body into template parts for builder.Template:
// literal text stays a string, directives and block constructs become nodes.
func parseBody(body string, refs resolver) ([]any, error) {
	lines := strings.Split(strings.ReplaceAll(body, "\r\n", "\n"), "\n")
	parts := make([]any, 0, len(lines))
	var text strings.Builder

	flushText := func() error {
		if text.Len() == 0 {
			return nil
		}
		inline, err := parseInline(text.String(), refs)
		if err != nil {
			return err
		}
		parts = append(parts, inline...)
		text.Reset()
		return nil
	}

	for i := 0; i < len(lines); i++ {
		line := lines[i]
		switch {
		case fenceOpen.MatchString(line):
			lang := fenceOpen.FindStringSubmatch(line)[1]
			end := i + 1
			for end < len(lines) && !fenceClose.MatchString(lines[end]) {
				end++
			}
			if err := flushText(); err != nil {
				return nil, err
			}
			code := strings.Join(lines[i+1:min(end, len(lines))], "\n")
			parts = append(parts, style.CodeBlockLang(lang).Of(node.Text(code)))
			i = end
		case isQuoteLine(line):
			end := i
			quoted := make([]string, 0, 4)
			for end < len(lines) && isQuoteLine(lines[end]) {
				quoted = append(quoted, stripQuote(lines[end]))
				end++
			}
			if err := flushText(); err != nil {
				return nil, err
			}
			block, err := quoteBlock(quoted, refs)
			if err != nil {
				return nil, err
			}
			parts = append(parts, block)
			i = end - 1
		case isListLine(line):
			end := i
			items := make([]any, 0, 4)
			for end < len(lines) && isListLine(lines[end]) {
				item, err := parseInline(strings.TrimSpace(lines[end])[2:], refs)
				if err != nil {
					return nil, err
				}
				items = append(items, builder.Build(item...))
				end++
			}
			if err := flushText(); err != nil {
				return nil, err
			}
			parts = append(parts, builder.List(items...))
			i = end - 1
		default:
			text.WriteString(line)
			if i < len(lines)-1 {
				text.WriteByte('\n')
			}
		}
	}
	if err := flushText(); err != nil {
		return nil, err
	}
	return parts, nil
}

func isQuoteLine(line string) bool {
	return line == ">" || strings.HasPrefix(line, "> ")
}

func stripQuote(line string) string {
	return strings.TrimPrefix(strings.TrimPrefix(line, ">"), " ")
}

func isListLine(line string) bool {
	trimmed := strings.TrimSpace(line)
	return strings.HasPrefix(trimmed, "- ") && len(trimmed) > 2
}

// quoteBlock builds a quote, or a remark when the first line is a
// "[!theme]" marker.
func quoteBlock(lines []string, refs resolver) (*node.Block, error) {
	factory := style.Quote
	if len(lines) > 0 {
		if match := remarkTitle.FindStringSubmatch(lines[0]); match != nil {
			factory = style.Remark(strings.ToLower(match[1]))
			lines = lines[1:]
		}
	}
	content, err := parseInline(strings.Join(lines, "\n"), refs)
	if err != nil {
		return nil, err
	}
	return factory.Of(content...), nil
}

// parseInline splits text around inline directives.
func parseInline(text string, refs resolver) ([]any, error) {
	matches := inlineDirective.FindAllStringSubmatchIndex(text, -1)
	parts := make([]any, 0, 2*len(matches)+1)
	last := 0
	for _, m := range matches {
		if m[0] > last {
			parts = append(parts, text[last:m[0]])
		}
		last = m[1]

		group := func(n int) (string, bool) {
			if m[2*n] < 0 {
				return "", false
			}
			return text[m[2*n]:m[2*n+1]], true
		}

		if id, ok := group(2); ok {
			kb, err := refs.resolve(strings.TrimSpace(id))
			if err != nil {
				return nil, err
			}
			label, _ := group(3)
			label = strings.TrimSpace(label)
			if bang, _ := group(1); bang == "!" {
				parts = append(parts, kb.Embed(labelledFallback(label), nil))
			} else {
				parts = append(parts, builder.Link(kb, label))
			}
			continue
		}
		if code, ok := group(4); ok {
			parts = append(parts, style.Code.Of(code))
			continue
		}
		if label, ok := group(5); ok {
			target, _ := group(6)
			parts = append(parts, builder.Link(node.URL(target), label))
			continue
		}
		if strong, ok := group(7); ok {
			parts = append(parts, style.Em.Of(strong))
			continue
		}
		if deleted, ok := group(8); ok {
			parts = append(parts, style.Strike.Of(deleted))
		}
	}
	if last < len(text) {
		parts = append(parts, text[last:])
	}
	return parts, nil
}

func labelledFallback(label string) node.FallbackFunc {
	if label == "" {
		return node.BareLink
	}
	return func(link node.LinkFunc) node.Node {
		return link(label)
	}
}
