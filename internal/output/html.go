package output

import (
	"bytes"
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"

	"github.com/goliatone/go-kb/pkg/interfaces"
)

// HTMLExtension replaces the markdown extension of converted files.
const HTMLExtension = ".html"

// ParseOptions configures the markdown to HTML conversion.
type ParseOptions struct {
	// Extensions names goldmark extensions; empty selects GFM, linkify and
	// task lists.
	Extensions []string
	HardWraps  bool
	// Unsafe keeps raw HTML found in the markdown.
	Unsafe bool
	// SourceExtension is the suffix of rendered markdown files, ".md" when
	// empty. Relative links ending in it are pointed at the HTML copies.
	SourceExtension string
}

// HTML converts rendered markdown files into HTML files at the same paths
// with HTMLExtension. Relative links between documents follow the rename.
func HTML(files []interfaces.OutputFile, opts ParseOptions) ([]interfaces.OutputFile, error) {
	source := opts.SourceExtension
	if source == "" {
		source = ".md"
	}
	engine := newGoldmarkEngine(opts, source)

	out := make([]interfaces.OutputFile, 0, len(files))
	for _, file := range files {
		var buf bytes.Buffer
		if err := engine.Convert([]byte(file.Text), &buf); err != nil {
			return nil, fmt.Errorf("output: convert %s: %w", file.Path, err)
		}
		out = append(out, interfaces.OutputFile{
			Path: swapExtension(file.Path, source),
			Text: buf.String(),
		})
	}
	return out, nil
}

func swapExtension(name, source string) string {
	return strings.TrimSuffix(name, source) + HTMLExtension
}

func newGoldmarkEngine(opts ParseOptions, source string) goldmark.Markdown {
	parserOptions := []parser.Option{
		parser.WithAutoHeadingID(),
		parser.WithASTTransformers(util.Prioritized(linkRewriter{source: source}, 100)),
	}

	rendererOptions := []renderer.Option{}
	if opts.HardWraps {
		rendererOptions = append(rendererOptions, html.WithHardWraps())
	}
	if opts.Unsafe {
		rendererOptions = append(rendererOptions, html.WithUnsafe())
	}

	engineOptions := []goldmark.Option{
		goldmark.WithParserOptions(parserOptions...),
	}
	if len(rendererOptions) > 0 {
		engineOptions = append(engineOptions, goldmark.WithRendererOptions(rendererOptions...))
	}
	if exts := collectExtensions(opts.Extensions); len(exts) > 0 {
		engineOptions = append(engineOptions, goldmark.WithExtensions(exts...))
	}
	return goldmark.New(engineOptions...)
}

// linkRewriter points relative document links at the converted files.
type linkRewriter struct {
	source string
}

func (r linkRewriter) Transform(doc *ast.Document, _ text.Reader, _ parser.Context) {
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if link, ok := n.(*ast.Link); ok {
			link.Destination = []byte(r.rewrite(string(link.Destination)))
		}
		return ast.WalkContinue, nil
	})
}

func (r linkRewriter) rewrite(destination string) string {
	parsed, err := url.Parse(destination)
	if err != nil || parsed.Scheme != "" || parsed.Host != "" {
		return destination
	}
	if path.Ext(parsed.Path) != r.source {
		return destination
	}
	parsed.Path = swapExtension(parsed.Path, r.source)
	return parsed.String()
}

var extensionRegistry = map[string]goldmark.Extender{
	"gfm":           extension.GFM,
	"table":         extension.Table,
	"tables":        extension.Table,
	"strikethrough": extension.Strikethrough,
	"linkify":       extension.Linkify,
	"autolink":      extension.Linkify,
	"tasklist":      extension.TaskList,
	"definition":    extension.DefinitionList,
	"footnote":      extension.Footnote,
}

func collectExtensions(names []string) []goldmark.Extender {
	if len(names) == 0 {
		return []goldmark.Extender{
			extension.GFM,
			extension.Linkify,
			extension.TaskList,
		}
	}

	var extenders []goldmark.Extender
	seen := map[string]struct{}{}
	for _, name := range names {
		key := strings.ToLower(strings.TrimSpace(name))
		if _, ok := seen[key]; ok || key == "" {
			continue
		}
		if ext, ok := extensionRegistry[key]; ok {
			extenders = append(extenders, ext)
			seen[key] = struct{}{}
		}
	}
	return extenders
}
