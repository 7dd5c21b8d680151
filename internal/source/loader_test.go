package source

import (
	"context"
	"errors"
	"testing"
	"testing/fstest"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-kb/internal/node"
	"github.com/goliatone/go-kb/internal/style"
)

func loadProject(t *testing.T, files fstest.MapFS) *Project {
	t.Helper()
	project, err := NewLoader(files, LoaderConfig{}).Load(context.Background(), ".")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return project
}

func mustDocument(t *testing.T, project *Project, id string) *Document {
	t.Helper()
	doc, ok := project.Document(id)
	if !ok {
		t.Fatalf("document %q not loaded", id)
	}
	return doc
}

func collect[T node.Node](n node.Node) []T {
	var found []T
	var walk func(node.Node)
	walk = func(n node.Node) {
		if typed, ok := n.(T); ok {
			found = append(found, typed)
		}
		switch v := n.(type) {
		case node.Fragment:
			for _, child := range v {
				walk(child)
			}
		case *node.List:
			for _, item := range v.Items {
				walk(item)
			}
		case *node.Block:
			walk(v.Content)
		case *node.Inline:
			walk(v.Content)
		}
	}
	walk(n)
	return found
}

func TestLoadResolvesLinksAndEmbeds(t *testing.T) {
	project := loadProject(t, fstest.MapFS{
		"main.md": {Data: []byte("---\nid: main\ntitle: Main\nroot: true\n---\nSee [[sub]] and [[sub|the sub page]].\n\n![[sub]]\n")},
		"sub.md":  {Data: []byte("---\nid: sub\ntitle: Sub\n---\nBack to [[main]].\n")},
	})

	main := mustDocument(t, project, "main")
	sub := mustDocument(t, project, "sub")

	links := collect[*node.Link](main.KB.Content)
	if len(links) != 2 {
		t.Fatalf("expected two links, got %d", len(links))
	}
	for _, link := range links {
		if link.Target != node.LinkTarget(sub.KB) {
			t.Fatalf("expected link to sub, got %#v", link.Target)
		}
	}
	if links[1].Label != "the sub page" {
		t.Fatalf("unexpected label %q", links[1].Label)
	}

	embeds := collect[*node.Embed](main.KB.Content)
	if len(embeds) != 1 || embeds[0].Target != sub.KB {
		t.Fatalf("expected one embed of sub, got %#v", embeds)
	}

	back := collect[*node.Link](sub.KB.Content)
	if len(back) != 1 || back[0].Target != node.LinkTarget(main.KB) {
		t.Fatalf("expected cyclic link back to main, got %#v", back)
	}
}

func TestLoadDefaultsIDsFromPaths(t *testing.T) {
	project := loadProject(t, fstest.MapFS{
		"guide/intro.md": {Data: []byte("---\ntitle: Intro\n---\nSee [[guide/setup]].\n")},
		"guide/setup.md": {Data: []byte("---\ntitle: Setup\n---\nSteps.\n")},
		"notes.txt":      {Data: []byte("ignored")},
	})

	var ids []string
	for _, doc := range project.Documents {
		ids = append(ids, doc.ID)
	}
	if diff := cmp.Diff([]string{"guide/intro", "guide/setup"}, ids); diff != "" {
		t.Fatalf("ids mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadRejectsDuplicateIDs(t *testing.T) {
	_, err := NewLoader(fstest.MapFS{
		"a.md": {Data: []byte("---\nid: same\ntitle: A\n---\n")},
		"b.md": {Data: []byte("---\nid: same\ntitle: B\n---\n")},
	}, LoaderConfig{}).Load(context.Background(), ".")
	if !errors.Is(err, ErrDuplicateID) {
		t.Fatalf("expected ErrDuplicateID, got %v", err)
	}
	if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation category, got %v", err)
	}
}

func TestLoadRejectsUnknownReferences(t *testing.T) {
	_, err := NewLoader(fstest.MapFS{
		"a.md": {Data: []byte("---\nid: a\ntitle: A\n---\nSee [[missing]].\n")},
	}, LoaderConfig{}).Load(context.Background(), ".")
	if !errors.Is(err, ErrUnknownReference) {
		t.Fatalf("expected ErrUnknownReference, got %v", err)
	}
	if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation category, got %v", err)
	}
}

func TestLoadReportsEveryUnknownReference(t *testing.T) {
	_, err := NewLoader(fstest.MapFS{
		"a.md": {Data: []byte("---\nid: a\ntitle: A\n---\nSee [[gone]].\n")},
		"b.md": {Data: []byte("---\nid: b\ntitle: B\n---\n![[lost]] and [[a]]\n")},
	}, LoaderConfig{}).Load(context.Background(), ".")
	if !errors.Is(err, ErrUnknownReference) {
		t.Fatalf("expected ErrUnknownReference, got %v", err)
	}
	var joined interface{ Unwrap() []error }
	if !errors.As(err, &joined) {
		t.Fatalf("expected a combined error, got %T", err)
	}
	problems := joined.Unwrap()
	if len(problems) != 2 {
		t.Fatalf("expected one problem per broken reference, got %v", problems)
	}
	for _, problem := range problems {
		if !errors.Is(problem, ErrUnknownReference) {
			t.Fatalf("unexpected problem %v", problem)
		}
	}
}

func TestLoadRejectsInvalidFrontMatter(t *testing.T) {
	cases := map[string]string{
		"missing title": "---\nid: a\n---\nbody\n",
		"bad embed":     "---\nid: a\ntitle: A\nembed: sometimes\n---\n",
		"bad emit":      "---\nid: a\ntitle: A\nemit: 3\n---\n",
		"absolute path": "---\nid: a\ntitle: A\npath: /etc\n---\n",
		"bad id":        "---\nid: \"-a\"\ntitle: A\n---\n",
	}
	for name, source := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := NewLoader(fstest.MapFS{"a.md": {Data: []byte(source)}}, LoaderConfig{}).Load(context.Background(), ".")
			if !errors.Is(err, ErrInvalidDocument) {
				t.Fatalf("expected ErrInvalidDocument, got %v", err)
			}
		})
	}
}

func TestLoadAppliesFrontMatterSettings(t *testing.T) {
	project := loadProject(t, fstest.MapFS{
		"docs/a.md": {Data: []byte("---\nid: a\ntitle: A\nembed:\n  max_references: 2\nemit: always\nfilename: first\npath: guide\n---\n")},
		"docs/b.md": {Data: []byte("---\nid: b\ntitle: B\nembed: no_series\nemit: false\n---\n")},
	})

	a := mustDocument(t, project, "a")
	if a.Path != "docs/a.md" {
		t.Fatalf("unexpected path %q", a.Path)
	}
	if a.KB.EmbedCondition != (node.ReferenceCount{MaxReferenceCount: 2}) {
		t.Fatalf("unexpected embed condition %#v", a.KB.EmbedCondition)
	}
	if a.KB.EmitCondition != node.EmitAlways {
		t.Fatalf("unexpected emit condition %v", a.KB.EmitCondition)
	}
	if project.Filenames[a.KB] != "first" {
		t.Fatalf("expected explicit filename, got %q", project.Filenames[a.KB])
	}
	if project.Paths[a.KB] != "guide" {
		t.Fatalf("expected front matter path, got %q", project.Paths[a.KB])
	}

	b := mustDocument(t, project, "b")
	if _, ok := b.KB.EmbedCondition.(node.NoSeries); !ok {
		t.Fatalf("expected no_series condition, got %#v", b.KB.EmbedCondition)
	}
	if b.KB.EmitCondition != node.EmitNever {
		t.Fatalf("unexpected emit condition %v", b.KB.EmitCondition)
	}
}

func TestProjectRootsAndDirectoryPaths(t *testing.T) {
	project := loadProject(t, fstest.MapFS{
		"a.md": {Data: []byte("---\nid: a\ntitle: A\nroot: true\npath: from-front-matter\n---\n")},
		"b.md": {Data: []byte("---\nid: b\ntitle: B\n---\n")},
		"c.md": {Data: []byte("---\nid: c\ntitle: C\n---\n")},
	})
	a := mustDocument(t, project, "a")
	b := mustDocument(t, project, "b")

	roots, err := project.Roots("b", "a", "b")
	if err != nil {
		t.Fatalf("Roots: %v", err)
	}
	if len(roots) != 2 || roots[0] != a.KB || roots[1] != b.KB {
		t.Fatalf("expected front matter root first without duplicates, got %v", roots)
	}
	if _, err := project.Roots("missing"); !errors.Is(err, ErrUnknownReference) {
		t.Fatalf("expected ErrUnknownReference, got %v", err)
	}

	paths, err := project.DirectoryPaths(map[string]string{"*": "all", "a": "config", "b": "bee"})
	if err != nil {
		t.Fatalf("DirectoryPaths: %v", err)
	}
	if paths[nil] != "all" || paths[b.KB] != "bee" || paths[a.KB] != "from-front-matter" {
		t.Fatalf("unexpected paths %v", paths)
	}
	if _, err := project.DirectoryPaths(map[string]string{"zzz": "x"}); !errors.Is(err, ErrUnknownReference) {
		t.Fatalf("expected ErrUnknownReference, got %v", err)
	}
}

func TestLoadHonoursSubdirectoryAndPattern(t *testing.T) {
	files := fstest.MapFS{
		"content/a.markdown": {Data: []byte("---\ntitle: A\n---\n")},
		"content/b.md":       {Data: []byte("---\ntitle: B\n---\n")},
		"other/c.markdown":   {Data: []byte("---\ntitle: C\n---\n")},
	}
	project, err := NewLoader(files, LoaderConfig{Pattern: "*.markdown"}).Load(context.Background(), "content")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(project.Documents) != 1 || project.Documents[0].ID != "a" {
		t.Fatalf("expected only content/a.markdown, got %+v", project.Documents)
	}
}

func TestLoadHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewLoader(fstest.MapFS{"a.md": {Data: []byte("---\ntitle: A\n---\n")}}, LoaderConfig{}).Load(ctx, ".")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestParseBodyBlocks(t *testing.T) {
	body := "Intro with `code`, **bold** and ~~gone~~ plus [site](https://example.com).\n" +
		"\n" +
		"```go\nfmt.Println(1)\n```\n" +
		"> quoted\n> twice\n" +
		"\n" +
		"> [!NOTE]\n> careful\n" +
		"\n" +
		"- one\n- two\n"

	parts, err := parseBody(body, projectResolver{project: &Project{byID: map[string]*Document{}}, from: &Document{Path: "a.md"}})
	if err != nil {
		t.Fatalf("parseBody: %v", err)
	}
	content := node.Fragment{}
	for _, part := range parts {
		if n, ok := part.(node.Node); ok {
			content = append(content, n)
		}
	}

	var inlineClasses []style.InlineClass
	for _, inline := range collect[*node.Inline](content) {
		inlineClasses = append(inlineClasses, inline.Style.(style.InlineStyle).Class)
	}
	if diff := cmp.Diff([]style.InlineClass{style.InlineCode, style.InlineEmphasis, style.InlineStrikethrough}, inlineClasses); diff != "" {
		t.Fatalf("inline styles mismatch (-want +got):\n%s", diff)
	}

	links := collect[*node.Link](content)
	if len(links) != 1 || links[0].Target != node.LinkTarget(node.URL("https://example.com")) || links[0].Label != "site" {
		t.Fatalf("unexpected external link %#v", links)
	}

	blocks := collect[*node.Block](content)
	if len(blocks) != 3 {
		t.Fatalf("expected three blocks, got %d", len(blocks))
	}
	code := blocks[0].Style.(style.BlockStyle)
	if code.Class != style.BlockCode || code.Language != "go" {
		t.Fatalf("unexpected code style %#v", code)
	}
	if diff := cmp.Diff(node.Fragment{node.Text("fmt.Println(1)")}, blocks[0].Content); diff != "" {
		t.Fatalf("code content mismatch (-want +got):\n%s", diff)
	}
	if blocks[1].Style.(style.BlockStyle).Class != style.BlockQuote {
		t.Fatalf("expected a quote, got %#v", blocks[1].Style)
	}
	remark := blocks[2].Style.(style.BlockStyle)
	if remark.Class != style.BlockRemark || remark.Theme != "note" {
		t.Fatalf("unexpected remark style %#v", remark)
	}

	lists := collect[*node.List](content)
	if len(lists) != 1 || len(lists[0].Items) != 2 {
		t.Fatalf("expected one list with two items, got %#v", lists)
	}
}

func TestParseBodyLeavesUnclosedFenceAsCode(t *testing.T) {
	parts, err := parseBody("```\nunterminated", projectResolver{project: &Project{byID: map[string]*Document{}}, from: &Document{}})
	if err != nil {
		t.Fatalf("parseBody: %v", err)
	}
	if len(parts) != 1 {
		t.Fatalf("expected a single code block, got %#v", parts)
	}
	block, ok := parts[0].(*node.Block)
	if !ok || block.Style.(style.BlockStyle).Class != style.BlockCode {
		t.Fatalf("expected code block, got %#v", parts[0])
	}
}

func TestLabelledEmbedFallback(t *testing.T) {
	kb := &node.KB{Title: "Target"}
	link := labelledFallback("custom")(kb.LinkTo)
	if l, ok := link.(*node.Link); !ok || l.Label != "custom" {
		t.Fatalf("expected labelled link, got %#v", link)
	}
	if labelledFallback("")(kb.LinkTo).(*node.Link).Label != "" {
		t.Fatal("expected bare link for empty label")
	}
}
