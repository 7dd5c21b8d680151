package render

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-kb/internal/builder"
	"github.com/goliatone/go-kb/internal/logging"
	"github.com/goliatone/go-kb/internal/metadata"
	"github.com/goliatone/go-kb/internal/node"
	"github.com/goliatone/go-kb/pkg/interfaces"
)

func renderFiles(t *testing.T, opts Options, roots ...*node.KB) []interfaces.OutputFile {
	t.Helper()
	files, err := Render(context.Background(), roots, opts)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	return files
}

func mustDiff(t *testing.T, want, got any) {
	t.Helper()
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestRenderLinkedDocumentGetsItsOwnFile(t *testing.T) {
	sub := builder.New("Sub").T("Sub body")
	main := builder.New("Main").T("See ", sub.LinkTo(""), " and ", builder.Link(sub), ".")

	files := renderFiles(t, Options{}, main)

	mustDiff(t, []interfaces.OutputFile{
		{Path: "main.md", Text: "# Main\n\nSee [Sub](sub.md \"Sub\") and [Sub](sub.md \"Sub\").\n"},
		{Path: "sub.md", Text: "# Sub\n\nSub body\n"},
	}, files)
}

func TestRenderForcedEmbedsInlineWithoutFile(t *testing.T) {
	sub := builder.New("Sub").T("Sub body")
	main := builder.New("Main").Of(sub.ForceEmbed(), sub.ForceEmbed())

	files := renderFiles(t, Options{}, main)

	mustDiff(t, []interfaces.OutputFile{
		{Path: "main.md", Text: "# Main\n\n## Sub\n\nSub body\n\n## Sub\n\nSub body\n"},
	}, files)
}

func TestRenderInlineCodeStaysInParagraph(t *testing.T) {
	kb := builder.New("test").T("Call ", builder.Inline(map[string]any{"class": "code"}).Of("run()"), " now.")

	files := renderFiles(t, Options{}, kb)

	mustDiff(t, []interfaces.OutputFile{{Path: "test.md", Text: "# test\n\nCall `run()` now.\n"}}, files)
}

func TestRenderRootWithoutReferencesIsEmitted(t *testing.T) {
	files := renderFiles(t, Options{}, builder.New("Alone").Of())
	mustDiff(t, []interfaces.OutputFile{{Path: "alone.md", Text: "# Alone\n"}}, files)
}

func TestRenderEmptyRootSet(t *testing.T) {
	if files := renderFiles(t, Options{}); len(files) != 0 {
		t.Fatalf("expected no files, got %v", files)
	}
}

func TestRenderFilenamesAreUnique(t *testing.T) {
	first := builder.New("Same").Of("one")
	second := builder.New("Same").Of("two")
	third := builder.New("Same").Of("three")

	files := renderFiles(t, Options{}, first, second, third)

	var got []string
	for _, file := range files {
		got = append(got, file.Path)
	}
	mustDiff(t, []string{"same.md", "same_2.md", "same_3.md"}, got)
}

func TestRenderExplicitFilenamesWinOverDerivedStems(t *testing.T) {
	implicit := builder.New("Same").Of("implicit")
	explicit := builder.New("Alpha").Of("explicit")
	filenames := metadata.Table{}
	filenames.PreferredFilename(" same.md ")(explicit)

	files := renderFiles(t, Options{Filenames: filenames}, implicit, explicit)

	mustDiff(t, []interfaces.OutputFile{
		{Path: "same_2.md", Text: "# Same\n\nimplicit\n"},
		{Path: "same.md", Text: "# Alpha\n\nexplicit\n"},
	}, files)
}

func TestRenderReferenceCountFlipsEmbedsToLinks(t *testing.T) {
	shared := builder.New("T", builder.WithEmbedCondition(node.ReferenceCount{MaxReferenceCount: 1})).Of("shared")
	main := builder.New("Main").Of(shared)

	once := renderFiles(t, Options{}, main)
	mustDiff(t, []interfaces.OutputFile{
		{Path: "main.md", Text: "# Main\n\n## T\n\nshared\n"},
	}, once)

	other := builder.New("Other").Of(shared)
	twice := renderFiles(t, Options{}, main, other)
	mustDiff(t, []interfaces.OutputFile{
		{Path: "main.md", Text: "# Main\n\n[T](t.md \"T\")\n"},
		{Path: "t.md", Text: "# T\n\nshared\n"},
		{Path: "other.md", Text: "# Other\n\n[T](t.md \"T\")\n"},
	}, twice)
}

func TestRenderEmbedConditionPrecedence(t *testing.T) {
	target := builder.New("Target", builder.WithEmbedCondition(node.EmbedBool(false))).Of("inner")

	siteWins := builder.New("Main").Of(target.Embed(nil, node.EmbedBool(true)))
	files := renderFiles(t, Options{DefaultEmbedCondition: node.EmbedBool(true)}, siteWins)
	mustDiff(t, "# Main\n\n## Target\n\ninner\n", files[0].Text)

	kbWins := builder.New("Main").Of(target.Embed(nil, nil))
	files = renderFiles(t, Options{DefaultEmbedCondition: node.EmbedBool(true)}, kbWins)
	mustDiff(t, "# Main\n\n[Target](target.md \"Target\")\n", files[0].Text)

	plain := builder.New("Plain").Of("inner")
	defaultApplies := builder.New("Main").Of(plain)
	files = renderFiles(t, Options{DefaultEmbedCondition: node.EmbedBool(true)}, defaultApplies)
	if len(files) != 1 {
		t.Fatalf("expected the default condition to embed, got %v", files)
	}

	files = renderFiles(t, Options{}, defaultApplies)
	if len(files) != 2 {
		t.Fatalf("expected a nil default condition to link, got %v", files)
	}
}

func TestRenderNoSeriesNeverEmbeds(t *testing.T) {
	target := builder.New("Target").Of("inner")
	main := builder.New("Main").Of(target.Embed(nil, node.NoSeries{}))

	files := renderFiles(t, Options{}, main)
	mustDiff(t, "# Main\n\n[Target](target.md \"Target\")\n", files[0].Text)
}

func TestRenderCustomFallback(t *testing.T) {
	target := builder.New("Target").Of("inner")
	main := builder.New("Main").Of(target.Embed(func(link node.LinkFunc) node.Node {
		return builder.Build("See ", link("the target"), ".")
	}, node.EmbedBool(false)))

	files := renderFiles(t, Options{}, main)
	mustDiff(t, "# Main\n\nSee [the target](target.md \"the target\").\n", files[0].Text)
}

func TestRenderRelativeURLsAcrossDirectories(t *testing.T) {
	sub := builder.New("Sub").Of("body")
	main := builder.New("Main").Of(sub.LinkTo(""))

	files := renderFiles(t, Options{Paths: map[*node.KB]string{main: "guide", nil: "ref"}}, main)

	mustDiff(t, []interfaces.OutputFile{
		{Path: "guide/main.md", Text: "# Main\n\n[Sub](../ref/sub.md \"Sub\")\n"},
		{Path: "ref/sub.md", Text: "# Sub\n\nbody\n"},
	}, files)
}

func TestRenderLinksInsideEmbedsResolveFromHost(t *testing.T) {
	leaf := builder.New("Leaf").Of("leaf")
	mid := builder.New("Mid").Of(leaf.LinkTo(""))
	main := builder.New("Main").Of(mid.ForceEmbed())

	files := renderFiles(t, Options{Paths: map[*node.KB]string{main: "a", mid: "b", leaf: "c"}}, main)

	mustDiff(t, []interfaces.OutputFile{
		{Path: "a/main.md", Text: "# Main\n\n## Mid\n\n[Leaf](../c/leaf.md \"Leaf\")\n"},
		{Path: "c/leaf.md", Text: "# Leaf\n\nleaf\n"},
	}, files)
}

func TestRenderExternalLinks(t *testing.T) {
	kb := builder.New("Links").Of(
		builder.Link("https://example.com", "Example"),
		" and ",
		builder.Link("https://example.org"),
	)
	files := renderFiles(t, Options{}, kb)
	mustDiff(t, "# Links\n\n[Example](https://example.com \"Example\") and [https://example.org](https://example.org \"https://example.org\")\n", files[0].Text)
}

func TestRenderEmbedCyclesFallBackToLinks(t *testing.T) {
	a := &node.KB{Title: "A"}
	b := &node.KB{Title: "B"}
	a.Content = b.ForceEmbed()
	b.Content = a.ForceEmbed()

	files := renderFiles(t, Options{}, a)

	mustDiff(t, []interfaces.OutputFile{
		{Path: "a.md", Text: "# A\n\n## B\n\n[A](a.md \"A\")\n"},
	}, files)
}

func TestRenderSelfEmbedFallsBackToLink(t *testing.T) {
	a := &node.KB{Title: "A"}
	a.Content = builder.Build("before ", a.ForceEmbed())

	files := renderFiles(t, Options{}, a)
	mustDiff(t, "# A\n\nbefore [A](a.md \"A\")\n", files[0].Text)
}

func TestRenderEmitConditions(t *testing.T) {
	embedded := builder.New("Embedded").Of("inner")
	main := builder.New("Main").Of(embedded.ForceEmbed())

	files := renderFiles(t, Options{DefaultEmitCondition: true}, main)
	if len(files) != 2 {
		t.Fatalf("expected the default emit condition to emit every document, got %v", files)
	}

	suppressed := builder.New("Embedded", builder.WithEmitCondition(node.EmitNever)).Of("inner")
	files = renderFiles(t, Options{DefaultEmitCondition: true}, builder.New("Main").Of(suppressed.ForceEmbed()))
	if len(files) != 1 {
		t.Fatalf("expected an explicit never to win over the default, got %v", files)
	}

	forced := builder.New("Forced", builder.WithEmitCondition(node.EmitAlways)).Of("inner")
	files = renderFiles(t, Options{}, builder.New("Main").Of(forced.ForceEmbed()))
	if len(files) != 2 || files[1].Path != "forced.md" {
		t.Fatalf("expected the forced document to be emitted, got %v", files)
	}
}

func TestRenderLinkInsideCodeDoesNotEmitTarget(t *testing.T) {
	sub := builder.New("Sub").Of("body")
	main := builder.New("Main").T("Run ", builder.Inline(map[string]any{"class": "code"}).Of(sub.LinkTo("sub-cmd")), ".")

	files := renderFiles(t, Options{}, main)
	mustDiff(t, []interfaces.OutputFile{{Path: "main.md", Text: "# Main\n\nRun `sub-cmd`.\n"}}, files)
}

func TestRenderBlockStyles(t *testing.T) {
	cases := []struct {
		name    string
		content node.Node
		want    string
	}{
		{
			name:    "code block",
			content: builder.Block(map[string]any{"class": "code", "language": "go"}).Of("x := 1\n", "y"),
			want:    "# K\n\n```go\nx := 1\ny\n```\n",
		},
		{
			name:    "quote",
			content: builder.Block(map[string]any{"class": "quote"}).Of("quoted"),
			want:    "# K\n\n> quoted\n",
		},
		{
			name:    "remark",
			content: builder.Block(map[string]any{"class": "remark", "theme": "warning"}).Of("Careful"),
			want:    "# K\n\n> ⚠️ Warning: Careful\n",
		},
		{
			name:    "remark with unknown theme",
			content: builder.Block(map[string]any{"class": "remark", "theme": "mystery"}).Of("Note"),
			want:    "# K\n\n> ℹ️ Note\n",
		},
		{
			name:    "unrecognized block style",
			content: builder.Block("bogus").Of("plain"),
			want:    "# K\n\nplain\n",
		},
		{
			name:    "list",
			content: builder.List("one", "two"),
			want:    "# K\n\n* one\n* two\n",
		},
		{
			name:    "list in code block",
			content: builder.Block(map[string]any{"class": "code"}).Of(builder.List("a", "b")),
			want:    "# K\n\n```\n- a\n- b\n```\n",
		},
		{
			name:    "list inside emphasis",
			content: builder.Inline(map[string]any{"class": "emphasis"}).Of(builder.List("a", "b")),
			want:    "# K\n\n**a, b**\n",
		},
		{
			name:    "line breaks fold inside inline styles",
			content: builder.Inline(map[string]any{"class": "strikethrough"}).Of("a\n   b"),
			want:    "# K\n\n~~a b~~\n",
		},
		{
			name:    "paragraphs split on blank lines",
			content: builder.Build("first\n\nsecond"),
			want:    "# K\n\nfirst\n\nsecond\n",
		},
		{
			name:    "text around a block",
			content: builder.Build("a", builder.Block(map[string]any{"class": "quote"}).Of("q"), "b"),
			want:    "# K\n\na\n\n> q\n\nb\n",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			kb := &node.KB{Title: "K", Content: tc.content}
			files := renderFiles(t, Options{}, kb)
			mustDiff(t, tc.want, files[0].Text)
		})
	}
}

func TestRenderRemarkPrefixOverride(t *testing.T) {
	kb := &node.KB{Title: "K", Content: builder.Block(map[string]any{"class": "remark", "theme": "tip"}).Of("Try it")}
	files := renderFiles(t, Options{RemarkPrefixes: map[string]string{"tip": "Tip: "}}, kb)
	mustDiff(t, "# K\n\n> Tip: Try it\n", files[0].Text)
}

func TestRenderLazyContent(t *testing.T) {
	var calls atomic.Int32
	shared := builder.Lazy(func(context.Context) (any, error) {
		calls.Add(1)
		return func() any { return "later" }, nil
	})
	kb := builder.New("Lazy").Of(shared, " and ", shared)

	files := renderFiles(t, Options{}, kb)

	mustDiff(t, "# Lazy\n\nlater and later\n", files[0].Text)
	if calls.Load() != 1 {
		t.Fatalf("expected the producer to run once, ran %d times", calls.Load())
	}
}

func TestRenderLazyProducersSeeRenderID(t *testing.T) {
	var seen []any
	kb := builder.New("Traced").Of(builder.Lazy(func(ctx context.Context) (any, error) {
		seen = append(seen, logging.ContextFields(ctx)["render_id"])
		return "traced", nil
	}))

	renderFiles(t, Options{}, kb)
	renderFiles(t, Options{}, kb)

	if len(seen) != 2 || seen[0] == nil || seen[0] == "" || seen[0] == seen[1] {
		t.Fatalf("expected a distinct render id per render, got %v", seen)
	}
}

func TestRenderLazySiblingsKeepSourceOrder(t *testing.T) {
	delayed := func(text string, delay time.Duration) *node.Lazy {
		return builder.Lazy(func(ctx context.Context) (any, error) {
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			return text, nil
		})
	}
	kb := builder.New("Order").Of(
		delayed("a", 30*time.Millisecond),
		delayed("b", 10*time.Millisecond),
		delayed("c", 0),
	)

	files := renderFiles(t, Options{Concurrency: 3}, kb)
	mustDiff(t, "# Order\n\nabc\n", files[0].Text)
}

func selfYieldingLazy() *node.Lazy {
	lazy := &node.Lazy{}
	lazy.Produce = func(context.Context) (node.Node, error) { return lazy, nil }
	return lazy
}

func loopingLazies() *node.Lazy {
	a, b := &node.Lazy{}, &node.Lazy{}
	a.Produce = func(context.Context) (node.Node, error) { return b, nil }
	b.Produce = func(context.Context) (node.Node, error) { return a, nil }
	return a
}

func selfContainingLazy() *node.Lazy {
	lazy := &node.Lazy{}
	lazy.Produce = func(context.Context) (node.Node, error) {
		return node.Fragment{node.Text("again "), lazy}, nil
	}
	return lazy
}

func TestRenderFailures(t *testing.T) {
	boom := errors.New("boom")
	cases := []struct {
		name     string
		roots    []*node.KB
		opts     Options
		sentinel error
		command  bool
	}{
		{
			name:     "lazy error",
			roots:    []*node.KB{builder.New("K").Of(builder.Lazy(func(context.Context) (any, error) { return nil, boom }))},
			sentinel: ErrLazyProducer,
			command:  true,
		},
		{
			name:     "lazy panic",
			roots:    []*node.KB{builder.New("K").Of(builder.Lazy(func(context.Context) (any, error) { panic("bad producer") }))},
			sentinel: ErrLazyProducer,
			command:  true,
		},
		{
			name:     "lazy yields itself",
			roots:    []*node.KB{{Title: "K", Content: selfYieldingLazy()}},
			sentinel: ErrLazyProducer,
			command:  true,
		},
		{
			name:     "lazy chain loops",
			roots:    []*node.KB{{Title: "K", Content: node.Fragment{node.Text("x"), loopingLazies()}}},
			sentinel: ErrLazyProducer,
			command:  true,
		},
		{
			name:     "lazy content contains the lazy",
			roots:    []*node.KB{{Title: "K", Content: selfContainingLazy()}},
			sentinel: ErrLazyProducer,
			command:  true,
		},
		{
			name:     "nil root",
			roots:    []*node.KB{builder.New("K").Of(), nil},
			sentinel: ErrNilDocument,
		},
		{
			name:     "nil embed target",
			roots:    []*node.KB{builder.New("K").Of(&node.Embed{})},
			sentinel: ErrNilDocument,
		},
		{
			name:     "nil link target",
			roots:    []*node.KB{builder.New("K").Of(&node.Link{Target: (*node.KB)(nil)})},
			sentinel: ErrNilDocument,
		},
		{
			name:     "typed nil node",
			roots:    []*node.KB{{Title: "K", Content: node.Fragment{(*node.Block)(nil)}}},
			sentinel: ErrUnknownNode,
		},
		{
			name:     "link without target",
			roots:    []*node.KB{builder.New("K").Of(&node.Link{})},
			sentinel: ErrUnknownNode,
		},
		{
			name:     "negative concurrency",
			roots:    []*node.KB{builder.New("K").Of()},
			opts:     Options{Concurrency: -1},
			sentinel: ErrInvalidOptions,
		},
		{
			name:     "extension without dot",
			roots:    []*node.KB{builder.New("K").Of()},
			opts:     Options{Extension: "md"},
			sentinel: ErrInvalidOptions,
		},
		{
			name:     "negative reference count",
			roots:    []*node.KB{builder.New("K").Of()},
			opts:     Options{DefaultEmbedCondition: node.ReferenceCount{MaxReferenceCount: -1}},
			sentinel: ErrInvalidOptions,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			files, err := Render(context.Background(), tc.roots, tc.opts)
			if err == nil {
				t.Fatalf("expected failure, got files %v", files)
			}
			if files != nil {
				t.Fatalf("expected no partial output, got %v", files)
			}
			if !errors.Is(err, tc.sentinel) {
				t.Fatalf("expected %v, got %v", tc.sentinel, err)
			}
			category := goerrors.CategoryValidation
			if tc.command {
				category = goerrors.CategoryCommand
			}
			if !goerrors.IsCategory(err, category) {
				t.Fatalf("expected category %v, got %v", category, err)
			}
		})
	}
}

func TestRenderLazyErrorKeepsCause(t *testing.T) {
	boom := errors.New("boom")
	kb := builder.New("K").Of(builder.Lazy(func(context.Context) (any, error) { return nil, boom }))
	_, err := Render(context.Background(), []*node.KB{kb}, Options{})
	if !errors.Is(err, boom) {
		t.Fatalf("expected the producer error to be kept, got %v", err)
	}
}

func TestRenderHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Render(ctx, []*node.KB{builder.New("K").Of("x")}, Options{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestEngineConcurrentCallsAreIndependent(t *testing.T) {
	sub := builder.New("Sub").Of("body")
	main := builder.New("Main").Of(sub.LinkTo(""))
	engine := New(Options{})

	var wg sync.WaitGroup
	results := make([][]interfaces.OutputFile, 8)
	errs := make([]error, len(results))
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], errs[i] = engine.Render(context.Background(), []*node.KB{main})
		}()
	}
	wg.Wait()

	for i := range results {
		if errs[i] != nil {
			t.Fatalf("render %d: %v", i, errs[i])
		}
		mustDiff(t, results[0], results[i])
	}
}

func TestRenderCustomExtensionAndTransform(t *testing.T) {
	sub := builder.New("Sub Page").Of("body")
	main := builder.New("Main").Of(sub.LinkTo(""))

	files := renderFiles(t, Options{Extension: ".markdown", TransformFilename: SlugTransformFilename}, main)
	if files[1].Path != SlugTransformFilename("Sub Page")+".markdown" {
		t.Fatalf("unexpected path %q", files[1].Path)
	}
	want := "# Main\n\n[Sub Page](" + files[1].Path + " \"Sub Page\")\n"
	mustDiff(t, want, files[0].Text)
}
