package metadata

import (
	"testing"

	"github.com/goliatone/go-kb/internal/node"
)

func TestTableFilename(t *testing.T) {
	named := &node.KB{Title: "Named"}
	blank := &node.KB{Title: "Blank"}
	table := Table{}
	table.PreferredFilename("guide")(named)
	table.PreferredFilename("   ")(blank)

	if name, ok := table.Filename(named); !ok || name != "guide" {
		t.Fatalf("expected guide, got %q %v", name, ok)
	}
	if _, ok := table.Filename(blank); ok {
		t.Fatal("expected a blank name to count as absent")
	}
	if _, ok := table.Filename(&node.KB{}); ok {
		t.Fatal("expected an unknown kb to have no name")
	}
	if _, ok := Table(nil).Filename(named); ok {
		t.Fatal("expected a nil table to have no names")
	}
	if _, ok := table.Filename(nil); ok {
		t.Fatal("expected a nil kb to have no name")
	}
}

func TestPreferredFilenameChains(t *testing.T) {
	table := Table{}
	kb := &node.KB{Title: "Doc"}
	if got := table.PreferredFilename("doc")(kb); got != kb {
		t.Fatal("expected the kb to be returned unchanged")
	}
	if table.PreferredFilename("ignored")(nil) != nil {
		t.Fatal("expected nil to pass through")
	}
	if len(table) != 1 {
		t.Fatalf("expected one entry, got %d", len(table))
	}
}

func TestMergeLaterTablesWin(t *testing.T) {
	a := &node.KB{Title: "A"}
	b := &node.KB{Title: "B"}
	merged := Merge(Table{a: "first", b: "b"}, Table{a: "second"}, nil)
	if merged[a] != "second" || merged[b] != "b" {
		t.Fatalf("unexpected merge %v", merged)
	}
}

func TestPreferredFilenameAllocatesNilTable(t *testing.T) {
	var table Table
	kb := &node.KB{Title: "Doc"}
	table.PreferredFilename("doc")(kb)

	if name, ok := table.Filename(kb); !ok || name != "doc" {
		t.Fatalf("expected doc, got %q %v", name, ok)
	}
}

type titleLookup map[string]string

func (l titleLookup) Filename(kb *node.KB) (string, bool) {
	name, ok := l[kb.Title]
	return name, ok
}

func TestChainPrefersEarlierLookups(t *testing.T) {
	first := &node.KB{Title: "First"}
	second := &node.KB{Title: "Second"}
	table := Table{first: "from-table"}
	lookup := Chain(nil, table, titleLookup{"First": "ignored", "Second": "from-title"})

	if name, _ := lookup.Filename(first); name != "from-table" {
		t.Fatalf("expected table entry to win, got %q", name)
	}
	if name, _ := lookup.Filename(second); name != "from-title" {
		t.Fatalf("expected title lookup fallback, got %q", name)
	}
	if _, ok := lookup.Filename(&node.KB{Title: "Other"}); ok {
		t.Fatal("expected no name for an unknown kb")
	}
}
