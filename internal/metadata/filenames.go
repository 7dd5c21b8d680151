// Package metadata keeps annotations that live beside KBs rather than on
// them. The only annotation today is the preferred output filename.
package metadata

import (
	"strings"

	"github.com/goliatone/go-kb/internal/node"
)

// Lookup resolves the explicit filename of a KB, if any.
type Lookup interface {
	Filename(kb *node.KB) (string, bool)
}

// Table maps KB identity to an explicit filename. It is owned by the caller
// and must not change while a render call is running.
type Table map[*node.KB]string

var _ Lookup = Table(nil)

// Filename satisfies Lookup. Blank names count as absent.
func (t Table) Filename(kb *node.KB) (string, bool) {
	if t == nil || kb == nil {
		return "", false
	}
	name, ok := t[kb]
	if !ok || strings.TrimSpace(name) == "" {
		return "", false
	}
	return name, true
}

// PreferredFilename returns an annotator recording filename for a KB in
// the table, allocating the table on first use. The KB is returned unchanged
// so calls can be chained.
func (t *Table) PreferredFilename(filename string) func(*node.KB) *node.KB {
	return func(kb *node.KB) *node.KB {
		if kb == nil {
			return nil
		}
		if *t == nil {
			*t = Table{}
		}
		(*t)[kb] = filename
		return kb
	}
}

// Merge returns a new table holding the entries of every table; later tables
// win on conflicts.
func Merge(tables ...Table) Table {
	out := Table{}
	for _, table := range tables {
		for kb, name := range table {
			out[kb] = name
		}
	}
	return out
}

// Chain consults lookups in order and returns the first explicit name found.
// Nil lookups are skipped.
func Chain(lookups ...Lookup) Lookup {
	return chain(lookups)
}

type chain []Lookup

func (c chain) Filename(kb *node.KB) (string, bool) {
	for _, lookup := range c {
		if lookup == nil {
			continue
		}
		if name, ok := lookup.Filename(kb); ok {
			return name, true
		}
	}
	return "", false
}
