// Package source loads a directory of markdown documents with front matter
// into a graph of KBs ready for rendering.
package source

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	"go.uber.org/multierr"

	"github.com/goliatone/go-kb/internal/builder"
	"github.com/goliatone/go-kb/internal/logging"
	"github.com/goliatone/go-kb/internal/metadata"
	"github.com/goliatone/go-kb/internal/node"
	"github.com/goliatone/go-kb/pkg/interfaces"
)

const codeSourceInvalid = "SOURCE_INVALID"

var (
	// ErrUnknownReference reports a link, embed or root naming a missing id.
	ErrUnknownReference = errors.New("source: unknown document reference")
	// ErrDuplicateID reports two documents sharing an id.
	ErrDuplicateID = errors.New("source: duplicate document id")
	// ErrInvalidDocument reports front matter failing validation.
	ErrInvalidDocument = errors.New("source: invalid document")
)

// LoaderConfig configures document discovery.
type LoaderConfig struct {
	// Pattern limits loaded files by base name, "*.md" when empty.
	Pattern string
	Logger  interfaces.Logger
}

// Loader reads source documents from a filesystem.
type Loader struct {
	fs      fs.FS
	pattern string
	logger  interfaces.Logger
}

// NewLoader constructs a Loader over filesystem.
func NewLoader(filesystem fs.FS, cfg LoaderConfig) *Loader {
	pattern := strings.TrimSpace(cfg.Pattern)
	if pattern == "" {
		pattern = "*.md"
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NoOp()
	}
	return &Loader{fs: filesystem, pattern: pattern, logger: logger}
}

// Document is one loaded source file.
type Document struct {
	ID   string
	Path string
	Meta FrontMatter
	KB   *node.KB
	body []byte
}

// Project is the loaded document graph.
type Project struct {
	// Documents are ordered by source path.
	Documents []*Document
	// Filenames holds the explicit filenames from front matter.
	Filenames metadata.Table
	// Paths holds the output directories from front matter.
	Paths map[*node.KB]string

	byID map[string]*Document
}

// Document returns the document with id.
func (p *Project) Document(id string) (*Document, bool) {
	doc, ok := p.byID[id]
	return doc, ok
}

// Roots returns the KBs marked root in front matter followed by the KBs
// named in ids, without duplicates.
func (p *Project) Roots(ids ...string) ([]*node.KB, error) {
	seen := map[*node.KB]struct{}{}
	roots := make([]*node.KB, 0, len(ids))
	add := func(kb *node.KB) {
		if _, ok := seen[kb]; !ok {
			seen[kb] = struct{}{}
			roots = append(roots, kb)
		}
	}
	for _, doc := range p.Documents {
		if doc.Meta.Root {
			add(doc.KB)
		}
	}
	for _, id := range ids {
		doc, ok := p.byID[strings.TrimSpace(id)]
		if !ok {
			return nil, invalid(fmt.Errorf("%w: root %q", ErrUnknownReference, id))
		}
		add(doc.KB)
	}
	return roots, nil
}

// DirectoryPaths maps project-level directory assignments keyed by id onto
// KBs. The "*" key becomes the wildcard entry. Front matter paths win.
func (p *Project) DirectoryPaths(byID map[string]string) (map[*node.KB]string, error) {
	paths := make(map[*node.KB]string, len(byID)+len(p.Paths))
	for id, dir := range byID {
		if id == "*" {
			paths[nil] = dir
			continue
		}
		doc, ok := p.byID[id]
		if !ok {
			return nil, invalid(fmt.Errorf("%w: path for %q", ErrUnknownReference, id))
		}
		paths[doc.KB] = dir
	}
	for kb, dir := range p.Paths {
		paths[kb] = dir
	}
	return paths, nil
}

// Load reads every matching file below dir and links the documents. All
// KBs exist before any body is interpreted, so documents may reference each
// other in cycles.
func (l *Loader) Load(ctx context.Context, dir string) (*Project, error) {
	docs, err := l.discover(ctx, dir)
	if err != nil {
		return nil, err
	}

	project := &Project{
		Documents: docs,
		Filenames: metadata.Table{},
		Paths:     map[*node.KB]string{},
		byID:      make(map[string]*Document, len(docs)),
	}
	for _, doc := range docs {
		if existing, ok := project.byID[doc.ID]; ok {
			return nil, invalid(fmt.Errorf("%w: %q in %s and %s", ErrDuplicateID, doc.ID, existing.Path, doc.Path))
		}
		project.byID[doc.ID] = doc
		doc.KB = &node.KB{
			Title:          doc.Meta.Title,
			EmbedCondition: doc.Meta.embedCondition(),
			EmitCondition:  doc.Meta.emitCondition(),
		}
		if name := strings.TrimSpace(doc.Meta.Filename); name != "" {
			project.Filenames[doc.KB] = name
		}
		if dir := strings.TrimSpace(doc.Meta.Path); dir != "" {
			project.Paths[doc.KB] = dir
		}
	}

	// Every document is interpreted so one load reports all broken references.
	var problems error
	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		parts, err := parseBody(string(doc.body), projectResolver{project: project, from: doc})
		if err != nil {
			problems = multierr.Append(problems, err)
			continue
		}
		doc.KB.Content = builder.Template(parts...)
		logging.WithSourceContext(l.logger, doc.Path, doc.ID).Debug("source.document.loaded",
			"title", doc.KB.Title,
			"root", doc.Meta.Root,
		)
	}

	if problems != nil {
		l.logger.Error("source.load.failed", "dir", dir, "problems", len(multierr.Errors(problems)))
		return nil, invalid(problems)
	}

	l.logger.Info("source.loaded", "dir", dir, "documents", len(docs))
	return project, nil
}

func (l *Loader) discover(ctx context.Context, dir string) ([]*Document, error) {
	root := path.Clean(strings.TrimSpace(dir))
	if root == "" {
		root = "."
	}

	var docs []*Document
	walkErr := fs.WalkDir(l.fs, root, func(name string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if match, err := path.Match(l.pattern, path.Base(name)); err != nil || !match {
			return nil
		}

		data, err := fs.ReadFile(l.fs, name)
		if err != nil {
			return fmt.Errorf("source: read %s: %w", name, err)
		}
		meta, body, err := ParseFrontMatter(data)
		if err != nil {
			return invalid(fmt.Errorf("%w: %s: %w", ErrInvalidDocument, name, err))
		}

		rel := relativeTo(root, name)
		if meta.ID == "" {
			meta.ID = strings.TrimSuffix(rel, path.Ext(rel))
		}
		if err := meta.Validate(); err != nil {
			return invalid(fmt.Errorf("%w: %s: %w", ErrInvalidDocument, name, err))
		}
		docs = append(docs, &Document{ID: meta.ID, Path: rel, Meta: meta, body: body})
		return nil
	})
	if walkErr != nil {
		return nil, walkErr
	}

	sort.SliceStable(docs, func(i, j int) bool { return docs[i].Path < docs[j].Path })
	return docs, nil
}

func relativeTo(root, name string) string {
	if root == "." {
		return name
	}
	return strings.TrimPrefix(strings.TrimPrefix(name, root), "/")
}

type projectResolver struct {
	project *Project
	from    *Document
}

func (r projectResolver) resolve(id string) (*node.KB, error) {
	doc, ok := r.project.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q referenced from %s", ErrUnknownReference, id, r.from.Path)
	}
	return doc.KB, nil
}

func invalid(err error) error {
	return goerrors.Wrap(err, goerrors.CategoryValidation, "source documents are invalid").
		WithTextCode(codeSourceInvalid)
}
