package render

import (
	"path"
	"path/filepath"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/goliatone/go-kb/internal/logging"
	"github.com/goliatone/go-kb/internal/metadata"
	"github.com/goliatone/go-kb/internal/node"
	"github.com/goliatone/go-kb/pkg/interfaces"
)

// DefaultExtension is appended to output filenames and link URLs.
const DefaultExtension = ".md"

// DefaultRemarkPrefixes are the texts opening remark blocks per theme.
var DefaultRemarkPrefixes = map[string]string{
	"info":      "ℹ️ ",
	"attention": "🔴 ATTENTION: ",
	"warning":   "⚠️ Warning: ",
}

// Options configures a render call. The zero value is usable.
type Options struct {
	// DefaultEmbedCondition applies when neither the embed site nor the
	// target KB sets a condition. Nil means never embed.
	DefaultEmbedCondition node.EmbedCondition
	// DefaultEmitCondition forces every KB without its own emit condition
	// to be emitted as a file.
	DefaultEmitCondition bool
	// Paths assigns output directories. The nil key matches every KB
	// without an entry; the fallback is ".".
	Paths map[*node.KB]string
	// TransformFilename turns titles and explicit filenames into stems.
	TransformFilename func(string) string
	// Filenames holds explicit filename annotations.
	Filenames metadata.Lookup
	// RemarkPrefixes extends or overrides DefaultRemarkPrefixes.
	RemarkPrefixes map[string]string
	// Extension is the output file suffix, ".md" when empty.
	Extension string
	// Concurrency caps the lazy producers forced in parallel within one
	// sibling group. Zero uses GOMAXPROCS.
	Concurrency int
	Logger      interfaces.Logger
}

// Validate checks option shapes.
func (o Options) Validate() error {
	return validation.ValidateStruct(&o,
		validation.Field(&o.Concurrency, validation.Min(0)),
		validation.Field(&o.Extension, validation.By(func(value any) error {
			ext, _ := value.(string)
			if ext == "" {
				return nil
			}
			if !strings.HasPrefix(ext, ".") || strings.ContainsAny(ext, `/\`) {
				return validation.NewError("render.extension_invalid", "extension must start with a dot and contain no separators")
			}
			return nil
		})),
		validation.Field(&o.DefaultEmbedCondition, validation.By(validateCondition)),
	)
}

func validateCondition(value any) error {
	if rc, ok := value.(node.ReferenceCount); ok && rc.MaxReferenceCount < 0 {
		return validation.NewError("render.reference_count_negative", "max reference count must be zero or positive")
	}
	return nil
}

type resolvedOptions struct {
	Options
	remarks map[string]string
}

func resolveOptions(opts Options) resolvedOptions {
	resolved := resolvedOptions{Options: opts}
	if resolved.TransformFilename == nil {
		resolved.TransformFilename = DefaultTransformFilename
	}
	if resolved.Filenames == nil {
		resolved.Filenames = metadata.Table(nil)
	}
	if resolved.Extension == "" {
		resolved.Extension = DefaultExtension
	}
	if resolved.Logger == nil {
		resolved.Logger = logging.NoOp()
	}
	resolved.remarks = make(map[string]string, len(DefaultRemarkPrefixes)+len(opts.RemarkPrefixes))
	for theme, prefix := range DefaultRemarkPrefixes {
		resolved.remarks[theme] = prefix
	}
	for theme, prefix := range opts.RemarkPrefixes {
		resolved.remarks[theme] = prefix
	}
	return resolved
}

// directory returns the output directory of kb as a clean slash path.
func (o resolvedOptions) directory(kb *node.KB) string {
	dir, ok := o.Paths[kb]
	if !ok {
		dir, ok = o.Paths[nil]
	}
	if !ok || strings.TrimSpace(dir) == "" {
		return "."
	}
	return path.Clean(filepath.ToSlash(dir))
}

func (o resolvedOptions) remarkPrefix(theme string) string {
	if prefix := o.remarks[theme]; theme != "" && prefix != "" {
		return prefix
	}
	return o.remarks["info"]
}

// relativeURL returns the slash path from directory from to file to.
func relativeURL(from, to string) string {
	rel, err := filepath.Rel(filepath.FromSlash(from), filepath.FromSlash(to))
	if err != nil {
		return to
	}
	return filepath.ToSlash(rel)
}
