package source

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/adrg/frontmatter"
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/goliatone/go-kb/internal/node"
)

var idPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._/-]*$`)

// FrontMatter is the metadata block opening a source document.
type FrontMatter struct {
	ID    string `yaml:"id"`
	Title string `yaml:"title"`
	Root  bool   `yaml:"root"`
	// Embed is a bool, "always", "never", "no_series" or
	// {max_references: n}.
	Embed any `yaml:"embed"`
	// Emit is a bool, "always" or "never".
	Emit     any    `yaml:"emit"`
	Filename string `yaml:"filename"`
	Path     string `yaml:"path"`
}

// Validate checks the front matter shape.
func (m FrontMatter) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.ID, validation.Required, validation.Match(idPattern)),
		validation.Field(&m.Title, validation.Required),
		validation.Field(&m.Embed, validation.By(func(value any) error {
			_, err := node.ParseEmbedCondition(value)
			return err
		})),
		validation.Field(&m.Emit, validation.By(func(value any) error {
			_, err := parseEmitCondition(value)
			return err
		})),
		validation.Field(&m.Path, validation.By(func(value any) error {
			dir, _ := value.(string)
			if strings.HasPrefix(dir, "/") || strings.HasPrefix(dir, "..") {
				return validation.NewError("source.path_invalid", "path must be relative to the output root")
			}
			return nil
		})),
	)
}

// ParseFrontMatter splits source into its metadata and markdown body.
func ParseFrontMatter(source []byte) (FrontMatter, []byte, error) {
	var meta FrontMatter
	body, err := frontmatter.Parse(bytes.NewReader(source), &meta)
	if err != nil {
		return FrontMatter{}, nil, fmt.Errorf("parse frontmatter: %w", err)
	}
	meta.ID = strings.TrimSpace(meta.ID)
	meta.Title = strings.TrimSpace(meta.Title)
	return meta, body, nil
}

// embedCondition and emitCondition decode the loosely typed fields after
// Validate accepted them.
func (m FrontMatter) embedCondition() node.EmbedCondition {
	condition, _ := node.ParseEmbedCondition(m.Embed)
	return condition
}

func (m FrontMatter) emitCondition() node.EmitCondition {
	condition, _ := parseEmitCondition(m.Emit)
	return condition
}

func parseEmitCondition(value any) (node.EmitCondition, error) {
	switch v := value.(type) {
	case nil:
		return node.EmitUnset, nil
	case bool:
		if v {
			return node.EmitAlways, nil
		}
		return node.EmitNever, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "", "default":
			return node.EmitUnset, nil
		case "always", "true":
			return node.EmitAlways, nil
		case "never", "false":
			return node.EmitNever, nil
		}
	}
	return node.EmitUnset, fmt.Errorf("unknown emit condition %v", value)
}
