// Package style holds the core style vocabulary and the codec that narrows
// opaque style tags to it.
package style

import (
	"github.com/goliatone/go-kb/internal/builder"
	"github.com/goliatone/go-kb/internal/node"
)

// InlineClass enumerates the core inline styles.
type InlineClass string

const (
	InlineEmphasis      InlineClass = "emphasis"
	InlineStrikethrough InlineClass = "strikethrough"
	InlineCode          InlineClass = "code"
)

// BlockClass enumerates the core block styles.
type BlockClass string

const (
	BlockCode   BlockClass = "code"
	BlockQuote  BlockClass = "quote"
	BlockRemark BlockClass = "remark"
)

// InlineStyle is a core inline style tag.
type InlineStyle struct {
	Class InlineClass
}

// BlockStyle is a core block style tag. Language refines code blocks and
// Theme refines remarks; both are optional.
type BlockStyle struct {
	Class    BlockClass
	Language string
	Theme    string
}

var (
	// Em styles content as emphasized.
	Em = builder.Inline(InlineStyle{Class: InlineEmphasis})
	// Strike styles content as deleted.
	Strike = builder.Inline(InlineStyle{Class: InlineStrikethrough})
	// Code styles content as inline code.
	Code = builder.Inline(InlineStyle{Class: InlineCode})
	// Quote styles content as a quotation block.
	Quote = builder.Block(BlockStyle{Class: BlockQuote})
	// CodeBlock styles content as a code block without a language.
	CodeBlock = builder.Block(BlockStyle{Class: BlockCode})
)

// CodeBlockLang styles content as a code block in language.
func CodeBlockLang(language string) builder.Factory[*node.Block] {
	return builder.Block(BlockStyle{Class: BlockCode, Language: language})
}

// Remark styles content as a remark block. The theme selects the prefix;
// an empty theme uses the info prefix.
func Remark(theme string) builder.Factory[*node.Block] {
	return builder.Block(BlockStyle{Class: BlockRemark, Theme: theme})
}
