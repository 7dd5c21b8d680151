package style

// DecodeInlineStyle narrows tag to a core inline style. It accepts
// InlineStyle values and pointers, and maps with a "class" key. Anything else
// reports false so callers can layer their own vocabularies.
func DecodeInlineStyle(tag any) (InlineStyle, bool) {
	var class string
	switch t := tag.(type) {
	case InlineStyle:
		class = string(t.Class)
	case *InlineStyle:
		if t == nil {
			return InlineStyle{}, false
		}
		class = string(t.Class)
	case map[string]any:
		value, ok := t["class"].(string)
		if !ok {
			return InlineStyle{}, false
		}
		class = value
	default:
		return InlineStyle{}, false
	}

	switch InlineClass(class) {
	case InlineEmphasis, InlineStrikethrough, InlineCode:
		return InlineStyle{Class: InlineClass(class)}, true
	default:
		return InlineStyle{}, false
	}
}

// DecodeBlockStyle narrows tag to a core block style. Map tags may carry a
// "language" (code) or "theme" (remark) refinement; a refinement that is
// present but not a string makes the tag unrecognized.
func DecodeBlockStyle(tag any) (BlockStyle, bool) {
	switch t := tag.(type) {
	case BlockStyle:
		return checkBlock(t)
	case *BlockStyle:
		if t == nil {
			return BlockStyle{}, false
		}
		return checkBlock(*t)
	case map[string]any:
		class, ok := t["class"].(string)
		if !ok {
			return BlockStyle{}, false
		}
		style := BlockStyle{Class: BlockClass(class)}
		switch style.Class {
		case BlockCode:
			language, ok := optionalString(t, "language")
			if !ok {
				return BlockStyle{}, false
			}
			style.Language = language
		case BlockRemark:
			theme, ok := optionalString(t, "theme")
			if !ok {
				return BlockStyle{}, false
			}
			style.Theme = theme
		}
		return checkBlock(style)
	default:
		return BlockStyle{}, false
	}
}

func checkBlock(style BlockStyle) (BlockStyle, bool) {
	switch style.Class {
	case BlockCode:
		return BlockStyle{Class: BlockCode, Language: style.Language}, true
	case BlockQuote:
		return BlockStyle{Class: BlockQuote}, true
	case BlockRemark:
		return BlockStyle{Class: BlockRemark, Theme: style.Theme}, true
	default:
		return BlockStyle{}, false
	}
}

func optionalString(values map[string]any, key string) (string, bool) {
	value, present := values[key]
	if !present || value == nil {
		return "", true
	}
	text, ok := value.(string)
	return text, ok
}
