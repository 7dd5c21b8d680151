package node

// KB is a titled, independently addressable document. Identity is the
// pointer; two KBs may share a title.
type KB struct {
	Title   string
	Content Node
	// EmbedCondition is consulted when an embed site does not set its own.
	EmbedCondition EmbedCondition
	EmitCondition  EmitCondition
}

// Embed creates a conditional embed of the KB. A nil fallback renders a bare
// link, a nil condition defers to the KB and then to the render default.
func (kb *KB) Embed(fallback FallbackFunc, condition EmbedCondition) *Embed {
	if fallback == nil {
		fallback = BareLink
	}
	return &Embed{
		Target:    kb,
		Condition: condition,
		Fallback:  fallback,
	}
}

// ForceEmbed creates an embed that always inlines the KB.
func (kb *KB) ForceEmbed() *Embed {
	return kb.Embed(BareLink, EmbedBool(true))
}

// LinkTo creates a link to the KB.
func (kb *KB) LinkTo(label string) *Link {
	return &Link{Target: kb, Label: label}
}
