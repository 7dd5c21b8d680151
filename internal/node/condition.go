package node

import (
	"fmt"
	"strings"
)

// EmbedCondition decides whether an embed inlines its target. A nil
// condition defers to the next level (site, target KB, render default).
type EmbedCondition interface {
	isEmbedCondition()
	String() string
}

// EmbedBool is an authoritative decision.
type EmbedBool bool

// ReferenceCount embeds the target only while the number of other documents
// referring to it stays at or below MaxReferenceCount.
type ReferenceCount struct {
	MaxReferenceCount int
}

// NoSeries is reserved for series-aware embedding and currently never embeds.
type NoSeries struct{}

func (EmbedBool) isEmbedCondition()      {}
func (ReferenceCount) isEmbedCondition() {}
func (NoSeries) isEmbedCondition()       {}

func (b EmbedBool) String() string {
	if b {
		return "always"
	}
	return "never"
}

func (r ReferenceCount) String() string {
	return fmt.Sprintf("reference_count(%d)", r.MaxReferenceCount)
}

func (NoSeries) String() string { return "no_series" }

// FirstCondition returns the first non-nil condition.
func FirstCondition(conditions ...EmbedCondition) EmbedCondition {
	for _, condition := range conditions {
		if condition != nil {
			return condition
		}
	}
	return nil
}

// EmitCondition forces or suppresses emitting a KB as its own file.
type EmitCondition uint8

const (
	// EmitUnset defers to the render-wide default.
	EmitUnset EmitCondition = iota
	EmitAlways
	EmitNever
)

// Resolve returns the effective decision given the render default.
func (c EmitCondition) Resolve(fallback bool) bool {
	switch c {
	case EmitAlways:
		return true
	case EmitNever:
		return false
	default:
		return fallback
	}
}

func (c EmitCondition) String() string {
	switch c {
	case EmitAlways:
		return "always"
	case EmitNever:
		return "never"
	default:
		return "unset"
	}
}

// ParseEmbedCondition reads a condition from decoded configuration: a bool,
// one of "always", "never", "no_series", "default", or a mapping with a
// max_references count. Nil and "default" defer.
func ParseEmbedCondition(value any) (EmbedCondition, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case bool:
		return EmbedBool(v), nil
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "", "default":
			return nil, nil
		case "always", "true":
			return EmbedBool(true), nil
		case "never", "false":
			return EmbedBool(false), nil
		case "no_series":
			return NoSeries{}, nil
		}
		return nil, fmt.Errorf("node: unknown embed condition %q", v)
	case map[string]any:
		return parseReferenceCount(v["max_references"])
	case map[any]any:
		return parseReferenceCount(v["max_references"])
	default:
		return nil, fmt.Errorf("node: unsupported embed condition of type %T", value)
	}
}

func parseReferenceCount(value any) (EmbedCondition, error) {
	var count int
	switch v := value.(type) {
	case int:
		count = v
	case int64:
		count = int(v)
	case uint64:
		count = int(v)
	case float64:
		if v != float64(int(v)) {
			return nil, fmt.Errorf("node: max_references must be an integer, got %v", v)
		}
		count = int(v)
	case nil:
		return nil, fmt.Errorf("node: embed condition mapping requires max_references")
	default:
		return nil, fmt.Errorf("node: max_references must be an integer, got %T", value)
	}
	if count < 0 {
		return nil, fmt.Errorf("node: max_references must be zero or positive, got %d", count)
	}
	return ReferenceCount{MaxReferenceCount: count}, nil
}
