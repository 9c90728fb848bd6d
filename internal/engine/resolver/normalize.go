package resolver

import (
	"strings"

	"baseline/internal/engine/parser"
)

const (
	StyleKeyPrefix  = "css.properties."
	MarkupKeyPrefix = "html.elements."
	apiPrefix       = "api."
)

// Key is the canonical lookup form of a mention.
type Key struct {
	Kind parser.Kind
	// Value is the full canonical key. For scripts it is the search seed:
	// the candidate lower-cased, without an "api." prefix.
	Value string
	// Parent is the property key of a compound style key. Values may contain
	// dots themselves (1.5em), so the split point is recorded here rather than
	// recomputed from Value.
	Parent string
	// Raw is the mention text as found in the source.
	Raw string
}

// Normalize derives the canonical key of a mention. It is a pure function;
// false means the mention carries nothing to look up.
func Normalize(m parser.Mention) (Key, bool) {
	name := strings.TrimSpace(m.Name)
	if name == "" {
		return Key{}, false
	}

	switch m.Kind {
	case parser.KindStyle:
		base := StyleKeyPrefix + name
		value := strings.TrimSpace(m.Value)
		if value == "" {
			return Key{Kind: m.Kind, Value: base, Raw: name}, true
		}
		return Key{Kind: m.Kind, Value: base + "." + value, Parent: base, Raw: name}, true
	case parser.KindMarkup:
		return Key{Kind: m.Kind, Value: MarkupKeyPrefix + name, Raw: name}, true
	case parser.KindScript:
		seed := ScriptSeed(name)
		if seed == "" {
			return Key{}, false
		}
		return Key{Kind: m.Kind, Value: seed, Raw: name}, true
	default:
		return Key{}, false
	}
}

// ScriptSeed strips a leading "api." namespace and lower-cases the candidate.
func ScriptSeed(candidate string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(candidate), apiPrefix))
}
