package grammar

import (
	"fmt"
	"sort"

	"github.com/aretw0/tracery/pkg/domain"
	"github.com/mitchellh/mapstructure"
)

// Grammar maps symbol names to rules.
// Engines copy the grammar they are given, so a Grammar value can be shared
// read-only between any number of engines.
type Grammar map[string]Rule

// New builds a grammar from plain strings (Single rules).
func New(rules map[string]string) Grammar {
	g := make(Grammar, len(rules))
	for k, v := range rules {
		g[k] = Single(v)
	}
	return g
}

// Lookup returns the rule for name.
func (g Grammar) Lookup(name string) (Rule, bool) {
	r, ok := g[name]
	return r, ok
}

// Symbols returns the symbol names in sorted order.
func (g Grammar) Symbols() []string {
	keys := make([]string, 0, len(g))
	for k := range g {
		keys = append(keys, k)
	}
	sort.Strings(keys) // Deterministic order
	return keys
}

// Clone returns a deep copy.
func (g Grammar) Clone() Grammar {
	if g == nil {
		return Grammar{}
	}
	cp := make(Grammar, len(g))
	for k, r := range g {
		if r.IsSingle() {
			cp[k] = Single(r.Variant(0))
			continue
		}
		cp[k] = Rule{variants: r.Variants(), multi: true}
	}
	return cp
}

// Check rejects empty symbol names. It is a decoding guard, not a linter:
// references to undefined symbols are legal and render as their key.
func (g Grammar) Check() error {
	for k := range g {
		if k == "" {
			return fmt.Errorf("%w: empty symbol name", domain.ErrInvalidGrammar)
		}
	}
	return nil
}

// FromMap decodes loosely-typed data (YAML frontmatter, generic JSON) into a Grammar.
// Values may be strings or lists; scalar list items are coerced to strings.
func FromMap(data map[string]any) (Grammar, error) {
	g := make(Grammar, len(data))
	for name, v := range data {
		if name == "" {
			return nil, fmt.Errorf("%w: empty symbol name", domain.ErrInvalidGrammar)
		}

		if s, ok := v.(string); ok {
			g[name] = Single(s)
			continue
		}

		var variants []string
		dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			WeaklyTypedInput: true,
			Result:           &variants,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create decoder: %w", err)
		}
		if err := dec.Decode(v); err != nil {
			return nil, fmt.Errorf("symbol %q: %w: %v", name, domain.ErrInvalidRule, err)
		}

		switch v.(type) {
		case []any, []string:
			rule, err := NewChoices(variants)
			if err != nil {
				return nil, fmt.Errorf("symbol %q: %w", name, err)
			}
			g[name] = rule
		default:
			// Weak decoding lifted a scalar (number, bool) into a one-item list.
			if len(variants) != 1 {
				return nil, fmt.Errorf("symbol %q: %w: got %T", name, domain.ErrInvalidRule, v)
			}
			g[name] = Single(variants[0])
		}
	}
	return g, nil
}

// ToMap converts the grammar back to plain values (string or []string).
func (g Grammar) ToMap() map[string]any {
	out := make(map[string]any, len(g))
	for k, r := range g {
		out[k] = r.value()
	}
	return out
}
