package grammar

import (
	"encoding/json"
	"fmt"

	"github.com/aretw0/tracery/pkg/domain"
	"gopkg.in/yaml.v3"
)

// Rule is the expansion of a symbol: either a single string or a non-empty
// list of alternative strings (variants).
// The zero value is a Single rule with an empty string.
type Rule struct {
	variants []string
	multi    bool
}

// Single returns a rule that always expands to s.
func Single(s string) Rule {
	return Rule{variants: []string{s}}
}

// Choices returns a rule choosing uniformly among variants.
// It panics if variants is empty; use NewChoices to get an error instead.
func Choices(variants ...string) Rule {
	r, err := NewChoices(variants)
	if err != nil {
		panic(err)
	}
	return r
}

// NewChoices builds a multi-variant rule, rejecting an empty list.
func NewChoices(variants []string) (Rule, error) {
	if len(variants) == 0 {
		return Rule{}, fmt.Errorf("%w: choices must not be empty", domain.ErrInvalidRule)
	}
	cp := make([]string, len(variants))
	copy(cp, variants)
	return Rule{variants: cp, multi: true}, nil
}

// IsSingle reports whether the rule is a literal string without randomness.
func (r Rule) IsSingle() bool {
	return !r.multi
}

// Len returns the number of variants (1 for a Single rule).
func (r Rule) Len() int {
	if !r.multi {
		return 1
	}
	return len(r.variants)
}

// Variant returns the i-th variant. For a Single rule every index yields the literal.
func (r Rule) Variant(i int) string {
	if !r.multi {
		if len(r.variants) == 0 {
			return ""
		}
		return r.variants[0]
	}
	return r.variants[i]
}

// Variants returns a copy of the rule's variants.
func (r Rule) Variants() []string {
	if !r.multi {
		return []string{r.Variant(0)}
	}
	cp := make([]string, len(r.variants))
	copy(cp, r.variants)
	return cp
}

// Pick returns the variant selected by intn, which must return a value in [0, n).
// Single rules never call intn.
func (r Rule) Pick(intn func(n int) int) string {
	if !r.multi || len(r.variants) == 1 {
		return r.Variant(0)
	}
	return r.variants[intn(len(r.variants))]
}

// ruleFromValue converts a loosely-typed decoded value into a Rule.
func ruleFromValue(v any) (Rule, error) {
	switch val := v.(type) {
	case string:
		return Single(val), nil
	case []string:
		return NewChoices(val)
	case []any:
		variants := make([]string, 0, len(val))
		for i, item := range val {
			s, ok := item.(string)
			if !ok {
				return Rule{}, fmt.Errorf("%w: variant %d is %T, want string", domain.ErrInvalidRule, i, item)
			}
			variants = append(variants, s)
		}
		return NewChoices(variants)
	default:
		return Rule{}, fmt.Errorf("%w: got %T, want string or list of strings", domain.ErrInvalidRule, v)
	}
}

func (r Rule) value() any {
	if !r.multi {
		return r.Variant(0)
	}
	return r.Variants()
}

// MarshalJSON encodes Single rules as strings and Choices as arrays.
func (r Rule) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.value())
}

// UnmarshalJSON accepts a string or an array of strings.
func (r *Rule) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidRule, err)
	}
	parsed, err := ruleFromValue(raw)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// MarshalYAML encodes Single rules as scalars and Choices as sequences.
func (r Rule) MarshalYAML() (any, error) {
	return r.value(), nil
}

// UnmarshalYAML accepts a scalar or a sequence of scalars.
func (r *Rule) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		*r = Single(node.Value)
		return nil
	case yaml.SequenceNode:
		variants := make([]string, 0, len(node.Content))
		for _, item := range node.Content {
			if item.Kind != yaml.ScalarNode {
				return fmt.Errorf("%w: line %d: variants must be scalars", domain.ErrInvalidRule, item.Line)
			}
			variants = append(variants, item.Value)
		}
		parsed, err := NewChoices(variants)
		if err != nil {
			return fmt.Errorf("line %d: %w", node.Line, err)
		}
		*r = parsed
		return nil
	default:
		return fmt.Errorf("%w: line %d: want string or list of strings", domain.ErrInvalidRule, node.Line)
	}
}
