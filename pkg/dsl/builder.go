package dsl

import (
	"fmt"

	"github.com/aretw0/tracery/pkg/adapters/memory"
	"github.com/aretw0/tracery/pkg/grammar"
)

// Builder manages the grammar construction.
type Builder struct {
	rules map[string]*RuleBuilder
	order []string
}

// New creates a new grammar builder.
func New() *Builder {
	return &Builder{
		rules: make(map[string]*RuleBuilder),
	}
}

// Rule starts or continues the rule named name.
// If the rule already exists, it returns the existing builder.
func (b *Builder) Rule(name string) *RuleBuilder {
	if rb, ok := b.rules[name]; ok {
		return rb
	}
	rb := &RuleBuilder{name: name, builder: b}
	b.rules[name] = rb
	b.order = append(b.order, name)
	return rb
}

// Grammar compiles the rules. A rule left without text is an error.
func (b *Builder) Grammar() (grammar.Grammar, error) {
	g := make(grammar.Grammar, len(b.rules))
	for _, name := range b.order {
		rb := b.rules[name]
		switch {
		case rb.single != nil:
			g[name] = grammar.Single(*rb.single)
		case len(rb.variants) > 0:
			rule, err := grammar.NewChoices(rb.variants)
			if err != nil {
				return nil, fmt.Errorf("rule %q: %w", name, err)
			}
			g[name] = rule
		default:
			return nil, fmt.Errorf("rule %q has no text", name)
		}
	}
	if err := g.Check(); err != nil {
		return nil, err
	}
	return g, nil
}

// Build compiles the grammar into a memory store under name.
func (b *Builder) Build(name string) (*memory.Store, error) {
	g, err := b.Grammar()
	if err != nil {
		return nil, fmt.Errorf("failed to build grammar: %w", err)
	}
	return memory.NewFromGrammars(map[string]grammar.Grammar{name: g}), nil
}
