package dsl

// RuleBuilder provides a fluent API for one rule.
type RuleBuilder struct {
	name     string
	builder  *Builder
	single   *string
	variants []string
}

// Text makes the rule a single text, replacing earlier variants.
func (rb *RuleBuilder) Text(text string) *RuleBuilder {
	rb.single = &text
	rb.variants = nil
	return rb
}

// Choices appends variants; the rule becomes a list.
func (rb *RuleBuilder) Choices(variants ...string) *RuleBuilder {
	rb.single = nil
	rb.variants = append(rb.variants, variants...)
	return rb
}

// Choice appends one variant.
func (rb *RuleBuilder) Choice(variant string) *RuleBuilder {
	return rb.Choices(variant)
}

// Rule switches to another rule of the same builder.
func (rb *RuleBuilder) Rule(name string) *RuleBuilder {
	return rb.builder.Rule(name)
}
