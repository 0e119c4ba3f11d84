/*
Package dsl provides a fluent Go builder for grammars.

It lets programs define rules in code instead of YAML, JSON or HCL files,
which is handy for generated grammars and for tests.

Example usage:

	b := dsl.New()
	b.Rule("origin").Text("#hero.capitalize# met #animal.a#.")
	b.Rule("hero").Choices("ada", "grace")
	b.Rule("animal").Choices("owl", "cat").Choice("emu")

	g, err := b.Grammar()
	// ... pass g to tracery.New, or use b.Build() for a store.
*/
package dsl
