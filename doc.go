/*
Package tracery is a grammar-driven text generation engine.

A grammar maps symbol names to one or more candidate expansions. Flatten
expands a template by resolving embedded symbols recursively, applying
modifiers to the resolved text and evaluating actions that bind temporary
rules for the rest of the call.

# Template syntax

	#name#              expand symbol "name"
	#name.s.capitalize# expand, then apply modifiers left to right
	[hero:#name#]       evaluate "#name#" once and bind the result to "hero"
	[hero:POP]          remove the binding for "hero"
	\#                  a literal '#' (any character may be escaped)

Unknown symbols render as their own name, unknown modifiers are ignored and
malformed markup degrades to plain text. The only failure is a recursion
limit, reported as ErrRecursionLimit, for grammars whose symbols expand into
themselves.

# Usage

	g := grammar.Grammar{
		"origin": grammar.Single("#hero.capitalize# met #animal.a#."),
		"hero":   grammar.Choices("ada", "grace"),
		"animal": grammar.Choices("owl", "fox"),
	}

	engine, err := tracery.New(g)
	if err != nil {
		log.Fatal(err)
	}
	text, err := engine.Flatten("#origin#")

# Concurrency

An Engine holds the temporary bindings of the call in progress and must not be
used by overlapping Flatten calls. Build one Engine per concurrent session
(the grammar is copied and can be shared) or use pkg/session, which does this
for you.
*/
package tracery
