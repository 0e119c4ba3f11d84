package domain

// Template syntax.
const (
	// SymbolDelimiter opens and closes a symbol reference: #name.mod#.
	SymbolDelimiter = '#'
	// ActionOpen and ActionClose wrap an action: [name:rule].
	ActionOpen  = '['
	ActionClose = ']'
	// Escape marks the next character as literal.
	Escape = '\\'
	// ModifierSeparator separates a symbol key from its modifiers.
	ModifierSeparator = "."
	// ActionSeparator separates the binding name from its rule.
	ActionSeparator = ":"
	// PopKeyword, used as an action rule, removes the binding.
	PopKeyword = "POP"
)

// DefaultMaxDepth bounds nested symbol/action evaluation.
// Self-referential grammars fail with ErrRecursionLimit instead of exhausting the stack.
const DefaultMaxDepth = 256
