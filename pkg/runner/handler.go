package runner

import "context"

// Result is one generated text.
type Result struct {
	// Index is the zero-based position of the result within its batch.
	Index int `json:"index"`
	// Template is the input that produced Text.
	Template string `json:"template"`
	Text     string `json:"text"`
	// Error is set when the expansion failed; Text is empty in that case.
	Error string `json:"error,omitempty"`
}

// Handler defines the strategy for presenting results.
// This allows switching between Text (CLI/TUI) and JSON (Structured) modes.
type Handler interface {
	Output(ctx context.Context, res Result) error
}

// ContentRenderer is a function that transforms the content before outputting it.
// This allows for TUI rendering (markdown to ANSI) without coupling the core package.
type ContentRenderer func(string) (string, error)
