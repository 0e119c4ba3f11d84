package ports

import (
	"context"

	"github.com/aretw0/tracery/pkg/grammar"
)

// GrammarLoader defines how engines retrieve grammars.
// This allows the storage layer (Loam, FS, Memory, SQL) to be decoupled.
type GrammarLoader interface {
	// Load returns the grammar registered under name.
	// Returns domain.ErrGrammarNotFound if it does not exist.
	Load(ctx context.Context, name string) (grammar.Grammar, error)

	// List returns the names of all available grammars, sorted.
	List(ctx context.Context) ([]string, error)
}

// Watchable defines an interface for loaders that can notify about backend changes.
// This is typically used for hot-reload of grammars in long-running servers.
type Watchable interface {
	// Watch returns a channel that receives the name of each grammar that changed.
	// The channel is closed when ctx is done.
	Watch(ctx context.Context) (<-chan string, error)
}
