package ports

import (
	"context"

	"github.com/aretw0/tracery/pkg/grammar"
)

// GrammarStore is a GrammarLoader that can be written to.
type GrammarStore interface {
	GrammarLoader

	// Save creates or replaces the grammar registered under name.
	Save(ctx context.Context, name string, g grammar.Grammar) error

	// Delete removes the grammar. Deleting a missing grammar is not an error.
	Delete(ctx context.Context, name string) error
}
