// Package memory provides an in-process GrammarStore, useful for tests,
// embedded scenarios and servers without persistent storage.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/aretw0/tracery/pkg/domain"
	"github.com/aretw0/tracery/pkg/grammar"
)

// Store implements ports.GrammarStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]grammar.Grammar
	mu   sync.RWMutex
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		data: make(map[string]grammar.Grammar),
	}
}

// NewFromGrammars creates a store pre-loaded with grammars.
func NewFromGrammars(grammars map[string]grammar.Grammar) *Store {
	s := New()
	for name, g := range grammars {
		s.data[name] = g.Clone()
	}
	return s
}

// Save stores a copy of g so later changes by the caller are not visible.
func (s *Store) Save(ctx context.Context, name string, g grammar.Grammar) error {
	copied := g.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[name] = copied
	return nil
}

// Load returns a copy of the stored grammar.
func (s *Store) Load(ctx context.Context, name string) (grammar.Grammar, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	g, ok := s.data[name]
	if !ok {
		return nil, domain.ErrGrammarNotFound
	}
	return g.Clone(), nil
}

// Delete removes the grammar.
func (s *Store) Delete(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, name)
	return nil
}

// List returns stored grammar names, sorted.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.data))
	for name := range s.data {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}
