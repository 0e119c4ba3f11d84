// Package loam loads grammars from a directory of markdown/YAML/JSON documents
// managed by the Loam document library.
package loam

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/loam"

	"github.com/aretw0/tracery/pkg/domain"
	"github.com/aretw0/tracery/pkg/grammar"
)

// OriginSymbol receives the document body.
const OriginSymbol = "origin"

// Loader adapts the Loam library to the GrammarLoader interface.
type Loader struct {
	Repo *loam.TypedRepository[GrammarMetadata]
}

// New creates a new Loam adapter.
func New(repo *loam.TypedRepository[GrammarMetadata]) *Loader {
	return &Loader{
		Repo: repo,
	}
}

// Open initializes a read-only Loam repository at path and wraps it.
func Open(path string) (*Loader, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}

	// Strict mode keeps numeric frontmatter as json.Number; read-only avoids
	// Loam's sandbox behavior since grammars are never written back.
	repo, err := loam.Init(absPath,
		loam.WithStrict(true),
		loam.WithReadOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize loam: %w", err)
	}
	return New(loam.NewTypedRepository[GrammarMetadata](repo)), nil
}

type document struct {
	path string
	meta GrammarMetadata
	body string
}

// index lists every document keyed by grammar name.
func (l *Loader) index(ctx context.Context) (map[string]document, error) {
	docs, err := l.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}

	byName := make(map[string]document, len(docs))
	for _, doc := range docs {
		// Use the name from metadata if available, otherwise the file name
		name := doc.Data.Name
		if name == "" {
			name = trimExtension(doc.ID)
		}

		if existing, ok := byName[name]; ok {
			return nil, fmt.Errorf("collision detected: grammar '%s' is defined in both '%s' and '%s'", name, existing.path, doc.ID)
		}
		byName[name] = document{path: doc.ID, meta: doc.Data, body: doc.Content}
	}
	return byName, nil
}

// Load decodes the rules of the named document.
func (l *Loader) Load(ctx context.Context, name string) (grammar.Grammar, error) {
	docs, err := l.index(ctx)
	if err != nil {
		return nil, err
	}
	doc, ok := docs[name]
	if !ok {
		return nil, domain.ErrGrammarNotFound
	}

	g, err := grammar.FromMap(doc.meta.Rules)
	if err != nil {
		return nil, fmt.Errorf("grammar %q (%s): %w", name, doc.path, err)
	}

	if body := strings.TrimSpace(doc.body); body != "" {
		if _, defined := g[OriginSymbol]; !defined {
			g[OriginSymbol] = grammar.Single(body)
		}
	}
	return g, nil
}

// List returns all grammar names, sorted.
func (l *Loader) List(ctx context.Context) ([]string, error) {
	docs, err := l.index(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(docs))
	for name := range docs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Describe returns the description frontmatter of a grammar.
func (l *Loader) Describe(ctx context.Context, name string) (string, error) {
	docs, err := l.index(ctx)
	if err != nil {
		return "", err
	}
	doc, ok := docs[name]
	if !ok {
		return "", domain.ErrGrammarNotFound
	}
	return doc.meta.Description, nil
}

func trimExtension(id string) string {
	ext := filepath.Ext(id)
	if ext != "" {
		return filepath.ToSlash(strings.TrimSuffix(id, ext))
	}
	return filepath.ToSlash(id)
}

// Watch implements ports.Watchable.
func (l *Loader) Watch(ctx context.Context) (<-chan string, error) {
	events, err := l.Repo.Watch(ctx, "**/*.{md,json,yaml,yml}")
	if err != nil {
		return nil, fmt.Errorf("failed to start loam watcher: %w", err)
	}

	ch := make(chan string, 1)

	go func() {
		defer close(ch)
		for {
			select {
			case <-ctx.Done():
				return
			case evt, ok := <-events:
				if !ok {
					return
				}
				// Loam debounces; pass the changed document up, respecting cancellation.
				select {
				case ch <- trimExtension(evt.ID):
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return ch, nil
}
