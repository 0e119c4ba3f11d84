package cli

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/aretw0/tracery/internal/config"
	"github.com/aretw0/tracery/internal/presentation/graph"
	"github.com/aretw0/tracery/internal/validator"
	"github.com/aretw0/tracery/pkg/grammar"
)

// describer is implemented by loaders that keep a description per grammar (loam).
type describer interface {
	Describe(ctx context.Context, name string) (string, error)
}

// ListGrammars prints the names of the stored grammars, one per line,
// followed by a tab and the description when the backend has one.
func ListGrammars(ctx context.Context, cfg *config.Config, w io.Writer) error {
	backend, err := OpenBackend(cfg)
	if err != nil {
		return err
	}
	defer backend.Close()

	names, err := backend.Loader.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list grammars: %w", err)
	}
	desc, _ := backend.Loader.(describer)
	for _, name := range names {
		if desc != nil {
			if d, err := desc.Describe(ctx, name); err == nil && d != "" {
				fmt.Fprintf(w, "%s\t%s\n", name, d)
				continue
			}
		}
		fmt.Fprintln(w, name)
	}
	return nil
}

// ShowGrammar prints a stored grammar in the given format (yaml or json).
func ShowGrammar(ctx context.Context, cfg *config.Config, name string, format grammar.Format, w io.Writer) error {
	backend, err := OpenBackend(cfg)
	if err != nil {
		return err
	}
	defer backend.Close()

	g, err := backend.Loader.Load(ctx, name)
	if err != nil {
		return err
	}
	data, err := grammar.Encode(g, format)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// ImportGrammar reads a grammar file and saves it to the store. An empty
// name uses the file name without its extension.
func ImportGrammar(ctx context.Context, cfg *config.Config, path, name string) (string, error) {
	g, err := grammar.LoadFile(path)
	if err != nil {
		return "", err
	}
	if name == "" {
		base := filepath.Base(path)
		name = strings.TrimSuffix(base, filepath.Ext(base))
	}

	backend, err := OpenBackend(cfg)
	if err != nil {
		return "", err
	}
	defer backend.Close()

	store, err := backend.Store()
	if err != nil {
		return "", err
	}
	if err := store.Save(ctx, name, g); err != nil {
		return "", fmt.Errorf("failed to save grammar %q: %w", name, err)
	}
	return name, nil
}

// DeleteGrammar removes a grammar from the store.
func DeleteGrammar(ctx context.Context, cfg *config.Config, name string) error {
	backend, err := OpenBackend(cfg)
	if err != nil {
		return err
	}
	defer backend.Close()

	store, err := backend.Store()
	if err != nil {
		return err
	}
	return store.Delete(ctx, name)
}

// ValidateGrammar lints a grammar and prints a summary. It returns the
// report's error when there are findings.
func ValidateGrammar(ctx context.Context, cfg *config.Config, path, name, start string, w io.Writer) error {
	g, err := loadGrammar(ctx, cfg, path, name)
	if err != nil {
		return err
	}
	if start != "" {
		if _, ok := g.Lookup(start); !ok {
			return fmt.Errorf("start symbol %q is not defined", start)
		}
	}

	report := validator.Validate(g, start)
	if err := report.Err(); err != nil {
		return err
	}
	fmt.Fprintf(w, "✓ Grammar is valid (%d rules)\n", len(g))
	return nil
}

// GraphGrammar prints a Mermaid flowchart of the grammar, marking undefined symbols.
func GraphGrammar(ctx context.Context, cfg *config.Config, path, name, start string, w io.Writer) error {
	g, err := loadGrammar(ctx, cfg, path, name)
	if err != nil {
		return err
	}

	overlay := &graph.GraphOverlay{Start: start}
	for _, ref := range validator.Validate(g, "").Undefined {
		overlay.Missing = append(overlay.Missing, ref.Symbol)
	}
	_, err = io.WriteString(w, graph.GenerateMermaid(g, overlay))
	return err
}
