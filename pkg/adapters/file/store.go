// Package file stores grammars as files in a directory, one file per grammar.
package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/tracery/pkg/domain"
	"github.com/aretw0/tracery/pkg/grammar"
)

// Store implements ports.GrammarStore on the local filesystem.
// A grammar named "hero" lives in hero.yaml, hero.yml, hero.json or hero.hcl.
// Save always writes YAML.
type Store struct {
	BasePath string
}

// New creates a new Store with the given base path.
// If basePath is empty, it defaults to "grammars".
func New(basePath string) *Store {
	if basePath == "" {
		basePath = "grammars"
	}
	return &Store{BasePath: basePath}
}

func validName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty", domain.ErrInvalidName)
	}
	if strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return fmt.Errorf("%w %q", domain.ErrInvalidName, name)
	}
	return nil
}

// find returns the first existing file for name, in grammar.Extensions order.
func (s *Store) find(name string) (string, error) {
	for _, ext := range grammar.Extensions {
		path := filepath.Join(s.BasePath, name+ext)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		} else if !errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("failed to stat grammar file: %w", err)
		}
	}
	return "", domain.ErrGrammarNotFound
}

// Load reads and decodes the grammar file.
func (s *Store) Load(ctx context.Context, name string) (grammar.Grammar, error) {
	if err := validName(name); err != nil {
		return nil, err
	}
	path, err := s.find(name)
	if err != nil {
		return nil, err
	}
	return grammar.LoadFile(path)
}

// Save writes the grammar as YAML atomically.
// It writes to a temporary file first, syncs via fsync, and then renames it to the destination.
// Files of the same name in other formats are removed so Load sees the new version.
func (s *Store) Save(ctx context.Context, name string, g grammar.Grammar) error {
	if err := validName(name); err != nil {
		return err
	}

	if err := os.MkdirAll(s.BasePath, 0755); err != nil {
		return fmt.Errorf("failed to ensure grammar directory: %w", err)
	}

	data, err := grammar.Encode(g, grammar.FormatYAML)
	if err != nil {
		return fmt.Errorf("failed to encode grammar: %w", err)
	}

	destPath := filepath.Join(s.BasePath, name+".yaml")

	// Same directory so the rename stays on one filesystem.
	tmpFile, err := os.CreateTemp(s.BasePath, "tmp-"+name+"-*.yaml")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath) // no-op after a successful rename
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to fsync temp file: %w", err)
	}
	// Cannot rename an open file on Windows.
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	// On Windows, os.Rename fails if dest exists.
	if _, err := os.Stat(destPath); err == nil {
		if err := os.Remove(destPath); err != nil {
			return fmt.Errorf("failed to remove existing grammar file for overwrite: %w", err)
		}
	}
	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file to grammar file: %w", err)
	}

	return s.removeOthers(name, destPath)
}

func (s *Store) removeOthers(name, keep string) error {
	for _, ext := range grammar.Extensions {
		path := filepath.Join(s.BasePath, name+ext)
		if path == keep {
			continue
		}
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to remove stale grammar file: %w", err)
		}
	}
	return nil
}

// Delete removes every file for the grammar.
func (s *Store) Delete(ctx context.Context, name string) error {
	if err := validName(name); err != nil {
		return err
	}
	return s.removeOthers(name, "")
}

// List returns the names of all grammar files, sorted and de-duplicated.
func (s *Store) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.BasePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list grammars: %w", err)
	}

	seen := make(map[string]bool)
	names := []string{}
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), "tmp-") {
			continue
		}
		ext := filepath.Ext(entry.Name())
		if !isGrammarExt(ext) {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), ext)
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

func isGrammarExt(ext string) bool {
	for _, e := range grammar.Extensions {
		if strings.EqualFold(e, ext) {
			return true
		}
	}
	return false
}
