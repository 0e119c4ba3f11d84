// Package tests holds reusable contract suites for port implementations.
package tests

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/tracery/pkg/domain"
	"github.com/aretw0/tracery/pkg/grammar"
	"github.com/aretw0/tracery/pkg/ports"
)

// RunGrammarStoreContract verifies that a GrammarStore implementation
// adheres to the defined interface contract.
func RunGrammarStoreContract(t *testing.T, store ports.GrammarStore) {
	t.Helper()
	ctx := context.Background()
	prefix := "contract-" + time.Now().Format("20060102150405")

	sample := grammar.Grammar{
		"origin":   grammar.Single("#greeting#, #name#!"),
		"name":     grammar.Choices("Ada", "Grace", "Edsger"),
		"greeting": grammar.Single("hello"),
	}

	t.Run("Save and Load", func(t *testing.T) {
		name := prefix + "-roundtrip"
		require.NoError(t, store.Save(ctx, name, sample), "Save should not return error")
		defer func() { _ = store.Delete(ctx, name) }()

		loaded, err := store.Load(ctx, name)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, sample, loaded)
	})

	t.Run("Save Overwrites", func(t *testing.T) {
		name := prefix + "-overwrite"
		require.NoError(t, store.Save(ctx, name, sample))
		defer func() { _ = store.Delete(ctx, name) }()

		replacement := grammar.Grammar{"origin": grammar.Single("bye")}
		require.NoError(t, store.Save(ctx, name, replacement))

		loaded, err := store.Load(ctx, name)
		require.NoError(t, err)
		assert.Equal(t, replacement, loaded)
	})

	t.Run("Loaded Grammar Is A Copy", func(t *testing.T) {
		name := prefix + "-copy"
		require.NoError(t, store.Save(ctx, name, sample))
		defer func() { _ = store.Delete(ctx, name) }()

		loaded, err := store.Load(ctx, name)
		require.NoError(t, err)
		loaded["origin"] = grammar.Single("mutated")

		again, err := store.Load(ctx, name)
		require.NoError(t, err)
		assert.Equal(t, sample["origin"], again["origin"])
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, prefix+"-missing")
		assert.ErrorIs(t, err, domain.ErrGrammarNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		name := prefix + "-delete"
		require.NoError(t, store.Save(ctx, name, sample))

		require.NoError(t, store.Delete(ctx, name), "Delete should not return error")

		_, err := store.Load(ctx, name)
		assert.ErrorIs(t, err, domain.ErrGrammarNotFound, "Load after Delete should return ErrGrammarNotFound")

		assert.NoError(t, store.Delete(ctx, name), "Deleting twice is not an error")
	})

	t.Run("List", func(t *testing.T) {
		names := []string{prefix + "-b", prefix + "-a"}
		for _, n := range names {
			require.NoError(t, store.Save(ctx, n, sample))
		}
		defer func() {
			for _, n := range names {
				_ = store.Delete(ctx, n)
			}
		}()

		listed, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, listed, names[0])
		assert.Contains(t, listed, names[1])
		assert.IsIncreasing(t, listed, fmt.Sprintf("List should be sorted, got %v", listed))
	})
}
