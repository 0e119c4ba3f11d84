package memory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/tracery/pkg/adapters/memory"
	"github.com/aretw0/tracery/pkg/grammar"
	"github.com/aretw0/tracery/pkg/ports/tests"
)

func TestMemoryStore_Contract(t *testing.T) {
	tests.RunGrammarStoreContract(t, memory.New())
}

func TestNewFromGrammars(t *testing.T) {
	src := grammar.Grammar{"origin": grammar.Single("hi")}
	store := memory.NewFromGrammars(map[string]grammar.Grammar{"greet": src})
	src["origin"] = grammar.Single("changed")

	g, err := store.Load(context.Background(), "greet")
	require.NoError(t, err)
	assert.Equal(t, grammar.Single("hi"), g["origin"])

	names, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"greet"}, names)
}
