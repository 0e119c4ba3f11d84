package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/tracery/pkg/adapters/redis"
	"github.com/aretw0/tracery/pkg/domain"
	"github.com/aretw0/tracery/pkg/grammar"
	"github.com/aretw0/tracery/pkg/ports/tests"
)

func newClient(t *testing.T) (*miniredis.Miniredis, *backend.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisStore_Contract(t *testing.T) {
	_, client := newClient(t)
	tests.RunGrammarStoreContract(t, redis.NewFromClient(client))
}

func TestRedisStore_TTL_Expiration(t *testing.T) {
	mr, client := newClient(t)

	store := redis.NewFromClient(client, redis.WithTTL(1*time.Second))
	ctx := context.Background()
	g := grammar.Grammar{"origin": grammar.Single("short lived")}

	require.NoError(t, store.Save(ctx, "ephemeral", g))

	names, err := store.List(ctx)
	assert.NoError(t, err)
	assert.Contains(t, names, "ephemeral")

	// Key expiration happens in miniredis time.
	mr.FastForward(2 * time.Second)

	_, err = store.Load(ctx, "ephemeral")
	assert.ErrorIs(t, err, domain.ErrGrammarNotFound)

	// Index pruning relies on wall-clock time.Now().
	time.Sleep(1200 * time.Millisecond)

	names, err = store.List(ctx)
	assert.NoError(t, err)
	assert.Empty(t, names)
}

func TestRedisStore_Prefix(t *testing.T) {
	mr, client := newClient(t)

	store := redis.NewFromClient(client, redis.WithPrefix("custom:app:"))
	ctx := context.Background()

	err := store.Save(ctx, "greet", grammar.Grammar{"origin": grammar.Single("hi")})
	assert.NoError(t, err)

	assert.True(t, mr.Exists("custom:app:grammar:greet"), "Expected key with custom prefix to exist")
	assert.True(t, mr.Exists("custom:app:grammars"), "Expected index with custom prefix to exist")

	body, err := mr.Get("custom:app:grammar:greet")
	require.NoError(t, err)
	assert.JSONEq(t, `{"origin":"hi"}`, body)
}

func TestRedisStore_CorruptDocument(t *testing.T) {
	mr, client := newClient(t)
	store := redis.NewFromClient(client)

	require.NoError(t, mr.Set(redis.DefaultPrefix+"grammar:broken", `{"x": 7}`))

	_, err := store.Load(context.Background(), "broken")
	assert.ErrorIs(t, err, domain.ErrInvalidRule)
}
