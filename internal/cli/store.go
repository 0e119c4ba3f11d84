package cli

import (
	"fmt"

	"github.com/aretw0/tracery/internal/config"
	"github.com/aretw0/tracery/pkg/adapters/file"
	"github.com/aretw0/tracery/pkg/adapters/loam"
	"github.com/aretw0/tracery/pkg/adapters/memory"
	"github.com/aretw0/tracery/pkg/adapters/redis"
	"github.com/aretw0/tracery/pkg/adapters/sqlite"
	"github.com/aretw0/tracery/pkg/ports"
)

// Backend is an opened grammar source plus what it can share with a session manager.
type Backend struct {
	Loader ports.GrammarLoader
	// Locker is set for backends that coordinate replicas (redis).
	Locker ports.DistributedLocker
	close  func() error
}

// Close releases connections held by the backend.
func (b *Backend) Close() error {
	if b.close == nil {
		return nil
	}
	return b.close()
}

// Store returns the backend as a writable store, or an error for read-only backends.
func (b *Backend) Store() (ports.GrammarStore, error) {
	store, ok := b.Loader.(ports.GrammarStore)
	if !ok {
		return nil, fmt.Errorf("grammar backend is read-only")
	}
	return store, nil
}

// OpenBackend opens the grammar backend selected by cfg.Store.
func OpenBackend(cfg *config.Config) (*Backend, error) {
	switch cfg.Store {
	case config.StoreMemory:
		return &Backend{Loader: memory.New()}, nil

	case config.StoreFile:
		return &Backend{Loader: file.New(cfg.GrammarDir)}, nil

	case config.StoreLoam:
		loader, err := loam.Open(cfg.GrammarDir)
		if err != nil {
			return nil, fmt.Errorf("open loam repository: %w", err)
		}
		return &Backend{Loader: loader}, nil

	case config.StoreSQLite:
		store, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return &Backend{Loader: store, close: store.Close}, nil

	case config.StoreRedis:
		store := redis.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		return &Backend{
			Loader: store,
			Locker: redis.NewLocker(store.Client(), redis.DefaultPrefix),
			close:  store.Close,
		}, nil

	default:
		return nil, fmt.Errorf("unknown store %q", cfg.Store)
	}
}
