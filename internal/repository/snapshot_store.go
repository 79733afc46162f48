// Package repository is the persistence boundary of the ledger: a full
// snapshot is saved after every mutation and loaded once at startup.
package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/andresuchdata/stockledger/internal/cache"
	"github.com/andresuchdata/stockledger/internal/config"
	"github.com/andresuchdata/stockledger/internal/domain"
	"github.com/andresuchdata/stockledger/internal/repository/file"
	"github.com/andresuchdata/stockledger/internal/repository/postgres"
	"github.com/andresuchdata/stockledger/internal/repository/redisstore"
	"github.com/rs/zerolog/log"
)

// SnapshotStore saves and loads the full ledger state. Load returns
// domain.ErrSnapshotNotFound when nothing has been saved yet.
type SnapshotStore interface {
	Save(ctx context.Context, snap *domain.Snapshot) error
	Load(ctx context.Context) (*domain.Snapshot, error)
	Close() error
}

// Open builds the store selected by cfg.Store.Backend.
func Open(ctx context.Context, cfg *config.Config) (SnapshotStore, error) {
	switch cfg.Store.Backend {
	case "", "memory":
		return NewMemoryStore(), nil
	case "file":
		return file.NewStore(cfg.Store.FilePath), nil
	case "redis":
		client, err := cache.NewRedisClient(cfg.Cache)
		if err != nil {
			return nil, fmt.Errorf("open redis snapshot store: %w", err)
		}
		return redisstore.NewStore(client, cfg.Store.RedisKey), nil
	case "postgres":
		db, err := postgres.NewDB(&cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("open postgres snapshot store: %w", err)
		}
		store := postgres.NewSnapshotStore(db)
		if err := store.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}

// MemoryStore keeps the last saved snapshot in process.
type MemoryStore struct {
	mu    sync.RWMutex
	snap  *domain.Snapshot
	saves int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Save(ctx context.Context, snap *domain.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snap = snap
	m.saves++
	log.Debug().Int("saves", m.saves).Msg("snapshot kept in memory")
	return nil
}

func (m *MemoryStore) Load(ctx context.Context) (*domain.Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.snap == nil {
		return nil, domain.ErrSnapshotNotFound
	}
	return m.snap, nil
}

// Saves reports how many times Save was called.
func (m *MemoryStore) Saves() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.saves
}

func (m *MemoryStore) Close() error {
	return nil
}
