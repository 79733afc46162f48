package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/andresuchdata/stockledger/internal/config"
	"github.com/redis/go-redis/v9"
)

const (
	analyticsKeyPrefix = "analytics:"
	scanBatchSize      = 100
)

// Query identifies one cached analytics payload: the view name plus the
// parameters it was computed with.
type Query struct {
	View   string
	Params map[string]string
}

// AnalyticsCache stores computed analytics views as JSON. Any ledger mutation
// invalidates every entry.
type AnalyticsCache interface {
	Get(ctx context.Context, q Query, dest any) (bool, error)
	Set(ctx context.Context, q Query, value any) error
	InvalidateAll(ctx context.Context) error
}

type redisAnalyticsCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopAnalyticsCache struct{}

// NewAnalyticsCache returns a Redis-backed cache when caching is enabled and
// a noop cache otherwise.
func NewAnalyticsCache(cfg config.CacheConfig) (AnalyticsCache, error) {
	if !cfg.Enabled {
		return &noopAnalyticsCache{}, nil
	}

	client, err := NewRedisClient(cfg)
	if err != nil {
		return nil, err
	}

	return NewRedisAnalyticsCache(client, cacheTTL(cfg)), nil
}

func NewRedisAnalyticsCache(client *redis.Client, ttl time.Duration) AnalyticsCache {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &redisAnalyticsCache{client: client, ttl: ttl}
}

func NewNoopAnalyticsCache() AnalyticsCache {
	return &noopAnalyticsCache{}
}

func (c *redisAnalyticsCache) Get(ctx context.Context, q Query, dest any) (bool, error) {
	payload, err := c.client.Get(ctx, BuildKey(q)).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis get failed: %w", err)
	}

	if err := json.Unmarshal(payload, dest); err != nil {
		return false, fmt.Errorf("decode %s cache: %w", q.View, err)
	}
	return true, nil
}

func (c *redisAnalyticsCache) Set(ctx context.Context, q Query, value any) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s cache: %w", q.View, err)
	}

	if err := c.client.Set(ctx, BuildKey(q), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *redisAnalyticsCache) InvalidateAll(ctx context.Context) error {
	return deleteKeysWithPrefix(ctx, c.client, analyticsKeyPrefix, scanBatchSize)
}

func (n *noopAnalyticsCache) Get(ctx context.Context, q Query, dest any) (bool, error) {
	return false, nil
}

func (n *noopAnalyticsCache) Set(ctx context.Context, q Query, value any) error {
	return nil
}

func (n *noopAnalyticsCache) InvalidateAll(ctx context.Context) error {
	return nil
}

// memoryAnalyticsCache keeps encoded payloads in process. Entries do not
// expire; they live until the next invalidation.
type memoryAnalyticsCache struct {
	mu      sync.RWMutex
	entries map[string][]byte
}

func NewMemoryAnalyticsCache() AnalyticsCache {
	return &memoryAnalyticsCache{entries: make(map[string][]byte)}
}

func (m *memoryAnalyticsCache) Get(ctx context.Context, q Query, dest any) (bool, error) {
	m.mu.RLock()
	payload, ok := m.entries[BuildKey(q)]
	m.mu.RUnlock()
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(payload, dest); err != nil {
		return false, fmt.Errorf("decode %s cache: %w", q.View, err)
	}
	return true, nil
}

func (m *memoryAnalyticsCache) Set(ctx context.Context, q Query, value any) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s cache: %w", q.View, err)
	}
	m.mu.Lock()
	m.entries[BuildKey(q)] = payload
	m.mu.Unlock()
	return nil
}

func (m *memoryAnalyticsCache) InvalidateAll(ctx context.Context) error {
	m.mu.Lock()
	m.entries = make(map[string][]byte)
	m.mu.Unlock()
	return nil
}

// BuildKey hashes the normalized parameters so that parameter order and case
// do not produce distinct entries.
func BuildKey(q Query) string {
	return analyticsKeyPrefix + strings.ToLower(strings.TrimSpace(q.View)) + ":" + paramsHash(q.Params)
}

func paramsHash(params map[string]string) string {
	parts := make([]string, 0, len(params))
	for k, v := range params {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		parts = append(parts, strings.ToLower(strings.TrimSpace(k))+"="+strings.ToLower(v))
	}

	if len(parts) == 0 {
		return "default"
	}

	sort.Strings(parts)
	sum := sha1.Sum([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:])
}
