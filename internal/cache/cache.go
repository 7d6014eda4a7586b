package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/naxonsolutions/pdcheck/internal/domain"
)

// New creates a cache based on configuration.
// Community tier uses the in-memory LRU; Pro tier uses Redis, optionally
// fronted by a local LRU (two-phase).
func New(cfg domain.CacheConfig) (domain.Cache, error) {
	switch cfg.Type {
	case "memory", "":
		return NewLRUCache(cfg.LocalMaxSize), nil
	case "redis":
		redisCache, err := NewRedisCache(cfg)
		if err != nil {
			return nil, err
		}
		if cfg.EnableTwoPhase {
			return NewTwoPhaseCache(cfg, redisCache), nil
		}
		return redisCache, nil
	default:
		return nil, fmt.Errorf("unknown cache type: %s", cfg.Type)
	}
}

// TwoPhaseCache combines a local LRU (L1) with Redis (L2). Reads check L1
// first and backfill it on an L2 hit; writes and deletes go to both layers.
type TwoPhaseCache struct {
	local    *LRUCache
	remote   *RedisCache
	localTTL time.Duration
}

// NewTwoPhaseCache creates a two-phase cache over an existing Redis cache.
func NewTwoPhaseCache(cfg domain.CacheConfig, remote *RedisCache) *TwoPhaseCache {
	localTTL := cfg.LocalTTL
	if localTTL <= 0 {
		localTTL = 30 * time.Second
	}
	return &TwoPhaseCache{
		local:    NewLRUCache(cfg.LocalMaxSize),
		remote:   remote,
		localTTL: localTTL,
	}
}

// Get checks the local cache first, then Redis.
func (c *TwoPhaseCache) Get(ctx context.Context, key string) ([]byte, error) {
	if data, err := c.local.Get(ctx, key); err == nil && data != nil {
		return data, nil
	}

	data, err := c.remote.Get(ctx, key)
	if err != nil || data == nil {
		return data, err
	}

	// Backfill L1 with a short TTL so hot keys stay local.
	_ = c.local.Set(ctx, key, data, c.localTTL)
	return data, nil
}

// Set writes to both layers.
func (c *TwoPhaseCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	localTTL := ttl
	if localTTL > c.localTTL {
		localTTL = c.localTTL
	}
	_ = c.local.Set(ctx, key, value, localTTL)
	return c.remote.Set(ctx, key, value, ttl)
}

// Delete removes the key from both layers.
func (c *TwoPhaseCache) Delete(ctx context.Context, key string) error {
	_ = c.local.Delete(ctx, key)
	return c.remote.Delete(ctx, key)
}

// GetDesignation retrieves a cached designation record.
func (c *TwoPhaseCache) GetDesignation(ctx context.Context, postcode string) (*domain.DesignationRecord, error) {
	if record, err := c.local.GetDesignation(ctx, postcode); err == nil && record != nil {
		return record, nil
	}

	record, err := c.remote.GetDesignation(ctx, postcode)
	if err != nil || record == nil {
		return record, err
	}

	_ = c.local.SetDesignation(ctx, postcode, record, c.localTTL)
	return record, nil
}

// SetDesignation caches a designation record in both layers.
func (c *TwoPhaseCache) SetDesignation(ctx context.Context, postcode string, record *domain.DesignationRecord, ttl time.Duration) error {
	localTTL := ttl
	if localTTL > c.localTTL {
		localTTL = c.localTTL
	}
	_ = c.local.SetDesignation(ctx, postcode, record, localTTL)
	return c.remote.SetDesignation(ctx, postcode, record, ttl)
}

// Ping checks the remote layer; the local layer cannot fail.
func (c *TwoPhaseCache) Ping(ctx context.Context) error {
	return c.remote.Ping(ctx)
}

// Close closes both layers.
func (c *TwoPhaseCache) Close() error {
	_ = c.local.Close()
	return c.remote.Close()
}
