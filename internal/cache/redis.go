package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/naxonsolutions/pdcheck/internal/domain"
)

// RedisCache is a Redis-backed cache for Pro tier deployments.
type RedisCache struct {
	client *redis.Client
	prefix string
}

// NewRedisCache creates a new Redis cache.
func NewRedisCache(cfg domain.CacheConfig) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	return &RedisCache{
		client: client,
		prefix: "pdcheck:",
	}, nil
}

// Get retrieves a value from Redis.
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}
	return data, nil
}

// Set stores a value in Redis with TTL.
func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, c.prefix+key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

// Delete removes a value from Redis.
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, c.prefix+key).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

// GetDesignation retrieves a cached designation record.
func (c *RedisCache) GetDesignation(ctx context.Context, postcode string) (*domain.DesignationRecord, error) {
	data, err := c.Get(ctx, "designation:"+postcode)
	if err != nil || data == nil {
		return nil, err
	}

	var record domain.DesignationRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("designation unmarshal failed: %w", err)
	}
	return &record, nil
}

// SetDesignation caches a designation record.
func (c *RedisCache) SetDesignation(ctx context.Context, postcode string, record *domain.DesignationRecord, ttl time.Duration) error {
	bytes, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("designation marshal failed: %w", err)
	}
	return c.Set(ctx, "designation:"+postcode, bytes, ttl)
}

// Ping checks Redis health.
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the Redis connection.
func (c *RedisCache) Close() error {
	return c.client.Close()
}
