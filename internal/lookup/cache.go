package lookup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache stores resolved compounds by normalized name.
type Cache interface {
	Get(ctx context.Context, name string) (*Compound, bool, error)
	Set(ctx context.Context, name string, compound *Compound) error
}

func cacheKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

type memoryEntry struct {
	compound  Compound
	expiresAt time.Time
}

// MemoryCache is a process-local TTL cache.
type MemoryCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{
		ttl:     ttl,
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (c *MemoryCache) Get(_ context.Context, name string) (*Compound, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := cacheKey(name)
	entry, ok := c.entries[key]
	if !ok {
		return nil, false, nil
	}
	if c.now().After(entry.expiresAt) {
		delete(c.entries, key)
		return nil, false, nil
	}
	compound := entry.compound
	return &compound, true, nil
}

func (c *MemoryCache) Set(_ context.Context, name string, compound *Compound) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[cacheKey(name)] = memoryEntry{compound: *compound, expiresAt: c.now().Add(c.ttl)}
	return nil
}

const redisKeyPrefix = "pharmastudy:compound:"

// RedisCache shares lookups between server instances.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache connects using a redis:// URL and pings the server.
func NewRedisCache(ctx context.Context, redisURL string, ttl time.Duration) (*RedisCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return &RedisCache{client: client, ttl: ttl}, nil
}

func (c *RedisCache) Get(ctx context.Context, name string) (*Compound, bool, error) {
	raw, err := c.client.Get(ctx, redisKeyPrefix+cacheKey(name)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var compound Compound
	if err := json.Unmarshal(raw, &compound); err != nil {
		return nil, false, fmt.Errorf("decode cached compound: %w", err)
	}
	return &compound, true, nil
}

func (c *RedisCache) Set(ctx context.Context, name string, compound *Compound) error {
	raw, err := json.Marshal(compound)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, redisKeyPrefix+cacheKey(name), raw, c.ttl).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}
