package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

// Guard enforces a single in-flight submission per widget instance. It plays
// the role of the disabled submit button when the page is posted again or
// several widget replicas share the same instance key.
//
// token identifies the submission holding key. Acquire reports true when key
// is free or already held by token, so a retried Acquire whose first attempt
// was applied still succeeds. Release only clears a marker held by token.
type Guard interface {
	Acquire(ctx context.Context, key, token string) (bool, error)
	Release(ctx context.Context, key, token string) error
}

// MemoryGuard keeps in-flight markers in process memory.
type MemoryGuard struct {
	mu   sync.Mutex
	held map[string]string
}

// NewMemoryGuard constructs an empty in-process guard.
func NewMemoryGuard() *MemoryGuard {
	return &MemoryGuard{held: make(map[string]string)}
}

// Acquire marks key as held by token. It reports false if another token holds it.
func (g *MemoryGuard) Acquire(_ context.Context, key, token string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if owner, busy := g.held[key]; busy {
		return owner == token, nil
	}
	g.held[key] = token
	return true, nil
}

// Release clears the marker for key when token holds it.
func (g *MemoryGuard) Release(_ context.Context, key, token string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.held[key] == token {
		delete(g.held, key)
	}
	return nil
}

// Cache abstracts the Redis operations used by the guard to make testing easier.
type Cache interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) (bool, error)
	// Get returns "" with a nil error when key does not exist.
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, key string) error
}

// RedisCache is a concrete implementation backed by go-redis.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache constructs a new Redis-backed cache adapter.
func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

// SetNX writes value only when key does not exist yet.
func (c *RedisCache) SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) (bool, error) {
	return c.client.SetNX(ctx, key, value, expiration).Result()
}

// Get reads key.
func (c *RedisCache) Get(ctx context.Context, key string) (string, error) {
	value, err := c.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return value, err
}

// Del removes key.
func (c *RedisCache) Del(ctx context.Context, key string) error {
	return c.client.Del(ctx, key).Err()
}

// CacheGuard stores in-flight markers in a shared cache. The TTL bounds how long
// a crashed replica can keep an instance locked.
type CacheGuard struct {
	cache Cache
	ttl   time.Duration
}

// NewCacheGuard constructs a guard on top of cache. A non-positive ttl defaults
// to ten minutes.
func NewCacheGuard(cache Cache, ttl time.Duration) *CacheGuard {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &CacheGuard{cache: cache, ttl: ttl}
}

// Acquire stores token under key unless another token is already there.
func (g *CacheGuard) Acquire(ctx context.Context, key, token string) (bool, error) {
	ok, err := g.cache.SetNX(ctx, key, token, g.ttl)
	if err != nil || ok {
		return ok, err
	}
	// an earlier attempt may have been applied even though its reply was lost
	owner, err := g.cache.Get(ctx, key)
	if err != nil {
		return false, err
	}
	return owner == token, nil
}

// Release removes key when it still holds token.
func (g *CacheGuard) Release(ctx context.Context, key, token string) error {
	owner, err := g.cache.Get(ctx, key)
	if err != nil {
		return err
	}
	if owner != token {
		return nil
	}
	return g.cache.Del(ctx, key)
}
