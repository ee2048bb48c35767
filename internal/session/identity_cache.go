package session

import (
	"context"
	"time"

	"github.com/ableKiHo/community-web/internal/auth"

	"github.com/go-redis/cache/v9"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/redis/go-redis/v9"
)

// IdentityCache memoizes the user resolved for a session. It is a pure
// lookup optimization: a miss only means reconciliation runs again.
type IdentityCache interface {
	Get(ctx context.Context, sessionID string) (*auth.User, bool, error)
	Put(ctx context.Context, sessionID string, user *auth.User) error
	Evict(ctx context.Context, sessionID string) error
}

// LRUIdentityCache is an in-process cache bounded by size and TTL.
type LRUIdentityCache struct {
	data *expirable.LRU[string, auth.User]
}

var _ IdentityCache = (*LRUIdentityCache)(nil)

func NewLRUIdentityCache(capacity int, ttl time.Duration) *LRUIdentityCache {
	return &LRUIdentityCache{
		data: expirable.NewLRU[string, auth.User](capacity, nil, ttl),
	}
}

func (c *LRUIdentityCache) Get(ctx context.Context, sessionID string) (*auth.User, bool, error) {
	u, ok := c.data.Get(sessionID)
	if !ok {
		return nil, false, nil
	}
	return &u, true, nil
}

func (c *LRUIdentityCache) Put(ctx context.Context, sessionID string, user *auth.User) error {
	if user == nil {
		return nil
	}
	c.data.Add(sessionID, *user)
	return nil
}

func (c *LRUIdentityCache) Evict(ctx context.Context, sessionID string) error {
	c.data.Remove(sessionID)
	return nil
}

// RedisIdentityCache shares resolved users between instances, with a
// TinyLFU tier in front of Redis for hot sessions.
type RedisIdentityCache struct {
	data *cache.Cache
	ttl  time.Duration
}

var _ IdentityCache = (*RedisIdentityCache)(nil)

func NewRedisIdentityCache(client *redis.Client, ttl time.Duration, localSize int) *RedisIdentityCache {
	return &RedisIdentityCache{
		data: cache.New(&cache.Options{
			Redis:      client,
			LocalCache: cache.NewTinyLFU(localSize, ttl),
		}),
		ttl: ttl,
	}
}

func identityCacheKey(sessionID string) string {
	return "session-user:" + sessionID
}

func (c *RedisIdentityCache) Get(ctx context.Context, sessionID string) (*auth.User, bool, error) {
	var u auth.User
	err := c.data.Get(ctx, identityCacheKey(sessionID), &u)
	if err == cache.ErrCacheMiss {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return &u, true, nil
}

func (c *RedisIdentityCache) Put(ctx context.Context, sessionID string, user *auth.User) error {
	if user == nil {
		return nil
	}
	return c.data.Set(&cache.Item{
		Ctx:   ctx,
		Key:   identityCacheKey(sessionID),
		Value: user,
		TTL:   c.ttl,
	})
}

func (c *RedisIdentityCache) Evict(ctx context.Context, sessionID string) error {
	err := c.data.Delete(ctx, identityCacheKey(sessionID))
	if err == cache.ErrCacheMiss {
		return nil
	}
	return err
}

// NopIdentityCache never remembers anything.
type NopIdentityCache struct{}

var _ IdentityCache = NopIdentityCache{}

func (NopIdentityCache) Get(context.Context, string) (*auth.User, bool, error) { return nil, false, nil }
func (NopIdentityCache) Put(context.Context, string, *auth.User) error         { return nil }
func (NopIdentityCache) Evict(context.Context, string) error                   { return nil }
