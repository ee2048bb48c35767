package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ableKiHo/community-web/internal/auth/security"

	"github.com/redis/go-redis/v9"
)

type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore creates a Redis-backed session store.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{
		client: client,
		prefix: "session:",
	}
}

type record struct {
	SessionID      string          `json:"session_id"`
	Authentication json.RawMessage `json:"authentication"`
	CreatedAt      time.Time       `json:"created_at"`
	ExpiresAt      time.Time       `json:"expires_at"`
}

func (r *RedisStore) key(sessionID string) string {
	return r.prefix + sessionID
}

func (r *RedisStore) Create(ctx context.Context, s Session) error {
	if s.SessionID == "" || s.Authentication == nil {
		return fmt.Errorf("session: missing session_id or authentication")
	}
	return r.put(ctx, s)
}

func (r *RedisStore) Get(ctx context.Context, sessionID string) (*Session, error) {
	val, err := r.client.Get(ctx, r.key(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil // not found
	}
	if err != nil {
		return nil, fmt.Errorf("session: get: %w", err)
	}

	var rec record
	if err := json.Unmarshal(val, &rec); err != nil {
		return nil, fmt.Errorf("session: failed to unmarshal: %w", err)
	}
	authn, err := security.Unmarshal(rec.Authentication)
	if err != nil {
		return nil, fmt.Errorf("session: %w", err)
	}

	return &Session{
		SessionID:      rec.SessionID,
		Authentication: authn,
		CreatedAt:      rec.CreatedAt,
		ExpiresAt:      rec.ExpiresAt,
	}, nil
}

func (r *RedisStore) Delete(ctx context.Context, sessionID string) error {
	return r.client.Del(ctx, r.key(sessionID)).Err()
}

func (r *RedisStore) Update(ctx context.Context, s Session) error {
	if s.SessionID == "" {
		return fmt.Errorf("session: missing session_id")
	}
	if time.Until(s.ExpiresAt) <= 0 {
		// If expired, delete session instead of extending
		return r.client.Del(ctx, r.key(s.SessionID)).Err()
	}
	return r.put(ctx, s)
}

func (r *RedisStore) put(ctx context.Context, s Session) error {
	ttl := time.Until(s.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("session: expires_at must be in the future")
	}

	authn, err := security.Marshal(s.Authentication)
	if err != nil {
		return fmt.Errorf("session: %w", err)
	}
	data, err := json.Marshal(record{
		SessionID:      s.SessionID,
		Authentication: authn,
		CreatedAt:      s.CreatedAt,
		ExpiresAt:      s.ExpiresAt,
	})
	if err != nil {
		return fmt.Errorf("session: failed to marshal: %w", err)
	}

	return r.client.Set(ctx, r.key(s.SessionID), data, ttl).Err()
}
