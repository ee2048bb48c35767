package app

import (
	"context"

	"github.com/ableKiHo/community-web/internal/config"
	"github.com/ableKiHo/community-web/internal/db"
	"github.com/ableKiHo/community-web/internal/logger"
	"github.com/ableKiHo/community-web/internal/redis"
	"github.com/ableKiHo/community-web/internal/session"
	"github.com/ableKiHo/community-web/internal/users"

	"github.com/uptrace/bun"
)

type Infra struct {
	DB    *bun.DB
	Redis *redis.Client // nil when REDIS_ADDR is unset

	Users      users.Store
	Sessions   session.Store
	Identities session.IdentityCache
}

func setupInfra(ctx context.Context, cfg config.Config) (*Infra, error) {
	database, err := db.Open(ctx, cfg.DatabaseDriver, cfg.DatabaseDSN)
	if err != nil {
		return nil, err
	}

	logger.Info("database ready", map[string]any{
		"driver": cfg.DatabaseDriver,
	})

	infra := &Infra{
		DB:    database,
		Users: users.NewSQLStore(database),
	}

	if cfg.RedisAddr == "" {
		infra.Sessions = session.NewMemoryStore()
		infra.Identities = session.NewLRUIdentityCache(cfg.IdentityCacheSize, cfg.SessionTTL)
		logger.Warn("REDIS_ADDR not set, sessions kept in process", nil)
		return infra, nil
	}

	redisClient, err := redis.New(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		_ = database.Close()
		return nil, err
	}

	logger.Info("redis ready", nil)

	infra.Redis = redisClient
	infra.Sessions = session.NewRedisStore(redisClient.Client)
	infra.Identities = session.NewRedisIdentityCache(redisClient.Client, cfg.SessionTTL, cfg.IdentityCacheSize)
	return infra, nil
}

func (i *Infra) Close() error {
	var firstErr error
	if i.Redis != nil {
		firstErr = i.Redis.Close()
	}
	if err := i.DB.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
