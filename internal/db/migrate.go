package db

import (
	"context"
	"fmt"

	"github.com/ableKiHo/community-web/internal/logger"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"
)

// Migrations holds the schema history. Each migration lives in a file named
// <timestamp>_<name>.go, which bun reads as the migration name.
var Migrations = migrate.NewMigrations()

// Migrate applies pending migrations under the migration lock.
func Migrate(ctx context.Context, db *bun.DB) error {
	migrator := migrate.NewMigrator(db, Migrations)

	if err := migrator.Init(ctx); err != nil {
		return fmt.Errorf("db: init migrations: %w", err)
	}
	if err := migrator.Lock(ctx); err != nil {
		return fmt.Errorf("db: lock migrations: %w", err)
	}
	defer func() {
		if err := migrator.Unlock(ctx); err != nil {
			logger.Warn("failed to release migration lock", map[string]any{
				"error": err.Error(),
			})
		}
	}()

	group, err := migrator.Migrate(ctx)
	if err != nil {
		return fmt.Errorf("db: migrate: %w", err)
	}
	if group.ID != 0 {
		logger.Info("database migrated", map[string]any{
			"group_id":   group.ID,
			"migrations": len(group.Migrations),
		})
	}
	return nil
}
