package db

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(upCreateUsers, downCreateUsers)
}

// upCreateUsers creates the users table and the case-insensitive email index
// that settles concurrent first logins.
func upCreateUsers(ctx context.Context, db *bun.DB) error {
	if _, err := db.NewCreateTable().
		Model((*UserRecord)(nil)).
		IfNotExists().
		Exec(ctx); err != nil {
		return fmt.Errorf("create users table: %w", err)
	}

	if _, err := db.NewCreateIndex().
		Model((*UserRecord)(nil)).
		Unique().
		IfNotExists().
		Index("users_email_lower_unique").
		ColumnExpr("LOWER(email)").
		Exec(ctx); err != nil {
		return fmt.Errorf("create users email index: %w", err)
	}
	return nil
}

func downCreateUsers(ctx context.Context, db *bun.DB) error {
	if _, err := db.NewDropTable().
		Model((*UserRecord)(nil)).
		IfExists().
		Exec(ctx); err != nil {
		return fmt.Errorf("drop users table: %w", err)
	}
	return nil
}
