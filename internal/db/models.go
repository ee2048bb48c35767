package db

import "github.com/uptrace/bun"

// UserRecord is the users table row. CreatedAt is unix milliseconds so both
// dialects scan it the same way.
type UserRecord struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID            string `bun:"id,pk"`
	Name          string `bun:"name,notnull"`
	Email         string `bun:"email,notnull"`
	Provider      string `bun:"provider,notnull"`
	PrincipalID   string `bun:"principal_id,notnull"`
	AuthorityRole string `bun:"authority_role,notnull"`
	CreatedAt     int64  `bun:"created_at,notnull"`
}
