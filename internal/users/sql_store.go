package users

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/ableKiHo/community-web/internal/auth"
	"github.com/ableKiHo/community-web/internal/db"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// SQLStore persists users in Postgres or SQLite through bun.
type SQLStore struct {
	db *bun.DB
}

func NewSQLStore(db *bun.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) FindByEmail(ctx context.Context, email string) (*auth.User, error) {
	rec := new(db.UserRecord)
	err := s.db.NewSelect().
		Model(rec).
		Where("LOWER(email) = LOWER(?)", email).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, &PersistenceError{Op: "find by email", Err: err}
	}

	u := auth.User{
		ID:            rec.ID,
		Name:          rec.Name,
		Email:         rec.Email,
		PrincipalID:   rec.PrincipalID,
		AuthorityRole: rec.AuthorityRole,
		CreatedAt:     time.UnixMilli(rec.CreatedAt).UTC(),
	}
	if err := u.Provider.UnmarshalText([]byte(rec.Provider)); err != nil {
		return nil, &PersistenceError{Op: "find by email", Err: err}
	}
	return &u, nil
}

func (s *SQLStore) Save(ctx context.Context, u auth.User) (*auth.User, error) {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	u.CreatedAt = u.CreatedAt.UTC().Truncate(time.Millisecond)

	_, err := s.db.NewInsert().
		Model(&db.UserRecord{
			ID:            u.ID,
			Name:          u.Name,
			Email:         u.Email,
			Provider:      u.Provider.String(),
			PrincipalID:   u.PrincipalID,
			AuthorityRole: u.AuthorityRole,
			CreatedAt:     u.CreatedAt.UnixMilli(),
		}).
		Exec(ctx)
	if db.IsUniqueViolation(err) {
		return nil, ErrDuplicateEmail
	}
	if err != nil {
		return nil, &PersistenceError{Op: "save", Err: err}
	}
	return &u, nil
}
