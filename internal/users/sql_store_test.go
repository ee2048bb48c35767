package users

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ableKiHo/community-web/internal/auth"
	"github.com/ableKiHo/community-web/internal/db"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openSQLite(t *testing.T) *SQLStore {
	t.Helper()
	d, err := db.Open(context.Background(), db.DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })
	return NewSQLStore(d)
}

func TestSQLStoreSaveAndFind(t *testing.T) {
	ctx := context.Background()
	s := openSQLite(t)

	_, err := s.FindByEmail(ctx, "a@x.com")
	require.ErrorIs(t, err, ErrNotFound)

	created := time.Date(2024, 5, 1, 12, 0, 0, 123456789, time.UTC)
	saved, err := s.Save(ctx, auth.User{
		Name:          "A",
		Email:         "a@x.com",
		Provider:      auth.Facebook,
		PrincipalID:   "1",
		AuthorityRole: auth.Facebook.RoleType(),
		CreatedAt:     created,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, saved.ID)
	assert.Equal(t, created.Truncate(time.Millisecond), saved.CreatedAt)

	found, err := s.FindByEmail(ctx, "A@x.COM")
	require.NoError(t, err)
	assert.Equal(t, saved, found)
}

func TestSQLStoreUniqueEmail(t *testing.T) {
	ctx := context.Background()
	s := openSQLite(t)

	_, err := s.Save(ctx, auth.User{Name: "A", Email: "a@x.com", Provider: auth.Google, AuthorityRole: "ROLE_GOOGLE"})
	require.NoError(t, err)

	_, err = s.Save(ctx, auth.User{Name: "B", Email: "A@X.com", Provider: auth.Kakao, AuthorityRole: "ROLE_KAKAO"})
	assert.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestSQLStoreFailureIsPersistenceError(t *testing.T) {
	d, err := db.Open(context.Background(), db.DriverSQLite, ":memory:")
	require.NoError(t, err)
	s := NewSQLStore(d)
	require.NoError(t, d.Close())

	_, err = s.FindByEmail(context.Background(), "a@x.com")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNotFound))
	assert.True(t, auth.IsPersistenceError(err))
}
