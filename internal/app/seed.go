package app

import (
	"context"
	"errors"
	"time"

	"github.com/ableKiHo/community-web/internal/auth"
	"github.com/ableKiHo/community-web/internal/users"
)

var demoUser = auth.User{
	Name:          "havi",
	Email:         "havi@gmail.com",
	Provider:      auth.Google,
	AuthorityRole: auth.Google.RoleType(),
}

// seedDemoUser stores the demo member the board is seeded with.
func seedDemoUser(ctx context.Context, store users.Store) error {
	_, err := store.FindByEmail(ctx, demoUser.Email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, users.ErrNotFound) {
		return err
	}

	u := demoUser
	u.CreatedAt = time.Now().UTC()
	if _, err := store.Save(ctx, u); err != nil && !errors.Is(err, users.ErrDuplicateEmail) {
		return err
	}
	return nil
}
