// Package reconciler maps canonical identities onto durable users.
package reconciler

import (
	"context"
	"errors"
	"slices"

	"github.com/ableKiHo/community-web/internal/auth"
	"github.com/ableKiHo/community-web/internal/auth/security"
	"github.com/ableKiHo/community-web/internal/logger"
	"github.com/ableKiHo/community-web/internal/metrics"
	"github.com/ableKiHo/community-web/internal/users"
)

// Reconciler finds or creates the user behind a canonical identity and keeps
// the live authentication in line with the stored role.
// It is the ONLY place where identity-to-user mapping logic lives.
type Reconciler struct {
	store users.Store
}

func New(store users.Store) *Reconciler {
	return &Reconciler{store: store}
}

// Reconcile is idempotent per email. Store errors are returned as-is.
//
// When the stored role is missing from sc's authorities it is added to them.
// The stored AuthorityRole itself is never rewritten: once a user exists the
// record is the source of truth and only the live context is corrected.
func (r *Reconciler) Reconcile(
	ctx context.Context,
	identity auth.CanonicalIdentity,
	sc *security.Context,
) (*auth.User, error) {

	// 1. Existing user by email
	user, err := r.store.FindByEmail(ctx, identity.Email)
	switch {
	case err == nil:
	case errors.Is(err, users.ErrNotFound):
		// 2. First login
		user, err = r.create(ctx, identity)
		if err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	// 3. Role sync
	SyncRole(sc, user)

	return user, nil
}

func (r *Reconciler) create(ctx context.Context, identity auth.CanonicalIdentity) (*auth.User, error) {
	user, err := r.store.Save(ctx, auth.User{
		Name:          identity.DisplayName,
		Email:         identity.Email,
		Provider:      identity.Provider,
		PrincipalID:   identity.ProviderPrincipalID,
		AuthorityRole: identity.Provider.RoleType(),
		CreatedAt:     identity.CreatedAt,
	})
	if err == nil {
		metrics.UsersCreated.WithLabelValues(identity.Provider.Value()).Inc()
		return user, nil
	}

	// A concurrent first login won the insert; the row it wrote is ours too.
	if errors.Is(err, users.ErrDuplicateEmail) {
		logger.Info("user created concurrently, reloading", map[string]any{
			"provider": identity.Provider.Value(),
		})
		return r.store.FindByEmail(ctx, identity.Email)
	}
	return nil, err
}

// SyncRole adds user's stored role to the authorities of sc when they lack
// it. The authentication keeps its shape and its original grants, so the
// session stays resolvable on later requests. It reports whether sc changed.
func SyncRole(sc *security.Context, user *auth.User) bool {
	if sc == nil || user == nil || user.AuthorityRole == "" || sc.HasAuthority(user.AuthorityRole) {
		return false
	}

	switch a := sc.Authentication().(type) {
	case *security.OAuth2Authentication:
		synced := *a
		synced.Granted = append(slices.Clone(a.Granted), user.AuthorityRole)
		sc.SetAuthentication(&synced)
	case *security.PreAuthenticated:
		synced := *a
		synced.Granted = append(slices.Clone(a.Granted), user.AuthorityRole)
		sc.SetAuthentication(&synced)
	default:
		return false
	}

	metrics.RoleSyncs.Inc()
	logger.Info("authentication role synced", map[string]any{
		"user_id": user.ID,
		"role":    user.AuthorityRole,
	})
	return true
}
