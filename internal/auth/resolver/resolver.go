// Package resolver turns the authentication of a request into a board user.
package resolver

import (
	"context"
	"time"

	"github.com/ableKiHo/community-web/internal/auth"
	"github.com/ableKiHo/community-web/internal/auth/claims"
	"github.com/ableKiHo/community-web/internal/auth/reconciler"
	"github.com/ableKiHo/community-web/internal/auth/security"
	"github.com/ableKiHo/community-web/internal/logger"
	"github.com/ableKiHo/community-web/internal/metrics"
	"github.com/ableKiHo/community-web/internal/session"

	"golang.org/x/sync/singleflight"
)

// Reconciler determines which stored user a canonical identity belongs to.
type Reconciler interface {
	Reconcile(
		ctx context.Context,
		identity auth.CanonicalIdentity,
		sc *security.Context,
	) (*auth.User, error)
}

// Resolver is invoked once per request. A cached user is returned as-is;
// otherwise the OAuth2 principal in the security context is mapped,
// reconciled and cached.
type Resolver struct {
	cache      session.IdentityCache
	reconciler Reconciler
	now        func() time.Time

	inflight singleflight.Group
}

type Option func(*Resolver)

// WithClock overrides the time stamped on canonical identities.
func WithClock(now func() time.Time) Option {
	return func(r *Resolver) { r.now = now }
}

func New(cache session.IdentityCache, rec Reconciler, opts ...Option) *Resolver {
	if cache == nil {
		cache = session.NopIdentityCache{}
	}
	r := &Resolver{
		cache:      cache,
		reconciler: rec,
		now:        time.Now,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// ResolveForRequest returns the user of the session, or (nil, nil) when the
// security context holds no OAuth2 principal. Mapping and reconciliation
// errors are returned to the caller.
func (r *Resolver) ResolveForRequest(
	ctx context.Context,
	sessionID string,
	sc *security.Context,
) (*auth.User, error) {

	// CACHED
	if sessionID != "" {
		user, ok, err := r.cache.Get(ctx, sessionID)
		if err != nil {
			logger.Warn("identity cache read failed", map[string]any{
				"error": err.Error(),
			})
		} else if ok {
			metrics.IdentityCacheHits.Inc()
			return user, nil
		}
	}
	metrics.IdentityCacheMisses.Inc()

	// NO_PRINCIPAL
	if sc == nil {
		return nil, nil
	}
	principal, ok := sc.Authentication().(*security.OAuth2Authentication)
	if !ok || principal == nil {
		return nil, nil
	}

	// PRINCIPAL_PRESENT
	if sessionID == "" {
		return r.resolve(ctx, sessionID, principal, sc)
	}

	// The shared run outlives the request that started it; followers must
	// not inherit the leader's cancellation.
	leader := false
	v, err, shared := r.inflight.Do(sessionID, func() (any, error) {
		leader = true
		return r.resolve(context.WithoutCancel(ctx), sessionID, principal, sc)
	})
	if err != nil {
		return nil, err
	}
	user := v.(*auth.User)
	if shared && !leader {
		metrics.IdentityRequestsCoalesced.Inc()
		// only the leader's context went through reconciliation
		reconciler.SyncRole(sc, user)
	}
	return user, nil
}

func (r *Resolver) resolve(
	ctx context.Context,
	sessionID string,
	principal *security.OAuth2Authentication,
	sc *security.Context,
) (*auth.User, error) {

	provider, err := providerOf(principal)
	if err != nil {
		return nil, err
	}

	identity, err := claims.MapClaims(provider, principal.Details, r.now())
	if err != nil {
		return nil, err
	}

	user, err := r.reconciler.Reconcile(ctx, identity, sc)
	if err != nil {
		return nil, err
	}

	if sessionID != "" {
		if err := r.cache.Put(ctx, sessionID, user); err != nil {
			logger.Warn("identity cache write failed", map[string]any{
				"error": err.Error(),
			})
		}
	}
	return user, nil
}

// providerOf reads the provider from the first granted authority, the label
// the OAuth2 login assigned. The principal's provider tag is only consulted
// when nothing was granted.
func providerOf(principal *security.OAuth2Authentication) (auth.Provider, error) {
	if len(principal.Granted) > 0 {
		return auth.ProviderFromAuthority(principal.Granted[0])
	}
	return auth.ParseProvider(principal.Provider)
}
