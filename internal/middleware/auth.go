package middleware

import (
	"context"
	"net/http"

	"github.com/ableKiHo/community-web/internal/auth"
	"github.com/ableKiHo/community-web/internal/auth/security"
	"github.com/ableKiHo/community-web/internal/logger"
	"github.com/ableKiHo/community-web/internal/metrics"
	"github.com/ableKiHo/community-web/internal/session"
)

// unexported, collision-proof context keys
type userContextKeyType struct{}
type securityContextKeyType struct{}

var (
	userKey            = userContextKeyType{}
	securityContextKey = securityContextKeyType{}
)

// UserFromContext returns the board user resolved for the request, if any.
func UserFromContext(ctx context.Context) (*auth.User, bool) {
	u, ok := ctx.Value(userKey).(*auth.User)
	return u, ok && u != nil
}

// SecurityContextFromContext returns the request's security context.
func SecurityContextFromContext(ctx context.Context) *security.Context {
	sc, ok := ctx.Value(securityContextKey).(*security.Context)
	if !ok {
		return security.NewContext(nil)
	}
	return sc
}

// WithUser attaches a resolved user to ctx.
func WithUser(ctx context.Context, u *auth.User) context.Context {
	return context.WithValue(ctx, userKey, u)
}

// IdentityResolver is implemented by resolver.Resolver.
type IdentityResolver interface {
	ResolveForRequest(ctx context.Context, sessionID string, sc *security.Context) (*auth.User, error)
}

type AuthMiddleware struct {
	Store    session.Store
	Resolver IdentityResolver
	Cookie   session.CookieOptions

	// LoginPath is where RequireUser sends anonymous visitors.
	LoginPath string
}

func NewAuthMiddleware(store session.Store, resolver IdentityResolver, cookie session.CookieOptions) *AuthMiddleware {
	return &AuthMiddleware{
		Store:     store,
		Resolver:  resolver,
		Cookie:    cookie,
		LoginPath: "/login",
	}
}

// ResolveIdentity attaches the security context and, when the session
// belongs to a social login, the resolved user. Requests without a usable
// identity continue anonymously; only storage failures end the request.
func (a *AuthMiddleware) ResolveIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		// 1. Load session from cookie
		sessionID := session.ReadCookie(r, a.Cookie)
		var sess *session.Session
		if sessionID != "" {
			var err error
			sess, err = a.Store.Get(ctx, sessionID)
			if err != nil {
				logger.Error("session load failed", map[string]any{
					"error": err.Error(),
				})
			}
			if sess == nil {
				sessionID = ""
			}
		}

		// 2. Security context from the stored authentication
		var authn security.Authentication
		if sess != nil {
			authn = sess.Authentication
		}
		sc := security.NewContext(authn)

		// 3. Resolve
		user, err := a.Resolver.ResolveForRequest(ctx, sessionID, sc)
		if err != nil {
			if !degrade(err) {
				http.Error(w, "internal error", http.StatusInternalServerError)
				return
			}
			user = nil
		}

		// 4. Persist a corrected authentication back to the session
		if sc.Changed() && sess != nil {
			sess.Authentication = sc.Authentication()
			if err := a.Store.Update(ctx, *sess); err != nil {
				logger.Error("session update failed", map[string]any{
					"error": err.Error(),
				})
			}
		}

		ctx = context.WithValue(ctx, securityContextKey, sc)
		if user != nil {
			ctx = WithUser(ctx, user)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireUser redirects requests without a resolved user to the login page.
func (a *AuthMiddleware) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := UserFromContext(r.Context()); !ok {
			http.Redirect(w, r, a.LoginPath, http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// degrade logs a resolution failure and reports whether the request may
// continue as anonymous.
func degrade(err error) bool {
	switch {
	case auth.IsPersistenceError(err):
		metrics.ResolutionFailures.WithLabelValues("persistence").Inc()
		logger.Error("identity resolution failed", map[string]any{
			"error": err.Error(),
		})
		return false
	case auth.IsUnsupportedProvider(err):
		metrics.ResolutionFailures.WithLabelValues("unsupported_provider").Inc()
		logger.Error("identity resolution hit unsupported provider", map[string]any{
			"error": err.Error(),
		})
	case auth.IsMalformedClaims(err):
		metrics.ResolutionFailures.WithLabelValues("malformed_claims").Inc()
		logger.Warn("identity resolution got malformed claims", map[string]any{
			"error": err.Error(),
		})
	default:
		metrics.ResolutionFailures.WithLabelValues("other").Inc()
		logger.Error("identity resolution failed", map[string]any{
			"error": err.Error(),
		})
	}
	return true
}
