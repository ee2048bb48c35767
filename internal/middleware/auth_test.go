package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ableKiHo/community-web/internal/auth"
	"github.com/ableKiHo/community-web/internal/auth/security"
	"github.com/ableKiHo/community-web/internal/session"
	"github.com/ableKiHo/community-web/internal/users"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type resolverFunc func(ctx context.Context, sessionID string, sc *security.Context) (*auth.User, error)

func (f resolverFunc) ResolveForRequest(ctx context.Context, sessionID string, sc *security.Context) (*auth.User, error) {
	return f(ctx, sessionID, sc)
}

var devCookie = session.CookieOptions{}

func seedSession(t *testing.T, store session.Store, authn security.Authentication) {
	t.Helper()
	require.NoError(t, store.Create(context.Background(), session.Session{
		SessionID:      "sid",
		Authentication: authn,
		CreatedAt:      time.Now(),
		ExpiresAt:      time.Now().Add(time.Hour),
	}))
}

func requestWithSession() *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: session.DevCookieName, Value: "sid"})
	return req
}

func TestResolveIdentityAnonymous(t *testing.T) {
	var gotSID string
	var gotAuthn security.Authentication
	mw := NewAuthMiddleware(session.NewMemoryStore(), resolverFunc(
		func(_ context.Context, sid string, sc *security.Context) (*auth.User, error) {
			gotSID = sid
			gotAuthn = sc.Authentication()
			return nil, nil
		}), devCookie)

	called := false
	h := mw.ResolveIdentity(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		_, ok := UserFromContext(r.Context())
		assert.False(t, ok)
		assert.Equal(t, security.Anonymous{}, SecurityContextFromContext(r.Context()).Authentication())
	}))

	// unknown session id is treated like no session
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, requestWithSession())

	assert.True(t, called)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, gotSID)
	assert.Equal(t, security.Anonymous{}, gotAuthn)
}

func TestResolveIdentityAttachesUser(t *testing.T) {
	store := session.NewMemoryStore()
	authn := &security.OAuth2Authentication{Provider: "google", Granted: []string{"ROLE_GOOGLE"}}
	seedSession(t, store, authn)
	want := &auth.User{ID: "u-1", Email: "a@x.com"}

	mw := NewAuthMiddleware(store, resolverFunc(
		func(_ context.Context, sid string, sc *security.Context) (*auth.User, error) {
			assert.Equal(t, "sid", sid)
			assert.Equal(t, authn, sc.Authentication())
			return want, nil
		}), devCookie)

	var got *auth.User
	h := mw.ResolveIdentity(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = UserFromContext(r.Context())
	}))
	h.ServeHTTP(httptest.NewRecorder(), requestWithSession())

	assert.Equal(t, want, got)
}

func TestResolveIdentityPersistsCorrectedAuthentication(t *testing.T) {
	store := session.NewMemoryStore()
	seedSession(t, store, &security.OAuth2Authentication{Provider: "kakao", Granted: []string{"ROLE_GUEST"}})

	synced := &security.OAuth2Authentication{Provider: "kakao", Granted: []string{"ROLE_GUEST", "ROLE_KAKAO"}}
	mw := NewAuthMiddleware(store, resolverFunc(
		func(_ context.Context, _ string, sc *security.Context) (*auth.User, error) {
			sc.SetAuthentication(synced)
			return &auth.User{ID: "u-1", AuthorityRole: "ROLE_KAKAO"}, nil
		}), devCookie)

	mw.ResolveIdentity(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})).
		ServeHTTP(httptest.NewRecorder(), requestWithSession())

	sess, err := store.Get(context.Background(), "sid")
	require.NoError(t, err)
	require.NotNil(t, sess)
	assert.Equal(t, synced, sess.Authentication)
}

func TestResolveIdentityPersistenceErrorFailsRequest(t *testing.T) {
	store := session.NewMemoryStore()
	seedSession(t, store, &security.OAuth2Authentication{Granted: []string{"ROLE_GOOGLE"}})

	mw := NewAuthMiddleware(store, resolverFunc(
		func(context.Context, string, *security.Context) (*auth.User, error) {
			return nil, &users.PersistenceError{Op: "find by email", Err: errors.New("connection reset")}
		}), devCookie)

	called := false
	rec := httptest.NewRecorder()
	mw.ResolveIdentity(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { called = true })).
		ServeHTTP(rec, requestWithSession())

	assert.False(t, called)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestResolveIdentityDegradesToAnonymous(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"unsupported provider", &auth.UnsupportedProviderError{Tag: "ROLE_NAVER"}},
		{"malformed claims", &auth.MalformedClaimsError{Provider: auth.Google, Missing: []string{"email"}}},
		{"other", errors.New("boom")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := session.NewMemoryStore()
			seedSession(t, store, &security.OAuth2Authentication{Granted: []string{"ROLE_GOOGLE"}})

			mw := NewAuthMiddleware(store, resolverFunc(
				func(context.Context, string, *security.Context) (*auth.User, error) {
					return &auth.User{ID: "ignored"}, tt.err
				}), devCookie)

			called := false
			rec := httptest.NewRecorder()
			mw.ResolveIdentity(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
				_, ok := UserFromContext(r.Context())
				assert.False(t, ok)
			})).ServeHTTP(rec, requestWithSession())

			assert.True(t, called)
			assert.Equal(t, http.StatusOK, rec.Code)
		})
	}
}

func TestRequireUser(t *testing.T) {
	mw := NewAuthMiddleware(session.NewMemoryStore(), nil, devCookie)
	h := mw.RequireUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/me", nil))
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	h.ServeHTTP(rec, req.WithContext(WithUser(req.Context(), &auth.User{ID: "u-1"})))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestGinMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	store := session.NewMemoryStore()
	seedSession(t, store, &security.OAuth2Authentication{Granted: []string{"ROLE_GOOGLE"}})
	mw := NewAuthMiddleware(store, resolverFunc(
		func(_ context.Context, sid string, _ *security.Context) (*auth.User, error) {
			if sid == "" {
				return nil, nil
			}
			return &auth.User{ID: "u-1"}, nil
		}), devCookie)

	r := gin.New()
	r.Use(GinResolveIdentity(mw))
	r.GET("/me", GinRequireUser(mw), func(c *gin.Context) {
		c.String(http.StatusOK, CurrentUser(c).ID)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/me", nil))
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: session.DevCookieName, Value: "sid"})
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u-1", rec.Body.String())
}
