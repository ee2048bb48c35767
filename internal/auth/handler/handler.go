package handler

import (
	"net/http"
	"time"

	"github.com/ableKiHo/community-web/internal/auth"
	"github.com/ableKiHo/community-web/internal/auth/provider"
	"github.com/ableKiHo/community-web/internal/auth/security"
	"github.com/ableKiHo/community-web/internal/logger"
	"github.com/ableKiHo/community-web/internal/middleware"
	"github.com/ableKiHo/community-web/internal/session"

	"github.com/gin-gonic/gin"
)

const (
	ErrorPath  = "/error"
	LogoutPath = "/logout"
	HomePath   = "/"
)

// CompletePath is where a successful login for p lands.
func CompletePath(p auth.Provider) string {
	return "/" + p.Value() + "/complete"
}

type Handler struct {
	providers    *provider.Registry
	sessionStore session.Store
	identities   session.IdentityCache
	resolver     middleware.IdentityResolver
	cookie       session.CookieOptions
	sessionTTL   time.Duration
	now          func() time.Time
}

func NewHandler(
	registry *provider.Registry,
	sessionStore session.Store,
	identities session.IdentityCache,
	resolver middleware.IdentityResolver,
	cookie session.CookieOptions,
	sessionTTL time.Duration,
) *Handler {
	if identities == nil {
		identities = session.NopIdentityCache{}
	}
	return &Handler{
		providers:    registry,
		sessionStore: sessionStore,
		identities:   identities,
		resolver:     resolver,
		cookie:       cookie,
		sessionTTL:   sessionTTL,
		now:          time.Now,
	}
}

func (h *Handler) RegisterRoutes(r gin.IRouter) {
	r.GET("/login", h.loginPage)
	r.GET("/login/:provider", h.login)
	r.GET("/login/:provider/callback", h.callback)
	r.GET(LogoutPath, h.Logout)
	r.POST(LogoutPath, h.Logout)
	r.GET(ErrorPath, h.errorPage)
}

// RegisterCompletionRoutes mounts /{provider}/complete. It belongs behind
// the identity middleware.
func (h *Handler) RegisterCompletionRoutes(r gin.IRouter) {
	for _, p := range auth.Providers {
		r.GET(CompletePath(p), h.complete)
	}
}

func (h *Handler) loginPage(c *gin.Context) {
	links := gin.H{}
	for _, p := range h.providers.Configured() {
		links[p.Value()] = "/login/" + p.Value()
	}
	c.JSON(http.StatusOK, gin.H{"providers": links})
}

func (h *Handler) login(c *gin.Context) {
	providerName := c.Param("provider")

	p, err := h.providers.Get(providerName)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "unknown oauth provider",
		})
		return
	}

	state, err := h.generateState(c)
	if err != nil {
		h.fail(c, providerName, "state generation failed", err)
		return
	}
	_, challenge, err := h.generatePKCE(c)
	if err != nil {
		h.fail(c, providerName, "pkce generation failed", err)
		return
	}

	c.Redirect(http.StatusFound, p.AuthCodeURL(state, challenge))
}

// callback completes the OAuth2 flow: the provider's principal becomes the
// session's authentication and the identity is resolved once right away.
// The outcome is a redirect either to the provider's completion page or to
// the error page.
func (h *Handler) callback(c *gin.Context) {
	providerName := c.Param("provider")

	p, err := h.providers.Get(providerName)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "unknown oauth provider",
		})
		return
	}

	if !validateState(c) {
		h.fail(c, providerName, "invalid state", nil)
		return
	}

	if errParam := c.Query("error"); errParam != "" {
		logger.Warn("oauth callback returned error", map[string]any{
			"provider": providerName,
			"error":    errParam,
			"desc":     c.Query("error_description"),
		})
		h.clearFlowCookies(c)
		c.Redirect(http.StatusFound, ErrorPath)
		return
	}

	code := c.Query("code")
	codeVerifier := getPKCEVerifier(c)
	if code == "" || codeVerifier == "" {
		h.fail(c, providerName, "callback missing code or pkce verifier", nil)
		return
	}
	h.clearFlowCookies(c)

	principal, err := p.ExchangeCode(c.Request.Context(), code, codeVerifier)
	if err != nil {
		h.fail(c, providerName, "code exchange failed", err)
		return
	}

	sessionID, err := session.GenerateID()
	if err != nil {
		h.fail(c, providerName, "session id generation failed", err)
		return
	}

	sc := security.NewContext(principal)
	user, err := h.resolver.ResolveForRequest(c.Request.Context(), sessionID, sc)
	if err != nil || user == nil {
		h.fail(c, providerName, "identity resolution failed", err)
		return
	}

	now := h.now()
	expiresAt := now.Add(h.sessionTTL)
	sess := session.Session{
		SessionID:      sessionID,
		Authentication: sc.Authentication(),
		CreatedAt:      now,
		ExpiresAt:      expiresAt,
	}
	if err := h.sessionStore.Create(c.Request.Context(), sess); err != nil {
		_ = h.identities.Evict(c.Request.Context(), sessionID)
		h.fail(c, providerName, "session persist failed", err)
		return
	}

	session.SetCookie(c.Writer, sessionID, expiresAt, h.cookie)

	logger.Info("social login succeeded", map[string]any{
		"provider": p.Provider().Value(),
		"user_id":  user.ID,
		"ip":       c.ClientIP(),
	})

	c.Redirect(http.StatusFound, CompletePath(p.Provider()))
}

func (h *Handler) complete(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		c.Redirect(http.StatusFound, "/login")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status": "authenticated",
		"user":   user,
	})
}

// Logout ends the session: the cached identity and the stored session are
// dropped and the cookie cleared. It is idempotent.
func (h *Handler) Logout(c *gin.Context) {
	ctx := c.Request.Context()

	if sessionID := session.ReadCookie(c.Request, h.cookie); sessionID != "" {
		if err := h.identities.Evict(ctx, sessionID); err != nil {
			logger.Warn("identity cache evict failed", map[string]any{
				"error": err.Error(),
			})
		}
		// best-effort
		_ = h.sessionStore.Delete(ctx, sessionID)
		logger.Info("logout", map[string]any{
			"ip": c.ClientIP(),
		})
	}

	session.ClearCookie(c.Writer, h.cookie)
	c.Redirect(http.StatusFound, HomePath)
}

func (h *Handler) errorPage(c *gin.Context) {
	c.JSON(http.StatusUnauthorized, gin.H{
		"error": "authentication failed",
	})
}

func (h *Handler) fail(c *gin.Context, providerName, msg string, err error) {
	fields := map[string]any{"provider": providerName}
	if err != nil {
		fields["error"] = err.Error()
	}
	logger.Error(msg, fields)
	c.Redirect(http.StatusFound, ErrorPath)
}
