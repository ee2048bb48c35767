package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/ableKiHo/community-web/internal/auth/handler"
	"github.com/ableKiHo/community-web/internal/auth/provider"
	"github.com/ableKiHo/community-web/internal/auth/provider/facebook"
	"github.com/ableKiHo/community-web/internal/auth/provider/google"
	"github.com/ableKiHo/community-web/internal/auth/provider/kakao"
	"github.com/ableKiHo/community-web/internal/auth/reconciler"
	"github.com/ableKiHo/community-web/internal/auth/resolver"
	"github.com/ableKiHo/community-web/internal/config"
	"github.com/ableKiHo/community-web/internal/logger"
	"github.com/ableKiHo/community-web/internal/middleware"
	"github.com/ableKiHo/community-web/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	sloggin "github.com/samber/slog-gin"
)

func setupHTTP(ctx context.Context, cfg config.Config) (*gin.Engine, func() error, error) {

	infra, err := setupInfra(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	if cfg.SeedDemoUser {
		if err := seedDemoUser(ctx, infra.Users); err != nil {
			_ = infra.Close()
			return nil, nil, fmt.Errorf("seed demo user: %w", err)
		}
	}

	registry, err := setupProviders(ctx, cfg)
	if err != nil {
		_ = infra.Close()
		return nil, nil, err
	}

	// ----------------------------
	// Dependencies
	// ----------------------------

	cookie := session.CookieOptions{
		Secure:   cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	}

	identityResolver := resolver.New(
		infra.Identities,
		reconciler.New(infra.Users),
	)

	authHandler := handler.NewHandler(
		registry,
		infra.Sessions,
		infra.Identities,
		identityResolver,
		cookie,
		cfg.SessionTTL,
	)

	authMiddleware := middleware.NewAuthMiddleware(infra.Sessions, identityResolver, cookie)

	// ----------------------------
	// Router
	// ----------------------------

	router := gin.New()
	router.Use(sloggin.New(logger.Default().WithGroup("http")))
	router.Use(gin.Recovery())

	// ----------------------------
	// Public Routes
	// ----------------------------

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.Static("/css", "./static/css")
	router.Static("/images", "./static/images")
	router.Static("/js", "./static/js")

	web := router.Group("/")
	web.Use(middleware.GinResolveIdentity(authMiddleware))

	authHandler.RegisterRoutes(web)

	web.GET("/", func(c *gin.Context) {
		resp := gin.H{"authenticated": false}
		if u := middleware.CurrentUser(c); u != nil {
			resp["authenticated"] = true
			resp["name"] = u.Name
		}
		c.JSON(http.StatusOK, resp)
	})

	// ----------------------------
	// Protected Routes
	// ----------------------------

	protected := web.Group("/")
	protected.Use(middleware.GinRequireUser(authMiddleware))

	authHandler.RegisterCompletionRoutes(protected)

	protected.GET("/api/me", func(c *gin.Context) {
		c.JSON(http.StatusOK, middleware.CurrentUser(c))
	})

	// ----------------------------
	// Cleanup
	// ----------------------------

	return router, infra.Close, nil
}

// setupProviders registers every provider that has credentials configured.
func setupProviders(ctx context.Context, cfg config.Config) (*provider.Registry, error) {
	var list []provider.OAuthProvider

	if cfg.GoogleEnabled() {
		p, err := google.New(
			ctx,
			cfg.GoogleClientID,
			cfg.GoogleClientSecret,
			cfg.GoogleRedirectURL,
		)
		if err != nil {
			return nil, err
		}
		list = append(list, p)
	}

	if cfg.FacebookEnabled() {
		p, err := facebook.New(facebook.Config{
			ClientID:     cfg.FacebookClientID,
			ClientSecret: cfg.FacebookClientSecret,
			RedirectURL:  cfg.FacebookRedirectURL,
		})
		if err != nil {
			return nil, err
		}
		list = append(list, p)
	}

	if cfg.KakaoEnabled() {
		p, err := kakao.New(kakao.Config{
			ClientID:     cfg.KakaoClientID,
			ClientSecret: cfg.KakaoClientSecret,
			RedirectURL:  cfg.KakaoRedirectURL,
		})
		if err != nil {
			return nil, err
		}
		list = append(list, p)
	}

	registry := provider.NewRegistry(list...)
	names := make([]string, 0, len(list))
	for _, p := range registry.Configured() {
		names = append(names, p.Value())
	}
	logger.Info("oauth providers configured", map[string]any{
		"providers": names,
	})
	return registry, nil
}
