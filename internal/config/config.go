package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	AppPort string `envconfig:"APP_PORT" default:"8080"`

	GoogleClientID     string `envconfig:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `envconfig:"GOOGLE_CLIENT_SECRET"`
	GoogleRedirectURL  string `envconfig:"GOOGLE_REDIRECT_URL"`

	FacebookClientID     string `envconfig:"FACEBOOK_CLIENT_ID"`
	FacebookClientSecret string `envconfig:"FACEBOOK_CLIENT_SECRET"`
	FacebookRedirectURL  string `envconfig:"FACEBOOK_REDIRECT_URL"`

	KakaoClientID     string `envconfig:"KAKAO_CLIENT_ID"`
	KakaoClientSecret string `envconfig:"KAKAO_CLIENT_SECRET"`
	KakaoRedirectURL  string `envconfig:"KAKAO_REDIRECT_URL"`

	// Empty RedisAddr keeps sessions and the identity cache in process.
	RedisAddr     string `envconfig:"REDIS_ADDR"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	DatabaseDriver string `envconfig:"DATABASE_DRIVER" default:"postgres"`
	DatabaseDSN    string `envconfig:"DATABASE_DSN"`

	SessionTTL        time.Duration `envconfig:"SESSION_TTL" default:"24h"`
	CookieSecure      bool          `envconfig:"COOKIE_SECURE" default:"true"`
	IdentityCacheSize int           `envconfig:"IDENTITY_CACHE_SIZE" default:"10000"`

	SeedDemoUser bool `envconfig:"SEED_DEMO_USER" default:"false"`
}

// Load reads the configuration from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	if cfg.DatabaseDSN == "" {
		return Config{}, fmt.Errorf("config: DATABASE_DSN is required")
	}
	return cfg, nil
}

// GoogleEnabled reports whether Google credentials are configured.
func (c Config) GoogleEnabled() bool { return c.GoogleClientID != "" }

// FacebookEnabled reports whether Facebook credentials are configured.
func (c Config) FacebookEnabled() bool { return c.FacebookClientID != "" }

// KakaoEnabled reports whether Kakao credentials are configured.
func (c Config) KakaoEnabled() bool { return c.KakaoClientID != "" }
