package kakao

import (
	"context"
	"errors"
	"fmt"

	"github.com/ableKiHo/community-web/internal/auth"
	"github.com/ableKiHo/community-web/internal/auth/provider"
	"github.com/ableKiHo/community-web/internal/auth/security"
	"github.com/ableKiHo/community-web/internal/logger"

	"golang.org/x/oauth2"
)

const userInfoURL = "https://kapi.kakao.com/v2/user/me"

var Endpoint = oauth2.Endpoint{
	AuthURL:   "https://kauth.kakao.com/oauth/authorize",
	TokenURL:  "https://kauth.kakao.com/oauth/token",
	AuthStyle: oauth2.AuthStyleInParams,
}

type Config struct {
	ClientID     string
	ClientSecret string // optional for Kakao apps without client secret enforcement
	RedirectURL  string

	Endpoint    oauth2.Endpoint
	UserInfoURL string
}

// Provider signs users in with Kakao Login. Kakao nests the nickname under
// "properties" and the email under "kakao_account"; the claim mapper
// unwraps them.
type Provider struct {
	oauthConfig *oauth2.Config
	userInfoURL string
}

var _ provider.OAuthProvider = (*Provider)(nil)

func New(cfg Config) (*Provider, error) {
	if cfg.ClientID == "" || cfg.RedirectURL == "" {
		return nil, errors.New("kakao oauth config missing required fields")
	}
	if cfg.Endpoint.AuthURL == "" {
		cfg.Endpoint = Endpoint
	}
	if cfg.UserInfoURL == "" {
		cfg.UserInfoURL = userInfoURL
	}

	return &Provider{
		oauthConfig: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint:     cfg.Endpoint,
			Scopes:       []string{"profile_nickname", "account_email"},
		},
		userInfoURL: cfg.UserInfoURL,
	}, nil
}

func (p *Provider) Provider() auth.Provider {
	return auth.Kakao
}

func (p *Provider) AuthCodeURL(state string, codeChallenge string) string {
	return provider.AuthCodeURL(p.oauthConfig, state, codeChallenge)
}

func (p *Provider) ExchangeCode(
	ctx context.Context,
	code string,
	codeVerifier string,
) (*security.OAuth2Authentication, error) {

	token, err := provider.Exchange(ctx, p.oauthConfig, code, codeVerifier)
	if err != nil {
		logger.Error("kakao token exchange failed", map[string]any{
			"error": err.Error(),
		})
		return nil, fmt.Errorf("kakao token exchange failed: %w", err)
	}

	details, err := provider.FetchUserInfo(ctx, p.oauthConfig, token, p.userInfoURL)
	if err != nil {
		return nil, fmt.Errorf("kakao %w", err)
	}

	_, hasProps := details["properties"]
	logger.Info("kakao user info received", map[string]any{
		"id_present":         details["id"] != nil,
		"properties_present": hasProps,
	})

	if account, ok := details["kakao_account"].(map[string]any); ok {
		if err := provider.CheckEmailVerified(account["is_email_verified"]); err != nil {
			logger.Warn("kakao login rejected", map[string]any{
				"reason": err.Error(),
			})
			return nil, fmt.Errorf("kakao: %w", err)
		}
	}

	return provider.Principal(auth.Kakao, details), nil
}
