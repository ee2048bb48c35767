package facebook

import (
	"context"
	"errors"
	"fmt"

	"github.com/ableKiHo/community-web/internal/auth"
	"github.com/ableKiHo/community-web/internal/auth/provider"
	"github.com/ableKiHo/community-web/internal/auth/security"

	"golang.org/x/oauth2"
	fbendpoint "golang.org/x/oauth2/facebook"
)

const userInfoURL = "https://graph.facebook.com/me?fields=id,name,email"

type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string

	// Endpoint and UserInfoURL default to Facebook's; tests point them at a
	// local server.
	Endpoint    oauth2.Endpoint
	UserInfoURL string
}

// Provider signs users in with Facebook Login and reads the Graph API
// profile.
type Provider struct {
	oauthConfig *oauth2.Config
	userInfoURL string
}

var _ provider.OAuthProvider = (*Provider)(nil)

func New(cfg Config) (*Provider, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" || cfg.RedirectURL == "" {
		return nil, errors.New("facebook oauth config missing required fields")
	}
	if cfg.Endpoint.AuthURL == "" {
		cfg.Endpoint = fbendpoint.Endpoint
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
			Scopes:       []string{"email", "public_profile"},
		},
		userInfoURL: cfg.UserInfoURL,
	}, nil
}

func (p *Provider) Provider() auth.Provider {
	return auth.Facebook
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
		return nil, fmt.Errorf("facebook token exchange failed: %w", err)
	}

	details, err := provider.FetchUserInfo(ctx, p.oauthConfig, token, p.userInfoURL)
	if err != nil {
		return nil, fmt.Errorf("facebook %w", err)
	}

	return provider.Principal(auth.Facebook, details), nil
}
