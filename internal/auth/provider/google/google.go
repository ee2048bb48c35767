package google

import (
	"context"
	"errors"
	"fmt"

	"github.com/ableKiHo/community-web/internal/auth"
	"github.com/ableKiHo/community-web/internal/auth/provider"
	"github.com/ableKiHo/community-web/internal/auth/security"
	"github.com/ableKiHo/community-web/internal/logger"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
)

const issuer = "https://accounts.google.com"

type Provider struct {
	oauthConfig *oauth2.Config
	verifier    *oidc.IDTokenVerifier
}

var _ provider.OAuthProvider = (*Provider)(nil)

func New(
	ctx context.Context,
	clientID string,
	clientSecret string,
	redirectURL string,
) (*Provider, error) {

	if clientID == "" || clientSecret == "" || redirectURL == "" {
		return nil, errors.New("google oauth config missing required fields")
	}

	oidcProvider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("failed to init google oidc provider: %w", err)
	}

	verifier := oidcProvider.Verifier(&oidc.Config{
		ClientID: clientID,
	})

	oauthCfg := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Endpoint:     oidcProvider.Endpoint(),
		Scopes: []string{
			oidc.ScopeOpenID,
			"profile",
			"email",
		},
	}

	return &Provider{
		oauthConfig: oauthCfg,
		verifier:    verifier,
	}, nil
}

func (p *Provider) Provider() auth.Provider {
	return auth.Google
}

func (p *Provider) AuthCodeURL(state string, codeChallenge string) string {
	return provider.AuthCodeURL(p.oauthConfig, state, codeChallenge)
}

// ExchangeCode verifies the id_token and returns its claims. Google names
// the subject "sub"; it is copied to "id" so every provider shares the same
// attribute names.
func (p *Provider) ExchangeCode(
	ctx context.Context,
	code string,
	codeVerifier string,
) (*security.OAuth2Authentication, error) {

	token, err := provider.Exchange(ctx, p.oauthConfig, code, codeVerifier)
	if err != nil {
		return nil, fmt.Errorf("google token exchange failed: %w", err)
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return nil, errors.New("google did not return id_token")
	}

	idToken, err := p.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, fmt.Errorf("google id_token verification failed: %w", err)
	}

	var details auth.Claims
	if err := idToken.Claims(&details); err != nil {
		return nil, fmt.Errorf("google id_token claims parse failed: %w", err)
	}
	if _, ok := details["id"]; !ok {
		details["id"] = idToken.Subject
	}
	if err := provider.CheckEmailVerified(details["email_verified"]); err != nil {
		logger.Warn("google login rejected", map[string]any{
			"reason": err.Error(),
		})
		return nil, fmt.Errorf("google: %w", err)
	}

	logger.Info("google oidc verified", map[string]any{
		"issuer":          idToken.Issuer,
		"subject_present": idToken.Subject != "",
		"email_present":   details["email"] != nil,
		"audience":        idToken.Audience,
		"expiry_unix":     idToken.Expiry.Unix(),
	})

	return provider.Principal(auth.Google, details), nil
}
