package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/ableKiHo/community-web/internal/auth"

	"golang.org/x/oauth2"
)

// AuthCodeURL builds an authorization URL with S256 PKCE parameters.
func AuthCodeURL(cfg *oauth2.Config, state, codeChallenge string) string {
	return cfg.AuthCodeURL(
		state,
		oauth2.AccessTypeOnline,
		oauth2.SetAuthURLParam("code_challenge", codeChallenge),
		oauth2.SetAuthURLParam("code_challenge_method", "S256"),
	)
}

// Exchange trades the authorization code for a token, sending the PKCE
// verifier.
func Exchange(ctx context.Context, cfg *oauth2.Config, code, codeVerifier string) (*oauth2.Token, error) {
	return cfg.Exchange(
		ctx,
		code,
		oauth2.SetAuthURLParam("code_verifier", codeVerifier),
	)
}

// FetchUserInfo calls a provider's user endpoint with the access token and
// decodes the JSON body. Numbers are kept as json.Number so numeric ids
// survive intact.
func FetchUserInfo(ctx context.Context, cfg *oauth2.Config, token *oauth2.Token, url string) (auth.Claims, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := cfg.Client(ctx, token).Do(req)
	if err != nil {
		return nil, fmt.Errorf("user info request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("user info request returned %s", resp.Status)
	}

	var details auth.Claims
	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	if err := dec.Decode(&details); err != nil {
		return nil, fmt.Errorf("user info decode failed: %w", err)
	}
	return details, nil
}
