package provider

import (
	"context"
	"errors"
	"strings"

	"github.com/ableKiHo/community-web/internal/auth"
	"github.com/ableKiHo/community-web/internal/auth/security"
)

// OAuthProvider defines the contract every social login provider must
// implement. Implementations return the authenticated principal only and
// must not perform user creation or session management.
type OAuthProvider interface {
	// Provider returns which member of the closed provider set this is.
	Provider() auth.Provider

	// AuthCodeURL returns the OAuth authorization URL.
	// State and PKCE parameters are provided by the caller.
	AuthCodeURL(state string, codeChallenge string) string

	// ExchangeCode exchanges the authorization code and returns the
	// provider's user attributes with the provider role granted.
	ExchangeCode(
		ctx context.Context,
		code string,
		codeVerifier string,
	) (*security.OAuth2Authentication, error)
}

// Principal builds the authentication a completed login grants: the
// provider's raw attributes plus its canonical role.
func Principal(p auth.Provider, details auth.Claims) *security.OAuth2Authentication {
	return &security.OAuth2Authentication{
		Provider: p.Value(),
		Details:  details,
		Granted:  []string{p.RoleType()},
	}
}

// ErrEmailNotVerified rejects a login whose provider reports the email as
// unconfirmed.
var ErrEmailNotVerified = errors.New("provider email is not verified")

// CheckEmailVerified inspects a provider's verification flag. An absent
// flag passes; false, in any of the shapes providers send it, does not.
func CheckEmailVerified(flag any) error {
	switch v := flag.(type) {
	case nil:
		return nil
	case bool:
		if !v {
			return ErrEmailNotVerified
		}
	case string:
		if strings.EqualFold(v, "false") {
			return ErrEmailNotVerified
		}
	}
	return nil
}
