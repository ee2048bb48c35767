package auth

import (
	"strings"
	"time"
)

// Provider is the closed set of social login providers the board accepts.
// Every dispatch on Provider is an exhaustive switch; adding a member means
// touching each of them.
type Provider int

const (
	Facebook Provider = iota + 1
	Google
	Kakao
)

// Providers lists every supported provider in a stable order.
var Providers = []Provider{Facebook, Google, Kakao}

const rolePrefix = "ROLE_"

// String returns the provider tag, e.g. "KAKAO".
func (p Provider) String() string {
	switch p {
	case Facebook:
		return "FACEBOOK"
	case Google:
		return "GOOGLE"
	case Kakao:
		return "KAKAO"
	}
	return "UNKNOWN"
}

// Value returns the lowercase path segment used in login and completion URLs.
func (p Provider) Value() string {
	switch p {
	case Facebook:
		return "facebook"
	case Google:
		return "google"
	case Kakao:
		return "kakao"
	}
	return ""
}

// RoleType returns the canonical authority granted to users of the provider.
func (p Provider) RoleType() string {
	switch p {
	case Facebook, Google, Kakao:
		return rolePrefix + p.String()
	}
	return ""
}

// Valid reports whether p is a member of the closed provider set.
func (p Provider) Valid() bool {
	switch p {
	case Facebook, Google, Kakao:
		return true
	}
	return false
}

func (p Provider) MarshalText() ([]byte, error) {
	if !p.Valid() {
		return nil, &UnsupportedProviderError{Tag: p.String()}
	}
	return []byte(p.String()), nil
}

func (p *Provider) UnmarshalText(text []byte) error {
	parsed, err := ParseProvider(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// ParseProvider accepts either the tag ("KAKAO") or the path value ("kakao").
func ParseProvider(tag string) (Provider, error) {
	for _, p := range Providers {
		if strings.EqualFold(tag, p.String()) {
			return p, nil
		}
	}
	return 0, &UnsupportedProviderError{Tag: tag}
}

// ProviderFromAuthority maps a granted authority label ("ROLE_GOOGLE") back
// to its provider.
func ProviderFromAuthority(authority string) (Provider, error) {
	for _, p := range Providers {
		if authority == p.RoleType() {
			return p, nil
		}
	}
	return 0, &UnsupportedProviderError{Tag: authority}
}

// Claims is the raw attribute map returned by a provider's user endpoint.
// Values are kept untyped because some providers nest maps (Kakao's
// "properties") or return numeric ids.
type Claims map[string]any

// CanonicalIdentity is a provider-agnostic view of a login. It is produced
// fresh on every resolution and never persisted directly.
type CanonicalIdentity struct {
	DisplayName         string
	Email               string
	ProviderPrincipalID string
	Provider            Provider
	CreatedAt           time.Time
}

// User is the durable board member record. Email is unique.
type User struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	Provider      Provider  `json:"provider"`
	PrincipalID   string    `json:"principal_id"`
	AuthorityRole string    `json:"authority_role"`
	CreatedAt     time.Time `json:"created_at"`
}
