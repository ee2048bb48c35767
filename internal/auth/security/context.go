// Package security holds the request-scoped authentication state that the
// identity resolver reads and the reconciler corrects.
package security

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/ableKiHo/community-web/internal/auth"
)

// Authentication is the authenticated subject of a request.
type Authentication interface {
	Authorities() []string
	kind() string
}

// OAuth2Authentication is produced by a completed social login. It is the
// only shape the identity resolver acts on.
type OAuth2Authentication struct {
	Provider string      `json:"provider"`
	Details  auth.Claims `json:"details"`
	Granted  []string    `json:"authorities"`
}

func (a *OAuth2Authentication) Authorities() []string { return a.Granted }
func (a *OAuth2Authentication) kind() string          { return kindOAuth2 }

// PreAuthenticated is a login established outside the OAuth2 flow. It grants
// authorities but carries no provider principal, so it never maps to a user.
type PreAuthenticated struct {
	Details auth.Claims `json:"details"`
	Granted []string    `json:"authorities"`
}

func (a *PreAuthenticated) Authorities() []string { return a.Granted }
func (a *PreAuthenticated) kind() string          { return kindPreAuthenticated }

// Anonymous is the authentication of a request without a login.
type Anonymous struct{}

func (Anonymous) Authorities() []string { return []string{"ROLE_ANONYMOUS"} }
func (Anonymous) kind() string          { return kindAnonymous }

const (
	kindOAuth2           = "oauth2"
	kindPreAuthenticated = "pre_authenticated"
	kindAnonymous        = "anonymous"
)

// Context carries the authentication for one request. It is passed
// explicitly rather than held in a global.
type Context struct {
	authn   Authentication
	changed bool
}

// NewContext returns a context holding a, or Anonymous when a is nil.
func NewContext(a Authentication) *Context {
	if a == nil {
		a = Anonymous{}
	}
	return &Context{authn: a}
}

func (c *Context) Authentication() Authentication {
	return c.authn
}

// SetAuthentication replaces the current authentication and marks the
// context dirty so the caller can persist it back to the session.
func (c *Context) SetAuthentication(a Authentication) {
	if a == nil {
		a = Anonymous{}
	}
	c.authn = a
	c.changed = true
}

// Changed reports whether SetAuthentication was called.
func (c *Context) Changed() bool {
	return c.changed
}

// HasAuthority reports whether the current authentication was granted role.
func (c *Context) HasAuthority(role string) bool {
	return slices.Contains(c.authn.Authorities(), role)
}

type envelope struct {
	Kind string          `json:"kind"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Marshal encodes an authentication for storage in a session record.
func Marshal(a Authentication) ([]byte, error) {
	if a == nil {
		a = Anonymous{}
	}
	data, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("security: marshal %s: %w", a.kind(), err)
	}
	return json.Marshal(envelope{Kind: a.kind(), Data: data})
}

// Unmarshal decodes an authentication written by Marshal.
func Unmarshal(b []byte) (Authentication, error) {
	if len(b) == 0 {
		return Anonymous{}, nil
	}
	var env envelope
	if err := json.Unmarshal(b, &env); err != nil {
		return nil, fmt.Errorf("security: unmarshal envelope: %w", err)
	}

	var a Authentication
	switch env.Kind {
	case kindOAuth2:
		a = &OAuth2Authentication{}
	case kindPreAuthenticated:
		a = &PreAuthenticated{}
	case kindAnonymous, "":
		return Anonymous{}, nil
	default:
		return nil, fmt.Errorf("security: unknown authentication kind %q", env.Kind)
	}
	// numbers stay json.Number so large provider ids keep their digits
	dec := json.NewDecoder(bytes.NewReader(env.Data))
	dec.UseNumber()
	if err := dec.Decode(a); err != nil {
		return nil, fmt.Errorf("security: unmarshal %s: %w", env.Kind, err)
	}
	return a, nil
}
