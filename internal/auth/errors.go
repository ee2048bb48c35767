package auth

import (
	"errors"
	"fmt"
	"strings"
)

// UnsupportedProviderError is returned when a provider tag or authority does
// not name a member of the closed provider set.
type UnsupportedProviderError struct {
	Tag string
}

func (e *UnsupportedProviderError) Error() string {
	return fmt.Sprintf("auth: unsupported provider %q", e.Tag)
}

// MalformedClaimsError is returned when a recognized provider sent claims
// without the fields every canonical identity needs.
type MalformedClaimsError struct {
	Provider Provider
	Missing  []string
}

func (e *MalformedClaimsError) Error() string {
	return fmt.Sprintf("auth: %s claims missing %s", e.Provider, strings.Join(e.Missing, ", "))
}

// persistenceMarker is implemented by storage errors that should fail the
// request rather than degrade it to anonymous.
type persistenceMarker interface {
	Persistence() bool
}

// IsPersistenceError reports whether err came from the user store.
func IsPersistenceError(err error) bool {
	var m persistenceMarker
	return errors.As(err, &m) && m.Persistence()
}

// IsUnsupportedProvider reports whether err is an UnsupportedProviderError.
func IsUnsupportedProvider(err error) bool {
	var e *UnsupportedProviderError
	return errors.As(err, &e)
}

// IsMalformedClaims reports whether err is a MalformedClaimsError.
func IsMalformedClaims(err error) bool {
	var e *MalformedClaimsError
	return errors.As(err, &e)
}
