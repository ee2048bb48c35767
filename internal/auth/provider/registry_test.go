package provider

import (
	"context"
	"errors"
	"testing"

	"github.com/ableKiHo/community-web/internal/auth"
	"github.com/ableKiHo/community-web/internal/auth/security"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProvider struct{ kind auth.Provider }

func (s stubProvider) Provider() auth.Provider           { return s.kind }
func (s stubProvider) AuthCodeURL(string, string) string { return "" }
func (s stubProvider) ExchangeCode(context.Context, string, string) (*security.OAuth2Authentication, error) {
	return nil, nil
}

func TestRegistryGet(t *testing.T) {
	r := NewRegistry(stubProvider{auth.Kakao}, stubProvider{auth.Facebook})

	p, err := r.Get("kakao")
	require.NoError(t, err)
	assert.Equal(t, auth.Kakao, p.Provider())

	p, err = r.Get("FACEBOOK")
	require.NoError(t, err)
	assert.Equal(t, auth.Facebook, p.Provider())

	_, err = r.Get("google")
	assert.True(t, errors.Is(err, ErrNotConfigured))

	_, err = r.Get("naver")
	assert.True(t, auth.IsUnsupportedProvider(err))
}

func TestRegistryConfiguredOrder(t *testing.T) {
	r := NewRegistry(stubProvider{auth.Kakao}, stubProvider{auth.Facebook})
	assert.Equal(t, []auth.Provider{auth.Facebook, auth.Kakao}, r.Configured())

	assert.Empty(t, NewRegistry().Configured())
}

func TestPrincipalGrantsProviderRole(t *testing.T) {
	details := auth.Claims{"id": "1"}
	p := Principal(auth.Google, details)

	assert.Equal(t, "google", p.Provider)
	assert.Equal(t, details, p.Details)
	assert.Equal(t, []string{"ROLE_GOOGLE"}, p.Authorities())
}

func TestCheckEmailVerified(t *testing.T) {
	tests := []struct {
		name string
		flag any
		want error
	}{
		{"absent", nil, nil},
		{"verified", true, nil},
		{"unverified", false, ErrEmailNotVerified},
		{"verified string", "true", nil},
		{"unverified string", "False", ErrEmailNotVerified},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckEmailVerified(tt.flag)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, tt.want))
		})
	}
}
