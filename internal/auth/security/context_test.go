package security

import (
	"encoding/json"
	"testing"

	"github.com/ableKiHo/community-web/internal/auth"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewContextDefaultsToAnonymous(t *testing.T) {
	sc := NewContext(nil)
	assert.IsType(t, Anonymous{}, sc.Authentication())
	assert.True(t, sc.HasAuthority("ROLE_ANONYMOUS"))
	assert.False(t, sc.Changed())
}

func TestSetAuthenticationMarksChanged(t *testing.T) {
	sc := NewContext(&OAuth2Authentication{Granted: []string{"ROLE_GUEST"}})
	assert.True(t, sc.HasAuthority("ROLE_GUEST"))

	sc.SetAuthentication(&PreAuthenticated{Granted: []string{"ROLE_KAKAO"}})
	assert.True(t, sc.Changed())
	assert.True(t, sc.HasAuthority("ROLE_KAKAO"))
	assert.False(t, sc.HasAuthority("ROLE_GUEST"))
}

func TestMarshalRoundTrip(t *testing.T) {
	in := &OAuth2Authentication{
		Provider: "kakao",
		Details: auth.Claims{
			"id":         json.Number("10155000000000001"),
			"properties": map[string]any{"nickname": "havi"},
		},
		Granted: []string{"ROLE_KAKAO"},
	}

	b, err := Marshal(in)
	require.NoError(t, err)

	out, err := Unmarshal(b)
	require.NoError(t, err)

	got, ok := out.(*OAuth2Authentication)
	require.True(t, ok)
	assert.Equal(t, "kakao", got.Provider)
	assert.Equal(t, []string{"ROLE_KAKAO"}, got.Granted)
	assert.Equal(t, json.Number("10155000000000001"), got.Details["id"])
	assert.Equal(t, map[string]any{"nickname": "havi"}, got.Details["properties"])
}

func TestMarshalPreAuthenticatedAndAnonymous(t *testing.T) {
	b, err := Marshal(&PreAuthenticated{Granted: []string{"ROLE_GOOGLE"}})
	require.NoError(t, err)
	out, err := Unmarshal(b)
	require.NoError(t, err)
	assert.Equal(t, []string{"ROLE_GOOGLE"}, out.Authorities())
	assert.IsType(t, &PreAuthenticated{}, out)

	b, err = Marshal(nil)
	require.NoError(t, err)
	out, err = Unmarshal(b)
	require.NoError(t, err)
	assert.IsType(t, Anonymous{}, out)

	out, err = Unmarshal(nil)
	require.NoError(t, err)
	assert.IsType(t, Anonymous{}, out)
}

func TestUnmarshalUnknownKind(t *testing.T) {
	_, err := Unmarshal([]byte(`{"kind":"saml","data":{}}`))
	assert.Error(t, err)
}
