package claims

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/ableKiHo/community-web/internal/auth"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func TestMapClaimsEveryProvider(t *testing.T) {
	raw := auth.Claims{"name": "A", "email": "a@x.com", "id": "1"}

	for _, p := range auth.Providers {
		t.Run(p.String(), func(t *testing.T) {
			id, err := MapClaims(p, raw, now)
			require.NoError(t, err)
			assert.Equal(t, "A", id.DisplayName)
			assert.Equal(t, "a@x.com", id.Email)
			assert.Equal(t, "1", id.ProviderPrincipalID)
			assert.Equal(t, p, id.Provider)
			assert.Equal(t, now, id.CreatedAt)
		})
	}
}

func TestMapClaimsKakaoTopLevelWithProperties(t *testing.T) {
	raw := auth.Claims{
		"name":       "A",
		"email":      "a@x.com",
		"id":         "1",
		"properties": map[string]any{"nickname": "other", "profile_image": "p.png"},
	}

	id, err := MapClaims(auth.Kakao, raw, now)
	require.NoError(t, err)
	assert.Equal(t, "A", id.DisplayName)
	assert.Equal(t, "a@x.com", id.Email)
	assert.Equal(t, "1", id.ProviderPrincipalID)
}

func TestMapClaimsKakaoNestedOnly(t *testing.T) {
	var raw auth.Claims
	dec := json.NewDecoder(strings.NewReader(`{
		"id": 2345678901,
		"properties": {"nickname": "havi"},
		"kakao_account": {"email": "havi@kakao.com"}
	}`))
	dec.UseNumber()
	require.NoError(t, dec.Decode(&raw))

	id, err := MapClaims(auth.Kakao, raw, now)
	require.NoError(t, err)
	assert.Equal(t, "havi", id.DisplayName)
	assert.Equal(t, "havi@kakao.com", id.Email)
	assert.Equal(t, "2345678901", id.ProviderPrincipalID)
}

func TestMapClaimsKakaoDoesNotMutateInput(t *testing.T) {
	raw := auth.Claims{
		"id":         "1",
		"properties": map[string]any{"nickname": "n", "email": "e@x.com"},
	}
	_, err := MapClaims(auth.Kakao, raw, now)
	require.NoError(t, err)
	assert.NotContains(t, raw, "name")
}

func TestMapClaimsMalformed(t *testing.T) {
	raw := auth.Claims{"name": "A", "id": "1"}

	_, err := MapClaims(auth.Google, raw, now)
	require.Error(t, err)

	var malformed *auth.MalformedClaimsError
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, auth.Google, malformed.Provider)
	assert.Equal(t, []string{"email"}, malformed.Missing)
	assert.False(t, auth.IsUnsupportedProvider(err))
}

func TestMapClaimsMalformedListsAllMissing(t *testing.T) {
	_, err := MapClaims(auth.Facebook, auth.Claims{}, now)

	var malformed *auth.MalformedClaimsError
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, []string{"name", "email", "id"}, malformed.Missing)
}

func TestMapClaimsUnsupportedIsDistinctFromMalformed(t *testing.T) {
	_, err := MapClaims(auth.Provider(99), auth.Claims{"name": "A", "email": "a@x.com", "id": "1"}, now)
	require.Error(t, err)
	assert.True(t, auth.IsUnsupportedProvider(err))
	assert.False(t, auth.IsMalformedClaims(err))
}

func TestStringClaimNumbers(t *testing.T) {
	assert.Equal(t, "12", stringClaim(auth.Claims{"id": float64(12)}, "id"))
	assert.Equal(t, "12", stringClaim(auth.Claims{"id": 12}, "id"))
	assert.Equal(t, "10155000000000001", stringClaim(auth.Claims{"id": json.Number("10155000000000001")}, "id"))
	assert.Equal(t, "", stringClaim(auth.Claims{"id": true}, "id"))
	assert.Equal(t, "", stringClaim(nil, "id"))
}
