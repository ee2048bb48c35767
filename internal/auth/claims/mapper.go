// Package claims turns provider user-info payloads into canonical identities.
package claims

import (
	"fmt"
	"strconv"
	"time"

	"github.com/ableKiHo/community-web/internal/auth"
)

const (
	keyName  = "name"
	keyEmail = "email"
	keyID    = "id"

	kakaoProperties = "properties"
	kakaoAccount    = "kakao_account"
	kakaoNickname   = "nickname"
)

// MapClaims normalizes raw provider claims. Every provider must yield a
// name, an email and an id; Kakao may carry them inside its nested
// "properties" and "kakao_account" maps.
func MapClaims(provider auth.Provider, raw auth.Claims, now time.Time) (auth.CanonicalIdentity, error) {
	switch provider {
	case auth.Facebook, auth.Google:
		return build(provider, raw, now)
	case auth.Kakao:
		return build(provider, unwrapKakao(raw), now)
	}
	return auth.CanonicalIdentity{}, &auth.UnsupportedProviderError{Tag: provider.String()}
}

func build(provider auth.Provider, raw auth.Claims, now time.Time) (auth.CanonicalIdentity, error) {
	name := stringClaim(raw, keyName)
	email := stringClaim(raw, keyEmail)
	id := stringClaim(raw, keyID)

	var missing []string
	if name == "" {
		missing = append(missing, keyName)
	}
	if email == "" {
		missing = append(missing, keyEmail)
	}
	if id == "" {
		missing = append(missing, keyID)
	}
	if len(missing) > 0 {
		return auth.CanonicalIdentity{}, &auth.MalformedClaimsError{Provider: provider, Missing: missing}
	}

	return auth.CanonicalIdentity{
		DisplayName:         name,
		Email:               email,
		ProviderPrincipalID: id,
		Provider:            provider,
		CreatedAt:           now,
	}, nil
}

// unwrapKakao flattens Kakao's nested maps under the shared required keys.
// Top-level values win so a payload that already carries them is read the
// same way as Facebook or Google.
func unwrapKakao(raw auth.Claims) auth.Claims {
	flat := make(auth.Claims, len(raw)+3)
	for k, v := range raw {
		flat[k] = v
	}

	props := nestedMap(raw, kakaoProperties)
	account := nestedMap(raw, kakaoAccount)

	if stringClaim(flat, keyName) == "" {
		if v := firstNonEmpty(stringClaim(props, keyName), stringClaim(props, kakaoNickname)); v != "" {
			flat[keyName] = v
		}
	}
	if stringClaim(flat, keyEmail) == "" {
		if v := firstNonEmpty(stringClaim(props, keyEmail), stringClaim(account, keyEmail)); v != "" {
			flat[keyEmail] = v
		}
	}
	if stringClaim(flat, keyID) == "" {
		if v := stringClaim(props, keyID); v != "" {
			flat[keyID] = v
		}
	}
	return flat
}

func nestedMap(raw auth.Claims, key string) auth.Claims {
	switch v := raw[key].(type) {
	case auth.Claims:
		return v
	case map[string]any:
		return v
	case map[string]string:
		out := make(auth.Claims, len(v))
		for k, s := range v {
			out[k] = s
		}
		return out
	}
	return nil
}

// stringClaim reads a scalar claim. Kakao and Facebook ids may decode as
// JSON numbers.
func stringClaim(raw auth.Claims, key string) string {
	if raw == nil {
		return ""
	}
	switch v := raw[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(v, 10)
	case int:
		return strconv.Itoa(v)
	case fmt.Stringer:
		return v.String()
	}
	return ""
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
