package handler

import (
	"crypto/sha256"
	"encoding/base64"
	"net/http"
	"time"

	"github.com/ableKiHo/community-web/internal/session"

	"github.com/gin-gonic/gin"
)

const (
	pkceCookieName = "__oauth_pkce"
	pkceTTL        = 5 * time.Minute
)

func (h *Handler) generatePKCE(c *gin.Context) (verifier string, challenge string, err error) {
	verifier, err = session.RandomToken(32)
	if err != nil {
		return "", "", err
	}
	challenge = codeChallenge(verifier)

	http.SetCookie(c.Writer, &http.Cookie{
		Name:     pkceCookieName,
		Value:    verifier,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(pkceTTL.Seconds()),
	})

	return verifier, challenge, nil
}

// codeChallenge is the S256 transform of a PKCE verifier.
func codeChallenge(verifier string) string {
	hash := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(hash[:])
}

func getPKCEVerifier(c *gin.Context) string {
	cookie, err := c.Request.Cookie(pkceCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// clearFlowCookies drops the one-shot state and PKCE cookies.
func (h *Handler) clearFlowCookies(c *gin.Context) {
	for _, name := range []string{stateCookieName, pkceCookieName} {
		http.SetCookie(c.Writer, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   h.cookie.Secure,
			SameSite: http.SameSiteLaxMode,
		})
	}
}
