package session

import (
	"net/http"
	"time"
)

const (
	// CookieName is used when cookies are Secure. Browsers reject __Host-
	// cookies over plain HTTP, so insecure (dev) setups fall back to
	// DevCookieName.
	CookieName    = "__Host-session"
	DevCookieName = "session"
)

// CookieOptions defines how session cookies are issued.
type CookieOptions struct {
	Path     string
	HttpOnly bool
	Secure   bool
	SameSite http.SameSite
	Domain   string // should usually be empty for __Host- cookies
}

// normalize applies safe defaults without breaking callers
func (o CookieOptions) normalize() CookieOptions {
	if o.Path == "" {
		o.Path = "/" // required for __Host-
	}
	if !o.HttpOnly {
		o.HttpOnly = true // secure default
	}
	if o.SameSite == 0 {
		o.SameSite = http.SameSiteLaxMode
	}
	return o
}

// Name returns the cookie name matching the Secure flag.
func (o CookieOptions) Name() string {
	if o.Secure {
		return CookieName
	}
	return DevCookieName
}

// SetCookie issues the session cookie to the client.
func SetCookie(
	w http.ResponseWriter,
	sessionID string,
	expiresAt time.Time,
	opts CookieOptions,
) {
	opts = opts.normalize()

	http.SetCookie(w, &http.Cookie{
		Name:     opts.Name(),
		Value:    sessionID,
		Path:     opts.Path,
		Domain:   opts.Domain,
		Expires:  expiresAt,
		HttpOnly: opts.HttpOnly,
		Secure:   opts.Secure,
		SameSite: opts.SameSite,
	})
}

// ReadCookie returns the session ID sent by the client, or "".
func ReadCookie(r *http.Request, opts CookieOptions) string {
	cookie, err := r.Cookie(opts.Name())
	if err != nil {
		return ""
	}
	return cookie.Value
}

// ClearCookie removes the session cookie from the client.
func ClearCookie(
	w http.ResponseWriter,
	opts CookieOptions,
) {
	opts = opts.normalize()

	http.SetCookie(w, &http.Cookie{
		Name:     opts.Name(),
		Value:    "",
		Path:     opts.Path,
		Domain:   opts.Domain,
		MaxAge:   -1,
		HttpOnly: opts.HttpOnly,
		Secure:   opts.Secure,
		SameSite: opts.SameSite,
	})
}
