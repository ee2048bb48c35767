package session

import (
	"context"
	"time"

	"github.com/ableKiHo/community-web/internal/auth/security"
)

// Session is a logged-in browser session. It stores the authentication the
// OAuth2 callback established, not the resolved user.
type Session struct {
	SessionID      string                  // unique session identifier
	Authentication security.Authentication // security context of the session
	CreatedAt      time.Time
	ExpiresAt      time.Time // absolute expiry time
}

// Store defines how sessions are stored and retrieved.
// Get returns (nil, nil) for an unknown or expired session.
type Store interface {
	Create(ctx context.Context, s Session) error
	Get(ctx context.Context, sessionID string) (*Session, error)
	Update(ctx context.Context, s Session) error
	Delete(ctx context.Context, sessionID string) error
}
