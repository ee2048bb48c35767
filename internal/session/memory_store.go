package session

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MemoryStore keeps sessions in process, for single-instance deployments
// without Redis and for tests.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]Session
	now      func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]Session),
		now:      time.Now,
	}
}

func (m *MemoryStore) Create(ctx context.Context, s Session) error {
	if s.SessionID == "" || s.Authentication == nil {
		return fmt.Errorf("session: missing session_id or authentication")
	}
	if !s.ExpiresAt.After(m.now()) {
		return fmt.Errorf("session: expires_at must be in the future")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.SessionID] = s
	return nil
}

func (m *MemoryStore) Get(ctx context.Context, sessionID string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[sessionID]
	if !ok {
		return nil, nil
	}
	if !s.ExpiresAt.After(m.now()) {
		delete(m.sessions, sessionID)
		return nil, nil
	}
	return &s, nil
}

func (m *MemoryStore) Update(ctx context.Context, s Session) error {
	if s.SessionID == "" {
		return fmt.Errorf("session: missing session_id")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if !s.ExpiresAt.After(m.now()) {
		delete(m.sessions, s.SessionID)
		return nil
	}
	m.sessions[s.SessionID] = s
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, sessionID)
	return nil
}
