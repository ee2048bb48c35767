package users

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/ableKiHo/community-web/internal/auth"

	"github.com/google/uuid"
)

// MemoryStore keeps users in process. It enforces the same case-insensitive
// email uniqueness as the SQL schema.
type MemoryStore struct {
	mu      sync.RWMutex
	byEmail map[string]auth.User
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byEmail: make(map[string]auth.User)}
}

func (m *MemoryStore) FindByEmail(ctx context.Context, email string) (*auth.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (m *MemoryStore) Save(ctx context.Context, u auth.User) (*auth.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := strings.ToLower(u.Email)
	if existing, ok := m.byEmail[key]; ok && existing.ID != u.ID {
		return nil, ErrDuplicateEmail
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	m.byEmail[key] = u
	return &u, nil
}

// Len returns the number of stored users.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.byEmail)
}
