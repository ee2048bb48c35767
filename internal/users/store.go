// Package users persists board members. Email is the unique lookup key.
package users

import (
	"context"
	"errors"

	"github.com/ableKiHo/community-web/internal/auth"
)

var (
	// ErrNotFound is returned by FindByEmail when no user has the email.
	ErrNotFound = errors.New("users: not found")

	// ErrDuplicateEmail is returned by Save when the email is already taken.
	ErrDuplicateEmail = errors.New("users: email already exists")
)

// Store is the persistence boundary of the identity subsystem.
type Store interface {
	FindByEmail(ctx context.Context, email string) (*auth.User, error)
	// Save assigns an ID and returns the persisted form.
	Save(ctx context.Context, u auth.User) (*auth.User, error)
}

// PersistenceError wraps a storage failure. The reconciler returns it to
// callers untouched.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return "users: " + e.Op + ": " + e.Err.Error()
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// Persistence marks the error as a storage failure for auth.IsPersistenceError.
func (e *PersistenceError) Persistence() bool { return true }
