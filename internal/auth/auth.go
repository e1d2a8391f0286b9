// Package auth manages who is signed in. A Session is the explicit
// authentication context handed to the UI; a Provider does the actual work
// against the embedded database (Local) or a remote data service.
package auth

import (
	"context"
	"errors"

	"github.com/tgienger/projecthub/internal/models"
)

var (
	// ErrNoSession is returned by Restore when nothing was persisted.
	ErrNoSession = errors.New("no saved session")

	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrWeakPassword       = errors.New("password must be at least 6 characters")
)

// MinPasswordLength matches the hosted service's default policy.
const MinPasswordLength = 6

// Provider authenticates users and persists the resulting session.
type Provider interface {
	// Restore resumes a persisted session, or returns ErrNoSession.
	Restore(ctx context.Context) (models.User, error)
	SignIn(ctx context.Context, email, password string) (models.User, error)
	SignUp(ctx context.Context, email, password string) (models.User, error)
	SignOut(ctx context.Context) error
}
