package auth

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/tgienger/projecthub/internal/models"
	"github.com/tgienger/projecthub/internal/rowstore"
)

// State is where a session is in its lifecycle
type State int

const (
	StateLoading State = iota
	StateAuthenticated
	StateUnauthenticated
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateAuthenticated:
		return "authenticated"
	}
	return "unauthenticated"
}

// Session is the current user, if any. It starts Loading until Restore
// settles it.
type Session struct {
	provider Provider
	logger   *slog.Logger

	mu    sync.RWMutex
	state State
	user  models.User
}

func NewSession(p Provider, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{provider: p, logger: logger.With("component", "session")}
}

func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// User returns the signed-in user.
func (s *Session) User() (models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user, s.state == StateAuthenticated
}

// Context returns ctx acting as the signed-in user. Without a user the data
// service will refuse the request.
func (s *Session) Context(ctx context.Context) context.Context {
	if u, ok := s.User(); ok {
		return rowstore.WithUser(ctx, u.ID)
	}
	return ctx
}

// Restore settles a Loading session. A missing saved session is not an error.
func (s *Session) Restore(ctx context.Context) error {
	u, err := s.provider.Restore(ctx)
	if err != nil {
		s.set(StateUnauthenticated, models.User{})
		if errors.Is(err, ErrNoSession) {
			return nil
		}
		s.logger.Warn("restoring session failed", "error", err)
		return err
	}
	s.set(StateAuthenticated, u)
	s.logger.Info("session restored", "user_id", u.ID)
	return nil
}

func (s *Session) SignIn(ctx context.Context, email, password string) error {
	u, err := s.provider.SignIn(ctx, email, password)
	if err != nil {
		s.logger.Info("sign in failed", "email", email, "error", err)
		return err
	}
	s.set(StateAuthenticated, u)
	s.logger.Info("signed in", "user_id", u.ID)
	return nil
}

func (s *Session) SignUp(ctx context.Context, email, password string) error {
	u, err := s.provider.SignUp(ctx, email, password)
	if err != nil {
		s.logger.Info("sign up failed", "email", email, "error", err)
		return err
	}
	s.set(StateAuthenticated, u)
	s.logger.Info("signed up", "user_id", u.ID)
	return nil
}

// SignOut always ends the local session; a provider error is still returned.
func (s *Session) SignOut(ctx context.Context) error {
	err := s.provider.SignOut(ctx)
	s.set(StateUnauthenticated, models.User{})
	if err != nil {
		s.logger.Warn("sign out failed", "error", err)
	}
	return err
}

func (s *Session) set(state State, u models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
	s.user = u
}
