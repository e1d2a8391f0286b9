package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/tgienger/projecthub/internal/models"
	"github.com/tgienger/projecthub/internal/rowstore"
)

// Local authenticates against the embedded database and remembers the
// signed-in user id in the token store.
type Local struct {
	accounts *Accounts
	store    *TokenStore
}

var _ Provider = (*Local)(nil)

func NewLocal(accounts *Accounts, store *TokenStore) *Local {
	return &Local{accounts: accounts, store: store}
}

func (l *Local) Restore(ctx context.Context) (models.User, error) {
	id, err := l.store.GetToken()
	if err != nil {
		return models.User{}, fmt.Errorf("reading session: %w", err)
	}
	if id == "" {
		return models.User{}, ErrNoSession
	}
	u, err := l.accounts.User(ctx, id)
	if errors.Is(err, rowstore.ErrNotFound) {
		// the account is gone; forget it
		_ = l.store.ClearToken()
		return models.User{}, ErrNoSession
	}
	return u, err
}

func (l *Local) SignIn(ctx context.Context, email, password string) (models.User, error) {
	u, err := l.accounts.Authenticate(ctx, email, password)
	if err != nil {
		return models.User{}, err
	}
	return u, l.remember(u)
}

func (l *Local) SignUp(ctx context.Context, email, password string) (models.User, error) {
	u, err := l.accounts.Register(ctx, email, password)
	if err != nil {
		return models.User{}, err
	}
	return u, l.remember(u)
}

func (l *Local) SignOut(context.Context) error {
	return l.store.ClearToken()
}

func (l *Local) remember(u models.User) error {
	if err := l.store.SaveToken(u.ID); err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	return nil
}
