package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/tgienger/projecthub/internal/models"
	"github.com/tgienger/projecthub/internal/rowstore"
)

// AccountStore persists users and their password hashes.
type AccountStore interface {
	CreateUser(ctx context.Context, email, passwordHash string) (models.User, error)
	UserByEmail(ctx context.Context, email string) (models.User, string, error)
	UserByID(ctx context.Context, id string) (models.User, error)
}

// Accounts registers and verifies email/password users.
type Accounts struct {
	store AccountStore
	cost  int
}

// NewAccounts hashes with the given bcrypt cost; zero means bcrypt.DefaultCost.
func NewAccounts(store AccountStore, cost int) *Accounts {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &Accounts{store: store, cost: cost}
}

func (a *Accounts) Register(ctx context.Context, email, password string) (models.User, error) {
	email = strings.TrimSpace(email)
	if err := checkCredentials(email, password); err != nil {
		return models.User{}, err
	}
	if _, _, err := a.store.UserByEmail(ctx, email); err == nil {
		return models.User{}, ErrEmailTaken
	} else if !errors.Is(err, rowstore.ErrNotFound) {
		return models.User{}, fmt.Errorf("checking email: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), a.cost)
	if err != nil {
		return models.User{}, fmt.Errorf("hashing password: %w", err)
	}
	u, err := a.store.CreateUser(ctx, email, string(hash))
	if err != nil {
		return models.User{}, fmt.Errorf("creating user: %w", err)
	}
	return u, nil
}

// Authenticate returns the user if password matches. Unknown emails and wrong
// passwords are indistinguishable to the caller.
func (a *Accounts) Authenticate(ctx context.Context, email, password string) (models.User, error) {
	u, hash, err := a.store.UserByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, rowstore.ErrNotFound) {
		return models.User{}, ErrInvalidCredentials
	}
	if err != nil {
		return models.User{}, fmt.Errorf("looking up user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return models.User{}, ErrInvalidCredentials
	}
	return u, nil
}

func (a *Accounts) User(ctx context.Context, id string) (models.User, error) {
	return a.store.UserByID(ctx, id)
}

func checkCredentials(email, password string) error {
	at := strings.Index(email, "@")
	if at < 1 || at == len(email)-1 || strings.ContainsAny(email, " \t") {
		return ErrInvalidEmail
	}
	if len(password) < MinPasswordLength {
		return ErrWeakPassword
	}
	return nil
}
