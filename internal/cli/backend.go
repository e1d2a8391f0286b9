package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/tgienger/projecthub/internal/api"
	"github.com/tgienger/projecthub/internal/auth"
	"github.com/tgienger/projecthub/internal/config"
	"github.com/tgienger/projecthub/internal/db"
	"github.com/tgienger/projecthub/internal/models"
	"github.com/tgienger/projecthub/internal/rowstore"
)

// lockWait bounds how long a command waits for another process to release
// the embedded database.
const lockWait = 2 * time.Second

var errNotSignedIn = errors.New("not signed in; run `projecthub login` first")

// backend is a row client plus the auth provider that goes with it.
type backend struct {
	client   rowstore.Client
	provider auth.Provider
	release  func()
}

func (b *backend) Close() {
	if b.release != nil {
		b.release()
	}
}

// openBackend connects to the configured data service, or opens the embedded
// database under an exclusive lock.
func openBackend(ctx context.Context, cfg *config.Config) (*backend, error) {
	tokenFile, err := config.TokenFile()
	if err != nil {
		return nil, fmt.Errorf("locating token file: %w", err)
	}
	tokens := auth.NewTokenStore(tokenFile)

	if cfg.Remote() {
		client := api.NewClient(cfg.ServerURL, tokens)
		return &backend{client: client, provider: client}, nil
	}

	lockCtx, cancel := context.WithTimeout(ctx, lockWait)
	defer cancel()
	lock, err := config.AcquireLock(lockCtx, cfg.DBPath)
	if err != nil {
		return nil, err
	}
	database, err := db.Open(cfg.DBPath)
	if err != nil {
		_ = lock.Release()
		return nil, err
	}
	return &backend{
		client:   database,
		provider: auth.NewLocal(auth.NewAccounts(database, 0), tokens),
		release: func() {
			database.Close()
			_ = lock.Release()
		},
	}, nil
}

// restore resumes the saved session and returns the signed-in user.
func restore(ctx context.Context, b *backend, logger *slog.Logger) (*auth.Session, models.User, error) {
	session := auth.NewSession(b.provider, logger)
	if err := session.Restore(ctx); err != nil {
		return nil, models.User{}, err
	}
	u, ok := session.User()
	if !ok {
		return session, models.User{}, errNotSignedIn
	}
	return session, u, nil
}
