package config

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/flock"
)

// ErrLocked is returned when another process holds the database lock.
var ErrLocked = errors.New("database is in use by another projecthub process")

// Lock is an exclusive advisory lock beside the embedded database.
type Lock struct {
	flock *flock.Flock
}

// AcquireLock takes the lock for dbPath, retrying until ctx is done.
func AcquireLock(ctx context.Context, dbPath string) (*Lock, error) {
	fl := flock.New(dbPath + ".lock")
	locked, err := fl.TryLockContext(ctx, 100*time.Millisecond)
	if err != nil && !errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, context.Canceled) {
		return nil, fmt.Errorf("failed to acquire lock: %w", err)
	}
	if !locked {
		return nil, ErrLocked
	}
	return &Lock{flock: fl}, nil
}

// Release unlocks. It is safe to call more than once.
func (l *Lock) Release() error {
	if l == nil || l.flock == nil {
		return nil
	}
	return l.flock.Unlock()
}
