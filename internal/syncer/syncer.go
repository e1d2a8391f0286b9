// Package syncer keeps a view's list of rows in step with the data service.
// A synchronizer caches the rows matching one foreign key, replaces the cache
// wholesale on every load and reloads after every mutation. Mutations are
// never applied optimistically.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

var (
	// ErrSuperseded is returned by a load whose result was discarded because
	// a newer load was issued while it was in flight.
	ErrSuperseded = errors.New("superseded by a newer load")

	// ErrClosed is returned once the synchronizer has been closed.
	ErrClosed = errors.New("synchronizer closed")

	// ErrNoKey is returned by mutations issued before any load.
	ErrNoKey = errors.New("no key loaded")
)

// DefaultTimeout bounds each backend request.
const DefaultTimeout = 15 * time.Second

// Backend is the slice of a table a synchronizer needs. key is the foreign
// key value the list is filtered on.
type Backend[T, C, U any] interface {
	List(ctx context.Context, key string) ([]T, error)
	Create(ctx context.Context, key string, payload C) (T, error)
	Update(ctx context.Context, id string, fields U) error
	Delete(ctx context.Context, id string) error
}

type options struct {
	logger  *slog.Logger
	timeout time.Duration
}

type Option func(*options)

// WithLogger sets the diagnostic logger. Failures are logged there and also
// returned to the caller.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithTimeout bounds each backend request. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		o.timeout = d
	}
}

// Synchronizer is the cached row set of one list-backed view.
type Synchronizer[T, C, U any] struct {
	name    string
	backend Backend[T, C, U]
	logger  *slog.Logger
	timeout time.Duration

	// done is cancelled by Close and aborts every in-flight request.
	done   context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	key    string
	rows   []T
	loaded bool
	gen    uint64
	closed bool
}

// New returns a synchronizer named after the view it serves.
func New[T, C, U any](name string, backend Backend[T, C, U], opts ...Option) *Synchronizer[T, C, U] {
	o := options{logger: slog.Default(), timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(&o)
	}
	done, cancel := context.WithCancel(context.Background())
	return &Synchronizer[T, C, U]{
		name:    name,
		backend: backend,
		logger:  o.logger.With("view", name),
		timeout: o.timeout,
		done:    done,
		cancel:  cancel,
	}
}

// Load lists the rows for key and, unless a newer load was issued meanwhile,
// replaces the cache with them. On failure the cache keeps its previous value.
func (s *Synchronizer[T, C, U]) Load(ctx context.Context, key string) ([]T, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrClosed
	}
	s.gen++
	gen := s.gen
	s.key = key
	s.mu.Unlock()

	rctx, cancel := s.request(ctx)
	rows, err := s.backend.List(rctx, key)
	cancel()

	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case s.closed:
		return nil, ErrClosed
	case gen != s.gen:
		s.logger.Debug("discarding stale load", "key", key, "generation", gen)
		return nil, ErrSuperseded
	case err != nil:
		s.logger.Error("load failed", "op", "load", "key", key, "error", err)
		return nil, fmt.Errorf("loading %s: %w", s.name, err)
	}
	s.rows = rows
	s.loaded = true
	return s.snapshot(), nil
}

// Reload repeats the load for the current key.
func (s *Synchronizer[T, C, U]) Reload(ctx context.Context) ([]T, error) {
	key, err := s.currentKey()
	if err != nil {
		return nil, err
	}
	return s.Load(ctx, key)
}

// Create inserts one row under the current key and reloads.
func (s *Synchronizer[T, C, U]) Create(ctx context.Context, payload C) (T, error) {
	var zero T
	key, err := s.currentKey()
	if err != nil {
		return zero, err
	}

	rctx, cancel := s.request(ctx)
	created, err := s.backend.Create(rctx, key, payload)
	cancel()
	if err != nil {
		return zero, s.mutationFailed("create", key, "", err)
	}
	return created, s.reloadAfter(ctx, key)
}

// Mutate updates exactly one row and reloads.
func (s *Synchronizer[T, C, U]) Mutate(ctx context.Context, id string, fields U) error {
	key, err := s.currentKey()
	if err != nil {
		return err
	}

	rctx, cancel := s.request(ctx)
	err = s.backend.Update(rctx, id, fields)
	cancel()
	if err != nil {
		return s.mutationFailed("update", key, id, err)
	}
	return s.reloadAfter(ctx, key)
}

// Destroy deletes one row and reloads. Anything the row owns is removed by
// the data service.
func (s *Synchronizer[T, C, U]) Destroy(ctx context.Context, id string) error {
	key, err := s.currentKey()
	if err != nil {
		return err
	}

	rctx, cancel := s.request(ctx)
	err = s.backend.Delete(rctx, id)
	cancel()
	if err != nil {
		return s.mutationFailed("delete", key, id, err)
	}
	return s.reloadAfter(ctx, key)
}

// Close disposes of the synchronizer. In-flight requests are cancelled and
// their results dropped.
func (s *Synchronizer[T, C, U]) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.cancel()
}

// Rows returns a copy of the cached rows.
func (s *Synchronizer[T, C, U]) Rows() []T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

// Loaded reports whether any load has succeeded.
func (s *Synchronizer[T, C, U]) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loaded
}

// Key returns the foreign key of the most recent load.
func (s *Synchronizer[T, C, U]) Key() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.key
}

func (s *Synchronizer[T, C, U]) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Synchronizer[T, C, U]) snapshot() []T {
	out := make([]T, len(s.rows))
	copy(out, s.rows)
	return out
}

func (s *Synchronizer[T, C, U]) currentKey() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return "", ErrClosed
	}
	if s.key == "" {
		return "", ErrNoKey
	}
	return s.key, nil
}

// request derives the context for one backend call: bounded by the timeout
// and cancelled when either ctx or the synchronizer is done.
func (s *Synchronizer[T, C, U]) request(ctx context.Context) (context.Context, context.CancelFunc) {
	var rctx context.Context
	var cancel context.CancelFunc
	if s.timeout > 0 {
		rctx, cancel = context.WithTimeout(ctx, s.timeout)
	} else {
		rctx, cancel = context.WithCancel(ctx)
	}
	stop := context.AfterFunc(s.done, cancel)
	return rctx, func() {
		stop()
		cancel()
	}
}

func (s *Synchronizer[T, C, U]) mutationFailed(op, key, id string, err error) error {
	if s.Closed() {
		return ErrClosed
	}
	s.logger.Error(op+" failed", "op", op, "key", key, "id", id, "error", err)
	return fmt.Errorf("%s %s: %w", op, s.name, err)
}

// reloadAfter refreshes the cache after a successful mutation. A load that
// lost to a newer one is not an error here: the newer load already reflects
// the mutation.
func (s *Synchronizer[T, C, U]) reloadAfter(ctx context.Context, key string) error {
	if _, err := s.Load(ctx, key); err != nil && !errors.Is(err, ErrSuperseded) {
		return err
	}
	return nil
}
