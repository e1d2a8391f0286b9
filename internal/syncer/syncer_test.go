package syncer_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tgienger/projecthub/internal/syncer"
)

type item struct {
	ID  string
	Key string
	Val string
}

// fakeBackend is an in-memory table keyed by foreign key. A gate registered
// for a key blocks List for that key until released.
type fakeBackend struct {
	mu      sync.Mutex
	items   []item
	nextID  int
	gates   map[string]chan struct{}
	listErr error
	failOps map[string]error
}

func newFake() *fakeBackend {
	return &fakeBackend{gates: map[string]chan struct{}{}, failOps: map[string]error{}}
}

func (f *fakeBackend) gate(key string) chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch := make(chan struct{})
	f.gates[key] = ch
	return ch
}

func (f *fakeBackend) List(ctx context.Context, key string) ([]item, error) {
	f.mu.Lock()
	gate := f.gates[key]
	delete(f.gates, key)
	listErr := f.listErr
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if listErr != nil {
		return nil, listErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	var out []item
	for _, it := range f.items {
		if it.Key == key {
			out = append(out, it)
		}
	}
	return out, nil
}

func (f *fakeBackend) Create(_ context.Context, key string, val string) (item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failOps["create"]; err != nil {
		return item{}, err
	}
	f.nextID++
	it := item{ID: fmt.Sprint(f.nextID), Key: key, Val: val}
	f.items = append(f.items, it)
	return it, nil
}

func (f *fakeBackend) Update(_ context.Context, id string, val string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failOps["update"]; err != nil {
		return err
	}
	for i := range f.items {
		if f.items[i].ID == id {
			f.items[i].Val = val
			return nil
		}
	}
	return errors.New("not found")
}

func (f *fakeBackend) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.items {
		if f.items[i].ID == id {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return nil
		}
	}
	return errors.New("not found")
}

func newSync(b *fakeBackend) *syncer.Synchronizer[item, string, string] {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return syncer.New[item, string, string]("items", b, syncer.WithLogger(logger))
}

func TestLoadReplacesCache(t *testing.T) {
	b := newFake()
	b.items = []item{{ID: "1", Key: "a", Val: "x"}, {ID: "2", Key: "b", Val: "y"}}
	s := newSync(b)
	ctx := context.Background()

	assert.False(t, s.Loaded())
	rows, err := s.Load(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, []item{{ID: "1", Key: "a", Val: "x"}}, rows)
	assert.True(t, s.Loaded())
	assert.Equal(t, "a", s.Key())

	again, err := s.Load(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, rows, again)

	rows, err = s.Load(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, []item{{ID: "2", Key: "b", Val: "y"}}, rows)
	assert.Equal(t, rows, s.Rows())
}

func TestLoadErrorKeepsCache(t *testing.T) {
	b := newFake()
	b.items = []item{{ID: "1", Key: "a", Val: "x"}}
	s := newSync(b)
	ctx := context.Background()

	_, err := s.Load(ctx, "a")
	require.NoError(t, err)

	boom := errors.New("network down")
	b.listErr = boom
	_, err = s.Load(ctx, "a")
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []item{{ID: "1", Key: "a", Val: "x"}}, s.Rows())
}

func TestMutationsReload(t *testing.T) {
	b := newFake()
	s := newSync(b)
	ctx := context.Background()

	_, err := s.Create(ctx, "early")
	assert.ErrorIs(t, err, syncer.ErrNoKey)

	_, err = s.Load(ctx, "a")
	require.NoError(t, err)
	assert.Empty(t, s.Rows())

	created, err := s.Create(ctx, "first")
	require.NoError(t, err)
	assert.Equal(t, "a", created.Key)
	assert.Equal(t, []item{created}, s.Rows())

	require.NoError(t, s.Mutate(ctx, created.ID, "renamed"))
	assert.Equal(t, "renamed", s.Rows()[0].Val)

	require.NoError(t, s.Destroy(ctx, created.ID))
	assert.Empty(t, s.Rows())
}

func TestFailedMutationLeavesCache(t *testing.T) {
	b := newFake()
	b.items = []item{{ID: "1", Key: "a", Val: "x"}}
	s := newSync(b)
	ctx := context.Background()
	_, err := s.Load(ctx, "a")
	require.NoError(t, err)

	boom := errors.New("constraint")
	b.failOps["create"] = boom
	b.failOps["update"] = boom

	_, err = s.Create(ctx, "nope")
	assert.ErrorIs(t, err, boom)
	err = s.Mutate(ctx, "1", "nope")
	assert.ErrorIs(t, err, boom)
	err = s.Destroy(ctx, "missing")
	assert.Error(t, err)

	assert.Equal(t, []item{{ID: "1", Key: "a", Val: "x"}}, s.Rows())
}

func TestStaleLoadIsDiscarded(t *testing.T) {
	b := newFake()
	b.items = []item{{ID: "1", Key: "old", Val: "x"}, {ID: "2", Key: "new", Val: "y"}}
	s := newSync(b)
	ctx := context.Background()

	gate := b.gate("old")
	staleErr := make(chan error, 1)
	go func() {
		_, err := s.Load(ctx, "old")
		staleErr <- err
	}()

	// wait until the slow load has been issued
	require.Eventually(t, func() bool { return s.Key() == "old" }, time.Second, time.Millisecond)

	rows, err := s.Load(ctx, "new")
	require.NoError(t, err)
	assert.Equal(t, "new", rows[0].Key)

	close(gate)
	assert.ErrorIs(t, <-staleErr, syncer.ErrSuperseded)
	assert.Equal(t, []item{{ID: "2", Key: "new", Val: "y"}}, s.Rows())
}

func TestCloseDropsInFlightResults(t *testing.T) {
	b := newFake()
	b.items = []item{{ID: "1", Key: "a", Val: "x"}}
	s := newSync(b)
	ctx := context.Background()

	b.gate("a")
	done := make(chan error, 1)
	go func() {
		_, err := s.Load(ctx, "a")
		done <- err
	}()
	require.Eventually(t, func() bool { return s.Key() == "a" }, time.Second, time.Millisecond)

	s.Close()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, syncer.ErrClosed)
	case <-time.After(time.Second):
		t.Fatal("in-flight load was not cancelled")
	}
	assert.Empty(t, s.Rows())
	assert.False(t, s.Loaded())

	_, err := s.Load(ctx, "a")
	assert.ErrorIs(t, err, syncer.ErrClosed)
	_, err = s.Create(ctx, "late")
	assert.ErrorIs(t, err, syncer.ErrClosed)
}
