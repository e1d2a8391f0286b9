package fsstore_test

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tgienger/projecthub/internal/fsstore"
	"github.com/tgienger/projecthub/internal/logging"
	"github.com/tgienger/projecthub/internal/models"
	"github.com/tgienger/projecthub/internal/repository"
	"github.com/tgienger/projecthub/internal/rowstore"
	"github.com/tgienger/projecthub/internal/schema"
	"github.com/tgienger/projecthub/internal/testutil"
)

// These tests need the Firestore emulator:
//
//	gcloud emulators firestore start --host-port=localhost:8681
//	FIRESTORE_EMULATOR_HOST=localhost:8681 go test ./internal/fsstore/
func newEmulatorStore(t *testing.T) *fsstore.Store {
	t.Helper()
	if os.Getenv("FIRESTORE_EMULATOR_HOST") == "" {
		t.Skip("FIRESTORE_EMULATOR_HOST not set")
	}
	store, err := fsstore.Connect(context.Background(), "projecthub-test", "", logging.Discard())
	require.NoError(t, err)
	store.SetClock(testutil.NewClock().Now)
	t.Cleanup(func() { store.Close() })
	return store
}

func newUser(t *testing.T, store *fsstore.Store) (context.Context, string) {
	t.Helper()
	u, err := store.CreateUser(context.Background(), schema.NewID()+"@example.com", "hash")
	require.NoError(t, err)
	return rowstore.WithUser(context.Background(), u.ID), u.ID
}

func TestEmulatorRoundTrip(t *testing.T) {
	store := newEmulatorStore(t)
	ctx, userID := newUser(t, store)

	p, err := repository.NewProjects(store).Create(ctx, userID, models.ProjectInsert{Title: "Launch"})
	require.NoError(t, err)

	tasks := repository.NewTasks(store)
	first, err := tasks.Create(ctx, p.ID, models.TaskDraft{Title: "one"})
	require.NoError(t, err)
	second, err := tasks.Create(ctx, p.ID, models.TaskDraft{Title: "two", Status: models.StatusDone})
	require.NoError(t, err)
	assert.Equal(t, first.Position+1, second.Position)

	list, err := tasks.List(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "one", list[0].Title)

	stats, err := repository.LoadStats(ctx, store, userID)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.ActiveTasks)

	note, err := repository.NewNotes(store).Create(ctx, p.ID, models.NoteInsert{})
	require.NoError(t, err)
	assert.Equal(t, models.DefaultNoteTitle, note.Title)

	require.NoError(t, repository.NewProjects(store).Delete(ctx, p.ID))
	list, err = tasks.List(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestEmulatorOwnerScoping(t *testing.T) {
	store := newEmulatorStore(t)
	alice, aliceID := newUser(t, store)
	bob, _ := newUser(t, store)

	p, err := repository.NewProjects(store).Create(alice, aliceID, models.ProjectInsert{Title: "Secret"})
	require.NoError(t, err)

	rows, err := store.Select(bob, schema.Projects, rowstore.NewQuery())
	require.NoError(t, err)
	assert.Empty(t, rows)

	_, err = repository.NewTasks(store).Create(bob, p.ID, models.TaskDraft{Title: "x"})
	assert.ErrorIs(t, err, rowstore.ErrUnauthorized)
	assert.ErrorIs(t, store.Delete(bob, schema.Projects, p.ID), rowstore.ErrNotFound)
}

func TestEmulatorUsers(t *testing.T) {
	store := newEmulatorStore(t)
	ctx := context.Background()
	email := schema.NewID() + "@Example.com"

	u, err := store.CreateUser(ctx, email, "hash")
	require.NoError(t, err)
	_, err = store.CreateUser(ctx, email, "hash")
	assert.ErrorIs(t, err, rowstore.ErrQuery)

	got, hash, err := store.UserByEmail(ctx, email)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, "hash", hash)

	_, err = store.UserByID(ctx, "missing")
	assert.ErrorIs(t, err, rowstore.ErrNotFound)
}
