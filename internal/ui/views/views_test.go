package views

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/tgienger/projecthub/internal/auth"
	"github.com/tgienger/projecthub/internal/db"
	"github.com/tgienger/projecthub/internal/logging"
	"github.com/tgienger/projecthub/internal/rowstore"
	"github.com/tgienger/projecthub/internal/testutil"
)

// newTestEnv signs a fresh account in against an in-memory database and
// returns the env plus a context acting as that account for seeding.
func newTestEnv(t *testing.T) (Env, *db.DB, context.Context) {
	t.Helper()
	database := testutil.NewTestDB(t)
	store := auth.NewTokenStore(filepath.Join(t.TempDir(), ".auth_token"))
	session := auth.NewSession(auth.NewLocal(auth.NewAccounts(database, bcrypt.MinCost), store), logging.Discard())
	require.NoError(t, session.SignUp(context.Background(), "dev@example.com", "secret1"))

	env := Env{Client: database, Session: session, Logger: logging.Discard()}
	return env, database, session.Context(context.Background())
}

// failingInserts passes everything through except inserts.
type failingInserts struct {
	rowstore.Client
}

func (failingInserts) Insert(context.Context, string, rowstore.Row) (rowstore.Row, error) {
	return nil, fmt.Errorf("insert: %w", rowstore.ErrTransport)
}

// failingUpdates passes everything through except updates.
type failingUpdates struct {
	rowstore.Client
}

func (failingUpdates) Update(context.Context, string, string, rowstore.Row) error {
	return fmt.Errorf("update: %w", rowstore.ErrTransport)
}
