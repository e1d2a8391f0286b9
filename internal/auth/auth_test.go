package auth_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/tgienger/projecthub/internal/auth"
	"github.com/tgienger/projecthub/internal/logging"
	"github.com/tgienger/projecthub/internal/models"
	"github.com/tgienger/projecthub/internal/rowstore"
	"github.com/tgienger/projecthub/internal/testutil"
)

func newLocal(t *testing.T) (*auth.Local, *auth.TokenStore) {
	t.Helper()
	database := testutil.NewTestDB(t)
	store := auth.NewTokenStore(filepath.Join(t.TempDir(), ".auth_token"))
	return auth.NewLocal(auth.NewAccounts(database, bcrypt.MinCost), store), store
}

func TestRegisterValidation(t *testing.T) {
	local, _ := newLocal(t)
	ctx := context.Background()

	_, err := local.SignUp(ctx, "not-an-email", "secret1")
	assert.ErrorIs(t, err, auth.ErrInvalidEmail)
	_, err = local.SignUp(ctx, "a@example.com", "short")
	assert.ErrorIs(t, err, auth.ErrWeakPassword)

	_, err = local.SignUp(ctx, "a@example.com", "secret1")
	require.NoError(t, err)
	_, err = local.SignUp(ctx, "A@example.com", "secret2")
	assert.ErrorIs(t, err, auth.ErrEmailTaken)
}

func TestSignInChecksPassword(t *testing.T) {
	local, _ := newLocal(t)
	ctx := context.Background()
	registered, err := local.SignUp(ctx, "a@example.com", "secret1")
	require.NoError(t, err)

	u, err := local.SignIn(ctx, "a@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, u.ID)

	_, err = local.SignIn(ctx, "a@example.com", "wrong-password")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	_, err = local.SignIn(ctx, "nobody@example.com", "secret1")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestSessionLifecycle(t *testing.T) {
	local, store := newLocal(t)
	ctx := context.Background()
	session := auth.NewSession(local, logging.Discard())

	assert.Equal(t, auth.StateLoading, session.State())
	require.NoError(t, session.Restore(ctx))
	assert.Equal(t, auth.StateUnauthenticated, session.State())
	_, ok := rowstore.UserFrom(session.Context(ctx))
	assert.False(t, ok)

	require.NoError(t, session.SignUp(ctx, "a@example.com", "secret1"))
	assert.Equal(t, auth.StateAuthenticated, session.State())
	u, ok := session.User()
	require.True(t, ok)
	assert.Equal(t, "a@example.com", u.Email)
	id, ok := rowstore.UserFrom(session.Context(ctx))
	require.True(t, ok)
	assert.Equal(t, u.ID, id)

	saved, err := store.GetToken()
	require.NoError(t, err)
	assert.Equal(t, u.ID, saved)

	// a new process resumes from the token store
	resumed := auth.NewSession(local, logging.Discard())
	require.NoError(t, resumed.Restore(ctx))
	assert.Equal(t, auth.StateAuthenticated, resumed.State())

	require.NoError(t, resumed.SignOut(ctx))
	assert.Equal(t, auth.StateUnauthenticated, resumed.State())
	_, ok = resumed.User()
	assert.False(t, ok)
	saved, err = store.GetToken()
	require.NoError(t, err)
	assert.Empty(t, saved)
}

func TestRestoreForgetsDeletedAccount(t *testing.T) {
	local, store := newLocal(t)
	require.NoError(t, store.SaveToken("no-such-user"))

	session := auth.NewSession(local, logging.Discard())
	require.NoError(t, session.Restore(context.Background()))
	assert.Equal(t, auth.StateUnauthenticated, session.State())
	saved, _ := store.GetToken()
	assert.Empty(t, saved)
}

type failingProvider struct{ err error }

func (f failingProvider) Restore(context.Context) (models.User, error) { return models.User{}, f.err }
func (f failingProvider) SignIn(context.Context, string, string) (models.User, error) {
	return models.User{}, f.err
}
func (f failingProvider) SignUp(context.Context, string, string) (models.User, error) {
	return models.User{}, f.err
}
func (f failingProvider) SignOut(context.Context) error { return f.err }

func TestSessionReportsProviderErrors(t *testing.T) {
	boom := errors.New("offline")
	session := auth.NewSession(failingProvider{err: boom}, logging.Discard())
	ctx := context.Background()

	assert.ErrorIs(t, session.Restore(ctx), boom)
	assert.Equal(t, auth.StateUnauthenticated, session.State())
	assert.ErrorIs(t, session.SignIn(ctx, "a@example.com", "secret1"), boom)
	assert.Equal(t, auth.StateUnauthenticated, session.State())
	assert.ErrorIs(t, session.SignOut(ctx), boom)
	assert.Equal(t, auth.StateUnauthenticated, session.State())
}

func TestTokens(t *testing.T) {
	tokens := auth.NewTokens("test-secret", time.Hour)
	u := models.User{ID: "u1", Email: "a@example.com"}

	signed, err := tokens.Issue(u)
	require.NoError(t, err)

	claims, err := tokens.Parse(signed)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "a@example.com", claims.Email)

	_, err = auth.NewTokens("other-secret", time.Hour).Parse(signed)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
	_, err = tokens.Parse("garbage")
	assert.ErrorIs(t, err, auth.ErrInvalidToken)

	expired := auth.NewTokens("test-secret", -time.Minute)
	stale, err := expired.Issue(u)
	require.NoError(t, err)
	_, err = tokens.Parse(stale)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestTokenStorePermissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg", ".auth_token")
	store := auth.NewTokenStore(path)

	token, err := store.GetToken()
	require.NoError(t, err)
	assert.Empty(t, token)

	require.NoError(t, store.SaveToken("abc"))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	require.NoError(t, store.ClearToken())
	require.NoError(t, store.ClearToken())
}
