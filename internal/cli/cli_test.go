package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tgienger/projecthub/internal/db"
	"github.com/tgienger/projecthub/internal/rowstore"
	"github.com/tgienger/projecthub/internal/testutil"
)

// isolate points every config and data path at temporary directories.
func isolate(t *testing.T) string {
	t.Helper()
	data := t.TempDir()
	dbPath := filepath.Join(data, "projecthub", "projecthub.db")
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_DATA_HOME", data)
	t.Setenv("PROJECTHUB_DB", dbPath)
	t.Setenv("PROJECTHUB_LOG_FILE", filepath.Join(data, "projecthub.log"))
	t.Setenv("PROJECTHUB_SERVER_URL", "")
	t.Setenv("PROJECTHUB_JWT_SECRET", "")
	t.Setenv("PROJECTHUB_BACKEND", "sqlite")
	color.NoColor = true
	return dbPath
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	app := &App{Version: "1.2.3", IsInteractive: func() bool { return false }}
	cmd := NewRootCmd(app)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := run(t, args...)
	require.NoError(t, err, out)
	return out
}

func TestVersion(t *testing.T) {
	isolate(t)
	assert.Equal(t, "projecthub 1.2.3 (commit: none)\n", mustRun(t, "version"))
}

func TestRootPrintsHelpWithoutTerminal(t *testing.T) {
	isolate(t)
	out := mustRun(t)
	assert.Contains(t, out, "Usage:")
	assert.Contains(t, out, "export")
}

func TestSessionCommands(t *testing.T) {
	isolate(t)

	assert.Contains(t, mustRun(t, "whoami"), "You are not signed in")

	out := mustRun(t, "login", "--signup", "--email", "dev@example.com", "--password", "secret1")
	assert.Contains(t, out, "Created account and signed in as dev@example.com")

	out = mustRun(t, "whoami")
	assert.Contains(t, out, "Signed in as: dev@example.com")
	assert.Contains(t, out, "Database:")

	assert.Contains(t, mustRun(t, "projects"), "No projects yet")

	assert.Contains(t, mustRun(t, "logout"), "Signed out")
	assert.Contains(t, mustRun(t, "whoami"), "You are not signed in")

	_, err := run(t, "projects")
	assert.ErrorIs(t, err, errNotSignedIn)

	out = mustRun(t, "login", "--email", "dev@example.com", "--password", "secret1")
	assert.Contains(t, out, "Signed in as dev@example.com")
}

func TestLoginErrors(t *testing.T) {
	isolate(t)

	_, err := run(t, "login")
	assert.ErrorContains(t, err, "--email and --password are required")

	_, err = run(t, "login", "--email", "dev@example.com", "--password", "nope-nope")
	assert.ErrorContains(t, err, "invalid email or password")
}

func TestProjectsAndExport(t *testing.T) {
	dbPath := isolate(t)
	mustRun(t, "login", "--signup", "--email", "dev@example.com", "--password", "secret1")

	database, err := db.Open(dbPath)
	require.NoError(t, err)
	u, _, err := database.UserByEmail(context.Background(), "dev@example.com")
	require.NoError(t, err)
	ctx := rowstore.WithUser(context.Background(), u.ID)
	p := testutil.SeedProject(t, ctx, database, "Launch", testutil.WithDescription("Website relaunch"))
	testutil.SeedTask(t, ctx, database, p.ID, "Write copy")
	testutil.SeedNote(t, ctx, database, p.ID, testutil.WithNoteTitle("Kickoff"))
	require.NoError(t, database.Close())

	out := mustRun(t, "projects")
	assert.Contains(t, out, "Projects: 1")
	assert.Contains(t, out, "Active tasks: 1")
	assert.Contains(t, out, "Notes: 1")
	assert.Contains(t, out, "Launch")
	assert.Contains(t, out, "Website relaunch")

	out = mustRun(t, "export", p.ID)
	assert.Contains(t, out, "title: Launch")
	assert.Contains(t, out, "title: Write copy")
	assert.Contains(t, out, "title: Kickoff")

	out = mustRun(t, "export", p.ID, "--format", "json")
	assert.Contains(t, out, `"title": "Launch"`)

	file := filepath.Join(t.TempDir(), "launch.yaml")
	mustRun(t, "export", p.ID, "-o", file)
	assert.FileExists(t, file)

	_, err = run(t, "export", p.ID, "--format", "xml")
	assert.ErrorContains(t, err, "unknown format")

	_, err = run(t, "export", "no-such-project")
	assert.ErrorIs(t, err, rowstore.ErrNotFound)
}

func TestServeRequiresSecret(t *testing.T) {
	isolate(t)
	_, err := run(t, "serve")
	assert.ErrorContains(t, err, "PROJECTHUB_JWT_SECRET")

	_, err = run(t, "serve", "--backend", "mongo")
	assert.ErrorContains(t, err, "unknown backend")
}
