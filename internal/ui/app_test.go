package ui

import (
	"context"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/tgienger/projecthub/internal/auth"
	"github.com/tgienger/projecthub/internal/db"
	"github.com/tgienger/projecthub/internal/logging"
	"github.com/tgienger/projecthub/internal/models"
	"github.com/tgienger/projecthub/internal/nav"
	"github.com/tgienger/projecthub/internal/repository"
	"github.com/tgienger/projecthub/internal/rowstore"
	"github.com/tgienger/projecthub/internal/teatest"
	"github.com/tgienger/projecthub/internal/testutil"
	"github.com/tgienger/projecthub/internal/ui/views"
)

type harness struct {
	db       *db.DB
	provider *auth.Local
	session  *auth.Session
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	database := testutil.NewTestDB(t)
	store := auth.NewTokenStore(filepath.Join(t.TempDir(), ".auth_token"))
	provider := auth.NewLocal(auth.NewAccounts(database, bcrypt.MinCost), store)
	return &harness{
		db:       database,
		provider: provider,
		session:  auth.NewSession(provider, logging.Discard()),
	}
}

// signUp registers an account the app will resume on start and returns a
// context acting as it.
func (h *harness) signUp(t *testing.T, email string) context.Context {
	t.Helper()
	u, err := h.provider.SignUp(context.Background(), email, "secret1")
	require.NoError(t, err)
	return rowstore.WithUser(context.Background(), u.ID)
}

// testDriver adds app inspection to the generic driver.
type testDriver struct {
	*teatest.Driver
	app *App
}

func (h *harness) start(t *testing.T) *testDriver {
	t.Helper()
	app := NewApp(h.db, h.session, logging.Discard())
	d := teatest.New(t, app, teatest.WithSize(120, 40))
	d.Start()
	return &testDriver{Driver: d, app: app}
}

func (d *testDriver) State() nav.State {
	return d.app.Navigator().State()
}

func (d *testDriver) assertShows(texts ...string) {
	d.T.Helper()
	view := d.View()
	for _, text := range texts {
		assert.Contains(d.T, view, text)
	}
}

func TestStartsOnLoginWithoutSession(t *testing.T) {
	h := newHarness(t)
	d := h.start(t)

	assert.Equal(t, auth.StateUnauthenticated, h.session.State())
	d.assertShows("Sign in to ProjectHub", "Need an account?")
}

func TestSignUpOpensDashboard(t *testing.T) {
	h := newHarness(t)
	d := h.start(t)

	d.Key(tea.KeyCtrlT)
	d.assertShows("Create your account")

	d.Type("new@example.com")
	d.Enter()
	d.Type("secret1")
	d.Enter()

	require.Equal(t, auth.StateAuthenticated, h.session.State())
	u, _ := h.session.User()
	assert.Equal(t, "new@example.com", u.Email)
	assert.Equal(t, nav.Dashboard, d.State().Screen)
	d.assertShows("ProjectHub", "new@example.com", "No projects yet")
}

func TestSignInShowsCredentialError(t *testing.T) {
	h := newHarness(t)
	h.signUp(t, "dev@example.com")
	require.NoError(t, h.provider.SignOut(context.Background()))
	d := h.start(t)

	d.Type("dev@example.com")
	d.Enter()
	d.Type("wrong-password")
	d.Enter()

	assert.Equal(t, auth.StateUnauthenticated, h.session.State())
	d.assertShows("Sign in to ProjectHub", "Invalid email or password")
}

func TestResumesSessionOnDashboard(t *testing.T) {
	h := newHarness(t)
	ctx := h.signUp(t, "dev@example.com")
	p := testutil.SeedProject(t, ctx, h.db, "Launch", testutil.WithDescription("Website relaunch"))
	testutil.SeedTask(t, ctx, h.db, p.ID, "Write copy")
	testutil.SeedNote(t, ctx, h.db, p.ID)

	d := h.start(t)

	assert.Equal(t, auth.StateAuthenticated, h.session.State())
	d.assertShows("Your Projects", "Launch", "Website relaunch", "Total Projects", "Active Tasks", "Notes Created")
}

func TestCreateProjectFromDashboard(t *testing.T) {
	h := newHarness(t)
	ctx := h.signUp(t, "dev@example.com")
	d := h.start(t)

	d.Press('n')
	d.assertShows("New Project")
	d.CtrlS()
	d.assertShows("New Project", "A title is required")

	d.Type("Launch")
	d.Tab()
	d.Type("Website relaunch")
	d.CtrlS()

	userID, _ := rowstore.UserFrom(ctx)
	projects, err := repository.NewProjects(h.db).List(ctx, userID)
	require.NoError(t, err)
	require.Len(t, projects, 1)
	assert.Equal(t, "Launch", projects[0].Title)
	assert.Equal(t, "Website relaunch", projects[0].Description)
	d.assertShows("Project created", "Launch")
}

func TestOpenProjectAndSwitchTabs(t *testing.T) {
	h := newHarness(t)
	ctx := h.signUp(t, "dev@example.com")
	p := testutil.SeedProject(t, ctx, h.db, "Launch")
	d := h.start(t)

	d.Enter()
	require.Equal(t, nav.Workspace, d.State().Screen)
	assert.Equal(t, p.ID, d.State().ProjectID)
	assert.Equal(t, nav.TabBoard, d.State().Tab)
	d.assertShows("Launch", "1 Board", "2 Notes", "3 Settings", "To Do (0)", "In Progress (0)", "Done (0)")

	d.Press('2')
	assert.Equal(t, nav.TabNotes, d.State().Tab)
	d.assertShows("Notes (0)", "No note selected")

	d.Press(']')
	assert.Equal(t, nav.TabSettings, d.State().Tab)
	d.assertShows("Project Settings", "Danger Zone")

	d.Press(']')
	assert.Equal(t, nav.TabBoard, d.State().Tab)
	d.Press('[')
	assert.Equal(t, nav.TabSettings, d.State().Tab)

	d.Esc()
	assert.Equal(t, nav.State{Screen: nav.Dashboard}, d.State())
	assert.Nil(t, d.app.Workspace())
	d.assertShows("Your Projects", "Launch")
}

func TestMoveTaskToInProgress(t *testing.T) {
	h := newHarness(t)
	ctx := h.signUp(t, "dev@example.com")
	p := testutil.SeedProject(t, ctx, h.db, "Launch")
	task := testutil.SeedTask(t, ctx, h.db, p.ID, "Write copy")
	d := h.start(t)

	d.Enter()
	d.assertShows("To Do (1)", "Write copy", "move ›")

	d.Press('>')

	tasks, err := repository.NewTasks(h.db).List(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, task.ID, tasks[0].ID)
	assert.Equal(t, models.StatusInProgress, tasks[0].Status)
	d.assertShows("To Do (0)", "In Progress (1)", "‹ move", "move ›")

	d.Press('>')
	d.assertShows("In Progress (0)", "Done (1)")
	assert.NotContains(t, d.View(), "move ›")
}

func TestDeleteLastTaskInColumn(t *testing.T) {
	h := newHarness(t)
	ctx := h.signUp(t, "dev@example.com")
	p := testutil.SeedProject(t, ctx, h.db, "Launch")
	testutil.SeedTask(t, ctx, h.db, p.ID, "Write copy")
	d := h.start(t)
	d.Enter()

	d.Press('d')
	d.assertShows(`Delete task "Write copy"?`, "Y - Yes", "N - No")

	d.Press('n')
	d.assertShows("To Do (1)", "Write copy")

	d.Press('d')
	d.Press('y')

	tasks, err := repository.NewTasks(h.db).List(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, tasks)
	d.assertShows("To Do (0)", "No tasks yet")
}

func TestCreateTaskInFocusedColumn(t *testing.T) {
	h := newHarness(t)
	ctx := h.signUp(t, "dev@example.com")
	p := testutil.SeedProject(t, ctx, h.db, "Launch")
	d := h.start(t)
	d.Enter()

	d.Press('l')
	d.Press('n')
	d.assertShows("New Task in In Progress")

	d.Type("Review PR")
	d.Key(tea.KeyCtrlP)
	d.CtrlS()

	tasks, err := repository.NewTasks(h.db).List(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "Review PR", tasks[0].Title)
	assert.Equal(t, models.StatusInProgress, tasks[0].Status)
	assert.Equal(t, models.PriorityHigh, tasks[0].Priority)
	d.assertShows("In Progress (1)", "Review PR")
}

func TestUnsavedNoteGuardsSwitching(t *testing.T) {
	h := newHarness(t)
	ctx := h.signUp(t, "dev@example.com")
	p := testutil.SeedProject(t, ctx, h.db, "Launch")
	testutil.SeedNote(t, ctx, h.db, p.ID, testutil.WithNoteTitle("Kickoff"))
	d := h.start(t)
	d.Enter()
	d.Press('2')

	d.Press('n')
	d.assertShows("Notes (2)", models.DefaultNoteTitle)

	notes := d.app.Workspace().Notes()
	d.Key(tea.KeyCtrlU)
	d.Type("Roadmap")
	d.Tab()
	d.Type("Q3 plan")
	assert.True(t, notes.Dirty())
	d.assertShows("● You have unsaved changes")

	d.Esc()
	d.Down()
	d.Enter()
	d.assertShows("You have unsaved changes. Discard them?")

	// declining keeps the edits
	d.Press('n')
	assert.True(t, notes.Dirty())
	d.assertShows("Roadmap", "Q3 plan")

	d.Enter()
	d.Press('y')
	assert.False(t, notes.Dirty())
	d.assertShows("Kickoff", "All changes saved")

	stored, err := repository.NewNotes(h.db).List(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, stored, 2)
	for _, n := range stored {
		assert.NotEqual(t, "Roadmap", n.Title)
	}
}

func TestSaveNote(t *testing.T) {
	h := newHarness(t)
	ctx := h.signUp(t, "dev@example.com")
	p := testutil.SeedProject(t, ctx, h.db, "Launch")
	note := testutil.SeedNote(t, ctx, h.db, p.ID, testutil.WithNoteTitle("Kickoff"))
	d := h.start(t)
	d.Enter()
	d.Press('2')

	d.Enter()
	d.Enter()
	d.Enter()
	d.Type("Agenda")
	d.CtrlS()

	stored, err := repository.NewNotes(h.db).List(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, note.ID, stored[0].ID)
	assert.Equal(t, "Agenda", stored[0].Content)
	assert.False(t, d.app.Workspace().Notes().Dirty())
	d.assertShows("Note saved")
}

func TestDeleteNote(t *testing.T) {
	h := newHarness(t)
	ctx := h.signUp(t, "dev@example.com")
	p := testutil.SeedProject(t, ctx, h.db, "Launch")
	testutil.SeedNote(t, ctx, h.db, p.ID, testutil.WithNoteTitle("Kickoff"))
	testutil.SeedNote(t, ctx, h.db, p.ID, testutil.WithNoteTitle("Retro"))
	notes := repository.NewNotes(h.db)
	stored, err := notes.List(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, stored, 2)
	open, other := stored[0], stored[1]

	d := h.start(t)
	d.Enter()
	d.Press('2')
	d.Enter()
	assert.NotContains(t, d.View(), "No note selected")

	d.Press('d')
	d.assertShows(`Delete "`+open.Title+`"?`, "Y - Yes", "N - No")

	// declining keeps the note
	d.Press('n')
	stored, err = notes.List(ctx, p.ID)
	require.NoError(t, err)
	assert.Len(t, stored, 2)
	d.assertShows("Notes (2)")

	// deleting another note leaves the editor alone
	d.Down()
	d.Press('d')
	d.assertShows(`Delete "` + other.Title + `"?`)
	d.Press('y')
	stored, err = notes.List(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, open.ID, stored[0].ID)
	d.assertShows("Notes (1)", open.Title)
	assert.NotContains(t, d.View(), "No note selected")

	// deleting the open note clears the editor
	d.Press('d')
	d.Press('y')
	stored, err = notes.List(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, stored)
	d.assertShows("Notes (0)", "No notes yet", "No note selected")
}

func TestDeleteProjectFromSettings(t *testing.T) {
	h := newHarness(t)
	ctx := h.signUp(t, "dev@example.com")
	p := testutil.SeedProject(t, ctx, h.db, "Launch")
	testutil.SeedTask(t, ctx, h.db, p.ID, "Write copy")
	d := h.start(t)
	d.Enter()
	d.Press('3')

	d.Press('d')
	d.assertShows(`Delete "Launch"?`, "All tasks and notes will be permanently deleted.")
	d.Press('y')

	assert.Equal(t, nav.State{Screen: nav.Dashboard}, d.State())
	assert.Nil(t, d.app.Workspace())
	_, err := repository.NewProjects(h.db).Get(ctx, p.ID)
	assert.ErrorIs(t, err, rowstore.ErrNotFound)
	d.assertShows("No projects yet")
}

func TestRenameProjectFromSettings(t *testing.T) {
	h := newHarness(t)
	ctx := h.signUp(t, "dev@example.com")
	p := testutil.SeedProject(t, ctx, h.db, "Launch")
	d := h.start(t)
	d.Enter()
	d.Press('3')

	d.Enter()
	d.Key(tea.KeyCtrlU)
	d.Type("Relaunch")
	d.CtrlS()

	got, err := repository.NewProjects(h.db).Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Relaunch", got.Title)
	d.assertShows("Project updated", "← esc  Relaunch")
}

func TestSignOutReturnsToLogin(t *testing.T) {
	h := newHarness(t)
	h.signUp(t, "dev@example.com")
	d := h.start(t)
	require.Equal(t, auth.StateAuthenticated, h.session.State())

	d.Key(tea.KeyCtrlO)

	assert.Equal(t, auth.StateUnauthenticated, h.session.State())
	d.assertShows("Sign in to ProjectHub")
}

func TestMissingProjectShowsNotFound(t *testing.T) {
	h := newHarness(t)
	h.signUp(t, "dev@example.com")
	d := h.start(t)

	d.Send(views.OpenProjectMsg{ID: "no-such-project"})
	assert.Equal(t, nav.Workspace, d.State().Screen)
	d.assertShows("Project not found")

	d.Esc()
	assert.Equal(t, nav.Dashboard, d.State().Screen)
}
