package repository_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tgienger/projecthub/internal/models"
	"github.com/tgienger/projecthub/internal/repository"
	"github.com/tgienger/projecthub/internal/rowstore"
	"github.com/tgienger/projecthub/internal/testutil"
)

func TestProjectsListNewestFirst(t *testing.T) {
	database := testutil.NewTestDB(t)
	ctx, userID := testutil.NewTestUser(t, database, "a@example.com")
	projects := repository.NewProjects(database)

	_, err := projects.Create(ctx, userID, models.ProjectInsert{Title: "  first  "})
	require.NoError(t, err)
	second, err := projects.Create(ctx, userID, models.ProjectInsert{Title: "second", Description: "desc"})
	require.NoError(t, err)

	list, err := projects.List(ctx, userID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "second", list[0].Title)
	assert.Equal(t, "first", list[1].Title)
	assert.Equal(t, userID, list[0].UserID)

	got, err := projects.Get(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, "desc", got.Description)

	_, err = projects.Get(ctx, "missing")
	assert.ErrorIs(t, err, rowstore.ErrNotFound)
}

func TestProjectUpdate(t *testing.T) {
	database := testutil.NewTestDB(t)
	ctx, userID := testutil.NewTestUser(t, database, "a@example.com")
	projects := repository.NewProjects(database)
	p, err := projects.Create(ctx, userID, models.ProjectInsert{Title: "Launch"})
	require.NoError(t, err)

	title, desc := "Relaunch", "second try"
	require.NoError(t, projects.Update(ctx, p.ID, models.ProjectUpdate{Title: &title, Description: &desc}))

	got, err := projects.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Relaunch", got.Title)
	assert.Equal(t, "second try", got.Description)
	assert.Equal(t, p.CreatedAt, got.CreatedAt)

	empty := ""
	err = projects.Update(ctx, p.ID, models.ProjectUpdate{Title: &empty})
	assert.ErrorIs(t, err, rowstore.ErrQuery)

	err = projects.Update(ctx, p.ID, models.ProjectUpdate{})
	assert.ErrorIs(t, err, rowstore.ErrQuery)
}

func TestTasksCreateInColumn(t *testing.T) {
	database := testutil.NewTestDB(t)
	ctx, _ := testutil.NewTestUser(t, database, "a@example.com")
	p := testutil.SeedProject(t, ctx, database, "Launch")
	tasks := repository.NewTasks(database)

	deadline, err := models.ParseDate("2025-04-01")
	require.NoError(t, err)
	task, err := tasks.Create(ctx, p.ID, models.TaskDraft{
		Title:    "Ship it",
		Priority: models.PriorityHigh,
		Deadline: &deadline,
		Status:   models.StatusInProgress,
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusInProgress, task.Status)
	assert.Equal(t, models.PriorityHigh, task.Priority)
	require.NotNil(t, task.Deadline)
	assert.Equal(t, "2025-04-01", task.Deadline.String())

	plain, err := tasks.Create(ctx, p.ID, models.TaskDraft{Title: "Plain"})
	require.NoError(t, err)
	assert.Equal(t, models.StatusTodo, plain.Status)
	assert.Equal(t, models.PriorityMedium, plain.Priority)
	assert.Greater(t, plain.Position, task.Position)
}

func TestTasksMoveAndClearDeadline(t *testing.T) {
	database := testutil.NewTestDB(t)
	ctx, _ := testutil.NewTestUser(t, database, "a@example.com")
	p := testutil.SeedProject(t, ctx, database, "Launch")
	d, _ := models.ParseDate("2025-05-05")
	seeded := testutil.SeedTask(t, ctx, database, p.ID, "Draft spec", testutil.WithDeadline(d))
	tasks := repository.NewTasks(database)

	require.NoError(t, tasks.Move(ctx, seeded.ID, models.StatusDone))
	require.NoError(t, tasks.Update(ctx, seeded.ID, models.TaskUpdate{ClearDeadline: true}))

	list, err := tasks.List(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, models.StatusDone, list[0].Status)
	assert.Nil(t, list[0].Deadline)
}

func TestNotesOrderedByLastEdit(t *testing.T) {
	database := testutil.NewTestDB(t)
	ctx, _ := testutil.NewTestUser(t, database, "a@example.com")
	p := testutil.SeedProject(t, ctx, database, "Launch")
	notes := repository.NewNotes(database)

	older, err := notes.Create(ctx, p.ID, models.NoteInsert{Title: "older"})
	require.NoError(t, err)
	_, err = notes.Create(ctx, p.ID, models.NoteInsert{Title: "newer"})
	require.NoError(t, err)

	list, err := notes.List(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "newer", list[0].Title)

	content := "edited"
	require.NoError(t, notes.Update(ctx, older.ID, models.NoteUpdate{Content: &content}))

	list, err = notes.List(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "older", list[0].Title)
	assert.Equal(t, "edited", list[0].Content)
	assert.True(t, list[0].UpdatedAt.After(list[1].UpdatedAt))
}

func TestLoadStats(t *testing.T) {
	database := testutil.NewTestDB(t)
	ctx, userID := testutil.NewTestUser(t, database, "a@example.com")
	other, _ := testutil.NewTestUser(t, database, "b@example.com")

	p := testutil.SeedProject(t, ctx, database, "Launch")
	q := testutil.SeedProject(t, ctx, database, "Docs")
	testutil.SeedTask(t, ctx, database, p.ID, "a")
	testutil.SeedTask(t, ctx, database, p.ID, "b", testutil.WithStatus(models.StatusInProgress))
	testutil.SeedTask(t, ctx, database, q.ID, "c", testutil.WithStatus(models.StatusDone))
	testutil.SeedNote(t, ctx, database, q.ID)

	foreign := testutil.SeedProject(t, other, database, "Not mine")
	testutil.SeedTask(t, other, database, foreign.ID, "d")

	stats, err := repository.LoadStats(ctx, database, userID)
	require.NoError(t, err)
	assert.Equal(t, models.Stats{Projects: 2, ActiveTasks: 2, Notes: 1}, stats)
}

func TestExport(t *testing.T) {
	database := testutil.NewTestDB(t)
	ctx, _ := testutil.NewTestUser(t, database, "a@example.com")
	p := testutil.SeedProject(t, ctx, database, "Launch", testutil.WithDescription("big day"))
	d, _ := models.ParseDate("2025-06-01")
	testutil.SeedTask(t, ctx, database, p.ID, "Draft spec", testutil.WithDeadline(d))
	testutil.SeedNote(t, ctx, database, p.ID, testutil.WithContent("remember"))

	out, err := repository.Export(ctx, database, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "big day", out.Project.Description)
	require.Len(t, out.Tasks, 1)
	assert.Equal(t, "2025-06-01", out.Tasks[0].Deadline)
	assert.Equal(t, "todo", out.Tasks[0].Status)
	require.Len(t, out.Notes, 1)
	assert.Equal(t, "remember", out.Notes[0].Content)

	_, err = repository.Export(ctx, database, "missing")
	assert.ErrorIs(t, err, rowstore.ErrNotFound)
}
