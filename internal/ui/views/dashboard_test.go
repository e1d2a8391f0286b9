package views

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tgienger/projecthub/internal/teatest"
	"github.com/tgienger/projecthub/internal/testutil"
)

func TestDashboardKeepsFormOpenWhenCreateFails(t *testing.T) {
	env, database, _ := newTestEnv(t)
	env.Client = failingInserts{Client: database}

	dash := NewDashboardView(env)
	d := teatest.New(t, dash, teatest.WithSize(120, 40))
	d.Start()

	d.Press('n')
	d.Type("Launch")
	d.CtrlS()

	assert.True(t, dash.Capturing())
	view := d.View()
	assert.Contains(t, view, "Creating project failed")
	assert.Contains(t, view, "Launch")
}

func TestDashboardDeleteProject(t *testing.T) {
	env, database, ctx := newTestEnv(t)
	p := testutil.SeedProject(t, ctx, database, "Launch")
	testutil.SeedTask(t, ctx, database, p.ID, "Write copy")
	testutil.SeedProject(t, ctx, database, "Hiring")

	dash := NewDashboardView(env)
	d := teatest.New(t, dash, teatest.WithSize(120, 40))
	d.Start()
	require.Len(t, dash.projects.Rows(), 2)
	assert.Equal(t, 2, dash.stats.Projects)
	assert.Equal(t, 1, dash.stats.ActiveTasks)

	// the newest project is listed first
	d.Press('d')
	assert.Contains(t, d.View(), `Delete "Hiring"?`)
	d.Press('n')
	assert.Len(t, dash.projects.Rows(), 2)

	d.Press('j')
	d.Press('d')
	assert.Contains(t, d.View(), `Delete "Launch"?`)
	d.Press('y')

	rows := dash.projects.Rows()
	require.Len(t, rows, 1)
	assert.Equal(t, "Hiring", rows[0].Title)
	assert.Equal(t, 1, dash.stats.Projects)
	assert.Equal(t, 0, dash.stats.ActiveTasks)
	assert.Contains(t, d.View(), "Project deleted")
}
