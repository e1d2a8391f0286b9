package nav

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitialStateIsDashboard(t *testing.T) {
	n := New()
	assert.Equal(t, State{Screen: Dashboard}, n.State())
	assert.False(t, n.InWorkspace())
	assert.Empty(t, n.ProjectID())
}

func TestOpenProjectStartsOnBoard(t *testing.T) {
	n := New()
	require.NoError(t, n.OpenProject("p1"))
	assert.Equal(t, State{Screen: Workspace, ProjectID: "p1", Tab: TabBoard}, n.State())

	require.NoError(t, n.SelectTab(TabNotes))
	require.NoError(t, n.OpenProject("p2"))
	assert.Equal(t, TabBoard, n.State().Tab)
	assert.Equal(t, "p2", n.ProjectID())
}

func TestOpenProjectRequiresID(t *testing.T) {
	n := New()
	assert.ErrorIs(t, n.OpenProject(""), ErrNoProject)
	assert.Equal(t, Dashboard, n.State().Screen)
}

func TestBackClearsProject(t *testing.T) {
	n := New()
	require.NoError(t, n.OpenProject("p1"))
	require.NoError(t, n.SelectTab(TabSettings))
	n.Back()
	assert.Equal(t, State{Screen: Dashboard}, n.State())

	n.Back()
	assert.Equal(t, State{Screen: Dashboard}, n.State())
}

func TestSelectTab(t *testing.T) {
	n := New()
	assert.ErrorIs(t, n.SelectTab(TabNotes), ErrNotInWorkspace)

	require.NoError(t, n.OpenProject("p1"))
	for _, tab := range Tabs {
		require.NoError(t, n.SelectTab(tab))
		assert.Equal(t, tab, n.State().Tab)
		assert.Equal(t, "p1", n.ProjectID())
	}

	assert.ErrorIs(t, n.SelectTab(Tab(7)), ErrUnknownTab)
	assert.Equal(t, TabSettings, n.State().Tab)
}

func TestProjectDeleted(t *testing.T) {
	n := New()
	require.NoError(t, n.OpenProject("p1"))

	assert.False(t, n.ProjectDeleted("p2"))
	assert.True(t, n.InWorkspace())

	assert.True(t, n.ProjectDeleted("p1"))
	assert.Equal(t, State{Screen: Dashboard}, n.State())
	assert.False(t, n.ProjectDeleted("p1"))
}

func TestTabCycling(t *testing.T) {
	assert.Equal(t, TabNotes, TabBoard.Next())
	assert.Equal(t, TabBoard, TabSettings.Next())
	assert.Equal(t, TabSettings, TabBoard.Prev())
	assert.Equal(t, "Notes", TabNotes.String())
}
