// Package nav tracks where the user is: the dashboard, or inside one
// project's workspace on one of its tabs.
package nav

import (
	"errors"
	"fmt"
)

var (
	ErrNoProject      = errors.New("no project selected")
	ErrNotInWorkspace = errors.New("not in a project workspace")
	ErrUnknownTab     = errors.New("unknown workspace tab")
)

// Tab is a workspace section
type Tab int

const (
	TabBoard Tab = iota
	TabNotes
	TabSettings
)

// Tabs lists the workspace tabs in display order.
var Tabs = []Tab{TabBoard, TabNotes, TabSettings}

func (t Tab) Valid() bool {
	return t >= TabBoard && t <= TabSettings
}

func (t Tab) String() string {
	switch t {
	case TabBoard:
		return "Board"
	case TabNotes:
		return "Notes"
	case TabSettings:
		return "Settings"
	}
	return fmt.Sprintf("Tab(%d)", int(t))
}

// Next and Prev cycle through the tabs.
func (t Tab) Next() Tab {
	return Tabs[(int(t)+1)%len(Tabs)]
}

func (t Tab) Prev() Tab {
	return Tabs[(int(t)+len(Tabs)-1)%len(Tabs)]
}

// Screen is the top-level state
type Screen int

const (
	Dashboard Screen = iota
	Workspace
)

func (s Screen) String() string {
	if s == Workspace {
		return "Workspace"
	}
	return "Dashboard"
}

// State is a navigation snapshot. ProjectID and Tab are meaningful only on
// the Workspace screen.
type State struct {
	Screen    Screen
	ProjectID string
	Tab       Tab
}

// Navigator holds the current State. The zero value is on the Dashboard.
// Failed transitions leave the state unchanged.
type Navigator struct {
	state State
}

func New() *Navigator {
	return &Navigator{}
}

func (n *Navigator) State() State {
	return n.state
}

func (n *Navigator) InWorkspace() bool {
	return n.state.Screen == Workspace
}

// ProjectID returns the open project, or "" on the dashboard.
func (n *Navigator) ProjectID() string {
	return n.state.ProjectID
}

// OpenProject enters the project's workspace on the Board tab.
func (n *Navigator) OpenProject(id string) error {
	if id == "" {
		return ErrNoProject
	}
	n.state = State{Screen: Workspace, ProjectID: id, Tab: TabBoard}
	return nil
}

// Back returns to the dashboard and forgets the project.
func (n *Navigator) Back() {
	n.state = State{Screen: Dashboard}
}

// SelectTab switches tabs within the workspace.
func (n *Navigator) SelectTab(t Tab) error {
	if n.state.Screen != Workspace {
		return ErrNotInWorkspace
	}
	if !t.Valid() {
		return fmt.Errorf("%w: %d", ErrUnknownTab, int(t))
	}
	n.state.Tab = t
	return nil
}

// ProjectDeleted reacts to a project being deleted. If it is the open one
// the navigator returns to the dashboard; it reports whether it did.
func (n *Navigator) ProjectDeleted(id string) bool {
	if n.state.Screen == Workspace && n.state.ProjectID == id {
		n.Back()
		return true
	}
	return false
}
