// Package ui is the terminal front end. App gates everything on the auth
// session and switches between the dashboard and a project workspace as the
// navigator says.
package ui

import (
	"context"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/tgienger/projecthub/internal/auth"
	"github.com/tgienger/projecthub/internal/nav"
	"github.com/tgienger/projecthub/internal/rowstore"
	"github.com/tgienger/projecthub/internal/ui/styles"
	"github.com/tgienger/projecthub/internal/ui/views"
)

type App struct {
	env     views.Env
	session *auth.Session
	nav     *nav.Navigator
	logger  *slog.Logger

	login     *views.LoginView
	dashboard *views.DashboardView
	workspace *views.WorkspaceView

	width  int
	height int
}

type sessionRestoredMsg struct {
	err error
}

type signedOutMsg struct {
	err error
}

// NewApp creates the application. The session starts Loading and is restored
// by Init.
func NewApp(client rowstore.Client, session *auth.Session, logger *slog.Logger) *App {
	if logger == nil {
		logger = slog.Default()
	}
	return &App{
		env:     views.Env{Client: client, Session: session, Logger: logger},
		session: session,
		nav:     nav.New(),
		logger:  logger,
	}
}

// Navigator exposes the navigation state.
func (a *App) Navigator() *nav.Navigator { return a.nav }

func (a *App) Workspace() *views.WorkspaceView { return a.workspace }

func (a *App) Init() tea.Cmd {
	session := a.session
	return func() tea.Msg {
		return sessionRestoredMsg{err: session.Restore(context.Background())}
	}
}

func (a *App) resize() tea.Cmd {
	w, h := a.width, a.height
	return func() tea.Msg {
		return tea.WindowSizeMsg{Width: w, Height: h}
	}
}

func (a *App) showLogin() tea.Cmd {
	a.closeViews()
	a.nav.Back()
	a.login = views.NewLoginView(a.env)
	return tea.Batch(a.login.Init(), a.resize())
}

func (a *App) showDashboard() tea.Cmd {
	a.login = nil
	a.dashboard = views.NewDashboardView(a.env)
	return tea.Batch(a.dashboard.Init(), a.resize())
}

func (a *App) openProject(id string) tea.Cmd {
	if err := a.nav.OpenProject(id); err != nil {
		a.logger.Warn("opening project failed", "project_id", id, "error", err)
		return nil
	}
	if a.workspace != nil {
		a.workspace.Close()
	}
	a.workspace = views.NewWorkspaceView(a.env, a.nav)
	return tea.Batch(a.workspace.Init(), a.resize())
}

// leaveWorkspace returns to a refreshed dashboard.
func (a *App) leaveWorkspace() tea.Cmd {
	if a.workspace != nil {
		a.workspace.Close()
		a.workspace = nil
	}
	if a.dashboard == nil {
		return nil
	}
	return tea.Batch(a.dashboard.Refresh(), a.resize())
}

func (a *App) closeViews() {
	if a.workspace != nil {
		a.workspace.Close()
		a.workspace = nil
	}
	if a.dashboard != nil {
		a.dashboard.Close()
		a.dashboard = nil
	}
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		var cmds []tea.Cmd
		for _, m := range a.live() {
			_, cmd := m.Update(msg)
			cmds = append(cmds, cmd)
		}
		return a, tea.Batch(cmds...)

	case sessionRestoredMsg:
		if msg.err != nil {
			a.logger.Warn("session restore failed", "error", msg.err)
		}
		if a.session.State() == auth.StateAuthenticated {
			return a, a.showDashboard()
		}
		return a, a.showLogin()

	case views.SignedInMsg:
		return a, a.showDashboard()

	case views.SignOutMsg:
		session := a.session
		return a, func() tea.Msg {
			return signedOutMsg{err: session.SignOut(context.Background())}
		}

	case signedOutMsg:
		if msg.err != nil {
			a.logger.Warn("sign out failed", "error", msg.err)
		}
		return a, a.showLogin()

	case views.OpenProjectMsg:
		return a, a.openProject(msg.ID)

	case views.BackMsg:
		a.nav.Back()
		return a, a.leaveWorkspace()

	case views.ProjectDeletedMsg:
		if a.nav.ProjectDeleted(msg.ID) {
			return a, a.leaveWorkspace()
		}
		if a.dashboard != nil {
			return a, a.dashboard.Refresh()
		}
		return a, nil

	case tea.KeyMsg:
		if active := a.active(); active != nil {
			_, cmd := active.Update(msg)
			return a, cmd
		}
		if msg.Type == tea.KeyCtrlC {
			return a, tea.Quit
		}
		return a, nil
	}

	var cmds []tea.Cmd
	for _, m := range a.live() {
		_, cmd := m.Update(msg)
		cmds = append(cmds, cmd)
	}
	return a, tea.Batch(cmds...)
}

// active is the view receiving keys.
func (a *App) active() tea.Model {
	switch {
	case a.login != nil:
		return a.login
	case a.nav.InWorkspace() && a.workspace != nil:
		return a.workspace
	case a.dashboard != nil:
		return a.dashboard
	}
	return nil
}

// live lists every view that should see non-key messages.
func (a *App) live() []tea.Model {
	var out []tea.Model
	if a.login != nil {
		out = append(out, a.login)
	}
	if a.dashboard != nil {
		out = append(out, a.dashboard)
	}
	if a.workspace != nil {
		out = append(out, a.workspace)
	}
	return out
}

func (a *App) View() string {
	if active := a.active(); active != nil {
		return active.View()
	}
	s := styles.NewStyles()
	return styles.CenterView(s.TitleMuted.Render("Loading..."), a.width, a.height)
}
