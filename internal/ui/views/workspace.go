package views

import (
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tgienger/projecthub/internal/models"
	"github.com/tgienger/projecthub/internal/nav"
	"github.com/tgienger/projecthub/internal/repository"
	"github.com/tgienger/projecthub/internal/rowstore"
	"github.com/tgienger/projecthub/internal/ui/keys"
	"github.com/tgienger/projecthub/internal/ui/styles"
)

// WorkspaceView is one project: a header, the tab bar and the active tab.
// The navigator decides which tab is shown.
type WorkspaceView struct {
	env       Env
	nav       *nav.Navigator
	projectID string
	styles    *styles.Styles
	keys      keys.KeyMap

	width  int
	height int

	project  models.Project
	loaded   bool
	notFound bool
	notice   notice

	board    *BoardView
	notes    *NotesView
	settings *SettingsView
}

type projectLoadedMsg struct {
	project models.Project
	err     error
}

// NewWorkspaceView opens the navigator's current project.
func NewWorkspaceView(env Env, navigator *nav.Navigator) *WorkspaceView {
	id := navigator.ProjectID()
	return &WorkspaceView{
		env:       env,
		nav:       navigator,
		projectID: id,
		styles:    styles.NewStyles(),
		keys:      keys.DefaultKeyMap(),
		board:     NewBoardView(env, id),
		notes:     NewNotesView(env, id),
	}
}

func (v *WorkspaceView) Init() tea.Cmd {
	ctx, id := v.env.ctx(), v.projectID
	projects := repository.NewProjects(v.env.Client)
	load := func() tea.Msg {
		p, err := projects.Get(ctx, id)
		return projectLoadedMsg{project: p, err: err}
	}
	return tea.Batch(load, v.board.Init(), v.notes.Init())
}

// Close disposes of the tab synchronizers; late results are dropped.
func (v *WorkspaceView) Close() {
	v.board.Close()
	v.notes.Close()
}

func (v *WorkspaceView) ProjectID() string {
	return v.projectID
}

// Board, Notes and Settings expose the tabs to tests.
func (v *WorkspaceView) Board() *BoardView       { return v.board }
func (v *WorkspaceView) Notes() *NotesView       { return v.notes }
func (v *WorkspaceView) Settings() *SettingsView { return v.settings }

func (v *WorkspaceView) active() tea.Model {
	switch v.nav.State().Tab {
	case nav.TabNotes:
		return v.notes
	case nav.TabSettings:
		if v.settings != nil {
			return v.settings
		}
	}
	return v.board
}

// Capturing reports whether the active tab is consuming keystrokes.
func (v *WorkspaceView) Capturing() bool {
	if c, ok := v.active().(capturer); ok {
		return c.Capturing()
	}
	return false
}

func (v *WorkspaceView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		inner := tea.WindowSizeMsg{Width: msg.Width, Height: max(msg.Height-6, 10)}
		v.board.Update(inner)
		v.notes.Update(inner)
		if v.settings != nil {
			v.settings.Update(inner)
		}
		return v, nil

	case projectLoadedMsg:
		if msg.err != nil {
			if errors.Is(msg.err, rowstore.ErrNotFound) {
				v.notFound = true
			} else {
				v.notice.fail("Loading project failed", msg.err)
			}
			return v, nil
		}
		v.project = msg.project
		v.loaded = true
		v.settings = NewSettingsView(v.env, msg.project)
		v.settings.Update(tea.WindowSizeMsg{Width: v.width, Height: max(v.height-6, 10)})
		return v, nil

	case ProjectUpdatedMsg:
		if msg.Project.ID == v.projectID {
			v.project = msg.Project
		}
		if v.settings != nil {
			v.settings.Update(msg)
		}
		return v, nil

	case tea.KeyMsg:
		v.notice.clear()
		if !v.loaded {
			switch {
			case key.Matches(msg, v.keys.Back):
				return v, func() tea.Msg { return BackMsg{} }
			case key.Matches(msg, v.keys.Quit):
				return v, tea.Quit
			}
			return v, nil
		}
		if !v.Capturing() {
			if cmd, ok := v.handleKey(msg); ok {
				return v, cmd
			}
		}
		_, cmd := v.active().Update(msg)
		return v, cmd
	}

	// data results go to every tab; each ignores what is not its own
	var cmds []tea.Cmd
	_, cmd := v.board.Update(msg)
	cmds = append(cmds, cmd)
	_, cmd = v.notes.Update(msg)
	cmds = append(cmds, cmd)
	if v.settings != nil {
		_, cmd = v.settings.Update(msg)
		cmds = append(cmds, cmd)
	}
	return v, tea.Batch(cmds...)
}

// handleKey applies workspace shortcuts. ok is false when the key belongs
// to the active tab.
func (v *WorkspaceView) handleKey(msg tea.KeyMsg) (cmd tea.Cmd, ok bool) {
	tab := v.nav.State().Tab
	switch {
	case key.Matches(msg, v.keys.Back):
		return func() tea.Msg { return BackMsg{} }, true
	case key.Matches(msg, v.keys.Quit):
		return tea.Quit, true
	case key.Matches(msg, v.keys.BoardTab):
		tab = nav.TabBoard
	case key.Matches(msg, v.keys.NotesTab):
		tab = nav.TabNotes
	case key.Matches(msg, v.keys.SettingsTab):
		tab = nav.TabSettings
	case key.Matches(msg, v.keys.NextTab):
		tab = tab.Next()
	case key.Matches(msg, v.keys.PrevTab):
		tab = tab.Prev()
	default:
		return nil, false
	}
	if err := v.nav.SelectTab(tab); err != nil {
		v.env.logger().Warn("selecting tab failed", "tab", tab, "error", err)
	}
	return nil, true
}

func (v *WorkspaceView) View() string {
	s := v.styles

	var content string
	switch {
	case v.notFound:
		content = lipgloss.JoinVertical(lipgloss.Left,
			s.Title.Render("Project not found"),
			"",
			s.Help(v.keys.Back),
		)
	case !v.loaded:
		content = lipgloss.JoinVertical(lipgloss.Left,
			s.TitleMuted.Render("Loading project..."),
			v.notice.render(s),
		)
	default:
		content = lipgloss.JoinVertical(lipgloss.Left,
			v.renderHeader(),
			v.renderTabs(),
			"",
			v.active().View(),
			v.notice.render(s),
		)
	}
	return styles.CenterView(content, v.width, v.height)
}

func (v *WorkspaceView) renderHeader() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	back := s.Muted.Render("← esc  ")
	title := s.Title.Render(v.project.Title)
	lines := []string{back + title}
	if v.project.Description != "" {
		lines = append(lines, s.Muted.Render(truncate(v.project.Description, contentWidth-4)))
	}
	return s.Header.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (v *WorkspaceView) renderTabs() string {
	s := v.styles
	current := v.nav.State().Tab
	parts := make([]string, 0, len(nav.Tabs))
	for i, t := range nav.Tabs {
		label := string(rune('1'+i)) + " " + t.String()
		if t == current {
			parts = append(parts, s.TabActive.Render(label))
		} else {
			parts = append(parts, s.Tab.Render(label))
		}
	}
	return strings.Join(parts, " ")
}
