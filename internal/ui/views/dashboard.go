package views

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tgienger/projecthub/internal/models"
	"github.com/tgienger/projecthub/internal/repository"
	"github.com/tgienger/projecthub/internal/syncer"
	"github.com/tgienger/projecthub/internal/ui/keys"
	"github.com/tgienger/projecthub/internal/ui/styles"
)

type projectItem struct {
	project models.Project
}

func (i projectItem) Title() string { return i.project.Title }

func (i projectItem) Description() string {
	if i.project.Description == "" {
		return "No description"
	}
	return i.project.Description
}

func (i projectItem) FilterValue() string { return i.project.Title }

type projectDelegate struct {
	styles *styles.Styles
	width  int
}

func (d projectDelegate) Height() int                         { return 2 }
func (d projectDelegate) Spacing() int                        { return 1 }
func (d projectDelegate) Update(tea.Msg, *list.Model) tea.Cmd { return nil }

func (d projectDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	p, ok := item.(projectItem)
	if !ok {
		return
	}

	width := max(d.width-4, 20)
	created := "Created " + p.project.CreatedAt.Local().Format("Jan 2, 2006")

	titleStyle, descStyle := d.styles.ListItem, d.styles.ListItem.Foreground(styles.Current.ForegroundDim)
	if index == m.Index() {
		titleStyle = d.styles.ListSelected
		descStyle = d.styles.ListSelected.Foreground(styles.Current.ForegroundDim)
	}

	titleWidth := width - lipgloss.Width(created) - 3
	title := titleStyle.Width(width).Render(
		lipgloss.JoinHorizontal(lipgloss.Top,
			lipgloss.NewStyle().Width(titleWidth).Render(truncate(p.Title(), titleWidth)),
			"  ",
			created,
		))
	desc := descStyle.Width(width).Render(truncate(p.Description(), width-2))

	fmt.Fprintf(w, "%s\n%s", title, desc)
}

// DashboardView lists the user's projects with their totals.
type DashboardView struct {
	env      Env
	projects *syncer.Synchronizer[models.Project, models.ProjectInsert, models.ProjectUpdate]
	list     list.Model
	delegate *projectDelegate
	styles   *styles.Styles
	keys     keys.KeyMap

	width  int
	height int

	stats   models.Stats
	loaded  bool
	notice  notice
	confirm *confirmation

	creating bool
	newTitle textinput.Model
	newDesc  textinput.Model
	focusIdx int // 0=title, 1=desc, 2=create
}

type projectsLoadedMsg struct {
	projects []models.Project
	err      error
}

type statsLoadedMsg struct {
	stats models.Stats
	err   error
}

type projectCreatedMsg struct {
	err error
}

type projectRemovedMsg struct {
	id  string
	err error
}

func NewDashboardView(env Env) *DashboardView {
	s := styles.NewStyles()

	newTitle := textinput.New()
	newTitle.Placeholder = "Project title"
	newTitle.CharLimit = 100

	newDesc := textinput.New()
	newDesc.Placeholder = "Description (optional)"
	newDesc.CharLimit = 500

	delegate := &projectDelegate{styles: s, width: styles.MaxWidth}

	l := list.New([]list.Item{}, delegate, 0, 0)
	l.Title = "Your Projects"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(false)
	l.Styles.Title = s.Title

	return &DashboardView{
		env: env,
		projects: syncer.New[models.Project, models.ProjectInsert, models.ProjectUpdate](
			"projects", repository.NewProjects(env.Client), syncer.WithLogger(env.logger())),
		list:     l,
		delegate: delegate,
		styles:   s,
		keys:     keys.DefaultKeyMap(),
		newTitle: newTitle,
		newDesc:  newDesc,
	}
}

func (v *DashboardView) Init() tea.Cmd {
	return tea.Batch(v.loadProjects(), v.loadStats())
}

// Close drops any requests still in flight.
func (v *DashboardView) Close() {
	v.projects.Close()
}

func (v *DashboardView) loadProjects() tea.Cmd {
	ctx, userID := v.env.ctx(), v.env.userID()
	return func() tea.Msg {
		rows, err := v.projects.Load(ctx, userID)
		return projectsLoadedMsg{projects: rows, err: err}
	}
}

func (v *DashboardView) loadStats() tea.Cmd {
	ctx, userID := v.env.ctx(), v.env.userID()
	return func() tea.Msg {
		stats, err := repository.LoadStats(ctx, v.env.Client, userID)
		return statsLoadedMsg{stats: stats, err: err}
	}
}

// Refresh reloads projects and totals, e.g. after returning from a project.
func (v *DashboardView) Refresh() tea.Cmd {
	return tea.Batch(v.loadProjects(), v.loadStats())
}

func (v *DashboardView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		contentWidth := styles.ContentWidth(msg.Width)
		v.delegate.width = contentWidth
		v.list.SetSize(contentWidth-4, max(msg.Height-12, 6))
		return v, nil

	case projectsLoadedMsg:
		if msg.err != nil {
			if !ignorable(msg.err) {
				v.notice.fail("Loading projects failed", msg.err)
			}
			return v, nil
		}
		v.loaded = true
		return v, v.setItems(msg.projects)

	case statsLoadedMsg:
		if msg.err == nil {
			v.stats = msg.stats
		}
		return v, nil

	case projectCreatedMsg:
		if msg.err != nil {
			if !ignorable(msg.err) {
				v.notice.fail("Creating project failed", msg.err)
			}
			return v, nil
		}
		v.creating = false
		v.notice.info("Project created")
		return v, tea.Batch(v.setItems(v.projects.Rows()), v.loadStats())

	case projectRemovedMsg:
		if msg.err != nil {
			if !ignorable(msg.err) {
				v.notice.fail("Deleting project failed", msg.err)
			}
			return v, nil
		}
		v.notice.info("Project deleted")
		return v, tea.Batch(v.setItems(v.projects.Rows()), v.loadStats())

	case tea.KeyMsg:
		v.notice.clear()

		if v.confirm != nil {
			cmd, done := v.confirm.answer(msg, v.keys)
			if done {
				v.confirm = nil
			}
			return v, cmd
		}

		if v.creating {
			return v.updateCreating(msg)
		}

		if v.list.FilterState() == list.Filtering {
			break
		}

		switch {
		case key.Matches(msg, v.keys.Quit):
			return v, tea.Quit
		case key.Matches(msg, v.keys.SignOut):
			return v, func() tea.Msg { return SignOutMsg{} }
		case key.Matches(msg, v.keys.Refresh):
			return v, v.Refresh()
		case key.Matches(msg, v.keys.New):
			v.creating = true
			v.focusIdx = 0
			v.newTitle.Reset()
			v.newDesc.Reset()
			v.updateFocus()
			return v, textinput.Blink
		case key.Matches(msg, v.keys.Enter):
			if item, ok := v.list.SelectedItem().(projectItem); ok {
				id := item.project.ID
				return v, func() tea.Msg { return OpenProjectMsg{ID: id} }
			}
			return v, nil
		case key.Matches(msg, v.keys.Delete):
			if item, ok := v.list.SelectedItem().(projectItem); ok {
				v.confirm = &confirmation{
					title:  fmt.Sprintf("Delete %q?", item.project.Title),
					detail: "All tasks and notes will be permanently deleted.",
					yes:    func() tea.Cmd { return v.deleteProject(item.project.ID) },
				}
			}
			return v, nil
		}
	}

	var cmd tea.Cmd
	v.list, cmd = v.list.Update(msg)
	return v, cmd
}

func (v *DashboardView) setItems(projects []models.Project) tea.Cmd {
	items := make([]list.Item, len(projects))
	for i, p := range projects {
		items[i] = projectItem{project: p}
	}
	return v.list.SetItems(items)
}

func (v *DashboardView) deleteProject(id string) tea.Cmd {
	ctx := v.env.ctx()
	return func() tea.Msg {
		return projectRemovedMsg{id: id, err: v.projects.Destroy(ctx, id)}
	}
}

func (v *DashboardView) updateCreating(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		v.creating = false
		return v, nil

	case key.Matches(msg, v.keys.Save):
		return v, v.create()

	case key.Matches(msg, v.keys.BackTab):
		v.focusIdx = (v.focusIdx + 2) % 3
		v.updateFocus()
		return v, nil

	case key.Matches(msg, v.keys.Tab):
		v.focusIdx = (v.focusIdx + 1) % 3
		v.updateFocus()
		return v, nil

	case key.Matches(msg, v.keys.Enter):
		if v.focusIdx < 2 {
			v.focusIdx++
			v.updateFocus()
			return v, nil
		}
		return v, v.create()
	}

	var cmd tea.Cmd
	switch v.focusIdx {
	case 0:
		v.newTitle, cmd = v.newTitle.Update(msg)
	case 1:
		v.newDesc, cmd = v.newDesc.Update(msg)
	}
	return v, cmd
}

func (v *DashboardView) updateFocus() {
	v.newTitle.Blur()
	v.newDesc.Blur()
	switch v.focusIdx {
	case 0:
		v.newTitle.Focus()
	case 1:
		v.newDesc.Focus()
	}
}

func (v *DashboardView) create() tea.Cmd {
	title := strings.TrimSpace(v.newTitle.Value())
	if title == "" {
		v.notice.warn("A title is required")
		return nil
	}
	in := models.ProjectInsert{Title: title, Description: v.newDesc.Value()}
	ctx := v.env.ctx()
	return func() tea.Msg {
		_, err := v.projects.Create(ctx, in)
		return projectCreatedMsg{err: err}
	}
}

// Capturing reports whether keys go to a text input.
func (v *DashboardView) Capturing() bool {
	return v.creating || v.confirm != nil || v.list.FilterState() == list.Filtering
}

func (v *DashboardView) View() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	var body string
	switch {
	case v.confirm != nil:
		body = lipgloss.Place(contentWidth, max(v.height-6, 10), lipgloss.Center, lipgloss.Center, v.confirm.render(s))
	case v.creating:
		body = v.renderCreateForm()
	case !v.loaded:
		body = s.TitleMuted.Render("Loading projects...")
	case len(v.list.Items()) == 0:
		body = v.renderEmpty()
	default:
		body = v.list.View()
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		v.renderHeader(),
		v.renderStats(),
		"",
		body,
		v.notice.render(s),
		s.Help(v.keys.Enter, v.keys.New, v.keys.Delete, v.keys.Refresh, v.keys.SignOut, v.keys.Quit),
	)
	return styles.CenterView(content, v.width, v.height)
}

func (v *DashboardView) renderHeader() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)
	u, _ := v.env.Session.User()

	left := s.Title.Render("ProjectHub")
	right := s.Muted.Render(u.Email + "  ctrl+o sign out")
	gap := max(contentWidth-lipgloss.Width(left)-lipgloss.Width(right)-2, 1)
	return s.Header.Render(left + strings.Repeat(" ", gap) + right)
}

func (v *DashboardView) renderStats() string {
	s := v.styles
	stat := func(label string, n int) string {
		return s.Stat.Render(s.Muted.Render(label) + "\n" + s.StatValue.Render(fmt.Sprint(n)))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top,
		stat("Total Projects", v.stats.Projects),
		stat("Active Tasks", v.stats.ActiveTasks),
		stat("Notes Created", v.stats.Notes),
	)
}

func (v *DashboardView) renderEmpty() string {
	s := v.styles
	return lipgloss.JoinVertical(lipgloss.Left,
		s.Title.Render("No projects yet"),
		"",
		s.TitleMuted.Render("Press 'n' to create your first project"),
	)
}

func (v *DashboardView) renderCreateForm() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	titleStyle, descStyle, btnStyle := s.Input, s.Input, s.Button
	switch v.focusIdx {
	case 0:
		titleStyle = s.InputFocused
	case 1:
		descStyle = s.InputFocused
	case 2:
		btnStyle = s.ButtonFocused
	}

	inputWidth := clamp(contentWidth-6, 20, 60)

	return lipgloss.JoinVertical(lipgloss.Left,
		s.Title.Render("New Project"),
		"",
		s.Label.Render("Title"),
		titleStyle.Width(inputWidth).Render(v.newTitle.View()),
		s.Label.Render("Description"),
		descStyle.Width(inputWidth).Render(v.newDesc.View()),
		"",
		btnStyle.Render(" Create "),
		"",
		s.TitleMuted.Render("Tab: next • Ctrl+S: save • Esc: cancel"),
	)
}
