package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tgienger/projecthub/internal/models"
	"github.com/tgienger/projecthub/internal/repository"
	"github.com/tgienger/projecthub/internal/syncer"
	"github.com/tgienger/projecthub/internal/ui/keys"
	"github.com/tgienger/projecthub/internal/ui/styles"
)

// cardHeight is the number of lines one task card takes, margin included.
const cardHeight = 4

// BoardView is the kanban board of one project: a column per status.
type BoardView struct {
	env       Env
	projectID string
	tasks     *syncer.Synchronizer[models.Task, models.TaskDraft, models.TaskUpdate]
	styles    *styles.Styles
	keys      keys.KeyMap

	width  int
	height int

	loaded  bool
	col     int
	cursors [3]int
	// follow is a task the cursor should land on, in whichever column it
	// ends up, once the pending change succeeds
	follow  string
	form    *taskForm
	confirm *confirmation
	notice  notice
}

type tasksLoadedMsg struct {
	projectID string
	err       error
}

type taskChangedMsg struct {
	projectID string
	what      string
	err       error
}

func NewBoardView(env Env, projectID string) *BoardView {
	return &BoardView{
		env:       env,
		projectID: projectID,
		tasks: syncer.New[models.Task, models.TaskDraft, models.TaskUpdate](
			"tasks", repository.NewTasks(env.Client), syncer.WithLogger(env.logger())),
		styles: styles.NewStyles(),
		keys:   keys.DefaultKeyMap(),
	}
}

func (v *BoardView) Init() tea.Cmd {
	ctx, id := v.env.ctx(), v.projectID
	return func() tea.Msg {
		_, err := v.tasks.Load(ctx, id)
		return tasksLoadedMsg{projectID: id, err: err}
	}
}

func (v *BoardView) Close() {
	v.tasks.Close()
}

// column returns the tasks of status s in board order.
func (v *BoardView) column(s models.Status) []models.Task {
	var out []models.Task
	for _, t := range v.tasks.Rows() {
		if t.Status == s {
			out = append(out, t)
		}
	}
	return out
}

func (v *BoardView) selected() (models.Task, bool) {
	col := v.column(models.Statuses[v.col])
	if len(col) == 0 {
		return models.Task{}, false
	}
	return col[clamp(v.cursors[v.col], 0, len(col)-1)], true
}

func (v *BoardView) clampCursors() {
	for i, s := range models.Statuses {
		v.cursors[i] = clamp(v.cursors[i], 0, max(len(v.column(s))-1, 0))
	}
}

func (v *BoardView) followTask() {
	if v.follow == "" {
		return
	}
	for c, status := range models.Statuses {
		for i, t := range v.column(status) {
			if t.ID == v.follow {
				v.col = c
				v.cursors[c] = i
			}
		}
	}
	v.follow = ""
}

// Capturing reports whether keys go to a form or dialog.
func (v *BoardView) Capturing() bool {
	return v.form != nil || v.confirm != nil
}

func (v *BoardView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		if v.form != nil {
			v.form.setWidth(clamp(styles.ContentWidth(v.width)-10, 20, 56))
		}
		return v, nil

	case tasksLoadedMsg:
		if msg.projectID != v.projectID {
			return v, nil
		}
		if msg.err != nil {
			if !ignorable(msg.err) {
				v.notice.fail("Loading tasks failed", msg.err)
			}
			return v, nil
		}
		v.loaded = true
		v.clampCursors()
		return v, nil

	case taskChangedMsg:
		if msg.projectID != v.projectID {
			return v, nil
		}
		if msg.err != nil {
			v.follow = ""
			if !ignorable(msg.err) {
				v.notice.fail(msg.what+" failed", msg.err)
			}
			return v, nil
		}
		if msg.what == "Saving task" {
			v.form = nil
		}
		v.followTask()
		v.clampCursors()
		return v, nil

	case tea.KeyMsg:
		v.notice.clear()

		if v.confirm != nil {
			cmd, done := v.confirm.answer(msg, v.keys)
			if done {
				v.confirm = nil
			}
			return v, cmd
		}

		if v.form != nil {
			return v.updateForm(msg)
		}

		return v.updateNormal(msg)
	}

	return v, nil
}

func (v *BoardView) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.MoveLeft):
		if t, ok := v.selected(); ok {
			if to, ok := t.Status.Left(); ok {
				v.follow = t.ID
				return v, v.move(t, to)
			}
		}
		return v, nil

	case key.Matches(msg, v.keys.MoveRight):
		if t, ok := v.selected(); ok {
			if to, ok := t.Status.Right(); ok {
				v.follow = t.ID
				return v, v.move(t, to)
			}
		}
		return v, nil

	case key.Matches(msg, v.keys.Left):
		v.col = max(v.col-1, 0)
		return v, nil

	case key.Matches(msg, v.keys.Right):
		v.col = min(v.col+1, len(models.Statuses)-1)
		return v, nil

	case key.Matches(msg, v.keys.Up):
		v.cursors[v.col] = max(v.cursors[v.col]-1, 0)
		return v, nil

	case key.Matches(msg, v.keys.Down):
		n := len(v.column(models.Statuses[v.col]))
		v.cursors[v.col] = clamp(v.cursors[v.col]+1, 0, max(n-1, 0))
		return v, nil

	case key.Matches(msg, v.keys.New):
		v.form = newTaskForm(v.keys, models.Statuses[v.col])
		v.form.setWidth(clamp(styles.ContentWidth(v.width)-10, 20, 56))
		return v, textinput.Blink

	case key.Matches(msg, v.keys.Edit), key.Matches(msg, v.keys.Enter):
		if t, ok := v.selected(); ok {
			v.form = editTaskForm(v.keys, t)
			v.form.setWidth(clamp(styles.ContentWidth(v.width)-10, 20, 56))
			return v, textinput.Blink
		}
		return v, nil

	case key.Matches(msg, v.keys.Delete):
		if t, ok := v.selected(); ok {
			v.confirm = &confirmation{
				title: fmt.Sprintf("Delete task %q?", t.Title),
				yes:   func() tea.Cmd { return v.remove(t.ID) },
			}
		}
		return v, nil

	case key.Matches(msg, v.keys.Refresh):
		return v, v.Init()
	}

	return v, nil
}

func (v *BoardView) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	cmd, action := v.form.update(msg)
	switch action {
	case formCancel:
		v.form = nil
		return v, nil
	case formSubmit:
		return v, v.save()
	}
	return v, cmd
}

// save sends the form. The form stays open until the data service accepts it.
func (v *BoardView) save() tea.Cmd {
	ctx, projectID, f := v.env.ctx(), v.projectID, v.form
	if f.editing == nil {
		d, err := f.draft()
		if err != nil {
			v.notice.warn(capitalize(err.Error()))
			return nil
		}
		return func() tea.Msg {
			_, err := v.tasks.Create(ctx, d)
			return taskChangedMsg{projectID: projectID, what: "Saving task", err: err}
		}
	}

	u, err := f.changes()
	if err != nil {
		v.notice.warn(capitalize(err.Error()))
		return nil
	}
	if len(u.Fields()) == 0 {
		v.form = nil
		return nil
	}
	id := f.editing.ID
	return func() tea.Msg {
		return taskChangedMsg{projectID: projectID, what: "Saving task", err: v.tasks.Mutate(ctx, id, u)}
	}
}

func (v *BoardView) move(t models.Task, to models.Status) tea.Cmd {
	ctx, projectID := v.env.ctx(), v.projectID
	return func() tea.Msg {
		err := v.tasks.Mutate(ctx, t.ID, models.TaskUpdate{Status: &to})
		return taskChangedMsg{projectID: projectID, what: "Moving task", err: err}
	}
}

func (v *BoardView) remove(id string) tea.Cmd {
	ctx, projectID := v.env.ctx(), v.projectID
	return func() tea.Msg {
		return taskChangedMsg{projectID: projectID, what: "Deleting task", err: v.tasks.Destroy(ctx, id)}
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func (v *BoardView) View() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	if v.confirm != nil {
		return lipgloss.JoinVertical(lipgloss.Left, v.confirm.render(s), v.notice.render(s))
	}
	if v.form != nil {
		return lipgloss.JoinVertical(lipgloss.Left, v.form.view(s, contentWidth), v.notice.render(s))
	}
	if !v.loaded {
		return s.TitleMuted.Render("Loading tasks...")
	}

	colWidth := max((contentWidth-6)/3, 16)
	cols := make([]string, len(models.Statuses))
	for i, st := range models.Statuses {
		cols[i] = v.renderColumn(i, st, colWidth)
	}

	help := []key.Binding{v.keys.New, v.keys.Edit, v.keys.Delete}
	if t, ok := v.selected(); ok {
		if _, ok := t.Status.Left(); ok {
			help = append(help, v.keys.MoveLeft)
		}
		if _, ok := t.Status.Right(); ok {
			help = append(help, v.keys.MoveRight)
		}
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.JoinHorizontal(lipgloss.Top, cols...),
		v.notice.render(s),
		s.Help(help...),
	)
}

func (v *BoardView) renderColumn(idx int, status models.Status, width int) string {
	s := v.styles
	tasks := v.column(status)
	focused := idx == v.col
	inner := width - 4

	header := lipgloss.JoinHorizontal(lipgloss.Top,
		s.ColumnTitle.Render(status.Label()),
		s.Muted.Render(fmt.Sprintf(" (%d)", len(tasks))),
	)
	header = lipgloss.NewStyle().Width(inner).Render(header)
	add := s.Muted.Render("+ add task")
	lines := []string{header, add, ""}

	if len(tasks) == 0 {
		lines = append(lines, s.TitleMuted.Render("No tasks yet"))
	} else {
		visible := max((v.height-14)/cardHeight, 1)
		start := 0
		if cur := v.cursors[idx]; cur >= visible {
			start = cur - visible + 1
		}
		end := min(start+visible, len(tasks))
		if start > 0 {
			lines = append(lines, s.Muted.Render(fmt.Sprintf("↑ %d more", start)))
		}
		for i := start; i < end; i++ {
			lines = append(lines, v.renderCard(tasks[i], focused && i == v.cursors[idx], inner))
		}
		if end < len(tasks) {
			lines = append(lines, s.Muted.Render(fmt.Sprintf("↓ %d more", len(tasks)-end)))
		}
	}

	style := s.Column
	if focused {
		style = s.ColumnFocused
	}
	return style.Width(width - 2).Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (v *BoardView) renderCard(t models.Task, selected bool, width int) string {
	s := v.styles
	style := s.Card
	if selected {
		style = s.CardSelected
	}

	title := truncate(t.Title, width-2)
	meta := s.Priority(t.Priority).Render(string(t.Priority))
	if t.Deadline != nil {
		meta += s.Muted.Render("  due " + formatDate(t.Deadline))
	}
	desc := ""
	if t.Description != "" {
		desc = s.Muted.Render(truncate(t.Description, width-2))
	}

	if selected {
		var moves []string
		if _, ok := t.Status.Left(); ok {
			moves = append(moves, "‹ move")
		}
		if _, ok := t.Status.Right(); ok {
			moves = append(moves, "move ›")
		}
		if len(moves) > 0 {
			meta += s.Muted.Render("  " + strings.Join(moves, " "))
		}
	}

	return style.Width(width).Render(lipgloss.JoinVertical(lipgloss.Left, title, desc, meta))
}
