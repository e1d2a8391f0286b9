package views

import (
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tgienger/projecthub/internal/models"
	"github.com/tgienger/projecthub/internal/ui/keys"
	"github.com/tgienger/projecthub/internal/ui/styles"
)

const (
	fieldTitle = iota
	fieldDesc
	fieldPriority
	fieldDeadline
	fieldSave
	fieldCount
)

var errTitleRequired = errors.New("a title is required")

// taskForm creates a task in a column or edits an existing one.
type taskForm struct {
	keys keys.KeyMap

	// editing is nil for a new task
	editing *models.Task
	status  models.Status

	title    textinput.Model
	desc     textarea.Model
	priority models.Priority
	deadline textinput.Model
	focusIdx int
}

type formAction int

const (
	formContinue formAction = iota
	formCancel
	formSubmit
)

func newTaskForm(km keys.KeyMap, status models.Status) *taskForm {
	title := textinput.New()
	title.Placeholder = "Task title"
	title.CharLimit = 200

	desc := textarea.New()
	desc.Placeholder = "Description (optional)"
	desc.CharLimit = 1000
	desc.ShowLineNumbers = false
	desc.SetWidth(50)
	desc.SetHeight(3)

	deadline := textinput.New()
	deadline.Placeholder = "YYYY-MM-DD"
	deadline.CharLimit = 10

	f := &taskForm{
		keys:     km,
		status:   status,
		title:    title,
		desc:     desc,
		priority: models.PriorityMedium,
		deadline: deadline,
	}
	f.focus()
	return f
}

func editTaskForm(km keys.KeyMap, t models.Task) *taskForm {
	f := newTaskForm(km, t.Status)
	f.editing = &t
	f.title.SetValue(t.Title)
	f.desc.SetValue(t.Description)
	f.priority = t.Priority
	if t.Deadline != nil {
		f.deadline.SetValue(t.Deadline.String())
	}
	return f
}

func (f *taskForm) setWidth(w int) {
	f.desc.SetWidth(w)
}

func (f *taskForm) update(msg tea.KeyMsg) (tea.Cmd, formAction) {
	switch {
	case key.Matches(msg, f.keys.Back):
		return nil, formCancel

	case key.Matches(msg, f.keys.Save):
		return nil, formSubmit

	case key.Matches(msg, f.keys.Tab):
		f.focusIdx = (f.focusIdx + 1) % fieldCount
		f.focus()
		return nil, formContinue

	case key.Matches(msg, f.keys.BackTab):
		f.focusIdx = (f.focusIdx + fieldCount - 1) % fieldCount
		f.focus()
		return nil, formContinue

	case key.Matches(msg, f.keys.Priority):
		f.priority = f.priority.Next()
		return nil, formContinue

	case key.Matches(msg, f.keys.Enter):
		switch f.focusIdx {
		case fieldSave:
			return nil, formSubmit
		case fieldDesc:
			// newline
		default:
			f.focusIdx++
			f.focus()
			return nil, formContinue
		}
	}

	if f.focusIdx == fieldPriority {
		switch msg.String() {
		case " ", "right", "l":
			f.priority = f.priority.Next()
		case "left", "h":
			f.priority = f.priority.Next().Next()
		}
		return nil, formContinue
	}

	var cmd tea.Cmd
	switch f.focusIdx {
	case fieldTitle:
		f.title, cmd = f.title.Update(msg)
	case fieldDesc:
		f.desc, cmd = f.desc.Update(msg)
	case fieldDeadline:
		f.deadline, cmd = f.deadline.Update(msg)
	}
	return cmd, formContinue
}

func (f *taskForm) focus() {
	f.title.Blur()
	f.desc.Blur()
	f.deadline.Blur()
	switch f.focusIdx {
	case fieldTitle:
		f.title.Focus()
	case fieldDesc:
		f.desc.Focus()
	case fieldDeadline:
		f.deadline.Focus()
	}
}

func (f *taskForm) parseDeadline() (*models.Date, error) {
	raw := strings.TrimSpace(f.deadline.Value())
	if raw == "" {
		return nil, nil
	}
	d, err := models.ParseDate(raw)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// draft is the payload for a new task in the form's column.
func (f *taskForm) draft() (models.TaskDraft, error) {
	title := strings.TrimSpace(f.title.Value())
	if title == "" {
		return models.TaskDraft{}, errTitleRequired
	}
	deadline, err := f.parseDeadline()
	if err != nil {
		return models.TaskDraft{}, err
	}
	return models.TaskDraft{
		Title:       title,
		Description: strings.TrimSpace(f.desc.Value()),
		Priority:    f.priority,
		Deadline:    deadline,
		Status:      f.status,
	}, nil
}

// changes is the update for an edited task. Only fields that differ are set.
func (f *taskForm) changes() (models.TaskUpdate, error) {
	var u models.TaskUpdate
	t := f.editing
	title := strings.TrimSpace(f.title.Value())
	if title == "" {
		return u, errTitleRequired
	}
	deadline, err := f.parseDeadline()
	if err != nil {
		return u, err
	}
	if title != t.Title {
		u.Title = &title
	}
	if desc := strings.TrimSpace(f.desc.Value()); desc != t.Description {
		u.Description = &desc
	}
	if f.priority != t.Priority {
		p := f.priority
		u.Priority = &p
	}
	switch {
	case deadline == nil && t.Deadline != nil:
		u.ClearDeadline = true
	case deadline != nil && (t.Deadline == nil || !deadline.Equal(t.Deadline.Time)):
		u.Deadline = deadline
	}
	return u, nil
}

func (f *taskForm) view(s *styles.Styles, width int) string {
	heading := "New Task in " + f.status.Label()
	if f.editing != nil {
		heading = "Edit Task"
	}

	styleFor := func(idx int) lipgloss.Style {
		if f.focusIdx == idx {
			return s.InputFocused
		}
		return s.Input
	}
	btnStyle := s.Button
	if f.focusIdx == fieldSave {
		btnStyle = s.ButtonFocused
	}

	inputWidth := clamp(width-6, 20, 56)
	priority := "‹ " + s.Priority(f.priority).Render(string(f.priority)) + " ›"

	return lipgloss.JoinVertical(lipgloss.Left,
		s.Title.Render(heading),
		"",
		s.Label.Render("Title"),
		styleFor(fieldTitle).Width(inputWidth).Render(f.title.View()),
		s.Label.Render("Description"),
		styleFor(fieldDesc).Render(f.desc.View()),
		s.Label.Render("Priority"),
		styleFor(fieldPriority).Width(16).Render(priority),
		s.Label.Render("Deadline"),
		styleFor(fieldDeadline).Width(16).Render(f.deadline.View()),
		"",
		btnStyle.Render(" Save "),
		"",
		s.TitleMuted.Render("Tab: next • Space/←→: priority • Ctrl+S: save • Esc: cancel"),
	)
}
