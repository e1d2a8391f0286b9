package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tgienger/projecthub/internal/models"
	"github.com/tgienger/projecthub/internal/repository"
	"github.com/tgienger/projecthub/internal/ui/keys"
	"github.com/tgienger/projecthub/internal/ui/styles"
)

const (
	settingTitle = iota
	settingDesc
	settingSave
	settingDelete
	settingCount
)

// ProjectUpdatedMsg carries the saved project so the workspace header can
// follow.
type ProjectUpdatedMsg struct {
	Project models.Project
}

type projectDeleteFailedMsg struct {
	err error
}

// SettingsView edits a project's title and description and deletes it.
type SettingsView struct {
	env      Env
	projects *repository.Projects
	project  models.Project
	styles   *styles.Styles
	keys     keys.KeyMap

	width  int
	height int

	title    textinput.Model
	desc     textarea.Model
	focusIdx int
	editing  bool
	saving   bool
	confirm  *confirmation
	notice   notice
}

func NewSettingsView(env Env, project models.Project) *SettingsView {
	title := textinput.New()
	title.Placeholder = "Project title"
	title.CharLimit = 100

	desc := textarea.New()
	desc.Placeholder = "Description"
	desc.CharLimit = 500
	desc.ShowLineNumbers = false
	desc.SetWidth(56)
	desc.SetHeight(4)

	v := &SettingsView{
		env:      env,
		projects: repository.NewProjects(env.Client),
		styles:   styles.NewStyles(),
		keys:     keys.DefaultKeyMap(),
		title:    title,
		desc:     desc,
	}
	v.reset(project)
	return v
}

func (v *SettingsView) reset(p models.Project) {
	v.project = p
	v.title.SetValue(p.Title)
	v.desc.SetValue(p.Description)
}

func (v *SettingsView) changed() bool {
	return strings.TrimSpace(v.title.Value()) != v.project.Title ||
		strings.TrimSpace(v.desc.Value()) != v.project.Description
}

func (v *SettingsView) Capturing() bool {
	return v.editing || v.confirm != nil
}

func (v *SettingsView) Init() tea.Cmd {
	return nil
}

func (v *SettingsView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		v.desc.SetWidth(clamp(styles.ContentWidth(msg.Width)-10, 20, 72))
		return v, nil

	case ProjectUpdatedMsg:
		v.saving = false
		if msg.Project.ID == v.project.ID {
			v.reset(msg.Project)
			v.notice.info("Project updated")
		}
		return v, nil

	case projectSaveFailedMsg:
		v.saving = false
		if msg.projectID == v.project.ID {
			v.notice.fail("Saving project failed", msg.err)
		}
		return v, nil

	case projectDeleteFailedMsg:
		v.notice.fail("Deleting project failed", msg.err)
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

		if v.editing {
			return v.updateEditing(msg)
		}

		switch {
		case key.Matches(msg, v.keys.Up), key.Matches(msg, v.keys.BackTab):
			v.focusIdx = (v.focusIdx + settingCount - 1) % settingCount
			return v, nil
		case key.Matches(msg, v.keys.Down), key.Matches(msg, v.keys.Tab):
			v.focusIdx = (v.focusIdx + 1) % settingCount
			return v, nil
		case key.Matches(msg, v.keys.Save):
			return v, v.save()
		case key.Matches(msg, v.keys.Delete):
			v.askDelete()
			return v, nil
		case key.Matches(msg, v.keys.Enter), key.Matches(msg, v.keys.Edit):
			switch v.focusIdx {
			case settingSave:
				return v, v.save()
			case settingDelete:
				v.askDelete()
				return v, nil
			}
			return v, v.startEditing()
		}
	}
	return v, nil
}

func (v *SettingsView) startEditing() tea.Cmd {
	v.editing = true
	v.title.Blur()
	v.desc.Blur()
	if v.focusIdx == settingDesc {
		return v.desc.Focus()
	}
	v.focusIdx = settingTitle
	return v.title.Focus()
}

func (v *SettingsView) stopEditing() {
	v.editing = false
	v.title.Blur()
	v.desc.Blur()
}

func (v *SettingsView) updateEditing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		v.stopEditing()
		return v, nil
	case key.Matches(msg, v.keys.Save):
		v.stopEditing()
		return v, v.save()
	case key.Matches(msg, v.keys.Tab), key.Matches(msg, v.keys.BackTab):
		if v.focusIdx == settingTitle {
			v.focusIdx = settingDesc
		} else {
			v.focusIdx = settingTitle
		}
		return v, v.startEditing()
	case v.focusIdx == settingTitle && key.Matches(msg, v.keys.Enter):
		v.focusIdx = settingDesc
		return v, v.startEditing()
	}

	var cmd tea.Cmd
	if v.focusIdx == settingTitle {
		v.title, cmd = v.title.Update(msg)
	} else {
		v.desc, cmd = v.desc.Update(msg)
	}
	return v, cmd
}

type projectSaveFailedMsg struct {
	projectID string
	err       error
}

// save is disabled while nothing changed.
func (v *SettingsView) save() tea.Cmd {
	if !v.changed() || v.saving {
		return nil
	}
	title := strings.TrimSpace(v.title.Value())
	if title == "" {
		v.notice.warn("A title is required")
		return nil
	}
	desc := strings.TrimSpace(v.desc.Value())
	v.saving = true
	ctx, id := v.env.ctx(), v.project.ID
	return func() tea.Msg {
		err := v.projects.Update(ctx, id, models.ProjectUpdate{Title: &title, Description: &desc})
		if err != nil {
			return projectSaveFailedMsg{projectID: id, err: err}
		}
		p, err := v.projects.Get(ctx, id)
		if err != nil {
			return projectSaveFailedMsg{projectID: id, err: err}
		}
		return ProjectUpdatedMsg{Project: p}
	}
}

func (v *SettingsView) askDelete() {
	id := v.project.ID
	v.confirm = &confirmation{
		title:  fmt.Sprintf("Delete %q?", v.project.Title),
		detail: "All tasks and notes will be permanently deleted.",
		yes: func() tea.Cmd {
			ctx := v.env.ctx()
			return func() tea.Msg {
				if err := v.projects.Delete(ctx, id); err != nil {
					return projectDeleteFailedMsg{err: err}
				}
				return ProjectDeletedMsg{ID: id}
			}
		},
	}
}

func (v *SettingsView) View() string {
	s := v.styles
	if v.confirm != nil {
		return v.confirm.render(s)
	}

	fieldStyle := func(idx int) lipgloss.Style {
		if v.focusIdx == idx {
			return s.InputFocused
		}
		return s.Input
	}
	btnStyle := func(idx int, enabled bool) lipgloss.Style {
		switch {
		case !enabled:
			return s.ButtonDisabled
		case v.focusIdx == idx:
			return s.ButtonFocused
		}
		return s.Button
	}

	deleteStyle := s.Button.Foreground(styles.Current.Error)
	if v.focusIdx == settingDelete {
		deleteStyle = s.ButtonFocused.Foreground(styles.Current.Error).BorderForeground(styles.Current.Error)
	}

	width := v.desc.Width() + 4
	return lipgloss.JoinVertical(lipgloss.Left,
		s.Title.Render("Project Settings"),
		"",
		s.Label.Render("Title"),
		fieldStyle(settingTitle).Width(width).Render(v.title.View()),
		s.Label.Render("Description"),
		fieldStyle(settingDesc).Render(v.desc.View()),
		"",
		btnStyle(settingSave, v.changed() && !v.saving).Render(" Save Changes "),
		"",
		s.Danger.Render("Danger Zone"),
		s.Muted.Render("Deleting a project removes it for good. All tasks and notes will be permanently deleted."),
		deleteStyle.Render(" Delete Project "),
		v.notice.render(s),
		s.Help(v.keys.Enter, v.keys.Save, v.keys.Delete, v.keys.Back),
	)
}
