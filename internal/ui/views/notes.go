package views

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tgienger/projecthub/internal/models"
	"github.com/tgienger/projecthub/internal/repository"
	"github.com/tgienger/projecthub/internal/syncer"
	"github.com/tgienger/projecthub/internal/ui/keys"
	"github.com/tgienger/projecthub/internal/ui/styles"
)

type notesFocus int

const (
	focusNoteList notesFocus = iota
	focusNoteTitle
	focusNoteContent
)

// NotesView is a list of a project's notes next to an editor. Edits are
// kept in the editor until saved explicitly.
type NotesView struct {
	env       Env
	projectID string
	notes     *syncer.Synchronizer[models.Note, models.NoteInsert, models.NoteUpdate]
	styles    *styles.Styles
	keys      keys.KeyMap

	width  int
	height int

	loaded   bool
	cursor   int
	selected string // id of the note in the editor
	focus    notesFocus
	title    textinput.Model
	content  textarea.Model
	confirm  *confirmation
	notice   notice
}

type notesLoadedMsg struct {
	projectID string
	err       error
}

type noteCreatedMsg struct {
	projectID string
	note      models.Note
	err       error
}

type noteSavedMsg struct {
	projectID string
	err       error
}

type noteRemovedMsg struct {
	projectID string
	id        string
	err       error
}

func NewNotesView(env Env, projectID string) *NotesView {
	title := textinput.New()
	title.Placeholder = "Note title"
	title.CharLimit = 200

	content := textarea.New()
	content.Placeholder = "Start writing..."
	content.CharLimit = 0
	content.ShowLineNumbers = false
	content.SetWidth(50)
	content.SetHeight(12)

	return &NotesView{
		env:       env,
		projectID: projectID,
		notes: syncer.New[models.Note, models.NoteInsert, models.NoteUpdate](
			"notes", repository.NewNotes(env.Client), syncer.WithLogger(env.logger())),
		styles:  styles.NewStyles(),
		keys:    keys.DefaultKeyMap(),
		title:   title,
		content: content,
	}
}

func (v *NotesView) Init() tea.Cmd {
	ctx, id := v.env.ctx(), v.projectID
	return func() tea.Msg {
		_, err := v.notes.Load(ctx, id)
		return notesLoadedMsg{projectID: id, err: err}
	}
}

func (v *NotesView) Close() {
	v.notes.Close()
}

// current returns the note open in the editor as last loaded.
func (v *NotesView) current() (models.Note, bool) {
	if v.selected == "" {
		return models.Note{}, false
	}
	for _, n := range v.notes.Rows() {
		if n.ID == v.selected {
			return n, true
		}
	}
	return models.Note{}, false
}

// Dirty reports whether the editor differs from the saved note.
func (v *NotesView) Dirty() bool {
	n, ok := v.current()
	if !ok {
		return false
	}
	return v.title.Value() != n.Title || v.content.Value() != n.Content
}

// Capturing reports whether keys go to the editor or a dialog.
func (v *NotesView) Capturing() bool {
	return v.focus != focusNoteList || v.confirm != nil
}

func (v *NotesView) open(n models.Note) {
	v.selected = n.ID
	v.title.SetValue(n.Title)
	v.content.SetValue(n.Content)
	v.syncCursor()
}

func (v *NotesView) closeEditor() {
	v.selected = ""
	v.title.Reset()
	v.content.Reset()
	v.setFocus(focusNoteList)
}

// syncCursor points the list at the open note.
func (v *NotesView) syncCursor() {
	rows := v.notes.Rows()
	for i, n := range rows {
		if n.ID == v.selected {
			v.cursor = i
			return
		}
	}
	v.cursor = clamp(v.cursor, 0, max(len(rows)-1, 0))
}

func (v *NotesView) setFocus(f notesFocus) tea.Cmd {
	v.focus = f
	v.title.Blur()
	v.content.Blur()
	switch f {
	case focusNoteTitle:
		return v.title.Focus()
	case focusNoteContent:
		return v.content.Focus()
	}
	return nil
}

// guard runs action now, or after the user agrees to drop unsaved edits.
func (v *NotesView) guard(action func() tea.Cmd) tea.Cmd {
	if !v.Dirty() {
		return action()
	}
	v.confirm = &confirmation{
		title:  "You have unsaved changes. Discard them?",
		detail: "Your edits to this note will be lost.",
		yes:    action,
	}
	return nil
}

func (v *NotesView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		contentWidth := styles.ContentWidth(msg.Width)
		v.content.SetWidth(clamp(contentWidth-listWidth-10, 20, 80))
		v.content.SetHeight(clamp(msg.Height-20, 4, 24))
		return v, nil

	case notesLoadedMsg:
		if msg.projectID != v.projectID {
			return v, nil
		}
		if msg.err != nil {
			if !ignorable(msg.err) {
				v.notice.fail("Loading notes failed", msg.err)
			}
			return v, nil
		}
		v.loaded = true
		v.syncCursor()
		return v, nil

	case noteCreatedMsg:
		if msg.projectID != v.projectID {
			return v, nil
		}
		if msg.err != nil {
			if !ignorable(msg.err) {
				v.notice.fail("Creating note failed", msg.err)
			}
			return v, nil
		}
		v.open(msg.note)
		return v, v.setFocus(focusNoteTitle)

	case noteSavedMsg:
		if msg.projectID != v.projectID {
			return v, nil
		}
		if msg.err != nil {
			if !ignorable(msg.err) {
				v.notice.fail("Saving note failed", msg.err)
			}
			return v, nil
		}
		v.syncCursor()
		v.notice.info("Note saved")
		return v, nil

	case noteRemovedMsg:
		if msg.projectID != v.projectID {
			return v, nil
		}
		if msg.err != nil {
			if !ignorable(msg.err) {
				v.notice.fail("Deleting note failed", msg.err)
			}
			return v, nil
		}
		if msg.id == v.selected {
			v.closeEditor()
		}
		v.syncCursor()
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

		if v.focus != focusNoteList {
			return v.updateEditor(msg)
		}
		return v.updateList(msg)
	}

	return v, nil
}

func (v *NotesView) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	rows := v.notes.Rows()

	switch {
	case key.Matches(msg, v.keys.Up):
		v.cursor = max(v.cursor-1, 0)
		return v, nil

	case key.Matches(msg, v.keys.Down):
		v.cursor = clamp(v.cursor+1, 0, max(len(rows)-1, 0))
		return v, nil

	case key.Matches(msg, v.keys.Enter):
		if v.cursor >= len(rows) {
			return v, nil
		}
		n := rows[v.cursor]
		if n.ID == v.selected {
			return v, v.setFocus(focusNoteTitle)
		}
		return v, v.guard(func() tea.Cmd {
			v.open(n)
			return nil
		})

	case key.Matches(msg, v.keys.Edit), key.Matches(msg, v.keys.Tab):
		if v.selected != "" {
			return v, v.setFocus(focusNoteTitle)
		}
		return v, nil

	case key.Matches(msg, v.keys.New):
		return v, v.guard(v.create)

	case key.Matches(msg, v.keys.Save):
		return v, v.save()

	case key.Matches(msg, v.keys.Delete):
		if v.cursor >= len(rows) {
			return v, nil
		}
		n := rows[v.cursor]
		v.confirm = &confirmation{
			title:  fmt.Sprintf("Delete %q?", n.Title),
			detail: "Are you sure you want to delete this note?",
			yes:    func() tea.Cmd { return v.remove(n.ID) },
		}
		return v, nil

	case key.Matches(msg, v.keys.Refresh):
		return v, v.Init()
	}
	return v, nil
}

func (v *NotesView) updateEditor(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		v.setFocus(focusNoteList)
		return v, nil

	case key.Matches(msg, v.keys.Save):
		return v, v.save()

	case key.Matches(msg, v.keys.Tab), key.Matches(msg, v.keys.BackTab):
		if v.focus == focusNoteTitle {
			return v, v.setFocus(focusNoteContent)
		}
		return v, v.setFocus(focusNoteTitle)

	case v.focus == focusNoteTitle && key.Matches(msg, v.keys.Enter):
		return v, v.setFocus(focusNoteContent)
	}

	var cmd tea.Cmd
	if v.focus == focusNoteTitle {
		v.title, cmd = v.title.Update(msg)
	} else {
		v.content, cmd = v.content.Update(msg)
	}
	return v, cmd
}

func (v *NotesView) create() tea.Cmd {
	ctx, projectID := v.env.ctx(), v.projectID
	return func() tea.Msg {
		n, err := v.notes.Create(ctx, models.NoteInsert{})
		return noteCreatedMsg{projectID: projectID, note: n, err: err}
	}
}

// save writes the editor back. Nothing happens without changes.
func (v *NotesView) save() tea.Cmd {
	if !v.Dirty() {
		return nil
	}
	ctx, projectID, id := v.env.ctx(), v.projectID, v.selected
	title, content := v.title.Value(), v.content.Value()
	return func() tea.Msg {
		err := v.notes.Mutate(ctx, id, models.NoteUpdate{Title: &title, Content: &content})
		return noteSavedMsg{projectID: projectID, err: err}
	}
}

func (v *NotesView) remove(id string) tea.Cmd {
	ctx, projectID := v.env.ctx(), v.projectID
	return func() tea.Msg {
		return noteRemovedMsg{projectID: projectID, id: id, err: v.notes.Destroy(ctx, id)}
	}
}

const listWidth = 30

func (v *NotesView) View() string {
	s := v.styles
	if !v.loaded {
		return s.TitleMuted.Render("Loading notes...")
	}

	var right string
	if v.confirm != nil {
		right = v.confirm.render(s)
	} else {
		right = v.renderEditor()
	}

	help := []key.Binding{v.keys.New, v.keys.Enter, v.keys.Delete, v.keys.Save}
	if v.focus != focusNoteList {
		help = []key.Binding{v.keys.Tab, v.keys.Save, v.keys.Back}
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.JoinHorizontal(lipgloss.Top, v.renderList(), "  ", right),
		v.notice.render(s),
		s.Help(help...),
	)
}

func (v *NotesView) renderList() string {
	s := v.styles
	rows := v.notes.Rows()

	lines := []string{
		s.ColumnTitle.Render("Notes") + s.Muted.Render(fmt.Sprintf(" (%d)", len(rows))),
		"",
	}
	if len(rows) == 0 {
		lines = append(lines, s.TitleMuted.Render("No notes yet"))
	}
	for i, n := range rows {
		style := s.ListItem
		if i == v.cursor && v.focus == focusNoteList {
			style = s.ListSelected
		}
		marker := "  "
		if n.ID == v.selected {
			marker = "▸ "
		}
		lines = append(lines,
			style.Width(listWidth-4).Render(marker+truncate(n.Title, listWidth-8)),
			s.Muted.Render("    "+n.UpdatedAt.Local().Format("Jan 2, 03:04 PM")),
		)
	}

	style := s.Column
	if v.focus == focusNoteList {
		style = s.ColumnFocused
	}
	return style.Width(listWidth).Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (v *NotesView) renderEditor() string {
	s := v.styles
	if v.selected == "" {
		return lipgloss.JoinVertical(lipgloss.Left,
			s.Title.Render("No note selected"),
			"",
			s.TitleMuted.Render("Select a note from the list or press 'n' to create one"),
		)
	}

	titleStyle, contentStyle := s.Input, s.Input
	switch v.focus {
	case focusNoteTitle:
		titleStyle = s.InputFocused
	case focusNoteContent:
		contentStyle = s.InputFocused
	}

	saveStyle := s.ButtonDisabled
	status := s.Muted.Render("All changes saved")
	if v.Dirty() {
		saveStyle = s.ButtonFocused
		status = s.Dirty.Render("● You have unsaved changes")
	}

	width := v.content.Width() + 4
	return lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Width(width).Render(v.title.View()),
		contentStyle.Render(v.content.View()),
		lipgloss.JoinHorizontal(lipgloss.Center, saveStyle.Render(" Save "), "  ", status),
	)
}
