package views

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tgienger/projecthub/internal/models"
	"github.com/tgienger/projecthub/internal/ui/keys"
)

func TestTaskFormDraft(t *testing.T) {
	f := newTaskForm(keys.DefaultKeyMap(), models.StatusDone)
	f.title.SetValue("  Ship it ")
	f.desc.SetValue("release notes")
	f.deadline.SetValue("2025-04-01")

	d, err := f.draft()
	require.NoError(t, err)
	assert.Equal(t, "Ship it", d.Title)
	assert.Equal(t, "release notes", d.Description)
	assert.Equal(t, models.StatusDone, d.Status)
	assert.Equal(t, models.PriorityMedium, d.Priority)
	require.NotNil(t, d.Deadline)
	assert.Equal(t, "2025-04-01", d.Deadline.String())
}

func TestTaskFormValidation(t *testing.T) {
	f := newTaskForm(keys.DefaultKeyMap(), models.StatusTodo)
	_, err := f.draft()
	assert.ErrorIs(t, err, errTitleRequired)

	f.title.SetValue("Ship it")
	f.deadline.SetValue("next week")
	_, err = f.draft()
	assert.ErrorContains(t, err, "YYYY-MM-DD")
}

func TestTaskFormChanges(t *testing.T) {
	deadline := models.NewDate(time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC))
	task := models.Task{
		ID:       "t1",
		Title:    "Ship it",
		Status:   models.StatusInProgress,
		Priority: models.PriorityLow,
		Deadline: &deadline,
	}

	f := editTaskForm(keys.DefaultKeyMap(), task)
	u, err := f.changes()
	require.NoError(t, err)
	assert.Empty(t, u.Fields())

	f.title.SetValue("Ship it today")
	f.deadline.SetValue("")
	u, err = f.changes()
	require.NoError(t, err)
	require.NotNil(t, u.Title)
	assert.Equal(t, "Ship it today", *u.Title)
	assert.True(t, u.ClearDeadline)
	assert.Nil(t, u.Priority)
	assert.Nil(t, u.Description)
}

func TestTaskFormKeys(t *testing.T) {
	f := newTaskForm(keys.DefaultKeyMap(), models.StatusTodo)

	_, action := f.update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, formContinue, action)
	assert.Equal(t, fieldDesc, f.focusIdx)

	// enter is a newline in the description
	f.update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, fieldDesc, f.focusIdx)

	f.update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, fieldPriority, f.focusIdx)
	f.update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'l'}})
	assert.Equal(t, models.PriorityHigh, f.priority)
	f.update(tea.KeyMsg{Type: tea.KeyCtrlP})
	assert.Equal(t, models.PriorityLow, f.priority)
	f.update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'h'}})
	assert.Equal(t, models.PriorityHigh, f.priority)

	f.update(tea.KeyMsg{Type: tea.KeyShiftTab})
	assert.Equal(t, fieldDesc, f.focusIdx)

	f.focusIdx = fieldSave
	_, action = f.update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, formSubmit, action)
	_, action = f.update(tea.KeyMsg{Type: tea.KeyCtrlS})
	assert.Equal(t, formSubmit, action)
	_, action = f.update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, formCancel, action)
}
