// Package teatest drives bubbletea models synchronously in tests.
//
// Instead of running a tea.Program, the Driver calls Update directly and
// executes every returned Cmd in place, feeding its message back in until
// nothing is left. Cmds that do not return within the command timeout are
// treated as timers (cursor blinks) and dropped.
package teatest

import (
	"fmt"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// MaxDepth bounds how many chained Cmds one Send may execute.
const MaxDepth = 100

// DefaultCmdTimeout separates real work (queries against an in-memory
// database) from blink timers, which block for about half a second.
const DefaultCmdTimeout = 50 * time.Millisecond

// Driver owns the model under test.
type Driver struct {
	T     *testing.T
	Model tea.Model

	// Quitting is set once a tea.QuitMsg has been produced.
	Quitting bool

	cmdTimeout time.Duration
}

type Option func(*Driver)

// WithSize delivers a WindowSizeMsg before anything else.
func WithSize(w, h int) Option {
	return func(d *Driver) {
		d.Send(tea.WindowSizeMsg{Width: w, Height: h})
	}
}

// WithCmdTimeout overrides DefaultCmdTimeout.
func WithCmdTimeout(timeout time.Duration) Option {
	return func(d *Driver) {
		d.cmdTimeout = timeout
	}
}

// New wraps model. Call Start to run its Init command.
func New(t *testing.T, model tea.Model, opts ...Option) *Driver {
	t.Helper()
	d := &Driver{T: t, Model: model, cmdTimeout: DefaultCmdTimeout}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Start runs Init and everything it leads to.
func (d *Driver) Start() {
	d.T.Helper()
	d.run(d.Model.Init(), 0)
}

// Send delivers msg and drains the resulting commands.
func (d *Driver) Send(msg tea.Msg) {
	d.T.Helper()
	if d.Quitting {
		return
	}
	m, cmd := d.Model.Update(msg)
	d.Model = m
	d.run(cmd, 0)
}

// Key sends a named key such as tea.KeyEnter or tea.KeyTab.
func (d *Driver) Key(k tea.KeyType) {
	d.T.Helper()
	d.Send(tea.KeyMsg{Type: k})
}

// Press sends single-rune keys, one event per rune.
func (d *Driver) Press(keys ...rune) {
	d.T.Helper()
	for _, r := range keys {
		d.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

// Type delivers s as one paste-like event, which keeps hotkeys from firing
// on the individual characters of focused inputs.
func (d *Driver) Type(s string) {
	d.T.Helper()
	if s == "" {
		return
	}
	d.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s), Paste: true})
}

func (d *Driver) Enter()    { d.T.Helper(); d.Key(tea.KeyEnter) }
func (d *Driver) Esc()      { d.T.Helper(); d.Key(tea.KeyEsc) }
func (d *Driver) Tab()      { d.T.Helper(); d.Key(tea.KeyTab) }
func (d *Driver) ShiftTab() { d.T.Helper(); d.Key(tea.KeyShiftTab) }
func (d *Driver) Up()       { d.T.Helper(); d.Key(tea.KeyUp) }
func (d *Driver) Down()     { d.T.Helper(); d.Key(tea.KeyDown) }
func (d *Driver) Left()     { d.T.Helper(); d.Key(tea.KeyLeft) }
func (d *Driver) Right()    { d.T.Helper(); d.Key(tea.KeyRight) }
func (d *Driver) CtrlS()    { d.T.Helper(); d.Key(tea.KeyCtrlS) }

// View renders the model.
func (d *Driver) View() string {
	return d.Model.View()
}

func (d *Driver) run(cmd tea.Cmd, depth int) {
	d.T.Helper()
	if cmd == nil {
		return
	}
	if depth >= MaxDepth {
		d.T.Logf("teatest: command chain deeper than %d, stopping", MaxDepth)
		return
	}

	msg := d.exec(cmd)
	if msg == nil || isBlink(msg) {
		return
	}

	switch msg := msg.(type) {
	case tea.BatchMsg:
		for _, c := range msg {
			d.run(c, depth+1)
		}
		return
	case tea.QuitMsg:
		d.Quitting = true
		m, _ := d.Model.Update(msg)
		d.Model = m
		return
	}

	m, next := d.Model.Update(msg)
	d.Model = m
	d.run(next, depth+1)
}

func (d *Driver) exec(cmd tea.Cmd) tea.Msg {
	ch := make(chan tea.Msg, 1)
	go func() {
		ch <- cmd()
	}()
	select {
	case msg := <-ch:
		return msg
	case <-time.After(d.cmdTimeout):
		return nil
	}
}

// isBlink matches the unexported cursor blink messages of bubbles.
func isBlink(msg tea.Msg) bool {
	return strings.Contains(strings.ToLower(fmt.Sprintf("%T", msg)), "blink")
}
