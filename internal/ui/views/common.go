// Package views holds the screens of the TUI. Each list-backed view owns a
// synchronizer and turns its results into messages; the app routes those
// messages and the navigation requests views emit.
package views

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tgienger/projecthub/internal/auth"
	"github.com/tgienger/projecthub/internal/models"
	"github.com/tgienger/projecthub/internal/rowstore"
	"github.com/tgienger/projecthub/internal/syncer"
	"github.com/tgienger/projecthub/internal/ui/keys"
	"github.com/tgienger/projecthub/internal/ui/styles"
)

// Env is what views need to reach the data service.
type Env struct {
	Client  rowstore.Client
	Session *auth.Session
	Logger  *slog.Logger
}

// ctx acts as the signed-in user.
func (e Env) ctx() context.Context {
	return e.Session.Context(context.Background())
}

func (e Env) userID() string {
	u, _ := e.Session.User()
	return u.ID
}

func (e Env) logger() *slog.Logger {
	if e.Logger == nil {
		return slog.Default()
	}
	return e.Logger
}

// Navigation requests, handled by the app.
type (
	OpenProjectMsg    struct{ ID string }
	BackMsg           struct{}
	ProjectDeletedMsg struct{ ID string }
	SignedInMsg       struct{}
	SignOutMsg        struct{}
)

// Tab views report whether they are consuming keystrokes so the workspace
// leaves its own shortcuts alone.
type capturer interface {
	Capturing() bool
}

// clamp returns val clamped between minVal and maxVal
func clamp(val, minVal, maxVal int) int {
	if val < minVal {
		return minVal
	}
	if val > maxVal {
		return maxVal
	}
	return val
}

func truncate(s string, width int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if width <= 1 || lipgloss.Width(s) <= width {
		return s
	}
	r := []rune(s)
	if len(r) > width-1 {
		r = r[:width-1]
	}
	return string(r) + "…"
}

// ignorable errors come from results that were deliberately dropped.
func ignorable(err error) bool {
	return errors.Is(err, syncer.ErrSuperseded) || errors.Is(err, syncer.ErrClosed)
}

// notice is the dismissible line at the bottom of a view. Any key clears it.
type notice struct {
	text  string
	isErr bool
}

func (n *notice) fail(what string, err error) {
	n.text = what + ": " + describe(err)
	n.isErr = true
}

func (n *notice) warn(text string) {
	n.text = text
	n.isErr = true
}

func (n *notice) info(text string) {
	n.text = text
	n.isErr = false
}

func (n *notice) clear() {
	n.text = ""
}

func (n notice) render(s *styles.Styles) string {
	if n.text == "" {
		return ""
	}
	if n.isErr {
		return s.Error.Render("✗ " + n.text)
	}
	return s.Notice.Render("✓ " + n.text)
}

// describe turns an error into something short enough for the notice line.
func describe(err error) string {
	switch {
	case errors.Is(err, rowstore.ErrNotFound):
		return "it no longer exists"
	case errors.Is(err, rowstore.ErrUnauthorized):
		return "permission denied"
	case errors.Is(err, rowstore.ErrTransport):
		return "the data service is unreachable"
	case errors.Is(err, rowstore.ErrQuery):
		msg := err.Error()
		if i := strings.LastIndex(msg, ": "); i >= 0 {
			msg = msg[i+2:]
		}
		return msg
	}
	return err.Error()
}

// confirmation is a pending yes/no question. Nothing is sent to the data
// service until the user answers yes.
type confirmation struct {
	title  string
	detail string
	yes    func() tea.Cmd
}

// answer resolves c against a key press. done reports whether the dialog
// closed.
func (c *confirmation) answer(msg tea.KeyMsg, km keys.KeyMap) (cmd tea.Cmd, done bool) {
	switch {
	case key.Matches(msg, km.Confirm):
		if c.yes != nil {
			cmd = c.yes()
		}
		return cmd, true
	case key.Matches(msg, km.Cancel):
		return nil, true
	}
	return nil, false
}

func (c *confirmation) render(s *styles.Styles) string {
	lines := []string{s.Danger.Render(c.title)}
	if c.detail != "" {
		lines = append(lines, "", s.Muted.Render(c.detail))
	}
	lines = append(lines, "",
		lipgloss.JoinHorizontal(lipgloss.Center,
			s.ButtonFocused.Render("Y - Yes"),
			"  ",
			s.Button.Render("N - No"),
		),
	)
	return s.Dialog.Render(lipgloss.JoinVertical(lipgloss.Center, lines...))
}

func formatDate(d *models.Date) string {
	if d == nil {
		return ""
	}
	return d.Format("Jan 2, 2006")
}
