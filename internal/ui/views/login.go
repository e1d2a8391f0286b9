package views

import (
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tgienger/projecthub/internal/auth"
	"github.com/tgienger/projecthub/internal/ui/keys"
	"github.com/tgienger/projecthub/internal/ui/styles"
)

// LoginView signs a user in or registers a new account.
type LoginView struct {
	env    Env
	styles *styles.Styles
	keys   keys.KeyMap

	width  int
	height int

	email    textinput.Model
	password textinput.Model
	focusIdx int // 0=email, 1=password, 2=submit
	signUp   bool
	busy     bool
	errText  string
}

type authDoneMsg struct {
	err error
}

func NewLoginView(env Env) *LoginView {
	email := textinput.New()
	email.Placeholder = "you@example.com"
	email.CharLimit = 254
	email.Focus()

	password := textinput.New()
	password.Placeholder = "password"
	password.CharLimit = 72
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'

	return &LoginView{
		env:      env,
		styles:   styles.NewStyles(),
		keys:     keys.DefaultKeyMap(),
		email:    email,
		password: password,
	}
}

func (v *LoginView) Init() tea.Cmd {
	return textinput.Blink
}

func (v *LoginView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		return v, nil

	case authDoneMsg:
		v.busy = false
		if msg.err != nil {
			v.errText = authError(msg.err)
			return v, nil
		}
		v.errText = ""
		return v, func() tea.Msg { return SignedInMsg{} }

	case tea.KeyMsg:
		if v.busy {
			return v, nil
		}
		switch {
		case msg.Type == tea.KeyCtrlC:
			return v, tea.Quit
		case key.Matches(msg, v.keys.Switch):
			v.signUp = !v.signUp
			v.errText = ""
			return v, nil
		case key.Matches(msg, v.keys.Tab), msg.Type == tea.KeyDown:
			v.focusIdx = (v.focusIdx + 1) % 3
			v.updateFocus()
			return v, nil
		case key.Matches(msg, v.keys.BackTab), msg.Type == tea.KeyUp:
			v.focusIdx = (v.focusIdx + 2) % 3
			v.updateFocus()
			return v, nil
		case key.Matches(msg, v.keys.Enter):
			if v.focusIdx == 0 {
				v.focusIdx = 1
				v.updateFocus()
				return v, nil
			}
			return v, v.submit()
		}
	}

	var cmd tea.Cmd
	switch v.focusIdx {
	case 0:
		v.email, cmd = v.email.Update(msg)
	case 1:
		v.password, cmd = v.password.Update(msg)
	}
	return v, cmd
}

func (v *LoginView) updateFocus() {
	v.email.Blur()
	v.password.Blur()
	switch v.focusIdx {
	case 0:
		v.email.Focus()
	case 1:
		v.password.Focus()
	}
}

func (v *LoginView) submit() tea.Cmd {
	email := strings.TrimSpace(v.email.Value())
	password := v.password.Value()
	if email == "" || password == "" {
		v.errText = "Email and password are required"
		return nil
	}
	v.busy = true
	v.errText = ""
	session, ctx, signUp := v.env.Session, v.env.ctx(), v.signUp
	return func() tea.Msg {
		if signUp {
			return authDoneMsg{err: session.SignUp(ctx, email, password)}
		}
		return authDoneMsg{err: session.SignIn(ctx, email, password)}
	}
}

func authError(err error) string {
	for _, known := range []error{
		auth.ErrInvalidCredentials,
		auth.ErrEmailTaken,
		auth.ErrInvalidEmail,
		auth.ErrWeakPassword,
	} {
		if errors.Is(err, known) {
			s := known.Error()
			return strings.ToUpper(s[:1]) + s[1:]
		}
	}
	return "Could not reach the server: " + err.Error()
}

func (v *LoginView) View() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)
	inputWidth := clamp(contentWidth-10, 20, 44)

	heading, action, other := "Sign in to ProjectHub", " Sign In ", "Need an account? ctrl+t to sign up"
	if v.signUp {
		heading, action, other = "Create your account", " Sign Up ", "Have an account? ctrl+t to sign in"
	}

	emailStyle, passStyle, btnStyle := s.Input, s.Input, s.Button
	switch v.focusIdx {
	case 0:
		emailStyle = s.InputFocused
	case 1:
		passStyle = s.InputFocused
	case 2:
		btnStyle = s.ButtonFocused
	}
	if v.busy {
		action = " Please wait... "
	}

	lines := []string{
		s.Title.Render(heading),
		"",
		s.Label.Render("Email"),
		emailStyle.Width(inputWidth).Render(v.email.View()),
		s.Label.Render("Password"),
		passStyle.Width(inputWidth).Render(v.password.View()),
		"",
		btnStyle.Render(action),
	}
	if v.errText != "" {
		lines = append(lines, "", s.Error.Render(v.errText))
	}
	lines = append(lines, "", s.Muted.Render(other),
		s.Help(v.keys.Tab, v.keys.Switch))

	form := lipgloss.JoinVertical(lipgloss.Left, lines...)
	centered := lipgloss.Place(contentWidth, v.height, lipgloss.Center, lipgloss.Center, form)
	return styles.CenterView(centered, v.width, v.height)
}
