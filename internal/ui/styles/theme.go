package styles

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
	"github.com/tgienger/projecthub/internal/models"
)

// Theme is a color scheme
type Theme struct {
	Name string

	Background    lipgloss.Color
	Foreground    lipgloss.Color
	ForegroundDim lipgloss.Color

	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Accent    lipgloss.Color

	Success lipgloss.Color
	Warning lipgloss.Color
	Error   lipgloss.Color

	Border      lipgloss.Color
	BorderFocus lipgloss.Color
	Selection   lipgloss.Color
}

// TokyoNight is the default theme
var TokyoNight = Theme{
	Name: "Tokyo Night",

	Background:    lipgloss.Color("#1a1b26"),
	Foreground:    lipgloss.Color("#c0caf5"),
	ForegroundDim: lipgloss.Color("#565f89"),

	Primary:   lipgloss.Color("#7aa2f7"),
	Secondary: lipgloss.Color("#bb9af7"),
	Accent:    lipgloss.Color("#7dcfff"),

	Success: lipgloss.Color("#9ece6a"),
	Warning: lipgloss.Color("#e0af68"),
	Error:   lipgloss.Color("#f7768e"),

	Border:      lipgloss.Color("#3b4261"),
	BorderFocus: lipgloss.Color("#7aa2f7"),
	Selection:   lipgloss.Color("#33467c"),
}

var Current = TokyoNight

// MaxWidth caps the layout; three board columns need more than the classic 80.
const MaxWidth = 108

// ContentWidth returns the width to lay out in.
func ContentWidth(terminalWidth int) int {
	if terminalWidth <= 0 || terminalWidth > MaxWidth {
		return MaxWidth
	}
	return terminalWidth
}

// CenterView centers content horizontally on terminals wider than MaxWidth.
func CenterView(content string, terminalWidth, terminalHeight int) string {
	if terminalWidth <= MaxWidth {
		return content
	}
	return lipgloss.Place(terminalWidth, terminalHeight, lipgloss.Center, lipgloss.Top, content)
}

// Styles holds the pre-computed styles
type Styles struct {
	Header     lipgloss.Style
	Title      lipgloss.Style
	TitleMuted lipgloss.Style
	Muted      lipgloss.Style

	ListItem     lipgloss.Style
	ListSelected lipgloss.Style

	Stat      lipgloss.Style
	StatValue lipgloss.Style

	Tab       lipgloss.Style
	TabActive lipgloss.Style

	Column        lipgloss.Style
	ColumnFocused lipgloss.Style
	ColumnTitle   lipgloss.Style
	Card          lipgloss.Style
	CardSelected  lipgloss.Style

	Button         lipgloss.Style
	ButtonFocused  lipgloss.Style
	ButtonDisabled lipgloss.Style
	Danger         lipgloss.Style

	Input        lipgloss.Style
	InputFocused lipgloss.Style
	Label        lipgloss.Style

	Dirty  lipgloss.Style
	Error  lipgloss.Style
	Notice lipgloss.Style
	Dialog lipgloss.Style

	HelpKey  lipgloss.Style
	HelpDesc lipgloss.Style
	Footer   lipgloss.Style
}

// NewStyles builds styles from the current theme
func NewStyles() *Styles {
	t := Current
	box := lipgloss.NewStyle().Border(lipgloss.RoundedBorder())

	return &Styles{
		Header: lipgloss.NewStyle().
			Padding(0, 1).
			MarginBottom(1),
		Title: lipgloss.NewStyle().
			Foreground(t.Primary).
			Bold(true),
		TitleMuted: lipgloss.NewStyle().
			Foreground(t.ForegroundDim).
			Italic(true),
		Muted: lipgloss.NewStyle().
			Foreground(t.ForegroundDim),

		ListItem: lipgloss.NewStyle().
			Foreground(t.Foreground).
			Padding(0, 1),
		ListSelected: lipgloss.NewStyle().
			Foreground(t.Primary).
			Background(t.Selection).
			Padding(0, 1).
			Bold(true),

		Stat: box.
			BorderForeground(t.Border).
			Padding(0, 2).
			MarginRight(1),
		StatValue: lipgloss.NewStyle().
			Foreground(t.Accent).
			Bold(true),

		Tab: lipgloss.NewStyle().
			Foreground(t.ForegroundDim).
			Padding(0, 2),
		TabActive: lipgloss.NewStyle().
			Foreground(t.Background).
			Background(t.Primary).
			Padding(0, 2).
			Bold(true),

		Column: box.
			BorderForeground(t.Border).
			Padding(0, 1),
		ColumnFocused: box.
			BorderForeground(t.BorderFocus).
			Padding(0, 1),
		ColumnTitle: lipgloss.NewStyle().
			Foreground(t.Secondary).
			Bold(true),
		Card: lipgloss.NewStyle().
			Foreground(t.Foreground).
			PaddingLeft(1).
			MarginBottom(1),
		CardSelected: lipgloss.NewStyle().
			Foreground(t.Foreground).
			Background(t.Selection).
			PaddingLeft(1).
			MarginBottom(1),

		Button: box.
			Foreground(t.Foreground).
			BorderForeground(t.Border).
			Padding(0, 2),
		ButtonFocused: box.
			Foreground(t.Primary).
			BorderForeground(t.BorderFocus).
			Padding(0, 2).
			Bold(true),
		ButtonDisabled: box.
			Foreground(t.ForegroundDim).
			BorderForeground(t.Border).
			Padding(0, 2).
			Faint(true),
		Danger: lipgloss.NewStyle().
			Foreground(t.Error).
			Bold(true),

		Input: box.
			Foreground(t.Foreground).
			BorderForeground(t.Border).
			Padding(0, 1),
		InputFocused: box.
			Foreground(t.Foreground).
			BorderForeground(t.BorderFocus).
			Padding(0, 1),
		Label: lipgloss.NewStyle().
			Foreground(t.ForegroundDim),

		Dirty: lipgloss.NewStyle().
			Foreground(t.Warning),
		Error: lipgloss.NewStyle().
			Foreground(t.Error),
		Notice: lipgloss.NewStyle().
			Foreground(t.Success),
		Dialog: lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(t.Error).
			Padding(1, 2),

		HelpKey: lipgloss.NewStyle().
			Foreground(t.Primary).
			Bold(true),
		HelpDesc: lipgloss.NewStyle().
			Foreground(t.ForegroundDim),
		Footer: lipgloss.NewStyle().
			MarginTop(1).
			Padding(0, 1),
	}
}

// Priority colors a task priority badge.
func (s *Styles) Priority(p models.Priority) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true)
	switch p {
	case models.PriorityHigh:
		return base.Foreground(Current.Error)
	case models.PriorityMedium:
		return base.Foreground(Current.Warning)
	}
	return base.Foreground(Current.Success)
}

// Help renders bindings as a one-line footer.
func (s *Styles) Help(bindings ...key.Binding) string {
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		if !b.Enabled() {
			continue
		}
		h := b.Help()
		parts = append(parts, s.HelpKey.Render(h.Key)+" "+s.HelpDesc.Render(h.Desc))
	}
	return s.Footer.Render(strings.Join(parts, s.HelpDesc.Render(" • ")))
}
