package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/interpretive-systems/stagium/internal/config"
	"github.com/interpretive-systems/stagium/internal/tui/ansi"
)

// Theme renders text under the semantic palette from the config file.
type Theme struct {
	colors config.Colors
}

// NewTheme builds a theme from the configured palette.
func NewTheme(c config.Colors) Theme {
	return Theme{colors: c}
}

func (t Theme) paint(s, color string) string {
	if color == "" {
		return s
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render(s)
}

// Text renders under the configured base foreground/background.
func (t Theme) Text(s string) string {
	st := lipgloss.NewStyle()
	if t.colors.Foreground != "" {
		st = st.Foreground(lipgloss.Color(t.colors.Foreground))
	}
	if t.colors.Background != "" {
		st = st.Background(lipgloss.Color(t.colors.Background))
	}
	return st.Render(s)
}

func (t Theme) HeadingText(s string) string {
	st := lipgloss.NewStyle().Bold(true)
	if t.colors.Heading != "" {
		st = st.Foreground(lipgloss.Color(t.colors.Heading))
	}
	return st.Render(s)
}

func (t Theme) HunkHeadText(s string) string { return t.paint(s, t.colors.HunkHead) }
func (t Theme) AddText(s string) string      { return t.paint(s, t.colors.Addition) }
func (t Theme) DelText(s string) string      { return t.paint(s, t.colors.Deletion) }
func (t Theme) KeyText(s string) string      { return t.paint(s, t.colors.Key) }
func (t Theme) ErrorText(s string) string    { return t.paint(s, t.colors.Error) }

func (t Theme) FaintText(s string) string {
	return lipgloss.NewStyle().Faint(true).Render(s)
}

func (t Theme) CursorText(s string) string {
	return lipgloss.NewStyle().Reverse(true).Render(s)
}

// RenderRuns re-renders interpreted subprocess output with its original
// styling so colored notices stay colored.
func (t Theme) RenderRuns(runs []ansi.Run) string {
	var out string
	for _, r := range runs {
		if r.Text == "" {
			continue
		}
		st := lipgloss.NewStyle()
		if r.Style.Fg != "" {
			st = st.Foreground(lipgloss.Color(r.Style.Fg))
		}
		if r.Style.Bg != "" {
			st = st.Background(lipgloss.Color(r.Style.Bg))
		}
		st = st.Bold(r.Style.Bold).Faint(r.Style.Faint).Italic(r.Style.Italic).
			Underline(r.Style.Underline).Reverse(r.Style.Reverse)
		out += st.Render(r.Text)
	}
	return out
}
