package components

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// StatusBar manages the bottom bar shown when neither a notice nor the
// minibuffer occupies it.
type StatusBar struct {
	lastRefresh time.Time
	hint        string
}

// NewStatusBar creates a new status bar.
func NewStatusBar() *StatusBar {
	return &StatusBar{hint: "s: stage  u: unstage  c: commit  h: help"}
}

// SetLastRefresh updates the refresh timestamp.
func (s *StatusBar) SetLastRefresh(t time.Time) {
	s.lastRefresh = t
}

// SetHint replaces the default key hint.
func (s *StatusBar) SetHint(hint string) {
	s.hint = hint
}

// Render renders the bar at the given width. The refresh timestamp on
// the right is always kept visible; the hint truncates first.
func (s *StatusBar) Render(width int) string {
	left := lipgloss.NewStyle().Faint(true).Render(s.hint)
	right := lipgloss.NewStyle().Faint(true).
		Render("refreshed: " + s.lastRefresh.Format("15:04:05"))

	rightW := lipgloss.Width(right)
	if rightW >= width {
		return ansi.Truncate(right, width, "…")
	}
	avail := width - rightW - 1
	if lipgloss.Width(left) > avail {
		left = ansi.Truncate(left, avail, "…")
	} else if lipgloss.Width(left) < avail {
		left = left + strings.Repeat(" ", avail-lipgloss.Width(left))
	}
	return left + " " + right
}
