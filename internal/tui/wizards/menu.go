package wizards

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// MenuItem is one entry of a command menu.
type MenuItem struct {
	Key   string
	Label string
	ID    string
}

// MenuWizard presents a small fixed set of sub-actions, each behind a
// single key. The commit, push, and stash menus are all instances of
// this; the program dispatches on Choice after the menu closes.
type MenuWizard struct {
	title  string
	items  []MenuItem
	choice string
}

// NewMenuWizard creates a menu with the given items.
func NewMenuWizard(title string, items ...MenuItem) *MenuWizard {
	return &MenuWizard{title: title, items: items}
}

// Init resets the menu.
func (w *MenuWizard) Init(repoRoot string) tea.Cmd {
	w.choice = ""
	return nil
}

// HandleKey matches an item key or dismisses the menu.
func (w *MenuWizard) HandleKey(msg tea.KeyMsg) (Action, tea.Cmd) {
	key := msg.String()
	if key == "esc" || key == "q" {
		return ActionClose, nil
	}
	for _, it := range w.items {
		if it.Key == key {
			w.choice = it.ID
			return ActionClose, nil
		}
	}
	return ActionContinue, nil
}

// Update is a no-op; menus have no async results.
func (w *MenuWizard) Update(msg tea.Msg) tea.Cmd {
	return nil
}

// RenderOverlay renders the menu.
func (w *MenuWizard) RenderOverlay(width int) []string {
	lines := make([]string, 0, len(w.items)+2)
	lines = append(lines, strings.Repeat("─", width))
	lines = append(lines, lipgloss.NewStyle().Bold(true).Render(w.title+" (esc: cancel)"))
	for _, it := range w.items {
		key := lipgloss.NewStyle().Bold(true).Render(it.Key)
		lines = append(lines, fmt.Sprintf("  %s  %s", key, it.Label))
	}
	return lines
}

// IsComplete is false until the program reads the choice; the menu
// itself finishes nothing.
func (w *MenuWizard) IsComplete() bool {
	return false
}

// Error returns any error message.
func (w *MenuWizard) Error() string {
	return ""
}

// Choice returns the picked item ID, empty when dismissed.
func (w *MenuWizard) Choice() string {
	return w.choice
}
