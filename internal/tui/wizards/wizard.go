package wizards

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Action represents what the wizard wants the parent to do.
type Action int

const (
	ActionContinue Action = iota // Keep processing in the wizard
	ActionClose                  // Close the wizard
)

// Wizard is the interface all modal overlays implement. The program
// closes a wizard when HandleKey returns ActionClose or when an async
// result marks it complete.
type Wizard interface {
	// Init resets the wizard for a fresh opening.
	Init(repoRoot string) tea.Cmd

	// HandleKey processes keyboard input while the wizard is active.
	HandleKey(msg tea.KeyMsg) (Action, tea.Cmd)

	// Update processes tea messages (async results).
	Update(msg tea.Msg) tea.Cmd

	// RenderOverlay returns the wizard UI lines.
	RenderOverlay(width int) []string

	// IsComplete returns true once the wizard finished successfully.
	IsComplete() bool

	// Error returns any error message.
	Error() string
}
