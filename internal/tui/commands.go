package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/interpretive-systems/stagium/internal/gitx"
	"github.com/interpretive-systems/stagium/internal/prefs"
)

// loadSnapshot refreshes the repository snapshot.
func loadSnapshot(repoRoot string, diffArgs []string) tea.Cmd {
	return func() tea.Msg {
		st, err := gitx.Snapshot(repoRoot, diffArgs...)
		return snapshotMsg{status: st, err: err}
	}
}

// opCmd runs a state-changing git operation off the event loop.
func opCmd(notice string, fn func() error) tea.Cmd {
	return func() tea.Msg {
		return opDoneMsg{notice: notice, err: fn()}
	}
}

// outputCmd runs an output-producing command off the event loop.
func outputCmd(label string, fn func() (gitx.Output, error)) tea.Cmd {
	return func() tea.Msg {
		out, err := fn()
		return outputMsg{label: label, out: out, err: err}
	}
}

// loadPrefs loads per-repo preferences.
func loadPrefs(repoRoot string) tea.Cmd {
	return func() tea.Msg {
		return prefsMsg{p: prefs.Load(repoRoot)}
	}
}
