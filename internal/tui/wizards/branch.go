package wizards

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/interpretive-systems/stagium/internal/gitx"
)

// BranchListMsg contains the list of branches.
type BranchListMsg struct {
	Names   []string
	Current string
	Err     error
}

// BranchResultMsg is sent when a checkout or create completes.
type BranchResultMsg struct {
	Err error
}

// BranchWizard lists branches for checkout and creates new ones.
type BranchWizard struct {
	repoRoot string
	sortKey  string
	step     int // 0: list, 1: new branch name
	branches []string
	current  string
	index    int
	input    textinput.Model
	running  bool
	err      string
	done     bool
}

// NewBranchWizard creates a branch wizard. sortKey is passed through to
// the branch listing.
func NewBranchWizard(sortKey string) *BranchWizard {
	return &BranchWizard{sortKey: sortKey}
}

// Init resets the wizard and starts loading branches.
func (w *BranchWizard) Init(repoRoot string) tea.Cmd {
	w.repoRoot = repoRoot
	w.step = 0
	w.branches = nil
	w.current = ""
	w.index = 0
	w.running = false
	w.err = ""
	w.done = false
	return w.loadBranches()
}

// HandleKey processes keyboard input.
func (w *BranchWizard) HandleKey(msg tea.KeyMsg) (Action, tea.Cmd) {
	if w.step == 1 {
		return w.handleNewBranchName(msg)
	}
	switch msg.String() {
	case "esc", "q":
		if !w.running {
			return ActionClose, nil
		}
	case "j", "down":
		if len(w.branches) > 0 && w.index < len(w.branches)-1 {
			w.index++
		}
	case "k", "up":
		if w.index > 0 {
			w.index--
		}
	case "n":
		ti := textinput.New()
		ti.Placeholder = "Branch name"
		ti.Prompt = "> "
		ti.Focus()
		w.input = ti
		w.step = 1
		w.err = ""
	case "enter":
		if w.running || len(w.branches) == 0 {
			return ActionContinue, nil
		}
		name := w.branches[w.index]
		if name == w.current {
			return ActionClose, nil
		}
		w.running = true
		w.err = ""
		return ActionContinue, w.runCheckout(name)
	}
	return ActionContinue, nil
}

func (w *BranchWizard) handleNewBranchName(msg tea.KeyMsg) (Action, tea.Cmd) {
	switch msg.String() {
	case "esc":
		w.step = 0
		w.err = ""
		return ActionContinue, nil
	case "enter":
		name := strings.TrimSpace(w.input.Value())
		if name == "" {
			w.err = "empty branch name"
			return ActionContinue, nil
		}
		w.running = true
		w.err = ""
		return ActionContinue, w.runCreateBranch(name)
	}
	var cmd tea.Cmd
	w.input, cmd = w.input.Update(msg)
	return ActionContinue, cmd
}

// Update processes async results.
func (w *BranchWizard) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case BranchListMsg:
		if msg.Err != nil {
			w.err = msg.Err.Error()
			w.branches = nil
			w.current = ""
			w.index = 0
			return nil
		}
		w.branches = msg.Names
		w.current = msg.Current
		w.err = ""
		w.index = 0
		for i, n := range w.branches {
			if n == w.current {
				w.index = i
				break
			}
		}
	case BranchResultMsg:
		w.running = false
		if msg.Err != nil {
			w.err = msg.Err.Error()
			w.done = false
		} else {
			w.err = ""
			w.done = true
		}
	}
	return nil
}

// RenderOverlay renders the wizard UI.
func (w *BranchWizard) RenderOverlay(width int) []string {
	lines := make([]string, 0, len(w.branches)+4)
	lines = append(lines, strings.Repeat("─", width))
	if w.step == 1 {
		title := lipgloss.NewStyle().Bold(true).
			Render("New branch name (enter: create & checkout, esc: back)")
		lines = append(lines, title, w.input.View())
		return w.appendStatus(lines)
	}

	title := lipgloss.NewStyle().Bold(true).
		Render("Branches (enter: checkout, n: new, esc: cancel)")
	lines = append(lines, title)
	if len(w.branches) == 0 && w.err == "" {
		lines = append(lines, lipgloss.NewStyle().Faint(true).Render("Loading branches…"))
		return lines
	}
	for i, n := range w.branches {
		cur := "  "
		if i == w.index {
			cur = "> "
		}
		mark := "   "
		if n == w.current {
			mark = "[*]"
		}
		lines = append(lines, fmt.Sprintf("%s%s %s", cur, mark, n))
	}
	return w.appendStatus(lines)
}

func (w *BranchWizard) appendStatus(lines []string) []string {
	if w.running {
		lines = append(lines, lipgloss.NewStyle().Faint(true).Render("Working…"))
	}
	if w.err != "" {
		lines = append(lines, lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Render("Error: ")+w.err)
	}
	return lines
}

// IsComplete returns true once a checkout or create succeeded.
func (w *BranchWizard) IsComplete() bool {
	return w.done
}

// Error returns any error message.
func (w *BranchWizard) Error() string {
	return w.err
}

func (w *BranchWizard) loadBranches() tea.Cmd {
	return func() tea.Msg {
		names, current, err := gitx.ListBranches(w.repoRoot, w.sortKey)
		return BranchListMsg{Names: names, Current: current, Err: err}
	}
}

func (w *BranchWizard) runCheckout(branch string) tea.Cmd {
	return func() tea.Msg {
		return BranchResultMsg{Err: gitx.Checkout(w.repoRoot, branch)}
	}
}

func (w *BranchWizard) runCreateBranch(name string) tea.Cmd {
	return func() tea.Msg {
		return BranchResultMsg{Err: gitx.CheckoutNew(w.repoRoot, name)}
	}
}
