package wizards

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func key(s string) tea.KeyMsg {
	switch s {
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func TestMenuChoice(t *testing.T) {
	m := NewMenuWizard("Commit",
		MenuItem{Key: "c", Label: "commit", ID: "commit"},
		MenuItem{Key: "a", Label: "amend", ID: "amend"},
	)
	m.Init(".")

	action, _ := m.HandleKey(key("x"))
	assert.Equal(t, ActionContinue, action)

	action, _ = m.HandleKey(key("a"))
	assert.Equal(t, ActionClose, action)
	assert.Equal(t, "amend", m.Choice())

	m.Init(".")
	action, _ = m.HandleKey(key("esc"))
	assert.Equal(t, ActionClose, action)
	assert.Equal(t, "", m.Choice())
}

func TestMenuOverlayListsItems(t *testing.T) {
	m := NewMenuWizard("Push", MenuItem{Key: "f", Label: "force push", ID: "force"})
	out := strings.Join(m.RenderOverlay(40), "\n")
	assert.Contains(t, out, "Push (esc: cancel)")
	assert.Contains(t, out, "force push")
}

func TestBranchWizardListNavigation(t *testing.T) {
	w := NewBranchWizard("")
	w.Init(".")
	w.Update(BranchListMsg{Names: []string{"dev", "main", "topic"}, Current: "main"})

	// cursor starts on the current branch
	require.Equal(t, 1, w.index)

	w.HandleKey(key("j"))
	assert.Equal(t, 2, w.index)
	w.HandleKey(key("j"))
	assert.Equal(t, 2, w.index)
	w.HandleKey(key("k"))
	w.HandleKey(key("k"))
	assert.Equal(t, 0, w.index)

	// checking out the current branch just closes
	w.index = 1
	action, cmd := w.HandleKey(key("enter"))
	assert.Equal(t, ActionClose, action)
	assert.Nil(t, cmd)

	out := strings.Join(w.RenderOverlay(40), "\n")
	assert.Contains(t, out, "[*] main")
}

func TestBranchWizardCheckoutResult(t *testing.T) {
	w := NewBranchWizard("")
	w.Init(".")
	w.Update(BranchListMsg{Names: []string{"dev", "main"}, Current: "main"})

	w.index = 0
	action, cmd := w.HandleKey(key("enter"))
	assert.Equal(t, ActionContinue, action)
	require.NotNil(t, cmd)
	assert.True(t, w.running)

	w.Update(BranchResultMsg{Err: errors.New("worktree dirty")})
	assert.False(t, w.IsComplete())
	assert.Contains(t, w.Error(), "worktree dirty")

	w.Update(BranchResultMsg{})
	assert.True(t, w.IsComplete())
}

func TestBranchWizardNewBranchName(t *testing.T) {
	w := NewBranchWizard("")
	w.Init(".")
	w.Update(BranchListMsg{Names: []string{"main"}, Current: "main"})

	w.HandleKey(key("n"))
	require.Equal(t, 1, w.step)

	_, cmd := w.HandleKey(key("enter"))
	assert.Nil(t, cmd)
	assert.Contains(t, w.Error(), "empty branch name")

	for _, r := range "feat" {
		w.HandleKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	_, cmd = w.HandleKey(key("enter"))
	require.NotNil(t, cmd)
	assert.True(t, w.running)
}
