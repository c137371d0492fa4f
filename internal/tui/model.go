package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/interpretive-systems/stagium/internal/config"
	"github.com/interpretive-systems/stagium/internal/tui/components"
	"github.com/interpretive-systems/stagium/internal/tui/wizards"
	"github.com/interpretive-systems/stagium/internal/unidiff"
)

// Mode is the top-level input mode. Exactly one mode owns the keyboard
// at any time.
type Mode int

const (
	ModeStatus Mode = iota
	ModeBranchList
	ModeCommitMenu
	ModeMinibuffer
	ModeShellPrompt
	ModeConfirm
)

// Confirm holds a pending destructive action awaiting a y/n answer.
type Confirm struct {
	Prompt string
	Run    tea.Cmd
}

// State holds all application state.
type State struct {
	RepoRoot string
	Status   *unidiff.RepoStatus

	Mode        Mode
	Width       int
	Height      int
	ShowHelp    bool
	Truncate    bool
	LastRefresh time.Time

	Tree       *components.StatusTree
	StatusBar  *components.StatusBar
	Minibuffer *Minibuffer
	Notices    *Notices

	Wizards      map[string]wizards.Wizard
	ActiveWizard string // "", "branch", "commit", "push", "stash"
	Confirm      *Confirm
}

// NewState creates initial application state.
func NewState(repoRoot string, cfg *config.Config) *State {
	return &State{
		RepoRoot:   repoRoot,
		Truncate:   cfg.Options.TruncateLines,
		Tree:       components.NewStatusTree(cfg.Options.ScrollLookahead, cfg.Options.AutoExpandFiles, cfg.Options.AutoExpandHunks),
		StatusBar:  components.NewStatusBar(),
		Minibuffer: NewMinibuffer(),
		Notices:    &Notices{},
		Wizards: map[string]wizards.Wizard{
			"branch": wizards.NewBranchWizard(cfg.Options.SortBranches),
			"commit": wizards.NewMenuWizard("Commit",
				wizards.MenuItem{Key: "c", Label: "commit", ID: "commit"},
				wizards.MenuItem{Key: "e", Label: "extend previous commit (no message edit)", ID: "extend"},
				wizards.MenuItem{Key: "a", Label: "amend previous commit", ID: "amend"},
			),
			"push": wizards.NewMenuWizard("Push",
				wizards.MenuItem{Key: "p", Label: "push", ID: "push"},
				wizards.MenuItem{Key: "f", Label: "force push (--force-with-lease)", ID: "force"},
			),
			"stash": wizards.NewMenuWizard("Stash",
				wizards.MenuItem{Key: "z", Label: "stash working tree", ID: "stash"},
				wizards.MenuItem{Key: "p", Label: "pop latest stash", ID: "pop"},
			),
		},
	}
}
