package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/fsnotify/fsnotify"

	"github.com/interpretive-systems/stagium/internal/config"
	"github.com/interpretive-systems/stagium/internal/gitx"
	"github.com/interpretive-systems/stagium/internal/patch"
	"github.com/interpretive-systems/stagium/internal/prefs"
	"github.com/interpretive-systems/stagium/internal/tui/ansi"
	"github.com/interpretive-systems/stagium/internal/tui/components"
	"github.com/interpretive-systems/stagium/internal/tui/wizards"
	"github.com/interpretive-systems/stagium/internal/unidiff"
)

// Program is the Bubble Tea model. It owns the state and dispatches
// input by mode.
type Program struct {
	state    *State
	layout   *Layout
	keymap   Keymap
	theme    Theme
	watcher  *fsnotify.Watcher
	diffArgs []string
}

// NewProgram wires up the model. Warnings show up as notices on the
// first renders.
func NewProgram(repoRoot string, cfg *config.Config, warnings []string) *Program {
	keymap, keyWarnings := NewKeymap(cfg.Keys)
	state := NewState(repoRoot, cfg)
	for _, w := range append(warnings, keyWarnings...) {
		state.Notices.Push("warning: " + w)
	}
	var diffArgs []string
	if cfg.Options.WsErrorHighlight != "" {
		diffArgs = append(diffArgs, "--ws-error-highlight="+cfg.Options.WsErrorHighlight)
	}
	return &Program{
		state:    state,
		layout:   NewLayout(),
		keymap:   keymap,
		theme:    NewTheme(cfg.Colors),
		diffArgs: diffArgs,
	}
}

// Run instantiates and runs the Bubble Tea program.
func Run(repoRoot string, cfg *config.Config, warnings []string) error {
	m := NewProgram(repoRoot, cfg, warnings)
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	if m.watcher != nil {
		m.watcher.Close()
	}
	return err
}

func (p *Program) Init() tea.Cmd {
	cmds := []tea.Cmd{p.refresh(), loadPrefs(p.state.RepoRoot)}
	if w, err := newWatcher(p.state.RepoRoot); err == nil {
		p.watcher = w
		cmds = append(cmds, waitForChange(w))
	} else {
		p.state.Notices.PushError("watch disabled: " + err.Error())
	}
	return tea.Batch(cmds...)
}

func (p *Program) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	s := p.state
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		s.Width = msg.Width
		s.Height = msg.Height
		p.layout.SetSize(msg.Width, msg.Height)
		return p, nil

	case tea.KeyMsg:
		return p.handleKey(msg)

	case snapshotMsg:
		if msg.err != nil {
			// Keep showing the previous snapshot; a transient failure
			// should not blank the screen.
			s.Notices.PushError("refresh: " + msg.err.Error())
			return p, nil
		}
		s.Status = msg.status
		s.Tree.SetStatus(msg.status)
		s.LastRefresh = time.Now()
		s.StatusBar.SetLastRefresh(s.LastRefresh)
		return p, nil

	case opDoneMsg:
		if msg.err != nil {
			s.Notices.PushError(msg.err.Error())
		} else {
			s.Notices.Push(msg.notice)
		}
		return p, p.refresh()

	case outputMsg:
		if msg.err != nil {
			s.Notices.PushError(msg.label + ": " + msg.err.Error())
		} else if line := firstLine(msg.out.Stdout, msg.out.Stderr); line != "" {
			s.Notices.Push(msg.label + ": " + p.theme.RenderRuns(ansi.Interpret(line)))
		} else {
			s.Notices.Push(msg.label + ": done")
		}
		return p, p.refresh()

	case editorDoneMsg:
		if msg.err != nil {
			s.Notices.PushError("commit: " + msg.err.Error())
		}
		return p, p.refresh()

	case watchMsg:
		return p, tea.Batch(p.refresh(), waitForChange(p.watcher))

	case prefsMsg:
		if msg.p.TruncateSet {
			s.Truncate = msg.p.Truncate
		}
		files, hunks := s.Tree.AutoExpand()
		if msg.p.ExpandFilesSet {
			files = msg.p.ExpandFiles
		}
		if msg.p.ExpandHunksSet {
			hunks = msg.p.ExpandHunks
		}
		s.Tree.SetAutoExpand(files, hunks)
		return p, nil
	}

	// Everything else belongs to whichever component owns the input.
	if s.Minibuffer.Active() {
		return p, s.Minibuffer.Update(msg)
	}
	if s.ActiveWizard != "" {
		wiz := s.Wizards[s.ActiveWizard]
		cmd := wiz.Update(msg)
		if wiz.IsComplete() {
			s.ActiveWizard = ""
			s.Mode = ModeStatus
			return p, tea.Batch(cmd, p.refresh())
		}
		return p, cmd
	}
	return p, nil
}

func (p *Program) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	s := p.state
	if msg.String() == "ctrl+c" {
		return p, tea.Quit
	}

	switch s.Mode {
	case ModeConfirm:
		switch msg.String() {
		case "y", "enter":
			run := s.Confirm.Run
			s.Confirm = nil
			s.Mode = ModeStatus
			return p, run
		case "n", "q", "esc":
			s.Confirm = nil
			s.Mode = ModeStatus
			s.Notices.Push("Canceled")
		}
		return p, nil

	case ModeMinibuffer, ModeShellPrompt:
		text, done, canceled, cmd := s.Minibuffer.HandleKey(msg)
		if canceled {
			s.Mode = ModeStatus
			return p, nil
		}
		if done {
			s.Mode = ModeStatus
			return p, p.runCommandLine(text)
		}
		return p, cmd

	case ModeBranchList, ModeCommitMenu:
		wiz := s.Wizards[s.ActiveWizard]
		action, cmd := wiz.HandleKey(msg)
		if action == wizards.ActionClose {
			return p.closeWizard(cmd)
		}
		return p, cmd
	}

	if s.ShowHelp {
		switch msg.String() {
		case "q":
			return p, tea.Quit
		case "h", "esc":
			s.ShowHelp = false
		}
		return p, nil
	}

	switch p.keymap.Lookup(msg.String()) {
	case ActionQuit:
		return p, tea.Quit
	case ActionMoveUp:
		s.Tree.MoveUp(1)
	case ActionMoveDown:
		s.Tree.MoveDown(1)
	case ActionGoToTop:
		s.Tree.GotoTop()
	case ActionGoToBottom:
		s.Tree.GotoBottom()
	case ActionToggleExpand:
		s.Tree.ToggleExpand()
	case ActionStage:
		return p, p.stageCurrent()
	case ActionStageAll:
		return p, opCmd("Staged all changes", func() error {
			return gitx.StageAll(s.RepoRoot)
		})
	case ActionUnstage:
		return p, p.unstageCurrent()
	case ActionUnstageAll:
		return p, opCmd("Unstaged all changes", func() error {
			return gitx.UnstageAll(s.RepoRoot)
		})
	case ActionDiscard:
		p.discardCurrent()
	case ActionRefresh:
		return p, p.refresh()
	case ActionOpenBranches:
		return p, p.openWizard("branch", ModeBranchList)
	case ActionOpenCommitMenu:
		return p, p.openWizard("commit", ModeCommitMenu)
	case ActionOpenPushMenu:
		return p, p.openWizard("push", ModeCommitMenu)
	case ActionOpenStashMenu:
		return p, p.openWizard("stash", ModeCommitMenu)
	case ActionPull:
		return p, outputCmd("git pull", func() (gitx.Output, error) {
			return gitx.Pull(s.RepoRoot)
		})
	case ActionGitCommand:
		s.Minibuffer.Start(MinibufferGit)
		s.Mode = ModeMinibuffer
		return p, textinput.Blink
	case ActionShellCommand:
		s.Minibuffer.Start(MinibufferShell)
		s.Mode = ModeShellPrompt
		return p, textinput.Blink
	case ActionToggleTruncate:
		s.Truncate = !s.Truncate
		p.savePref(prefs.SaveTruncate, s.Truncate)
	case ActionToggleExpandFiles:
		files, hunks := s.Tree.AutoExpand()
		s.Tree.SetAutoExpand(!files, hunks)
		p.savePref(prefs.SaveExpandFiles, !files)
	case ActionToggleExpandHunks:
		files, hunks := s.Tree.AutoExpand()
		s.Tree.SetAutoExpand(files, !hunks)
		p.savePref(prefs.SaveExpandHunks, !hunks)
	case ActionToggleHelp:
		s.ShowHelp = true
	}
	return p, nil
}

func (p *Program) savePref(save func(string, bool) error, v bool) {
	if err := save(p.state.RepoRoot, v); err != nil {
		p.state.Notices.PushError(err.Error())
	}
}

func (p *Program) refresh() tea.Cmd {
	return loadSnapshot(p.state.RepoRoot, p.diffArgs)
}

func (p *Program) openWizard(name string, mode Mode) tea.Cmd {
	s := p.state
	s.ActiveWizard = name
	s.Mode = mode
	return s.Wizards[name].Init(s.RepoRoot)
}

// closeWizard leaves the active wizard. Menus carry a picked sub-action
// that still needs dispatching.
func (p *Program) closeWizard(cmd tea.Cmd) (tea.Model, tea.Cmd) {
	s := p.state
	wiz := s.Wizards[s.ActiveWizard]
	name := s.ActiveWizard
	s.ActiveWizard = ""
	s.Mode = ModeStatus
	if menu, ok := wiz.(*wizards.MenuWizard); ok {
		return p, p.dispatchMenu(name, menu.Choice())
	}
	return p, tea.Batch(cmd, p.refresh())
}

func (p *Program) dispatchMenu(name, choice string) tea.Cmd {
	s := p.state
	switch name + "/" + choice {
	case "commit/commit":
		return p.execCommit(gitx.CommitPlain)
	case "commit/extend":
		return p.execCommit(gitx.CommitExtend)
	case "commit/amend":
		return p.execCommit(gitx.CommitAmend)
	case "push/push":
		return outputCmd("git push", func() (gitx.Output, error) {
			return gitx.Push(s.RepoRoot, false)
		})
	case "push/force":
		p.confirm("Force push current branch?", outputCmd("git push --force-with-lease", func() (gitx.Output, error) {
			return gitx.Push(s.RepoRoot, true)
		}))
		return nil
	case "stash/stash":
		return outputCmd("git stash", func() (gitx.Output, error) {
			return gitx.Stash(s.RepoRoot)
		})
	case "stash/pop":
		return outputCmd("git stash pop", func() (gitx.Output, error) {
			return gitx.StashPop(s.RepoRoot)
		})
	}
	return nil
}

// execCommit hands the terminal to git so the configured editor works.
func (p *Program) execCommit(mode gitx.CommitMode) tea.Cmd {
	return tea.ExecProcess(gitx.CommitCmd(p.state.RepoRoot, mode), func(err error) tea.Msg {
		return editorDoneMsg{err: err}
	})
}

func (p *Program) runCommandLine(text string) tea.Cmd {
	s := p.state
	if s.Minibuffer.Kind() == MinibufferShell {
		return outputCmd("! "+text, func() (gitx.Output, error) {
			return gitx.Shell(s.RepoRoot, text)
		})
	}
	args := strings.Fields(text)
	return outputCmd(":"+text, func() (gitx.Output, error) {
		return gitx.Git(s.RepoRoot, args)
	})
}

func (p *Program) confirm(prompt string, run tea.Cmd) {
	p.state.Confirm = &Confirm{Prompt: prompt, Run: run}
	p.state.Mode = ModeConfirm
}

func (p *Program) stageCurrent() tea.Cmd {
	s := p.state
	sec, sel, ok := s.Tree.CurrentSelection()
	if !ok || s.Status == nil {
		return nil
	}
	if sec == components.SectionStaged {
		s.Notices.Push("Already staged")
		return nil
	}
	f := s.Status.Unstaged[sel.File]
	if len(f.Hunks) == 0 {
		return opCmd("Staged "+f.Path, func() error {
			return gitx.StageFile(s.RepoRoot, f.Path)
		})
	}
	text, err := patch.Synthesize(s.Status.Unstaged, sel, patch.Stage)
	if err != nil {
		s.Notices.PushError(err.Error())
		return nil
	}
	return opCmd("Staged "+describeSelection(sel, f), func() error {
		return gitx.Apply(s.RepoRoot, text, gitx.ApplyIndex)
	})
}

func (p *Program) unstageCurrent() tea.Cmd {
	s := p.state
	sec, sel, ok := s.Tree.CurrentSelection()
	if !ok || s.Status == nil {
		return nil
	}
	if sec == components.SectionUnstaged {
		s.Notices.Push("Not staged")
		return nil
	}
	f := s.Status.Staged[sel.File]
	if len(f.Hunks) == 0 {
		return opCmd("Unstaged "+f.Path, func() error {
			return gitx.UnstageFile(s.RepoRoot, f.Path)
		})
	}
	// Unstage patches come out pre-inverted, so they apply to the index
	// the same way stage patches do.
	text, err := patch.Synthesize(s.Status.Staged, sel, patch.Unstage)
	if err != nil {
		s.Notices.PushError(err.Error())
		return nil
	}
	return opCmd("Unstaged "+describeSelection(sel, f), func() error {
		return gitx.Apply(s.RepoRoot, text, gitx.ApplyIndex)
	})
}

func (p *Program) discardCurrent() {
	s := p.state
	sec, sel, ok := s.Tree.CurrentSelection()
	if !ok || s.Status == nil {
		return
	}
	if sec == components.SectionStaged {
		s.Notices.Push("Unstage before discarding")
		return
	}
	f := s.Status.Unstaged[sel.File]
	if f.Kind == unidiff.Untracked {
		p.confirm("Delete untracked file "+f.Path+"?", opCmd("Deleted "+f.Path, func() error {
			return gitx.DiscardFile(s.RepoRoot, f.Path, true)
		}))
		return
	}
	if sel.Hunk < 0 || len(f.Hunks) == 0 {
		p.confirm("Discard all changes to "+f.Path+"?", opCmd("Discarded "+f.Path, func() error {
			return gitx.DiscardFile(s.RepoRoot, f.Path, false)
		}))
		return
	}
	text, err := patch.Synthesize(s.Status.Unstaged, sel, patch.Discard)
	if err != nil {
		s.Notices.PushError(err.Error())
		return
	}
	what := describeSelection(sel, f)
	p.confirm("Discard "+what+"?", opCmd("Discarded "+what, func() error {
		return gitx.Apply(s.RepoRoot, text, gitx.ApplyReverseWorktree)
	}))
}

func describeSelection(sel patch.Selection, f unidiff.FileEntry) string {
	switch {
	case sel.Hunk < 0:
		return f.Path
	case len(sel.Lines) > 0:
		return "line in " + f.Path
	default:
		return "hunk in " + f.Path
	}
}

func firstLine(candidates ...string) string {
	for _, c := range candidates {
		for _, line := range strings.Split(c, "\n") {
			if strings.TrimSpace(line) != "" {
				return strings.TrimRight(line, "\r")
			}
		}
	}
	return ""
}

func (p *Program) View() string {
	s := p.state
	if s.Width == 0 || s.Height == 0 {
		return "Loading…"
	}

	var overlay []string
	if s.ShowHelp {
		overlay = p.helpOverlayLines()
	} else if s.ActiveWizard != "" {
		overlay = s.Wizards[s.ActiveWizard].RenderOverlay(s.Width)
	}

	content := s.Tree.Render(p.layout.ContentHeight(len(overlay)), s.Width, s.Truncate, p.theme)

	return p.layout.RenderFrame(p.topLeftTitle(), p.topRightTitle(), content, overlay, p.bottomBar())
}

func (p *Program) topLeftTitle() string {
	st := p.state.Status
	if st == nil {
		return "stagium"
	}
	var b strings.Builder
	b.WriteString("stagium | ")
	switch {
	case st.Detached:
		b.WriteString("detached HEAD")
	case st.NoCommits:
		b.WriteString(st.Branch + " (no commits yet)")
	default:
		b.WriteString(st.Branch)
	}
	if st.Ahead > 0 {
		fmt.Fprintf(&b, " ↑%d", st.Ahead)
	}
	if st.Behind > 0 {
		fmt.Fprintf(&b, " ↓%d", st.Behind)
	}
	return p.theme.Text(b.String())
}

func (p *Program) topRightTitle() string {
	st := p.state.Status
	if st == nil || st.Head == nil {
		return ""
	}
	return p.theme.FaintText(st.Head.Hash + " " + st.Head.Subject)
}

// bottomBar picks the one occupant of the bottom line: an active
// minibuffer wins, then a pending confirm, then the oldest notice, then
// the regular status bar. Notices drain one per frame.
func (p *Program) bottomBar() string {
	s := p.state
	if s.Minibuffer.Active() {
		return s.Minibuffer.View()
	}
	if s.Mode == ModeConfirm && s.Confirm != nil {
		return p.theme.ErrorText(s.Confirm.Prompt + " (y/n)")
	}
	if n, ok := s.Notices.Pop(); ok {
		if n.IsErr {
			return p.theme.ErrorText(n.Text)
		}
		return n.Text
	}
	return s.StatusBar.Render(s.Width)
}

func (p *Program) helpOverlayLines() []string {
	k := p.theme.KeyText
	lines := []string{
		strings.Repeat("─", p.state.Width),
		p.theme.HeadingText("Keys") + "  (h or esc closes)",
		k("j/k") + " move    " + k("g/G") + " top/bottom    " + k("tab") + " expand/collapse",
		k("s") + " stage    " + k("u") + " unstage    " + k("S/U") + " all    " + k("x") + " discard",
		k("c") + " commit    " + k("p") + " push    " + k("F") + " pull    " + k("z") + " stash    " + k("b") + " branches",
		k(":") + " git command    " + k("!") + " shell command    " + k("r") + " refresh",
		k("w") + " truncate    " + k("e/E") + " auto-expand files/hunks    " + k("q") + " quit",
	}
	return lines
}
