// Package gitx shells out to the git binary. Every operation returns an
// explicit error carrying captured stderr; a non-zero exit never panics
// the caller.
package gitx

import (
	"bytes"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/interpretive-systems/stagium/internal/unidiff"
)

// Output is the captured result of one subprocess run. Stdout is kept
// even on failure so callers can still display it.
type Output struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

func run(repoRoot string, args ...string) (Output, error) {
	cmd := exec.Command("git", append([]string{"-C", repoRoot}, args...)...)
	return runCmd(cmd, "git "+args[0])
}

func runCmd(cmd *exec.Cmd, label string) (Output, error) {
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	out := Output{Stdout: stdout.String(), Stderr: stderr.String()}
	if err != nil {
		var ee *exec.ExitError
		if errors.As(err, &ee) {
			out.ExitCode = ee.ExitCode()
		}
		msg := strings.TrimSpace(out.Stderr)
		if msg == "" {
			msg = strings.TrimSpace(out.Stdout)
		}
		return out, fmt.Errorf("%s: %w: %s", label, err, msg)
	}
	return out, nil
}

// RepoRoot resolves the repository root from a given path (or current dir).
func RepoRoot(path string) (string, error) {
	if path == "" {
		path = "."
	}
	out, err := run(path, "rev-parse", "--show-toplevel")
	if err != nil {
		return "", fmt.Errorf("rev-parse: %w", err)
	}
	root := strings.TrimSpace(out.Stdout)
	if root == "" {
		return "", errors.New("empty git root")
	}
	return root, nil
}

// InitRepo creates a new repository at path.
func InitRepo(path string) error {
	cmd := exec.Command("git", "init", path)
	_, err := runCmd(cmd, "git init")
	return err
}

// GitDir returns the repository's .git directory, for change watching.
func GitDir(repoRoot string) (string, error) {
	out, err := run(repoRoot, "rev-parse", "--absolute-git-dir")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out.Stdout), nil
}

// Snapshot reads the full working state in one pass: branch header,
// unstaged and staged diffs, untracked and conflicted paths. The result
// is a fresh model; callers replace their previous one wholesale.
// extraDiffArgs is appended to both diff invocations (whitespace
// highlighting and similar display options).
func Snapshot(repoRoot string, extraDiffArgs ...string) (*unidiff.RepoStatus, error) {
	statusOut, err := run(repoRoot, "status", "--porcelain=v2", "--branch")
	if err != nil {
		return nil, err
	}
	info := unidiff.ParseStatus(statusOut.Stdout)

	diffArgs := append([]string{"--no-color", "--no-ext-diff", "--diff-filter=ACDMRTXB"}, extraDiffArgs...)

	worktreeOut, err := run(repoRoot, append([]string{"diff"}, diffArgs...)...)
	if err != nil {
		return nil, err
	}
	unstaged, err := unidiff.ParseDiff(worktreeOut.Stdout)
	if err != nil {
		return nil, err
	}

	var staged []unidiff.FileEntry
	if !info.NoCommits {
		stagedOut, err := run(repoRoot, append([]string{"diff", "--cached"}, diffArgs...)...)
		if err != nil {
			return nil, err
		}
		staged, err = unidiff.ParseDiff(stagedOut.Stdout)
		if err != nil {
			return nil, err
		}
	} else {
		// Without a commit to diff against, everything in the index is new.
		staged, err = initialIndexEntries(repoRoot)
		if err != nil {
			return nil, err
		}
	}

	for _, p := range info.Conflicted {
		unstaged = append(unstaged, unidiff.FileEntry{Path: p, Kind: unidiff.Conflicted})
	}
	for _, p := range info.Untracked {
		unstaged = append(unstaged, unidiff.FileEntry{Path: p, Kind: unidiff.Untracked})
	}

	st := &unidiff.RepoStatus{
		Branch:    info.Branch,
		Detached:  info.Detached,
		NoCommits: info.NoCommits,
		Ahead:     info.Ahead,
		Behind:    info.Behind,
		Unstaged:  unstaged,
		Staged:    staged,
	}
	if !info.NoCommits {
		if head, err := lastCommit(repoRoot); err == nil {
			st.Head = head
		}
	}
	return st, nil
}

func initialIndexEntries(repoRoot string) ([]unidiff.FileEntry, error) {
	out, err := run(repoRoot, "ls-files", "--cached")
	if err != nil {
		return nil, err
	}
	var entries []unidiff.FileEntry
	for _, p := range strings.Split(strings.TrimRight(out.Stdout, "\n"), "\n") {
		if p != "" {
			entries = append(entries, unidiff.FileEntry{Path: p, Kind: unidiff.Added})
		}
	}
	return entries, nil
}

func lastCommit(repoRoot string) (*unidiff.CommitInfo, error) {
	out, err := run(repoRoot, "log", "-1", "--pretty=format:%h%x00%s")
	if err != nil {
		return nil, fmt.Errorf("git log: %w", err)
	}
	hash, subject, _ := strings.Cut(strings.TrimSpace(out.Stdout), "\x00")
	return &unidiff.CommitInfo{Hash: hash, Subject: subject}, nil
}

// LastCommitSummary returns short hash and subject of the last commit.
func LastCommitSummary(repoRoot string) (string, error) {
	c, err := lastCommit(repoRoot)
	if err != nil {
		return "", err
	}
	return c.Hash + " " + c.Subject, nil
}

// ApplyTarget selects how synthesized patch text is applied.
type ApplyTarget int

const (
	// ApplyIndex applies to the staging area. Stage patches arrive in
	// worktree orientation, unstage patches pre-inverted.
	ApplyIndex ApplyTarget = iota
	// ApplyReverseWorktree removes a worktree-oriented patch from the
	// working tree (discard).
	ApplyReverseWorktree
)

// Apply feeds patch text to git apply.
func Apply(repoRoot, patchText string, target ApplyTarget) error {
	args := []string{"-C", repoRoot, "apply", "--whitespace=nowarn"}
	switch target {
	case ApplyIndex:
		args = append(args, "--cached")
	case ApplyReverseWorktree:
		args = append(args, "-R")
	}
	args = append(args, "-")
	cmd := exec.Command("git", args...)
	cmd.Stdin = strings.NewReader(patchText)
	_, err := runCmd(cmd, "git apply")
	return err
}

// StageFile stages one path, deletions included.
func StageFile(repoRoot, path string) error {
	_, err := run(repoRoot, "add", "-A", "--", path)
	return err
}

// StageAll stages every change in the working tree.
func StageAll(repoRoot string) error {
	_, err := run(repoRoot, "add", "-A")
	return err
}

// UnstageFile moves one path out of the index.
func UnstageFile(repoRoot, path string) error {
	_, err := run(repoRoot, "reset", "-q", "HEAD", "--", path)
	return err
}

// UnstageAll empties the staging area.
func UnstageAll(repoRoot string) error {
	_, err := run(repoRoot, "reset", "-q", "HEAD")
	return err
}

// DiscardFile throws away worktree changes to one path. Untracked files
// are removed instead of checked out.
func DiscardFile(repoRoot, path string, untracked bool) error {
	if untracked {
		_, err := run(repoRoot, "clean", "-f", "--", path)
		return err
	}
	_, err := run(repoRoot, "checkout", "--", path)
	return err
}

// ListBranches lists local branches plus the current one. sortKey is a
// git ref sort key such as "-committerdate"; empty means git's default.
func ListBranches(repoRoot, sortKey string) (names []string, current string, err error) {
	args := []string{"branch", "--format=%(refname:short)"}
	if sortKey != "" {
		args = append(args, "--sort="+sortKey)
	}
	out, err := run(repoRoot, args...)
	if err != nil {
		return nil, "", err
	}
	for _, l := range strings.Split(strings.TrimRight(out.Stdout, "\n"), "\n") {
		if l != "" {
			names = append(names, l)
		}
	}
	cur, err := run(repoRoot, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return names, "", nil // detached or unborn; no current branch
	}
	return names, strings.TrimSpace(cur.Stdout), nil
}

// Checkout switches to an existing branch.
func Checkout(repoRoot, branch string) error {
	_, err := run(repoRoot, "checkout", branch)
	return err
}

// CheckoutNew creates a branch and switches to it.
func CheckoutNew(repoRoot, name string) error {
	_, err := run(repoRoot, "checkout", "-b", name)
	return err
}

// CommitMode selects the commit variant for the commit menu.
type CommitMode int

const (
	CommitPlain CommitMode = iota
	// CommitExtend melds staged changes into the previous commit without
	// touching its message.
	CommitExtend
	// CommitAmend reopens the previous commit's message in the editor.
	CommitAmend
)

// CommitCmd builds the commit invocation. The command inherits the
// terminal so the configured editor can take over; run it through the
// event loop's process handoff, not runCmd.
func CommitCmd(repoRoot string, mode CommitMode) *exec.Cmd {
	args := []string{"-C", repoRoot, "commit"}
	switch mode {
	case CommitExtend:
		args = append(args, "--amend", "--no-edit")
	case CommitAmend:
		args = append(args, "--amend")
	}
	return exec.Command("git", args...)
}

// Push pushes the current branch. Without an upstream it retries against
// the first configured remote with -u.
func Push(repoRoot string, force bool) (Output, error) {
	args := []string{"push"}
	if force {
		args = append(args, "--force-with-lease")
	}
	out, err := run(repoRoot, args...)
	if err == nil {
		return out, nil
	}
	branchOut, berr := run(repoRoot, "rev-parse", "--abbrev-ref", "HEAD")
	if berr != nil {
		return out, err
	}
	branch := strings.TrimSpace(branchOut.Stdout)
	remoteOut, _ := run(repoRoot, "remote")
	remotes := strings.Fields(remoteOut.Stdout)
	remote := "origin"
	if len(remotes) > 0 {
		remote = remotes[0]
	}
	args = append(args, "-u", remote, branch)
	return run(repoRoot, args...)
}

// Pull pulls the current branch from its upstream.
func Pull(repoRoot string) (Output, error) {
	return run(repoRoot, "pull")
}

// Stash saves worktree and index state to the stash.
func Stash(repoRoot string) (Output, error) {
	return run(repoRoot, "stash")
}

// StashPop reapplies the latest stash entry.
func StashPop(repoRoot string) (Output, error) {
	return run(repoRoot, "stash", "pop")
}

// Git runs an arbitrary git command entered in the minibuffer.
func Git(repoRoot string, args []string) (Output, error) {
	if len(args) == 0 {
		return Output{}, errors.New("empty git command")
	}
	return run(repoRoot, args...)
}

// Shell runs a raw shell command line in the repository root.
func Shell(repoRoot, cmdline string) (Output, error) {
	if strings.TrimSpace(cmdline) == "" {
		return Output{}, errors.New("empty command")
	}
	cmd := exec.Command("sh", "-c", cmdline)
	cmd.Dir = repoRoot
	return runCmd(cmd, cmdline)
}
