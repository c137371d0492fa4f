package gitx

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/interpretive-systems/stagium/internal/patch"
	"github.com/interpretive-systems/stagium/internal/unidiff"
)

func TestSnapshot_AndApply(t *testing.T) {
	dir := initRepo(t)

	// initial commit
	write(t, filepath.Join(dir, "f1.txt"), "one\nline\n")
	write(t, filepath.Join(dir, "del.txt"), "to delete\n")
	mustRun(t, dir, "git", "add", ".")
	mustRun(t, dir, "git", "commit", "-q", "-m", "init")

	// modify f1 (unstaged), create new (untracked), delete del.txt (unstaged)
	write(t, filepath.Join(dir, "f1.txt"), "one\nline changed\n")
	write(t, filepath.Join(dir, "new.txt"), "brand new\n")
	if err := os.Remove(filepath.Join(dir, "del.txt")); err != nil {
		t.Fatal(err)
	}

	st, err := Snapshot(dir)
	if err != nil {
		t.Fatalf("Snapshot error: %v", err)
	}
	if st.Branch != "main" {
		t.Fatalf("expected branch main, got %q", st.Branch)
	}
	if st.Head == nil || st.Head.Subject != "init" {
		t.Fatalf("expected head commit init, got %+v", st.Head)
	}
	if st.Clean() {
		t.Fatal("expected dirty snapshot")
	}

	m := map[string]unidiff.FileEntry{}
	for _, f := range st.Unstaged {
		m[f.Path] = f
	}
	if m["f1.txt"].Kind != unidiff.Modified || len(m["f1.txt"].Hunks) == 0 {
		t.Fatalf("expected f1.txt modified with hunks, got %+v", m["f1.txt"])
	}
	if m["new.txt"].Kind != unidiff.Untracked || len(m["new.txt"].Hunks) != 0 {
		t.Fatalf("expected new.txt untracked opaque, got %+v", m["new.txt"])
	}
	if m["del.txt"].Kind != unidiff.Deleted {
		t.Fatalf("expected del.txt deleted, got %+v", m["del.txt"])
	}
	if len(st.Staged) != 0 {
		t.Fatalf("expected empty staged section, got %v", st.Staged)
	}

	// Stage the f1 change through patch synthesis, the way the TUI does.
	idx := -1
	for i, f := range st.Unstaged {
		if f.Path == "f1.txt" {
			idx = i
		}
	}
	text, err := patch.Synthesize(st.Unstaged, patch.WholeFile(idx), patch.Stage)
	if err != nil {
		t.Fatalf("Synthesize error: %v", err)
	}
	if err := Apply(dir, text, ApplyIndex); err != nil {
		t.Fatalf("Apply error: %v", err)
	}

	st2, err := Snapshot(dir)
	if err != nil {
		t.Fatalf("Snapshot(2) error: %v", err)
	}
	var staged []string
	for _, f := range st2.Staged {
		staged = append(staged, f.Path)
	}
	if len(staged) != 1 || staged[0] != "f1.txt" {
		t.Fatalf("expected f1.txt staged, got %v", staged)
	}
	for _, f := range st2.Unstaged {
		if f.Path == "f1.txt" {
			t.Fatalf("expected f1.txt gone from unstaged, got %+v", f)
		}
	}

	// Unstage it again with an inverse-oriented patch.
	text, err = patch.Synthesize(st2.Staged, patch.WholeFile(0), patch.Unstage)
	if err != nil {
		t.Fatalf("Synthesize unstage error: %v", err)
	}
	if err := Apply(dir, text, ApplyIndex); err != nil {
		t.Fatalf("Apply unstage error: %v", err)
	}
	st3, err := Snapshot(dir)
	if err != nil {
		t.Fatalf("Snapshot(3) error: %v", err)
	}
	if len(st3.Staged) != 0 {
		t.Fatalf("expected empty staged after unstage, got %v", st3.Staged)
	}
}

// Line-level selections must survive a real apply in every direction:
// staged into the index, back out of it, and reverse-applied to the
// worktree.
func TestApplyPartialLineSelections(t *testing.T) {
	dir := initRepo(t)
	write(t, filepath.Join(dir, "f.txt"), "ctx1\ndelA\nctx2\n")
	mustRun(t, dir, "git", "add", ".")
	mustRun(t, dir, "git", "commit", "-q", "-m", "init")

	// One hunk mixing a deletion with two additions.
	write(t, filepath.Join(dir, "f.txt"), "ctx1\naddB\naddC\nctx2\n")

	st, err := Snapshot(dir)
	if err != nil {
		t.Fatalf("Snapshot error: %v", err)
	}
	idx := fileIndex(t, st.Unstaged, "f.txt")
	sel := patch.Selection{
		File:  idx,
		Hunk:  0,
		Lines: map[int]bool{lineIndex(t, st.Unstaged[idx].Hunks[0], unidiff.Addition, "addB"): true},
	}
	text, err := patch.Synthesize(st.Unstaged, sel, patch.Stage)
	if err != nil {
		t.Fatalf("Synthesize stage error: %v", err)
	}
	if err := Apply(dir, text, ApplyIndex); err != nil {
		t.Fatalf("Apply stage error: %v\npatch:\n%s", err, text)
	}

	st2, err := Snapshot(dir)
	if err != nil {
		t.Fatalf("Snapshot(2) error: %v", err)
	}
	sidx := fileIndex(t, st2.Staged, "f.txt")
	stagedText := st2.Staged[sidx].Hunks[0].Text()
	if !strings.Contains(stagedText, "+addB") || strings.Contains(stagedText, "addC") {
		t.Fatalf("expected only addB staged, got:\n%s", stagedText)
	}

	// Unstage that same line again with an inverse-oriented patch. Its
	// old side must match the index, not the pre-image of the diff.
	usel := patch.Selection{
		File:  sidx,
		Hunk:  0,
		Lines: map[int]bool{lineIndex(t, st2.Staged[sidx].Hunks[0], unidiff.Addition, "addB"): true},
	}
	text, err = patch.Synthesize(st2.Staged, usel, patch.Unstage)
	if err != nil {
		t.Fatalf("Synthesize unstage error: %v", err)
	}
	if err := Apply(dir, text, ApplyIndex); err != nil {
		t.Fatalf("Apply unstage error: %v\npatch:\n%s", err, text)
	}

	st3, err := Snapshot(dir)
	if err != nil {
		t.Fatalf("Snapshot(3) error: %v", err)
	}
	if len(st3.Staged) != 0 {
		t.Fatalf("expected empty staged section after unstage, got %v", st3.Staged)
	}

	// Discard only the second addition from the worktree; the sibling
	// addition and the still-pending deletion stay untouched.
	widx := fileIndex(t, st3.Unstaged, "f.txt")
	wsel := patch.Selection{
		File:  widx,
		Hunk:  0,
		Lines: map[int]bool{lineIndex(t, st3.Unstaged[widx].Hunks[0], unidiff.Addition, "addC"): true},
	}
	text, err = patch.Synthesize(st3.Unstaged, wsel, patch.Discard)
	if err != nil {
		t.Fatalf("Synthesize discard error: %v", err)
	}
	if err := Apply(dir, text, ApplyReverseWorktree); err != nil {
		t.Fatalf("Apply discard error: %v\npatch:\n%s", err, text)
	}

	got, err := os.ReadFile(filepath.Join(dir, "f.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "ctx1\naddB\nctx2\n" {
		t.Fatalf("unexpected worktree content after discard: %q", got)
	}
}

func TestDiscardFile(t *testing.T) {
	dir := initRepo(t)
	write(t, filepath.Join(dir, "f.txt"), "a\n")
	mustRun(t, dir, "git", "add", ".")
	mustRun(t, dir, "git", "commit", "-q", "-m", "init")

	write(t, filepath.Join(dir, "f.txt"), "changed\n")
	write(t, filepath.Join(dir, "junk.txt"), "junk\n")

	if err := DiscardFile(dir, "f.txt", false); err != nil {
		t.Fatalf("DiscardFile error: %v", err)
	}
	if err := DiscardFile(dir, "junk.txt", true); err != nil {
		t.Fatalf("DiscardFile untracked error: %v", err)
	}

	st, err := Snapshot(dir)
	if err != nil {
		t.Fatalf("Snapshot error: %v", err)
	}
	if !st.Clean() {
		t.Fatalf("expected clean tree after discards, got %+v", st)
	}
}

func TestBranches(t *testing.T) {
	dir := initRepo(t)
	write(t, filepath.Join(dir, "f.txt"), "a\n")
	mustRun(t, dir, "git", "add", ".")
	mustRun(t, dir, "git", "commit", "-q", "-m", "init")

	if err := CheckoutNew(dir, "feature"); err != nil {
		t.Fatalf("CheckoutNew error: %v", err)
	}
	names, current, err := ListBranches(dir, "")
	if err != nil {
		t.Fatalf("ListBranches error: %v", err)
	}
	if current != "feature" {
		t.Fatalf("expected current feature, got %q", current)
	}
	found := false
	for _, n := range names {
		if n == "main" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected main in %v", names)
	}
	if err := Checkout(dir, "main"); err != nil {
		t.Fatalf("Checkout error: %v", err)
	}
}

func TestSnapshot_NoCommits(t *testing.T) {
	dir := initRepo(t)
	write(t, filepath.Join(dir, "f.txt"), "a\n")

	st, err := Snapshot(dir)
	if err != nil {
		t.Fatalf("Snapshot error: %v", err)
	}
	if !st.NoCommits {
		t.Fatal("expected NoCommits")
	}
	if st.Head != nil {
		t.Fatalf("expected no head commit, got %+v", st.Head)
	}
	if len(st.Unstaged) != 1 || st.Unstaged[0].Kind != unidiff.Untracked {
		t.Fatalf("expected one untracked entry, got %v", st.Unstaged)
	}

	mustRun(t, dir, "git", "add", ".")
	st2, err := Snapshot(dir)
	if err != nil {
		t.Fatalf("Snapshot(2) error: %v", err)
	}
	if len(st2.Staged) != 1 || st2.Staged[0].Kind != unidiff.Added {
		t.Fatalf("expected one added index entry, got %v", st2.Staged)
	}
}

func TestGitAndShell(t *testing.T) {
	dir := initRepo(t)

	out, err := Git(dir, []string{"rev-parse", "--is-inside-work-tree"})
	if err != nil {
		t.Fatalf("Git error: %v", err)
	}
	if strings.TrimSpace(out.Stdout) != "true" {
		t.Fatalf("unexpected stdout: %q", out.Stdout)
	}

	out, err = Git(dir, []string{"no-such-subcommand"})
	if err == nil {
		t.Fatal("expected error for unknown subcommand")
	}
	if out.ExitCode == 0 {
		t.Fatalf("expected non-zero exit, got %d", out.ExitCode)
	}

	out, err = Shell(dir, "echo hello")
	if err != nil {
		t.Fatalf("Shell error: %v", err)
	}
	if strings.TrimSpace(out.Stdout) != "hello" {
		t.Fatalf("unexpected stdout: %q", out.Stdout)
	}
}

func fileIndex(t *testing.T, files []unidiff.FileEntry, path string) int {
	t.Helper()
	for i, f := range files {
		if f.Path == path {
			return i
		}
	}
	t.Fatalf("no entry for %s in %v", path, files)
	return -1
}

func lineIndex(t *testing.T, h unidiff.Hunk, kind unidiff.LineKind, text string) int {
	t.Helper()
	for i, l := range h.Lines {
		if l.Kind == kind && l.Text == text {
			return i
		}
	}
	t.Fatalf("no %v line %q in hunk:\n%s", kind, text, h.Text())
	return -1
}

func initRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	mustRun(t, dir, "git", "init", "-q", "-b", "main")
	mustRun(t, dir, "git", "config", "user.email", "test@example.com")
	mustRun(t, dir, "git", "config", "user.name", "Test User")
	return dir
}

func mustRun(t *testing.T, dir string, name string, args ...string) {
	t.Helper()
	cmd := exec.Command(name, args...)
	cmd.Dir = dir
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("command %s %v failed: %v\n%s", name, args, err, out)
	}
}

func write(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}
