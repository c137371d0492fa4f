package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/x/ansi"

	"github.com/interpretive-systems/stagium/internal/patch"
	"github.com/interpretive-systems/stagium/internal/unidiff"
)

// Styler is the slice of the theme the tree needs for rendering.
type Styler interface {
	HeadingText(string) string
	HunkHeadText(string) string
	AddText(string) string
	DelText(string) string
	ErrorText(string) string
	FaintText(string) string
	CursorText(string) string
}

// RowKind classifies one visible row of the tree.
type RowKind int

const (
	RowSection RowKind = iota
	RowFile
	RowHunk
	RowLine
)

// Sections of the tree, in display order.
const (
	SectionUnstaged = 0
	SectionStaged   = 1
)

// Row addresses one visible row. File/Hunk/Line are indices into the
// current snapshot, -1 where not applicable.
type Row struct {
	Kind    RowKind
	Section int
	File    int
	Hunk    int
	Line    int
}

// StatusTree is the navigable view over a RepoStatus snapshot: two
// sections, files, hunks, and individual lines, with per-entry expansion
// and a scrolling cursor. Expansion and cursor survive a snapshot
// replacement by best-effort path equality; anything unresolved falls
// back to the top.
type StatusTree struct {
	status    *unidiff.RepoStatus
	rows      []Row
	selected  int
	offset    int
	lookahead int
	autoFiles bool
	autoHunks bool
	expanded  map[string]bool
}

// NewStatusTree creates an empty tree. lookahead is the scroll margin:
// the cursor keeps that many rows visible beyond itself.
func NewStatusTree(lookahead int, autoFiles, autoHunks bool) *StatusTree {
	return &StatusTree{
		lookahead: lookahead,
		autoFiles: autoFiles,
		autoHunks: autoHunks,
		expanded:  map[string]bool{},
	}
}

// SetStatus replaces the snapshot wholesale and remaps the cursor.
func (t *StatusTree) SetStatus(st *unidiff.RepoStatus) {
	var prevKey string
	if r, ok := t.Current(); ok {
		prevKey = t.rowKey(r)
	}
	t.status = st
	t.rebuild()
	t.selected = 0
	if prevKey != "" {
		for i, r := range t.rows {
			if t.rowKey(r) == prevKey {
				t.selected = i
				break
			}
		}
	}
	t.clampOffset()
}

func (t *StatusTree) section(i int) []unidiff.FileEntry {
	if t.status == nil {
		return nil
	}
	if i == SectionStaged {
		return t.status.Staged
	}
	return t.status.Unstaged
}

func (t *StatusTree) fileKey(sec int, f unidiff.FileEntry) string {
	return fmt.Sprintf("%d|%s", sec, f.Path)
}

// rowKey identifies a row across snapshot replacements. Files remap by
// path; hunks and lines by position within their file.
func (t *StatusTree) rowKey(r Row) string {
	switch r.Kind {
	case RowSection:
		return fmt.Sprintf("sec|%d", r.Section)
	case RowFile:
		return t.fileKey(r.Section, t.section(r.Section)[r.File])
	case RowHunk:
		return t.fileKey(r.Section, t.section(r.Section)[r.File]) + fmt.Sprintf("|%d", r.Hunk)
	default:
		return t.fileKey(r.Section, t.section(r.Section)[r.File]) + fmt.Sprintf("|%d|%d", r.Hunk, r.Line)
	}
}

func (t *StatusTree) fileExpanded(sec int, f unidiff.FileEntry) bool {
	if len(f.Hunks) == 0 {
		return false
	}
	if v, ok := t.expanded[t.fileKey(sec, f)]; ok {
		return v
	}
	return t.autoFiles
}

func (t *StatusTree) hunkExpanded(sec int, f unidiff.FileEntry, hunk int) bool {
	if v, ok := t.expanded[t.fileKey(sec, f)+fmt.Sprintf("|%d", hunk)]; ok {
		return v
	}
	return t.autoHunks
}

func (t *StatusTree) rebuild() {
	t.rows = t.rows[:0]
	for sec := SectionUnstaged; sec <= SectionStaged; sec++ {
		files := t.section(sec)
		if len(files) == 0 {
			continue
		}
		t.rows = append(t.rows, Row{Kind: RowSection, Section: sec, File: -1, Hunk: -1, Line: -1})
		for fi, f := range files {
			t.rows = append(t.rows, Row{Kind: RowFile, Section: sec, File: fi, Hunk: -1, Line: -1})
			if !t.fileExpanded(sec, f) {
				continue
			}
			for hi := range f.Hunks {
				t.rows = append(t.rows, Row{Kind: RowHunk, Section: sec, File: fi, Hunk: hi, Line: -1})
				if !t.hunkExpanded(sec, f, hi) {
					continue
				}
				for li := range f.Hunks[hi].Lines {
					t.rows = append(t.rows, Row{Kind: RowLine, Section: sec, File: fi, Hunk: hi, Line: li})
				}
			}
		}
	}
	if t.selected >= len(t.rows) {
		t.selected = len(t.rows) - 1
	}
	if t.selected < 0 {
		t.selected = 0
	}
}

// SetAutoExpand changes the default expansion for files and hunks.
// Per-entry overrides are cleared so the new default applies everywhere.
func (t *StatusTree) SetAutoExpand(files, hunks bool) {
	t.autoFiles = files
	t.autoHunks = hunks
	t.expanded = map[string]bool{}
	t.rebuild()
}

// AutoExpand reports the current defaults.
func (t *StatusTree) AutoExpand() (files, hunks bool) {
	return t.autoFiles, t.autoHunks
}

// Len returns the number of visible rows.
func (t *StatusTree) Len() int {
	return len(t.rows)
}

// Current returns the row under the cursor.
func (t *StatusTree) Current() (Row, bool) {
	if t.selected < 0 || t.selected >= len(t.rows) {
		return Row{}, false
	}
	return t.rows[t.selected], true
}

// MoveUp moves the cursor up n rows.
func (t *StatusTree) MoveUp(n int) {
	t.selected -= n
	if t.selected < 0 {
		t.selected = 0
	}
}

// MoveDown moves the cursor down n rows.
func (t *StatusTree) MoveDown(n int) {
	t.selected += n
	if t.selected >= len(t.rows) {
		t.selected = len(t.rows) - 1
	}
	if t.selected < 0 {
		t.selected = 0
	}
}

// GotoTop moves the cursor to the first row.
func (t *StatusTree) GotoTop() {
	t.selected = 0
	t.offset = 0
}

// GotoBottom moves the cursor to the last row.
func (t *StatusTree) GotoBottom() {
	t.selected = len(t.rows) - 1
	if t.selected < 0 {
		t.selected = 0
	}
}

// ToggleExpand flips expansion of the entry under the cursor. On a line
// row it collapses the containing hunk so the cursor does not get lost
// in a subtree that just vanished.
func (t *StatusTree) ToggleExpand() {
	r, ok := t.Current()
	if !ok {
		return
	}
	files := t.section(r.Section)
	switch r.Kind {
	case RowFile:
		f := files[r.File]
		t.expanded[t.fileKey(r.Section, f)] = !t.fileExpanded(r.Section, f)
	case RowHunk:
		f := files[r.File]
		key := t.fileKey(r.Section, f) + fmt.Sprintf("|%d", r.Hunk)
		t.expanded[key] = !t.hunkExpanded(r.Section, f, r.Hunk)
	case RowLine:
		f := files[r.File]
		key := t.fileKey(r.Section, f) + fmt.Sprintf("|%d", r.Hunk)
		t.expanded[key] = false
		t.rebuildAndFind(Row{Kind: RowHunk, Section: r.Section, File: r.File, Hunk: r.Hunk, Line: -1})
		return
	default:
		return
	}
	t.rebuild()
}

func (t *StatusTree) rebuildAndFind(want Row) {
	t.rebuild()
	for i, r := range t.rows {
		if r == want {
			t.selected = i
			return
		}
	}
}

// CurrentSelection translates the cursor row into a staging selection.
// Section headers are not stageable.
func (t *StatusTree) CurrentSelection() (section int, sel patch.Selection, ok bool) {
	r, found := t.Current()
	if !found {
		return 0, patch.Selection{}, false
	}
	switch r.Kind {
	case RowFile:
		return r.Section, patch.WholeFile(r.File), true
	case RowHunk:
		return r.Section, patch.WholeHunk(r.File, r.Hunk), true
	case RowLine:
		return r.Section, patch.Selection{File: r.File, Hunk: r.Hunk, Lines: map[int]bool{r.Line: true}}, true
	default:
		return 0, patch.Selection{}, false
	}
}

// CurrentFile returns the file entry under the cursor, if any.
func (t *StatusTree) CurrentFile() (sec int, f unidiff.FileEntry, ok bool) {
	r, found := t.Current()
	if !found || r.Kind == RowSection {
		return 0, unidiff.FileEntry{}, false
	}
	return r.Section, t.section(r.Section)[r.File], true
}

// EnsureVisible scrolls so the cursor stays inside the viewport with the
// configured lookahead margin.
func (t *StatusTree) EnsureVisible(height int) {
	if height <= 0 {
		return
	}
	margin := t.lookahead
	if margin >= height/2 {
		margin = height/2 - 1
		if margin < 0 {
			margin = 0
		}
	}
	if t.selected-margin < t.offset {
		t.offset = t.selected - margin
	}
	if t.selected+margin >= t.offset+height {
		t.offset = t.selected + margin - height + 1
	}
	t.clampOffsetFor(height)
}

func (t *StatusTree) clampOffset() {
	if t.offset > t.selected {
		t.offset = t.selected
	}
	if t.offset < 0 {
		t.offset = 0
	}
}

func (t *StatusTree) clampOffsetFor(height int) {
	max := len(t.rows) - height
	if max < 0 {
		max = 0
	}
	if t.offset > max {
		t.offset = max
	}
	if t.offset < 0 {
		t.offset = 0
	}
}

// Render returns the visible window of the tree, height lines tall.
// truncate cuts long lines at width; otherwise they are clipped by the
// frame anyway, so the flag only controls the ellipsis.
func (t *StatusTree) Render(height, width int, truncate bool, th Styler) []string {
	if t.status == nil {
		return []string{"Loading…"}
	}
	if len(t.rows) == 0 {
		return []string{th.FaintText("Nothing to commit, working tree clean")}
	}
	t.EnsureVisible(height)
	lines := make([]string, 0, height)
	for i := t.offset; i < len(t.rows) && len(lines) < height; i++ {
		lines = append(lines, t.renderRow(t.rows[i], i == t.selected, width, truncate, th))
	}
	return lines
}

func (t *StatusTree) renderRow(r Row, cursor bool, width int, truncate bool, th Styler) string {
	files := t.section(r.Section)
	var plain, styled string
	switch r.Kind {
	case RowSection:
		label := "Unstaged changes"
		if r.Section == SectionStaged {
			label = "Staged changes"
		}
		plain = fmt.Sprintf("%s (%d)", label, len(files))
		styled = th.HeadingText(plain)
	case RowFile:
		f := files[r.File]
		plain = fmt.Sprintf("%s %s %s", expandMarker(t.fileExpanded(r.Section, f), len(f.Hunks) > 0), f.Kind, f.Path)
		if f.OldPath != "" {
			plain = fmt.Sprintf("%s %s %s -> %s", expandMarker(t.fileExpanded(r.Section, f), len(f.Hunks) > 0), f.Kind, f.OldPath, f.Path)
		}
		if f.Binary {
			plain += " (binary)"
		}
		switch f.Kind {
		case unidiff.Conflicted:
			styled = th.ErrorText(plain)
		case unidiff.Untracked:
			styled = th.FaintText(plain)
		default:
			styled = plain
		}
	case RowHunk:
		f := files[r.File]
		h := f.Hunks[r.Hunk]
		plain = "  " + expandMarker(t.hunkExpanded(r.Section, f, r.Hunk), true) + " " + h.Header()
		styled = th.HunkHeadText(plain)
	case RowLine:
		l := files[r.File].Hunks[r.Hunk].Lines[r.Line]
		switch l.Kind {
		case unidiff.Addition:
			plain = "    +" + l.Text
			styled = th.AddText(plain)
		case unidiff.Deletion:
			plain = "    -" + l.Text
			styled = th.DelText(plain)
		case unidiff.NoNewlineMarker:
			plain = "    \\ " + l.Text
			styled = th.FaintText(plain)
		default:
			plain = "     " + l.Text
			styled = plain
		}
	}
	if cursor {
		// Reverse video over the plain text keeps the cursor readable
		// regardless of the row's own coloring.
		styled = th.CursorText(plain)
	}
	if truncate && width > 0 {
		styled = ansi.Truncate(styled, width, "…")
	}
	return styled
}

func expandMarker(expanded, expandable bool) string {
	if !expandable {
		return " "
	}
	if expanded {
		return "▾"
	}
	return "▸"
}

// Plain renders the whole tree unstyled, for tests.
func (t *StatusTree) Plain() string {
	var b strings.Builder
	for _, r := range t.rows {
		b.WriteString(t.renderRow(r, false, 0, false, nopStyler{}))
		b.WriteByte('\n')
	}
	return b.String()
}

type nopStyler struct{}

func (nopStyler) HeadingText(s string) string  { return s }
func (nopStyler) HunkHeadText(s string) string { return s }
func (nopStyler) AddText(s string) string      { return s }
func (nopStyler) DelText(s string) string      { return s }
func (nopStyler) ErrorText(s string) string    { return s }
func (nopStyler) FaintText(s string) string    { return s }
func (nopStyler) CursorText(s string) string   { return s }
