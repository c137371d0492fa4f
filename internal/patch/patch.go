// Package patch synthesizes applyable unified-diff text from a user's
// selection over a parsed diff model.
package patch

import (
	"errors"
	"fmt"
	"strings"

	"github.com/interpretive-systems/stagium/internal/unidiff"
)

// Action determines patch orientation.
type Action int

const (
	// Stage and Discard keep the diff's forward direction; Unstage
	// inverts it so the patch undoes the change when applied.
	Stage Action = iota
	Unstage
	Discard
)

var (
	// ErrEmptySelection means nothing in the selection resolved against
	// the current model.
	ErrEmptySelection = errors.New("empty selection")
	// ErrInvalidHunk means a source hunk violated its own range counts.
	// That is a parser defect, never user error.
	ErrInvalidHunk = errors.New("invalid hunk state")
)

// Selection references what the next action applies to. File and Hunk are
// indices into the file slice of the active section; -1 for Hunk means the
// whole file, a nil or empty Lines set with Hunk >= 0 means the whole hunk.
type Selection struct {
	File  int
	Hunk  int
	Lines map[int]bool
}

// WholeFile selects every hunk of one file.
func WholeFile(file int) Selection {
	return Selection{File: file, Hunk: -1}
}

// WholeHunk selects one hunk in full.
func WholeHunk(file, hunk int) Selection {
	return Selection{File: file, Hunk: hunk}
}

// Resolve drops any reference that no longer exists in files. A selection
// going stale is normal after a refresh and never an error by itself; the
// zero-value result simply resolves to nothing.
func (s Selection) Resolve(files []unidiff.FileEntry) Selection {
	if s.File < 0 || s.File >= len(files) {
		return Selection{File: -1, Hunk: -1}
	}
	if s.Hunk < 0 {
		s.Lines = nil
		return s
	}
	if s.Hunk >= len(files[s.File].Hunks) {
		// The hunk vanished in a refresh; do not widen to the whole file.
		return Selection{File: -1, Hunk: -1}
	}
	if len(s.Lines) == 0 {
		s.Lines = nil
		return s
	}
	kept := make(map[int]bool, len(s.Lines))
	max := len(files[s.File].Hunks[s.Hunk].Lines)
	for i := range s.Lines {
		if i >= 0 && i < max {
			kept[i] = true
		}
	}
	if len(kept) == 0 {
		// All line references vanished; do not widen to the whole hunk.
		return Selection{File: -1, Hunk: -1}
	}
	s.Lines = kept
	return s
}

// Synthesize builds patch text for the selection against files. Stage and
// Discard emit forward orientation; Unstage emits the inverse so the
// result applies against the index in reverse sense. Partial selections
// reduce against the side git will match: the old side for Stage, the new
// side for Unstage and Discard.
func Synthesize(files []unidiff.FileEntry, sel Selection, action Action) (string, error) {
	sel = sel.Resolve(files)
	if sel.File < 0 {
		return "", ErrEmptySelection
	}
	f := files[sel.File]

	var hunks []unidiff.Hunk
	switch {
	case sel.Hunk < 0:
		if len(f.Hunks) == 0 {
			return "", ErrEmptySelection
		}
		hunks = f.Hunks
	case sel.Lines == nil:
		hunks = []unidiff.Hunk{f.Hunks[sel.Hunk]}
	default:
		src := f.Hunks[sel.Hunk]
		if err := src.Validate(); err != nil {
			return "", fmt.Errorf("%w: %v", ErrInvalidHunk, err)
		}
		h, ok := reduce(src, sel.Lines, action != Stage)
		if !ok {
			return "", ErrEmptySelection
		}
		hunks = []unidiff.Hunk{h}
	}

	if action == Unstage {
		inv := make([]unidiff.Hunk, len(hunks))
		for i, h := range hunks {
			inv[i] = Invert(h)
		}
		hunks = inv
	}

	var b strings.Builder
	writeFileHeader(&b, f, action)
	for _, h := range hunks {
		b.WriteString(h.Text())
	}
	return b.String(), nil
}

// reduce keeps selected additions and deletions of h and neutralizes the
// rest so the reduced hunk still lines up against the content git will
// match it to. Context lines always stay and ranges are recomputed from
// the retained lines.
//
// With matchNew false the patch is matched against the diff's old side
// (staging into the index): unselected deletions become context, since
// that text still exists there, and unselected additions are dropped,
// since it does not. With matchNew true the patch is matched against the
// diff's new side (unstaging, or a reverse apply to the worktree), so the
// conversion mirrors: unselected additions become context and unselected
// deletions are dropped.
//
// Returns false when the selection touches no addition or deletion.
func reduce(h unidiff.Hunk, selected map[int]bool, matchNew bool) (unidiff.Hunk, bool) {
	out := unidiff.Hunk{
		OldStart: h.OldStart,
		NewStart: h.NewStart,
		Section:  h.Section,
	}
	touched := false
	lastKept := -1 // origin index of the last retained non-marker line
	for i, l := range h.Lines {
		switch l.Kind {
		case unidiff.Context:
			out.Lines = append(out.Lines, l)
			out.OldCount++
			out.NewCount++
			lastKept = i
		case unidiff.Deletion:
			switch {
			case selected[i]:
				out.Lines = append(out.Lines, l)
				out.OldCount++
				touched = true
				lastKept = i
			case matchNew:
				// Absent from the matched side; omit entirely.
			default:
				out.Lines = append(out.Lines, unidiff.Line{Kind: unidiff.Context, Text: l.Text})
				out.OldCount++
				out.NewCount++
				lastKept = i
			}
		case unidiff.Addition:
			switch {
			case selected[i]:
				out.Lines = append(out.Lines, l)
				out.NewCount++
				touched = true
				lastKept = i
			case matchNew:
				out.Lines = append(out.Lines, unidiff.Line{Kind: unidiff.Context, Text: l.Text})
				out.OldCount++
				out.NewCount++
				lastKept = i
			default:
				// Absent from the matched side; omit entirely.
			}
		case unidiff.NoNewlineMarker:
			// Re-emitted only when the line it annotates survived.
			if lastKept == i-1 && lastKept >= 0 {
				out.Lines = append(out.Lines, l)
			}
		}
	}
	return out, touched
}

// Invert swaps the patch orientation of a hunk: additions become
// deletions and vice versa, and the ranges trade places. Inverting twice
// returns the original.
func Invert(h unidiff.Hunk) unidiff.Hunk {
	out := unidiff.Hunk{
		OldStart: h.NewStart,
		OldCount: h.NewCount,
		NewStart: h.OldStart,
		NewCount: h.OldCount,
		Section:  h.Section,
		Lines:    make([]unidiff.Line, len(h.Lines)),
	}
	for i, l := range h.Lines {
		switch l.Kind {
		case unidiff.Addition:
			l.Kind = unidiff.Deletion
		case unidiff.Deletion:
			l.Kind = unidiff.Addition
		}
		out.Lines[i] = l
	}
	return out
}

func writeFileHeader(b *strings.Builder, f unidiff.FileEntry, action Action) {
	oldPath := f.Path
	if f.OldPath != "" {
		oldPath = f.OldPath
	}
	switch {
	case f.Kind == unidiff.Added && action != Unstage:
		fmt.Fprintf(b, "--- /dev/null\n+++ b/%s\n", f.Path)
	case f.Kind == unidiff.Added && action == Unstage:
		// Inverse orientation: the file disappears from the index.
		fmt.Fprintf(b, "--- a/%s\n+++ /dev/null\n", f.Path)
	case f.Kind == unidiff.Deleted && action != Unstage:
		fmt.Fprintf(b, "--- a/%s\n+++ /dev/null\n", oldPath)
	case f.Kind == unidiff.Deleted && action == Unstage:
		fmt.Fprintf(b, "--- /dev/null\n+++ b/%s\n", oldPath)
	default:
		fmt.Fprintf(b, "--- a/%s\n+++ b/%s\n", oldPath, f.Path)
	}
}
