package unidiff

import (
	"fmt"
	"strings"
)

// FileKind classifies how a file changed.
type FileKind int

const (
	Modified FileKind = iota
	Added
	Deleted
	Renamed
	TypeChanged
	Untracked
	Conflicted
)

// String returns the short status label shown next to a path.
func (k FileKind) String() string {
	switch k {
	case Modified:
		return "M"
	case Added:
		return "A"
	case Deleted:
		return "D"
	case Renamed:
		return "R"
	case TypeChanged:
		return "T"
	case Untracked:
		return "?"
	case Conflicted:
		return "U"
	default:
		return "-"
	}
}

// LineKind classifies one row of a hunk.
type LineKind int

const (
	Context LineKind = iota
	Addition
	Deletion
	NoNewlineMarker
)

// Line is one row of a hunk, without its leading marker character.
// Its position in the Hunk's slice is the stable selection reference.
type Line struct {
	Kind LineKind
	Text string
}

// Marker returns the leading character used in unified-diff text.
func (l Line) Marker() byte {
	switch l.Kind {
	case Addition:
		return '+'
	case Deletion:
		return '-'
	case NoNewlineMarker:
		return '\\'
	default:
		return ' '
	}
}

// Hunk is one contiguous change region within a file.
type Hunk struct {
	OldStart int
	OldCount int
	NewStart int
	NewCount int
	Section  string
	Lines    []Line
	Expanded bool
}

// Header re-emits the hunk header in @@ form.
func (h Hunk) Header() string {
	s := fmt.Sprintf("@@ -%d,%d +%d,%d @@", h.OldStart, h.OldCount, h.NewStart, h.NewCount)
	if h.Section != "" {
		s += " " + h.Section
	}
	return s
}

// Validate checks that the range counts match the contained lines.
// OldCount must equal context+deletions, NewCount context+additions.
// NoNewlineMarker lines count toward neither side.
func (h Hunk) Validate() error {
	var oldN, newN int
	for _, l := range h.Lines {
		switch l.Kind {
		case Context:
			oldN++
			newN++
		case Deletion:
			oldN++
		case Addition:
			newN++
		}
	}
	if oldN != h.OldCount || newN != h.NewCount {
		return fmt.Errorf("hunk %s: counted -%d +%d lines", h.Header(), oldN, newN)
	}
	return nil
}

// Text re-emits the hunk as unified-diff text, header included.
func (h Hunk) Text() string {
	var b strings.Builder
	b.WriteString(h.Header())
	b.WriteByte('\n')
	for _, l := range h.Lines {
		if l.Kind == NoNewlineMarker {
			b.WriteString("\\ " + l.Text)
		} else {
			b.WriteByte(l.Marker())
			b.WriteString(l.Text)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// FileEntry is one changed path with its parsed hunks.
// Untracked and binary files carry zero hunks.
type FileEntry struct {
	Path     string
	OldPath  string // set for renames
	Kind     FileKind
	Binary   bool
	Hunks    []Hunk
	Expanded bool
}

// CommitInfo identifies the latest commit.
type CommitInfo struct {
	Hash    string
	Subject string
}

// RepoStatus is the root of one parse cycle. It is built fresh on every
// refresh and never mutated afterwards; a new refresh replaces it wholesale.
type RepoStatus struct {
	Branch    string
	Detached  bool
	NoCommits bool
	Ahead     int
	Behind    int
	Head      *CommitInfo
	Unstaged  []FileEntry
	Staged    []FileEntry
}

// Clean reports whether there are no changes in either section.
func (s *RepoStatus) Clean() bool {
	return len(s.Unstaged) == 0 && len(s.Staged) == 0
}
