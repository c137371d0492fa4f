package unidiff

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrMalformedPatch is wrapped by every fatal parse error. A refresh that
// hits one keeps the previous model; a partial model could drive patch
// synthesis into emitting an invalid patch.
var ErrMalformedPatch = errors.New("malformed patch")

// ParseDiff parses unified-diff text covering any number of files, as
// produced by a diff listing with color disabled. Files, hunks, and lines
// retain source order; nothing is sorted or deduplicated.
func ParseDiff(text string) ([]FileEntry, error) {
	var files []FileEntry
	var cur *FileEntry

	lines := strings.Split(text, "\n")
	for i := 0; i < len(lines); i++ {
		line := lines[i]
		switch {
		case strings.HasPrefix(line, "diff --git "):
			if cur != nil {
				if err := finishFile(cur); err != nil {
					return nil, err
				}
				files = append(files, *cur)
			}
			cur = &FileEntry{Kind: Modified}
			if p, ok := pathFromGitHeader(line); ok {
				cur.Path = p
			}
		case cur == nil:
			// Preamble before the first file header is ignored.
		case strings.HasPrefix(line, "@@ "):
			h, err := parseHunkHeader(line)
			if err != nil {
				return nil, err
			}
			i = readHunkLines(&h, lines, i)
			cur.Hunks = append(cur.Hunks, h)
		case strings.HasPrefix(line, "--- "):
			if p, ok := stripPathPrefix(line[4:], "a/"); ok {
				cur.OldPath = p
			}
		case strings.HasPrefix(line, "+++ "):
			if p, ok := stripPathPrefix(line[4:], "b/"); ok {
				cur.Path = p
			}
		case strings.HasPrefix(line, "rename from "):
			cur.Kind = Renamed
			cur.OldPath = line[len("rename from "):]
		case strings.HasPrefix(line, "rename to "):
			cur.Kind = Renamed
			cur.Path = line[len("rename to "):]
		case strings.HasPrefix(line, "new file mode"):
			cur.Kind = Added
		case strings.HasPrefix(line, "deleted file mode"):
			cur.Kind = Deleted
		case strings.HasPrefix(line, "old mode ") || strings.HasPrefix(line, "new mode "):
			cur.Kind = TypeChanged
		case strings.HasPrefix(line, "Binary files ") || strings.HasPrefix(line, "GIT binary patch"):
			cur.Binary = true
		}
	}
	if cur != nil {
		if err := finishFile(cur); err != nil {
			return nil, err
		}
		files = append(files, *cur)
	}

	for i := range files {
		// Plain modifications keep OldPath clear; it only carries renames.
		if files[i].Kind != Renamed {
			files[i].OldPath = ""
		}
	}
	return files, nil
}

func finishFile(f *FileEntry) error {
	if f.Path == "" && f.OldPath == "" {
		return fmt.Errorf("%w: file header without any path", ErrMalformedPatch)
	}
	if f.Path == "" {
		// Deleted files only carry the old side.
		f.Path = f.OldPath
	}
	return nil
}

// pathFromGitHeader extracts the new path from a "diff --git a/X b/Y" line.
// Paths containing spaces make the split ambiguous, so the result is a
// best-effort default; the ---/+++ lines that follow are authoritative.
func pathFromGitHeader(line string) (string, bool) {
	rest := line[len("diff --git "):]
	idx := strings.Index(rest, " b/")
	if idx < 0 {
		return "", false
	}
	return rest[idx+3:], true
}

func stripPathPrefix(field, prefix string) (string, bool) {
	if field == "/dev/null" {
		return "", false
	}
	field = strings.TrimSuffix(field, "\t")
	return strings.TrimPrefix(field, prefix), true
}

// parseHunkHeader parses "@@ -a,b +c,d @@ section". Counts default to 1
// when omitted, per the unified-diff convention.
func parseHunkHeader(line string) (Hunk, error) {
	var h Hunk
	rest := line[3:]
	end := strings.Index(rest, " @@")
	if end < 0 {
		return h, fmt.Errorf("%w: hunk header %q", ErrMalformedPatch, line)
	}
	h.Section = strings.TrimPrefix(rest[end+3:], " ")
	ranges := strings.Fields(rest[:end])
	if len(ranges) != 2 || !strings.HasPrefix(ranges[0], "-") || !strings.HasPrefix(ranges[1], "+") {
		return h, fmt.Errorf("%w: hunk header %q", ErrMalformedPatch, line)
	}
	var err error
	h.OldStart, h.OldCount, err = parseRange(ranges[0][1:])
	if err != nil {
		return h, fmt.Errorf("%w: hunk header %q", ErrMalformedPatch, line)
	}
	h.NewStart, h.NewCount, err = parseRange(ranges[1][1:])
	if err != nil {
		return h, fmt.Errorf("%w: hunk header %q", ErrMalformedPatch, line)
	}
	return h, nil
}

func parseRange(s string) (start, count int, err error) {
	count = 1
	if i := strings.IndexByte(s, ','); i >= 0 {
		count, err = strconv.Atoi(s[i+1:])
		if err != nil {
			return 0, 0, err
		}
		s = s[:i]
	}
	start, err = strconv.Atoi(s)
	return start, count, err
}

// readHunkLines consumes body lines following the header at lines[start]
// and returns the index of the last consumed line.
func readHunkLines(h *Hunk, lines []string, start int) int {
	i := start
	for i+1 < len(lines) {
		line := lines[i+1]
		if line == "" && i+2 == len(lines) {
			// Trailing newline artifact from the split.
			break
		}
		var kind LineKind
		switch {
		case strings.HasPrefix(line, " "):
			kind = Context
		case strings.HasPrefix(line, "+"):
			kind = Addition
		case strings.HasPrefix(line, "-"):
			kind = Deletion
		case strings.HasPrefix(line, "\\"):
			kind = NoNewlineMarker
		case line == "":
			// Some diffs emit empty context lines with the marker trimmed.
			kind = Context
		default:
			return i
		}
		i++
		text := line
		if kind == NoNewlineMarker {
			text = strings.TrimPrefix(text[1:], " ")
		} else if line != "" {
			text = line[1:]
		}
		h.Lines = append(h.Lines, Line{Kind: kind, Text: text})
	}
	return i
}

// StatusInfo is the branch-level result of parsing a porcelain v2 status
// listing. File-level detail comes from the diff text instead; only the
// entries a diff cannot show (untracked, conflicted) are listed here.
type StatusInfo struct {
	Branch     string
	Detached   bool
	NoCommits  bool
	Ahead      int
	Behind     int
	Untracked  []string
	Conflicted []string
}

// ParseStatus parses `status --porcelain=v2 --branch` output.
func ParseStatus(text string) StatusInfo {
	var info StatusInfo
	for _, line := range strings.Split(text, "\n") {
		switch {
		case strings.HasPrefix(line, "# branch.head "):
			name := line[len("# branch.head "):]
			if name == "(detached)" {
				info.Detached = true
			} else {
				info.Branch = name
			}
		case strings.HasPrefix(line, "# branch.oid "):
			if line[len("# branch.oid "):] == "(initial)" {
				info.NoCommits = true
			}
		case strings.HasPrefix(line, "# branch.ab "):
			fmt.Sscanf(line[len("# branch.ab "):], "+%d -%d", &info.Ahead, &info.Behind)
		case strings.HasPrefix(line, "? "):
			info.Untracked = append(info.Untracked, line[2:])
		case strings.HasPrefix(line, "u "):
			// u <XY> <sub> <m1..m3> <mW> <h1..h3> <path>
			fields := strings.SplitN(line, " ", 11)
			if len(fields) == 11 {
				info.Conflicted = append(info.Conflicted, fields[10])
			}
		}
	}
	return info
}
