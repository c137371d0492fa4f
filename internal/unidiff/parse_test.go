package unidiff

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

const sampleDiff = `diff --git a/pkg/server.go b/pkg/server.go
index 83db48f..bf269f4 100644
--- a/pkg/server.go
+++ b/pkg/server.go
@@ -10,4 +10,5 @@ func (s *Server) Serve() error {
 	ln, err := net.Listen("tcp", s.addr)
-	if err != nil {
+	if err != nil && !errors.Is(err, net.ErrClosed) {
+		s.log.Error(err)
 	return err
@@ -40,3 +41,3 @@
 	a
-	b
+	c
 	d
diff --git a/docs/intro.md b/docs/intro.md
deleted file mode 100644
index e69de29..0000000
--- a/docs/intro.md
+++ /dev/null
`

func TestParseDiff_Sections(t *testing.T) {
	files, err := ParseDiff(sampleDiff)
	require.NoError(t, err)
	require.Len(t, files, 2)

	f := files[0]
	assert.Equal(t, "pkg/server.go", f.Path)
	assert.Equal(t, Modified, f.Kind)
	require.Len(t, f.Hunks, 2)

	h := f.Hunks[0]
	assert.Equal(t, 10, h.OldStart)
	assert.Equal(t, 4, h.OldCount)
	assert.Equal(t, 5, h.NewCount)
	assert.Equal(t, "func (s *Server) Serve() error {", h.Section)
	require.NoError(t, h.Validate())
	assert.Equal(t, Deletion, h.Lines[1].Kind)
	assert.Equal(t, "\tif err != nil {", h.Lines[1].Text)

	assert.Equal(t, Deleted, files[1].Kind)
	assert.Equal(t, "docs/intro.md", files[1].Path)
	assert.Empty(t, files[1].Hunks)
}

func TestParseDiff_Rename(t *testing.T) {
	text := "diff --git a/old.go b/new.go\n" +
		"similarity index 95%\n" +
		"rename from old.go\n" +
		"rename to new.go\n" +
		"--- a/old.go\n" +
		"+++ b/new.go\n" +
		"@@ -1 +1 @@\n" +
		"-x\n" +
		"+y\n"
	files, err := ParseDiff(text)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, Renamed, files[0].Kind)
	assert.Equal(t, "new.go", files[0].Path)
	assert.Equal(t, "old.go", files[0].OldPath)
}

func TestParseDiff_Binary(t *testing.T) {
	text := "diff --git a/logo.png b/logo.png\n" +
		"index 83db48f..bf269f4 100644\n" +
		"Binary files a/logo.png and b/logo.png differ\n"
	files, err := ParseDiff(text)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.True(t, files[0].Binary)
	assert.Empty(t, files[0].Hunks)
}

func TestParseDiff_NoNewlineMarker(t *testing.T) {
	text := "diff --git a/f b/f\n" +
		"--- a/f\n" +
		"+++ b/f\n" +
		"@@ -1 +1 @@\n" +
		"-old\n" +
		"+new\n" +
		"\\ No newline at end of file\n"
	files, err := ParseDiff(text)
	require.NoError(t, err)
	h := files[0].Hunks[0]
	require.Len(t, h.Lines, 3)
	assert.Equal(t, NoNewlineMarker, h.Lines[2].Kind)
	assert.Equal(t, "No newline at end of file", h.Lines[2].Text)
	require.NoError(t, h.Validate())
}

func TestParseDiff_MalformedHunkHeader(t *testing.T) {
	text := "diff --git a/f b/f\n" +
		"--- a/f\n" +
		"+++ b/f\n" +
		"@@ -x,1 +1 @@\n" +
		" a\n"
	_, err := ParseDiff(text)
	require.ErrorIs(t, err, ErrMalformedPatch)
}

func TestParseDiff_HeaderWithoutPath(t *testing.T) {
	_, err := ParseDiff("diff --git\n@@ -1 +1 @@\n-a\n+b\n")
	require.ErrorIs(t, err, ErrMalformedPatch)
}

func TestParseDiff_CountDefaultsToOne(t *testing.T) {
	text := "diff --git a/f b/f\n" +
		"--- a/f\n" +
		"+++ b/f\n" +
		"@@ -3 +3 @@\n" +
		"-a\n" +
		"+b\n"
	files, err := ParseDiff(text)
	require.NoError(t, err)
	h := files[0].Hunks[0]
	assert.Equal(t, 1, h.OldCount)
	assert.Equal(t, 1, h.NewCount)
}

func TestParseStatus(t *testing.T) {
	text := "# branch.oid 1234abcd\n" +
		"# branch.head main\n" +
		"# branch.upstream origin/main\n" +
		"# branch.ab +2 -1\n" +
		"1 .M N... 100644 100644 100644 aaa bbb pkg/server.go\n" +
		"? notes.txt\n" +
		"u UU N... 100644 100644 100644 100644 aaa bbb ccc conflict.go\n"
	info := ParseStatus(text)
	assert.Equal(t, "main", info.Branch)
	assert.False(t, info.Detached)
	assert.False(t, info.NoCommits)
	assert.Equal(t, 2, info.Ahead)
	assert.Equal(t, 1, info.Behind)
	assert.Equal(t, []string{"notes.txt"}, info.Untracked)
	assert.Equal(t, []string{"conflict.go"}, info.Conflicted)
}

func TestParseStatus_InitialDetached(t *testing.T) {
	info := ParseStatus("# branch.oid (initial)\n# branch.head (detached)\n")
	assert.True(t, info.NoCommits)
	assert.True(t, info.Detached)
	assert.Empty(t, info.Branch)
}

// genHunkText produces a random well-formed hunk body with matching
// range counts.
func genHunkText(t *rapid.T) string {
	kinds := rapid.SliceOfN(rapid.IntRange(0, 2), 1, 30).Draw(t, "kinds")
	oldN, newN := 0, 0
	body := ""
	for _, k := range kinds {
		text := rapid.StringMatching(`[a-z ]{0,12}`).Draw(t, "text")
		switch k {
		case 0:
			body += " " + text + "\n"
			oldN++
			newN++
		case 1:
			body += "-" + text + "\n"
			oldN++
		case 2:
			body += "+" + text + "\n"
			newN++
		}
	}
	header := fmt.Sprintf("@@ -1,%d +1,%d @@\n", oldN, newN)
	return "diff --git a/f b/f\n--- a/f\n+++ b/f\n" + header + body
}

func TestParsedHunkInvariant(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		files, err := ParseDiff(genHunkText(t))
		if err != nil {
			t.Fatalf("parse: %v", err)
		}
		if len(files) != 1 || len(files[0].Hunks) != 1 {
			t.Fatalf("expected one file with one hunk")
		}
		if err := files[0].Hunks[0].Validate(); err != nil {
			t.Fatalf("invariant violated: %v", err)
		}
	})
}
