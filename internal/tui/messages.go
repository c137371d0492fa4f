package tui

import (
	"github.com/interpretive-systems/stagium/internal/gitx"
	"github.com/interpretive-systems/stagium/internal/prefs"
	"github.com/interpretive-systems/stagium/internal/unidiff"
)

// snapshotMsg carries a refreshed repository snapshot.
type snapshotMsg struct {
	status *unidiff.RepoStatus
	err    error
}

// opDoneMsg reports a state-changing git operation.
type opDoneMsg struct {
	notice string
	err    error
}

// outputMsg carries the captured output of a user-initiated command.
type outputMsg struct {
	label string
	out   gitx.Output
	err   error
}

// editorDoneMsg arrives after a commit editor hands the terminal back.
type editorDoneMsg struct {
	err error
}

// watchMsg signals filesystem activity under the git dir.
type watchMsg struct{}

// prefsMsg contains loaded per-repo preferences.
type prefsMsg struct {
	p prefs.Prefs
}
