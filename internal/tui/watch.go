package tui

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fsnotify/fsnotify"

	"github.com/interpretive-systems/stagium/internal/gitx"
)

// newWatcher watches the git dir so external index or HEAD changes
// trigger a refresh without polling.
func newWatcher(repoRoot string) (*fsnotify.Watcher, error) {
	gitDir, err := gitx.GitDir(repoRoot)
	if err != nil {
		return nil, err
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(gitDir); err != nil {
		w.Close()
		return nil, err
	}
	return w, nil
}

// waitForChange blocks until something under the git dir changes. The
// caller re-issues this command after every watchMsg.
func waitForChange(w *fsnotify.Watcher) tea.Cmd {
	return func() tea.Msg {
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return nil
				}
				// Lock files churn on every git invocation, including
				// our own status reads. Waiting for the real file keeps
				// the refresh loop from feeding itself.
				if strings.HasSuffix(ev.Name, ".lock") {
					continue
				}
				drainEvents(w, 50*time.Millisecond)
				return watchMsg{}
			case _, ok := <-w.Errors:
				if !ok {
					return nil
				}
			}
		}
	}
}

// drainEvents swallows the burst of events a single git command emits.
func drainEvents(w *fsnotify.Watcher, window time.Duration) {
	deadline := time.After(window)
	for {
		select {
		case <-w.Events:
		case <-w.Errors:
		case <-deadline:
			return
		}
	}
}
