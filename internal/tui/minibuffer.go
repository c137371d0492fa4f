package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// MinibufferKind selects where a submitted line goes.
type MinibufferKind int

const (
	MinibufferGit MinibufferKind = iota
	MinibufferShell
)

// Minibuffer captures one line of free-form input at the bottom of the
// screen. Each kind keeps its own submit history, navigable with
// up/down while editing.
type Minibuffer struct {
	input   textinput.Model
	kind    MinibufferKind
	active  bool
	history map[MinibufferKind][]string
	histPos int
	draft   string
}

// NewMinibuffer creates an inactive minibuffer.
func NewMinibuffer() *Minibuffer {
	return &Minibuffer{history: map[MinibufferKind][]string{}}
}

// Start opens the minibuffer for one capture.
func (m *Minibuffer) Start(kind MinibufferKind) {
	ti := textinput.New()
	switch kind {
	case MinibufferShell:
		ti.Prompt = "!"
	default:
		ti.Prompt = ":"
	}
	ti.Focus()
	m.input = ti
	m.kind = kind
	m.active = true
	m.histPos = len(m.history[kind])
	m.draft = ""
}

// Active reports whether the minibuffer owns key input.
func (m *Minibuffer) Active() bool {
	return m.active
}

// Kind returns the capture target of the current session.
func (m *Minibuffer) Kind() MinibufferKind {
	return m.kind
}

// HandleKey processes one key. It returns the submitted text when enter
// confirms a non-empty line; canceled is set when escape aborts the
// capture. The cursor motion, word jumps, and delete-either-side
// contract comes from the underlying textinput.
func (m *Minibuffer) HandleKey(msg tea.KeyMsg) (submitted string, done, canceled bool, cmd tea.Cmd) {
	switch msg.String() {
	case "esc", "ctrl+g":
		m.active = false
		return "", false, true, nil
	case "enter":
		text := strings.TrimSpace(m.input.Value())
		m.active = false
		if text == "" {
			return "", false, true, nil
		}
		hist := m.history[m.kind]
		if len(hist) == 0 || hist[len(hist)-1] != text {
			m.history[m.kind] = append(hist, text)
		}
		return text, true, false, nil
	case "up", "ctrl+p":
		m.recallHistory(-1)
		return "", false, false, nil
	case "down", "ctrl+n":
		m.recallHistory(1)
		return "", false, false, nil
	}
	m.input, cmd = m.input.Update(msg)
	return "", false, false, cmd
}

func (m *Minibuffer) recallHistory(dir int) {
	hist := m.history[m.kind]
	if m.histPos == len(hist) {
		m.draft = m.input.Value()
	}
	pos := m.histPos + dir
	if pos < 0 || pos > len(hist) {
		return
	}
	m.histPos = pos
	if pos == len(hist) {
		m.input.SetValue(m.draft)
	} else {
		m.input.SetValue(hist[pos])
	}
	m.input.CursorEnd()
}

// Update forwards non-key messages (cursor blink and the like) to the
// underlying textinput.
func (m *Minibuffer) Update(msg tea.Msg) tea.Cmd {
	if !m.active {
		return nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return cmd
}

// View renders the input line.
func (m *Minibuffer) View() string {
	return m.input.View()
}
