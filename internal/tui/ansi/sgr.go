// Package ansi interprets SGR escape sequences in subprocess output so
// colorized text can be redisplayed inside the program's own rendering.
package ansi

import (
	"fmt"
	"strconv"
	"strings"
)

// Style is the graphic rendition state carried by a run. Colors are
// lipgloss-compatible strings: "0".."15" for the basic palette, decimal
// for 256-color, "#rrggbb" for truecolor, empty for the terminal default.
type Style struct {
	Fg        string
	Bg        string
	Bold      bool
	Faint     bool
	Italic    bool
	Underline bool
	Reverse   bool
}

// Run is a stretch of text rendered under one style.
type Run struct {
	Text  string
	Style Style
}

// Interpreter is a streaming SGR state machine. Chunk boundaries may fall
// anywhere, including inside an escape sequence or a multibyte rune; the
// partial tail is buffered until the next Feed completes it.
type Interpreter struct {
	cur   Style
	text  strings.Builder
	esc   []byte
	inEsc bool
	runs  []Run
}

// NewInterpreter returns an interpreter starting from the default style.
func NewInterpreter() *Interpreter {
	return &Interpreter{}
}

// Feed consumes the next chunk of subprocess output.
func (it *Interpreter) Feed(chunk string) {
	for i := 0; i < len(chunk); i++ {
		c := chunk[i]
		if it.inEsc {
			it.esc = append(it.esc, c)
			if it.escComplete() {
				it.finishEscape()
			}
			continue
		}
		if c == 0x1b {
			it.inEsc = true
			it.esc = it.esc[:0]
			continue
		}
		it.text.WriteByte(c)
	}
}

// Runs closes the current run and returns everything interpreted so far.
// Every style change produces a run boundary, so a stream that sets a
// style before any text yields a leading empty-text run.
func (it *Interpreter) Runs() []Run {
	it.closeRun()
	return it.runs
}

// Interpret runs a complete stream through a fresh interpreter.
func Interpret(s string) []Run {
	it := NewInterpreter()
	it.Feed(s)
	return it.Runs()
}

// Text returns the stream's text with all control sequences removed and
// invalid encoding replaced.
func Text(s string) string {
	var b strings.Builder
	for _, r := range Interpret(s) {
		b.WriteString(r.Text)
	}
	return b.String()
}

func (it *Interpreter) closeRun() {
	// Invalid byte sequences become visible placeholders instead of
	// propagating a decoding failure.
	it.runs = append(it.runs, Run{
		Text:  strings.ToValidUTF8(it.text.String(), "�"),
		Style: it.cur,
	})
	it.text.Reset()
}

// escComplete reports whether the buffered bytes after ESC form a full
// sequence.
func (it *Interpreter) escComplete() bool {
	if len(it.esc) == 0 {
		return false
	}
	switch it.esc[0] {
	case '[': // CSI: parameter/intermediate bytes, then a final 0x40-0x7e
		last := it.esc[len(it.esc)-1]
		return len(it.esc) > 1 && last >= 0x40 && last <= 0x7e
	case ']': // OSC: terminated by BEL or ST
		last := it.esc[len(it.esc)-1]
		if last == 0x07 {
			return true
		}
		return len(it.esc) > 1 && it.esc[len(it.esc)-2] == 0x1b && last == '\\'
	case 'P', 'X', '^', '_': // DCS, SOS, PM, APC: terminated by ST
		last := it.esc[len(it.esc)-1]
		return len(it.esc) > 1 && it.esc[len(it.esc)-2] == 0x1b && last == '\\'
	default:
		// Single-byte escapes (ESC c, ESC 7, ...).
		return true
	}
}

func (it *Interpreter) finishEscape() {
	seq := it.esc
	it.inEsc = false
	it.esc = nil
	// Only SGR changes the style; everything else is consumed and dropped.
	if len(seq) < 2 || seq[0] != '[' || seq[len(seq)-1] != 'm' {
		return
	}
	it.closeRun()
	it.applySGR(string(seq[1 : len(seq)-1]))
}

func (it *Interpreter) applySGR(params string) {
	if params == "" {
		it.cur = Style{}
		return
	}
	fields := strings.Split(params, ";")
	for i := 0; i < len(fields); i++ {
		n, err := strconv.Atoi(fields[i])
		if err != nil {
			// Unsupported parameter form; leave the style untouched.
			continue
		}
		switch {
		case n == 0:
			it.cur = Style{}
		case n == 1:
			it.cur.Bold = true
		case n == 2:
			it.cur.Faint = true
		case n == 3:
			it.cur.Italic = true
		case n == 4:
			it.cur.Underline = true
		case n == 7:
			it.cur.Reverse = true
		case n == 22:
			it.cur.Bold, it.cur.Faint = false, false
		case n == 23:
			it.cur.Italic = false
		case n == 24:
			it.cur.Underline = false
		case n == 27:
			it.cur.Reverse = false
		case n >= 30 && n <= 37:
			it.cur.Fg = strconv.Itoa(n - 30)
		case n == 38:
			if c, skip := extendedColor(fields[i+1:]); c != "" {
				it.cur.Fg = c
				i += skip
			}
		case n == 39:
			it.cur.Fg = ""
		case n >= 40 && n <= 47:
			it.cur.Bg = strconv.Itoa(n - 40)
		case n == 48:
			if c, skip := extendedColor(fields[i+1:]); c != "" {
				it.cur.Bg = c
				i += skip
			}
		case n == 49:
			it.cur.Bg = ""
		case n >= 90 && n <= 97:
			it.cur.Fg = strconv.Itoa(n - 90 + 8)
		case n >= 100 && n <= 107:
			it.cur.Bg = strconv.Itoa(n - 100 + 8)
		}
	}
}

// extendedColor decodes the tail of a 38/48 parameter: "5;n" for the
// 256-color palette, "2;r;g;b" for truecolor. Returns the color and how
// many fields were consumed.
func extendedColor(rest []string) (string, int) {
	if len(rest) >= 2 && rest[0] == "5" {
		if n, err := strconv.Atoi(rest[1]); err == nil && n >= 0 && n <= 255 {
			return strconv.Itoa(n), 2
		}
	}
	if len(rest) >= 4 && rest[0] == "2" {
		r, err1 := strconv.Atoi(rest[1])
		g, err2 := strconv.Atoi(rest[2])
		b, err3 := strconv.Atoi(rest[3])
		if err1 == nil && err2 == nil && err3 == nil {
			return fmt.Sprintf("#%02x%02x%02x", r&0xff, g&0xff, b&0xff), 4
		}
	}
	return "", 0
}
