package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// Layout manages screen layout calculations.
type Layout struct {
	width  int
	height int
}

// NewLayout creates a new layout manager.
func NewLayout() *Layout {
	return &Layout{}
}

// SetSize updates the layout dimensions.
func (l *Layout) SetSize(width, height int) {
	l.width = width
	l.height = height
}

// Width returns the total width.
func (l *Layout) Width() int {
	return l.width
}

// Height returns the total height.
func (l *Layout) Height() int {
	return l.height
}

// ContentHeight returns the height available for the tree.
func (l *Layout) ContentHeight(overlayHeight int) int {
	// top bar + top rule + bottom rule + bottom bar + overlays
	h := l.height - 4 - overlayHeight
	if h < 1 {
		h = 1
	}
	return h
}

// RenderFrame renders the full frame: top bar, rule, content, optional
// overlay, rule, bottom bar.
func (l *Layout) RenderFrame(topLeft, topRight string, contentLines, overlayLines []string, bottomBar string) string {
	var b strings.Builder

	b.WriteString(l.renderTopBar(topLeft, topRight))
	b.WriteByte('\n')
	b.WriteString(strings.Repeat("─", l.width))
	b.WriteByte('\n')

	contentHeight := l.ContentHeight(len(overlayLines))
	for i := 0; i < contentHeight; i++ {
		if i < len(contentLines) {
			b.WriteString(padToWidth(contentLines[i], l.width))
		} else {
			b.WriteString(strings.Repeat(" ", l.width))
		}
		if i < contentHeight-1 {
			b.WriteByte('\n')
		}
	}

	if len(overlayLines) > 0 {
		b.WriteByte('\n')
		for i, line := range overlayLines {
			b.WriteString(padToWidth(line, l.width))
			if i < len(overlayLines)-1 {
				b.WriteByte('\n')
			}
		}
	}

	b.WriteByte('\n')
	b.WriteString(strings.Repeat("─", l.width))
	b.WriteByte('\n')
	b.WriteString(bottomBar)

	return b.String()
}

func (l *Layout) renderTopBar(left, right string) string {
	rightW := lipgloss.Width(right)
	if rightW >= l.width {
		return ansi.Truncate(right, l.width, "…")
	}

	avail := l.width - rightW - 1
	if lipgloss.Width(left) > avail {
		left = ansi.Truncate(left, avail, "…")
	} else if lipgloss.Width(left) < avail {
		left = left + strings.Repeat(" ", avail-lipgloss.Width(left))
	}

	return left + " " + right
}

func padToWidth(s string, w int) string {
	width := lipgloss.Width(s)
	if width == w {
		return s
	}
	if width < w {
		return s + strings.Repeat(" ", w-width)
	}
	return ansi.Truncate(s, w, "…")
}
