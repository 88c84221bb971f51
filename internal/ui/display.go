package ui

import (
	"os"

	"github.com/charmbracelet/x/term"
)

// DefaultTermWidth is used when stdout is not a terminal or its size is unknown.
const DefaultTermWidth = 120

// DisplayContext carries the width that paper tables and rendered notes wrap to.
type DisplayContext struct {
	TermWidth int
}

// NewDisplayContext measures stdout, falling back to DefaultTermWidth.
func NewDisplayContext() *DisplayContext {
	width := DefaultTermWidth
	fd := os.Stdout.Fd()
	if term.IsTerminal(fd) {
		if w, _, err := term.GetSize(fd); err == nil && w > 0 {
			width = w
		}
	}
	return NewDisplayContextWithWidth(width)
}

// NewDisplayContextWithWidth pins the width, as when output is piped to a pager.
func NewDisplayContextWithWidth(width int) *DisplayContext {
	return &DisplayContext{TermWidth: width}
}

// AvailableWidth is the width left once leftMargin columns are reserved.
func (d *DisplayContext) AvailableWidth(leftMargin int) int {
	return d.TermWidth - leftMargin
}
