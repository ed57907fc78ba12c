package console

import (
	"os"
	"strings"

	"github.com/charmbracelet/x/term"
	"github.com/mattn/go-runewidth"
)

const (
	defaultWidth = 80
	columnGap    = 2
)

// TerminalWidth reports the width of stdout, or 80 when it is not a terminal.
func TerminalWidth() int {
	w, _, err := term.GetSize(os.Stdout.Fd())
	if err != nil || w <= 0 {
		return defaultWidth
	}
	return w
}

// Columns lays items out in equal-width columns filling rows left to right.
//
// Widths are measured in terminal cells, so wide runes and emoji line up. Items wider than the
// terminal are truncated with an ellipsis.
func Columns(items []string, width int) string {
	if len(items) == 0 {
		return ""
	}
	if width <= 0 {
		width = defaultWidth
	}

	cell := 0
	for _, item := range items {
		cell = max(cell, runewidth.StringWidth(item))
	}
	cell = min(cell, width)

	perRow := max(1, (width+columnGap)/(cell+columnGap))

	var b strings.Builder
	for i, item := range items {
		item = runewidth.Truncate(item, cell, "…")
		last := i%perRow == perRow-1 || i == len(items)-1
		if last {
			b.WriteString(item)
			b.WriteByte('\n')
			continue
		}
		b.WriteString(runewidth.FillRight(item, cell+columnGap))
	}
	return b.String()
}
