package tui

import (
	"strings"

	"github.com/charmbracelet/x/ansi"

	"hovercard/internal/tooltip"
)

// clampOverlay keeps a w×h box at p inside a screen of sw×sh cells.
func clampOverlay(p tooltip.Point, w, h, sw, sh int) tooltip.Point {
	if p.Left+w > sw {
		p.Left = sw - w
	}
	if p.Top+h > sh {
		p.Top = sh - h
	}
	p.Left = max(p.Left, 0)
	p.Top = max(p.Top, 0)
	return p
}

// placeOverlay draws fg over bg with its top-left corner at cell (x, y).
// Both may contain ANSI styling.
func placeOverlay(x, y int, fg, bg string) string {
	fgLines := strings.Split(fg, "\n")
	bgLines := strings.Split(bg, "\n")

	fgWidth := 0
	for _, l := range fgLines {
		fgWidth = max(fgWidth, ansi.StringWidth(l))
	}

	for i, fl := range fgLines {
		row := y + i
		if row < 0 || row >= len(bgLines) {
			continue
		}
		bl := bgLines[row]
		if w := ansi.StringWidth(bl); w < x {
			bl += strings.Repeat(" ", x-w)
		}
		if w := ansi.StringWidth(fl); w < fgWidth {
			fl += strings.Repeat(" ", fgWidth-w)
		}
		left := ansi.Truncate(bl, x, "")
		right := ansi.TruncateLeft(bl, x+fgWidth, "")
		bgLines[row] = left + "\x1b[0m" + fl + "\x1b[0m" + right
	}
	return strings.Join(bgLines, "\n")
}
