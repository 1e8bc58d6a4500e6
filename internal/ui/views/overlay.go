package views

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// spliceOverlay replaces a rectangular region of a rendered view with
// overlay content starting at (anchorX, anchorY). ANSI-aware
// truncation keeps escape sequences on both sides of the overlay
// intact.
func spliceOverlay(view string, overlayLines []string, anchorX, anchorY int) string {
	if len(overlayLines) == 0 {
		return view
	}

	viewLines := strings.Split(view, "\n")
	overlayWidth := ansi.StringWidth(overlayLines[0])

	for index, overlayLine := range overlayLines {
		viewLineIndex := anchorY + index
		if viewLineIndex < 0 || viewLineIndex >= len(viewLines) {
			continue
		}

		viewLine := viewLines[viewLineIndex]
		viewLineWidth := ansi.StringWidth(viewLine)

		var result strings.Builder
		if anchorX > 0 {
			result.WriteString(ansi.Truncate(viewLine, anchorX, ""))
		}
		result.WriteString("\x1b[0m")
		result.WriteString(overlayLine)
		result.WriteString("\x1b[0m")

		suffixStart := anchorX + overlayWidth
		if suffixStart < viewLineWidth {
			result.WriteString(ansi.TruncateLeft(viewLine, suffixStart, ""))
		}

		viewLines[viewLineIndex] = result.String()
	}

	return strings.Join(viewLines, "\n")
}

// centerOverlay splices box into the middle of a width×height view
func centerOverlay(view, box string, width, height int) string {
	lines := strings.Split(box, "\n")
	boxWidth := 0
	for _, line := range lines {
		if w := ansi.StringWidth(line); w > boxWidth {
			boxWidth = w
		}
	}
	x := (width - boxWidth) / 2
	if x < 0 {
		x = 0
	}
	y := (height - len(lines)) / 2
	if y < 0 {
		y = 0
	}
	return spliceOverlay(view, lines, x, y)
}
