package views

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// ResultRow is one line of the results list
type ResultRow struct {
	Name      string
	Positions []int // rune offsets to highlight
}

// ResultsRenderer renders individual result lines
type ResultsRenderer struct {
	styles *Styles
}

// NewResultsRenderer creates a results renderer
func NewResultsRenderer(styles *Styles) *ResultsRenderer {
	return &ResultsRenderer{styles: styles}
}

// RenderRow renders one result line, truncated to width
func (r *ResultsRenderer) RenderRow(row ResultRow, selected bool, width int) string {
	var b strings.Builder
	if selected {
		b.WriteString(r.styles.Pointer.Render("> "))
	} else {
		b.WriteString("  ")
	}
	b.WriteString(r.renderName(row, selected))

	return ansi.Truncate(b.String(), width, "…")
}

// renderName styles the candidate name with its matched runes
// highlighted. Runs of equal styling render as one segment.
func (r *ResultsRenderer) renderName(row ResultRow, selected bool) string {
	base := r.styles.Result
	if selected {
		base = r.styles.Selected
	}
	if len(row.Positions) == 0 {
		return base.Render(row.Name)
	}

	matched := make(map[int]bool, len(row.Positions))
	for _, pos := range row.Positions {
		matched[pos] = true
	}
	match := r.styles.MatchChar
	if selected {
		match = r.styles.MatchChar.Background(r.styles.Selected.GetBackground())
	}

	var b strings.Builder
	runes := []rune(row.Name)
	start := 0
	for start < len(runes) {
		inMatch := matched[start]
		end := start
		for end < len(runes) && matched[end] == inMatch {
			end++
		}
		segment := string(runes[start:end])
		if inMatch {
			b.WriteString(match.Render(segment))
		} else {
			b.WriteString(base.Render(segment))
		}
		start = end
	}
	return b.String()
}
