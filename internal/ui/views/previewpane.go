package views

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"trawl/internal/textutil"
)

// PreviewData is what the pane needs to draw one preview
type PreviewData struct {
	Title       string
	Text        string
	Placeholder string // when set, centered instead of content
	Offset      int    // first visible content line
	Numbers     bool   // gutter with line numbers
	TargetLine  int    // 1-based line to highlight, 0 for none
}

// PreviewRenderer renders the right-hand preview pane
type PreviewRenderer struct {
	styles *Styles
}

// NewPreviewRenderer creates a preview renderer
func NewPreviewRenderer(styles *Styles) *PreviewRenderer {
	return &PreviewRenderer{styles: styles}
}

// Render draws the pane at exactly width by height cells
func (p *PreviewRenderer) Render(data PreviewData, width, height int) string {
	innerWidth := width - 2
	innerHeight := height - 2
	if innerWidth < 1 || innerHeight < 1 {
		return ""
	}

	var b strings.Builder
	title := textutil.ShrinkWithEllipsis(data.Title, innerWidth)
	b.WriteString(p.styles.Title.Render(title))
	b.WriteString("\n")

	bodyHeight := innerHeight - 1
	if data.Placeholder != "" {
		b.WriteString(lipgloss.Place(
			innerWidth, bodyHeight,
			lipgloss.Center, lipgloss.Center,
			p.styles.Placeholder.Render(data.Placeholder),
		))
	} else {
		b.WriteString(p.renderBody(data, innerWidth, bodyHeight))
	}

	return p.styles.PaneBorder.
		Width(innerWidth).
		Height(innerHeight).
		Render(b.String())
}

func (p *PreviewRenderer) renderBody(data PreviewData, width, height int) string {
	lines := strings.Split(data.Text, "\n")

	offset := data.Offset
	if max := len(lines) - height; offset > max {
		offset = max
	}
	if offset < 0 {
		offset = 0
	}

	end := offset + height
	if end > len(lines) {
		end = len(lines)
	}

	gutter := 0
	if data.Numbers {
		gutter = len(strconv.Itoa(len(lines))) + 1
	}
	avail := width - gutter
	if avail < 1 {
		avail = 1
	}

	out := make([]string, 0, height)
	for i, line := range lines[offset:end] {
		lineNo := offset + i + 1
		var body string
		if data.TargetLine > 0 && lineNo == data.TargetLine {
			body = p.styles.Selected.Render(ansi.Truncate(ansi.Strip(line), avail, "…"))
		} else {
			body = ansi.Truncate(line, avail, "…")
		}
		if data.Numbers {
			body = p.styles.Dim.Render(fmt.Sprintf("%*d ", gutter-1, lineNo)) + body
		}
		out = append(out, body)
	}
	return strings.Join(out, "\n")
}

// ClampPreviewOffset returns offset limited to the scrollable range of
// text at the given pane height.
func ClampPreviewOffset(text string, offset, paneHeight int) int {
	bodyHeight := paneBodyHeight(paneHeight)
	max := strings.Count(text, "\n") + 1 - bodyHeight
	if offset > max {
		offset = max
	}
	if offset < 0 {
		offset = 0
	}
	return offset
}

// PreviewHalfPage returns half the preview body height at the given
// pane height, at least one line.
func PreviewHalfPage(paneHeight int) int {
	h := paneBodyHeight(paneHeight) / 2
	if h < 1 {
		h = 1
	}
	return h
}

// CenterOffset returns the offset that scrolls targetLine into the
// middle of a pane of the given height.
func CenterOffset(targetLine, paneHeight int) int {
	offset := targetLine - 1 - paneBodyHeight(paneHeight)/2
	if offset < 0 {
		offset = 0
	}
	return offset
}

func paneBodyHeight(paneHeight int) int {
	h := paneHeight - 3 // border rows and title
	if h < 1 {
		h = 1
	}
	return h
}
