package views

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"trawl/internal/ui/input/types"
)

// chromeLines is the fixed part of the left column: count line, prompt
// line and the help bar.
const chromeLines = 3

// minWidthForPreview is the narrowest terminal at which the preview
// pane is still drawn.
const minWidthForPreview = 60

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// ViewState contains all the state needed for rendering
type ViewState struct {
	Width  int
	Height int

	ChannelName string
	InputView   string

	Rows           []ResultRow // best match first
	SelectedRow    int         // index into Rows
	MatchedCount   int
	TotalCount     int
	Ingesting      bool
	ViewportOffset int // index into Rows of the bottom visible row

	PreviewEnabled  bool
	PreviewWidthPct int
	Preview         PreviewData

	Mode          types.Mode
	ConfirmPrompt string
	ChannelNames  []string
	RemoteCursor  int

	ShowHelp bool
	HelpBar  string
	HelpView string

	StatusMessage string
	StatusIsError bool
}

// Renderer handles all view rendering
type Renderer struct {
	styles  *Styles
	results *ResultsRenderer
	preview *PreviewRenderer
}

// NewRenderer creates a new renderer
func NewRenderer() *Renderer {
	styles := NewStyles()
	return &Renderer{
		styles:  styles,
		results: NewResultsRenderer(styles),
		preview: NewPreviewRenderer(styles),
	}
}

// VisibleRows returns how many result lines fit at the given terminal
// height.
func VisibleRows(height int) int {
	rows := height - chromeLines
	if rows < 1 {
		rows = 1
	}
	return rows
}

// SplitWidths returns the widths of the results column and the preview
// pane. The pane gets zero width when disabled or the terminal is too
// narrow to share.
func SplitWidths(width, previewPct int, previewEnabled bool) (listWidth, previewWidth int) {
	if !previewEnabled || width < minWidthForPreview {
		return width, 0
	}
	previewWidth = width * previewPct / 100
	return width - previewWidth, previewWidth
}

// VisibleWindow returns how many rows of total are shown starting at
// offset, plus how many are hidden below (better matches) and above
// (worse matches). Scroll indicators each consume one line of the
// results area, which is why the window shrinks near the edges.
func VisibleWindow(total, offset, height int) (count, below, above int) {
	if total <= 0 {
		return 0, 0, 0
	}
	if offset < 0 {
		offset = 0
	}
	if offset >= total {
		offset = total - 1
	}

	capacity := VisibleRows(height)
	below = offset
	if below > 0 {
		capacity--
	}
	if capacity < 1 {
		capacity = 1
	}

	remaining := total - offset
	if remaining > capacity {
		if capacity > 1 {
			capacity--
		}
		above = remaining - capacity
	}
	count = remaining - above
	return count, below, above
}

// Render produces the complete frame
func (r *Renderer) Render(state ViewState) string {
	if state.Width <= 0 || state.Height <= 0 {
		return ""
	}

	listWidth, previewWidth := SplitWidths(state.Width, state.PreviewWidthPct, state.PreviewEnabled)

	content := &strings.Builder{}
	content.WriteString(r.renderResults(state, listWidth))
	content.WriteString("\n")
	content.WriteString(r.renderCountLine(state, listWidth))
	content.WriteString("\n")
	content.WriteString(r.renderPromptLine(state, listWidth))
	content.WriteString("\n")
	content.WriteString(r.renderBottomLine(state, listWidth))

	frame := lipgloss.NewStyle().Width(listWidth).Render(content.String())
	if previewWidth > 0 {
		pane := r.preview.Render(state.Preview, previewWidth, state.Height)
		frame = lipgloss.JoinHorizontal(lipgloss.Top, frame, pane)
	}

	return r.renderOverlays(state, frame)
}

// renderResults draws the list bottom-anchored with the best match at
// the bottom, next to the prompt.
func (r *Renderer) renderResults(state ViewState, width int) string {
	area := VisibleRows(state.Height)

	if len(state.Rows) == 0 {
		msg := "No results"
		if state.Ingesting {
			msg = "Loading entries..."
		}
		return strings.Repeat("\n", area-1) + "  " + r.styles.Dim.Render(msg)
	}

	count, below, above := VisibleWindow(len(state.Rows), state.ViewportOffset, state.Height)

	lines := make([]string, 0, area)
	if above > 0 {
		lines = append(lines, r.styles.Scroll.Render(fmt.Sprintf("↑ %d more ↑", above)))
	}
	for i := state.ViewportOffset + count - 1; i >= state.ViewportOffset; i-- {
		lines = append(lines, r.results.RenderRow(state.Rows[i], i == state.SelectedRow, width))
	}
	if below > 0 {
		lines = append(lines, r.styles.Scroll.Render(fmt.Sprintf("↓ %d more ↓", below)))
	}

	if pad := area - len(lines); pad > 0 {
		return strings.Repeat("\n", pad) + strings.Join(lines, "\n")
	}
	return strings.Join(lines, "\n")
}

func (r *Renderer) renderCountLine(state ViewState, width int) string {
	counts := r.styles.Count.Render(fmt.Sprintf("%d/%d", state.MatchedCount, state.TotalCount))
	left := "  " + counts
	if state.Ingesting {
		frame := int(time.Now().UnixMilli()/80) % len(spinnerFrames)
		left = r.styles.Spinner.Render(spinnerFrames[frame]) + " " + counts
	}

	right := r.styles.Dim.Render(state.ChannelName)
	padding := width - lipgloss.Width(left) - lipgloss.Width(right) - 1
	if padding < 1 {
		return left
	}
	return left + strings.Repeat(" ", padding) + right + " "
}

func (r *Renderer) renderPromptLine(state ViewState, width int) string {
	line := r.styles.Prompt.Render("> ") + state.InputView
	return ansi.Truncate(line, width, "")
}

func (r *Renderer) renderBottomLine(state ViewState, width int) string {
	if state.StatusMessage != "" {
		style := r.styles.StatusWarn
		if state.StatusIsError {
			style = r.styles.StatusError
		}
		return ansi.Truncate(style.Render(state.StatusMessage), width, "…")
	}
	return ansi.Truncate(state.HelpBar, width, "")
}

func (r *Renderer) renderOverlays(state ViewState, frame string) string {
	switch {
	case state.Mode == types.ModeConfirm && state.ConfirmPrompt != "":
		box := r.styles.OverlayBox.Render(
			state.ConfirmPrompt + "\n\n" + r.styles.Dim.Render("y to run, n to go back"))
		return centerOverlay(frame, box, state.Width, state.Height)
	case state.Mode == types.ModeRemote:
		return centerOverlay(frame, r.renderChannelList(state), state.Width, state.Height)
	case state.ShowHelp && state.HelpView != "":
		box := r.styles.OverlayBox.Render(state.HelpView)
		return centerOverlay(frame, box, state.Width, state.Height)
	}
	return frame
}

func (r *Renderer) renderChannelList(state ViewState) string {
	var b strings.Builder
	b.WriteString(r.styles.Title.Render("Switch channel"))
	for i, name := range state.ChannelNames {
		b.WriteString("\n")
		if i == state.RemoteCursor {
			b.WriteString(r.styles.OverlaySel.Render("> " + name))
		} else {
			b.WriteString("  " + name)
		}
		if name == state.ChannelName {
			b.WriteString(r.styles.Dim.Render(" (current)"))
		}
	}
	return r.styles.OverlayBox.Render(b.String())
}
