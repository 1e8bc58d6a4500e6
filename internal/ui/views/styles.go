package views

import (
	"github.com/charmbracelet/lipgloss"
)

// Styles contains all the style definitions for the UI
type Styles struct {
	Prompt      lipgloss.Style
	Query       lipgloss.Style
	Pointer     lipgloss.Style
	Result      lipgloss.Style
	Selected    lipgloss.Style
	MatchChar   lipgloss.Style
	Count       lipgloss.Style
	Spinner     lipgloss.Style
	Dim         lipgloss.Style
	Scroll      lipgloss.Style
	Title       lipgloss.Style
	PaneBorder  lipgloss.Style
	Placeholder lipgloss.Style
	StatusError lipgloss.Style
	StatusWarn  lipgloss.Style
	Help        lipgloss.Style
	OverlayBox  lipgloss.Style
	OverlaySel  lipgloss.Style
}

// NewStyles creates a new Styles instance with default values
func NewStyles() *Styles {
	return &Styles{
		Prompt:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		Query:     lipgloss.NewStyle(),
		Pointer:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203")),
		Result:    lipgloss.NewStyle(),
		Selected:  lipgloss.NewStyle().Background(lipgloss.Color("238")).Bold(true),
		MatchChar: lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true),
		Count:     lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		Spinner:   lipgloss.NewStyle().Foreground(lipgloss.Color("33")),
		Dim:       lipgloss.NewStyle().Faint(true),
		Scroll:    lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Italic(true),
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("99")),
		PaneBorder: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("241")),
		Placeholder: lipgloss.NewStyle().Faint(true).Italic(true),
		StatusError: lipgloss.NewStyle().Foreground(lipgloss.Color("203")),
		StatusWarn:  lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		Help:        lipgloss.NewStyle().Faint(true),
		OverlayBox: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1).
			BorderForeground(lipgloss.Color("99")),
		OverlaySel: lipgloss.NewStyle().Background(lipgloss.Color("238")).Bold(true),
	}
}
