package types

import tea "github.com/charmbracelet/bubbletea"

// Mode represents an input mode
type Mode int

const (
	// ModeFiltering is the default mode: keys edit the query,
	// navigation moves the result selection.
	ModeFiltering Mode = iota
	// ModeConfirm awaits a yes/no before running a bound action
	ModeConfirm
	// ModeRemote lists the channels available for switching
	ModeRemote
)

// Action represents a command the model should execute
type Action interface {
	Type() string
}

// Context provides read-only access to model state needed for input
// handling.
type Context interface {
	SelectedIndex() int
	ResultCount() int
	TotalCount() int
	Query() string
	ChannelName() string
	ChannelNames() []string
}

// ModeHandler handles input for a specific mode
type ModeHandler interface {
	// HandleKey processes a key message and returns actions and
	// whether the key was consumed
	HandleKey(msg tea.KeyMsg, ctx Context) ([]Action, bool)

	// Enter is called when entering this mode
	Enter(ctx Context) []Action

	// Exit is called when leaving this mode
	Exit(ctx Context) []Action

	// Name returns the mode name for display
	Name() string
}
