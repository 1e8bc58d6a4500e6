package types

// Navigation actions
type NavigateAction struct {
	Direction string // "up", "down", "pageup", "pagedown"
}

func (a NavigateAction) Type() string { return "navigate" }

// Mode transition actions
type ChangeModeAction struct {
	Mode Mode
}

func (a ChangeModeAction) Type() string { return "change_mode" }

// Query actions
type UpdateQueryAction struct {
	Text string
}

func (a UpdateQueryAction) Type() string { return "update_query" }

// ConfirmSelectionAction asks the model to resolve the confirm action
// for the selected candidate: print and exit, or hand off to the
// confirm prompt when the channel binds a command.
type ConfirmSelectionAction struct{}

func (a ConfirmSelectionAction) Type() string { return "confirm_selection" }

// ExecuteBoundAction runs the command the confirm prompt accepted
type ExecuteBoundAction struct{}

func (a ExecuteBoundAction) Type() string { return "execute_bound" }

// Preview actions
type TogglePreviewAction struct{}

func (a TogglePreviewAction) Type() string { return "toggle_preview" }

type ScrollPreviewAction struct {
	Delta int  // lines, negative is up
	Half  bool // scale Delta to half the pane height
}

func (a ScrollPreviewAction) Type() string { return "scroll_preview" }

// Channel actions
type SwitchChannelAction struct {
	Name string
}

func (a SwitchChannelAction) Type() string { return "switch_channel" }

// RemoteCursorAction keeps the rendered remote list in sync with the
// mode's own cursor.
type RemoteCursorAction struct {
	Index int
}

func (a RemoteCursorAction) Type() string { return "remote_cursor" }

// Utility actions
type CopyEntryAction struct{}

func (a CopyEntryAction) Type() string { return "copy_entry" }

type OpenPagerAction struct{}

func (a OpenPagerAction) Type() string { return "open_pager" }

type ToggleHelpAction struct{}

func (a ToggleHelpAction) Type() string { return "toggle_help" }

type QuitAction struct {
	Force bool // true for Ctrl+C, false for esc
}

func (a QuitAction) Type() string { return "quit" }
