package modes

import (
	tea "github.com/charmbracelet/bubbletea"

	"trawl/internal/ui/input/types"
)

// FilteringMode is the default mode. Unbound keys fall through to the
// query input; everything else drives the session.
type FilteringMode struct{}

func NewFilteringMode() *FilteringMode {
	return &FilteringMode{}
}

func (m *FilteringMode) Name() string {
	return "filtering"
}

func (m *FilteringMode) Enter(ctx types.Context) []types.Action {
	return nil
}

func (m *FilteringMode) Exit(ctx types.Context) []types.Action {
	return nil
}

func (m *FilteringMode) HandleKey(msg tea.KeyMsg, ctx types.Context) ([]types.Action, bool) {
	switch msg.String() {
	case "ctrl+c":
		return []types.Action{types.QuitAction{Force: true}}, true
	case "esc":
		return []types.Action{types.QuitAction{}}, true
	case "enter":
		return []types.Action{types.ConfirmSelectionAction{}}, true
	case "up", "ctrl+p":
		return []types.Action{types.NavigateAction{Direction: "up"}}, true
	case "down", "ctrl+n":
		return []types.Action{types.NavigateAction{Direction: "down"}}, true
	case "pgup":
		return []types.Action{types.NavigateAction{Direction: "pageup"}}, true
	case "pgdown":
		return []types.Action{types.NavigateAction{Direction: "pagedown"}}, true
	case "ctrl+r":
		return []types.Action{types.ChangeModeAction{Mode: types.ModeRemote}}, true
	case "ctrl+o":
		return []types.Action{types.TogglePreviewAction{}}, true
	case "ctrl+up":
		return []types.Action{types.ScrollPreviewAction{Delta: -3}}, true
	case "ctrl+down":
		return []types.Action{types.ScrollPreviewAction{Delta: 3}}, true
	case "alt+up":
		return []types.Action{types.ScrollPreviewAction{Delta: -1}}, true
	case "alt+down":
		return []types.Action{types.ScrollPreviewAction{Delta: 1}}, true
	case "ctrl+pgup":
		return []types.Action{types.ScrollPreviewAction{Delta: -1, Half: true}}, true
	case "ctrl+pgdown":
		return []types.Action{types.ScrollPreviewAction{Delta: 1, Half: true}}, true
	case "ctrl+y":
		return []types.Action{types.CopyEntryAction{}}, true
	case "f3":
		return []types.Action{types.OpenPagerAction{}}, true
	case "f1":
		return []types.Action{types.ToggleHelpAction{}}, true
	default:
		// fall through to the query input
		return nil, false
	}
}
