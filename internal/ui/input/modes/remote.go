package modes

import (
	tea "github.com/charmbracelet/bubbletea"

	"trawl/internal/ui/input/types"
)

// RemoteMode is the channel switcher overlay. It keeps its own cursor
// over the channel list and reports it so the view stays in sync.
type RemoteMode struct {
	cursor int
}

func NewRemoteMode() *RemoteMode {
	return &RemoteMode{}
}

func (m *RemoteMode) Name() string {
	return "remote"
}

func (m *RemoteMode) Enter(ctx types.Context) []types.Action {
	// start on the active channel
	m.cursor = 0
	for i, name := range ctx.ChannelNames() {
		if name == ctx.ChannelName() {
			m.cursor = i
			break
		}
	}
	return []types.Action{types.RemoteCursorAction{Index: m.cursor}}
}

func (m *RemoteMode) Exit(ctx types.Context) []types.Action {
	return nil
}

func (m *RemoteMode) HandleKey(msg tea.KeyMsg, ctx types.Context) ([]types.Action, bool) {
	names := ctx.ChannelNames()
	switch msg.String() {
	case "ctrl+c":
		return []types.Action{types.QuitAction{Force: true}}, true
	case "esc", "ctrl+r":
		return []types.Action{types.ChangeModeAction{Mode: types.ModeFiltering}}, true
	case "up", "ctrl+p", "k":
		if m.cursor > 0 {
			m.cursor--
		}
		return []types.Action{types.RemoteCursorAction{Index: m.cursor}}, true
	case "down", "ctrl+n", "j":
		if m.cursor < len(names)-1 {
			m.cursor++
		}
		return []types.Action{types.RemoteCursorAction{Index: m.cursor}}, true
	case "enter":
		if m.cursor >= 0 && m.cursor < len(names) {
			return []types.Action{
				types.SwitchChannelAction{Name: names[m.cursor]},
				types.ChangeModeAction{Mode: types.ModeFiltering},
			}, true
		}
		return []types.Action{types.ChangeModeAction{Mode: types.ModeFiltering}}, true
	}
	return nil, false
}
