package input

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"trawl/internal/ui/input/modes"
	"trawl/internal/ui/input/types"
)

// Handler routes keys to the active mode and owns the shared query
// input. The query survives mode round-trips: leaving filtering for
// the confirm prompt or the remote list blurs the input but never
// clears it.
type Handler struct {
	currentMode types.Mode
	modes       map[types.Mode]types.ModeHandler
	textInput   *textinput.Model
}

func New() *Handler {
	ti := textinput.New()
	ti.Prompt = ""
	ti.Focus()

	h := &Handler{
		currentMode: types.ModeFiltering,
		textInput:   &ti,
		modes:       make(map[types.Mode]types.ModeHandler),
	}

	h.modes[types.ModeFiltering] = modes.NewFilteringMode()
	h.modes[types.ModeConfirm] = modes.NewConfirmMode()
	h.modes[types.ModeRemote] = modes.NewRemoteMode()

	return h
}

func (h *Handler) HandleKey(msg tea.KeyMsg, ctx types.Context) ([]types.Action, tea.Cmd) {
	handler := h.modes[h.currentMode]
	if handler == nil {
		return nil, nil
	}

	actions, consumed := handler.HandleKey(msg, ctx)

	var cmd tea.Cmd
	var allActions []types.Action

	if !consumed && !h.isTextMode(h.currentMode) {
		return nil, nil
	}

	for _, action := range actions {
		if changeMode, ok := action.(types.ChangeModeAction); ok {
			if h.modes[h.currentMode] != nil {
				allActions = append(allActions, h.modes[h.currentMode].Exit(ctx)...)
			}

			oldMode := h.currentMode
			h.currentMode = changeMode.Mode

			if h.modes[h.currentMode] != nil {
				allActions = append(allActions, h.modes[h.currentMode].Enter(ctx)...)
			}

			if h.isTextMode(h.currentMode) {
				h.textInput.Focus()
				cmd = textinput.Blink
			} else if h.isTextMode(oldMode) {
				h.textInput.Blur()
			}
		} else {
			allActions = append(allActions, action)
		}
	}

	// keys the filtering mode did not claim edit the query
	if h.isTextMode(h.currentMode) && !consumed {
		var textCmd tea.Cmd
		before := h.textInput.Value()
		*h.textInput, textCmd = h.textInput.Update(msg)
		cmd = textCmd
		if h.textInput.Value() != before {
			allActions = append(allActions, types.UpdateQueryAction{Text: h.textInput.Value()})
		}
	}

	return allActions, cmd
}

// CurrentMode returns the active input mode
func (h *Handler) CurrentMode() types.Mode {
	return h.currentMode
}

// SetMode forces a transition initiated by the model rather than by a
// key, running the same Exit/Enter hooks. The caller processes the
// returned actions.
func (h *Handler) SetMode(mode types.Mode, ctx types.Context) []types.Action {
	if mode == h.currentMode {
		return nil
	}

	var actions []types.Action
	if cur := h.modes[h.currentMode]; cur != nil {
		actions = append(actions, cur.Exit(ctx)...)
	}

	oldMode := h.currentMode
	h.currentMode = mode

	if next := h.modes[mode]; next != nil {
		actions = append(actions, next.Enter(ctx)...)
	}

	if h.isTextMode(mode) {
		h.textInput.Focus()
	} else if h.isTextMode(oldMode) {
		h.textInput.Blur()
	}

	return actions
}

// TextInput exposes the shared query input for rendering
func (h *Handler) TextInput() *textinput.Model {
	return h.textInput
}

// Query returns the current query text
func (h *Handler) Query() string {
	return h.textInput.Value()
}

// Update handles non-keyboard messages for the query input
func (h *Handler) Update(msg tea.Msg) tea.Cmd {
	if h.isTextMode(h.currentMode) {
		var cmd tea.Cmd
		*h.textInput, cmd = h.textInput.Update(msg)
		return cmd
	}
	return nil
}

func (h *Handler) isTextMode(mode types.Mode) bool {
	return mode == types.ModeFiltering
}
