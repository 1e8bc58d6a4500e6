package ui

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"trawl/internal/channel"
	"trawl/internal/config"
	"trawl/internal/entry"
	"trawl/internal/eventbus"
	"trawl/internal/matcher"
	"trawl/internal/preview"
	"trawl/internal/store"
	"trawl/internal/ui/input"
	inputtypes "trawl/internal/ui/input/types"
	"trawl/internal/ui/views"
)

const (
	// matchBacklog is how many results beyond the visible rows each
	// match pass retains, so short scrolls never wait on a new pass.
	matchBacklog = 32

	wheelScrollLines = 3
	statusClearDelay = 3 * time.Second
)

// Outcome is how the session ended
type Outcome int

const (
	// OutcomeCancelled means the user backed out
	OutcomeCancelled Outcome = iota
	// OutcomeConfirmed means a candidate was accepted
	OutcomeConfirmed
	// OutcomeError means the session died on a fatal error
	OutcomeError
)

// Result is what the caller acts on after the program returns: the
// confirmed output goes to stdout, the outcome picks the exit code.
type Result struct {
	Outcome Outcome
	Output  string
	Err     error
}

// Model is the session state machine. One model owns one channel
// session at a time: the store the channel fills, the matcher ranking
// it and the preview pipeline rendering the selection. Switching
// channels tears the session down and builds a fresh one in place.
type Model struct {
	cfg     *config.Config
	workdir string
	bus     eventbus.Bus

	channel  channel.Channel
	store    *store.Store
	matcher  *matcher.Matcher
	pipeline *preview.Pipeline
	epoch    int // bumped per channel switch to fence stale signals

	inputHandler *input.Handler
	renderer     *views.Renderer
	runner       *Runner
	help         help.Model
	keys         KeyMap

	width  int
	height int

	snapshot  *matcher.Snapshot
	selected  int // index into snapshot.Matches
	offset    int // scrolled-away better matches
	ingesting bool

	previewEnabled bool
	previewIndex   int // store index the pane tracks, -1 for none
	previewOffset  int

	pendingExec   string // command awaiting the confirm prompt
	confirmPrompt string
	remoteCursor  int
	showHelp      bool

	statusMessage string
	statusIsErr   bool

	inPagerMode bool
	quitting    bool
	result      Result

	program *tea.Program
}

// NewModel creates a session over ch. The channel is not started yet;
// Init does that once the program runs.
func NewModel(cfg *config.Config, bus eventbus.Bus, ch channel.Channel, workdir string) *Model {
	st := store.New()
	m := &Model{
		cfg:            cfg,
		workdir:        workdir,
		bus:            bus,
		channel:        ch,
		store:          st,
		matcher:        matcher.New(st),
		pipeline:       preview.New(st, ch),
		inputHandler:   input.New(),
		renderer:       views.NewRenderer(),
		runner:         NewRunner(),
		help:           help.New(),
		keys:           DefaultKeyMap,
		ingesting:      true,
		previewEnabled: cfg.UI.PreviewEnabled,
		previewIndex:   -1,
	}
	m.snapshot = m.matcher.Snapshot()
	return m
}

// SetProgram sets the program reference needed for terminal handoffs
func (m *Model) SetProgram(p *tea.Program) {
	m.program = p
	m.runner.SetProgram(p)
}

// SetInitialQuery seeds the query input before the program starts, so
// the first match pass already filters.
func (m *Model) SetInitialQuery(q string) {
	m.inputHandler.TextInput().SetValue(q)
	m.inputHandler.TextInput().CursorEnd()
}

// Result returns how the session ended. Valid after the program
// returns.
func (m *Model) Result() Result {
	return m.result
}

func (m *Model) Init() tea.Cmd {
	m.refresh()
	return tea.Batch(
		m.startChannel(),
		m.tick(),
		m.waitMatcher(),
		m.waitPreview(),
		textinput.Blink,
	)
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.syncInputWidth()
		m.ensureSelectedVisible()
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		if m.quitting {
			return m, nil
		}
		actions, cmd := m.inputHandler.HandleKey(msg, m.context())
		cmds := []tea.Cmd{}
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
		if actionCmd := m.processActions(actions); actionCmd != nil {
			cmds = append(cmds, actionCmd)
		}
		return m, tea.Batch(cmds...)

	case tea.MouseMsg:
		if msg.Action == tea.MouseActionPress {
			switch msg.Button {
			case tea.MouseButtonWheelUp:
				m.scrollPreview(-wheelScrollLines)
			case tea.MouseButtonWheelDown:
				m.scrollPreview(wheelScrollLines)
			}
		}
		return m, nil

	default:
		// cursor blink and friends go to the query input first
		if cmd := m.inputHandler.Update(msg); cmd != nil {
			return m, cmd
		}
		return m.handleNonKeyboardMsg(msg)
	}
}

func (m *Model) handleNonKeyboardMsg(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case EventMsg:
		return m, m.handleEvent(msg.Event)

	case tickMsg:
		if m.quitting || m.inPagerMode {
			return m, nil
		}
		// keep matching while the channel is still producing, and
		// catch up once more after it finished
		if m.ingesting || m.store.Len() != m.snapshot.Total {
			m.refresh()
		}
		return m, m.tick()

	case matcherChangedMsg:
		if msg.epoch != m.epoch || m.quitting {
			return m, nil
		}
		m.installSnapshot()
		return m, m.waitMatcher()

	case previewChangedMsg:
		if msg.epoch != m.epoch || m.quitting {
			return m, nil
		}
		if content, ok := m.pipeline.Current(); ok && content.Index == m.previewIndex && content.TargetLine > 0 {
			m.previewOffset = views.CenterOffset(content.TargetLine, m.height)
		}
		return m, m.waitPreview()

	case pagerDoneMsg:
		m.inPagerMode = false
		cmds := []tea.Cmd{m.tick()}
		if msg.err != nil {
			slog.Warn("pager failed", "error", msg.err)
			m.setStatus(fmt.Sprintf("Pager failed: %v", msg.err), true)
			cmds = append(cmds, m.clearStatusLater())
		}
		return m, tea.Batch(cmds...)

	case execDoneMsg:
		m.inPagerMode = false
		cmds := []tea.Cmd{m.tick()}
		if msg.err != nil {
			slog.Warn("command failed", "error", msg.err)
			m.setStatus(fmt.Sprintf("Command failed: %v", msg.err), true)
			cmds = append(cmds, m.clearStatusLater())
		}
		return m, tea.Batch(cmds...)

	case clearStatusMsg:
		m.statusMessage = ""
		m.statusIsErr = false
		return m, nil

	case logMsg:
		m.setStatus(msg.message, msg.level == "ERROR")
		return m, m.clearStatusLater()

	default:
		return m, nil
	}
}

func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 {
		return "Loading..."
	}

	state := views.ViewState{
		Width:       m.width,
		Height:      m.height,
		ChannelName: m.channel.Name(),
		InputView:   m.inputHandler.TextInput().View(),

		Rows:           m.rows(),
		SelectedRow:    m.selected,
		MatchedCount:   m.snapshot.Matched,
		TotalCount:     m.store.Len(),
		Ingesting:      m.ingesting,
		ViewportOffset: m.offset,

		PreviewEnabled:  m.previewEnabled,
		PreviewWidthPct: m.cfg.UI.PreviewWidth,

		Mode:          m.inputHandler.CurrentMode(),
		ConfirmPrompt: m.confirmPrompt,
		ChannelNames:  m.channelNames(),
		RemoteCursor:  m.remoteCursor,

		ShowHelp: m.showHelp,

		StatusMessage: m.statusMessage,
		StatusIsError: m.statusIsErr,
	}
	if m.cfg.UI.HelpBar {
		state.HelpBar = m.help.ShortHelpView(m.keys.ShortHelp())
	}
	if m.showHelp {
		state.HelpView = m.help.FullHelpView(m.keys.FullHelp())
	}
	if state.PreviewEnabled {
		state.Preview = m.previewData()
	}

	return m.renderer.Render(state)
}

// processActions runs every action and batches the produced commands
func (m *Model) processActions(actions []inputtypes.Action) tea.Cmd {
	var cmds []tea.Cmd
	for _, action := range actions {
		if cmd := m.processAction(action); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	if len(cmds) == 0 {
		return nil
	}
	return tea.Batch(cmds...)
}

func (m *Model) processAction(action inputtypes.Action) tea.Cmd {
	switch a := action.(type) {
	case inputtypes.NavigateAction:
		m.navigate(a.Direction)

	case inputtypes.UpdateQueryAction:
		m.refresh()

	case inputtypes.ConfirmSelectionAction:
		return m.confirmSelection()

	case inputtypes.ExecuteBoundAction:
		if m.pendingExec == "" {
			return nil
		}
		command := m.pendingExec
		m.pendingExec = ""
		m.inPagerMode = true
		slog.Info("running bound command", "command", command)
		return func() tea.Msg {
			return execDoneMsg{err: m.runner.RunCommand(command)}
		}

	case inputtypes.TogglePreviewAction:
		m.previewEnabled = !m.previewEnabled
		m.syncInputWidth()
		if m.previewEnabled {
			m.previewIndex = -1
			m.syncPreview()
		}

	case inputtypes.ScrollPreviewAction:
		delta := a.Delta
		if a.Half {
			delta *= views.PreviewHalfPage(m.height)
		}
		m.scrollPreview(delta)

	case inputtypes.SwitchChannelAction:
		return m.switchChannel(a.Name)

	case inputtypes.RemoteCursorAction:
		m.remoteCursor = a.Index

	case inputtypes.CopyEntryAction:
		if len(m.snapshot.Matches) == 0 {
			return nil
		}
		text := m.selectedEntry().ConfirmOutput()
		copyToClipboard(text)
		m.setStatus("Copied to clipboard", false)
		return m.clearStatusLater()

	case inputtypes.OpenPagerAction:
		return m.openPager()

	case inputtypes.ToggleHelpAction:
		m.showHelp = !m.showHelp

	case inputtypes.QuitAction:
		if m.showHelp && !a.Force {
			m.showHelp = false
			return nil
		}
		return m.quitWith(Result{Outcome: OutcomeCancelled})
	}
	return nil
}

func (m *Model) navigate(direction string) {
	total := len(m.snapshot.Matches)
	if total == 0 {
		return
	}
	page, _, _ := views.VisibleWindow(total, m.offset, m.height)
	switch direction {
	case "up":
		if m.selected < total-1 {
			m.selected++
		}
	case "down":
		if m.selected > 0 {
			m.selected--
		}
	case "pageup":
		m.selected = min(m.selected+page, total-1)
	case "pagedown":
		m.selected = max(m.selected-page, 0)
	}
	m.ensureSelectedVisible()
	m.syncPreview()
}

// confirmSelection resolves enter on the current selection. Printing
// ends the session; a bound command detours through the confirm
// prompt first.
func (m *Model) confirmSelection() tea.Cmd {
	if len(m.snapshot.Matches) == 0 {
		return nil
	}
	e := m.selectedEntry()
	act := channel.ConfirmAction(m.channel, e)

	switch act.Kind {
	case channel.ActionExec:
		m.pendingExec = ExpandTemplate(act.Command, e.ConfirmOutput())
		m.confirmPrompt = fmt.Sprintf("Run %q?", m.pendingExec)
		return m.processActions(m.inputHandler.SetMode(inputtypes.ModeConfirm, m.context()))
	case channel.ActionNone:
		return m.quitWith(Result{Outcome: OutcomeConfirmed})
	default:
		return m.quitWith(Result{Outcome: OutcomeConfirmed, Output: e.ConfirmOutput()})
	}
}

func (m *Model) openPager() tea.Cmd {
	if len(m.snapshot.Matches) == 0 {
		return nil
	}
	e := m.selectedEntry()

	var open func() error
	switch {
	case e.HasFile():
		open = func() error { return m.runner.OpenFile(e.Path) }
	default:
		content, ok := m.pipeline.Current()
		if !ok || content.Index != m.previewIndex || content.Kind != preview.KindLoaded {
			m.setStatus("Nothing to open", true)
			return m.clearStatusLater()
		}
		open = func() error { return m.runner.OpenText(content.Text) }
	}

	m.inPagerMode = true
	return func() tea.Msg {
		return pagerDoneMsg{err: open()}
	}
}

// switchChannel tears the current session down and starts a fresh one
// on the named channel. The query survives; selection and preview
// state do not.
func (m *Model) switchChannel(name string) tea.Cmd {
	if name == m.channel.Name() {
		return nil
	}
	factory, ok := channel.Lookup(name)
	if !ok {
		m.setStatus(fmt.Sprintf("Unknown channel %q", name), true)
		return m.clearStatusLater()
	}
	slog.Info("switching channel", "from", m.channel.Name(), "to", name)

	m.channel.Stop()
	m.matcher.Stop()
	m.pipeline.Stop()

	m.epoch++
	m.channel = factory.New(m.workdir)
	channel.AttachBus(m.channel, m.bus)
	m.store = store.New()
	m.matcher = matcher.New(m.store)
	m.pipeline = preview.New(m.store, m.channel)

	m.snapshot = m.matcher.Snapshot()
	m.selected = 0
	m.offset = 0
	m.previewIndex = -1
	m.previewOffset = 0
	m.ingesting = true

	m.refresh()
	return tea.Batch(m.startChannel(), m.waitMatcher(), m.waitPreview())
}

func (m *Model) handleEvent(event eventbus.Event) tea.Cmd {
	switch ev := event.(type) {
	case eventbus.IngestionStartedEvent:
		if ev.Channel != m.channel.Name() {
			return nil
		}
		m.ingesting = true

	case eventbus.IngestionProgressEvent:
		// totals render straight from the store; the event only
		// triggers a frame

	case eventbus.IngestionCompletedEvent:
		if ev.Channel != m.channel.Name() {
			return nil
		}
		m.ingesting = false
		m.refresh()

	case eventbus.ChannelErrorEvent:
		if ev.Channel != m.channel.Name() {
			return nil
		}
		m.ingesting = false
		m.setStatus(fmt.Sprintf("%s: %v", ev.Channel, ev.Err), true)
		return m.clearStatusLater()
	}
	return nil
}

// installSnapshot adopts the matcher's latest result. On an unchanged
// query the selection follows the candidate it was on; a new query
// snaps back to the best match.
func (m *Model) installSnapshot() {
	prev := m.snapshot
	next := m.matcher.Snapshot()
	m.snapshot = next

	if next.Query != prev.Query {
		m.selected = 0
		m.offset = 0
	} else if m.selected > 0 && m.selected < len(prev.Matches) {
		want := prev.Matches[m.selected].Index
		m.selected = 0
		for i, match := range next.Matches {
			if match.Index == want {
				m.selected = i
				break
			}
		}
	}

	if total := len(next.Matches); m.selected >= total {
		m.selected = max(total-1, 0)
	}
	m.ensureSelectedVisible()
	m.syncPreview()
}

// ensureSelectedVisible moves the viewport the minimal distance that
// brings the selection back inside it. The window size depends on the
// offset through the scroll indicators, hence the loop.
func (m *Model) ensureSelectedVisible() {
	total := len(m.snapshot.Matches)
	if total == 0 {
		m.offset = 0
		return
	}
	if m.offset >= total {
		m.offset = total - 1
	}
	if m.selected < m.offset {
		m.offset = m.selected
	}
	for {
		count, _, _ := views.VisibleWindow(total, m.offset, m.height)
		if m.selected < m.offset+count {
			return
		}
		m.offset++
	}
}

// syncPreview points the pipeline at the selected candidate. Scroll
// state resets when the candidate changes.
func (m *Model) syncPreview() {
	if !m.previewEnabled || len(m.snapshot.Matches) == 0 {
		return
	}
	idx := m.snapshot.Matches[m.selected].Index
	if idx == m.previewIndex {
		return
	}
	m.previewIndex = idx
	m.previewOffset = 0
	m.pipeline.Request(idx)
}

func (m *Model) scrollPreview(delta int) {
	if !m.previewEnabled {
		return
	}
	content, ok := m.pipeline.Current()
	if !ok || content.Index != m.previewIndex || content.Kind != preview.KindLoaded {
		return
	}
	m.previewOffset = views.ClampPreviewOffset(content.Text, m.previewOffset+delta, m.height)
}

func (m *Model) refresh() {
	m.matcher.Refresh(m.inputHandler.Query(), m.matchLimit())
}

func (m *Model) matchLimit() int {
	return views.VisibleRows(m.height) + matchBacklog
}

func (m *Model) quitWith(res Result) tea.Cmd {
	m.result = res
	m.quitting = true
	m.channel.Stop()
	m.matcher.Stop()
	m.pipeline.Stop()
	return tea.Quit
}

func (m *Model) context() input.ContextSnapshot {
	return input.ContextSnapshot{
		Selected:  m.selected,
		Results:   len(m.snapshot.Matches),
		Total:     m.store.Len(),
		QueryText: m.inputHandler.Query(),
		Channel:   m.channel.Name(),
		Channels:  m.channelNames(),
	}
}

func (m *Model) channelNames() []string {
	factories := channel.Builtins()
	names := make([]string, 0, len(factories))
	for _, f := range factories {
		names = append(names, f.Name)
	}
	return names
}

func (m *Model) selectedEntry() entry.Entry {
	e, _ := m.store.Get(m.snapshot.Matches[m.selected].Index)
	return e
}

func (m *Model) rows() []views.ResultRow {
	rows := make([]views.ResultRow, 0, len(m.snapshot.Matches))
	for _, match := range m.snapshot.Matches {
		e, err := m.store.Get(match.Index)
		if err != nil {
			continue
		}
		rows = append(rows, views.ResultRow{Name: e.Name, Positions: match.Positions})
	}
	return rows
}

func (m *Model) previewData() views.PreviewData {
	if len(m.snapshot.Matches) == 0 || m.previewIndex < 0 {
		return views.PreviewData{Placeholder: "No preview"}
	}

	title := ""
	if e, err := m.store.Get(m.previewIndex); err == nil {
		title = e.Name
	}

	content, ok := m.pipeline.Current()
	if !ok || content.Index != m.previewIndex {
		return views.PreviewData{Title: title, Placeholder: "Loading..."}
	}

	switch content.Kind {
	case preview.KindLoaded:
		return views.PreviewData{
			Title:      content.Title,
			Text:       content.Text,
			Offset:     m.previewOffset,
			Numbers:    content.Numbers,
			TargetLine: content.TargetLine,
		}
	case preview.KindTooLarge:
		return views.PreviewData{Title: title, Placeholder: "File too large"}
	case preview.KindBinary:
		return views.PreviewData{Title: title, Placeholder: "Binary file"}
	case preview.KindError:
		return views.PreviewData{Title: title, Placeholder: content.Text}
	default:
		return views.PreviewData{Title: title, Placeholder: "No preview"}
	}
}

func (m *Model) setStatus(text string, isErr bool) {
	m.statusMessage = text
	m.statusIsErr = isErr
}

func (m *Model) clearStatusLater() tea.Cmd {
	return tea.Tick(statusClearDelay, func(time.Time) tea.Msg { return clearStatusMsg{} })
}

func (m *Model) syncInputWidth() {
	listWidth, _ := views.SplitWidths(m.width, m.cfg.UI.PreviewWidth, m.previewEnabled)
	w := listWidth - 4
	if w < 10 {
		w = 10
	}
	m.inputHandler.TextInput().Width = w
}

func (m *Model) startChannel() tea.Cmd {
	return func() tea.Msg {
		if err := m.channel.Start(context.Background(), m.store); err != nil {
			return EventMsg{Event: eventbus.ChannelErrorEvent{Channel: m.channel.Name(), Err: err}}
		}
		return nil
	}
}

func (m *Model) tick() tea.Cmd {
	return tea.Tick(time.Duration(m.cfg.UI.TickMS)*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// waitMatcher blocks on the matcher's change signal. A closed channel
// means that session is gone; the stale command just expires.
func (m *Model) waitMatcher() tea.Cmd {
	epoch := m.epoch
	ch := m.matcher.Changed()
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return matcherChangedMsg{epoch: epoch}
	}
}

func (m *Model) waitPreview() tea.Cmd {
	epoch := m.epoch
	ch := m.pipeline.Changed()
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return previewChangedMsg{epoch: epoch}
	}
}
