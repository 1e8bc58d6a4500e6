package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"trawl/internal/channel"
	"trawl/internal/config"
	"trawl/internal/eventbus"
	"trawl/internal/ui"
)

// overridable at build time with -ldflags "-X main.version=..."
var version = "dev"

const (
	exitConfirmed = 0
	exitFatal     = 1
	exitCancelled = 130
)

func main() {
	os.Exit(run())
}

func run() int {
	flags := pflag.NewFlagSet("trawl", pflag.ContinueOnError)
	flags.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: trawl [flags] [channel]\n\nChannels: files, git-repos (or pipe input: cmd | trawl)\n\nFlags:\n%s", flags.FlagUsages())
	}

	var (
		inputQuery    = flags.StringP("input", "i", "", "initial query text")
		showPreview   = flags.Bool("preview", false, "show the preview pane")
		hidePreview   = flags.Bool("no-preview", false, "hide the preview pane")
		watch         = flags.Bool("watch", false, "files channel: keep watching for new files")
		dir           = flags.StringP("dir", "d", "", "working directory for channels (default: cwd)")
		sourceCommand = flags.String("source-command", "", "produce candidates from a shell command's output")
		logFile       = flags.String("log-file", "", "log file path")
		logLevel      = flags.String("log-level", "", "log level: debug, info, warn, error")
		showVersion   = flags.BoolP("version", "V", false, "print version and exit")
	)
	if err := flags.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return exitConfirmed
		}
		fmt.Fprintln(os.Stderr, err)
		return exitFatal
	}
	if *showVersion {
		fmt.Println("trawl " + version)
		return exitConfirmed
	}
	if flags.NArg() > 1 {
		fmt.Fprintf(os.Stderr, "trawl: too many arguments\n")
		return exitFatal
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "trawl: %v\n", err)
		return exitFatal
	}
	if *showPreview {
		cfg.UI.PreviewEnabled = true
	}
	if *hidePreview {
		cfg.UI.PreviewEnabled = false
	}
	if flags.Changed("log-file") {
		cfg.Log.File = *logFile
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = *logLevel
	}

	workdir, err := resolveDir(*dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "trawl: %v\n", err)
		return exitFatal
	}

	statusLog := ui.NewStatusHandler()
	closeLog := setupLogging(cfg, statusLog)
	defer closeLog()

	stdinPiped := !term.IsTerminal(int(os.Stdin.Fd()))
	ch, err := pickChannel(cfg, flags.Args(), *sourceCommand, workdir, *watch, stdinPiped)
	if err != nil {
		fmt.Fprintf(os.Stderr, "trawl: %v\n", err)
		return exitFatal
	}

	bus := eventbus.New()
	defer bus.Close()
	channel.AttachBus(ch, bus)

	model := ui.NewModel(cfg, bus, ch, workdir)
	if *inputQuery != "" {
		model.SetInitialQuery(*inputQuery)
	}

	// the session draws on stderr so confirmed output owns stdout
	lipgloss.SetColorProfile(termenv.ANSI256)
	opts := []tea.ProgramOption{
		tea.WithOutput(os.Stderr),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	}
	if stdinPiped {
		tty, err := os.Open("/dev/tty")
		if err != nil {
			fmt.Fprintf(os.Stderr, "trawl: need a terminal for interaction: %v\n", err)
			return exitFatal
		}
		defer tty.Close()
		opts = append(opts, tea.WithInput(tty))
	}

	p := tea.NewProgram(model, opts...)
	model.SetProgram(p)
	statusLog.SetProgram(p)
	forwardEvents(bus, p)

	// handshake for the e2e harness, emitted before the alt screen
	if os.Getenv("TRAWL_E2E") != "" {
		fmt.Fprintln(os.Stderr, "__READY__")
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGTERM)
	defer signal.Stop(sigs)
	go func() {
		if _, ok := <-sigs; ok {
			p.Quit()
		}
	}()

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "trawl: %v\n", err)
		return exitFatal
	}

	res := model.Result()
	switch res.Outcome {
	case ui.OutcomeConfirmed:
		if res.Output != "" {
			fmt.Println(res.Output)
		}
		return exitConfirmed
	case ui.OutcomeError:
		if res.Err != nil {
			fmt.Fprintf(os.Stderr, "trawl: %v\n", res.Err)
		}
		return exitFatal
	default:
		return exitCancelled
	}
}

// pickChannel resolves what feeds the session: an explicit source
// command, piped stdin, or a named built-in from the argument list or
// the config default.
func pickChannel(cfg *config.Config, args []string, sourceCommand, workdir string, watch, stdinPiped bool) (channel.Channel, error) {
	if sourceCommand != "" {
		return channel.NewCommand(sourceCommand, workdir), nil
	}

	name := ""
	if len(args) > 0 {
		name = args[0]
	}
	if name == "" && stdinPiped {
		return channel.NewStdin(os.Stdin), nil
	}
	if name == "" {
		name = cfg.DefaultChannel
	}

	if name == "files" && watch {
		return channel.NewFiles(workdir, true), nil
	}
	factory, ok := channel.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("unknown channel %q", name)
	}
	return factory.New(workdir), nil
}

func resolveDir(dir string) (string, error) {
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("resolving working directory: %w", err)
		}
		return wd, nil
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", dir, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", err
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%s is not a directory", abs)
	}
	return abs, nil
}

// setupLogging installs the default slog logger: JSON records to the
// log file plus the status line tap. Returns a closer for the file.
func setupLogging(cfg *config.Config, statusLog slog.Handler) func() {
	path := cfg.Log.File
	if path == "" {
		path = defaultLogPath()
	}

	var w io.Writer = io.Discard
	closeFn := func() {}
	if path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err == nil {
			if f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644); err == nil {
				w = f
				closeFn = func() { _ = f.Close() }
			}
		}
	}

	fileHandler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: parseLevel(cfg.Log.Level)})
	slog.SetDefault(slog.New(ui.Fanout{fileHandler, statusLog}))
	return closeFn
}

// defaultLogPath puts the log under the XDG state directory
func defaultLogPath() string {
	if state := os.Getenv("XDG_STATE_HOME"); state != "" {
		return filepath.Join(state, "trawl", "trawl.log")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".local", "state", "trawl", "trawl.log")
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// forwardEvents pushes bus events into the program's message queue
func forwardEvents(bus eventbus.Bus, p *tea.Program) {
	forward := func(e eventbus.Event) {
		p.Send(ui.EventMsg{Event: e})
	}
	bus.Subscribe(eventbus.EventIngestionStarted, forward)
	bus.Subscribe(eventbus.EventIngestionProgress, forward)
	bus.Subscribe(eventbus.EventIngestionCompleted, forward)
	bus.Subscribe(eventbus.EventChannelError, forward)
}
