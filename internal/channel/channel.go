// Package channel defines the data-source contract and the built-in
// sources. A channel streams candidates into a store in the background;
// the session engine never blocks on one. Optional capabilities
// (preview, confirm behavior) are separate interfaces detected by type
// assertion so the engine works with any subset.
package channel

import (
	"context"

	"trawl/internal/entry"
	"trawl/internal/eventbus"
	"trawl/internal/store"
	"trawl/internal/textutil"
)

// Channel is a data source that produces candidates
type Channel interface {
	// Name identifies the channel in the UI and in events
	Name() string

	// Start begins producing candidates into the sink and returns
	// immediately; production continues on background goroutines
	// until the source is exhausted or the context is cancelled.
	Start(ctx context.Context, sink *store.Store) error

	// Stop requests cancellation and waits for producers to finish.
	// Safe to call more than once and before Start.
	Stop()
}

// Previewer is an optional channel capability: the channel supplies
// preview content for its entries instead of the default file preview.
type Previewer interface {
	Preview(ctx context.Context, e entry.Entry) (string, error)
}

// ActionKind describes what confirming an entry does
type ActionKind int

const (
	// ActionPrint writes the entry's output string to stdout
	ActionPrint ActionKind = iota
	// ActionExec runs a command after the terminal is restored,
	// with {} replaced by the shell-quoted entry output
	ActionExec
	// ActionNone does nothing beyond exiting
	ActionNone
)

// Action is what a confirm resolves to
type Action struct {
	Kind    ActionKind
	Command string // template for ActionExec
}

// Confirmer is an optional channel capability: the channel binds its
// own confirm action. Channels without it get ActionPrint.
type Confirmer interface {
	Confirm(e entry.Entry) Action
}

// BusAware is implemented by channels that publish ingestion events
type BusAware interface {
	SetBus(bus eventbus.Bus)
}

// AttachBus wires bus into ch when the channel publishes events
func AttachBus(ch Channel, bus eventbus.Bus) {
	if aware, ok := ch.(BusAware); ok {
		aware.SetBus(bus)
	}
}

// ConfirmAction resolves the action for confirming e on ch, falling
// back to printing when the channel does not bind one.
func ConfirmAction(ch Channel, e entry.Entry) Action {
	if c, ok := ch.(Confirmer); ok {
		return c.Confirm(e)
	}
	return Action{Kind: ActionPrint}
}

// Factory describes a built-in channel selectable by name, both on the
// command line and from the remote-control overlay.
type Factory struct {
	Name        string
	Description string
	New         func(dir string) Channel
}

// Builtins returns the channels a user can switch to mid-session.
// Stdin and command channels are excluded: they need a pipe or a
// command line that only exists at startup.
func Builtins() []Factory {
	return []Factory{
		{
			Name:        "files",
			Description: "walk the working directory for files",
			New:         func(dir string) Channel { return NewFiles(dir, false) },
		},
		{
			Name:        "git-repos",
			Description: "walk the working directory for git repositories",
			New:         func(dir string) Channel { return NewGitRepos(dir) },
		},
	}
}

// Lookup returns the factory registered under name
func Lookup(name string) (Factory, bool) {
	for _, f := range Builtins() {
		if f.Name == name {
			return f, true
		}
	}
	return Factory{}, false
}

// lineEntry builds a candidate from one line of text. The raw line is
// what confirm prints; the displayed name is sanitized so control
// bytes never reach the terminal.
func lineEntry(raw string) entry.Entry {
	name := textutil.PreprocessLine(raw)
	e := entry.Entry{Name: name}
	if name != raw {
		e.Output = raw
	}
	return e
}

// skipDirNames are dependency and build output directories the walking
// channels never descend into.
var skipDirNames = map[string]bool{
	"node_modules":  true,
	".npm":          true,
	"vendor":        true,
	".cache":        true,
	"dist":          true,
	"build":         true,
	"target":        true,
	".gradle":       true,
	"__pycache__":   true,
	".pytest_cache": true,
	".tox":          true,
	"venv":          true,
	".venv":         true,
}
