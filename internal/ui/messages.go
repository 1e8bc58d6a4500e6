package ui

import (
	"time"

	"trawl/internal/eventbus"
)

// EventMsg wraps an ingestion event for the UI
type EventMsg struct {
	Event eventbus.Event
}

// tickMsg drives the render tick and the spinner
type tickMsg time.Time

// matcherChangedMsg signals that a new match snapshot is installed.
// The epoch fences out signals from a session already torn down by a
// channel switch.
type matcherChangedMsg struct {
	epoch int
}

// previewChangedMsg signals that the current preview finished rendering
type previewChangedMsg struct {
	epoch int
}

// pagerDoneMsg reports the pager handoff finishing
type pagerDoneMsg struct {
	err error
}

// execDoneMsg reports an external command handoff finishing
type execDoneMsg struct {
	err error
}

// clearStatusMsg clears the transient status line
type clearStatusMsg struct{}

// logMsg carries a warning or error log record into the status bar
type logMsg struct {
	level   string
	message string
}
