package ui

import (
	"os"

	"github.com/aymanbagabas/go-osc52/v2"
)

// copyToClipboard writes text to the system clipboard with an OSC 52
// sequence on the terminal. Terminals without OSC 52 support ignore
// the sequence, so this never fails loudly.
func copyToClipboard(text string) {
	seq := osc52.New(text)
	if os.Getenv("TMUX") != "" {
		seq = seq.Tmux()
	}
	_, _ = seq.WriteTo(os.Stderr)
}
