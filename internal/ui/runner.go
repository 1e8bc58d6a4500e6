package ui

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/noborus/ov/oviewer"
)

// Runner hands the terminal over to external programs and takes it
// back afterwards. It needs the program reference because releasing
// and restoring the terminal goes through Bubble Tea.
type Runner struct {
	program *tea.Program
}

// NewRunner creates a runner without a program; SetProgram must be
// called before anything runs.
func NewRunner() *Runner {
	return &Runner{}
}

// SetProgram sets the program reference for terminal management
func (r *Runner) SetProgram(p *tea.Program) {
	r.program = p
}

// OpenFile pages a file with the embedded ov pager
func (r *Runner) OpenFile(path string) error {
	return r.page(func() (*oviewer.Root, error) {
		return oviewer.Open(path)
	})
}

// OpenText pages already rendered text, for candidates that have no
// backing file.
func (r *Runner) OpenText(text string) error {
	return r.page(func() (*oviewer.Root, error) {
		return oviewer.NewRoot(strings.NewReader(text))
	})
}

func (r *Runner) page(open func() (*oviewer.Root, error)) error {
	if r.program == nil {
		return fmt.Errorf("program not set")
	}

	if err := r.program.ReleaseTerminal(); err != nil {
		return err
	}
	defer func() {
		// small delay so ov has fully exited before we take the
		// terminal back
		time.Sleep(100 * time.Millisecond)
		_ = r.program.RestoreTerminal()
	}()

	root, err := open()
	if err != nil {
		return err
	}

	config := oviewer.NewConfig()
	config.IsWriteOnExit = false
	config.IsWriteOriginal = false
	root.SetConfig(config)

	return root.Run()
}

// RunCommand runs a shell command with the terminal in its cooked
// state, inheriting stdio so the command can take over the screen.
func (r *Runner) RunCommand(command string) error {
	if r.program == nil {
		return fmt.Errorf("program not set")
	}

	if err := r.program.ReleaseTerminal(); err != nil {
		return err
	}
	defer func() {
		// Clear screen to reduce visual artifacts when returning
		fmt.Print("\x1b[2J\x1b[H")
		time.Sleep(150 * time.Millisecond)
		_ = r.program.RestoreTerminal()
	}()

	cmd := exec.Command("sh", "-c", command)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	return cmd.Run()
}

// ExpandTemplate substitutes {} in template with the shell-quoted
// argument. Templates without a placeholder get the argument appended.
func ExpandTemplate(template, arg string) string {
	quoted := shellQuote(arg)
	if strings.Contains(template, "{}") {
		return strings.ReplaceAll(template, "{}", quoted)
	}
	return template + " " + quoted
}

func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'"'"'`) + "'"
}
