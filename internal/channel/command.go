package channel

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"trawl/internal/entry"
	"trawl/internal/eventbus"
	"trawl/internal/store"
)

// CommandChannel runs a shell command and produces one candidate per
// line of its stdout.
type CommandChannel struct {
	command string
	dir     string
	bus     eventbus.Bus

	mu      sync.Mutex
	started bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewCommand creates a channel sourcing from a shell command run in dir
func NewCommand(command, dir string) *CommandChannel {
	return &CommandChannel{command: command, dir: dir}
}

// SetBus attaches an event bus for ingestion progress events
func (c *CommandChannel) SetBus(bus eventbus.Bus) { c.bus = bus }

func (c *CommandChannel) Name() string { return "command" }

func (c *CommandChannel) Start(ctx context.Context, sink *store.Store) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.started {
		return nil
	}

	runCtx, cancel := context.WithCancel(ctx)
	cmd := exec.CommandContext(runCtx, "sh", "-c", c.command)
	cmd.Dir = c.dir
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return fmt.Errorf("piping command output: %w", err)
	}
	if err := cmd.Start(); err != nil {
		cancel()
		return fmt.Errorf("starting %q: %w", c.command, err)
	}

	c.started = true
	c.cancel = cancel
	c.publish(eventbus.IngestionStartedEvent{Channel: c.Name()})

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.read(runCtx, cmd, stdout, sink)
	}()
	return nil
}

func (c *CommandChannel) Stop() {
	c.mu.Lock()
	cancel := c.cancel
	c.cancel = nil
	c.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	c.wg.Wait()
}

func (c *CommandChannel) read(ctx context.Context, cmd *exec.Cmd, stdout io.Reader, sink *store.Store) {
	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)

	batch := make([]entry.Entry, 0, appendBatchSize)
	limiter := rate.NewLimiter(rate.Every(100*time.Millisecond), 1)

	flush := func() {
		if len(batch) == 0 {
			return
		}
		total := sink.Append(batch...)
		batch = batch[:0]
		if limiter.Allow() {
			c.publish(eventbus.IngestionProgressEvent{Channel: c.Name(), Count: total})
		}
	}

	for scanner.Scan() {
		raw := strings.TrimRight(scanner.Text(), "\r")
		if raw == "" {
			continue
		}
		batch = append(batch, lineEntry(raw))
		if len(batch) >= appendBatchSize {
			flush()
		}
	}
	flush()

	scanErr := scanner.Err()
	waitErr := cmd.Wait()
	if ctx.Err() == nil {
		if scanErr != nil {
			c.publish(eventbus.ChannelErrorEvent{Channel: c.Name(), Err: scanErr})
		} else if waitErr != nil {
			slog.Warn("Source command exited with error", "command", c.command, "error", waitErr)
			c.publish(eventbus.ChannelErrorEvent{Channel: c.Name(), Err: fmt.Errorf("%s: %w", c.command, waitErr)})
		}
	}
	c.publish(eventbus.IngestionCompletedEvent{Channel: c.Name(), Count: sink.Len()})
}

func (c *CommandChannel) publish(ev eventbus.Event) {
	if c.bus != nil {
		c.bus.Publish(ev)
	}
}
