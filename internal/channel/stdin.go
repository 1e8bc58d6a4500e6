package channel

import (
	"bufio"
	"context"
	"io"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"trawl/internal/entry"
	"trawl/internal/eventbus"
	"trawl/internal/store"
)

// maxLineBytes bounds a single stdin line. Anything longer is split by
// the scanner rather than aborting the whole stream.
const maxLineBytes = 1 << 20

// StdinChannel reads newline-separated candidates from a reader,
// usually a pipe. Each line becomes one candidate whose output is the
// raw line; the displayed name is sanitized for terminal safety.
type StdinChannel struct {
	r   io.Reader
	bus eventbus.Bus

	mu      sync.Mutex
	started bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewStdin creates a channel reading from r
func NewStdin(r io.Reader) *StdinChannel {
	return &StdinChannel{r: r}
}

// SetBus attaches an event bus for ingestion progress events
func (c *StdinChannel) SetBus(bus eventbus.Bus) { c.bus = bus }

func (c *StdinChannel) Name() string { return "stdin" }

func (c *StdinChannel) Start(ctx context.Context, sink *store.Store) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.started {
		return nil
	}
	c.started = true

	readCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel

	c.publish(eventbus.IngestionStartedEvent{Channel: c.Name()})

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.read(readCtx, sink)
	}()
	return nil
}

func (c *StdinChannel) Stop() {
	c.mu.Lock()
	cancel := c.cancel
	c.cancel = nil
	c.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	c.wg.Wait()
}

func (c *StdinChannel) read(ctx context.Context, sink *store.Store) {
	scanner := bufio.NewScanner(c.r)
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
		select {
		case <-ctx.Done():
			return
		default:
		}
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

	if err := scanner.Err(); err != nil && ctx.Err() == nil {
		c.publish(eventbus.ChannelErrorEvent{Channel: c.Name(), Err: err})
	}
	c.publish(eventbus.IngestionCompletedEvent{Channel: c.Name(), Count: sink.Len()})
}

func (c *StdinChannel) publish(ev eventbus.Event) {
	if c.bus != nil {
		c.bus.Publish(ev)
	}
}
