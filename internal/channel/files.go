package channel

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/time/rate"

	"trawl/internal/entry"
	"trawl/internal/eventbus"
	"trawl/internal/store"
)

const (
	maxWalkDepth    = 12
	appendBatchSize = 256
)

// FilesChannel walks a directory tree and produces one candidate per
// regular file. With watch enabled it keeps producing as files are
// created under the tree.
type FilesChannel struct {
	root  string
	watch bool
	bus   eventbus.Bus

	mu      sync.Mutex
	started bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	// guarded by mu, only populated in watch mode
	seen map[string]bool
}

// NewFiles creates a files channel rooted at dir
func NewFiles(dir string, watch bool) *FilesChannel {
	return &FilesChannel{root: dir, watch: watch}
}

// SetBus attaches an event bus for ingestion progress events
func (c *FilesChannel) SetBus(bus eventbus.Bus) { c.bus = bus }

func (c *FilesChannel) Name() string { return "files" }

func (c *FilesChannel) Start(ctx context.Context, sink *store.Store) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.started {
		return nil
	}
	c.started = true

	walkCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	if c.watch {
		c.seen = make(map[string]bool)
	}

	c.publish(eventbus.IngestionStartedEvent{Channel: c.Name()})

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.run(walkCtx, sink)
	}()
	return nil
}

func (c *FilesChannel) Stop() {
	c.mu.Lock()
	cancel := c.cancel
	c.cancel = nil
	c.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	c.wg.Wait()
}

func (c *FilesChannel) run(ctx context.Context, sink *store.Store) {
	var watcher *fsnotify.Watcher
	if c.watch {
		w, err := fsnotify.NewWatcher()
		if err != nil {
			slog.Error("Failed to create watcher, continuing without", "error", err)
		} else {
			watcher = w
			defer watcher.Close()
		}
	}

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

	err := filepath.WalkDir(c.root, func(path string, d fs.DirEntry, err error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if err != nil {
			slog.Debug("Walk error, skipping", "path", path, "error", err)
			return nil
		}
		if d.IsDir() {
			if skipDir(c.root, path, d.Name()) {
				return fs.SkipDir
			}
			if watcher != nil {
				if werr := watcher.Add(path); werr != nil {
					slog.Debug("Failed to watch directory", "path", path, "error", werr)
				}
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		e := c.fileEntry(path)
		if c.watch {
			c.mu.Lock()
			c.seen[path] = true
			c.mu.Unlock()
		}
		batch = append(batch, e)
		if len(batch) >= appendBatchSize {
			flush()
		}
		return nil
	})
	flush()

	if err != nil && ctx.Err() == nil {
		c.publish(eventbus.ChannelErrorEvent{Channel: c.Name(), Err: err})
	}
	c.publish(eventbus.IngestionCompletedEvent{Channel: c.Name(), Count: sink.Len()})

	if watcher != nil && ctx.Err() == nil {
		c.watchLoop(ctx, watcher, sink)
	}
}

// watchLoop appends files created after the initial walk. The store is
// append-only, so removals and renames leave their old candidates in
// place until a restart.
func (c *FilesChannel) watchLoop(ctx context.Context, watcher *fsnotify.Watcher, sink *store.Store) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !ev.Has(fsnotify.Create) {
				continue
			}
			info, err := os.Stat(ev.Name)
			if err != nil {
				continue
			}
			if info.IsDir() {
				if skipDir(c.root, ev.Name, filepath.Base(ev.Name)) {
					continue
				}
				if err := watcher.Add(ev.Name); err != nil {
					slog.Debug("Failed to watch new directory", "path", ev.Name, "error", err)
				}
				continue
			}
			if !info.Mode().IsRegular() {
				continue
			}
			c.mu.Lock()
			dup := c.seen[ev.Name]
			if !dup {
				c.seen[ev.Name] = true
			}
			c.mu.Unlock()
			if dup {
				continue
			}
			total := sink.Append(c.fileEntry(ev.Name))
			c.publish(eventbus.IngestionProgressEvent{Channel: c.Name(), Count: total})
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			slog.Debug("Watcher error", "error", err)
		}
	}
}

func (c *FilesChannel) fileEntry(path string) entry.Entry {
	name := path
	if rel, err := filepath.Rel(c.root, path); err == nil && !strings.HasPrefix(rel, "..") {
		name = rel
	}
	return entry.Entry{Name: name, Path: path}
}

func (c *FilesChannel) publish(ev eventbus.Event) {
	if c.bus != nil {
		c.bus.Publish(ev)
	}
}

// skipDir reports whether a walking channel should descend into the
// directory. Hidden directories are skipped except the root itself,
// and descent stops past maxWalkDepth levels.
func skipDir(root, path, name string) bool {
	if path == root {
		return false
	}
	if skipDirNames[name] {
		return true
	}
	if strings.HasPrefix(name, ".") && name != "." {
		return true
	}
	rel, err := filepath.Rel(root, path)
	if err == nil && strings.Count(rel, string(filepath.Separator)) >= maxWalkDepth {
		return true
	}
	return false
}
