// Package preview renders candidate previews off the UI goroutine.
// A small worker pool serves render requests newest-first, results are
// cached per candidate index, and the cache evicts whichever preview
// was displayed least recently.
package preview

import (
	"context"
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"trawl/internal/channel"
	"trawl/internal/entry"
	"trawl/internal/store"
)

const (
	workerCount   = 2
	cacheCapacity = 64
	queueCapacity = 64
)

// Kind classifies what a rendered preview holds
type Kind int

const (
	// KindLoaded is real content
	KindLoaded Kind = iota
	// KindTooLarge replaces files over the size cap
	KindTooLarge
	// KindBinary replaces content that is not text
	KindBinary
	// KindError replaces content whose render failed
	KindError
	// KindNone means the candidate has nothing to preview
	KindNone
)

// Content is one rendered preview. TargetLine, when positive, is the
// line the pane should scroll into view; Numbers asks the pane for a
// line number gutter.
type Content struct {
	Index      int
	Title      string
	Text       string
	Kind       Kind
	TargetLine int
	Numbers    bool
}

// Pipeline owns the preview workers and cache for one channel session.
type Pipeline struct {
	store    *store.Store
	renderer func(ctx context.Context, e entry.Entry) Content

	mu      sync.Mutex
	queue   []int // newest last, served from the tail
	pending map[int]bool
	cache   *lru.Cache[int, Content]
	current int
	stopped bool

	wake    chan struct{}
	changed chan struct{}
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// New creates a pipeline over st. When the channel implements the
// preview capability it renders all content; otherwise candidates with
// a file path get the built-in file preview and the rest have none.
func New(st *store.Store, ch channel.Channel) *Pipeline {
	cache, _ := lru.New[int, Content](cacheCapacity)
	p := &Pipeline{
		store:   st,
		pending: make(map[int]bool),
		cache:   cache,
		current: -1,
		wake:    make(chan struct{}, 1),
		changed: make(chan struct{}, 1),
	}
	if prev, ok := ch.(channel.Previewer); ok {
		p.renderer = func(ctx context.Context, e entry.Entry) Content {
			text, err := prev.Preview(ctx, e)
			if err != nil {
				return Content{Title: e.Name, Kind: KindError, Text: fmt.Sprintf("preview failed: %v", err)}
			}
			return Content{Title: e.Name, Kind: KindLoaded, Text: text}
		}
	} else {
		p.renderer = func(_ context.Context, e entry.Entry) Content {
			if !e.HasFile() {
				return Content{Title: e.Name, Kind: KindNone}
			}
			return renderFile(e)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.wg.Add(workerCount)
	for i := 0; i < workerCount; i++ {
		go func() {
			defer p.wg.Done()
			p.work(ctx)
		}()
	}
	return p
}

// Changed signals whenever the preview for the current candidate
// becomes available. One-slot buffer, bursts coalesce.
func (p *Pipeline) Changed() <-chan struct{} {
	return p.changed
}

// Request makes index the current candidate and schedules a render if
// its preview is not cached. Requests never block; newer requests are
// served before older ones still waiting.
func (p *Pipeline) Request(index int) {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.current = index

	if _, ok := p.cache.Get(index); ok {
		p.mu.Unlock()
		p.signal()
		return
	}
	if !p.pending[index] {
		p.pending[index] = true
		p.queue = append(p.queue, index)
		if len(p.queue) > queueCapacity {
			drop := p.queue[0]
			p.queue = p.queue[1:]
			delete(p.pending, drop)
		}
	}
	p.mu.Unlock()

	select {
	case p.wake <- struct{}{}:
	default:
	}
}

// Current returns the cached preview for the current candidate. The
// second return is false while a render is still pending, which the
// caller shows as a loading placeholder.
func (p *Pipeline) Current() (Content, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cache.Get(p.current)
}

// Stop cancels in-flight renders, waits for the workers and closes
// the change channel so waiters unblock.
func (p *Pipeline) Stop() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	p.mu.Unlock()
	p.cancel()
	p.wg.Wait()
	close(p.changed)
}

func (p *Pipeline) work(ctx context.Context) {
	for {
		index, ok := p.next()
		if !ok {
			select {
			case <-ctx.Done():
				return
			case <-p.wake:
				continue
			}
		}

		e, err := p.store.Get(index)
		if err != nil {
			p.finish(index, Content{Kind: KindError, Text: fmt.Sprintf("preview failed: %v", err)})
			continue
		}
		content := p.renderer(ctx, e)
		if ctx.Err() != nil {
			return
		}
		p.finish(index, content)
	}
}

// next pops the most recent request
func (p *Pipeline) next() (int, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.queue) == 0 {
		return 0, false
	}
	index := p.queue[len(p.queue)-1]
	p.queue = p.queue[:len(p.queue)-1]
	return index, true
}

// finish installs the render into the cache. The changed signal fires
// only when the result is for the candidate that is still current; a
// render that lost the race stays cached for later but must not be
// presented over a newer selection.
func (p *Pipeline) finish(index int, content Content) {
	content.Index = index

	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	delete(p.pending, index)
	p.cache.Add(index, content)
	isCurrent := index == p.current
	p.mu.Unlock()

	if isCurrent {
		p.signal()
	}
}

func (p *Pipeline) signal() {
	select {
	case p.changed <- struct{}{}:
	default:
	}
}
