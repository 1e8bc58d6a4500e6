// Package matcher ranks store candidates against the current query.
// Every query or store change starts a new generation; passes from
// older generations are cancelled cooperatively and their results can
// never overwrite a newer snapshot.
package matcher

import (
	"context"
	"runtime"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"unicode"

	"github.com/junegunn/fzf/src/algo"
	"github.com/junegunn/fzf/src/util"

	"trawl/internal/store"
)

const (
	// DefaultLimit is the fallback result cap when the UI has not
	// reported its viewport size yet.
	DefaultLimit = 256

	// cancelCheckStride is how many candidates a worker scores
	// between context checks.
	cancelCheckStride = 512

	slab16Size = 100 * 1024
	slab32Size = 2048
)

// Match is one ranked candidate. Index addresses the store; Positions
// are rune offsets into the candidate name for highlight rendering.
type Match struct {
	Index     int
	Score     int
	Positions []int
}

// Snapshot is the installed result of one completed pass.
type Snapshot struct {
	Generation uint64
	Query      string
	Total      int // store length when the pass started
	Matched    int // candidates that matched, not just the retained top
	Matches    []Match
}

// Matcher owns the background match passes over a store.
type Matcher struct {
	store   *store.Store
	workers int

	mu         sync.Mutex
	generation uint64
	cancel     context.CancelFunc
	installed  uint64 // highest generation installed so far
	stopped    bool
	wg         sync.WaitGroup

	snapshot atomic.Pointer[Snapshot]
	changed  chan struct{}
}

// New creates a matcher over st. The zero snapshot is installed so
// Snapshot never returns nil.
func New(st *store.Store) *Matcher {
	algo.Init("default")
	m := &Matcher{
		store:   st,
		workers: runtime.GOMAXPROCS(0),
		changed: make(chan struct{}, 1),
	}
	m.snapshot.Store(&Snapshot{})
	return m
}

// Snapshot returns the latest installed result
func (m *Matcher) Snapshot() *Snapshot {
	return m.snapshot.Load()
}

// Changed signals each newly installed snapshot. The channel has a
// one-slot buffer; readers coalesce bursts by draining it.
func (m *Matcher) Changed() <-chan struct{} {
	return m.changed
}

// Refresh starts a pass for query over the current store contents,
// cancelling any pass still in flight. It returns the new generation
// without waiting for the pass to finish.
func (m *Matcher) Refresh(query string, limit int) uint64 {
	if limit <= 0 {
		limit = DefaultLimit
	}

	m.mu.Lock()
	if m.stopped {
		gen := m.generation
		m.mu.Unlock()
		return gen
	}
	if m.cancel != nil {
		m.cancel()
	}
	m.generation++
	gen := m.generation
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.wg.Add(1)
	m.mu.Unlock()

	go func() {
		defer m.wg.Done()
		defer cancel()
		m.run(ctx, gen, query, limit)
	}()
	return gen
}

// Stop cancels any in-flight pass, waits for it to wind down and
// closes the change channel so waiters unblock.
func (m *Matcher) Stop() {
	m.mu.Lock()
	if m.stopped {
		m.mu.Unlock()
		return
	}
	m.stopped = true
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	m.mu.Unlock()
	m.wg.Wait()
	close(m.changed)
}

func (m *Matcher) run(ctx context.Context, gen uint64, query string, limit int) {
	total := m.store.Len()

	var snap *Snapshot
	if strings.TrimSpace(query) == "" {
		snap = m.passthrough(gen, query, total, limit)
	} else {
		matched, top, ok := m.score(ctx, query, total, limit)
		if !ok {
			return // superseded mid-pass
		}
		snap = &Snapshot{
			Generation: gen,
			Query:      query,
			Total:      total,
			Matched:    matched,
			Matches:    top,
		}
	}

	m.install(ctx, snap)
}

// passthrough serves the empty query: candidates in ingestion order,
// no scoring, no positions.
func (m *Matcher) passthrough(gen uint64, query string, total, limit int) *Snapshot {
	n := total
	if n > limit {
		n = limit
	}
	matches := make([]Match, n)
	for i := range matches {
		matches[i] = Match{Index: i}
	}
	return &Snapshot{
		Generation: gen,
		Query:      query,
		Total:      total,
		Matched:    total,
		Matches:    matches,
	}
}

// score runs the parallel pass: every worker scores a contiguous index
// range with its own slab, then the partial results are merged, ranked
// and the retained top re-matched for highlight positions.
func (m *Matcher) score(ctx context.Context, query string, total, limit int) (int, []Match, bool) {
	pattern, caseSensitive := buildPattern(query)
	if len(pattern) == 0 {
		return 0, nil, true
	}

	workers := m.workers
	if workers > total {
		workers = total
	}
	if workers < 1 {
		workers = 1
	}
	chunk := (total + workers - 1) / workers

	partials := make([][]Match, workers)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		start := w * chunk
		end := start + chunk
		if end > total {
			end = total
		}
		if start >= end {
			continue
		}
		wg.Add(1)
		go func(w, start, end int) {
			defer wg.Done()
			partials[w] = m.scoreRange(ctx, pattern, caseSensitive, start, end)
		}(w, start, end)
	}
	wg.Wait()

	if ctx.Err() != nil {
		return 0, nil, false
	}

	var all []Match
	for _, p := range partials {
		all = append(all, p...)
	}
	matched := len(all)

	sort.Slice(all, func(i, j int) bool {
		if all[i].Score != all[j].Score {
			return all[i].Score > all[j].Score
		}
		return all[i].Index < all[j].Index
	})
	if len(all) > limit {
		all = all[:limit]
	}

	m.fillPositions(pattern, caseSensitive, all)
	return matched, all, true
}

func (m *Matcher) scoreRange(ctx context.Context, pattern []rune, caseSensitive bool, start, end int) []Match {
	slab := util.MakeSlab(slab16Size, slab32Size)
	var out []Match
	for i := start; i < end; i++ {
		if (i-start)%cancelCheckStride == 0 && ctx.Err() != nil {
			return nil
		}
		e, err := m.store.Get(i)
		if err != nil {
			continue
		}
		chars := util.ToChars([]byte(e.Name))
		result, _ := algo.FuzzyMatchV2(caseSensitive, true, true, &chars, pattern, false, slab)
		if result.Score > 0 {
			out = append(out, Match{Index: i, Score: result.Score})
		}
	}
	return out
}

// fillPositions re-matches only the retained candidates with position
// tracking enabled. Scoring is deterministic, so the score is already
// known and only the offsets are taken.
func (m *Matcher) fillPositions(pattern []rune, caseSensitive bool, top []Match) {
	slab := util.MakeSlab(slab16Size, slab32Size)
	for i := range top {
		e, err := m.store.Get(top[i].Index)
		if err != nil {
			continue
		}
		chars := util.ToChars([]byte(e.Name))
		_, positions := algo.FuzzyMatchV2(caseSensitive, true, true, &chars, pattern, true, slab)
		if positions == nil {
			continue
		}
		pos := *positions
		sort.Ints(pos)
		top[i].Positions = pos
	}
}

// buildPattern prepares the query for fzf scoring. Case sensitivity is
// smart: an uppercase rune anywhere in the query makes it literal,
// otherwise both sides are matched lowercased with latin accents
// folded onto their base characters.
func buildPattern(query string) ([]rune, bool) {
	if strings.ContainsFunc(query, unicode.IsUpper) {
		return []rune(query), true
	}
	return algo.NormalizeRunes([]rune(strings.ToLower(query))), false
}

// install publishes snap unless a newer generation already landed
func (m *Matcher) install(ctx context.Context, snap *Snapshot) {
	if ctx.Err() != nil {
		return
	}
	m.mu.Lock()
	if snap.Generation <= m.installed {
		m.mu.Unlock()
		return
	}
	m.installed = snap.Generation
	m.snapshot.Store(snap)
	m.mu.Unlock()

	select {
	case m.changed <- struct{}{}:
	default:
	}
}
