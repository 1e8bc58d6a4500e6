// Package store holds the candidates produced by the active channel.
//
// The store is append-only for the lifetime of a channel session: indices
// are never reused or reordered and the length never decreases. A channel
// switch builds a fresh store rather than clearing this one.
package store

import (
	"errors"
	"sync"
	"sync/atomic"

	"trawl/internal/entry"
)

// slabSize is the number of entries per slab. Slabs are allocated once
// and never move, so a reader holding an index can dereference it
// without locking while the producer keeps appending.
const slabSize = 1024

// ErrNotFound is returned by Get for indices at or beyond the published
// length.
var ErrNotFound = errors.New("store: candidate index out of range")

// Store is the append-only candidate container. One goroutine (the
// channel's producer) appends; any number of readers may call Len, Get
// and Scan concurrently without locks. Readers observe a consistent
// prefix: every index below Len() is fully written.
type Store struct {
	appendMu  sync.Mutex
	directory atomic.Value // []*slab, copied on growth
	published atomic.Int64
}

type slab struct {
	entries [slabSize]entry.Entry
}

// New creates an empty store.
func New() *Store {
	s := &Store{}
	s.directory.Store([]*slab{})
	return s
}

// Append adds entries in arrival order and returns the new published
// length. Entries become visible to readers only once fully written:
// the length is published after the slab writes, and readers that
// observe the new length also observe the writes before it.
func (s *Store) Append(entries ...entry.Entry) int {
	s.appendMu.Lock()
	defer s.appendMu.Unlock()

	length := int(s.published.Load())
	directory := s.directory.Load().([]*slab)
	grown := false

	for _, e := range entries {
		slabIndex := length / slabSize
		if slabIndex == len(directory) {
			next := make([]*slab, len(directory), len(directory)+1)
			copy(next, directory)
			directory = append(next, &slab{})
			grown = true
		}
		directory[slabIndex].entries[length%slabSize] = e
		length++
	}

	if grown {
		s.directory.Store(directory)
	}
	s.published.Store(int64(length))
	return length
}

// Len returns the published length. All indices below it are readable.
func (s *Store) Len() int {
	return int(s.published.Load())
}

// Get returns the candidate at index i, or ErrNotFound when i is
// outside the published range.
func (s *Store) Get(i int) (entry.Entry, error) {
	if i < 0 || i >= s.Len() {
		return entry.Entry{}, ErrNotFound
	}
	directory := s.directory.Load().([]*slab)
	return directory[i/slabSize].entries[i%slabSize], nil
}

// Scan visits entries in [start, end) in index order, clamped to the
// published range. The visitor returns false to stop early. The *Entry
// passed to fn points into the store and must be treated as read-only.
func (s *Store) Scan(start, end int, fn func(i int, e *entry.Entry) bool) {
	length := s.Len()
	if end > length {
		end = length
	}
	if start < 0 {
		start = 0
	}
	if start >= end {
		return
	}
	directory := s.directory.Load().([]*slab)
	for i := start; i < end; i++ {
		if !fn(i, &directory[i/slabSize].entries[i%slabSize]) {
			return
		}
	}
}
