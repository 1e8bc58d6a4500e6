// Package eventbus carries channel ingestion lifecycle notifications
// from producer goroutines to the UI without ever blocking a producer.
package eventbus

import (
	"log/slog"
	"runtime/debug"
	"sync"
)

// EventType identifies a kind of ingestion event
type EventType string

const (
	EventIngestionStarted   EventType = "IngestionStarted"
	EventIngestionProgress  EventType = "IngestionProgress"
	EventIngestionCompleted EventType = "IngestionCompleted"
	EventChannelError       EventType = "ChannelError"
)

// Event is the interface for all bus events
type Event interface {
	Type() EventType
}

// IngestionStartedEvent is emitted when a channel begins producing
type IngestionStartedEvent struct {
	Channel string
}

func (e IngestionStartedEvent) Type() EventType { return EventIngestionStarted }

// IngestionProgressEvent is emitted periodically while a channel produces.
// Count is the store length at publication time.
type IngestionProgressEvent struct {
	Channel string
	Count   int
}

func (e IngestionProgressEvent) Type() EventType { return EventIngestionProgress }

// IngestionCompletedEvent is emitted when a channel finishes producing
type IngestionCompletedEvent struct {
	Channel string
	Count   int
}

func (e IngestionCompletedEvent) Type() EventType { return EventIngestionCompleted }

// ChannelErrorEvent is emitted when ingestion fails. Candidates already
// ingested stay valid; the error is surfaced as status text.
type ChannelErrorEvent struct {
	Channel string
	Err     error
}

func (e ChannelErrorEvent) Type() EventType { return EventChannelError }

// Handler is a function that handles bus events
type Handler func(Event)

// Bus is the interface for the event bus
type Bus interface {
	Publish(event Event)
	Subscribe(eventType EventType, handler Handler) func()
	Close()
}

// bus is the concrete implementation of Bus
type bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]subscription
	nextID   int
	events   chan Event
	quit     chan struct{}
	wg       sync.WaitGroup
}

type subscription struct {
	id      int
	handler Handler
}

// New creates a bus and starts its dispatcher
func New() Bus {
	b := &bus{
		handlers: make(map[EventType][]subscription),
		events:   make(chan Event, 1000),
		quit:     make(chan struct{}),
	}
	b.wg.Add(1)
	go b.dispatch()
	return b
}

// Publish enqueues an event for dispatch. Never blocks: when the queue
// is full the event is dropped and the next progress event carries the
// fresher state.
func (b *bus) Publish(event Event) {
	select {
	case b.events <- event:
	default:
		slog.Debug("event bus full, dropping event", "type", event.Type())
	}
}

// Subscribe registers a handler for an event type and returns an
// unsubscribe function.
func (b *bus) Subscribe(eventType EventType, handler Handler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	b.handlers[eventType] = append(b.handlers[eventType], subscription{id: id, handler: handler})

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		subs := b.handlers[eventType]
		for i, sub := range subs {
			if sub.id == id {
				b.handlers[eventType] = append(subs[:i], subs[i+1:]...)
				break
			}
		}
	}
}

// Close stops the dispatcher after draining queued events. Publish
// calls after Close are dropped once the queue fills.
func (b *bus) Close() {
	close(b.quit)
	b.wg.Wait()
}

// dispatch distributes events to subscribers. Handlers run on the
// dispatcher goroutine; they are expected to hand work off (the UI
// forwarder pushes into a buffered channel) rather than block.
func (b *bus) dispatch() {
	defer b.wg.Done()

	for {
		select {
		case event := <-b.events:
			b.deliver(event)
		case <-b.quit:
			for {
				select {
				case event := <-b.events:
					b.deliver(event)
				default:
					return
				}
			}
		}
	}
}

func (b *bus) deliver(event Event) {
	b.mu.RLock()
	subs := b.handlers[event.Type()]
	subsCopy := make([]subscription, len(subs))
	copy(subsCopy, subs)
	b.mu.RUnlock()

	for _, sub := range subsCopy {
		func() {
			defer func() {
				if r := recover(); r != nil {
					slog.Error("event handler panic",
						"type", event.Type(), "panic", r, "stack", string(debug.Stack()))
				}
			}()
			sub.handler(event)
		}()
	}
}
