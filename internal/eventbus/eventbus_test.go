package eventbus

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPublishSubscribe(t *testing.T) {
	b := New()
	defer b.Close()

	var mu sync.Mutex
	var got []Event
	b.Subscribe(EventIngestionProgress, func(e Event) {
		mu.Lock()
		got = append(got, e)
		mu.Unlock()
	})

	b.Publish(IngestionProgressEvent{Channel: "files", Count: 10})
	b.Publish(IngestionProgressEvent{Channel: "files", Count: 20})

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 2
	}, time.Second, 5*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, IngestionProgressEvent{Channel: "files", Count: 10}, got[0])
	require.Equal(t, IngestionProgressEvent{Channel: "files", Count: 20}, got[1])
}

func TestSubscribeFiltersByType(t *testing.T) {
	b := New()
	defer b.Close()

	var mu sync.Mutex
	var errorsSeen int
	b.Subscribe(EventChannelError, func(e Event) {
		mu.Lock()
		errorsSeen++
		mu.Unlock()
	})

	b.Publish(IngestionStartedEvent{Channel: "files"})
	b.Publish(ChannelErrorEvent{Channel: "files", Err: errors.New("boom")})
	b.Publish(IngestionCompletedEvent{Channel: "files", Count: 1})

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return errorsSeen == 1
	}, time.Second, 5*time.Millisecond)
}

func TestUnsubscribe(t *testing.T) {
	b := New()
	defer b.Close()

	var mu sync.Mutex
	first, second := 0, 0
	unsubscribe := b.Subscribe(EventIngestionStarted, func(e Event) {
		mu.Lock()
		first++
		mu.Unlock()
	})
	b.Subscribe(EventIngestionStarted, func(e Event) {
		mu.Lock()
		second++
		mu.Unlock()
	})

	b.Publish(IngestionStartedEvent{Channel: "files"})
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return first == 1 && second == 1
	}, time.Second, 5*time.Millisecond)

	unsubscribe()
	b.Publish(IngestionStartedEvent{Channel: "files"})

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return second == 2
	}, time.Second, 5*time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, 1, first)
}

func TestHandlerPanicDoesNotStopDispatch(t *testing.T) {
	b := New()
	defer b.Close()

	var mu sync.Mutex
	delivered := 0
	b.Subscribe(EventIngestionCompleted, func(e Event) {
		panic("handler bug")
	})
	b.Subscribe(EventIngestionCompleted, func(e Event) {
		mu.Lock()
		delivered++
		mu.Unlock()
	})

	b.Publish(IngestionCompletedEvent{Channel: "files", Count: 3})
	b.Publish(IngestionCompletedEvent{Channel: "files", Count: 4})

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return delivered == 2
	}, time.Second, 5*time.Millisecond)
}
