package bus

import (
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBus(t *testing.T) *EventBus {
	t.Helper()
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	eb := NewEventBus(logger)
	t.Cleanup(eb.Stop)
	return eb
}

func waitFor(t *testing.T, done <-chan struct{}) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event delivery")
	}
}

func TestPublishDeliversToSubscriber(t *testing.T) {
	eb := newTestBus(t)

	done := make(chan struct{})
	var got Event
	eb.Subscribe(EventStatusUpdate, func(event Event) {
		got = event
		close(done)
	})

	eb.PublishStatus("Thinking...")
	waitFor(t, done)

	assert.Equal(t, EventStatusUpdate, got.Type)
	assert.Equal(t, "Thinking...", got.Payload["status"])
}

func TestSubscriberOnlySeesItsType(t *testing.T) {
	eb := newTestBus(t)

	var mu sync.Mutex
	var statusCount int
	done := make(chan struct{})

	eb.Subscribe(EventStatusUpdate, func(Event) {
		mu.Lock()
		statusCount++
		mu.Unlock()
	})
	eb.Subscribe(EventChatMessage, func(Event) {
		close(done)
	})

	eb.PublishChatMessage("assistant", "hello")
	waitFor(t, done)

	mu.Lock()
	defer mu.Unlock()
	assert.Zero(t, statusCount)
}

func TestSubscribeAllSeesEveryType(t *testing.T) {
	eb := newTestBus(t)

	var mu sync.Mutex
	seen := map[EventType]bool{}
	var wg sync.WaitGroup
	wg.Add(2)

	eb.SubscribeAll(func(event Event) {
		mu.Lock()
		if !seen[event.Type] {
			seen[event.Type] = true
			wg.Done()
		}
		mu.Unlock()
	})

	eb.PublishStatus("working")
	eb.Publish(Event{Type: EventPaymentCompleted, Payload: map[string]interface{}{"success": true}})

	done := make(chan struct{})
	go func() { wg.Wait(); close(done) }()
	waitFor(t, done)

	mu.Lock()
	defer mu.Unlock()
	require.True(t, seen[EventStatusUpdate])
	require.True(t, seen[EventPaymentCompleted])
}

func TestPanickingHandlerDoesNotKillBus(t *testing.T) {
	eb := newTestBus(t)

	done := make(chan struct{})
	eb.Subscribe(EventChatMessage, func(Event) {
		panic("handler bug")
	})
	eb.Subscribe(EventChatMessage, func(Event) {
		close(done)
	})

	eb.PublishChatMessage("user", "hi")
	waitFor(t, done)

	// The bus still accepts and delivers after the panic.
	second := make(chan struct{})
	eb.Subscribe(EventStatusUpdate, func(Event) { close(second) })
	eb.PublishStatus("still alive")
	waitFor(t, second)
}
