package bus

import (
	"sync"

	"github.com/sirupsen/logrus"
)

type EventType string

const (
	EventStatusUpdate     EventType = "statusUpdate"
	EventChatMessage      EventType = "chatMessage"
	EventAgentConnected   EventType = "agentConnected"
	EventPaymentCompleted EventType = "paymentCompleted"
	EventLog              EventType = "log"
)

type Event struct {
	Type    EventType              `json:"type"`
	Payload map[string]interface{} `json:"payload"`
}

type EventHandler func(event Event)

// EventBus fans advisory events out to subscribers. Delivery is
// best-effort: a full channel drops the event, and handlers never feed
// back into control flow.
type EventBus struct {
	mu        sync.RWMutex
	handlers  map[EventType][]EventHandler
	logger    *logrus.Logger
	eventChan chan Event
	stopChan  chan struct{}
}

func NewEventBus(logger *logrus.Logger) *EventBus {
	eb := &EventBus{
		handlers:  make(map[EventType][]EventHandler),
		logger:    logger,
		eventChan: make(chan Event, 100),
		stopChan:  make(chan struct{}),
	}

	go eb.processEvents()

	return eb
}

func (eb *EventBus) Subscribe(eventType EventType, handler EventHandler) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	eb.handlers[eventType] = append(eb.handlers[eventType], handler)
	eb.logger.Debugf("Handler subscribed to event type: %s", eventType)
}

func (eb *EventBus) SubscribeAll(handler EventHandler) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	eventTypes := []EventType{
		EventStatusUpdate,
		EventChatMessage,
		EventAgentConnected,
		EventPaymentCompleted,
		EventLog,
	}

	for _, eventType := range eventTypes {
		eb.handlers[eventType] = append(eb.handlers[eventType], handler)
	}

	eb.logger.Debug("Handler subscribed to all event types")
}

func (eb *EventBus) Publish(event Event) {
	select {
	case eb.eventChan <- event:
		eb.logger.Debugf("Event published: %s", event.Type)
	default:
		eb.logger.Warnf("Event channel full, dropping event: %s", event.Type)
	}
}

func (eb *EventBus) PublishAsync(eventType EventType, payload map[string]interface{}) {
	go func() {
		eb.Publish(Event{
			Type:    eventType,
			Payload: payload,
		})
	}()
}

// PublishStatus publishes an advisory status line such as "Thinking..."
// or "Executing: find_products...".
func (eb *EventBus) PublishStatus(status string) {
	eb.Publish(Event{
		Type:    EventStatusUpdate,
		Payload: map[string]interface{}{"status": status},
	})
}

// PublishChatMessage publishes one finished chat turn.
func (eb *EventBus) PublishChatMessage(role, text string) {
	eb.Publish(Event{
		Type: EventChatMessage,
		Payload: map[string]interface{}{
			"role": role,
			"text": text,
		},
	})
}

func (eb *EventBus) processEvents() {
	for {
		select {
		case event := <-eb.eventChan:
			eb.handleEvent(event)
		case <-eb.stopChan:
			eb.logger.Info("EventBus stopped")
			return
		}
	}
}

func (eb *EventBus) handleEvent(event Event) {
	eb.mu.RLock()
	handlers := eb.handlers[event.Type]
	eb.mu.RUnlock()

	for _, handler := range handlers {
		// Run each handler in a goroutine to prevent blocking
		go func(h EventHandler) {
			defer func() {
				if r := recover(); r != nil {
					eb.logger.Errorf("Panic in event handler for %s: %v", event.Type, r)
				}
			}()
			h(event)
		}(handler)
	}
}

func (eb *EventBus) Stop() {
	close(eb.stopChan)
}
