// Package bus provides an in-process pub/sub bus for render lifecycle
// events. The pipeline publishes, the CLI subscribes for progress output;
// neither side holds a reference to the other.
package bus

import (
	"sync"
)

// EventType identifies different event types
type EventType string

// Event types for the render pipeline
const (
	EventTypeRecognitionStarted  EventType = "recognition.started"
	EventTypeRecognitionFinished EventType = "recognition.finished"

	EventTypeRenderStarted   EventType = "render.started"
	EventTypeRenderProgress  EventType = "render.progress"
	EventTypeRenderCompleted EventType = "render.completed"
	EventTypeRenderFailed    EventType = "render.failed"

	// Watch mode republishes filesystem changes as asset events.
	EventTypeAssetChanged EventType = "asset.changed"
)

// Event represents a bus event
type Event struct {
	Type EventType
	Data map[string]any
}

// Progress builds a render.progress event.
func Progress(done, total int) Event {
	return Event{
		Type: EventTypeRenderProgress,
		Data: map[string]any{"done": done, "total": total},
	}
}

// Failed builds a render.failed event carrying the fatal error.
func Failed(err error) Event {
	return Event{
		Type: EventTypeRenderFailed,
		Data: map[string]any{"error": err.Error()},
	}
}

// Handler is a function that handles events
type Handler func(Event)

// EventBus is a simple pub/sub event bus
type EventBus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
}

// NewEventBus creates a new event bus
func NewEventBus() *EventBus {
	return &EventBus{
		handlers: make(map[EventType][]Handler),
	}
}

// Subscribe adds a handler for an event type
func (b *EventBus) Subscribe(eventType EventType, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)
}

// SubscribeMultiple adds a handler for multiple event types
func (b *EventBus) SubscribeMultiple(eventTypes []EventType, handler Handler) {
	for _, et := range eventTypes {
		b.Subscribe(et, handler)
	}
}

// Publish sends an event to all subscribed handlers synchronously, in
// subscription order. Render progress must not reorder around completion,
// so handlers run inline rather than on goroutines.
func (b *EventBus) Publish(event Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[event.Type]))
	copy(handlers, b.handlers[event.Type])
	b.mu.RUnlock()

	for _, handler := range handlers {
		handler(event)
	}
}

// Clear removes all handlers
func (b *EventBus) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = make(map[EventType][]Handler)
}
