// Package event defines the in-process event bus.
package event

// EventType names a topic on the bus
type EventType string

const (
	// EventTypeStateChanged carries (from, to State) when the indexer changes state
	EventTypeStateChanged EventType = "indexer.state_changed"
	// EventTypeJobProcessed carries (Job, error) after a job is handled
	EventTypeJobProcessed EventType = "indexer.job_processed"
	// EventTypeWebhookPushed carries (PushPayload, error) after a webhook call
	EventTypeWebhookPushed EventType = "indexer.webhook_pushed"
	// EventTypeCursorMoved carries the new Cursor
	EventTypeCursorMoved EventType = "indexer.cursor_moved"
)

// EventBus publishes events to handlers subscribed by topic.
// Handlers are plain funcs whose arguments match what the publisher sends.
type EventBus interface {
	// Subscribe registers a synchronous handler
	Subscribe(eventType EventType, handler interface{}) error
	// SubscribeAsync registers a handler run on its own goroutine;
	// transactional handlers see events one at a time, in order
	SubscribeAsync(eventType EventType, handler interface{}, transactional bool) error
	// Unsubscribe removes a handler
	Unsubscribe(eventType EventType, handler interface{}) error
	// Publish sends args to every handler of eventType
	Publish(eventType EventType, args ...interface{})
	// HasCallback reports whether eventType has handlers
	HasCallback(eventType EventType) bool
	// WaitAsync blocks until async handlers are idle
	WaitAsync()
}
