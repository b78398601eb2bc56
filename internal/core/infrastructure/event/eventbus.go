// Package event implements the in-process event bus on top of asaskevich/EventBus.
package event

import (
	"fmt"
	"sync"

	evbus "github.com/asaskevich/EventBus"

	eventconfig "github.com/hapi-protocol/hapi-core/internal/config/event"
	"github.com/hapi-protocol/hapi-core/pkg/interfaces/infrastructure/event"
	"github.com/hapi-protocol/hapi-core/pkg/interfaces/infrastructure/log"
)

// EventBus wraps evbus.Bus with an on/off switch and a per-topic handler cap
type EventBus struct {
	bus    evbus.Bus
	config *eventconfig.Config
	logger log.Logger

	mu          sync.Mutex
	subscribers map[event.EventType]int
}

var _ event.EventBus = (*EventBus)(nil)

// New creates an event bus; a nil config selects the defaults
func New(config *eventconfig.Config, logger log.Logger) *EventBus {
	if config == nil {
		config = eventconfig.New(nil)
	}
	return &EventBus{
		bus:         evbus.New(),
		config:      config,
		logger:      logger,
		subscribers: make(map[event.EventType]int),
	}
}

func (b *EventBus) reserve(eventType event.EventType) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if max := b.config.GetMaxSubscribers(); max > 0 && b.subscribers[eventType] >= max {
		return fmt.Errorf("event %s: subscriber limit %d reached", eventType, max)
	}
	b.subscribers[eventType]++
	return nil
}

func (b *EventBus) release(eventType event.EventType) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.subscribers[eventType] > 0 {
		b.subscribers[eventType]--
	}
}

// Subscribe registers a synchronous handler
func (b *EventBus) Subscribe(eventType event.EventType, handler interface{}) error {
	if err := b.reserve(eventType); err != nil {
		return err
	}
	if err := b.bus.Subscribe(string(eventType), handler); err != nil {
		b.release(eventType)
		return fmt.Errorf("subscribe %s: %w", eventType, err)
	}
	return nil
}

// SubscribeAsync registers a handler that runs on its own goroutine
func (b *EventBus) SubscribeAsync(eventType event.EventType, handler interface{}, transactional bool) error {
	if err := b.reserve(eventType); err != nil {
		return err
	}
	if err := b.bus.SubscribeAsync(string(eventType), handler, transactional); err != nil {
		b.release(eventType)
		return fmt.Errorf("subscribe %s: %w", eventType, err)
	}
	return nil
}

// Unsubscribe removes a handler
func (b *EventBus) Unsubscribe(eventType event.EventType, handler interface{}) error {
	if err := b.bus.Unsubscribe(string(eventType), handler); err != nil {
		return fmt.Errorf("unsubscribe %s: %w", eventType, err)
	}
	b.release(eventType)
	return nil
}

// Publish delivers args to the handlers of eventType; a disabled bus drops it
func (b *EventBus) Publish(eventType event.EventType, args ...interface{}) {
	if !b.config.IsEnabled() {
		return
	}
	if b.logger != nil {
		b.logger.Debugf("publish %s", eventType)
	}
	b.bus.Publish(string(eventType), args...)
}

// HasCallback reports whether eventType has handlers
func (b *EventBus) HasCallback(eventType event.EventType) bool {
	return b.bus.HasCallback(string(eventType))
}

// WaitAsync blocks until async handlers are idle
func (b *EventBus) WaitAsync() {
	b.bus.WaitAsync()
}
