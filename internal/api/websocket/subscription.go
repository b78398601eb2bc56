package websocket

import (
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/hapi-protocol/hapi-core/internal/indexer"
)

// sendBuffer is how many messages a slow client may lag behind
const sendBuffer = 16

// StateMessage is sent for every state transition; From is absent on the
// first message of a connection, which carries the current state
type StateMessage struct {
	From *indexer.State `json:"from,omitempty"`
	To   indexer.State  `json:"to"`
}

// Subscription is one connected client
type Subscription struct {
	ID   string
	conn *websocket.Conn
	send chan []byte
	done chan struct{}
	once sync.Once
}

func (s *Subscription) close() {
	s.once.Do(func() { close(s.done) })
}

// SubscriptionManager fans state transitions out to connected clients
type SubscriptionManager struct {
	logger        *zap.Logger
	mu            sync.RWMutex
	subscriptions map[string]*Subscription
}

// NewSubscriptionManager creates an empty manager
func NewSubscriptionManager(logger *zap.Logger) *SubscriptionManager {
	return &SubscriptionManager{
		logger:        logger,
		subscriptions: make(map[string]*Subscription),
	}
}

// Add registers conn and queues current() as its first message. current
// runs under the manager lock, so a transition is either already part of
// the first message or broadcast to the new subscription after it.
func (m *SubscriptionManager) Add(conn *websocket.Conn, current func() StateMessage) (*Subscription, error) {
	sub := &Subscription{
		ID:   uuid.New().String(),
		conn: conn,
		send: make(chan []byte, sendBuffer),
		done: make(chan struct{}),
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	data, err := json.Marshal(current())
	if err != nil {
		return nil, err
	}
	sub.send <- data
	m.subscriptions[sub.ID] = sub
	return sub, nil
}

// Remove drops the subscription and ends its writer
func (m *SubscriptionManager) Remove(id string) {
	m.mu.Lock()
	sub, ok := m.subscriptions[id]
	delete(m.subscriptions, id)
	m.mu.Unlock()
	if ok {
		sub.close()
	}
}

// Count returns the number of connected clients
func (m *SubscriptionManager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.subscriptions)
}

// Broadcast queues msg for every subscription
func (m *SubscriptionManager) Broadcast(msg StateMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		m.logger.Error("Failed to marshal state message", zap.Error(err))
		return
	}
	var slow []*Subscription
	m.mu.RLock()
	for _, sub := range m.subscriptions {
		select {
		case sub.send <- data:
		default:
			slow = append(slow, sub)
		}
	}
	m.mu.RUnlock()
	for _, sub := range slow {
		m.logger.Warn("WebSocket client too slow, disconnecting", zap.String("subscription_id", sub.ID))
		m.Remove(sub.ID)
	}
}

// RemoveAll disconnects every client
func (m *SubscriptionManager) RemoveAll() {
	m.mu.Lock()
	subs := m.subscriptions
	m.subscriptions = make(map[string]*Subscription)
	m.mu.Unlock()
	for _, sub := range subs {
		sub.close()
	}
}
