// Package websocket streams indexer state transitions to WebSocket clients.
package websocket

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/hapi-protocol/hapi-core/internal/indexer"
	"github.com/hapi-protocol/hapi-core/pkg/interfaces/infrastructure/event"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

// StateSource reports the current indexer state
type StateSource interface {
	State() indexer.State
}

// Server upgrades /ws requests and pushes StateMessage frames
type Server struct {
	logger              *zap.Logger
	bus                 event.EventBus
	source              StateSource
	subscriptionManager *SubscriptionManager
	upgrader            websocket.Upgrader
}

// NewServer subscribes to state changes on bus
func NewServer(logger *zap.Logger, bus event.EventBus, source StateSource) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		logger:              logger,
		bus:                 bus,
		source:              source,
		subscriptionManager: NewSubscriptionManager(logger),
		upgrader: websocket.Upgrader{
			// read-only stream of public state
			CheckOrigin:     func(r *http.Request) bool { return true },
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
	if err := bus.SubscribeAsync(event.EventTypeStateChanged, s.onStateChanged, true); err != nil {
		return nil, fmt.Errorf("subscribe state changes: %w", err)
	}
	return s, nil
}

// Clients returns the number of connected clients
func (s *Server) Clients() int {
	return s.subscriptionManager.Count()
}

// Close unsubscribes from the bus and disconnects every client
func (s *Server) Close() error {
	err := s.bus.Unsubscribe(event.EventTypeStateChanged, s.onStateChanged)
	s.subscriptionManager.RemoveAll()
	return err
}

func (s *Server) onStateChanged(from, to indexer.State) {
	s.subscriptionManager.Broadcast(StateMessage{From: &from, To: to})
}

// HandleWebSocket is the gin handler for GET /ws
func (s *Server) HandleWebSocket(c *gin.Context) {
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Warn("Failed to upgrade WebSocket connection", zap.Error(err))
		return
	}
	sub, err := s.subscriptionManager.Add(conn, func() StateMessage {
		return StateMessage{To: s.source.State()}
	})
	if err != nil {
		s.logger.Error("Failed to register WebSocket client", zap.Error(err))
		_ = conn.Close()
		return
	}
	s.logger.Debug("WebSocket connection established",
		zap.String("subscription_id", sub.ID),
		zap.String("remote_addr", conn.RemoteAddr().String()))

	go s.writeLoop(sub)
	s.readLoop(sub)

	s.subscriptionManager.Remove(sub.ID)
	s.logger.Debug("WebSocket connection closed", zap.String("subscription_id", sub.ID))
}

// readLoop discards client frames and returns when the peer goes away
func (s *Server) readLoop(sub *Subscription) {
	conn := sub.conn
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Warn("WebSocket connection closed unexpectedly", zap.Error(err))
			}
			return
		}
	}
}

// writeLoop owns all writes to the connection
func (s *Server) writeLoop(sub *Subscription) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = sub.conn.Close()
	}()
	for {
		select {
		case data := <-sub.send:
			_ = sub.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := sub.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				s.logger.Debug("Failed to write state message", zap.String("subscription_id", sub.ID), zap.Error(err))
				s.subscriptionManager.Remove(sub.ID)
				return
			}
		case <-ticker.C:
			_ = sub.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := sub.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				s.subscriptionManager.Remove(sub.ID)
				return
			}
		case <-sub.done:
			_ = sub.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = sub.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}
