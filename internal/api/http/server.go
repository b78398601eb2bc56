// Package http serves the indexer state, control and metrics endpoints.
package http

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hapi-protocol/hapi-core/internal/api/http/handlers"
	"github.com/hapi-protocol/hapi-core/internal/api/http/middleware"
	"github.com/hapi-protocol/hapi-core/internal/api/websocket"
	"github.com/hapi-protocol/hapi-core/pkg/interfaces/infrastructure/log"
)

const shutdownTimeout = 5 * time.Second

// Server is the indexer HTTP API
type Server struct {
	router     *gin.Engine
	httpServer *http.Server
	addr       string
	logger     log.Logger

	mu       sync.Mutex
	listener net.Listener
}

// NewServer builds the router; ws may be nil to leave /ws unmounted
func NewServer(addr string, logger log.Logger, registry *prometheus.Registry, ix handlers.Indexer, ws *websocket.Server) *Server {
	zl := logger.GetZapLogger()
	router := gin.New()
	router.Use(
		middleware.RequestID(),
		middleware.Recovery(zl),
		middleware.Logger(logger),
		middleware.NewMetrics(registry).Middleware(),
		middleware.Errors(zl),
	)

	s := &Server{
		router: router,
		addr:   addr,
		logger: logger,
	}
	s.setupRoutes(registry, ix, ws)
	return s
}

func (s *Server) setupRoutes(registry *prometheus.Registry, ix handlers.Indexer, ws *websocket.Server) {
	handlers.NewIndexerHandlers(ix, s.logger).RegisterRoutes(s.router)
	s.router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry})))
	if ws != nil {
		s.router.GET("/ws", ws.HandleWebSocket)
	}
	s.router.NoRoute(func(c *gin.Context) {
		middleware.WriteError(c, http.StatusNotFound, fmt.Sprintf("no route for %s %s", c.Request.Method, c.Request.URL.Path))
	})
}

// Handler exposes the router
func (s *Server) Handler() http.Handler {
	return s.router
}

// Addr returns the bound address once started, the configured one before
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.addr
}

// Start binds the listener and serves in the background
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.addr, err)
	}
	s.mu.Lock()
	s.listener = ln
	s.httpServer = &http.Server{
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	s.mu.Unlock()

	s.startGoroutine(ln)
	s.logger.Infof("HTTP server listening on %s", ln.Addr())
	return nil
}

func (s *Server) startGoroutine(ln net.Listener) {
	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Errorf("HTTP server failed: %v", err)
		}
	}()
}

// Stop shuts the server down, waiting up to five seconds for requests
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	srv := s.httpServer
	s.mu.Unlock()
	if srv == nil {
		return nil
	}
	stopCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(stopCtx); err != nil {
		return fmt.Errorf("shutdown HTTP server: %w", err)
	}
	s.logger.Info("HTTP server stopped")
	return nil
}
