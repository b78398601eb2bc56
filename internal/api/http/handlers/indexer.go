// Package handlers implements the indexer HTTP endpoints.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hapi-protocol/hapi-core/internal/indexer"
	"github.com/hapi-protocol/hapi-core/pkg/interfaces/infrastructure/log"
)

// StopMessage is the Stopped message set by PUT /stop
const StopMessage = "Stopped by user"

// Indexer is the part of the indexer the API reads and controls
type Indexer interface {
	State() indexer.State
	Cursor() indexer.Cursor
	QueueLength() int
	Stop(message string)
}

// StateResponse is the body of GET /state
type StateResponse struct {
	State indexer.State `json:"state"`
}

// StopResponse is the body of PUT /stop
type StopResponse struct {
	Success bool `json:"success"`
}

// IndexerHandlers serves the state machine
type IndexerHandlers struct {
	indexer Indexer
	logger  log.Logger
}

// NewIndexerHandlers creates the handlers
func NewIndexerHandlers(ix Indexer, logger log.Logger) *IndexerHandlers {
	return &IndexerHandlers{indexer: ix, logger: logger}
}

// RegisterRoutes mounts /state, /stop and /health
func (h *IndexerHandlers) RegisterRoutes(r gin.IRoutes) {
	r.GET("/state", h.GetState)
	r.PUT("/stop", h.Stop)
	r.GET("/health", h.Health)
}

// GetState returns the current state
func (h *IndexerHandlers) GetState(c *gin.Context) {
	c.JSON(http.StatusOK, StateResponse{State: h.indexer.State()})
}

// Stop moves the indexer to Stopped; stopping twice is harmless
func (h *IndexerHandlers) Stop(c *gin.Context) {
	h.logger.Infof("stop requested from %s", c.ClientIP())
	h.indexer.Stop(StopMessage)
	c.JSON(http.StatusOK, StopResponse{Success: true})
}
