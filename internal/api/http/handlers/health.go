package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hapi-protocol/hapi-core/internal/indexer"
)

// HealthResponse is the body of GET /health
type HealthResponse struct {
	Status      string         `json:"status"`
	State       string         `json:"state"`
	Cursor      indexer.Cursor `json:"cursor"`
	QueueLength int            `json:"queue_length"`
}

// Health answers 200 while the indexer runs and 503 once it stopped
func (h *IndexerHandlers) Health(c *gin.Context) {
	state := h.indexer.State()
	resp := HealthResponse{
		Status:      "ok",
		State:       state.Kind.String(),
		Cursor:      h.indexer.Cursor(),
		QueueLength: h.indexer.QueueLength(),
	}
	code := http.StatusOK
	if state.Kind == indexer.StateStopped {
		resp.Status = "stopped"
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, resp)
}
