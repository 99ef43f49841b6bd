package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/urmzd/remotehub/pkg/api/types"
	"github.com/urmzd/remotehub/pkg/hub"
)

// HealthHandler handles health check endpoints
type HealthHandler struct {
	hub *hub.Hub
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(h *hub.Hub) *HealthHandler {
	return &HealthHandler{hub: h}
}

// Health handles GET /health
// @Summary      Health check
// @Description  Returns the learning engine state and whether a transceiver is configured
// @Tags         health
// @Produce      json
// @Success      200  {object}  types.HealthResponse  "Service is healthy"
// @Failure      503  {object}  types.HealthResponse  "No transceiver configured"
// @Router       /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	health := h.hub.Health(c.Request.Context())

	httpStatus := http.StatusOK
	if !health.Healthy() {
		httpStatus = http.StatusServiceUnavailable
	}

	c.JSON(httpStatus, types.HealthResponse{
		Health:    health,
		Timestamp: time.Now(),
	})
}
