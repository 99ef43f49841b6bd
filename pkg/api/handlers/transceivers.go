package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/urmzd/remotehub/pkg/api/types"
	"github.com/urmzd/remotehub/pkg/db"
	"github.com/urmzd/remotehub/pkg/hub"
)

// TransceiversHandler handles the transceiver registry
type TransceiversHandler struct {
	hub *hub.Hub
}

// NewTransceiversHandler creates a new transceivers handler
func NewTransceiversHandler(h *hub.Hub) *TransceiversHandler {
	return &TransceiversHandler{hub: h}
}

// ListTransceivers handles GET /transceivers
// @Summary      List transceivers
// @Description  Returns the registered IR/RF transceivers of the active profile
// @Tags         transceivers
// @Produce      json
// @Success      200  {object}  types.ListTransceiversResponse
// @Router       /transceivers [get]
func (h *TransceiversHandler) ListTransceivers(c *gin.Context) {
	list, err := h.hub.Transceivers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	if list == nil {
		list = []*db.Transceiver{}
	}
	c.JSON(http.StatusOK, types.ListTransceiversResponse{Transceivers: list, Count: len(list)})
}

// CreateTransceiver handles POST /transceivers
// @Summary      Register a transceiver
// @Description  Registers a serial transceiver, optionally bound to a platform remote entity
// @Tags         transceivers
// @Accept       json
// @Produce      json
// @Param        request  body      types.CreateTransceiverRequest  true  "Transceiver"
// @Success      201      {object}  types.TransceiverResponse
// @Failure      400      {object}  types.ErrorResponse  "Invalid request"
// @Router       /transceivers [post]
func (h *TransceiversHandler) CreateTransceiver(c *gin.Context) {
	var req types.CreateTransceiverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "name and port are required")
		return
	}

	t := &db.Transceiver{
		Name:      req.Name,
		Port:      req.Port,
		Identity:  req.Identity,
		Kind:      req.Kind,
		BaudRate:  req.BaudRate,
		Entity:    req.Entity,
		IsDefault: req.IsDefault,
	}
	if err := h.hub.AddTransceiver(c.Request.Context(), t); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, types.TransceiverResponse{Transceiver: t})
}
