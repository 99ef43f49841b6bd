package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/urmzd/remotehub/pkg/api/types"
	"github.com/urmzd/remotehub/pkg/db"
	"github.com/urmzd/remotehub/pkg/generate"
	"github.com/urmzd/remotehub/pkg/hub"
)

// GenerateHandler handles configuration generation and history endpoints
type GenerateHandler struct {
	hub *hub.Hub
}

// NewGenerateHandler creates a new generate handler
func NewGenerateHandler(h *hub.Hub) *GenerateHandler {
	return &GenerateHandler{hub: h}
}

// Generate handles POST /generate
// @Summary      Generate configuration
// @Description  Writes the entity and helper YAML documents for every enabled device
// @Tags         generate
// @Produce      json
// @Success      200  {object}  types.GenerateResponse
// @Failure      422  {object}  types.GenerateResponse  "Entities reference undefined helpers"
// @Failure      500  {object}  types.ErrorResponse     "Write failed"
// @Router       /generate [post]
func (h *GenerateHandler) Generate(c *gin.Context) {
	res, err := h.hub.Generate(c.Request.Context())
	if err != nil {
		if errors.Is(err, generate.ErrDanglingHelper) && res != nil {
			c.JSON(http.StatusUnprocessableEntity, types.GenerateResponse{Result: res})
			return
		}
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.GenerateResponse{Result: res})
}

// ListSessions handles GET /learn/sessions
// @Summary      List learn sessions
// @Description  Returns recent learn attempts, newest first
// @Tags         learn
// @Produce      json
// @Param        device_id  query     string  false  "Only sessions of this device"
// @Param        limit      query     int     false  "Maximum entries (default 50)"
// @Success      200        {object}  types.ListSessionsResponse
// @Failure      400        {object}  types.ErrorResponse  "Invalid limit"
// @Router       /learn/sessions [get]
func (h *GenerateHandler) ListSessions(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			badRequest(c, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	sessions, err := h.hub.Sessions(c.Request.Context(), c.Query("device_id"), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	if sessions == nil {
		sessions = []*db.LearnSession{}
	}
	c.JSON(http.StatusOK, types.ListSessionsResponse{Sessions: sessions, Count: len(sessions)})
}
