package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/urmzd/remotehub/pkg/api/types"
	"github.com/urmzd/remotehub/pkg/device/schema"
	"github.com/urmzd/remotehub/pkg/hub"
)

// CommandsHandler handles command storage, learning and test transmission
type CommandsHandler struct {
	hub       *hub.Hub
	validator *schema.Validator
}

// NewCommandsHandler creates a new commands handler
func NewCommandsHandler(h *hub.Hub, validator *schema.Validator) *CommandsHandler {
	return &CommandsHandler{hub: h, validator: validator}
}

// AddCommand handles POST /devices/:id/commands
// @Summary      Add a command
// @Description  Stores an externally captured payload (base64 or hex) under a command name
// @Tags         commands
// @Accept       json
// @Produce      json
// @Param        id       path      string                   true  "Device id"
// @Param        request  body      types.AddCommandRequest  true  "Command"
// @Success      201      {object}  types.DeviceResponse
// @Failure      400      {object}  types.ErrorResponse  "Invalid request"
// @Failure      404      {object}  types.ErrorResponse  "Device not found"
// @Failure      409      {object}  types.ErrorResponse  "Command already exists"
// @Router       /devices/{id}/commands [post]
func (h *CommandsHandler) AddCommand(c *gin.Context) {
	id := c.Param("id")

	var req types.AddCommandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "name and payload are required")
		return
	}

	if err := h.hub.AddCommand(id, req.Name, req.Payload, req.Kind); err != nil {
		respondError(c, err)
		return
	}

	d, err := h.hub.GetDevice(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, types.DeviceResponse{Device: d})
}

// DeleteCommand handles DELETE /devices/:id/commands/:name
// @Summary      Delete a command
// @Description  Removes a command. Deleting a command the device does not have succeeds.
// @Tags         commands
// @Param        id    path  string  true  "Device id"
// @Param        name  path  string  true  "Command name"
// @Success      204   "Command removed"
// @Failure      404   {object}  types.ErrorResponse  "Device not found"
// @Router       /devices/{id}/commands/{name} [delete]
func (h *CommandsHandler) DeleteCommand(c *gin.Context) {
	if err := h.hub.DeleteCommand(c.Param("id"), c.Param("name")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Learn handles POST /devices/:id/learn
// @Summary      Learn a command
// @Description  Captures an IR or RF signal from the device's transceiver and stores it. Blocks until a signal arrives or the timeout elapses (RF uses the timeout once per phase).
// @Tags         commands
// @Accept       json
// @Produce      json
// @Param        id       path      string              true  "Device id"
// @Param        request  body      types.LearnRequest  true  "Command to learn"
// @Success      201      {object}  types.LearnResponse
// @Failure      400      {object}  types.ErrorResponse  "Invalid request"
// @Failure      404      {object}  types.ErrorResponse  "Device not found"
// @Failure      409      {object}  types.ErrorResponse  "Command exists or learning already in progress"
// @Failure      503      {object}  types.ErrorResponse  "Transceiver unavailable"
// @Failure      504      {object}  types.ErrorResponse  "No signal received"
// @Router       /devices/{id}/learn [post]
func (h *CommandsHandler) Learn(c *gin.Context) {
	var req types.LearnRequest
	if !decodeValidated(c, h.validator.ValidateLearnRequest, &req) {
		return
	}

	res, err := h.hub.Learn(c.Request.Context(), hub.LearnRequest{
		DeviceID: c.Param("id"),
		Command:  req.Command,
		Kind:     req.Kind,
		Timeout:  time.Duration(req.TimeoutSeconds * float64(time.Second)),
		Replace:  req.Replace,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, types.LearnResponse{Result: res})
}

// TestCommand handles POST /devices/:id/commands/:name/test
// @Summary      Transmit a command
// @Description  Sends a stored command through the device's transceiver
// @Tags         commands
// @Produce      json
// @Param        id    path      string  true  "Device id"
// @Param        name  path      string  true  "Command name"
// @Success      200   {object}  types.TestCommandResponse
// @Failure      404   {object}  types.ErrorResponse  "Device or command not found"
// @Failure      502   {object}  types.ErrorResponse  "Transmission failed"
// @Failure      503   {object}  types.ErrorResponse  "Transceiver unavailable"
// @Router       /devices/{id}/commands/{name}/test [post]
func (h *CommandsHandler) TestCommand(c *gin.Context) {
	id, name := c.Param("id"), c.Param("name")

	if err := h.hub.TestCommand(c.Request.Context(), id, name); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.TestCommandResponse{
		Status:    "sent",
		Device:    id,
		Command:   name,
		Timestamp: time.Now(),
	})
}
