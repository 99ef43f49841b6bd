package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/urmzd/remotehub/pkg/api/types"
	"github.com/urmzd/remotehub/pkg/device"
	"github.com/urmzd/remotehub/pkg/device/schema"
	"github.com/urmzd/remotehub/pkg/hub"
	"github.com/urmzd/remotehub/pkg/store"
)

// DevicesHandler handles device CRUD endpoints
type DevicesHandler struct {
	hub       *hub.Hub
	validator *schema.Validator
}

// NewDevicesHandler creates a new devices handler
func NewDevicesHandler(h *hub.Hub, validator *schema.Validator) *DevicesHandler {
	return &DevicesHandler{hub: h, validator: validator}
}

// ListDevices handles GET /devices
// @Summary      List all devices
// @Description  Returns every stored device with its commands, ordered by id
// @Tags         devices
// @Produce      json
// @Success      200  {object}  types.ListDevicesResponse
// @Failure      500  {object}  types.ErrorResponse  "Store error"
// @Router       /devices [get]
func (h *DevicesHandler) ListDevices(c *gin.Context) {
	devices, err := h.hub.ListDevices()
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, types.ListDevicesResponse{
		Devices: devices,
		Count:   len(devices),
	})
}

// GetDevice handles GET /devices/:id
// @Summary      Get device details
// @Description  Returns a device and its commands
// @Tags         devices
// @Produce      json
// @Param        id   path      string  true  "Device id"
// @Success      200  {object}  types.DeviceResponse
// @Failure      404  {object}  types.ErrorResponse  "Device not found"
// @Router       /devices/{id} [get]
func (h *DevicesHandler) GetDevice(c *gin.Context) {
	d, err := h.hub.GetDevice(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.DeviceResponse{Device: d})
}

// CreateDevice handles POST /devices
// @Summary      Create a device
// @Description  Stores a new device. The id is derived from the name when omitted.
// @Tags         devices
// @Accept       json
// @Produce      json
// @Param        request  body      types.CreateDeviceRequest  true  "Device"
// @Success      201      {object}  types.DeviceResponse
// @Failure      400      {object}  types.ErrorResponse  "Invalid request"
// @Failure      409      {object}  types.ErrorResponse  "Device already exists"
// @Router       /devices [post]
func (h *DevicesHandler) CreateDevice(c *gin.Context) {
	var req types.CreateDeviceRequest
	if !decodeValidated(c, h.validator.ValidateDevice, &req) {
		return
	}

	d, err := h.hub.CreateDevice(device.Device{
		ID:              req.DeviceID,
		Name:            req.Name,
		EntityType:      req.EntityType,
		DeviceType:      req.DeviceType,
		Area:            req.Area,
		BroadlinkEntity: req.BroadlinkEntity,
		DeviceCode:      req.DeviceCode,
		Icon:            req.Icon,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, types.DeviceResponse{Device: d})
}

// UpdateDevice handles PATCH /devices/:id
// @Summary      Update a device
// @Description  Merges the given fields into the device. Commands are preserved.
// @Tags         devices
// @Accept       json
// @Produce      json
// @Param        id       path      string                     true  "Device id"
// @Param        request  body      types.UpdateDeviceRequest  true  "Fields to change"
// @Success      200      {object}  types.DeviceResponse
// @Failure      400      {object}  types.ErrorResponse  "Invalid request"
// @Failure      404      {object}  types.ErrorResponse  "Device not found"
// @Router       /devices/{id} [patch]
func (h *DevicesHandler) UpdateDevice(c *gin.Context) {
	var req types.UpdateDeviceRequest
	if !decodeValidated(c, h.validator.ValidateDeviceUpdate, &req) {
		return
	}

	d, err := h.hub.UpdateDevice(c.Param("id"), store.DeviceUpdate{
		Name:            req.Name,
		EntityType:      req.EntityType,
		DeviceType:      req.DeviceType,
		Area:            req.Area,
		BroadlinkEntity: req.BroadlinkEntity,
		DeviceCode:      req.DeviceCode,
		Icon:            req.Icon,
		Enabled:         req.Enabled,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.DeviceResponse{Device: d})
}

// DeleteDevice handles DELETE /devices/:id
// @Summary      Delete a device
// @Description  Removes a device and all of its commands
// @Tags         devices
// @Produce      json
// @Param        id   path  string  true  "Device id"
// @Success      204  "Device removed"
// @Failure      404  {object}  types.ErrorResponse  "Device not found"
// @Router       /devices/{id} [delete]
func (h *DevicesHandler) DeleteDevice(c *gin.Context) {
	if err := h.hub.DeleteDevice(c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// decodeValidated reads the JSON body, validates it as a generic object and
// then decodes it into out. It writes the error response and returns false
// on failure.
func decodeValidated(c *gin.Context, validate func(map[string]any) error, out any) bool {
	body, err := c.GetRawData()
	if err != nil {
		badRequest(c, "Failed to read request body")
		return false
	}

	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil || payload == nil {
		badRequest(c, "Request body must be a JSON object")
		return false
	}
	if err := validate(payload); err != nil {
		respondError(c, err)
		return false
	}
	if err := json.Unmarshal(body, out); err != nil {
		badRequest(c, err.Error())
		return false
	}
	return true
}
