package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/urmzd/remotehub/pkg/api/types"
	"github.com/urmzd/remotehub/pkg/db"
	"github.com/urmzd/remotehub/pkg/device"
	"github.com/urmzd/remotehub/pkg/generate"
	"github.com/urmzd/remotehub/pkg/hub"
	"github.com/urmzd/remotehub/pkg/learn"
	"github.com/urmzd/remotehub/pkg/store"
)

// errorMapping maps a sentinel to an HTTP status and error code.
var errorMapping = []struct {
	target error
	status int
	code   string
}{
	{store.ErrDeviceNotFound, http.StatusNotFound, "not_found"},
	{hub.ErrCommandNotFound, http.StatusNotFound, "not_found"},
	{db.ErrTransceiverNotFound, http.StatusNotFound, "not_found"},
	{store.ErrDeviceExists, http.StatusConflict, "already_exists"},
	{store.ErrCommandExists, http.StatusConflict, "already_exists"},
	{learn.ErrBusy, http.StatusConflict, "busy"},
	{store.ErrInvalidID, http.StatusBadRequest, "validation_error"},
	{device.ErrValidation, http.StatusBadRequest, "validation_error"},
	{hub.ErrInvalidKind, http.StatusBadRequest, "validation_error"},
	{learn.ErrInvalidPayload, http.StatusBadRequest, "validation_error"},
	{learn.ErrCaptureTimeout, http.StatusGatewayTimeout, "timeout"},
	{learn.ErrSweepTimeout, http.StatusGatewayTimeout, "timeout"},
	{context.DeadlineExceeded, http.StatusGatewayTimeout, "timeout"},
	{hub.ErrNoTransceiver, http.StatusServiceUnavailable, "transceiver_unavailable"},
	{learn.ErrAuthenticationFailed, http.StatusServiceUnavailable, "transceiver_unavailable"},
	{learn.ErrNotAuthenticated, http.StatusServiceUnavailable, "transceiver_unavailable"},
	{device.ErrNotConnected, http.StatusServiceUnavailable, "transceiver_unavailable"},
	{learn.ErrDeviceCommunication, http.StatusBadGateway, "device_error"},
	{generate.ErrDanglingHelper, http.StatusUnprocessableEntity, "generation_failed"},
}

// respondError writes the ErrorResponse matching err.
func respondError(c *gin.Context, err error) {
	for _, m := range errorMapping {
		if errors.Is(err, m.target) {
			c.JSON(m.status, types.ErrorResponse{Error: m.code, Message: err.Error()})
			return
		}
	}
	c.JSON(http.StatusInternalServerError, types.ErrorResponse{
		Error:   "internal_error",
		Message: err.Error(),
	})
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, types.ErrorResponse{
		Error:   "invalid_request",
		Message: message,
	})
}
