package types

import (
	"time"

	"github.com/urmzd/remotehub/pkg/db"
	"github.com/urmzd/remotehub/pkg/device"
	"github.com/urmzd/remotehub/pkg/generate"
	"github.com/urmzd/remotehub/pkg/hub"
)

// --- Request DTOs ---

// CreateDeviceRequest is the request body for POST /devices
type CreateDeviceRequest struct {
	DeviceID        string `json:"device_id,omitempty"`
	Name            string `json:"name"`
	EntityType      string `json:"entity_type"`
	DeviceType      string `json:"device_type,omitempty"`
	Area            string `json:"area,omitempty"`
	BroadlinkEntity string `json:"broadlink_entity,omitempty"`
	DeviceCode      string `json:"device_code,omitempty"`
	Icon            string `json:"icon,omitempty"`
}

// UpdateDeviceRequest is the request body for PATCH /devices/:id.
// Omitted fields are left unchanged.
type UpdateDeviceRequest struct {
	Name            *string `json:"name,omitempty"`
	EntityType      *string `json:"entity_type,omitempty"`
	DeviceType      *string `json:"device_type,omitempty"`
	Area            *string `json:"area,omitempty"`
	BroadlinkEntity *string `json:"broadlink_entity,omitempty"`
	DeviceCode      *string `json:"device_code,omitempty"`
	Icon            *string `json:"icon,omitempty"`
	Enabled         *bool   `json:"enabled,omitempty"`
}

// AddCommandRequest is the request body for POST /devices/:id/commands
type AddCommandRequest struct {
	Name    string `json:"name" binding:"required"`
	Payload string `json:"payload" binding:"required"`
	Kind    string `json:"kind,omitempty" binding:"omitempty,oneof=ir rf"`
}

// LearnRequest is the request body for POST /devices/:id/learn
type LearnRequest struct {
	Command        string  `json:"command"`
	Kind           string  `json:"kind,omitempty"`
	TimeoutSeconds float64 `json:"timeout_seconds,omitempty"`
	Replace        bool    `json:"replace,omitempty"`
}

// CreateTransceiverRequest is the request body for POST /transceivers
type CreateTransceiverRequest struct {
	Name      string `json:"name" binding:"required"`
	Port      string `json:"port" binding:"required"`
	Identity  string `json:"identity,omitempty"`
	Kind      string `json:"kind,omitempty"`
	BaudRate  int    `json:"baud_rate,omitempty"`
	Entity    string `json:"entity,omitempty"`
	IsDefault bool   `json:"is_default,omitempty"`
}

// --- Response DTOs ---

// ErrorResponse represents an API error
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// HealthResponse is returned from GET /health
type HealthResponse struct {
	hub.Health
	Timestamp time.Time `json:"timestamp"`
}

// ListDevicesResponse is returned from GET /devices
type ListDevicesResponse struct {
	Devices []device.Device `json:"devices"`
	Count   int             `json:"count"`
}

// DeviceResponse is returned from single-device endpoints
type DeviceResponse struct {
	Device *device.Device `json:"device"`
}

// LearnResponse is returned from POST /devices/:id/learn
type LearnResponse struct {
	Result *hub.LearnResult `json:"result"`
}

// TestCommandResponse is returned from POST /devices/:id/commands/:name/test
type TestCommandResponse struct {
	Status    string    `json:"status"`
	Device    string    `json:"device"`
	Command   string    `json:"command"`
	Timestamp time.Time `json:"timestamp"`
}

// GenerateResponse is returned from POST /generate
type GenerateResponse struct {
	Result *generate.Result `json:"result"`
}

// ListSessionsResponse is returned from GET /learn/sessions
type ListSessionsResponse struct {
	Sessions []*db.LearnSession `json:"sessions"`
	Count    int                `json:"count"`
}

// ListTransceiversResponse is returned from GET /transceivers
type ListTransceiversResponse struct {
	Transceivers []*db.Transceiver `json:"transceivers"`
	Count        int               `json:"count"`
}

// TransceiverResponse is returned from POST /transceivers
type TransceiverResponse struct {
	Transceiver *db.Transceiver `json:"transceiver"`
}
