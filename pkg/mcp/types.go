package mcp

import (
	"sort"

	"github.com/urmzd/remotehub/pkg/db"
	"github.com/urmzd/remotehub/pkg/device"
	"github.com/urmzd/remotehub/pkg/generate"
	"github.com/urmzd/remotehub/pkg/hub"
)

// --- Health Tool ---

// GetHealthOutput is the output for the get_health tool
type GetHealthOutput struct {
	hub.Health
	Timestamp string `json:"timestamp" jsonschema:"description=ISO8601 timestamp"`
}

// --- Device Tools ---

// DeviceInfo represents a device in tool outputs. Payloads are left out to
// keep responses small.
type DeviceInfo struct {
	ID              string   `json:"device_id" jsonschema:"description=Unique device id"`
	Name            string   `json:"name" jsonschema:"description=User-friendly device name"`
	EntityType      string   `json:"entity_type" jsonschema:"description=Platform category"`
	DeviceType      string   `json:"device_type" jsonschema:"description=broadlink or smartir"`
	Area            string   `json:"area,omitempty" jsonschema:"description=Area"`
	BroadlinkEntity string   `json:"broadlink_entity,omitempty" jsonschema:"description=Remote entity used to learn and send"`
	DeviceCode      string   `json:"device_code,omitempty" jsonschema:"description=SmartIR device code"`
	Enabled         bool     `json:"enabled" jsonschema:"description=Whether the device is generated"`
	Commands        []string `json:"commands" jsonschema:"description=Names of learned commands"`
}

// ListDevicesOutput is the output for the list_devices tool
type ListDevicesOutput struct {
	Devices []DeviceInfo `json:"devices" jsonschema:"description=Stored devices"`
	Count   int          `json:"count" jsonschema:"description=Total number of devices"`
}

// GetDeviceOutput is the output for the get_device and create_device tools
type GetDeviceOutput struct {
	Device DeviceInfo `json:"device" jsonschema:"description=Device information"`
}

// CreateDeviceInput is the input for the create_device tool
type CreateDeviceInput struct {
	DeviceID        string `json:"device_id,omitempty"`
	Name            string `json:"name"`
	EntityType      string `json:"entity_type"`
	DeviceType      string `json:"device_type,omitempty"`
	Area            string `json:"area,omitempty"`
	BroadlinkEntity string `json:"broadlink_entity,omitempty"`
	DeviceCode      string `json:"device_code,omitempty"`
	Icon            string `json:"icon,omitempty"`
}

// --- Command Tools ---

// LearnCommandInput is the input for the learn_command tool
type LearnCommandInput struct {
	DeviceID       string  `json:"device_id"`
	Command        string  `json:"command"`
	Kind           string  `json:"kind,omitempty"`
	TimeoutSeconds float64 `json:"timeout_seconds,omitempty"`
	Replace        bool    `json:"replace,omitempty"`
}

// LearnCommandOutput is the output for the learn_command tool
type LearnCommandOutput struct {
	Result *hub.LearnResult `json:"result" jsonschema:"description=Captured signal and polling statistics"`
}

// StatusOutput is the output of tools that only report success
type StatusOutput struct {
	Success bool   `json:"success" jsonschema:"description=Whether the operation succeeded"`
	Message string `json:"message" jsonschema:"description=Status message"`
}

// --- Generation Tools ---

// GenerateOutput is the output for the generate_config tool
type GenerateOutput struct {
	Result *generate.Result `json:"result" jsonschema:"description=Generation summary"`
}

// ListSessionsOutput is the output for the list_learn_sessions tool
type ListSessionsOutput struct {
	Sessions []*db.LearnSession `json:"sessions" jsonschema:"description=Learn attempts, newest first"`
	Count    int                `json:"count" jsonschema:"description=Number of sessions returned"`
}

// --- Helper conversions ---

// DeviceToInfo converts a device.Device to DeviceInfo
func DeviceToInfo(d *device.Device) DeviceInfo {
	names := d.CommandNames()
	sort.Strings(names)
	return DeviceInfo{
		ID:              d.ID,
		Name:            d.Name,
		EntityType:      d.EntityType,
		DeviceType:      d.DeviceType,
		Area:            d.Area,
		BroadlinkEntity: d.BroadlinkEntity,
		DeviceCode:      d.DeviceCode,
		Enabled:         d.Enabled,
		Commands:        names,
	}
}
