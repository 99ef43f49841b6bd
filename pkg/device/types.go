package device

import (
	"encoding/json"
	"time"
)

// Device is a remote-controlled appliance whose commands are learned
// through a transceiver and later exposed to the automation platform.
type Device struct {
	ID              string             `json:"device_id"`             // Unique slug, never domain-prefixed
	Name            string             `json:"name"`                  // User-friendly name
	EntityType      string             `json:"entity_type"`           // Platform category (light, fan, ...)
	DeviceType      string             `json:"device_type"`           // broadlink or smartir
	Area            string             `json:"area"`                  // Free-text area
	BroadlinkEntity string             `json:"broadlink_entity"`      // Remote used to send and learn
	DeviceCode      string             `json:"device_code,omitempty"` // SmartIR device code
	Icon            string             `json:"icon,omitempty"`        // Optional icon override
	Commands        map[string]Command `json:"commands"`              // Command name -> captured payload
	Enabled         bool               `json:"enabled"`               // Disabled devices are not generated
	CreatedAt       time.Time          `json:"created_at"`            // Set once on create
	UpdatedAt       *time.Time         `json:"updated_at,omitempty"`  // Set on every mutation
}

// UnmarshalJSON treats a missing "enabled" field as enabled so documents
// written before the flag existed keep generating.
func (d *Device) UnmarshalJSON(data []byte) error {
	type plain Device
	aux := struct {
		*plain
		Enabled *bool `json:"enabled"`
	}{plain: (*plain)(d)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	d.Enabled = aux.Enabled == nil || *aux.Enabled
	return nil
}

// Clone returns a deep copy of the device.
func (d Device) Clone() Device {
	out := d
	out.Commands = make(map[string]Command, len(d.Commands))
	for name, cmd := range d.Commands {
		out.Commands[name] = cmd.Clone()
	}
	if d.UpdatedAt != nil {
		t := *d.UpdatedAt
		out.UpdatedAt = &t
	}
	return out
}

// CommandNames returns the names of commands that carry a usable payload.
func (d Device) CommandNames() []string {
	names := make([]string, 0, len(d.Commands))
	for name, cmd := range d.Commands {
		if cmd.Payload() != "" {
			names = append(names, name)
		}
	}
	return names
}

// Entity type constants
const (
	EntityTypeLight       = "light"
	EntityTypeSwitch      = "switch"
	EntityTypeFan         = "fan"
	EntityTypeMediaPlayer = "media_player"
	EntityTypeClimate     = "climate"
	EntityTypeCover       = "cover"
)

// EntityTypes lists every supported entity type.
var EntityTypes = []string{
	EntityTypeLight,
	EntityTypeSwitch,
	EntityTypeFan,
	EntityTypeMediaPlayer,
	EntityTypeClimate,
	EntityTypeCover,
}

// Device type constants
const (
	DeviceTypeBroadlink = "broadlink"
	DeviceTypeSmartIR   = "smartir"
)

// Signal kinds
const (
	KindIR = "ir"
	KindRF = "rf"
)

// IsValidEntityType reports whether t is one of EntityTypes.
func IsValidEntityType(t string) bool {
	for _, et := range EntityTypes {
		if et == t {
			return true
		}
	}
	return false
}
