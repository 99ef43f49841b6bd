package schema

import (
	"embed"
	"fmt"
)

//go:embed schemas/*.json
var schemaFS embed.FS

// Names of the embedded schema documents
const (
	DeviceCreateSchema = "device_create.json"
	DeviceUpdateSchema = "device_update.json"
	LearnRequestSchema = "learn_request.json"
)

func mustRead(name string) []byte {
	b, err := schemaFS.ReadFile(name)
	if err != nil {
		panic(fmt.Sprintf("schema: missing embedded %s: %v", name, err))
	}
	return b
}

// ValidateDevice checks a device creation payload.
func (v *Validator) ValidateDevice(payload map[string]any) error {
	return v.Validate(DeviceCreateSchema, payload)
}

// ValidateDeviceUpdate checks a partial device update payload.
func (v *Validator) ValidateDeviceUpdate(payload map[string]any) error {
	return v.Validate(DeviceUpdateSchema, payload)
}

// ValidateLearnRequest checks a learn request payload.
func (v *Validator) ValidateLearnRequest(payload map[string]any) error {
	return v.Validate(LearnRequestSchema, payload)
}
