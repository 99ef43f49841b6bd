package generate

import (
	"bytes"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// Platform names used in the entities document.
const (
	PlatformTemplate  = "template"
	PlatformUniversal = "universal"
	PlatformSmartIR   = "smartir"
)

// Documents holds both generated configuration documents.
type Documents struct {
	Entities Entities
	Helpers  Helpers
}

// Entities is the entities document, grouped by platform domain.
type Entities struct {
	Light       []LightPlatform  `yaml:"light,omitempty"`
	Switch      []SwitchPlatform `yaml:"switch,omitempty"`
	Fan         []FanPlatform    `yaml:"fan,omitempty"`
	Cover       []CoverPlatform  `yaml:"cover,omitempty"`
	MediaPlayer []any            `yaml:"media_player,omitempty"`
	Climate     []SmartIREntity  `yaml:"climate,omitempty"`
}

// LightPlatform batches every template light.
type LightPlatform struct {
	Platform string                    `yaml:"platform"`
	Lights   map[string]TemplateToggle `yaml:"lights"`
}

// SwitchPlatform batches every template switch.
type SwitchPlatform struct {
	Platform string                    `yaml:"platform"`
	Switches map[string]TemplateToggle `yaml:"switches"`
}

// FanPlatform batches every template fan.
type FanPlatform struct {
	Platform string                 `yaml:"platform"`
	Fans     map[string]TemplateFan `yaml:"fans"`
}

// CoverPlatform batches every template cover.
type CoverPlatform struct {
	Platform string                   `yaml:"platform"`
	Covers   map[string]TemplateCover `yaml:"covers"`
}

// TemplateToggle is an on/off template entity (light or switch).
type TemplateToggle struct {
	FriendlyName  string   `yaml:"friendly_name"`
	UniqueID      string   `yaml:"unique_id"`
	IconTemplate  string   `yaml:"icon_template,omitempty"`
	ValueTemplate string   `yaml:"value_template"`
	TurnOn        []Action `yaml:"turn_on"`
	TurnOff       []Action `yaml:"turn_off"`
}

// TemplateFan is a template fan with optional speed and direction control.
type TemplateFan struct {
	FriendlyName       string   `yaml:"friendly_name"`
	UniqueID           string   `yaml:"unique_id"`
	IconTemplate       string   `yaml:"icon_template,omitempty"`
	ValueTemplate      string   `yaml:"value_template"`
	PercentageTemplate string   `yaml:"percentage_template,omitempty"`
	DirectionTemplate  string   `yaml:"direction_template,omitempty"`
	SpeedCount         int      `yaml:"speed_count,omitempty"`
	TurnOn             []Action `yaml:"turn_on"`
	TurnOff            []Action `yaml:"turn_off"`
	SetPercentage      []Action `yaml:"set_percentage,omitempty"`
	SetDirection       []Action `yaml:"set_direction,omitempty"`
}

// TemplateCover is a template cover driven by open/close commands.
type TemplateCover struct {
	FriendlyName  string   `yaml:"friendly_name"`
	UniqueID      string   `yaml:"unique_id"`
	IconTemplate  string   `yaml:"icon_template,omitempty"`
	ValueTemplate string   `yaml:"value_template"`
	OpenCover     []Action `yaml:"open_cover"`
	CloseCover    []Action `yaml:"close_cover"`
	StopCover     []Action `yaml:"stop_cover,omitempty"`
}

// UniversalMediaPlayer is one remote-controlled media player.
type UniversalMediaPlayer struct {
	Platform   string              `yaml:"platform"`
	Name       string              `yaml:"name"`
	UniqueID   string              `yaml:"unique_id"`
	Children   []string            `yaml:"children"`
	Attributes map[string]string   `yaml:"attributes"`
	Commands   map[string][]Action `yaml:"commands"`
}

// SmartIREntity is a media player or climate entity backed by a SmartIR
// device code.
type SmartIREntity struct {
	Platform       string `yaml:"platform"`
	Name           string `yaml:"name"`
	UniqueID       string `yaml:"unique_id"`
	DeviceCode     int    `yaml:"device_code"`
	ControllerData string `yaml:"controller_data"`
}

// Action is one step of a script sequence.
type Action struct {
	Service string         `yaml:"service,omitempty"`
	Target  *Target        `yaml:"target,omitempty"`
	Data    map[string]any `yaml:"data,omitempty"`
	Choose  []Choice       `yaml:"choose,omitempty"`
}

// Target selects the entity a service acts on.
type Target struct {
	EntityID string `yaml:"entity_id"`
}

// Choice is one branch of a choose action.
type Choice struct {
	Conditions string   `yaml:"conditions"`
	Sequence   []Action `yaml:"sequence"`
}

// Helpers is the helpers document.
type Helpers struct {
	InputBoolean map[string]InputBoolean `yaml:"input_boolean,omitempty"`
	InputSelect  map[string]InputSelect  `yaml:"input_select,omitempty"`
}

// InputBoolean tracks the on/off state of a device that cannot report it.
type InputBoolean struct {
	Name string `yaml:"name"`
	Icon string `yaml:"icon,omitempty"`
}

// InputSelect tracks a fan speed or direction.
type InputSelect struct {
	Name    string   `yaml:"name"`
	Options []string `yaml:"options"`
	Icon    string   `yaml:"icon,omitempty"`
}

// Count returns the number of helpers.
func (h Helpers) Count() int {
	return len(h.InputBoolean) + len(h.InputSelect)
}

// has reports whether the helper domain.key is defined.
func (h Helpers) has(domain, key string) bool {
	switch domain {
	case "input_boolean":
		_, ok := h.InputBoolean[key]
		return ok
	case "input_select":
		_, ok := h.InputSelect[key]
		return ok
	}
	return false
}

// EncodeEntities serializes the entities document with a generation header.
func (d *Documents) EncodeEntities(generatedAt time.Time) ([]byte, error) {
	return encode(&d.Entities, "entities", generatedAt)
}

// EncodeHelpers serializes the helpers document with a generation header.
func (d *Documents) EncodeHelpers(generatedAt time.Time) ([]byte, error) {
	return encode(&d.Helpers, "helpers", generatedAt)
}

func encode(v any, kind string, generatedAt time.Time) ([]byte, error) {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "# Generated by remotehub at %s\n", generatedAt.UTC().Format(time.RFC3339))
	fmt.Fprintf(&buf, "# Remote control %s. Manual edits will be overwritten.\n", kind)

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", kind, err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", kind, err)
	}
	return buf.Bytes(), nil
}
