package device

import (
	"encoding/json"
	"sort"
	"testing"
)

func TestDevice_EnabledDefaultsTrue(t *testing.T) {
	var d Device
	if err := json.Unmarshal([]byte(`{"device_id":"tv","name":"TV","commands":{}}`), &d); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if !d.Enabled {
		t.Error("missing enabled field should default to true")
	}
	if d.ID != "tv" {
		t.Errorf("ID = %q, want %q", d.ID, "tv")
	}
}

func TestDevice_EnabledFalseKept(t *testing.T) {
	var d Device
	if err := json.Unmarshal([]byte(`{"device_id":"tv","enabled":false}`), &d); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if d.Enabled {
		t.Error("explicit enabled=false was overridden")
	}
}

func TestDevice_MixedCommandShapes(t *testing.T) {
	doc := `{
		"device_id": "fan",
		"commands": {
			"power": "JgAA",
			"speed_1": {"code": "JgAB", "command_type": "ir", "learned_at": null},
			"broken": {"command_type": "ir", "learned_at": null}
		}
	}`

	var d Device
	if err := json.Unmarshal([]byte(doc), &d); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	names := d.CommandNames()
	sort.Strings(names)
	if len(names) != 2 || names[0] != "power" || names[1] != "speed_1" {
		t.Errorf("CommandNames() = %v, want [power speed_1]", names)
	}
}

func TestDevice_CloneCopiesCommands(t *testing.T) {
	d := Device{ID: "tv", Commands: map[string]Command{"power": NewPayload("JgAA")}}
	cp := d.Clone()
	cp.Commands["mute"] = NewPayload("JgAB")

	if _, ok := d.Commands["mute"]; ok {
		t.Error("clone shares the commands map with the original")
	}
}

func TestIsValidEntityType(t *testing.T) {
	for _, et := range EntityTypes {
		if !IsValidEntityType(et) {
			t.Errorf("IsValidEntityType(%q) = false", et)
		}
	}
	if IsValidEntityType("vacuum") {
		t.Error("IsValidEntityType(vacuum) = true")
	}
}
