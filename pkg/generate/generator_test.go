package generate

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/urmzd/remotehub/pkg/device"
	"gopkg.in/yaml.v3"
)

type mapSource map[string]device.Device

func (m mapSource) GetAllDevices(forceReload bool) (map[string]device.Device, error) {
	return m, nil
}

type failingSource struct{}

func (failingSource) GetAllDevices(forceReload bool) (map[string]device.Device, error) {
	return nil, errors.New("disk on fire")
}

func testDevice(id, entityType string, commands ...string) device.Device {
	d := device.Device{
		ID:              id,
		Name:            strings.ReplaceAll(id, "_", " "),
		EntityType:      entityType,
		DeviceType:      device.DeviceTypeBroadlink,
		Area:            "test",
		BroadlinkEntity: "remote.test",
		Commands:        map[string]device.Command{},
		Enabled:         true,
	}
	for _, c := range commands {
		d.Commands[c] = device.NewPayload("JgA" + c)
	}
	return d
}

func devices(ds ...device.Device) map[string]device.Device {
	out := make(map[string]device.Device, len(ds))
	for _, d := range ds {
		out[d.ID] = d
	}
	return out
}

func build(t *testing.T, ds map[string]device.Device, table CommandTable) (*Documents, *Result) {
	t.Helper()
	g := New(mapSource(ds), t.TempDir())
	docs, result := g.Build(ds, table)
	if !result.Success {
		t.Fatalf("Build() failed: %v", result.Errors)
	}
	return docs, result
}

func TestBuild_LightsAreBatched(t *testing.T) {
	docs, result := build(t, devices(
		testDevice("bedroom_light", device.EntityTypeLight, "turn_on", "turn_off"),
		testDevice("kitchen_light", device.EntityTypeLight, "power"),
	), nil)

	if len(docs.Entities.Light) != 1 {
		t.Fatalf("light entries = %d, want 1", len(docs.Entities.Light))
	}
	lights := docs.Entities.Light[0].Lights
	if len(lights) != 2 {
		t.Fatalf("batched lights = %d, want 2", len(lights))
	}
	for _, id := range []string{"bedroom_light", "kitchen_light"} {
		l, ok := lights[id]
		if !ok {
			t.Errorf("%s missing from batched entry", id)
			continue
		}
		if l.UniqueID != id {
			t.Errorf("UniqueID = %q, want %q", l.UniqueID, id)
		}
	}
	if result.EntitiesCount != 2 {
		t.Errorf("EntitiesCount = %d, want 2", result.EntitiesCount)
	}

	out, err := docs.EncodeEntities(time.Now())
	if err != nil {
		t.Fatalf("EncodeEntities() error = %v", err)
	}
	assertNoDottedIdentifiers(t, out)
}

func TestBuild_MediaPlayersStayIndividual(t *testing.T) {
	docs, _ := build(t, devices(
		testDevice("living_room_tv", device.EntityTypeMediaPlayer, "power", "volume_up", "mute"),
		testDevice("bedroom_tv", device.EntityTypeMediaPlayer, "power"),
	), nil)

	if len(docs.Entities.MediaPlayer) != 2 {
		t.Fatalf("media_player entries = %d, want 2", len(docs.Entities.MediaPlayer))
	}
	for _, e := range docs.Entities.MediaPlayer {
		mp, ok := e.(UniversalMediaPlayer)
		if !ok {
			t.Fatalf("entry type = %T, want UniversalMediaPlayer", e)
		}
		if mp.Platform != PlatformUniversal {
			t.Errorf("Platform = %q, want universal", mp.Platform)
		}
		if strings.Contains(mp.UniqueID, ".") {
			t.Errorf("UniqueID %q contains a dot", mp.UniqueID)
		}
	}

	tv := docs.Entities.MediaPlayer[1].(UniversalMediaPlayer)
	if tv.UniqueID != "living_room_tv" {
		t.Fatalf("second entry = %q, want living_room_tv", tv.UniqueID)
	}
	if _, ok := tv.Commands["volume_mute"]; !ok {
		t.Error("mute command not mapped to volume_mute")
	}
	if tv.Attributes["state"] != "input_boolean.living_room_tv_state" {
		t.Errorf("state attribute = %q", tv.Attributes["state"])
	}
}

func TestBuild_SmartIR(t *testing.T) {
	tv := testDevice("den_tv", device.EntityTypeMediaPlayer)
	tv.DeviceType = device.DeviceTypeSmartIR
	tv.DeviceCode = "1060"
	ac := testDevice("bedroom_ac", device.EntityTypeClimate)
	ac.DeviceType = device.DeviceTypeSmartIR
	ac.DeviceCode = "1180"

	docs, result := build(t, devices(tv, ac), nil)

	if len(docs.Entities.MediaPlayer) != 1 {
		t.Fatalf("media_player entries = %d, want 1", len(docs.Entities.MediaPlayer))
	}
	mp := docs.Entities.MediaPlayer[0].(SmartIREntity)
	if mp.DeviceCode != 1060 || mp.ControllerData != "remote.test" {
		t.Errorf("smartir media player = %+v", mp)
	}
	if len(docs.Entities.Climate) != 1 || docs.Entities.Climate[0].DeviceCode != 1180 {
		t.Errorf("climate entries = %+v", docs.Entities.Climate)
	}
	if result.HelpersCount != 0 {
		t.Errorf("HelpersCount = %d, want 0", result.HelpersCount)
	}
}

func TestBuild_SkipsMissingCapabilities(t *testing.T) {
	ac := testDevice("bedroom_ac", device.EntityTypeClimate)
	ac.DeviceType = device.DeviceTypeSmartIR

	docs, result := build(t, devices(
		testDevice("hall_light", device.EntityTypeLight, "turn_on"),
		testDevice("blinds", device.EntityTypeCover, "open"),
		testDevice("vacuum", "vacuum", "power"),
		testDevice("porch_light", device.EntityTypeLight, "turn_on", "turn_off"),
		ac,
	), nil)

	if len(result.Skipped) != 4 {
		t.Fatalf("Skipped = %v, want 4 entries", result.Skipped)
	}
	if result.EntitiesCount != 1 {
		t.Errorf("EntitiesCount = %d, want 1", result.EntitiesCount)
	}
	if _, ok := docs.Entities.Light[0].Lights["porch_light"]; !ok {
		t.Error("porch_light should still be generated")
	}
	if _, ok := docs.Helpers.InputBoolean["hall_light_state"]; ok {
		t.Error("skipped device left a helper behind")
	}
}

func TestBuild_SkipsDisabled(t *testing.T) {
	off := testDevice("garage_light", device.EntityTypeLight, "power")
	off.Enabled = false

	docs, result := build(t, devices(off), nil)

	if len(docs.Entities.Light) != 0 {
		t.Error("disabled device was generated")
	}
	if len(result.Skipped) != 0 {
		t.Errorf("disabled devices are not skips, got %v", result.Skipped)
	}
}

func TestBuild_FanSpeedCount(t *testing.T) {
	cases := []struct {
		name     string
		commands []string
		want     int
	}{
		{"ordinals", []string{"speed_1", "speed_2", "speed_3"}, 3},
		{"low and high", []string{"speed_low", "speed_high"}, 3},
		{"low only", []string{"speed_low"}, 1},
		{"medium only", []string{"fan_speed_medium"}, 2},
		{"prefixed ordinals", []string{"fan_speed_1", "fan_speed_4"}, 4},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cmds := append([]string{"power"}, tc.commands...)
			docs, _ := build(t, devices(testDevice("ceiling_fan", device.EntityTypeFan, cmds...)), nil)

			fan := docs.Entities.Fan[0].Fans["ceiling_fan"]
			if fan.SpeedCount != tc.want {
				t.Errorf("SpeedCount = %d, want %d", fan.SpeedCount, tc.want)
			}
			if _, ok := docs.Helpers.InputSelect["ceiling_fan_speed"]; !ok {
				t.Error("speed helper missing")
			}
		})
	}
}

func TestBuild_FanWithoutSpeeds(t *testing.T) {
	docs, _ := build(t, devices(testDevice("desk_fan", device.EntityTypeFan, "power")), nil)

	fan := docs.Entities.Fan[0].Fans["desk_fan"]
	if fan.SpeedCount != 0 || fan.SetPercentage != nil {
		t.Errorf("fan without speed commands has speed control: %+v", fan)
	}
	if _, ok := docs.Helpers.InputSelect["desk_fan_speed"]; ok {
		t.Error("speed helper emitted without speed commands")
	}
}

func TestBuild_FanDirectionHelper(t *testing.T) {
	docs, _ := build(t, devices(
		testDevice("plain_fan", device.EntityTypeFan, "power", "speed_1"),
		testDevice("ceiling_fan", device.EntityTypeFan, "power", "speed_1", "reverse"),
	), nil)

	fans := docs.Entities.Fan[0].Fans
	if _, ok := docs.Helpers.InputSelect["plain_fan_direction"]; ok {
		t.Error("direction helper emitted for a fan without a direction command")
	}
	if fans["plain_fan"].DirectionTemplate != "" || fans["plain_fan"].SetDirection != nil {
		t.Error("plain_fan has direction logic")
	}

	if _, ok := docs.Helpers.InputSelect["ceiling_fan_direction"]; !ok {
		t.Fatal("direction helper missing for ceiling_fan")
	}
	fan := fans["ceiling_fan"]
	if !strings.Contains(fan.DirectionTemplate, "input_select.ceiling_fan_direction") {
		t.Errorf("DirectionTemplate = %q, want reference to ceiling_fan_direction", fan.DirectionTemplate)
	}
	if len(fan.SetDirection) == 0 || fan.SetDirection[0].Target.EntityID != "input_select.ceiling_fan_direction" {
		t.Errorf("SetDirection = %+v, want select on ceiling_fan_direction", fan.SetDirection)
	}
}

func TestBuild_FanDirectionPair(t *testing.T) {
	docs, _ := build(t, devices(
		testDevice("ceiling_fan", device.EntityTypeFan, "power", "direction_forward", "direction_reverse"),
	), nil)

	fan := docs.Entities.Fan[0].Fans["ceiling_fan"]
	if len(fan.SetDirection) != 2 || len(fan.SetDirection[1].Choose) != 2 {
		t.Errorf("SetDirection = %+v, want select plus forward/reverse choice", fan.SetDirection)
	}
}

func TestBuild_HelpersResolve(t *testing.T) {
	docs, result := build(t, devices(
		testDevice("bedroom_light", device.EntityTypeLight, "power"),
		testDevice("office_switch", device.EntityTypeSwitch, "on", "off"),
		testDevice("ceiling_fan", device.EntityTypeFan, "power", "speed_low", "reverse"),
		testDevice("blinds", device.EntityTypeCover, "open", "close", "stop"),
		testDevice("tv", device.EntityTypeMediaPlayer, "power"),
	), nil)

	entities, err := docs.EncodeEntities(time.Now())
	if err != nil {
		t.Fatalf("EncodeEntities() error = %v", err)
	}
	for _, ref := range []string{
		"input_boolean.bedroom_light_state",
		"input_boolean.office_switch_state",
		"input_boolean.ceiling_fan_state",
		"input_select.ceiling_fan_speed",
		"input_select.ceiling_fan_direction",
		"input_boolean.blinds_state",
		"input_boolean.tv_state",
	} {
		if !bytes.Contains(entities, []byte(ref)) {
			t.Errorf("entities do not reference %s", ref)
		}
		domain, key, _ := strings.Cut(ref, ".")
		if !docs.Helpers.has(domain, key) {
			t.Errorf("helper %s not defined", ref)
		}
	}
	if result.HelpersCount != 7 {
		t.Errorf("HelpersCount = %d, want 7", result.HelpersCount)
	}

	helpers, err := docs.EncodeHelpers(time.Now())
	if err != nil {
		t.Fatalf("EncodeHelpers() error = %v", err)
	}
	assertNoDottedIdentifiers(t, helpers)
	assertNoDottedIdentifiers(t, entities)
}

func TestBuild_DanglingHelperFails(t *testing.T) {
	b := newBuilder(nil)
	b.ref("input_select", "ghost_speed", "ghost")

	_, result := b.finish()
	if result.Success {
		t.Fatal("expected failure for undefined helper")
	}
	if len(result.Errors) != 1 || !strings.Contains(result.Errors[0], "ghost_speed") {
		t.Errorf("Errors = %v", result.Errors)
	}
}

func TestBuild_UsesCommandTable(t *testing.T) {
	table, err := ParseCommandTable([]byte(`{
		"version": 1,
		"key": "broadlink_remote_codes",
		"data": {
			"garden light": {"turn_on": "JgAA", "turn_off": "JgAB"},
			"ceiling_fan": {"speed": {"speed_1": "JgAC", "speed_2": "JgAD"}, "power": "JgAE"}
		}
	}`))
	if err != nil {
		t.Fatalf("ParseCommandTable() error = %v", err)
	}

	light := testDevice("garden_light", device.EntityTypeLight)
	light.Name = "garden light"

	docs, result := build(t, devices(light, testDevice("ceiling_fan", device.EntityTypeFan)), table)
	if len(result.Skipped) != 0 {
		t.Fatalf("Skipped = %v, want none", result.Skipped)
	}

	on := docs.Entities.Light[0].Lights["garden_light"].TurnOn[0]
	if on.Data["device"] != "garden light" || on.Data["command"] != "turn_on" {
		t.Errorf("turn_on data = %v, want table reference", on.Data)
	}
	if docs.Entities.Fan[0].Fans["ceiling_fan"].SpeedCount != 2 {
		t.Error("group sub-commands not counted as speeds")
	}
}

func TestBuild_StoredPayloadSentInline(t *testing.T) {
	docs, _ := build(t, devices(testDevice("lamp", device.EntityTypeLight, "power")), nil)

	on := docs.Entities.Light[0].Lights["lamp"].TurnOn[0]
	if on.Data["command"] != "b64:JgApower" {
		t.Errorf("command = %v, want inline payload", on.Data["command"])
	}
	if on.Target.EntityID != "remote.test" {
		t.Errorf("target = %q, want remote.test", on.Target.EntityID)
	}
}

func TestGenerateAll_WritesBothDocuments(t *testing.T) {
	src := mapSource(devices(
		testDevice("bedroom_light", device.EntityTypeLight, "power"),
		testDevice("ceiling_fan", device.EntityTypeFan, "power", "speed_1"),
	))
	g := New(src, filepath.Join(t.TempDir(), "out"))

	result, err := g.GenerateAll(nil)
	if err != nil {
		t.Fatalf("GenerateAll() error = %v", err)
	}
	if !result.Success {
		t.Fatalf("Success = false, errors = %v", result.Errors)
	}
	if result.EntitiesPath != g.EntitiesPath() || result.HelpersPath != g.HelpersPath() {
		t.Errorf("paths = %q, %q", result.EntitiesPath, result.HelpersPath)
	}

	for _, path := range []string{g.EntitiesPath(), g.HelpersPath()} {
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("ReadFile(%s) error = %v", path, err)
		}
		var doc map[string]any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			t.Errorf("%s is not valid YAML: %v", path, err)
		}
	}
}

func TestGenerateAll_Idempotent(t *testing.T) {
	src := mapSource(devices(
		testDevice("bedroom_light", device.EntityTypeLight, "power"),
		testDevice("kitchen_light", device.EntityTypeLight, "turn_on", "turn_off"),
		testDevice("ceiling_fan", device.EntityTypeFan, "power", "speed_1", "speed_3", "reverse"),
		testDevice("tv", device.EntityTypeMediaPlayer, "power", "volume_up", "volume_down"),
	))
	g := New(src, t.TempDir())

	tick := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	g.now = func() time.Time {
		tick = tick.Add(time.Hour)
		return tick
	}

	read := func() ([]byte, []byte) {
		if _, err := g.GenerateAll(nil); err != nil {
			t.Fatalf("GenerateAll() error = %v", err)
		}
		e, _ := os.ReadFile(g.EntitiesPath())
		h, _ := os.ReadFile(g.HelpersPath())
		return e, h
	}

	e1, h1 := read()
	e2, h2 := read()

	if bytes.Equal(e1, e2) {
		t.Error("expected header timestamps to differ between runs")
	}
	if !bytes.Equal(stripComments(e1), stripComments(e2)) {
		t.Error("entities differ between runs on the same input")
	}
	if !bytes.Equal(stripComments(h1), stripComments(h2)) {
		t.Error("helpers differ between runs on the same input")
	}
}

func TestGenerateAll_SourceError(t *testing.T) {
	dir := t.TempDir()
	g := New(failingSource{}, dir)

	result, err := g.GenerateAll(nil)
	if err == nil {
		t.Fatal("expected error")
	}
	if result.Success {
		t.Error("Success should be false")
	}
	if _, err := os.Stat(g.EntitiesPath()); !errors.Is(err, os.ErrNotExist) {
		t.Error("entities written despite failure")
	}
}

func TestGenerateAll_HelpersWriteFailureLeavesBothDocuments(t *testing.T) {
	src := mapSource(devices(testDevice("bedroom_light", device.EntityTypeLight, "power")))
	g := New(src, t.TempDir())

	if _, err := g.GenerateAll(nil); err != nil {
		t.Fatalf("GenerateAll() error = %v", err)
	}
	entities, _ := os.ReadFile(g.EntitiesPath())
	helpers, _ := os.ReadFile(g.HelpersPath())

	if err := os.Mkdir(g.HelpersPath()+".tmp", 0755); err != nil {
		t.Fatalf("Mkdir() error = %v", err)
	}
	src["ceiling_fan"] = testDevice("ceiling_fan", device.EntityTypeFan, "power", "speed_1")

	result, err := g.GenerateAll(nil)
	if err == nil {
		t.Fatal("expected error")
	}
	if result.Success {
		t.Error("Success should be false")
	}
	if got, _ := os.ReadFile(g.EntitiesPath()); !bytes.Equal(got, entities) {
		t.Error("entities replaced although helpers could not be written")
	}
	if got, _ := os.ReadFile(g.HelpersPath()); !bytes.Equal(got, helpers) {
		t.Error("helpers changed")
	}
	if _, err := os.Stat(g.EntitiesPath() + ".tmp"); !errors.Is(err, os.ErrNotExist) {
		t.Error("entities temp file left behind")
	}
}

func TestGenerateAll_HelpersRenameFailureRestoresEntities(t *testing.T) {
	src := mapSource(devices(testDevice("bedroom_light", device.EntityTypeLight, "power")))
	g := New(src, t.TempDir())

	if _, err := g.GenerateAll(nil); err != nil {
		t.Fatalf("GenerateAll() error = %v", err)
	}
	entities, _ := os.ReadFile(g.EntitiesPath())

	// A non-empty directory at the helpers path makes the final rename fail.
	if err := os.Remove(g.HelpersPath()); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if err := os.MkdirAll(filepath.Join(g.HelpersPath(), "keep"), 0755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	src["ceiling_fan"] = testDevice("ceiling_fan", device.EntityTypeFan, "power", "speed_1")

	if _, err := g.GenerateAll(nil); err == nil {
		t.Fatal("expected error")
	}
	if got, _ := os.ReadFile(g.EntitiesPath()); !bytes.Equal(got, entities) {
		t.Error("entities not restored after helpers rename failed")
	}
	for _, path := range []string{g.EntitiesPath() + ".tmp", g.HelpersPath() + ".tmp"} {
		if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
			t.Errorf("%s left behind", path)
		}
	}
}

func stripComments(data []byte) []byte {
	var out [][]byte
	for _, line := range bytes.Split(data, []byte("\n")) {
		if bytes.HasPrefix(line, []byte("#")) {
			continue
		}
		out = append(out, line)
	}
	return bytes.Join(out, []byte("\n"))
}

// assertNoDottedIdentifiers fails if any mapping key or unique_id in the
// YAML document contains a dot.
func assertNoDottedIdentifiers(t *testing.T, data []byte) {
	t.Helper()

	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		t.Fatalf("invalid YAML: %v", err)
	}

	var walk func(n *yaml.Node)
	walk = func(n *yaml.Node) {
		if n.Kind == yaml.MappingNode {
			for i := 0; i+1 < len(n.Content); i += 2 {
				k, v := n.Content[i], n.Content[i+1]
				if strings.Contains(k.Value, ".") {
					t.Errorf("key %q contains a dot", k.Value)
				}
				if k.Value == "unique_id" && strings.Contains(v.Value, ".") {
					t.Errorf("unique_id %q contains a dot", v.Value)
				}
			}
		}
		for _, c := range n.Content {
			walk(c)
		}
	}
	walk(&root)
}
