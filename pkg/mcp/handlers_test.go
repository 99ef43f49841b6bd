package mcp

import (
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/urmzd/remotehub/pkg/device"
	"github.com/urmzd/remotehub/pkg/device/schema"
	"github.com/urmzd/remotehub/pkg/generate"
	"github.com/urmzd/remotehub/pkg/hub"
	"github.com/urmzd/remotehub/pkg/learn"
	"github.com/urmzd/remotehub/pkg/store"
)

type captureTransceiver struct {
	device.NullTransceiver
	sent [][]byte
}

func (t *captureTransceiver) Authenticate(context.Context) error  { return nil }
func (t *captureTransceiver) EnterLearning(context.Context) error { return nil }
func (t *captureTransceiver) CheckData(context.Context) ([]byte, error) {
	return []byte{0x26, 0x00, 0x01}, nil
}
func (t *captureTransceiver) SendData(_ context.Context, data []byte) error {
	t.sent = append(t.sent, data)
	return nil
}
func (t *captureTransceiver) Close() error { return nil }

func newTestServer(t *testing.T) (*Server, *captureTransceiver) {
	t.Helper()
	dir := t.TempDir()

	st, err := store.New(filepath.Join(dir, "data"))
	if err != nil {
		t.Fatalf("store.New: %v", err)
	}

	tx := &captureTransceiver{}
	engine := learn.NewEngine(device.OpenerFunc(func(context.Context, device.Endpoint) (device.Transceiver, error) {
		return tx, nil
	}))
	engine.PollInterval = 5 * time.Millisecond

	h := hub.New(hub.Options{
		Store:     st,
		Engine:    engine,
		Generator: generate.New(st, filepath.Join(dir, "generated")),
		Endpoint:  device.Endpoint{Host: "/dev/ttyUSB0"},
	})
	return NewServer(h, schema.NewValidator()), tx
}

func call(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if len(res.Content) == 0 {
		t.Fatal("empty tool result")
	}
	text, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content type = %T", res.Content[0])
	}
	return text.Text
}

func createTV(t *testing.T, s *Server) {
	t.Helper()
	res, err := s.handleCreateDevice(context.Background(), call(map[string]any{
		"name":             "Living Room TV",
		"area":             "Living Room",
		"entity_type":      "media_player",
		"broadlink_entity": "remote.living_room",
	}))
	if err != nil {
		t.Fatalf("handleCreateDevice: %v", err)
	}
	if res.IsError {
		t.Fatalf("create failed: %s", resultText(t, res))
	}
}

func TestHandleCreateDevice(t *testing.T) {
	s, _ := newTestServer(t)
	createTV(t, s)

	res, _ := s.handleGetDevice(context.Background(), call(map[string]any{"id": "living_room_tv"}))
	if res.IsError {
		t.Fatalf("get failed: %s", resultText(t, res))
	}
	var out GetDeviceOutput
	if err := json.Unmarshal([]byte(resultText(t, res)), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Device.DeviceType != device.DeviceTypeBroadlink || !out.Device.Enabled {
		t.Errorf("device = %+v", out.Device)
	}
}

func TestHandleCreateDevice_Invalid(t *testing.T) {
	s, _ := newTestServer(t)

	res, _ := s.handleCreateDevice(context.Background(), call(map[string]any{"name": "Robot", "entity_type": "vacuum"}))
	if !res.IsError {
		t.Error("expected validation error")
	}
}

func TestHandleGetDevice_MissingID(t *testing.T) {
	s, _ := newTestServer(t)

	res, _ := s.handleGetDevice(context.Background(), call(nil))
	if !res.IsError {
		t.Fatal("expected error")
	}
	if !strings.Contains(resultText(t, res), `"id"`) {
		t.Errorf("message = %q", resultText(t, res))
	}
}

func TestHandleLearnCommand(t *testing.T) {
	s, tx := newTestServer(t)
	createTV(t, s)

	res, _ := s.handleLearnCommand(context.Background(), call(map[string]any{
		"device_id":       "living_room_tv",
		"command":         "power",
		"timeout_seconds": float64(1),
	}))
	if res.IsError {
		t.Fatalf("learn failed: %s", resultText(t, res))
	}
	var out LearnCommandOutput
	if err := json.Unmarshal([]byte(resultText(t, res)), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Result.Payload != "JgAB" || out.Result.Kind != "ir" {
		t.Errorf("result = %+v", out.Result)
	}

	res, _ = s.handleTestCommand(context.Background(), call(map[string]any{"device_id": "living_room_tv", "command": "power"}))
	if res.IsError {
		t.Fatalf("test failed: %s", resultText(t, res))
	}
	if len(tx.sent) != 1 {
		t.Errorf("sent = %d, want 1", len(tx.sent))
	}
}

func TestHandleLearnCommand_RejectsDottedName(t *testing.T) {
	s, _ := newTestServer(t)
	createTV(t, s)

	res, _ := s.handleLearnCommand(context.Background(), call(map[string]any{
		"device_id": "living_room_tv",
		"command":   "vol.up",
	}))
	if !res.IsError {
		t.Error("expected validation error")
	}
}

func TestHandleListDevices_CommandNames(t *testing.T) {
	s, _ := newTestServer(t)
	createTV(t, s)
	for _, name := range []string{"volume_up", "power"} {
		res, _ := s.handleAddCommand(context.Background(), call(map[string]any{
			"device_id": "living_room_tv",
			"name":      name,
			"payload":   "JgAB",
		}))
		if res.IsError {
			t.Fatalf("add %s: %s", name, resultText(t, res))
		}
	}

	res, _ := s.handleListDevices(context.Background(), call(nil))
	var out ListDevicesOutput
	if err := json.Unmarshal([]byte(resultText(t, res)), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Count != 1 {
		t.Fatalf("count = %d", out.Count)
	}
	got := strings.Join(out.Devices[0].Commands, ",")
	if got != "power,volume_up" {
		t.Errorf("commands = %s", got)
	}
}

func TestHandleGenerateConfig(t *testing.T) {
	s, _ := newTestServer(t)
	createTV(t, s)
	for _, name := range []string{"power", "volume_up"} {
		s.handleAddCommand(context.Background(), call(map[string]any{
			"device_id": "living_room_tv",
			"name":      name,
			"payload":   "JgAB",
		}))
	}

	res, _ := s.handleGenerateConfig(context.Background(), call(nil))
	if res.IsError {
		t.Fatalf("generate failed: %s", resultText(t, res))
	}
	var out GenerateOutput
	if err := json.Unmarshal([]byte(resultText(t, res)), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !out.Result.Success || out.Result.EntitiesCount != 1 {
		t.Errorf("result = %+v", out.Result)
	}
}

func TestHandleDeleteDevice(t *testing.T) {
	s, _ := newTestServer(t)
	createTV(t, s)

	res, _ := s.handleDeleteDevice(context.Background(), call(map[string]any{"id": "living_room_tv"}))
	if res.IsError {
		t.Fatalf("delete failed: %s", resultText(t, res))
	}
	res, _ = s.handleDeleteDevice(context.Background(), call(map[string]any{"id": "living_room_tv"}))
	if !res.IsError {
		t.Error("second delete should fail")
	}
}

func TestHandleGetHealth(t *testing.T) {
	s, _ := newTestServer(t)

	res, _ := s.handleGetHealth(context.Background(), call(nil))
	var out GetHealthOutput
	if err := json.Unmarshal([]byte(resultText(t, res)), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Status != "healthy" || out.Transceiver != "/dev/ttyUSB0" {
		t.Errorf("health = %+v", out)
	}
}
