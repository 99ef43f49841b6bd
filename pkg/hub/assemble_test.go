package hub

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/urmzd/remotehub/pkg/db"
	"github.com/urmzd/remotehub/pkg/device"
	"github.com/urmzd/remotehub/pkg/learn"
)

func openConfig(t *testing.T) (*db.DB, *db.Config) {
	t.Helper()
	ctx := context.Background()

	database, err := db.Open(filepath.Join(t.TempDir(), "remotehub.db"))
	if err != nil {
		t.Fatalf("db.Open: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	if err := database.Migrate(ctx); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	if err := database.Bootstrap(ctx); err != nil {
		t.Fatalf("Bootstrap: %v", err)
	}
	cfg, err := database.ActiveConfig(ctx)
	if err != nil {
		t.Fatalf("ActiveConfig: %v", err)
	}
	return database, cfg
}

func TestAssemble_Defaults(t *testing.T) {
	database, cfg := openConfig(t)

	h, err := Assemble(database, cfg, Overrides{})
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	defer h.Close()

	if !strings.HasPrefix(h.store.Path(), database.Dir()) {
		t.Errorf("store path = %q, want under %q", h.store.Path(), database.Dir())
	}

	health := h.Health(context.Background())
	if health.Healthy() {
		t.Errorf("health = %+v, want degraded without a transceiver", health)
	}
}

func TestAssemble_SerialPortOverride(t *testing.T) {
	database, cfg := openConfig(t)
	dataDir := filepath.Join(t.TempDir(), "devices")

	h, err := Assemble(database, cfg, Overrides{DataDir: dataDir, SerialPort: "/dev/ttyACM0"})
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	defer h.Close()

	if filepath.Dir(h.store.Path()) != dataDir {
		t.Errorf("store path = %q, want under %q", h.store.Path(), dataDir)
	}
	health := h.Health(context.Background())
	if !health.Healthy() || health.Transceiver != "/dev/ttyACM0" {
		t.Errorf("health = %+v", health)
	}
}

func TestAssemble_Simulate(t *testing.T) {
	database, cfg := openConfig(t)

	h, err := Assemble(database, cfg, Overrides{DataDir: t.TempDir(), SerialPort: "sim", Simulate: true})
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	defer h.Close()

	if _, err := h.CreateDevice(device.Device{Name: "Fan", EntityType: device.EntityTypeFan}); err != nil {
		t.Fatalf("CreateDevice: %v", err)
	}
	_, err = h.Learn(context.Background(), LearnRequest{DeviceID: "fan", Command: "power"})
	if !errors.Is(err, learn.ErrAuthenticationFailed) || !errors.Is(err, device.ErrNotConnected) {
		t.Errorf("err = %v, want authentication failure from the null transceiver", err)
	}
}

func TestOverridesFromEnv(t *testing.T) {
	t.Setenv("REMOTEHUB_SERIAL_PORT", "/dev/ttyUSB3")
	t.Setenv("REMOTEHUB_BAUD_RATE", "57600")
	t.Setenv("REMOTEHUB_SIMULATE", "true")
	t.Setenv("REMOTEHUB_MQTT_BROKER", "")

	o := OverridesFromEnv()
	if o.SerialPort != "/dev/ttyUSB3" || o.BaudRate != 57600 || !o.Simulate {
		t.Errorf("overrides = %+v", o)
	}
	if o.MQTTBroker != "" {
		t.Errorf("broker = %q, want empty", o.MQTTBroker)
	}
}
