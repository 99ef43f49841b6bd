package store

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/urmzd/remotehub/pkg/device"
)

func newTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), DefaultFileName), opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return s
}

func bedroomLight() device.Device {
	return device.Device{
		Name:            "Bedroom Light",
		EntityType:      device.EntityTypeLight,
		DeviceType:      device.DeviceTypeBroadlink,
		Area:            "bedroom",
		BroadlinkEntity: "remote.bedroom",
	}
}

func TestNew_EmptyWhenMissing(t *testing.T) {
	s := newTestStore(t)

	devices, err := s.GetAllDevices(false)
	if err != nil {
		t.Fatalf("GetAllDevices() error = %v", err)
	}
	if len(devices) != 0 {
		t.Errorf("expected empty store, got %d devices", len(devices))
	}
}

func TestNew_Directory(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if s.Path() != filepath.Join(dir, DefaultFileName) {
		t.Errorf("Path() = %q, want file inside directory", s.Path())
	}
}

func TestCreateDevice_SetsDefaults(t *testing.T) {
	s := newTestStore(t)

	if err := s.CreateDevice("bedroom_light", bedroomLight()); err != nil {
		t.Fatalf("CreateDevice() error = %v", err)
	}

	d, err := s.GetDevice("bedroom_light")
	if err != nil {
		t.Fatalf("GetDevice() error = %v", err)
	}
	if d.ID != "bedroom_light" {
		t.Errorf("ID = %q, want bedroom_light", d.ID)
	}
	if !d.Enabled {
		t.Error("new device should be enabled")
	}
	if d.CreatedAt.IsZero() {
		t.Error("CreatedAt not set")
	}
	if d.Commands == nil || len(d.Commands) != 0 {
		t.Errorf("Commands = %v, want empty map", d.Commands)
	}
}

func TestCreateDevice_Duplicate(t *testing.T) {
	s := newTestStore(t)

	if err := s.CreateDevice("bedroom_light", bedroomLight()); err != nil {
		t.Fatalf("CreateDevice() error = %v", err)
	}
	before, _ := s.GetDevice("bedroom_light")

	other := bedroomLight()
	other.Name = "Something Else"
	err := s.CreateDevice("bedroom_light", other)
	if !errors.Is(err, ErrDeviceExists) {
		t.Fatalf("expected ErrDeviceExists, got %v", err)
	}

	after, _ := s.GetDevice("bedroom_light")
	if after.Name != before.Name || !after.CreatedAt.Equal(before.CreatedAt) {
		t.Errorf("device changed after duplicate create: %+v", after)
	}
}

func TestCreateDevice_EmptyID(t *testing.T) {
	s := newTestStore(t)
	if err := s.CreateDevice(" ", bedroomLight()); !errors.Is(err, ErrInvalidID) {
		t.Errorf("expected ErrInvalidID, got %v", err)
	}
}

func TestDeleteDevice_Absent(t *testing.T) {
	s := newTestStore(t)
	if err := s.CreateDevice("bedroom_light", bedroomLight()); err != nil {
		t.Fatalf("CreateDevice() error = %v", err)
	}
	before, err := os.ReadFile(s.Path())
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}

	if err := s.DeleteDevice("missing"); !errors.Is(err, ErrDeviceNotFound) {
		t.Fatalf("expected ErrDeviceNotFound, got %v", err)
	}

	after, _ := os.ReadFile(s.Path())
	if !bytes.Equal(before, after) {
		t.Error("document changed after deleting an absent device")
	}
	if ids := s.IDs(); len(ids) != 1 {
		t.Errorf("IDs() = %v, want one device", ids)
	}
}

func TestDeleteDevice(t *testing.T) {
	s := newTestStore(t)
	if err := s.CreateDevice("bedroom_light", bedroomLight()); err != nil {
		t.Fatalf("CreateDevice() error = %v", err)
	}
	if err := s.DeleteDevice("bedroom_light"); err != nil {
		t.Fatalf("DeleteDevice() error = %v", err)
	}
	if _, err := s.GetDevice("bedroom_light"); !errors.Is(err, ErrDeviceNotFound) {
		t.Errorf("expected ErrDeviceNotFound, got %v", err)
	}
}

func TestUpdateDevice_PreservesCommands(t *testing.T) {
	s := newTestStore(t)
	if err := s.CreateDevice("bedroom_light", bedroomLight()); err != nil {
		t.Fatalf("CreateDevice() error = %v", err)
	}
	if err := s.AddCommand("bedroom_light", "turn_on", device.NewPayload("JgAA")); err != nil {
		t.Fatalf("AddCommand() error = %v", err)
	}

	name := "Main Bedroom Light"
	disabled := false
	if err := s.UpdateDevice("bedroom_light", DeviceUpdate{Name: &name, Enabled: &disabled}); err != nil {
		t.Fatalf("UpdateDevice() error = %v", err)
	}

	d, _ := s.GetDevice("bedroom_light")
	if d.Name != name {
		t.Errorf("Name = %q, want %q", d.Name, name)
	}
	if d.Enabled {
		t.Error("Enabled should be false")
	}
	if d.Area != "bedroom" {
		t.Errorf("Area = %q, want unchanged", d.Area)
	}
	if d.Commands["turn_on"].Payload() != "JgAA" {
		t.Error("commands were not preserved")
	}
	if d.UpdatedAt == nil {
		t.Error("UpdatedAt not set")
	}
}

func TestUpdateDevice_Absent(t *testing.T) {
	s := newTestStore(t)
	name := "x"
	if err := s.UpdateDevice("missing", DeviceUpdate{Name: &name}); !errors.Is(err, ErrDeviceNotFound) {
		t.Errorf("expected ErrDeviceNotFound, got %v", err)
	}
}

func TestAddDeleteCommand(t *testing.T) {
	s := newTestStore(t)
	if err := s.CreateDevice("bedroom_light", bedroomLight()); err != nil {
		t.Fatalf("CreateDevice() error = %v", err)
	}
	if err := s.AddCommand("bedroom_light", "turn_on", device.NewPayload("JgAA")); err != nil {
		t.Fatalf("AddCommand() error = %v", err)
	}
	if err := s.AddCommand("bedroom_light", "turn_off", device.NewRecord("JgAB", device.KindIR, time.Now())); err != nil {
		t.Fatalf("AddCommand() error = %v", err)
	}

	if err := s.DeleteCommand("bedroom_light", "turn_on"); err != nil {
		t.Fatalf("DeleteCommand() error = %v", err)
	}

	d, _ := s.GetDevice("bedroom_light")
	if _, ok := d.Commands["turn_on"]; ok {
		t.Error("turn_on still present after delete")
	}
	if d.Commands["turn_off"].Payload() != "JgAB" {
		t.Error("turn_off was modified")
	}
}

func TestAddCommand_Existing(t *testing.T) {
	s := newTestStore(t)
	if err := s.CreateDevice("bedroom_light", bedroomLight()); err != nil {
		t.Fatalf("CreateDevice() error = %v", err)
	}
	if err := s.AddCommand("bedroom_light", "turn_on", device.NewPayload("JgAA")); err != nil {
		t.Fatalf("AddCommand() error = %v", err)
	}
	if err := s.AddCommand("bedroom_light", "turn_on", device.NewPayload("JgAB")); !errors.Is(err, ErrCommandExists) {
		t.Fatalf("expected ErrCommandExists, got %v", err)
	}

	if err := s.SetCommand("bedroom_light", "turn_on", device.NewPayload("JgAB")); err != nil {
		t.Fatalf("SetCommand() error = %v", err)
	}
	d, _ := s.GetDevice("bedroom_light")
	if d.Commands["turn_on"].Payload() != "JgAB" {
		t.Errorf("Payload() = %q, want replaced payload", d.Commands["turn_on"].Payload())
	}
}

func TestAddCommand_MissingDevice(t *testing.T) {
	s := newTestStore(t)
	if err := s.AddCommand("missing", "turn_on", device.NewPayload("JgAA")); !errors.Is(err, ErrDeviceNotFound) {
		t.Errorf("expected ErrDeviceNotFound, got %v", err)
	}
}

func TestDeleteCommand_MissingIsNoop(t *testing.T) {
	s := newTestStore(t)
	if err := s.CreateDevice("bedroom_light", bedroomLight()); err != nil {
		t.Fatalf("CreateDevice() error = %v", err)
	}
	before, _ := os.ReadFile(s.Path())

	if err := s.DeleteCommand("bedroom_light", "never_learned"); err != nil {
		t.Fatalf("DeleteCommand() error = %v", err)
	}

	after, _ := os.ReadFile(s.Path())
	if !bytes.Equal(before, after) {
		t.Error("document rewritten for a missing command")
	}
}

func TestWrite_BackupHoldsPreviousGeneration(t *testing.T) {
	s := newTestStore(t)
	if err := s.CreateDevice("bedroom_light", bedroomLight()); err != nil {
		t.Fatalf("CreateDevice() error = %v", err)
	}
	first, _ := os.ReadFile(s.Path())

	if err := s.AddCommand("bedroom_light", "turn_on", device.NewPayload("JgAA")); err != nil {
		t.Fatalf("AddCommand() error = %v", err)
	}

	backup, err := os.ReadFile(s.BackupPath())
	if err != nil {
		t.Fatalf("ReadFile(backup) error = %v", err)
	}
	if !bytes.Equal(first, backup) {
		t.Error("backup does not match the previous document")
	}
	if _, err := os.Stat(s.tmpPath()); !errors.Is(err, os.ErrNotExist) {
		t.Error("temp document left behind")
	}
}

func TestWrite_RenameFailureKeepsPrevious(t *testing.T) {
	failing := false
	rename := func(oldpath, newpath string) error {
		if failing {
			return errors.New("simulated rename failure")
		}
		return os.Rename(oldpath, newpath)
	}
	s := newTestStore(t, WithRename(rename))

	if err := s.CreateDevice("bedroom_light", bedroomLight()); err != nil {
		t.Fatalf("CreateDevice() error = %v", err)
	}
	if err := s.AddCommand("bedroom_light", "turn_on", device.NewPayload("JgAA")); err != nil {
		t.Fatalf("AddCommand() error = %v", err)
	}
	primary, _ := os.ReadFile(s.Path())
	backup, _ := os.ReadFile(s.BackupPath())

	failing = true
	if err := s.AddCommand("bedroom_light", "turn_off", device.NewPayload("JgAB")); err == nil {
		t.Fatal("expected error from failed rename")
	}

	gotPrimary, _ := os.ReadFile(s.Path())
	gotBackup, _ := os.ReadFile(s.BackupPath())
	if !bytes.Equal(primary, gotPrimary) {
		t.Error("primary document changed after failed rename")
	}
	if !bytes.Equal(backup, gotBackup) {
		t.Error("backup document changed after failed rename")
	}

	d, _ := s.GetDevice("bedroom_light")
	if _, ok := d.Commands["turn_off"]; ok {
		t.Error("in-memory state advanced despite failed write")
	}

	failing = false
	fresh, err := New(s.Path())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	d, err = fresh.GetDevice("bedroom_light")
	if err != nil {
		t.Fatalf("GetDevice() error = %v", err)
	}
	if d.Commands["turn_on"].Payload() != "JgAA" {
		t.Error("previous document not readable after failed rename")
	}
}

func TestWrite_BackupRotationFailureFailsWrite(t *testing.T) {
	failBackup := false
	rename := func(oldpath, newpath string) error {
		if failBackup && filepath.Ext(newpath) == ".bak" {
			return errors.New("simulated backup rename failure")
		}
		return os.Rename(oldpath, newpath)
	}
	s := newTestStore(t, WithRename(rename))

	for _, id := range []string{"a", "b"} {
		if err := s.CreateDevice(id, bedroomLight()); err != nil {
			t.Fatalf("CreateDevice(%s) error = %v", id, err)
		}
	}
	primary, _ := os.ReadFile(s.Path())
	backup, _ := os.ReadFile(s.BackupPath())

	failBackup = true
	if err := s.CreateDevice("c", bedroomLight()); err == nil {
		t.Fatal("expected error when the backup cannot be rotated")
	}

	gotPrimary, _ := os.ReadFile(s.Path())
	gotBackup, _ := os.ReadFile(s.BackupPath())
	if !bytes.Equal(primary, gotPrimary) {
		t.Error("primary replaced although the backup was not rotated")
	}
	if !bytes.Equal(backup, gotBackup) {
		t.Error("backup changed after failed rotation")
	}
	if _, err := s.GetDevice("c"); !errors.Is(err, ErrDeviceNotFound) {
		t.Errorf("GetDevice(c) error = %v, want ErrDeviceNotFound", err)
	}

	failBackup = false
	if err := s.CreateDevice("c", bedroomLight()); err != nil {
		t.Fatalf("CreateDevice(c) retry error = %v", err)
	}
	prev, err := readDocument(s.BackupPath())
	if err != nil {
		t.Fatalf("readDocument(backup) error = %v", err)
	}
	if len(prev) != 2 {
		t.Errorf("backup holds %d devices, want a and b", len(prev))
	}
}

func TestWrite_PrimaryRenameFailureLeavesBackupEqualToPrimary(t *testing.T) {
	failPrimary := false
	rename := func(oldpath, newpath string) error {
		if failPrimary && filepath.Ext(newpath) != ".bak" {
			return errors.New("simulated primary rename failure")
		}
		return os.Rename(oldpath, newpath)
	}
	s := newTestStore(t, WithRename(rename))

	if err := s.CreateDevice("a", bedroomLight()); err != nil {
		t.Fatalf("CreateDevice(a) error = %v", err)
	}
	primary, _ := os.ReadFile(s.Path())

	failPrimary = true
	if err := s.CreateDevice("b", bedroomLight()); err == nil {
		t.Fatal("expected error from failed primary rename")
	}

	gotPrimary, _ := os.ReadFile(s.Path())
	gotBackup, _ := os.ReadFile(s.BackupPath())
	if !bytes.Equal(primary, gotPrimary) || !bytes.Equal(primary, gotBackup) {
		t.Error("primary and backup should both hold the last committed document")
	}
	if _, err := os.Stat(s.tmpPath()); !errors.Is(err, os.ErrNotExist) {
		t.Error("temp document left behind")
	}
}

func TestLoad_CorruptPrimaryPromotesBackup(t *testing.T) {
	s := newTestStore(t)
	if err := s.CreateDevice("bedroom_light", bedroomLight()); err != nil {
		t.Fatalf("CreateDevice() error = %v", err)
	}
	if err := s.CreateDevice("kitchen_light", bedroomLight()); err != nil {
		t.Fatalf("CreateDevice() error = %v", err)
	}
	backup, _ := os.ReadFile(s.BackupPath())

	if err := os.WriteFile(s.Path(), []byte("{not json"), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	fresh, err := New(s.Path())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	devices, _ := fresh.GetAllDevices(false)
	if len(devices) != 1 {
		t.Fatalf("expected backup content with 1 device, got %d", len(devices))
	}
	if _, ok := devices["bedroom_light"]; !ok {
		t.Error("bedroom_light missing after backup promotion")
	}

	promoted, _ := os.ReadFile(s.Path())
	if !bytes.Equal(promoted, backup) {
		t.Error("backup was not copied over the primary")
	}
}

func TestLoad_BothCorruptStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFileName)
	if err := os.WriteFile(path, []byte("garbage"), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	if err := os.WriteFile(path+".bak", []byte("[1,2"), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	s, err := New(path)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	devices, _ := s.GetAllDevices(false)
	if len(devices) != 0 {
		t.Errorf("expected empty store, got %d devices", len(devices))
	}
}

func TestLoad_LegacyDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFileName)
	doc := `{
  "living_room_tv": {
    "name": "Living Room TV",
    "entity_type": "media_player",
    "device_type": "broadlink",
    "area": "living_room",
    "broadlink_entity": "remote.living_room",
    "commands": {
      "power": "JgAA",
      "mute": {"data": "JgAB", "command_type": "ir", "learned_at": null}
    }
  }
}`
	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	s, err := New(path)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	d, err := s.GetDevice("living_room_tv")
	if err != nil {
		t.Fatalf("GetDevice() error = %v", err)
	}
	if d.ID != "living_room_tv" {
		t.Errorf("ID = %q, want key", d.ID)
	}
	if !d.Enabled {
		t.Error("missing enabled should load as enabled")
	}
	if d.Commands["mute"].Payload() != "JgAB" {
		t.Errorf("mute payload = %q, want JgAB", d.Commands["mute"].Payload())
	}
}

func TestGetAllDevices_ForceReload(t *testing.T) {
	s := newTestStore(t)
	if err := s.CreateDevice("bedroom_light", bedroomLight()); err != nil {
		t.Fatalf("CreateDevice() error = %v", err)
	}

	other, err := New(s.Path())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := other.CreateDevice("kitchen_light", bedroomLight()); err != nil {
		t.Fatalf("CreateDevice() error = %v", err)
	}

	cached, _ := s.GetAllDevices(false)
	if len(cached) != 1 {
		t.Errorf("cached view = %d devices, want 1", len(cached))
	}
	fresh, _ := s.GetAllDevices(true)
	if len(fresh) != 2 {
		t.Errorf("reloaded view = %d devices, want 2", len(fresh))
	}
}

func TestGetAllDevices_ReturnsCopies(t *testing.T) {
	s := newTestStore(t)
	if err := s.CreateDevice("bedroom_light", bedroomLight()); err != nil {
		t.Fatalf("CreateDevice() error = %v", err)
	}

	devices, _ := s.GetAllDevices(false)
	d := devices["bedroom_light"]
	d.Commands["injected"] = device.NewPayload("JgAA")

	got, _ := s.GetDevice("bedroom_light")
	if _, ok := got.Commands["injected"]; ok {
		t.Error("caller mutation leaked into the store")
	}
}

func TestFilters(t *testing.T) {
	s := newTestStore(t)

	tv := device.Device{
		Name:            "TV",
		EntityType:      device.EntityTypeMediaPlayer,
		DeviceType:      device.DeviceTypeSmartIR,
		BroadlinkEntity: "remote.living_room",
	}
	if err := s.CreateDevice("bedroom_light", bedroomLight()); err != nil {
		t.Fatalf("CreateDevice() error = %v", err)
	}
	if err := s.CreateDevice("tv", tv); err != nil {
		t.Fatalf("CreateDevice() error = %v", err)
	}

	byRemote, _ := s.DevicesByBroadlinkEntity("remote.living_room")
	if len(byRemote) != 1 || byRemote["tv"].Name != "TV" {
		t.Errorf("DevicesByBroadlinkEntity() = %v", byRemote)
	}

	byType, _ := s.DevicesByDeviceType(device.DeviceTypeBroadlink)
	if len(byType) != 1 {
		t.Errorf("DevicesByDeviceType() = %d devices, want 1", len(byType))
	}
	if _, ok := byType["bedroom_light"]; !ok {
		t.Error("bedroom_light missing from broadlink filter")
	}
}

func TestWithClock(t *testing.T) {
	fixed := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	s := newTestStore(t, WithClock(func() time.Time { return fixed }))

	if err := s.CreateDevice("bedroom_light", bedroomLight()); err != nil {
		t.Fatalf("CreateDevice() error = %v", err)
	}
	d, _ := s.GetDevice("bedroom_light")
	if !d.CreatedAt.Equal(fixed) {
		t.Errorf("CreatedAt = %v, want %v", d.CreatedAt, fixed)
	}
}
