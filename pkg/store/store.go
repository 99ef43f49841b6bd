package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/urmzd/remotehub/pkg/device"
)

// DefaultFileName is the document name used when New is given a directory.
const DefaultFileName = "devices.json"

// Store persists devices and their commands as one JSON document with a
// single rolling backup of the previous generation.
//
// Mutations are serialized by the store. Separate processes sharing the
// same file are last-write-wins.
type Store struct {
	path string

	mu      sync.Mutex
	devices map[string]device.Device
	loaded  bool

	rename func(oldpath, newpath string) error
	now    func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithRename replaces os.Rename for the commit steps of a write.
func WithRename(fn func(oldpath, newpath string) error) Option {
	return func(s *Store) { s.rename = fn }
}

// WithClock replaces time.Now for created/updated timestamps.
func WithClock(fn func() time.Time) Option {
	return func(s *Store) { s.now = fn }
}

// DeviceUpdate lists the fields UpdateDevice may change. Nil fields are kept.
type DeviceUpdate struct {
	Name            *string `json:"name,omitempty"`
	EntityType      *string `json:"entity_type,omitempty"`
	DeviceType      *string `json:"device_type,omitempty"`
	Area            *string `json:"area,omitempty"`
	BroadlinkEntity *string `json:"broadlink_entity,omitempty"`
	DeviceCode      *string `json:"device_code,omitempty"`
	Icon            *string `json:"icon,omitempty"`
	Enabled         *bool   `json:"enabled,omitempty"`
}

// New opens the store at path. If path is an existing directory the document
// is DefaultFileName inside it. A missing or unreadable document never fails
// construction; see load for the recovery rules.
func New(path string, opts ...Option) (*Store, error) {
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		path = filepath.Join(path, DefaultFileName)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	s := &Store{
		path:   path,
		rename: os.Rename,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.mu.Lock()
	s.load()
	s.mu.Unlock()

	return s, nil
}

// Path returns the primary document path.
func (s *Store) Path() string {
	return s.path
}

// BackupPath returns the backup document path.
func (s *Store) BackupPath() string {
	return s.path + ".bak"
}

func (s *Store) tmpPath() string {
	return s.path + ".tmp"
}

func (s *Store) backupTmpPath() string {
	return s.BackupPath() + ".tmp"
}

// CreateDevice inserts a new device under id. Commands start empty and the
// device starts enabled.
func (s *Store) CreateDevice(id string, d device.Device) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: device id is empty", ErrInvalidID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoaded()

	if _, ok := s.devices[id]; ok {
		return fmt.Errorf("%w: %s", ErrDeviceExists, id)
	}

	now := s.now().UTC()
	d.ID = id
	d.Commands = map[string]device.Command{}
	d.Enabled = true
	d.CreatedAt = now
	d.UpdatedAt = &now

	return s.commit(func(next map[string]device.Device) error {
		next[id] = d
		return nil
	})
}

// GetDevice returns a copy of the device stored under id.
func (s *Store) GetDevice(id string) (*device.Device, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoaded()

	d, ok := s.devices[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrDeviceNotFound, id)
	}
	cp := d.Clone()
	return &cp, nil
}

// GetAllDevices returns a copy of every stored device. With forceReload the
// document is re-read from disk first, picking up external edits.
func (s *Store) GetAllDevices(forceReload bool) (map[string]device.Device, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if forceReload {
		s.load()
	} else {
		s.ensureLoaded()
	}
	return cloneAll(s.devices), nil
}

// UpdateDevice merges the non-nil fields of u into the device. Commands and
// creation time are preserved.
func (s *Store) UpdateDevice(id string, u DeviceUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoaded()

	if _, ok := s.devices[id]; !ok {
		return fmt.Errorf("%w: %s", ErrDeviceNotFound, id)
	}

	return s.commit(func(next map[string]device.Device) error {
		d := next[id]
		setString(&d.Name, u.Name)
		setString(&d.EntityType, u.EntityType)
		setString(&d.DeviceType, u.DeviceType)
		setString(&d.Area, u.Area)
		setString(&d.BroadlinkEntity, u.BroadlinkEntity)
		setString(&d.DeviceCode, u.DeviceCode)
		setString(&d.Icon, u.Icon)
		if u.Enabled != nil {
			d.Enabled = *u.Enabled
		}
		s.touch(&d)
		next[id] = d
		return nil
	})
}

// AddCommand stores a new command on the device.
func (s *Store) AddCommand(deviceID, name string, cmd device.Command) error {
	return s.putCommand(deviceID, name, cmd, false)
}

// SetCommand stores a command on the device, replacing any existing one
// with the same name.
func (s *Store) SetCommand(deviceID, name string, cmd device.Command) error {
	return s.putCommand(deviceID, name, cmd, true)
}

func (s *Store) putCommand(deviceID, name string, cmd device.Command, replace bool) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: command name is empty", ErrInvalidID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoaded()

	d, ok := s.devices[deviceID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrDeviceNotFound, deviceID)
	}
	if _, exists := d.Commands[name]; exists && !replace {
		return fmt.Errorf("%w: %s/%s", ErrCommandExists, deviceID, name)
	}

	return s.commit(func(next map[string]device.Device) error {
		d := next[deviceID]
		if d.Commands == nil {
			d.Commands = map[string]device.Command{}
		}
		d.Commands[name] = cmd.Clone()
		s.touch(&d)
		next[deviceID] = d
		return nil
	})
}

// DeleteCommand removes a command from the device. Removing a command the
// device does not have succeeds without writing.
func (s *Store) DeleteCommand(deviceID, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoaded()

	d, ok := s.devices[deviceID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrDeviceNotFound, deviceID)
	}
	if _, exists := d.Commands[name]; !exists {
		return nil
	}

	return s.commit(func(next map[string]device.Device) error {
		d := next[deviceID]
		delete(d.Commands, name)
		s.touch(&d)
		next[deviceID] = d
		return nil
	})
}

// DeleteDevice removes the device and all of its commands.
func (s *Store) DeleteDevice(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoaded()

	if _, ok := s.devices[id]; !ok {
		return fmt.Errorf("%w: %s", ErrDeviceNotFound, id)
	}

	return s.commit(func(next map[string]device.Device) error {
		delete(next, id)
		return nil
	})
}

// DevicesByBroadlinkEntity returns the devices controlled through ref.
func (s *Store) DevicesByBroadlinkEntity(ref string) (map[string]device.Device, error) {
	return s.filter(func(d device.Device) bool { return d.BroadlinkEntity == ref })
}

// DevicesByDeviceType returns the devices of the given device type.
func (s *Store) DevicesByDeviceType(deviceType string) (map[string]device.Device, error) {
	return s.filter(func(d device.Device) bool { return d.DeviceType == deviceType })
}

// IDs returns the stored device ids in sorted order.
func (s *Store) IDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoaded()

	ids := make([]string, 0, len(s.devices))
	for id := range s.devices {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (s *Store) filter(keep func(device.Device) bool) (map[string]device.Device, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoaded()

	out := make(map[string]device.Device)
	for id, d := range s.devices {
		if keep(d) {
			out[id] = d.Clone()
		}
	}
	return out, nil
}

func (s *Store) touch(d *device.Device) {
	now := s.now().UTC()
	d.UpdatedAt = &now
}

// commit applies mutate to a copy of the current devices, persists the copy
// and only then makes it the in-memory state.
func (s *Store) commit(mutate func(next map[string]device.Device) error) error {
	next := cloneAll(s.devices)
	if err := mutate(next); err != nil {
		return err
	}
	if err := s.write(next); err != nil {
		return err
	}
	s.devices = next
	return nil
}

// write persists devices. The new document goes to a temp file, the bytes
// currently on disk are staged and renamed into the backup, and only then is
// the temp file renamed over the primary. A failed backup rotation fails the
// write with the primary untouched. If the primary rename fails the backup
// already equals the primary.
func (s *Store) write(devices map[string]device.Device) error {
	data, err := json.MarshalIndent(devices, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode devices: %w", err)
	}

	tmp := s.tmpPath()
	if err := writeFileSync(tmp, data); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to write temp document: %w", err)
	}

	staged := false
	bakTmp := s.backupTmpPath()
	prev, err := os.ReadFile(s.path)
	switch {
	case err == nil:
		if err := writeFileSync(bakTmp, prev); err != nil {
			_ = os.Remove(tmp)
			_ = os.Remove(bakTmp)
			return fmt.Errorf("failed to stage backup: %w", err)
		}
		staged = true
	case !errors.Is(err, os.ErrNotExist):
		log.Warn().Err(err).Str("path", s.path).Msg("Could not read previous document for backup")
	}

	if staged {
		if err := s.rename(bakTmp, s.BackupPath()); err != nil {
			_ = os.Remove(tmp)
			_ = os.Remove(bakTmp)
			return fmt.Errorf("failed to rotate backup: %w", err)
		}
	}

	if err := s.rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to replace document: %w", err)
	}

	log.Debug().Str("path", s.path).Int("devices", len(devices)).Msg("Device store written")
	return nil
}

func (s *Store) ensureLoaded() {
	if !s.loaded {
		s.load()
	}
}

// load reads the primary document. A corrupt or missing primary with a valid
// backup promotes the backup; if neither is usable the store starts empty.
func (s *Store) load() {
	s.loaded = true

	primary, perr := readDocument(s.path)
	if perr == nil {
		s.devices = primary
		return
	}

	backup, berr := readDocument(s.BackupPath())
	if berr == nil {
		log.Warn().
			Err(perr).
			Str("path", s.path).
			Str("backup", s.BackupPath()).
			Msg("Device store unreadable, restoring from backup")
		if err := s.promoteBackup(); err != nil {
			log.Error().Err(err).Msg("Failed to promote backup")
		}
		s.devices = backup
		return
	}

	if !errors.Is(perr, os.ErrNotExist) || !errors.Is(berr, os.ErrNotExist) {
		log.Error().
			Err(perr).
			AnErr("backup_err", berr).
			Str("path", s.path).
			Msg("Device store and backup unreadable, starting empty")
	}
	s.devices = map[string]device.Device{}
}

// promoteBackup copies the backup bytes over the primary.
func (s *Store) promoteBackup() error {
	data, err := os.ReadFile(s.BackupPath())
	if err != nil {
		return err
	}
	tmp := s.tmpPath()
	if err := writeFileSync(tmp, data); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := s.rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}

func readDocument(path string) (map[string]device.Device, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var devices map[string]device.Device
	if err := json.Unmarshal(data, &devices); err != nil {
		return nil, fmt.Errorf("corrupt document %s: %w", path, err)
	}
	if devices == nil {
		devices = map[string]device.Device{}
	}

	for id, d := range devices {
		if d.ID == "" {
			d.ID = id
		}
		if d.Commands == nil {
			d.Commands = map[string]device.Command{}
		}
		devices[id] = d
	}
	return devices, nil
}

func writeFileSync(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func cloneAll(devices map[string]device.Device) map[string]device.Device {
	out := make(map[string]device.Device, len(devices))
	for id, d := range devices {
		out[id] = d.Clone()
	}
	return out
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}
