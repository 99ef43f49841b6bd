// Package hub ties the learning engine, the device store and the generator
// together behind one facade used by the REST and MCP surfaces.
package hub

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/urmzd/remotehub/pkg/db"
	"github.com/urmzd/remotehub/pkg/device"
	"github.com/urmzd/remotehub/pkg/events"
	"github.com/urmzd/remotehub/pkg/generate"
	"github.com/urmzd/remotehub/pkg/learn"
	"github.com/urmzd/remotehub/pkg/store"
)

var (
	// ErrNoTransceiver indicates no transceiver is registered or configured
	ErrNoTransceiver = errors.New("no transceiver configured")

	// ErrCommandNotFound indicates the device has no usable payload under the name
	ErrCommandNotFound = errors.New("command not found")

	// ErrInvalidKind indicates a learn or add request named a kind other than ir or rf
	ErrInvalidKind = errors.New("invalid signal kind")
)

// Options configures a Hub. Store, Engine and Generator are required.
type Options struct {
	Store        *store.Store
	Engine       *learn.Engine
	Generator    *generate.Generator
	Sessions     db.SessionStore     // Optional learn history
	Transceivers db.TransceiverStore // Optional transceiver registry
	ProfileID    int64
	Publisher    events.Publisher // Optional, defaults to events.NullPublisher
	CommandTable string           // Optional raw command table path
	Endpoint     device.Endpoint  // Used when the registry has no match
}

// Hub is safe for concurrent use. Learn and test calls are serialized; a
// second one while another runs fails with learn.ErrBusy.
type Hub struct {
	store        *store.Store
	engine       *learn.Engine
	generator    *generate.Generator
	sessions     db.SessionStore
	transceivers db.TransceiverStore
	profileID    int64
	publisher    events.Publisher
	commandTable string
	endpoint     device.Endpoint

	busy sync.Mutex
	now  func() time.Time
}

// New creates a Hub from opts.
func New(opts Options) *Hub {
	pub := opts.Publisher
	if pub == nil {
		pub = events.NullPublisher{}
	}
	return &Hub{
		store:        opts.Store,
		engine:       opts.Engine,
		generator:    opts.Generator,
		sessions:     opts.Sessions,
		transceivers: opts.Transceivers,
		profileID:    opts.ProfileID,
		publisher:    pub,
		commandTable: opts.CommandTable,
		endpoint:     opts.Endpoint,
		now:          time.Now,
	}
}

// Health summarizes the hub for health endpoints.
type Health struct {
	Status      string `json:"status"`
	Engine      string `json:"engine"`
	Transceiver string `json:"transceiver,omitempty"`
	Devices     int    `json:"devices"`
}

// Healthy reports whether a transceiver is configured.
func (h *Health) Healthy() bool {
	return h.Status == "healthy"
}

// Health returns the current health summary.
func (h *Hub) Health(ctx context.Context) Health {
	out := Health{
		Status:  "healthy",
		Engine:  h.engine.State().String(),
		Devices: len(h.store.IDs()),
	}
	ep, err := h.resolveEndpoint(ctx, nil)
	if err != nil {
		out.Status = "degraded"
	} else {
		out.Transceiver = ep.Host
	}
	return out
}

// ListDevices returns every device ordered by id.
func (h *Hub) ListDevices() ([]device.Device, error) {
	all, err := h.store.GetAllDevices(false)
	if err != nil {
		return nil, err
	}
	out := make([]device.Device, 0, len(all))
	for _, d := range all {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// GetDevice returns the device stored under id.
func (h *Hub) GetDevice(id string) (*device.Device, error) {
	return h.store.GetDevice(id)
}

// CreateDevice stores d. An empty d.ID is derived from the name.
// DeviceType defaults to broadlink.
func (h *Hub) CreateDevice(d device.Device) (*device.Device, error) {
	if d.ID == "" {
		d.ID = store.GenerateDeviceID(d.Area, d.Name)
	}
	if d.ID == "" {
		return nil, fmt.Errorf("%w: name %q yields an empty id", store.ErrInvalidID, d.Name)
	}
	if !device.IsValidEntityType(d.EntityType) {
		return nil, fmt.Errorf("%w: unknown entity type %q", device.ErrValidation, d.EntityType)
	}
	if d.DeviceType == "" {
		d.DeviceType = device.DeviceTypeBroadlink
	}

	if err := h.store.CreateDevice(d.ID, d); err != nil {
		return nil, err
	}
	log.Info().Str("device", d.ID).Str("entity_type", d.EntityType).Msg("Device created")
	return h.store.GetDevice(d.ID)
}

// UpdateDevice merges u into the device and returns the result.
func (h *Hub) UpdateDevice(id string, u store.DeviceUpdate) (*device.Device, error) {
	if u.EntityType != nil && !device.IsValidEntityType(*u.EntityType) {
		return nil, fmt.Errorf("%w: unknown entity type %q", device.ErrValidation, *u.EntityType)
	}
	if err := h.store.UpdateDevice(id, u); err != nil {
		return nil, err
	}
	return h.store.GetDevice(id)
}

// DeleteDevice removes the device and its commands.
func (h *Hub) DeleteDevice(id string) error {
	if err := h.store.DeleteDevice(id); err != nil {
		return err
	}
	log.Info().Str("device", id).Msg("Device deleted")
	return nil
}

// AddCommand stores an externally captured payload.
func (h *Hub) AddCommand(deviceID, name, payload, kind string) error {
	if err := validCommandName(name); err != nil {
		return err
	}
	kind, err := normalizeKind(kind)
	if err != nil {
		return err
	}
	if _, err := learn.DecodePayload(payload); err != nil {
		return err
	}
	return h.store.AddCommand(deviceID, name, device.NewRecord(payload, kind, h.now().UTC()))
}

// normalizeKind defaults an empty kind to ir and rejects anything but ir or rf.
func normalizeKind(kind string) (string, error) {
	switch kind {
	case "":
		return device.KindIR, nil
	case device.KindIR, device.KindRF:
		return kind, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidKind, kind)
}

// DeleteCommand removes a command. A missing command is not an error.
func (h *Hub) DeleteCommand(deviceID, name string) error {
	return h.store.DeleteCommand(deviceID, name)
}

// LearnRequest describes one learn call.
type LearnRequest struct {
	DeviceID string
	Command  string
	Kind     string        // ir (default) or rf
	Timeout  time.Duration // Per phase, zero means learn.DefaultTimeout
	Replace  bool          // Overwrite an existing command of the same name
}

// LearnResult is returned for a captured command.
type LearnResult struct {
	SessionID       string  `json:"session_id,omitempty"`
	DeviceID        string  `json:"device_id"`
	Command         string  `json:"command"`
	Kind            string  `json:"kind"`
	Payload         string  `json:"payload"`
	FrequencyMHz    float64 `json:"frequency_mhz,omitempty"`
	Polls           int     `json:"polls"`
	TransientErrors int     `json:"transient_errors"`
	DurationMS      int64   `json:"duration_ms"`
}

// Learn captures a signal through the device's transceiver and stores it
// under req.Command. Every attempt is recorded in the session history and
// published, whatever the outcome.
func (h *Hub) Learn(ctx context.Context, req LearnRequest) (*LearnResult, error) {
	if err := validCommandName(req.Command); err != nil {
		return nil, err
	}
	kind, err := normalizeKind(req.Kind)
	if err != nil {
		return nil, err
	}
	req.Kind = kind

	d, err := h.store.GetDevice(req.DeviceID)
	if err != nil {
		return nil, err
	}
	if existing, ok := d.Commands[req.Command]; ok && existing.Payload() != "" && !req.Replace {
		return nil, fmt.Errorf("%w: %s/%s", store.ErrCommandExists, d.ID, req.Command)
	}

	if !h.busy.TryLock() {
		return nil, learn.ErrBusy
	}
	defer h.busy.Unlock()

	started := h.now()
	if err := h.ensureSession(ctx, d); err != nil {
		h.record(ctx, &db.LearnSession{
			ProfileID:  h.profileID,
			DeviceID:   d.ID,
			Command:    req.Command,
			Kind:       req.Kind,
			Outcome:    db.OutcomeError,
			Error:      err.Error(),
			StartedAt:  started,
			DurationMS: h.now().Sub(started).Milliseconds(),
		})
		return nil, err
	}

	started = h.now()
	var capture *learn.Capture
	if req.Kind == device.KindRF {
		capture, err = h.engine.LearnRF(ctx, req.Timeout)
	} else {
		capture, err = h.engine.LearnIR(ctx, req.Timeout)
	}

	session := &db.LearnSession{
		ProfileID:  h.profileID,
		DeviceID:   d.ID,
		Command:    req.Command,
		Kind:       req.Kind,
		StartedAt:  started,
		DurationMS: h.now().Sub(started).Milliseconds(),
	}
	switch {
	case err == nil:
		session.Outcome = db.OutcomeCaptured
		session.FrequencyMHz = capture.FrequencyMHz
		session.Polls = capture.Polls
		session.TransientErrors = capture.TransientErrors
	case learn.IsNoSignal(err):
		session.Outcome = db.OutcomeTimeout
		session.Error = err.Error()
	default:
		session.Outcome = db.OutcomeError
		session.Error = err.Error()
	}
	h.record(ctx, session)

	if err != nil {
		return nil, err
	}

	cmd := device.NewRecord(capture.Payload, capture.Kind, h.now().UTC())
	if err := h.store.SetCommand(d.ID, req.Command, cmd); err != nil {
		return nil, fmt.Errorf("storing learned command: %w", err)
	}

	return &LearnResult{
		SessionID:       session.ID,
		DeviceID:        d.ID,
		Command:         req.Command,
		Kind:            capture.Kind,
		Payload:         capture.Payload,
		FrequencyMHz:    capture.FrequencyMHz,
		Polls:           capture.Polls,
		TransientErrors: capture.TransientErrors,
		DurationMS:      capture.Duration.Milliseconds(),
	}, nil
}

// TestCommand transmits a stored command through the device's transceiver.
func (h *Hub) TestCommand(ctx context.Context, deviceID, name string) error {
	d, err := h.store.GetDevice(deviceID)
	if err != nil {
		return err
	}
	cmd, ok := d.Commands[name]
	if !ok || cmd.Payload() == "" {
		return fmt.Errorf("%w: %s/%s", ErrCommandNotFound, deviceID, name)
	}

	if !h.busy.TryLock() {
		return learn.ErrBusy
	}
	defer h.busy.Unlock()

	if err := h.ensureSession(ctx, d); err != nil {
		return err
	}
	return h.engine.TestCommand(ctx, cmd.Payload())
}

// Generate writes the entity and helper documents.
func (h *Hub) Generate(ctx context.Context) (*generate.Result, error) {
	table, err := generate.LoadCommandTable(h.commandTable)
	if err != nil {
		return nil, err
	}

	res, err := h.generator.GenerateAll(table)
	if err != nil {
		return res, err
	}

	ev := events.GenerateEvent{
		Devices:      res.EntitiesCount,
		Skipped:      len(res.Skipped),
		Helpers:      res.HelpersCount,
		EntitiesPath: res.EntitiesPath,
		HelpersPath:  res.HelpersPath,
	}
	if err := h.publisher.PublishGenerate(ctx, ev); err != nil {
		log.Warn().Err(err).Msg("Failed to publish generate event")
	}
	return res, nil
}

// Sessions lists recent learn sessions, newest first.
func (h *Hub) Sessions(ctx context.Context, deviceID string, limit int) ([]*db.LearnSession, error) {
	if h.sessions == nil {
		return nil, nil
	}
	return h.sessions.List(ctx, h.profileID, deviceID, limit)
}

// Transceivers lists registered transceivers.
func (h *Hub) Transceivers(ctx context.Context) ([]*db.Transceiver, error) {
	if h.transceivers == nil {
		return nil, nil
	}
	return h.transceivers.List(ctx, h.profileID)
}

// AddTransceiver registers t under the hub's profile.
func (h *Hub) AddTransceiver(ctx context.Context, t *db.Transceiver) error {
	if h.transceivers == nil {
		return ErrNoTransceiver
	}
	t.ProfileID = h.profileID
	return h.transceivers.Create(ctx, t)
}

// Close releases the transceiver session and the publisher.
func (h *Hub) Close() error {
	err := h.engine.Close()
	if perr := h.publisher.Close(); perr != nil && err == nil {
		err = perr
	}
	return err
}

// ensureSession authenticates the engine against the transceiver serving d,
// reusing the open session when it already targets that endpoint.
func (h *Hub) ensureSession(ctx context.Context, d *device.Device) error {
	ep, err := h.resolveEndpoint(ctx, d)
	if err != nil {
		return err
	}
	if h.engine.State() != learn.StateUnauthenticated && h.engine.Endpoint() == ep {
		return nil
	}
	return h.engine.Authenticate(ctx, ep)
}

// resolveEndpoint picks the registered transceiver behind the device's
// remote entity, then the profile default, then the configured endpoint.
func (h *Hub) resolveEndpoint(ctx context.Context, d *device.Device) (device.Endpoint, error) {
	if h.transceivers != nil {
		if d != nil && d.BroadlinkEntity != "" {
			t, err := h.transceivers.GetByEntity(ctx, h.profileID, d.BroadlinkEntity)
			if err == nil {
				return t.Endpoint(), nil
			}
			if !errors.Is(err, db.ErrTransceiverNotFound) {
				return device.Endpoint{}, err
			}
		}
		t, err := h.transceivers.GetDefault(ctx, h.profileID)
		if err == nil {
			return t.Endpoint(), nil
		}
		if !errors.Is(err, db.ErrTransceiverNotFound) {
			return device.Endpoint{}, err
		}
	}
	if h.endpoint.Host != "" {
		return h.endpoint, nil
	}
	return device.Endpoint{}, ErrNoTransceiver
}

func (h *Hub) record(ctx context.Context, s *db.LearnSession) {
	if h.sessions != nil {
		if err := h.sessions.Record(context.WithoutCancel(ctx), s); err != nil {
			log.Warn().Err(err).Str("device", s.DeviceID).Msg("Failed to record learn session")
		}
	}

	ev := events.LearnEvent{
		SessionID:    s.ID,
		DeviceID:     s.DeviceID,
		Command:      s.Command,
		Kind:         s.Kind,
		Outcome:      s.Outcome,
		FrequencyMHz: s.FrequencyMHz,
		Polls:        s.Polls,
		Error:        s.Error,
	}
	if err := h.publisher.PublishLearn(context.WithoutCancel(ctx), ev); err != nil {
		log.Warn().Err(err).Str("device", s.DeviceID).Msg("Failed to publish learn event")
	}
}

func validCommandName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: command name is empty", store.ErrInvalidID)
	}
	if strings.ContainsAny(name, ". \t") {
		return fmt.Errorf("%w: command name %q", store.ErrInvalidID, name)
	}
	return nil
}
