package learn

import (
	"context"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/urmzd/remotehub/pkg/device"
)

const (
	// DefaultTimeout bounds each capture phase.
	DefaultTimeout = 30 * time.Second

	// DefaultPollInterval is the transceiver poll cadence.
	DefaultPollInterval = time.Second

	// DefaultSettleDelay is the pause between RF frequency lock and packet capture.
	DefaultSettleDelay = time.Second
)

// Capture is the result of a successful learn call.
type Capture struct {
	Payload         string        // Base64-encoded signal
	Kind            string        // ir or rf
	FrequencyMHz    float64       // Locked RF frequency, 0 for IR
	Polls           int           // Data polls issued in the capture phase
	TransientErrors int           // Stale-buffer errors swallowed while polling
	Duration        time.Duration // Wall time of the whole call
}

// Engine drives a transceiver through authentication and signal capture.
//
// An Engine holds one session. Learn calls block the caller for up to the
// timeout per phase; a concurrent learn on the same Engine fails with ErrBusy.
type Engine struct {
	opener device.Opener

	// PollInterval is the delay between polls. Zero means DefaultPollInterval.
	PollInterval time.Duration

	// SettleDelay is the pause after an RF lock. Zero means DefaultSettleDelay.
	SettleDelay time.Duration

	sessionMu sync.Mutex
	tx        device.Transceiver
	endpoint  device.Endpoint

	stateMu sync.RWMutex
	state   State
}

// NewEngine creates an unauthenticated Engine that opens sessions through opener.
func NewEngine(opener device.Opener) *Engine {
	return &Engine{
		opener: opener,
		state:  StateUnauthenticated,
	}
}

// State returns the current state.
func (e *Engine) State() State {
	e.stateMu.RLock()
	defer e.stateMu.RUnlock()
	return e.state
}

// Endpoint returns the endpoint of the current session.
func (e *Engine) Endpoint() device.Endpoint {
	e.sessionMu.Lock()
	defer e.sessionMu.Unlock()
	return e.endpoint
}

func (e *Engine) setState(s State) {
	e.stateMu.Lock()
	e.state = s
	e.stateMu.Unlock()
}

// Authenticate opens a session against ep and performs the handshake.
// Any previous session is closed first. On failure the engine is left
// unauthenticated; no retry is attempted.
func (e *Engine) Authenticate(ctx context.Context, ep device.Endpoint) error {
	e.sessionMu.Lock()
	defer e.sessionMu.Unlock()

	e.closeLocked()

	tx, err := e.opener.Open(ctx, ep)
	if err != nil {
		log.Warn().Err(err).Str("host", ep.Host).Msg("Failed to open transceiver session")
		return fmt.Errorf("%w: %w", ErrAuthenticationFailed, err)
	}

	if err := tx.Authenticate(ctx); err != nil {
		_ = tx.Close()
		log.Warn().Err(err).Str("host", ep.Host).Msg("Transceiver handshake failed")
		return fmt.Errorf("%w: %w", ErrAuthenticationFailed, err)
	}

	e.tx = tx
	e.endpoint = ep
	e.setState(StateAuthenticated)

	log.Info().
		Str("host", ep.Host).
		Str("identity", ep.Identity).
		Str("kind", ep.Kind).
		Msg("Transceiver authenticated")

	return nil
}

// Close releases the session and returns the engine to unauthenticated.
func (e *Engine) Close() error {
	e.sessionMu.Lock()
	defer e.sessionMu.Unlock()
	return e.closeLocked()
}

func (e *Engine) closeLocked() error {
	if e.tx == nil {
		return nil
	}
	err := e.tx.Close()
	e.tx = nil
	e.endpoint = device.Endpoint{}
	e.setState(StateUnauthenticated)
	return err
}

// acquire takes the session for a learn or test call.
func (e *Engine) acquire() (device.Transceiver, error) {
	if !e.sessionMu.TryLock() {
		return nil, ErrBusy
	}
	if e.tx == nil {
		e.sessionMu.Unlock()
		return nil, ErrNotAuthenticated
	}
	return e.tx, nil
}

// LearnIR captures one infrared signal. A zero timeout means DefaultTimeout.
func (e *Engine) LearnIR(ctx context.Context, timeout time.Duration) (*Capture, error) {
	tx, err := e.acquire()
	if err != nil {
		return nil, err
	}
	defer e.sessionMu.Unlock()

	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	start := time.Now()
	capture := &Capture{Kind: device.KindIR}

	if err := tx.EnterLearning(ctx); err != nil {
		e.setState(StateError)
		return nil, fmt.Errorf("%w: enter learning: %w", ErrDeviceCommunication, err)
	}
	e.setState(StateLearning)
	log.Info().Dur("timeout", timeout).Msg("Waiting for IR signal")

	data, err := e.captureLoop(ctx, tx, timeout, capture)
	capture.Duration = time.Since(start)
	if err != nil {
		e.finish(err)
		return nil, err
	}

	capture.Payload = base64.StdEncoding.EncodeToString(data)
	e.setState(StateCaptured)

	log.Info().
		Int("polls", capture.Polls).
		Int("transient_errors", capture.TransientErrors).
		Int("bytes", len(data)).
		Msg("IR signal captured")

	return capture, nil
}

// LearnRF captures one radio-frequency signal in two phases: a frequency
// sweep until lock, then packet capture. Each phase gets the full timeout.
// A zero timeout means DefaultTimeout.
func (e *Engine) LearnRF(ctx context.Context, timeout time.Duration) (*Capture, error) {
	tx, err := e.acquire()
	if err != nil {
		return nil, err
	}
	defer e.sessionMu.Unlock()

	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	start := time.Now()
	capture := &Capture{Kind: device.KindRF}

	if err := tx.SweepFrequency(ctx); err != nil {
		e.setState(StateError)
		return nil, fmt.Errorf("%w: sweep frequency: %w", ErrDeviceCommunication, err)
	}
	e.setState(StateSweeping)
	log.Info().Dur("timeout", timeout).Msg("Sweeping RF frequency, hold the remote button")

	freq, err := e.sweepLoop(ctx, tx, timeout)
	if err != nil {
		capture.Duration = time.Since(start)
		e.finish(err)
		return nil, err
	}
	capture.FrequencyMHz = freq
	e.setState(StateFrequencyLocked)
	log.Info().Float64("frequency_mhz", freq).Msg("RF frequency locked")

	if err := sleepCtx(ctx, e.settleDelay()); err != nil {
		e.setState(StateError)
		return nil, err
	}

	if err := tx.FindRFPacket(ctx); err != nil {
		e.setState(StateError)
		return nil, fmt.Errorf("%w: find rf packet: %w", ErrDeviceCommunication, err)
	}
	e.setState(StateCapturing)
	log.Info().Msg("Waiting for RF packet, press the remote button once")

	data, err := e.captureLoop(ctx, tx, timeout, capture)
	capture.Duration = time.Since(start)
	if err != nil {
		e.finish(err)
		return nil, err
	}

	capture.Payload = base64.StdEncoding.EncodeToString(data)
	e.setState(StateCaptured)

	log.Info().
		Float64("frequency_mhz", freq).
		Int("polls", capture.Polls).
		Int("transient_errors", capture.TransientErrors).
		Msg("RF signal captured")

	return capture, nil
}

// TestCommand decodes a stored payload and transmits it.
func (e *Engine) TestCommand(ctx context.Context, payload string) error {
	raw, err := DecodePayload(payload)
	if err != nil {
		return err
	}

	tx, err := e.acquire()
	if err != nil {
		return err
	}
	defer e.sessionMu.Unlock()

	if err := tx.SendData(ctx, raw); err != nil {
		return fmt.Errorf("%w: send: %w", ErrDeviceCommunication, err)
	}
	log.Info().Int("bytes", len(raw)).Msg("Command transmitted")
	return nil
}

// captureLoop polls for data until a payload arrives, a fatal error occurs
// or the timeout elapses.
func (e *Engine) captureLoop(ctx context.Context, tx device.Transceiver, timeout time.Duration, capture *Capture) ([]byte, error) {
	start := time.Now()
	for {
		out := poll(ctx, tx)
		capture.Polls++

		switch out.kind {
		case pollData:
			return out.data, nil
		case pollRetryable:
			capture.TransientErrors++
			log.Debug().Err(out.err).Int("poll", capture.Polls).Msg("Ignoring stale capture buffer")
		case pollFatal:
			return nil, fmt.Errorf("%w: check data: %w", ErrDeviceCommunication, out.err)
		}

		remaining := timeout - time.Since(start)
		if remaining <= 0 {
			return nil, ErrCaptureTimeout
		}
		if err := sleepCtx(ctx, min(e.pollInterval(), remaining)); err != nil {
			return nil, err
		}
	}
}

// sweepLoop polls for a frequency lock. On timeout the sweep is cancelled
// so the transceiver is left idle.
func (e *Engine) sweepLoop(ctx context.Context, tx device.Transceiver, timeout time.Duration) (float64, error) {
	start := time.Now()
	for {
		found, freq, err := tx.CheckFrequency(ctx)
		switch {
		case err == nil && found:
			return freq, nil
		case err != nil && !device.IsTransient(err):
			e.cancelSweep(ctx, tx)
			return 0, fmt.Errorf("%w: check frequency: %w", ErrDeviceCommunication, err)
		}

		remaining := timeout - time.Since(start)
		if remaining <= 0 {
			e.cancelSweep(ctx, tx)
			return 0, ErrSweepTimeout
		}
		if err := sleepCtx(ctx, min(e.pollInterval(), remaining)); err != nil {
			e.cancelSweep(ctx, tx)
			return 0, err
		}
	}
}

func (e *Engine) cancelSweep(ctx context.Context, tx device.Transceiver) {
	if err := tx.CancelSweep(context.WithoutCancel(ctx)); err != nil {
		log.Warn().Err(err).Msg("Failed to cancel RF sweep")
	}
}

// finish records the terminal state for a failed learn call.
func (e *Engine) finish(err error) {
	switch {
	case errors.Is(err, ErrSweepTimeout):
		e.setState(StateSweepTimedOut)
	case errors.Is(err, ErrCaptureTimeout):
		e.setState(StateTimedOut)
	default:
		e.setState(StateError)
	}
}

func (e *Engine) pollInterval() time.Duration {
	if e.PollInterval <= 0 {
		return DefaultPollInterval
	}
	return e.PollInterval
}

func (e *Engine) settleDelay() time.Duration {
	if e.SettleDelay <= 0 {
		return DefaultSettleDelay
	}
	return e.SettleDelay
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// DecodePayload decodes a stored payload. Base64 is the canonical form;
// hex is accepted for payloads imported from other tools.
func DecodePayload(payload string) ([]byte, error) {
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return nil, fmt.Errorf("%w: empty payload", ErrInvalidPayload)
	}
	if raw, err := base64.StdEncoding.DecodeString(payload); err == nil && len(raw) > 0 {
		return raw, nil
	}
	if raw, err := hex.DecodeString(payload); err == nil && len(raw) > 0 {
		return raw, nil
	}
	return nil, fmt.Errorf("%w: neither base64 nor hex", ErrInvalidPayload)
}
