package transceiver

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/urmzd/remotehub/pkg/device"
)

// Transceiver implements device.Transceiver over a framed serial link.
type Transceiver struct {
	link     *Link
	endpoint device.Endpoint
}

// New wraps port in a Transceiver for ep. The transceiver owns the port.
func New(port Port, ep device.Endpoint) *Transceiver {
	return &Transceiver{
		link:     NewLink(port),
		endpoint: ep,
	}
}

// Link returns the underlying link.
func (t *Transceiver) Link() *Link {
	return t.link
}

// Authenticate flushes the receiver and presents the endpoint identity.
func (t *Transceiver) Authenticate(ctx context.Context) error {
	if err := t.link.Reset(); err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	if err := t.simple(ctx, opAuthenticate, []byte(t.endpoint.Identity)); err != nil {
		return err
	}
	log.Info().Str("port", t.endpoint.Host).Str("kind", t.endpoint.Kind).Msg("Transceiver handshake complete")
	return nil
}

func (t *Transceiver) EnterLearning(ctx context.Context) error {
	return t.simple(ctx, opEnterLearning, nil)
}

// CheckData returns the captured payload, or nil when none is buffered.
func (t *Transceiver) CheckData(ctx context.Context) ([]byte, error) {
	resp, err := t.link.Call(ctx, opCheckData, nil)
	if err != nil {
		return nil, err
	}
	if resp.status == statusNoData {
		return nil, nil
	}
	if err := statusError(resp.op, resp.status); err != nil {
		return nil, err
	}
	if len(resp.data) == 0 {
		return nil, nil
	}
	return resp.data, nil
}

func (t *Transceiver) SweepFrequency(ctx context.Context) error {
	return t.simple(ctx, opSweepFrequency, nil)
}

// CheckFrequency reports the sweep lock state and frequency in MHz.
func (t *Transceiver) CheckFrequency(ctx context.Context) (bool, float64, error) {
	resp, err := t.link.Call(ctx, opCheckFrequency, nil)
	if err != nil {
		return false, 0, err
	}
	if err := statusError(resp.op, resp.status); err != nil {
		return false, 0, err
	}
	return decodeFrequency(resp.data)
}

func (t *Transceiver) CancelSweep(ctx context.Context) error {
	return t.simple(ctx, opCancelSweep, nil)
}

func (t *Transceiver) FindRFPacket(ctx context.Context) error {
	return t.simple(ctx, opFindRFPacket, nil)
}

func (t *Transceiver) SendData(ctx context.Context, payload []byte) error {
	return t.simple(ctx, opSendData, payload)
}

// Close closes the link and the port.
func (t *Transceiver) Close() error {
	err := t.link.Close()
	log.Info().Str("port", t.endpoint.Host).Msg("Transceiver closed")
	return err
}

func (t *Transceiver) simple(ctx context.Context, op byte, params []byte) error {
	resp, err := t.link.Call(ctx, op, params)
	if err != nil {
		return err
	}
	return statusError(resp.op, resp.status)
}

// Opener opens serial transceiver sessions.
type Opener struct {
	BaudRate int

	// Dial opens the port. Nil means OpenSerial.
	Dial func(path string, baudRate int) (Port, error)
}

// Open dials ep.Host and returns an unauthenticated transceiver.
func (o Opener) Open(ctx context.Context, ep device.Endpoint) (device.Transceiver, error) {
	if ep.Host == "" {
		return nil, fmt.Errorf("no serial port given")
	}

	dial := o.Dial
	if dial == nil {
		dial = func(path string, baudRate int) (Port, error) {
			return OpenSerial(path, baudRate)
		}
	}

	port, err := dial(ep.Host, o.BaudRate)
	if err != nil {
		return nil, err
	}
	return New(port, ep), nil
}
