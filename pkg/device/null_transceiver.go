package device

import "context"

// NullTransceiver is a no-op transceiver used when no hardware is attached.
// It allows the API to run in limited mode: devices and generation keep
// working while learning and testing report ErrNotConnected.
type NullTransceiver struct{}

// NewNullTransceiver creates a new NullTransceiver.
func NewNullTransceiver() *NullTransceiver {
	return &NullTransceiver{}
}

func (t *NullTransceiver) Authenticate(ctx context.Context) error {
	return ErrNotConnected
}

func (t *NullTransceiver) EnterLearning(ctx context.Context) error {
	return ErrNotConnected
}

func (t *NullTransceiver) CheckData(ctx context.Context) ([]byte, error) {
	return nil, ErrNotConnected
}

func (t *NullTransceiver) SweepFrequency(ctx context.Context) error {
	return ErrNotConnected
}

func (t *NullTransceiver) CheckFrequency(ctx context.Context) (bool, float64, error) {
	return false, 0, ErrNotConnected
}

func (t *NullTransceiver) CancelSweep(ctx context.Context) error {
	return ErrNotConnected
}

func (t *NullTransceiver) FindRFPacket(ctx context.Context) error {
	return ErrNotConnected
}

func (t *NullTransceiver) SendData(ctx context.Context, payload []byte) error {
	return ErrNotConnected
}

func (t *NullTransceiver) Close() error {
	return nil
}

// NullOpener opens NullTransceiver sessions.
type NullOpener struct{}

// Open returns a NullTransceiver for any endpoint.
func (NullOpener) Open(ctx context.Context, ep Endpoint) (Transceiver, error) {
	return NewNullTransceiver(), nil
}
