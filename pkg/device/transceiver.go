package device

import "context"

// Endpoint identifies a transceiver session target.
type Endpoint struct {
	Host     string // Network host or serial port path
	Identity string // Hardware identity (MAC address or serial number)
	Kind     string // Transceiver model family
}

// Transceiver defines the capability interface of an IR/RF remote-control
// transceiver. Implementations own discovery, the authentication handshake
// and raw command I/O; the learning engine only drives this interface.
type Transceiver interface {
	// Authenticate performs the session handshake
	Authenticate(ctx context.Context) error

	// EnterLearning puts the transceiver into IR capture mode
	EnterLearning(ctx context.Context) error

	// CheckData returns a captured payload, or nil when nothing is buffered yet.
	// ErrStaleData and ErrStorageFull are reported for stale-buffer conditions.
	CheckData(ctx context.Context) ([]byte, error)

	// SweepFrequency starts an RF frequency sweep
	SweepFrequency(ctx context.Context) error

	// CheckFrequency reports whether the sweep has locked and at which frequency
	CheckFrequency(ctx context.Context) (bool, float64, error)

	// CancelSweep aborts an RF frequency sweep
	CancelSweep(ctx context.Context) error

	// FindRFPacket switches the transceiver into RF packet capture mode
	FindRFPacket(ctx context.Context) error

	// SendData transmits a raw payload
	SendData(ctx context.Context, payload []byte) error

	// Close releases the session
	Close() error
}

// Opener creates a transceiver session for an endpoint.
type Opener interface {
	Open(ctx context.Context, ep Endpoint) (Transceiver, error)
}

// OpenerFunc adapts a function to the Opener interface.
type OpenerFunc func(ctx context.Context, ep Endpoint) (Transceiver, error)

// Open calls f(ctx, ep).
func (f OpenerFunc) Open(ctx context.Context, ep Endpoint) (Transceiver, error) {
	return f(ctx, ep)
}
