package device

import "errors"

var (
	// ErrNotConnected indicates the transceiver session is not open
	ErrNotConnected = errors.New("transceiver not connected")

	// ErrAuthRejected indicates the transceiver refused the handshake
	ErrAuthRejected = errors.New("transceiver rejected authentication")

	// ErrStaleData indicates the capture buffer held data left over from an
	// unrelated earlier session. Learning treats it as transient.
	ErrStaleData = errors.New("stale data in capture buffer")

	// ErrStorageFull indicates the transceiver's capture storage reported a
	// spurious full condition. Learning treats it as transient.
	ErrStorageFull = errors.New("capture storage full")

	// ErrUnsupported indicates an operation is not supported by the transceiver
	ErrUnsupported = errors.New("operation not supported")

	// ErrValidation indicates a device payload failed schema validation
	ErrValidation = errors.New("validation error")
)

// IsTransient reports whether err is one of the stale-buffer conditions
// that a learning poll may safely ignore.
func IsTransient(err error) bool {
	return errors.Is(err, ErrStaleData) || errors.Is(err, ErrStorageFull)
}
