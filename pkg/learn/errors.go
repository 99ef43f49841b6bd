package learn

import "errors"

var (
	// ErrAuthenticationFailed indicates the session could not be opened or the handshake failed
	ErrAuthenticationFailed = errors.New("authentication failed")

	// ErrNotAuthenticated indicates a learn or test call was made without a session
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrCaptureTimeout indicates no signal arrived before the timeout
	ErrCaptureTimeout = errors.New("timed out waiting for signal")

	// ErrSweepTimeout indicates the RF frequency sweep never locked
	ErrSweepTimeout = errors.New("timed out waiting for frequency lock")

	// ErrDeviceCommunication indicates a non-transient transceiver error
	ErrDeviceCommunication = errors.New("device communication error")

	// ErrBusy indicates another learn call holds the session
	ErrBusy = errors.New("learning session already in progress")

	// ErrInvalidPayload indicates a stored payload could not be decoded
	ErrInvalidPayload = errors.New("invalid payload encoding")
)

// IsNoSignal reports whether err is a normal "nothing captured" outcome
// rather than a device failure.
func IsNoSignal(err error) bool {
	return errors.Is(err, ErrCaptureTimeout) || errors.Is(err, ErrSweepTimeout)
}
