package learn

import (
	"context"

	"github.com/urmzd/remotehub/pkg/device"
)

type pollKind int

const (
	pollEmpty pollKind = iota
	pollData
	pollRetryable
	pollFatal
)

// pollOutcome is the typed result of one data poll. The capture loop
// decides whether to continue from the kind alone.
type pollOutcome struct {
	kind pollKind
	data []byte
	err  error
}

// poll asks the transceiver for captured data once.
func poll(ctx context.Context, tx device.Transceiver) pollOutcome {
	data, err := tx.CheckData(ctx)
	switch {
	case err == nil && len(data) > 0:
		return pollOutcome{kind: pollData, data: data}
	case err == nil:
		return pollOutcome{kind: pollEmpty}
	case device.IsTransient(err):
		return pollOutcome{kind: pollRetryable, err: err}
	default:
		return pollOutcome{kind: pollFatal, err: err}
	}
}
