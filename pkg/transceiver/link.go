package transceiver

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// DefaultResponseTimeout bounds the wait for a single response.
const DefaultResponseTimeout = 5 * time.Second

var (
	// ErrLinkClosed indicates the link was closed or its port failed
	ErrLinkClosed = errors.New("link closed")

	// ErrResponseTimeout indicates the transceiver did not answer in time
	ErrResponseTimeout = errors.New("timeout waiting for response")
)

// Link carries framed request/response exchanges over a Port. Responses
// are matched to requests by sequence number.
type Link struct {
	port Port

	// ResponseTimeout bounds each Call. Zero means DefaultResponseTimeout.
	ResponseTimeout time.Duration

	seq   uint8
	seqMu sync.Mutex

	pending   map[uint8]chan response
	pendingMu sync.Mutex

	writeMu sync.Mutex

	done      chan struct{}
	closeOnce sync.Once
	closed    bool
	closedMu  sync.Mutex
}

// NewLink starts a link over port. The link owns the port from here on.
func NewLink(port Port) *Link {
	l := &Link{
		port:    port,
		pending: make(map[uint8]chan response),
		done:    make(chan struct{}),
	}
	go l.readLoop()
	return l
}

// Reset flushes the transceiver's receiver state.
func (l *Link) Reset() error {
	l.writeMu.Lock()
	defer l.writeMu.Unlock()
	_, err := l.port.Write([]byte{cancelByte})
	return err
}

// Call sends one request and waits for its response.
func (l *Link) Call(ctx context.Context, op byte, params []byte) (response, error) {
	l.seqMu.Lock()
	seq := l.seq
	l.seq++
	l.seqMu.Unlock()

	ch := make(chan response, 1)
	l.pendingMu.Lock()
	l.pending[seq] = ch
	l.pendingMu.Unlock()

	defer func() {
		l.pendingMu.Lock()
		delete(l.pending, seq)
		l.pendingMu.Unlock()
	}()

	frame := encodeFrame(encodeRequest(op, seq, params))

	log.Debug().
		Str("op", opName(op)).
		Uint8("seq", seq).
		Int("params_len", len(params)).
		Msg("Transceiver TX")

	l.writeMu.Lock()
	_, err := l.port.Write(frame)
	l.writeMu.Unlock()
	if err != nil {
		return response{}, fmt.Errorf("write %s: %w", opName(op), err)
	}

	timeout := l.ResponseTimeout
	if timeout <= 0 {
		timeout = DefaultResponseTimeout
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case resp := <-ch:
		if resp.op != op {
			return response{}, fmt.Errorf("response opcode %s does not match request %s", opName(resp.op), opName(op))
		}
		return resp, nil
	case <-timer.C:
		return response{}, fmt.Errorf("%w: %s", ErrResponseTimeout, opName(op))
	case <-ctx.Done():
		return response{}, ctx.Err()
	case <-l.done:
		return response{}, ErrLinkClosed
	}
}

// Close stops the link and closes the port.
func (l *Link) Close() error {
	var err error
	l.closeOnce.Do(func() {
		l.closedMu.Lock()
		l.closed = true
		l.closedMu.Unlock()
		close(l.done)
		err = l.port.Close()
	})
	return err
}

func (l *Link) isClosed() bool {
	l.closedMu.Lock()
	defer l.closedMu.Unlock()
	return l.closed
}

// readLoop reads frames until the port fails or the link is closed.
func (l *Link) readLoop() {
	var scanner frameScanner
	buf := make([]byte, 256)

	for {
		n, err := l.port.Read(buf)
		for _, b := range buf[:n] {
			if frame, ok := scanner.push(b); ok {
				l.processFrame(frame)
			}
		}
		if err != nil {
			if !l.isClosed() {
				log.Error().Err(err).Msg("Transceiver read failed, closing link")
				_ = l.Close()
			}
			return
		}
	}
}

// processFrame decodes a stuffed frame and hands it to the waiting caller.
func (l *Link) processFrame(stuffed []byte) {
	payload, err := decodeFrame(stuffed)
	if err != nil {
		log.Warn().Err(err).Msg("Discarding transceiver frame")
		return
	}

	resp, err := decodeResponse(payload)
	if err != nil {
		log.Warn().Err(err).Msg("Discarding transceiver frame")
		return
	}

	log.Debug().
		Str("op", opName(resp.op)).
		Uint8("seq", resp.seq).
		Uint8("status", resp.status).
		Int("data_len", len(resp.data)).
		Msg("Transceiver RX")

	l.pendingMu.Lock()
	ch, ok := l.pending[resp.seq]
	l.pendingMu.Unlock()
	if !ok {
		log.Debug().Uint8("seq", resp.seq).Msg("Unsolicited transceiver response")
		return
	}

	select {
	case ch <- resp:
	default:
	}
}
