package transceiver

import (
	"encoding/binary"
	"fmt"

	"github.com/urmzd/remotehub/pkg/device"
)

// Request opcodes
const (
	opAuthenticate   byte = 0x01
	opSendData       byte = 0x02
	opEnterLearning  byte = 0x03
	opCheckData      byte = 0x04
	opSweepFrequency byte = 0x19
	opCheckFrequency byte = 0x1A
	opFindRFPacket   byte = 0x1B
	opCancelSweep    byte = 0x1E

	responseBit byte = 0x80
)

// Response status codes
const (
	statusOK          byte = 0x00
	statusNoData      byte = 0x01
	statusAuthReject  byte = 0xE0
	statusStaleData   byte = 0xF6
	statusStorageFull byte = 0xFB
)

var opNames = map[byte]string{
	opAuthenticate:   "authenticate",
	opSendData:       "send_data",
	opEnterLearning:  "enter_learning",
	opCheckData:      "check_data",
	opSweepFrequency: "sweep_frequency",
	opCheckFrequency: "check_frequency",
	opFindRFPacket:   "find_rf_packet",
	opCancelSweep:    "cancel_sweep",
}

func opName(op byte) string {
	if name, ok := opNames[op]; ok {
		return name
	}
	return fmt.Sprintf("0x%02X", op)
}

// StatusError is a non-zero status the transceiver returned for a request.
type StatusError struct {
	Op     byte
	Status byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s failed with status 0x%02X", opName(e.Op), e.Status)
}

// statusError maps a response status to an error. The stale-buffer codes map
// onto the device sentinels the learning engine tolerates.
func statusError(op, status byte) error {
	switch status {
	case statusOK:
		return nil
	case statusStaleData:
		return fmt.Errorf("%s: %w", opName(op), device.ErrStaleData)
	case statusStorageFull:
		return fmt.Errorf("%s: %w", opName(op), device.ErrStorageFull)
	case statusAuthReject:
		return fmt.Errorf("%s: %w", opName(op), device.ErrAuthRejected)
	default:
		return &StatusError{Op: op, Status: status}
	}
}

// encodeRequest builds a request payload: opcode, sequence, params.
func encodeRequest(op, seq byte, params []byte) []byte {
	out := make([]byte, 0, 2+len(params))
	out = append(out, op, seq)
	return append(out, params...)
}

// response is a decoded response payload.
type response struct {
	op     byte
	seq    byte
	status byte
	data   []byte
}

// decodeResponse parses opcode|0x80, sequence, status, data.
func decodeResponse(payload []byte) (response, error) {
	if len(payload) < 3 {
		return response{}, fmt.Errorf("%w: response of %d bytes", ErrShortFrame, len(payload))
	}
	if payload[0]&responseBit == 0 {
		return response{}, fmt.Errorf("unexpected request frame 0x%02X", payload[0])
	}
	data := make([]byte, len(payload)-3)
	copy(data, payload[3:])
	return response{
		op:     payload[0] &^ responseBit,
		seq:    payload[1],
		status: payload[2],
		data:   data,
	}, nil
}

// decodeFrequency reads a lock flag followed by the frequency in kHz (LE uint32).
func decodeFrequency(data []byte) (bool, float64, error) {
	if len(data) < 1 {
		return false, 0, fmt.Errorf("%w: empty frequency response", ErrShortFrame)
	}
	if data[0] == 0 {
		return false, 0, nil
	}
	if len(data) < 5 {
		return false, 0, fmt.Errorf("%w: frequency response of %d bytes", ErrShortFrame, len(data))
	}
	khz := binary.LittleEndian.Uint32(data[1:5])
	return true, float64(khz) / 1000, nil
}
