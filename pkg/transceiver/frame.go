package transceiver

import (
	"errors"
	"fmt"
)

// Framing constants
const (
	flagByte   = 0x7E
	escapeByte = 0x7D
	xonByte    = 0x11
	xoffByte   = 0x13
	flipBit    = 0x20
	cancelByte = 0x1A
	substitute = 0x18

	maxFrameLen = 1024
)

var (
	// ErrShortFrame indicates a frame too short to hold a CRC
	ErrShortFrame = errors.New("frame too short")

	// ErrBadCRC indicates a frame failed its checksum
	ErrBadCRC = errors.New("frame CRC mismatch")
)

// encodeFrame appends the CRC, byte-stuffs and terminates payload with the flag byte.
func encodeFrame(payload []byte) []byte {
	raw := make([]byte, 0, len(payload)+2)
	raw = append(raw, payload...)
	crc := crcCCITT(payload)
	raw = append(raw, byte(crc>>8), byte(crc&0xFF))

	frame := stuff(raw)
	return append(frame, flagByte)
}

// decodeFrame reverses encodeFrame for a frame whose flag byte has been removed.
func decodeFrame(stuffed []byte) ([]byte, error) {
	raw := unstuff(stuffed)
	if len(raw) < 3 {
		return nil, fmt.Errorf("%w: %d bytes", ErrShortFrame, len(raw))
	}

	payload := raw[:len(raw)-2]
	received := uint16(raw[len(raw)-2])<<8 | uint16(raw[len(raw)-1])
	if computed := crcCCITT(payload); received != computed {
		return nil, fmt.Errorf("%w: received 0x%04X, computed 0x%04X", ErrBadCRC, received, computed)
	}
	return payload, nil
}

// frameScanner splits a byte stream into stuffed frames.
type frameScanner struct {
	buf []byte
}

// push feeds one byte. It returns a complete stuffed frame when b ends one.
func (s *frameScanner) push(b byte) ([]byte, bool) {
	switch b {
	case cancelByte, substitute:
		s.buf = s.buf[:0]
		return nil, false
	case xonByte, xoffByte:
		return nil, false
	case flagByte:
		if len(s.buf) == 0 {
			return nil, false
		}
		frame := make([]byte, len(s.buf))
		copy(frame, s.buf)
		s.buf = s.buf[:0]
		return frame, true
	}

	s.buf = append(s.buf, b)
	if len(s.buf) > maxFrameLen {
		s.buf = s.buf[:0]
	}
	return nil, false
}

func needsEscape(b byte) bool {
	switch b {
	case flagByte, escapeByte, xonByte, xoffByte, substitute, cancelByte:
		return true
	}
	return false
}

// stuff escapes reserved bytes.
func stuff(data []byte) []byte {
	out := make([]byte, 0, len(data)*2)
	for _, b := range data {
		if needsEscape(b) {
			out = append(out, escapeByte, b^flipBit)
		} else {
			out = append(out, b)
		}
	}
	return out
}

// unstuff reverses stuff.
func unstuff(data []byte) []byte {
	out := make([]byte, 0, len(data))
	escaped := false
	for _, b := range data {
		switch {
		case escaped:
			out = append(out, b^flipBit)
			escaped = false
		case b == escapeByte:
			escaped = true
		default:
			out = append(out, b)
		}
	}
	return out
}

// crcCCITT computes CRC-CCITT (0xFFFF initial, poly 0x1021).
func crcCCITT(data []byte) uint16 {
	crc := uint16(0xFFFF)
	for _, b := range data {
		crc ^= uint16(b) << 8
		for i := 0; i < 8; i++ {
			if crc&0x8000 != 0 {
				crc = (crc << 1) ^ 0x1021
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}
