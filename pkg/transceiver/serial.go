package transceiver

import (
	"fmt"
	"io"
	"sync"

	"github.com/rs/zerolog/log"
	"go.bug.st/serial"
)

// DefaultBaudRate is the line speed of USB IR/RF transceivers.
const DefaultBaudRate = 115200

// Port is the byte stream a Link runs over.
type Port interface {
	io.Reader
	io.Writer
	io.Closer
}

// SerialPort wraps a serial connection to the transceiver.
type SerialPort struct {
	port serial.Port
	mu   sync.Mutex
}

// OpenSerial opens the serial port at the given baud rate, 8N1. A zero baud
// rate means DefaultBaudRate.
func OpenSerial(portPath string, baudRate int) (*SerialPort, error) {
	if baudRate <= 0 {
		baudRate = DefaultBaudRate
	}
	mode := &serial.Mode{
		BaudRate: baudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	port, err := serial.Open(portPath, mode)
	if err != nil {
		return nil, fmt.Errorf("open serial port %s: %w", portPath, err)
	}

	// Drop anything the transceiver buffered before we attached.
	if err := port.ResetInputBuffer(); err != nil {
		_ = port.Close()
		return nil, fmt.Errorf("reset input buffer: %w", err)
	}

	log.Info().Str("port", portPath).Int("baud", baudRate).Msg("Serial port opened")

	return &SerialPort{port: port}, nil
}

// Write sends raw bytes to the serial port.
func (s *SerialPort) Write(data []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.port.Write(data)
}

// Read reads raw bytes from the serial port.
func (s *SerialPort) Read(buf []byte) (int, error) {
	return s.port.Read(buf)
}

// Close closes the serial port.
func (s *SerialPort) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.port.Close()
}

// ListPorts returns the serial ports present on the host.
func ListPorts() ([]string, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("list serial ports: %w", err)
	}
	return ports, nil
}
