package trigger

import (
	"fmt"
	"io"
	"log"
	"sync"

	serial "github.com/jacobsa/go-serial/serial"
)

type serialTrigger struct {
	mu   sync.Mutex
	port io.WriteCloser
}

// NewSerial opens the serial port of a game device and returns a trigger
// that writes a single jump byte per invocation.
func NewSerial(portName string, baudRate uint) (Trigger, error) {
	opts := serial.OpenOptions{
		PortName:        portName,
		BaudRate:        baudRate,
		DataBits:        8,
		StopBits:        1,
		ParityMode:      serial.PARITY_NONE,
		MinimumReadSize: 1,
	}

	port, err := serial.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open game serial port %s: %w", portName, err)
	}
	log.Printf("trigger: game serial port opened on %s at %d baud", portName, baudRate)
	return &serialTrigger{port: port}, nil
}

func (t *serialTrigger) Jump() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, err := t.port.Write([]byte{1}); err != nil {
		return fmt.Errorf("game serial write: %w", err)
	}
	return nil
}
