// Package flowsensor drives a Sensirion SFM3x00-family mass flow meter over
// I2C. The device has no register map in the usual sense: every operation is
// a 16-bit big-endian command word followed (for reads) by a 3-byte reply of
// two data bytes and a CRC byte that this driver does not validate, mirroring
// the reference Python tool this package was ported from.
package flowsensor

import (
	"fmt"
	"time"

	"periph.io/x/periph/conn/i2c"
)

// Default I2C address of the SFM3x00 family.
const DefaultAddr uint16 = 0x40

// Command words, big-endian on the wire.
const (
	cmdReadScale   = 0x30DE
	cmdReadOffset  = 0x30DF
	cmdReadSerial1 = 0x31AE
	cmdStartFlow   = 0x1000
)

// settleDelay is how long the sensor needs after cmdStartFlow before its
// first reading is meaningful.
const settleDelay = 100 * time.Millisecond

// Sensor reads scaled standard-liters-per-minute from an SFM3x00 over an
// i2c.Bus. It satisfies internal/sensor.Reader.
type Sensor struct {
	dev    i2c.Dev
	offset uint16
	scale  float64
	serial uint32
}

// New wraps bus as an SFM3x00 at addr. It does not touch the device; call
// Prepare to run the calibration read-out and arm continuous flow mode.
func New(bus i2c.Bus, addr uint16) *Sensor {
	return &Sensor{dev: i2c.Dev{Bus: bus, Addr: addr}}
}

// Prepare reads the sensor's factory offset, scale factor, and serial
// number, then issues the start-continuous-flow command. It must be called
// exactly once before ReadScaled.
func (s *Sensor) Prepare() error {
	offset, err := s.readWord(cmdReadOffset)
	if err != nil {
		return fmt.Errorf("flowsensor: read offset: %w", err)
	}
	s.offset = offset

	scaleRaw, err := s.readWord(cmdReadScale)
	if err != nil {
		return fmt.Errorf("flowsensor: read scale: %w", err)
	}
	s.scale = float64(scaleRaw)

	if err := s.writeCommand(cmdReadSerial1); err != nil {
		return fmt.Errorf("flowsensor: read serial: %w", err)
	}
	var serialFrame [6]byte
	if err := s.dev.Tx(nil, serialFrame[:]); err != nil {
		return fmt.Errorf("flowsensor: read serial: %w", err)
	}
	// Bytes 2 and 5 are per-frame CRCs and are discarded, matching the two
	// concatenated 3-byte reply frames the sensor emits for one serial
	// number command.
	hi := uint16(serialFrame[0])<<8 | uint16(serialFrame[1])
	lo := uint16(serialFrame[3])<<8 | uint16(serialFrame[4])
	s.serial = uint32(hi)<<16 | uint32(lo)

	if err := s.writeCommand(cmdStartFlow); err != nil {
		return fmt.Errorf("flowsensor: start flow: %w", err)
	}
	time.Sleep(settleDelay)

	// The sensor emits one throwaway frame immediately after arming
	// continuous mode; discard it so the first ReadScaled is a steady-state
	// sample.
	var discard [3]byte
	if err := s.dev.Tx(nil, discard[:]); err != nil {
		return fmt.Errorf("flowsensor: discard startup frame: %w", err)
	}

	lg.Infof("sfm3x00 ready: serial=%d offset=%d scale=%.1f", s.serial, s.offset, s.scale)
	return nil
}

// Serial returns the factory-programmed serial number read during Prepare.
func (s *Sensor) Serial() uint32 { return s.serial }

// ReadScaled returns the current flow in standard liters per minute.
func (s *Sensor) ReadScaled() (float64, error) {
	var frame [3]byte
	if err := s.dev.Tx(nil, frame[:]); err != nil {
		return 0, fmt.Errorf("flowsensor: read: %w", err)
	}
	raw := uint16(frame[0])<<8 | uint16(frame[1])
	return (float64(raw) - float64(s.offset)) / s.scale, nil
}

// Close releases the underlying bus handle, if it implements io.Closer.
func (s *Sensor) Close() error {
	if c, ok := s.dev.Bus.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}

func (s *Sensor) writeCommand(cmd uint16) error {
	w := []byte{byte(cmd >> 8), byte(cmd)}
	return s.dev.Tx(w, nil)
}

func (s *Sensor) readWord(cmd uint16) (uint16, error) {
	if err := s.writeCommand(cmd); err != nil {
		return 0, err
	}
	var frame [3]byte
	if err := s.dev.Tx(nil, frame[:]); err != nil {
		return 0, err
	}
	return uint16(frame[0])<<8 | uint16(frame[1]), nil
}
