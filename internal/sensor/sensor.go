// Package sensor defines the capability interface shared by the real and
// virtual flow and pressure drivers, plus the error taxonomy used to tell
// a fatal bus failure apart from a recoverable per-sample condition.
package sensor

import "fmt"

// Reader is implemented by both real (I2C) and virtual sensors. It lets the
// acquisition loop treat a Sensirion SFM3x00, a Honeywell SSC, and their
// fakes identically.
type Reader interface {
	// Prepare puts the device into steady-state measurement mode. It is
	// called once after Open and is a no-op for devices that need no
	// command phase.
	Prepare() error
	// ReadScaled blocks for one reading and returns it converted to the
	// sensor's physical unit (slm for flow, cmH2O for pressure).
	ReadScaled() (float64, error)
	// Close releases the underlying bus handle. Safe to call more than
	// once.
	Close() error
}

// IOError wraps a failure opening, binding, or transacting on the I2C bus.
// It is always fatal: the pipeline cannot continue without its sensors.
type IOError struct {
	Op  string
	Err error
}

func (e *IOError) Error() string { return fmt.Sprintf("sensor: %s: %v", e.Op, e.Err) }
func (e *IOError) Unwrap() error { return e.Err }

// DiagnosticError reports a sensor-asserted diagnostic condition (the
// Honeywell SSC's status bits). It is recoverable: the caller should skip
// the sample and keep reading.
type DiagnosticError struct {
	Status uint16
}

func (e *DiagnosticError) Error() string {
	return fmt.Sprintf("sensor: diagnostic condition reported, status=0x%04x", e.Status)
}
