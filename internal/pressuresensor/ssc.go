// Package pressuresensor drives a Honeywell TruStability SSC-series
// pressure sensor over I2C. The SSC has no command phase: every transaction
// is a bare 2-byte big-endian read of the last conversion, with the top two
// bits of the word carrying a diagnostic status and the low 14 bits the
// raw count.
package pressuresensor

import (
	"fmt"

	"periph.io/x/periph/conn/i2c"
	"splitvent/internal/sensor"
)

// Default I2C address for an SSC wired to address pin 2.
const DefaultAddr uint16 = 0x28

// cmH2OPerPSI converts psig, the SSC's native transfer-function unit, to
// centimeters of water.
const cmH2OPerPSI = 70.307

// Range describes the sensor's calibrated full-scale pressure range, as
// printed on the part's datasheet range code (for example "005PG" is 0 to 5
// psig).
type Range struct {
	Min, Max float64
}

// RangeCode005PG is the range of the part used by the reference hardware:
// 0 to 5 psig.
var RangeCode005PG = Range{Min: 0, Max: 5}

// TransferFunction describes the counts that correspond to the range's
// endpoints. "Function A" parts report the low end of range at 10% of
// full-scale counts and the high end at 90%.
type TransferFunction struct {
	ReportMin, ReportMax float64
}

// TransferFunctionA is the transfer function of part type "A", used by the
// reference hardware: 10%-90% of a 14-bit count.
var TransferFunctionA = TransferFunction{
	ReportMin: 1<<14 * 0.10,
	ReportMax: 1<<14 * 0.90,
}

// Sensor reads scaled cmH2O pressure from a Honeywell SSC over an i2c.Bus.
// It satisfies internal/sensor.Reader.
type Sensor struct {
	dev           i2c.Dev
	rng           Range
	xferFunc      TransferFunction
	measuredScale float64
	reportScale   float64
}

// New wraps bus as an SSC at addr, calibrated per rng and xfer.
func New(bus i2c.Bus, addr uint16, rng Range, xfer TransferFunction) *Sensor {
	return &Sensor{
		dev:           i2c.Dev{Bus: bus, Addr: addr},
		rng:           rng,
		xferFunc:      xfer,
		measuredScale: rng.Max - rng.Min,
		reportScale:   xfer.ReportMax - xfer.ReportMin,
	}
}

// Prepare is a no-op: the SSC streams conversions continuously and needs no
// arming command. It exists to satisfy internal/sensor.Reader.
func (s *Sensor) Prepare() error {
	lg.Infof("ssc ready: range=[%.1f,%.1f] xfer=[%.0f,%.0f]",
		s.rng.Min, s.rng.Max, s.xferFunc.ReportMin, s.xferFunc.ReportMax)
	return nil
}

// ReadScaled returns the current pressure in cmH2O.
func (s *Sensor) ReadScaled() (float64, error) {
	var frame [2]byte
	if err := s.dev.Tx(nil, frame[:]); err != nil {
		return 0, fmt.Errorf("pressuresensor: read: %w", err)
	}
	report := uint16(frame[0])<<8 | uint16(frame[1])
	if report&0xc000 != 0 {
		return 0, &sensor.DiagnosticError{Status: report >> 14}
	}
	raw := float64(report & 0x3fff)
	psig := (s.measuredScale/s.reportScale)*(raw-s.xferFunc.ReportMin) + s.rng.Min
	return psig * cmH2OPerPSI, nil
}

// Close releases the underlying bus handle, if it implements io.Closer.
func (s *Sensor) Close() error {
	if c, ok := s.dev.Bus.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}
