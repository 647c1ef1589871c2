// Package virtualsensor provides deterministic synthetic flow and pressure
// generators for running the pipeline without real hardware attached. They
// are cheezy but get us going for testing with --fake.
package virtualsensor

import (
	"math"
	"time"
)

const defaultPeriod = 3 * time.Second

// Flow is a synthetic SFM3x00 replacement. It produces a sinusoid that
// sweeps from min to max and back over one breath period, the same shape a
// sine-driven test lung produces on a flow sensor.
type Flow struct {
	Min, Max float64
	Period   time.Duration
	start    time.Time
}

// NewFlow returns a Flow sweeping between min and max slm once per period.
// A zero period defaults to 3 seconds, matching a 20 breath/min test rate.
func NewFlow(min, max float64, period time.Duration) *Flow {
	if period <= 0 {
		period = defaultPeriod
	}
	return &Flow{Min: min, Max: max, Period: period}
}

// Prepare records the generator's start time as its phase anchor.
func (f *Flow) Prepare() error {
	f.start = time.Now()
	return nil
}

// ReadScaled returns the next point on the sine wave.
func (f *Flow) ReadScaled() (float64, error) {
	rng := f.Max - f.Min
	phase := math.Mod(time.Since(f.start).Seconds(), f.Period.Seconds())
	v := phase * (2 * math.Pi) / f.Period.Seconds()
	r := (math.Sin(v) + 1.0) * 0.5 * rng
	return r + f.Min, nil
}

// Close is a no-op; there is no underlying handle to release.
func (f *Flow) Close() error { return nil }

// Pressure is a synthetic Honeywell SSC replacement. It produces a square
// wave between min and max, approximating the inspiratory plateau and PEEP
// baseline of a pressure-controlled breath.
type Pressure struct {
	Min, Max float64
	Period   time.Duration
	start    time.Time
}

// NewPressure returns a Pressure alternating between min and max once per
// period. A zero period defaults to 3 seconds.
func NewPressure(min, max float64, period time.Duration) *Pressure {
	if period <= 0 {
		period = defaultPeriod
	}
	return &Pressure{Min: min, Max: max, Period: period}
}

// Prepare records the generator's start time as its phase anchor.
func (p *Pressure) Prepare() error {
	p.start = time.Now()
	return nil
}

// ReadScaled returns the current step of the square wave.
func (p *Pressure) ReadScaled() (float64, error) {
	rng := p.Max - p.Min
	phase := math.Mod(time.Since(p.start).Seconds(), p.Period.Seconds())
	v := phase * (2 * math.Pi) / p.Period.Seconds()
	r := (math.Copysign(1, math.Sin(v)) + 1.0) * 0.5 * rng
	return r + p.Min, nil
}

// Close is a no-op; there is no underlying handle to release.
func (p *Pressure) Close() error { return nil }
