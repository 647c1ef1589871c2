// Package integrator accumulates flow into tidal volume and resynchronizes
// the running total to zero at each detected breath onset.
package integrator

import "splitvent/internal/clock"

// IntegratedSample adds the running and incremental volume to a timed flow
// and pressure reading.
type IntegratedSample struct {
	N     uint64
	T     float64
	DT    float64
	Slm   float64
	CmH2O float64
	DV    float64
	V     float64
}

// idleDebounce is the minimum time between resets, preventing a noisy
// zero-crossing from retriggering mid-breath.
const idleDebounce = 0.25 // seconds

// peakTimeout bounds how long a breath may run before a reset is allowed
// purely on elapsed time, independent of the volume collapse condition.
const peakTimeout = 10.0 // seconds

// collapseFraction is the fraction of VPeak that V must fall below for a
// reset to be allowed before peakTimeout elapses.
const collapseFraction = 0.1

// Integrator holds the running tidal volume and the breath-onset reset
// state machine described by the two hysteresis timers idledUntil and
// peakUntil.
type Integrator struct {
	v          float64
	vPeak      float64
	lastSlm    float64
	idledUntil float64
	peakUntil  float64
}

// New returns an Integrator with V and VPeak at zero.
func New() *Integrator {
	return &Integrator{}
}

// Step folds one TimedSample into the running volume, resetting V to zero
// if this sample's flow crosses from expiration (negative) to inspiration
// (non-negative) and enough time has passed since the last reset.
func (i *Integrator) Step(s clock.TimedSample) IntegratedSample {
	slm := s.Value.Slm
	dV := s.DT * slm * 1000.0 / 60.0
	i.v += dV

	crossedUp := i.lastSlm < 0 && slm >= 0
	debounced := s.T > i.idledUntil
	collapsed := s.T > i.peakUntil || i.v < collapseFraction*i.vPeak
	if crossedUp && debounced && collapsed {
		i.v = 0
		i.vPeak = 0
		i.peakUntil = s.T + peakTimeout
		i.idledUntil = s.T + idleDebounce
	}

	if i.v > i.vPeak {
		i.vPeak = i.v
	}
	i.lastSlm = slm

	return IntegratedSample{
		N: s.N, T: s.T, DT: s.DT,
		Slm: slm, CmH2O: s.Value.CmH2O,
		DV: dV, V: i.v,
	}
}
