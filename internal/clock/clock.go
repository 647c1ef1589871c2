// Package clock combines the flow and pressure sensors into fused samples
// and paces them to a fixed sample rate anchored to an absolute schedule,
// so that slow ticks never accumulate drift across a long acquisition run.
package clock

import (
	"errors"
	"fmt"
	"time"

	"splitvent/internal/sensor"
)

// FusedSample is one tick of combined flow and pressure readings.
type FusedSample struct {
	Slm   float64
	CmH2O float64
}

// TimedSample timestamps a FusedSample against the acquisition's monotonic
// sequence and elapsed wall-clock time.
type TimedSample struct {
	N     uint64
	T     float64
	DT    float64
	Value FusedSample
}

// Combiner reads one flow reading and one pressure reading per call,
// folding a SensorDiagnostic from the pressure channel into the returned
// error so the caller can decide whether to skip the tick.
type Combiner struct {
	Flow     sensor.Reader
	Pressure sensor.Reader
}

// NewCombiner pairs a flow and a pressure reader. Both must already have
// had Prepare called.
func NewCombiner(flow, pressure sensor.Reader) *Combiner {
	return &Combiner{Flow: flow, Pressure: pressure}
}

// Read returns the next fused sample, or an error from whichever sensor
// failed.
func (c *Combiner) Read() (FusedSample, error) {
	slm, err := c.Flow.ReadScaled()
	if err != nil {
		return FusedSample{}, fmt.Errorf("combiner: flow: %w", err)
	}
	cmH2O, err := c.Pressure.ReadScaled()
	if err != nil {
		return FusedSample{}, fmt.Errorf("combiner: pressure: %w", err)
	}
	return FusedSample{Slm: slm, CmH2O: cmH2O}, nil
}

// Source produces the next fused sample, blocking on hardware I/O as
// needed. *Combiner satisfies this.
type Source interface {
	Read() (FusedSample, error)
}

// nowFunc and sleepFunc are indirected for deterministic tests.
type nowFunc func() time.Time
type sleepFunc func(time.Duration)

// SampleClock pulls from a Source and emits TimedSample at a fixed rate,
// anchored to an absolute schedule t0 + n/sr rather than incrementally
// accumulated sleeps, so jitter in any one tick does not compound.
type SampleClock struct {
	Source Source
	Rate   float64 // samples per second

	now   nowFunc
	sleep sleepFunc
}

// New returns a SampleClock pulling from src at rate samples/second.
func New(src Source, rate float64) *SampleClock {
	return &SampleClock{Source: src, Rate: rate, now: time.Now, sleep: time.Sleep}
}

// Run pulls samples from the Source and sends a TimedSample on out for
// each, until stop is closed or the Source returns an error. A
// sensor.DiagnosticError is recoverable: that reading is skipped, nothing is
// emitted for it, and the Source is read again. Any other error is returned,
// or nil if stop fired first.
//
// Run owns the pacing: after each emission it sleeps until the next
// scheduled tick boundary so long runs do not drift.
func (c *SampleClock) Run(out chan<- TimedSample, stop <-chan struct{}) error {
	t0 := c.now()
	lastT := t0.Add(-time.Duration(float64(time.Second) / c.Rate))
	var n uint64
	for {
		select {
		case <-stop:
			return nil
		default:
		}

		v, err := c.Source.Read()
		if err != nil {
			var diag *sensor.DiagnosticError
			if errors.As(err, &diag) {
				continue
			}
			return err
		}
		t := c.now()
		dT := t.Sub(lastT).Seconds()
		sample := TimedSample{N: n, T: t.Sub(t0).Seconds(), DT: dT, Value: v}

		select {
		case out <- sample:
		case <-stop:
			return nil
		}

		n++
		lastT = t
		scheduled := t0.Add(time.Duration(float64(n) / c.Rate * float64(time.Second)))
		if d := scheduled.Sub(c.now()); d > 0 {
			c.sleep(d)
		}
	}
}
