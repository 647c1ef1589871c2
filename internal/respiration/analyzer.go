package respiration

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"splitvent/internal/integrator"
	"splitvent/internal/ringbuffer"
)

// TidalMetrics is one pass's worth of clinical breath metrics.
type TidalMetrics struct {
	VTi  float64 // mL
	VTe  float64 // mL
	RR   float64 // breaths/min
	MVe  float64 // L/min
	PPk  float64 // cmH2O
	PEEP float64 // cmH2O
}

// AnalysisFailure reports that an analysis pass raised instead of
// completing. The source logs these as "tidal failed" and skips the cycle
// rather than propagating the error.
type AnalysisFailure struct {
	Err error
}

func (e *AnalysisFailure) Error() string { return fmt.Sprintf("tidal failed: %v", e.Err) }
func (e *AnalysisFailure) Unwrap() error { return e.Err }

// veRingSize is the number of recent VTe values averaged into MVe.
const veRingSize = 3

// Analyzer holds the rolling volume/pressure window and produces
// TidalMetrics from it. It is not safe for concurrent use; the pipeline
// runs one Analyzer per Analyze worker.
type Analyzer struct {
	rate     float64
	volume   *ringbuffer.Buffer[float64]
	pressure *ringbuffer.Buffer[float64]
	veRing   *ringbuffer.Buffer[float64]
}

// NewAnalyzer returns an Analyzer with a window of window samples at the
// given sample rate.
func NewAnalyzer(window int, sampleRate float64) *Analyzer {
	return &Analyzer{
		rate:     sampleRate,
		volume:   ringbuffer.New[float64](window),
		pressure: ringbuffer.New[float64](window),
		veRing:   ringbuffer.New[float64](veRingSize),
	}
}

// Push adds one integrated sample to the rolling window.
func (a *Analyzer) Push(s integrator.IntegratedSample) {
	a.volume.Append(s.V)
	a.pressure.Append(s.CmH2O)
}

// Analyze runs one analysis pass over the current window. ok is false (and
// metrics the zero value) when fewer than five extrema are in the window —
// this is the documented "skip silently" case, not a failure. err is
// non-nil only for an AnalysisFailure.
func (a *Analyzer) Analyze() (metrics TidalMetrics, ok bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			metrics = TidalMetrics{}
			ok = false
			err = &AnalysisFailure{Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	vsig := a.volume.Ordered()
	extrema := Extrema(vsig, a.rate)
	if len(extrema) <= 4 {
		return TidalMetrics{}, false, nil
	}

	s := make([]float64, len(extrema))
	for i, idx := range extrema {
		s[i] = vsig[idx]
	}

	var vti, vte float64
	last, prev, prevPrev := s[len(s)-1], s[len(s)-2], s[len(s)-3]
	if last < prev {
		// last extremum is a minimum: we just finished an expiration.
		vti = prev - prevPrev
		vte = prev - last
	} else {
		// last extremum is a maximum: we just finished an inspiration.
		vte = prevPrev - prev
		vti = last - prev
	}

	a.veRing.Append(vte)
	avgVTe := stat.Mean(a.veRing.Ordered(), nil)

	_, bpm, _ := Stats(extrema, vsig, a.rate)
	rr := bpm[len(bpm)-1]
	mve := (rr * avgVTe) / 1000.0

	pwin := a.pressure.Ordered()
	ppk, peep := floats.Max(pwin), floats.Min(pwin)

	return TidalMetrics{VTi: vti, VTe: vte, RR: rr, MVe: mve, PPk: ppk, PEEP: peep}, true, nil
}
