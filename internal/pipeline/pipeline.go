// Package pipeline wires the Acquire and Analyze worker stages together
// with bounded channels and a shared finish sentinel, the way the source
// wired two OS processes together with multiprocessing queues. Here both
// stages are goroutines; the algorithmic contract — FIFO delivery, blocking
// receive with a timeout, non-blocking drain, clean shutdown on a shared
// sentinel — is identical.
package pipeline

import (
	"fmt"
	"time"

	"splitvent/internal/clock"
	"splitvent/internal/integrator"
	"splitvent/internal/respiration"
)

// queueDepth bounds the Acquire->Analyze channels. A producer that outruns
// its consumer blocks until the consumer makes room (or the finish sentinel
// fires) rather than growing the queue without bound; the SampleClock's
// anchored schedule absorbs that slippage.
const queueDepth = 256

// analyzeReadTimeout is how long Analyze waits for the first sample of a
// batch before concluding Acquire has died.
const analyzeReadTimeout = 5 * time.Second

// analyzeThrottle is the pause between analysis passes.
const analyzeThrottle = 500 * time.Millisecond

// Queues bundles the channels connecting Acquire, Analyze, and the UI. New
// should be used to construct one with the right buffering.
type Queues struct {
	UI       chan integrator.IntegratedSample
	Analysis chan integrator.IntegratedSample
	Tidal    chan respiration.TidalMetrics
	Finish   chan struct{}
}

// NewQueues allocates a Queues with bounded channels.
func NewQueues() *Queues {
	return &Queues{
		UI:       make(chan integrator.IntegratedSample, queueDepth),
		Analysis: make(chan integrator.IntegratedSample, queueDepth),
		Tidal:    make(chan respiration.TidalMetrics, queueDepth),
		Finish:   make(chan struct{}),
	}
}

// Signal posts the finish sentinel. It is safe to call more than once.
func (q *Queues) Signal() {
	select {
	case <-q.Finish:
	default:
		close(q.Finish)
	}
}

// Source is whatever SampleClock feeds into Acquire: a thing that returns
// fused flow/pressure readings.
type Source = clock.Source

// Acquire owns the sensors indirectly through clk and the integrator ig.
// It loops Combiner (inside clk.Source) -> SampleClock -> Integrator ->
// put(ui) and put(analysis), exiting when q.Finish fires or clk.Run
// returns an error (a fatal SensorIo bubbling up from the Combiner).
func Acquire(clk *clock.SampleClock, ig *integrator.Integrator, q *Queues) error {
	raw := make(chan clock.TimedSample, queueDepth)
	runErr := make(chan error, 1)
	go func() { runErr <- clk.Run(raw, q.Finish) }()

	for {
		select {
		case <-q.Finish:
			return nil
		case err := <-runErr:
			return err
		case t, ok := <-raw:
			if !ok {
				return nil
			}
			sample := ig.Step(t)
			select {
			case q.UI <- sample:
			case <-q.Finish:
				return nil
			}
			select {
			case q.Analysis <- sample:
			case <-q.Finish:
				return nil
			}
		}
	}
}

// Analyze owns the BreathAnalyzer. It reads Analysis in batches — a
// blocking receive with a timeout, then a non-blocking drain — runs one
// pass, and emits metrics. It exits on the finish sentinel or on a read
// timeout, which is treated as upstream death.
func Analyze(a *respiration.Analyzer, q *Queues) error {
	for {
		select {
		case <-q.Finish:
			return nil
		case first, ok := <-q.Analysis:
			if !ok {
				return nil
			}
			a.Push(first)
			drain(a, q.Analysis)
		case <-time.After(analyzeReadTimeout):
			return fmt.Errorf("pipeline: analyze: failed to get readings from acquire")
		}

		metrics, ok, err := a.Analyze()
		if err != nil {
			lg.Warningf("%v", err)
		} else if ok {
			select {
			case q.Tidal <- metrics:
			case <-q.Finish:
				return nil
			}
		}

		select {
		case <-q.Finish:
			return nil
		case <-time.After(analyzeThrottle):
		}
	}
}

func drain(a *respiration.Analyzer, in <-chan integrator.IntegratedSample) {
	for {
		select {
		case s := <-in:
			a.Push(s)
		default:
			return
		}
	}
}
