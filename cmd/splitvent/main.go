// Command splitvent reads a Sensirion SFM3x00 flow sensor and a Honeywell
// SSC pressure sensor over I2C, integrates flow to tidal volume, derives
// breath metrics, and prints a live terminal gauge. It is the acquisition
// and analysis core; the graphical waveform renderer described alongside
// it is an external collaborator not implemented here.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/maruel/interrupt"

	"splitvent/internal/clock"
	"splitvent/internal/flowsensor"
	"splitvent/internal/i2cbus"
	"splitvent/internal/integrator"
	"splitvent/internal/logfile"
	"splitvent/internal/pipeline"
	"splitvent/internal/pressuresensor"
	"splitvent/internal/respiration"
	"splitvent/internal/sensor"
	"splitvent/internal/virtualsensor"
)

const displayDuration = 15.0 // seconds, sizes the analyzer's rolling window: W = 2*sr*displayDuration

var sscRanges = map[string]pressuresensor.Range{
	"005PG": pressuresensor.RangeCode005PG,
	"015PG": {Min: 0, Max: 15},
}

var sscTransferFuncs = map[string]pressuresensor.TransferFunction{
	"A": pressuresensor.TransferFunctionA,
	"B": {ReportMin: 1 << 14 * 0.05, ReportMax: 1 << 14 * 0.95},
	"C": {ReportMin: 1 << 14 * 0.05, ReportMax: 1 << 14 * 0.85},
	"F": {ReportMin: 1 << 14 * 0.04, ReportMax: 1 << 14 * 0.94},
}

func mainImpl() error {
	fake := flag.Bool("fake", false, "use synthetic sensor data for demo")
	sampleRate := flag.Float64("samplerate", 50.0, "flow/pressure sampling rate in Hz")
	duration := flag.Float64("duration", 15.0, "number of seconds to run before exiting (0 = run until interrupted)")
	logData := flag.Bool("log", false, "write a JSON trace of every sample to a log file")
	quiet := flag.Bool("quiet", false, "suppress the terminal gauge")
	sscRangeName := flag.String("sscrange", "005PG", "Honeywell SSC sensor range code (005PG, 015PG)")
	sscXferName := flag.String("sscxfer", "A", "Honeywell SSC sensor transfer function code (A, B, C, F)")
	flag.Parse()

	sscRange, ok := sscRanges[*sscRangeName]
	if !ok {
		return fmt.Errorf("splitvent: unknown --sscrange %q", *sscRangeName)
	}
	sscXfer, ok := sscTransferFuncs[*sscXferName]
	if !ok {
		return fmt.Errorf("splitvent: unknown --sscxfer %q", *sscXferName)
	}

	flow, pressure, err := openSensors(*fake, sscRange, sscXfer)
	if err != nil {
		return err
	}
	defer flow.Close()
	defer pressure.Close()

	if err := flow.Prepare(); err != nil {
		return err
	}
	if err := pressure.Prepare(); err != nil {
		return err
	}

	var log *logfile.File
	if *logData {
		log, err = logfile.Create(*sampleRate, time.Now())
		if err != nil {
			return err
		}
		defer log.Close()
	}

	combiner := clock.NewCombiner(flow, pressure)
	clk := clock.New(combiner, *sampleRate)
	ig := integrator.New()
	window := int(2 * *sampleRate * displayDuration)
	analyzer := respiration.NewAnalyzer(window, *sampleRate)
	q := pipeline.NewQueues()

	interrupt.HandleCtrlC()

	acquireDone := make(chan error, 1)
	analyzeDone := make(chan error, 1)
	go func() { acquireDone <- pipeline.Acquire(clk, ig, q) }()
	go func() { analyzeDone <- pipeline.Analyze(analyzer, q) }()

	var durationTimer <-chan time.Time
	if *duration > 0 {
		durationTimer = time.After(time.Duration(*duration * float64(time.Second)))
	}

	go printLoop(q, log, *quiet)

	select {
	case <-interrupt.Channel:
	case <-durationTimer:
	}
	q.Signal()

	var acqErr, anaErr error
	for i := 0; i < 2; i++ {
		select {
		case acqErr = <-acquireDone:
		case anaErr = <-analyzeDone:
		}
	}
	if acqErr != nil {
		return acqErr
	}
	return anaErr
}

func openSensors(fake bool, rng pressuresensor.Range, xfer pressuresensor.TransferFunction) (sensor.Reader, sensor.Reader, error) {
	if fake {
		return virtualsensor.NewFlow(-30, 30, 3*time.Second),
			virtualsensor.NewPressure(2, 20, 3*time.Second), nil
	}
	flowBus, err := i2cbus.Open(1, flowsensor.DefaultAddr)
	if err != nil {
		return nil, nil, &sensor.IOError{Op: "open flow bus", Err: err}
	}
	pressureBus, err := i2cbus.Open(1, pressuresensor.DefaultAddr)
	if err != nil {
		flowBus.Close()
		return nil, nil, &sensor.IOError{Op: "open pressure bus", Err: err}
	}
	return flowsensor.New(flowBus, flowsensor.DefaultAddr),
		pressuresensor.New(pressureBus, pressuresensor.DefaultAddr, rng, xfer), nil
}

// printLoop drains the UI and tidal queues and renders a terminal gauge. It
// stands in for the external waveform renderer the full system pairs with.
func printLoop(q *pipeline.Queues, log *logfile.File, quiet bool) {
	for {
		select {
		case <-q.Finish:
			return
		case s, ok := <-q.UI:
			if !ok {
				return
			}
			if log != nil {
				log.Write(s.T, s.Slm, s.CmH2O)
			}
			if !quiet {
				fmt.Printf("\r%8.2fs  %6.1f slm  %6.1f cmH2O  V=%7.1f mL  ", s.T, s.Slm, s.CmH2O, s.V)
			}
		case m, ok := <-q.Tidal:
			if !ok {
				return
			}
			if !quiet {
				fmt.Printf("VTi=%.0f VTe=%.0f RR=%.1f MVe=%.2f PPk=%.1f PEEP=%.1f",
					m.VTi, m.VTe, m.RR, m.MVe, m.PPk, m.PEEP)
			}
		}
	}
}

func main() {
	if err := mainImpl(); err != nil {
		fmt.Fprintf(os.Stderr, "splitvent: %s.\n", err)
		os.Exit(1)
	}
}
