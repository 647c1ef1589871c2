package pressuresensor

import (
	"errors"
	"testing"

	"periph.io/x/periph/conn/i2c/i2ctest"
	"splitvent/internal/sensor"
)

func wordFrame(v uint16) []byte { return []byte{byte(v >> 8), byte(v)} }

func TestReadScaled_midRange(t *testing.T) {
	// report = 0x2000 (8192) is the report midpoint for function A
	// (10%-90% of 16384), which should land near the middle of the range.
	bus := &i2ctest.Playback{Ops: []i2ctest.IO{
		{Addr: DefaultAddr, W: nil, R: wordFrame(8192)},
	}}
	s := New(bus, DefaultAddr, RangeCode005PG, TransferFunctionA)
	got, err := s.ReadScaled()
	if err != nil {
		t.Fatal(err)
	}
	wantPSIG := 2.5
	wantCmH2O := wantPSIG * cmH2OPerPSI
	if diff := got - wantCmH2O; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("ReadScaled() = %v, want %v", got, wantCmH2O)
	}
}

func TestReadScaled_diagnosticBitsSet(t *testing.T) {
	bus := &i2ctest.Playback{Ops: []i2ctest.IO{
		{Addr: DefaultAddr, W: nil, R: wordFrame(0xc000)},
	}}
	s := New(bus, DefaultAddr, RangeCode005PG, TransferFunctionA)
	_, err := s.ReadScaled()
	var diag *sensor.DiagnosticError
	if !errors.As(err, &diag) {
		t.Fatalf("expected a *sensor.DiagnosticError, got %v", err)
	}
}

func TestReadScaled_zeroCounts(t *testing.T) {
	// report_min for function A is 1638.4 counts, which the 14-bit wire word
	// cannot carry. The nearest whole report, 1638, sits 0.4 counts below it:
	// (5/13107.2) psig/count * -0.4 counts * 70.307 = -0.010727996826171875
	// cmH2O below the range minimum.
	bus := &i2ctest.Playback{Ops: []i2ctest.IO{
		{Addr: DefaultAddr, W: nil, R: wordFrame(uint16(TransferFunctionA.ReportMin))},
	}}
	s := New(bus, DefaultAddr, RangeCode005PG, TransferFunctionA)
	got, err := s.ReadScaled()
	if err != nil {
		t.Fatal(err)
	}
	want := RangeCode005PG.Min*cmH2OPerPSI - 0.010727996826171875
	if diff := got - want; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("ReadScaled() at report 1638 = %v, want %v", got, want)
	}
}
