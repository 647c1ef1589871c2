package respiration

import (
	"math"
	"testing"
)

func sineSignal(n int, rate, freq, amplitude float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		t := float64(i) / rate
		out[i] = amplitude * math.Sin(2*math.Pi*freq*t)
	}
	return out
}

func TestExtrema_alternatesMaxMin(t *testing.T) {
	const rate = 50.0
	sig := sineSignal(int(30*rate), rate, 20.0/60.0, 1.0)
	ext := Extrema(sig, rate)
	if len(ext) < 4 {
		t.Fatalf("expected several extrema over 30s at 20 b/min, got %d", len(ext))
	}
	for i := 1; i < len(ext); i++ {
		if ext[i] <= ext[i-1] {
			t.Fatalf("extrema indices must strictly increase: %v", ext)
		}
	}
	for i := 1; i < len(ext); i++ {
		if sameDirection(sig, ext[i-1], ext[i]) {
			t.Fatalf("consecutive extrema %d,%d must alternate max/min", ext[i-1], ext[i])
		}
	}
}

func TestExtrema_flatSignalYieldsNone(t *testing.T) {
	sig := make([]float64, 200)
	if ext := Extrema(sig, 50); len(ext) != 0 {
		t.Errorf("constant signal should yield no extrema, got %v", ext)
	}
}

func TestExtrema_suppressesImplausiblySpacedCandidates(t *testing.T) {
	const rate = 50.0
	// A fast wobble well above 60 breaths/min layered on top shouldn't
	// produce extrema closer than the minimum spacing.
	sig := sineSignal(int(10*rate), rate, 3.0, 1.0) // 180 cycles/min, implausible
	ext := Extrema(sig, rate)
	minSpacing := int(rate * 60.0 / MaxBreathsPerMin)
	for i := 1; i < len(ext); i++ {
		if ext[i]-ext[i-1] < minSpacing {
			t.Errorf("extrema %d and %d are closer than minSpacing=%d", ext[i-1], ext[i], minSpacing)
		}
	}
}
