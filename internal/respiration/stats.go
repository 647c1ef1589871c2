package respiration

// Stats returns, for each interior extremum in extrema (skipping the
// first), the half-cycle period (seconds), the instantaneous rate
// (breaths/min) implied by twice that half-cycle, and the amplitude
// (signal units) between it and the preceding extremum. All three slices
// have length len(extrema)-1.
func Stats(extrema []int, signal []float64, rate float64) (period, bpm, amplitude []float64) {
	if len(extrema) < 2 {
		return nil, nil, nil
	}
	n := len(extrema) - 1
	period = make([]float64, n)
	bpm = make([]float64, n)
	amplitude = make([]float64, n)
	for i := 1; i < len(extrema); i++ {
		dSamples := extrema[i] - extrema[i-1]
		halfPeriod := float64(dSamples) / rate
		period[i-1] = 2 * halfPeriod
		if halfPeriod > 0 {
			bpm[i-1] = 60.0 / (2 * halfPeriod)
		}
		amp := signal[extrema[i]] - signal[extrema[i-1]]
		if amp < 0 {
			amp = -amp
		}
		amplitude[i-1] = amp
	}
	return period, bpm, amplitude
}
