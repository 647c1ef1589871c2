// Package respiration reimplements the respiratory-signal extremum
// detector and period/rate helper that the original tool imported from a
// third-party library. There is no equivalent Go package in the ecosystem
// for this narrow a domain, so the algorithm is hand-built from the
// physiological constraint the source relied on: human breathing never
// exceeds about 60 breaths/min, so true extrema are never closer together
// than that rate implies.
package respiration

// MinBreathsPerMin and MaxBreathsPerMin bound plausible human respiratory
// rate; MaxBreathsPerMin sets the minimum spacing enforced between detected
// extrema.
const (
	MinBreathsPerMin = 4.0
	MaxBreathsPerMin = 60.0
)

// Extrema returns the indices of alternating local maxima and minima of
// signal, sampled at rate Hz, suppressing any candidate extremum that
// falls within minSpacing samples (one period at MaxBreathsPerMin) of the
// previously accepted one. The result is
// strictly increasing and alternates max/min/max/... or min/max/min/...
func Extrema(signal []float64, rate float64) []int {
	if len(signal) < 3 {
		return nil
	}
	minSpacing := int(rate * 60.0 / MaxBreathsPerMin)
	if minSpacing < 1 {
		minSpacing = 1
	}

	var candidates []int
	for i := 1; i < len(signal)-1; i++ {
		prev, cur, next := signal[i-1], signal[i], signal[i+1]
		if (cur > prev && cur >= next) || (cur < prev && cur <= next) {
			candidates = append(candidates, i)
		}
	}
	if len(candidates) == 0 {
		return nil
	}

	var out []int
	for _, idx := range candidates {
		if len(out) == 0 {
			out = append(out, idx)
			continue
		}
		last := out[len(out)-1]
		if idx-last < minSpacing {
			// Too close to the last accepted extremum: if both are of the
			// same kind, keep the more extreme one; a candidate of the
			// opposite kind is dropped.
			if sameDirection(signal, last, idx) {
				if moreExtreme(signal, last, idx) {
					out[len(out)-1] = idx
				}
				continue
			}
			continue
		}
		if sameDirection(signal, last, idx) {
			// Two consecutive extrema of the same kind: keep the more
			// extreme one, since a true alternation was missed in between.
			if moreExtreme(signal, last, idx) {
				out[len(out)-1] = idx
			}
			continue
		}
		out = append(out, idx)
	}
	return out
}

func isMax(signal []float64, idx int) bool {
	if idx == 0 || idx == len(signal)-1 {
		return false
	}
	return signal[idx] >= signal[idx-1] && signal[idx] >= signal[idx+1]
}

func sameDirection(signal []float64, a, b int) bool {
	return isMax(signal, a) == isMax(signal, b)
}

func moreExtreme(signal []float64, a, b int) bool {
	if isMax(signal, a) {
		return signal[b] > signal[a]
	}
	return signal[b] < signal[a]
}
