package highlight

import "fmt"

// Threshold derives the silence threshold for an envelope: the p-th
// percentile of its energy values. Frames strictly below the threshold are
// classified silent. A zero-variance envelope (all values equal) returns the
// shared value itself, so that every frame classifies non-silent and a flat
// track is never silenced wholesale.
func Threshold(env Envelope, pct float64) (float64, error) {
	if pct < 0 || pct > 100 {
		return 0, fmt.Errorf("%w: silence percentile must be in [0,100], got %.3f", ErrConfig, pct)
	}
	if env.Frames() == 0 {
		return 0, fmt.Errorf("%w: envelope is empty", ErrSignal)
	}

	min, max := env.Energy[0], env.Energy[0]
	for _, v := range env.Energy[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	if min == max {
		// Flat envelope: nothing is below the minimum, so no frame is silent.
		return min, nil
	}
	return percentile(env.Energy, pct), nil
}
