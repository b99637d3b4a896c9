package highlight

import (
	"fmt"
	"math"
	"sort"
)

// Envelope is the normalized, smoothed energy-over-time series. Frame i
// covers [i*Hop, (i+1)*Hop) seconds. The energy buffer is a flat slice
// indexed by frame; the envelope is built once per input and treated as
// immutable afterward.
type Envelope struct {
	Hop    float64
	Energy []float64
}

// Frames returns the number of envelope frames.
func (e Envelope) Frames() int { return len(e.Energy) }

// Duration returns the envelope duration in seconds.
func (e Envelope) Duration() float64 { return float64(len(e.Energy)) * e.Hop }

// Time returns the start timestamp of frame i in seconds.
func (e Envelope) Time(i int) float64 { return float64(i) * e.Hop }

// BuildEnvelope converts raw per-frame energy readings into a single fused
// envelope. Each channel is normalized to [0,1] against its own percentile
// references, the optional motion channel is blended in with the configured
// weight, and the result is smoothed with a short moving average to suppress
// single-frame spikes. A nil or empty motion series (or a zero weight) keeps
// the envelope audio-only.
func BuildEnvelope(audio []float64, motion []float64, hop float64, opts Options) (Envelope, error) {
	if len(audio) == 0 {
		return Envelope{}, fmt.Errorf("%w: no energy readings supplied", ErrSignal)
	}
	if hop <= 0 {
		return Envelope{}, fmt.Errorf("%w: frame hop must be positive, got %.4f", ErrSignal, hop)
	}

	low, high := opts.normBounds()
	fused := normalize01(audio, low, high)

	if len(motion) > 0 && opts.MotionWeight > 0 {
		m := normalize01(padToLength(motion, len(fused)), low, high)
		if len(fused) < len(m) {
			fused = padToLength(fused, len(m))
		}
		w := opts.MotionWeight
		for i := range fused {
			fused[i] = (fused[i] + w*m[i]) / (1 + w)
		}
	}

	smoothed := smooth(fused, opts.smoothWindow())
	return Envelope{Hop: hop, Energy: smoothed}, nil
}

// normalize01 rescales values so the low percentile maps to 0 and the high
// percentile maps to 1, clipping outliers. A flat series maps to all zeros.
func normalize01(values []float64, lowPct, highPct float64) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
	}
	lo := percentile(values, lowPct)
	hi := percentile(values, highPct)
	if hi <= lo {
		return out
	}
	scale := 1 / (hi - lo)
	for i, v := range values {
		out[i] = math.Min(1, math.Max(0, (v-lo)*scale))
	}
	return out
}

// smooth applies a centered moving average of the given window. Inputs
// shorter than the window are returned unchanged (copied). Window edges use
// zero padding, which slightly damps energy at the track boundaries.
func smooth(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	if window <= 1 || len(values) < window {
		copy(out, values)
		return out
	}
	half := window / 2
	inv := 1 / float64(window)
	sum := 0.0
	// Running sum over [i-half, i-half+window) with zero padding outside.
	for i := 0; i < len(values); i++ {
		addIdx := i + window - 1 - half
		if i == 0 {
			for j := -half; j < window-half; j++ {
				if j >= 0 && j < len(values) {
					sum += values[j]
				}
			}
		} else {
			dropIdx := i - 1 - half
			if dropIdx >= 0 && dropIdx < len(values) {
				sum -= values[dropIdx]
			}
			if addIdx >= 0 && addIdx < len(values) {
				sum += values[addIdx]
			}
		}
		out[i] = sum * inv
	}
	return out
}

// percentile computes the p-th percentile with linear interpolation between
// ranks, matching the conventional definition over a sorted copy.
func percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	if p <= 0 {
		return sorted[0]
	}
	if p >= 100 {
		return sorted[len(sorted)-1]
	}
	rank := p / 100 * float64(len(sorted)-1)
	lower := int(math.Floor(rank))
	upper := int(math.Ceil(rank))
	if lower == upper {
		return sorted[lower]
	}
	frac := rank - float64(lower)
	return sorted[lower]*(1-frac) + sorted[upper]*frac
}

// padToLength extends values to n entries by repeating the final value,
// aligning channels sampled over slightly different spans.
func padToLength(values []float64, n int) []float64 {
	if len(values) >= n {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, n)
	copy(out, values)
	last := values[len(values)-1]
	for i := len(values); i < n; i++ {
		out[i] = last
	}
	return out
}
