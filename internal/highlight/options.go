package highlight

import "fmt"

// SelectionPolicy controls which accepted segments survive a MaxClips cap.
type SelectionPolicy string

const (
	// SelectChronological keeps the first MaxClips segments in time order.
	SelectChronological SelectionPolicy = "chronological"
	// SelectBestFirst ranks segments by peak energy before capping.
	SelectBestFirst SelectionPolicy = "best-first"
)

// Options is the full analysis parameter record. It is constructed once at
// startup, validated fail-fast, and passed by value; the engine holds no
// global configuration state.
type Options struct {
	// Segment bounds and silence policy.
	MinClipSec        float64
	MaxClipSec        float64
	EndSilenceRunSec  float64
	MaxSilenceFrac    float64
	SilencePercentile float64

	// Hook reordering.
	HookEnabled bool
	HookSec     float64

	// Result capping. MaxClips <= 0 means unlimited.
	MaxClips        int
	SelectionPolicy SelectionPolicy

	// Envelope shaping. SmoothWindow is in frames; zero means the default.
	// NormLowPct/NormHighPct are the percentile references used for
	// per-channel normalization before fusion.
	SmoothWindow int
	NormLowPct   float64
	NormHighPct  float64

	// MotionWeight scales the optional secondary motion/scene channel when
	// one is supplied to BuildEnvelope. Zero keeps the envelope audio-only.
	MotionWeight float64
}

const (
	defaultSmoothWindow = 5
	defaultNormLowPct   = 10
	defaultNormHighPct  = 99
)

// Validate checks the option record before any analysis begins.
func (o Options) Validate() error {
	if o.MinClipSec <= 0 {
		return fmt.Errorf("%w: min clip duration must be positive, got %.3f", ErrConfig, o.MinClipSec)
	}
	if o.MaxClipSec <= 0 {
		return fmt.Errorf("%w: max clip duration must be positive, got %.3f", ErrConfig, o.MaxClipSec)
	}
	if o.MinClipSec > o.MaxClipSec {
		return fmt.Errorf("%w: min clip duration %.3f exceeds max %.3f", ErrConfig, o.MinClipSec, o.MaxClipSec)
	}
	if o.EndSilenceRunSec <= 0 {
		return fmt.Errorf("%w: end silence run must be positive, got %.3f", ErrConfig, o.EndSilenceRunSec)
	}
	if o.MaxSilenceFrac < 0 || o.MaxSilenceFrac > 1 {
		return fmt.Errorf("%w: max silence fraction must be in [0,1], got %.3f", ErrConfig, o.MaxSilenceFrac)
	}
	if o.SilencePercentile < 0 || o.SilencePercentile > 100 {
		return fmt.Errorf("%w: silence percentile must be in [0,100], got %.3f", ErrConfig, o.SilencePercentile)
	}
	if o.HookEnabled && o.HookSec <= 0 {
		return fmt.Errorf("%w: hook duration must be positive when hook reordering is enabled, got %.3f", ErrConfig, o.HookSec)
	}
	switch o.SelectionPolicy {
	case "", SelectChronological, SelectBestFirst:
	default:
		return fmt.Errorf("%w: unknown selection policy %q", ErrConfig, o.SelectionPolicy)
	}
	if o.SmoothWindow < 0 {
		return fmt.Errorf("%w: smooth window must be >= 0, got %d", ErrConfig, o.SmoothWindow)
	}
	if o.NormLowPct != 0 || o.NormHighPct != 0 {
		if o.NormLowPct < 0 || o.NormHighPct > 100 || o.NormLowPct >= o.NormHighPct {
			return fmt.Errorf("%w: normalization percentiles must satisfy 0 <= low < high <= 100, got %.1f/%.1f", ErrConfig, o.NormLowPct, o.NormHighPct)
		}
	}
	if o.MotionWeight < 0 {
		return fmt.Errorf("%w: motion weight must be >= 0, got %.3f", ErrConfig, o.MotionWeight)
	}
	return nil
}

func (o Options) smoothWindow() int {
	if o.SmoothWindow == 0 {
		return defaultSmoothWindow
	}
	return o.SmoothWindow
}

func (o Options) normBounds() (low, high float64) {
	if o.NormLowPct == 0 && o.NormHighPct == 0 {
		return defaultNormLowPct, defaultNormHighPct
	}
	return o.NormLowPct, o.NormHighPct
}

func (o Options) policy() SelectionPolicy {
	if o.SelectionPolicy == "" {
		return SelectChronological
	}
	return o.SelectionPolicy
}
