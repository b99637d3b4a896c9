package highlight

import (
	"context"
	"sort"
)

// Result carries the full outcome of one analysis pass.
type Result struct {
	Threshold float64
	Segments  []Segment
	Plans     []ClipPlan
}

// Analyze runs the whole pipeline over an already-built envelope: validate
// options, estimate the silence threshold, scan for segments, apply the
// selection policy and clip cap, and assemble a numbered clip plan per
// surviving segment. An empty plan list is a valid outcome, not an error;
// callers decide whether "nothing to export" warrants a warning.
func Analyze(ctx context.Context, env Envelope, opts Options) (Result, error) {
	if err := opts.Validate(); err != nil {
		return Result{}, err
	}

	threshold, err := Threshold(env, opts.SilencePercentile)
	if err != nil {
		return Result{}, err
	}

	segments, err := Scan(ctx, env, threshold, opts)
	if err != nil {
		return Result{}, err
	}

	selected := applySelection(segments, opts)

	plans := make([]ClipPlan, 0, len(selected))
	for i, seg := range selected {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		plans = append(plans, AssemblePlan(env, seg, i+1, opts))
	}

	return Result{Threshold: threshold, Segments: segments, Plans: plans}, nil
}

// applySelection caps the accepted segments per the configured policy. The
// surviving set is always returned in chronological order so clip numbering
// follows source time regardless of how the cap was chosen.
func applySelection(segments []Segment, opts Options) []Segment {
	if opts.MaxClips <= 0 || len(segments) <= opts.MaxClips {
		return segments
	}

	switch opts.policy() {
	case SelectBestFirst:
		ranked := make([]Segment, len(segments))
		copy(ranked, segments)
		sort.SliceStable(ranked, func(i, j int) bool {
			if ranked[i].PeakEnergy != ranked[j].PeakEnergy {
				return ranked[i].PeakEnergy > ranked[j].PeakEnergy
			}
			return ranked[i].Start < ranked[j].Start
		})
		kept := ranked[:opts.MaxClips]
		out := make([]Segment, len(kept))
		copy(out, kept)
		sort.Slice(out, func(i, j int) bool { return out[i].Start < out[j].Start })
		return out
	default:
		return segments[:opts.MaxClips]
	}
}
