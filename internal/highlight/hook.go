package highlight

// Range is a half-open time range [Start, End) in source seconds.
type Range struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Duration returns the range length in seconds.
func (r Range) Duration() float64 { return r.End - r.Start }

// ClipPlan is the ordered cut list for one output clip. Its ranges are
// disjoint and, sorted by start time, reconstruct the parent segment's
// [Start, End) exactly: no gap, no overlap, no duplicated time.
type ClipPlan struct {
	Index   int     `json:"index"`
	Segment Segment `json:"segment"`
	Ranges  []Range `json:"ranges"`
}

// Duration returns the total planned clip duration in seconds.
func (p ClipPlan) Duration() float64 {
	total := 0.0
	for _, r := range p.Ranges {
		total += r.Duration()
	}
	return total
}

// AssemblePlan partitions a segment into its cut list. With hook reordering
// enabled the maximum-energy window of HookSec is emitted first, followed by
// the pre-hook remainder and then the post-hook remainder, producing a
// climax-first clip that reads as a loop. Zero-length remainders are dropped.
// When reordering is disabled, or the hook covers the whole segment, the plan
// is the segment itself.
func AssemblePlan(env Envelope, seg Segment, index int, opts Options) ClipPlan {
	plan := ClipPlan{Index: index, Segment: seg}

	hookFrames := framesFor(opts.HookSec, env.Hop)
	segFrames := seg.EndFrame - seg.StartFrame
	if !opts.HookEnabled || hookFrames <= 0 || hookFrames >= segFrames {
		plan.Ranges = []Range{{Start: seg.Start, End: seg.End}}
		return plan
	}

	hookStart := LocateClimax(env, seg, hookFrames)
	hookEnd := hookStart + hookFrames

	plan.Ranges = append(plan.Ranges, Range{Start: env.Time(hookStart), End: env.Time(hookEnd)})
	if hookStart > seg.StartFrame {
		plan.Ranges = append(plan.Ranges, Range{Start: seg.Start, End: env.Time(hookStart)})
	}
	if hookEnd < seg.EndFrame {
		plan.Ranges = append(plan.Ranges, Range{Start: env.Time(hookEnd), End: seg.End})
	}
	return plan
}
