package highlight

import (
	"context"
	"math"
)

// Segment is a validated candidate clip window. Start/End are in seconds,
// StartFrame/EndFrame the half-open frame range [StartFrame, EndFrame).
// Segments returned by Scan are ordered by start and mutually non-overlapping.
type Segment struct {
	Start           float64
	End             float64
	StartFrame      int
	EndFrame        int
	SilenceFraction float64
	PeakEnergy      float64
	PeakTime        float64
}

// Duration returns the segment length in seconds.
func (s Segment) Duration() float64 { return s.End - s.Start }

// Scan performs a single left-to-right pass over the envelope, producing the
// ordered list of accepted segments. A frame is silent when its energy is
// strictly below the threshold.
//
// A tentative segment opens at the first non-silent frame and closes when the
// trailing run of silent frames reaches EndSilenceRunSec (the segment ends
// where that run began) or when it hits MaxClipSec (forced close). A trailing
// active run at end of track closes implicitly at the envelope end. Closed
// segments shorter than MinClipSec or with too large a silent fraction are
// rejected; scanning then resumes one frame past the rejected segment's
// start, so a valid sub-segment beginning later inside the rejected range is
// not lost. After an accepted segment the scan resumes strictly at its end.
//
// The context is checked between finalizing one segment and searching for the
// next; on cancellation no partial result is returned.
func Scan(ctx context.Context, env Envelope, threshold float64, opts Options) ([]Segment, error) {
	n := env.Frames()
	minFrames := framesFor(opts.MinClipSec, env.Hop)
	maxFrames := framesFor(opts.MaxClipSec, env.Hop)
	endRun := framesFor(opts.EndSilenceRunSec, env.Hop)
	if endRun < 1 {
		endRun = 1
	}

	silent := func(i int) bool { return env.Energy[i] < threshold }

	var segments []Segment
	idx := 0
	for idx < n {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		for idx < n && silent(idx) {
			idx++
		}
		if idx >= n {
			break
		}
		start := idx

		end := -1
		run := 0
		for j := start; j < n; j++ {
			if silent(j) {
				run++
			} else {
				run = 0
			}
			if run >= endRun {
				end = j + 1 - run
				break
			}
			if j-start+1 >= maxFrames {
				end = j + 1
				break
			}
		}
		if end < 0 {
			end = n
		}

		frames := end - start
		silentFrames := 0
		for j := start; j < end; j++ {
			if silent(j) {
				silentFrames++
			}
		}
		frac := float64(silentFrames) / float64(frames)

		if frames < minFrames || frac > opts.MaxSilenceFrac {
			// Rejected: restart the search one frame past the rejected start.
			idx = start + 1
			continue
		}

		segments = append(segments, finalizeSegment(env, start, end, frac))
		idx = end
	}
	return segments, nil
}

func finalizeSegment(env Envelope, start, end int, silenceFrac float64) Segment {
	peakIdx := start
	peak := env.Energy[start]
	for j := start + 1; j < end; j++ {
		if env.Energy[j] > peak {
			peak = env.Energy[j]
			peakIdx = j
		}
	}
	return Segment{
		Start:           env.Time(start),
		End:             env.Time(end),
		StartFrame:      start,
		EndFrame:        end,
		SilenceFraction: silenceFrac,
		PeakEnergy:      peak,
		PeakTime:        env.Time(peakIdx),
	}
}

// framesFor converts a duration in seconds to a whole frame count.
func framesFor(seconds, hop float64) int {
	return int(math.Round(seconds / hop))
}
