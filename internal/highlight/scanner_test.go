package highlight_test

import (
	"context"
	"math"
	"testing"

	"clipforge/internal/highlight"
)

func scanOptions() highlight.Options {
	return highlight.Options{
		MinClipSec:        8,
		MaxClipSec:        40,
		EndSilenceRunSec:  4,
		MaxSilenceFrac:    0.3,
		SilencePercentile: 50,
	}
}

// pattern builds an envelope from repeated (value, count) pairs at 1s hop.
func pattern(pairs ...[2]float64) highlight.Envelope {
	var energy []float64
	for _, p := range pairs {
		for i := 0; i < int(p[1]); i++ {
			energy = append(energy, p[0])
		}
	}
	return highlight.Envelope{Hop: 1, Energy: energy}
}

func TestScanLoudQuietLoudProducesTwoSegments(t *testing.T) {
	// 10s loud, 6s quiet (>= end run of 4), 20s loud, 24s quiet.
	env := pattern([2]float64{0.9, 10}, [2]float64{0.05, 6}, [2]float64{0.9, 20}, [2]float64{0.02, 24})
	opts := scanOptions()

	threshold, err := highlight.Threshold(env, opts.SilencePercentile)
	if err != nil {
		t.Fatalf("Threshold: %v", err)
	}

	segments, err := highlight.Scan(context.Background(), env, threshold, opts)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(segments) != 2 {
		t.Fatalf("expected 2 segments, got %d: %+v", len(segments), segments)
	}

	first, second := segments[0], segments[1]
	if first.Start != 0 || first.End != 10 {
		t.Fatalf("first segment: got [%v,%v) want [0,10)", first.Start, first.End)
	}
	if second.Start != 16 || second.End != 36 {
		t.Fatalf("second segment: got [%v,%v) want [16,36)", second.Start, second.End)
	}
	if first.SilenceFraction != 0 {
		t.Fatalf("first segment silence fraction: got %v want 0", first.SilenceFraction)
	}
	if first.End > second.Start {
		t.Fatalf("segments overlap: %+v %+v", first, second)
	}
}

func TestScanSegmentInvariants(t *testing.T) {
	env := pattern(
		[2]float64{0.8, 12}, [2]float64{0.01, 5},
		[2]float64{0.7, 3}, [2]float64{0.01, 7},
		[2]float64{0.9, 50}, [2]float64{0.02, 4},
		[2]float64{0.85, 9},
	)
	opts := scanOptions()

	threshold, err := highlight.Threshold(env, opts.SilencePercentile)
	if err != nil {
		t.Fatalf("Threshold: %v", err)
	}
	segments, err := highlight.Scan(context.Background(), env, threshold, opts)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(segments) == 0 {
		t.Fatal("expected at least one segment")
	}

	for i, seg := range segments {
		dur := seg.Duration()
		if dur < opts.MinClipSec-1e-9 || dur > opts.MaxClipSec+1e-9 {
			t.Fatalf("segment %d duration %v outside [%v,%v]", i, dur, opts.MinClipSec, opts.MaxClipSec)
		}
		if seg.SilenceFraction > opts.MaxSilenceFrac {
			t.Fatalf("segment %d silence fraction %v exceeds %v", i, seg.SilenceFraction, opts.MaxSilenceFrac)
		}
		if seg.Start < 0 || seg.End > env.Duration() {
			t.Fatalf("segment %d [%v,%v) outside envelope [0,%v)", i, seg.Start, seg.End, env.Duration())
		}
		if i > 0 && segments[i-1].End > seg.Start {
			t.Fatalf("segments %d and %d overlap", i-1, i)
		}
		if seg.PeakTime < seg.Start || seg.PeakTime >= seg.End {
			t.Fatalf("segment %d peak time %v outside segment", i, seg.PeakTime)
		}
	}
}

func TestScanForcedCloseAtMaxDuration(t *testing.T) {
	// 100s of sustained loud audio must split at the 40s cap.
	env := pattern([2]float64{0.9, 100}, [2]float64{0.01, 10})
	opts := scanOptions()

	threshold, err := highlight.Threshold(env, opts.SilencePercentile)
	if err != nil {
		t.Fatalf("Threshold: %v", err)
	}
	segments, err := highlight.Scan(context.Background(), env, threshold, opts)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(segments) != 3 {
		t.Fatalf("expected 3 segments (40+40+20), got %d: %+v", len(segments), segments)
	}
	if segments[0].Duration() != 40 || segments[1].Duration() != 40 || segments[2].Duration() != 20 {
		t.Fatalf("unexpected durations: %v %v %v", segments[0].Duration(), segments[1].Duration(), segments[2].Duration())
	}
}

func TestScanTrailingActiveRunClosesAtEnvelopeEnd(t *testing.T) {
	env := pattern([2]float64{0.02, 5}, [2]float64{0.9, 12})
	opts := scanOptions()

	threshold, err := highlight.Threshold(env, opts.SilencePercentile)
	if err != nil {
		t.Fatalf("Threshold: %v", err)
	}
	segments, err := highlight.Scan(context.Background(), env, threshold, opts)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(segments) != 1 {
		t.Fatalf("expected 1 segment, got %d", len(segments))
	}
	if segments[0].Start != 5 || segments[0].End != 17 {
		t.Fatalf("segment: got [%v,%v) want [5,17)", segments[0].Start, segments[0].End)
	}
}

func TestScanRejectionResumesInsideRejectedRange(t *testing.T) {
	// A 5s burst (too short) directly followed by silence, then a valid 12s
	// run starting inside what a naive skip-past-the-range scan would skip.
	env := pattern(
		[2]float64{0.9, 5}, [2]float64{0.01, 4},
		[2]float64{0.9, 12}, [2]float64{0.01, 6},
	)
	opts := scanOptions()

	threshold, err := highlight.Threshold(env, opts.SilencePercentile)
	if err != nil {
		t.Fatalf("Threshold: %v", err)
	}
	segments, err := highlight.Scan(context.Background(), env, threshold, opts)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(segments) != 1 {
		t.Fatalf("expected the later 12s run to survive, got %d segments: %+v", len(segments), segments)
	}
	if segments[0].Start != 9 || segments[0].End != 21 {
		t.Fatalf("segment: got [%v,%v) want [9,21)", segments[0].Start, segments[0].End)
	}
}

func TestScanFlatEnvelopeProducesSegments(t *testing.T) {
	// Zero-variance envelope: every frame counts as non-silent, so the track
	// yields segments capped at the max duration instead of an empty result.
	env := pattern([2]float64{0.5, 60})
	opts := scanOptions()

	threshold, err := highlight.Threshold(env, opts.SilencePercentile)
	if err != nil {
		t.Fatalf("Threshold: %v", err)
	}
	segments, err := highlight.Scan(context.Background(), env, threshold, opts)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(segments) != 2 {
		t.Fatalf("expected 2 segments (40+20), got %d", len(segments))
	}
	if segments[0].Duration() != 40 || segments[1].Duration() != 20 {
		t.Fatalf("unexpected durations: %v %v", segments[0].Duration(), segments[1].Duration())
	}
}

func TestScanNothingLongEnoughProducesEmptyList(t *testing.T) {
	// Bursts of 3s split by long quiet runs: every tentative segment closes
	// short of the 8s minimum and gets rejected.
	env := pattern(
		[2]float64{0.9, 3}, [2]float64{0, 10},
		[2]float64{0.9, 3}, [2]float64{0, 10},
		[2]float64{0.9, 3}, [2]float64{0, 10},
		[2]float64{0.9, 3}, [2]float64{0, 10},
	)
	opts := scanOptions()

	threshold, err := highlight.Threshold(env, 80)
	if err != nil {
		t.Fatalf("Threshold: %v", err)
	}
	segments, err := highlight.Scan(context.Background(), env, threshold, opts)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(segments) != 0 {
		t.Fatalf("expected no segments, got %d", len(segments))
	}
}

func TestScanHonorsCancellation(t *testing.T) {
	env := pattern([2]float64{0.9, 30}, [2]float64{0.01, 30})
	opts := scanOptions()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	segments, err := highlight.Scan(ctx, env, 0.4, opts)
	if err == nil {
		t.Fatal("expected cancellation error")
	}
	if segments != nil {
		t.Fatalf("expected no partial segments on cancellation, got %v", segments)
	}
}

func TestScanSubSecondHop(t *testing.T) {
	// 25ms hop: the same shape as the two-burst scenario, scaled down.
	hop := 0.025
	frames := func(sec float64) int { return int(math.Round(sec / hop)) }
	var energy []float64
	appendRun := func(value float64, sec float64) {
		for i := 0; i < frames(sec); i++ {
			energy = append(energy, value)
		}
	}
	appendRun(0.9, 10)
	appendRun(0.05, 6)
	appendRun(0.9, 20)
	appendRun(0.02, 24)
	env := highlight.Envelope{Hop: hop, Energy: energy}
	opts := scanOptions()

	threshold, err := highlight.Threshold(env, opts.SilencePercentile)
	if err != nil {
		t.Fatalf("Threshold: %v", err)
	}
	segments, err := highlight.Scan(context.Background(), env, threshold, opts)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(segments) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(segments))
	}
	if math.Abs(segments[0].Duration()-10) > hop || math.Abs(segments[1].Duration()-20) > hop {
		t.Fatalf("unexpected durations: %v %v", segments[0].Duration(), segments[1].Duration())
	}
}
