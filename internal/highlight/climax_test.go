package highlight_test

import (
	"math/rand"
	"testing"

	"clipforge/internal/highlight"
)

// bruteForceClimax recomputes the window sum from scratch at every offset.
func bruteForceClimax(env highlight.Envelope, seg highlight.Segment, hookFrames int) int {
	best := -1.0
	bestStart := seg.StartFrame
	for start := seg.StartFrame; start+hookFrames <= seg.EndFrame; start++ {
		sum := 0.0
		for i := start; i < start+hookFrames; i++ {
			sum += env.Energy[i]
		}
		if sum > best {
			best = sum
			bestStart = start
		}
	}
	return bestStart
}

func segmentOver(env highlight.Envelope) highlight.Segment {
	return highlight.Segment{
		Start:      0,
		End:        env.Duration(),
		StartFrame: 0,
		EndFrame:   env.Frames(),
	}
}

func TestLocateClimaxFindsConcentratedPeak(t *testing.T) {
	energy := make([]float64, 10)
	for i := range energy {
		energy[i] = 0.1
	}
	energy[6] = 0.9
	energy[7] = 0.9
	env := highlight.Envelope{Hop: 1, Energy: energy}
	seg := segmentOver(env)

	got := highlight.LocateClimax(env, seg, 5)
	// Windows [3,8) [4,9) [5,10) and [6,11)... all 5-frame windows holding
	// both peak frames tie at 0.3 extra; earliest is offset 3.
	if got != 3 {
		t.Fatalf("climax offset: got %d want 3", got)
	}
}

func TestLocateClimaxEarliestTieBreakOnFlatInput(t *testing.T) {
	energy := make([]float64, 20)
	for i := range energy {
		energy[i] = 0.5
	}
	env := highlight.Envelope{Hop: 1, Energy: energy}
	seg := segmentOver(env)

	if got := highlight.LocateClimax(env, seg, 7); got != 0 {
		t.Fatalf("flat input should tie-break to earliest offset, got %d", got)
	}
}

func TestLocateClimaxWholeSegmentWhenWindowCoversIt(t *testing.T) {
	energy := []float64{0.2, 0.9, 0.4}
	env := highlight.Envelope{Hop: 1, Energy: energy}
	seg := segmentOver(env)

	if got := highlight.LocateClimax(env, seg, 3); got != seg.StartFrame {
		t.Fatalf("window covering segment should return segment start, got %d", got)
	}
	if got := highlight.LocateClimax(env, seg, 10); got != seg.StartFrame {
		t.Fatalf("window longer than segment should return segment start, got %d", got)
	}
}

func TestLocateClimaxMatchesBruteForce(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for trial := 0; trial < 200; trial++ {
		n := 2 + rng.Intn(49)
		energy := make([]float64, n)
		for i := range energy {
			// Coarse quantization provokes ties.
			energy[i] = float64(rng.Intn(5)) / 4
		}
		env := highlight.Envelope{Hop: 1, Energy: energy}
		seg := segmentOver(env)
		hookFrames := 1 + rng.Intn(n)

		got := highlight.LocateClimax(env, seg, hookFrames)
		want := seg.StartFrame
		if hookFrames < n {
			want = bruteForceClimax(env, seg, hookFrames)
		}
		if got != want {
			t.Fatalf("trial %d (n=%d hook=%d): got %d want %d energy=%v", trial, n, hookFrames, got, want, energy)
		}
	}
}

func TestLocateClimaxRespectsSegmentBounds(t *testing.T) {
	energy := make([]float64, 30)
	energy[2] = 1.0  // outside segment
	energy[25] = 1.0 // outside segment
	for i := 10; i < 20; i++ {
		energy[i] = 0.3
	}
	energy[14] = 0.8
	env := highlight.Envelope{Hop: 1, Energy: energy}
	seg := highlight.Segment{Start: 10, End: 20, StartFrame: 10, EndFrame: 20}

	got := highlight.LocateClimax(env, seg, 3)
	if got < seg.StartFrame || got+3 > seg.EndFrame {
		t.Fatalf("climax window [%d,%d) escapes segment [%d,%d)", got, got+3, seg.StartFrame, seg.EndFrame)
	}
	if got != 12 {
		t.Fatalf("climax offset: got %d want 12", got)
	}
}
