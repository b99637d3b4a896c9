package motion_test

import (
	"math"
	"testing"

	"clipforge/internal/media/motion"
)

const freezeLog = `
[freezedetect @ 0x55] lavfi.freezedetect.freeze_start: 12.5
[freezedetect @ 0x55] lavfi.freezedetect.freeze_duration: 3.25
[freezedetect @ 0x55] lavfi.freezedetect.freeze_end: 15.75
[freezedetect @ 0x55] lavfi.freezedetect.freeze_start: 40.0
[freezedetect @ 0x55] lavfi.freezedetect.freeze_end: 44.5
[freezedetect @ 0x55] lavfi.freezedetect.freeze_start: 90.0
`

func TestParseFreezeIntervals(t *testing.T) {
	intervals := motion.ParseFreezeIntervals(freezeLog)
	if len(intervals) != 2 {
		t.Fatalf("expected 2 intervals, got %d: %v", len(intervals), intervals)
	}
	if intervals[0] != (motion.Interval{Start: 12.5, End: 15.75}) {
		t.Fatalf("unexpected first interval: %+v", intervals[0])
	}
	if intervals[1] != (motion.Interval{Start: 40, End: 44.5}) {
		t.Fatalf("unexpected second interval: %+v", intervals[1])
	}
}

func TestParseFreezeIntervalsDropsInverted(t *testing.T) {
	log := "freeze_start: 10.0\nfreeze_end: 10.0\n"
	if intervals := motion.ParseFreezeIntervals(log); len(intervals) != 0 {
		t.Fatalf("expected zero-length interval dropped, got %v", intervals)
	}
}

const showinfoLog = `
[Parsed_showinfo_2 @ 0x55] n:   0 pts:  12012 pts_time:12.012   pos: 123 fmt:yuv420p
[Parsed_showinfo_2 @ 0x55] n:   1 pts:   4004 pts_time:4.004    pos: 456 fmt:yuv420p
[Parsed_showinfo_2 @ 0x55] n:   2 pts:  30030 pts_time:30.03    pos: 789 fmt:yuv420p
`

func TestParseShowinfoTimesSorted(t *testing.T) {
	times := motion.ParseShowinfoTimes(showinfoLog)
	if len(times) != 3 {
		t.Fatalf("expected 3 timestamps, got %d", len(times))
	}
	want := []float64{4.004, 12.012, 30.03}
	for i, v := range want {
		if math.Abs(times[i]-v) > 1e-9 {
			t.Fatalf("times[%d] = %v, want %v", i, times[i], v)
		}
	}
}

func TestOverlapSeconds(t *testing.T) {
	intervals := []motion.Interval{
		{Start: 10, End: 20},
		{Start: 30, End: 35},
	}
	cases := []struct {
		name       string
		start, end float64
		want       float64
	}{
		{"window inside interval", 12, 18, 6},
		{"window spans both intervals", 5, 40, 15},
		{"window misses everything", 21, 29, 0},
		{"partial overlap at edge", 18, 32, 4},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := motion.OverlapSeconds(intervals, tc.start, tc.end); math.Abs(got-tc.want) > 1e-9 {
				t.Fatalf("OverlapSeconds = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestCountEvents(t *testing.T) {
	events := []float64{1, 5, 10, 15}
	if got := motion.CountEvents(events, 4, 11); got != 2 {
		t.Fatalf("CountEvents = %d, want 2", got)
	}
	if got := motion.CountEvents(events, 0, 100); got != 4 {
		t.Fatalf("CountEvents = %d, want 4", got)
	}
	if got := motion.CountEvents(nil, 0, 100); got != 0 {
		t.Fatalf("CountEvents = %d, want 0", got)
	}
}

const metadataLog = `
frame:0    pts:0       pts_time:0
lavfi.signalstats.YDIF=0.0
frame:1    pts:333     pts_time:0.333333
lavfi.signalstats.YDIF=2.5
frame:2    pts:666     pts_time:0.666667
lavfi.signalstats.YDIF=3.5
frame:3    pts:1000    pts_time:1.0
lavfi.signalstats.YDIF=10.0
`

func TestParseMotionSamples(t *testing.T) {
	samples := motion.ParseMotionSamples(metadataLog)
	if len(samples) != 4 {
		t.Fatalf("expected 4 samples, got %d", len(samples))
	}
	if samples[1].Time != 0.333333 || samples[1].Value != 2.5 {
		t.Fatalf("unexpected sample: %+v", samples[1])
	}
}

func TestBucketMotionAveragesPerHop(t *testing.T) {
	samples := motion.ParseMotionSamples(metadataLog)
	series := motion.BucketMotion(samples, 1.0, 2.0)
	if len(series) != 2 {
		t.Fatalf("expected 2 hops, got %d", len(series))
	}
	// Hop 0 holds frames at 0, 0.333, 0.667: mean of {0, 2.5, 3.5} = 2.
	if math.Abs(series[0]-2) > 1e-9 {
		t.Fatalf("hop 0 = %v, want 2", series[0])
	}
	if math.Abs(series[1]-10) > 1e-9 {
		t.Fatalf("hop 1 = %v, want 10", series[1])
	}
}

func TestBucketMotionGrowsBeyondDuration(t *testing.T) {
	samples := []motion.Sample{{Time: 5.5, Value: 4}}
	series := motion.BucketMotion(samples, 1.0, 3.0)
	if len(series) != 6 {
		t.Fatalf("expected series to grow to 6 hops, got %d", len(series))
	}
	if series[5] != 4 {
		t.Fatalf("hop 5 = %v, want 4", series[5])
	}
}
