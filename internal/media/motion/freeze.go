package motion

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Interval is a half-open time span in seconds.
type Interval struct {
	Start float64
	End   float64
}

var (
	freezeStartRE  = regexp.MustCompile(`freeze_start:\s*(\d+(?:\.\d+)?)`)
	freezeEndRE    = regexp.MustCompile(`freeze_end:\s*(\d+(?:\.\d+)?)`)
	showinfoTimeRE = regexp.MustCompile(`pts_time:\s*(\d+(?:\.\d+)?)`)
)

// DetectFreezes returns freeze intervals found by the freezedetect filter.
// Low-fps sampling keeps the pass fast on long recordings.
func DetectFreezes(ctx context.Context, binary, path string, fps int, noise, minDurSec float64) ([]Interval, error) {
	vf := fmt.Sprintf("fps=%d,freezedetect=n=%g:d=%g", fps, noise, minDurSec)
	stderr, err := runFilterPass(ctx, binary, path, vf)
	if err != nil {
		return nil, fmt.Errorf("detect freezes: %w", err)
	}
	return ParseFreezeIntervals(stderr), nil
}

// ParseFreezeIntervals pairs freeze_start/freeze_end log lines in order.
// An unmatched trailing start is dropped.
func ParseFreezeIntervals(stderr string) []Interval {
	var starts, ends []float64
	for _, line := range strings.Split(stderr, "\n") {
		if m := freezeStartRE.FindStringSubmatch(line); m != nil {
			if v, err := strconv.ParseFloat(m[1], 64); err == nil {
				starts = append(starts, v)
			}
		}
		if m := freezeEndRE.FindStringSubmatch(line); m != nil {
			if v, err := strconv.ParseFloat(m[1], 64); err == nil {
				ends = append(ends, v)
			}
		}
	}

	n := len(starts)
	if len(ends) < n {
		n = len(ends)
	}
	intervals := make([]Interval, 0, n)
	for i := 0; i < n; i++ {
		if ends[i] > starts[i] {
			intervals = append(intervals, Interval{Start: starts[i], End: ends[i]})
		}
	}
	return intervals
}

// DetectSceneChanges returns timestamps where the scene score exceeds the
// threshold, in ascending order.
func DetectSceneChanges(ctx context.Context, binary, path string, fps int, threshold float64) ([]float64, error) {
	vf := fmt.Sprintf("fps=%d,select='gt(scene,%g)',showinfo", fps, threshold)
	stderr, err := runFilterPass(ctx, binary, path, vf)
	if err != nil {
		return nil, fmt.Errorf("detect scene changes: %w", err)
	}
	return ParseShowinfoTimes(stderr), nil
}

// ParseShowinfoTimes extracts pts_time values from showinfo log output.
func ParseShowinfoTimes(stderr string) []float64 {
	var times []float64
	for _, line := range strings.Split(stderr, "\n") {
		if m := showinfoTimeRE.FindStringSubmatch(line); m != nil {
			if v, err := strconv.ParseFloat(m[1], 64); err == nil {
				times = append(times, v)
			}
		}
	}
	sort.Float64s(times)
	return times
}

// OverlapSeconds totals the overlap between [start, end] and the intervals.
func OverlapSeconds(intervals []Interval, start, end float64) float64 {
	var total float64
	for _, iv := range intervals {
		lo := start
		if iv.Start > lo {
			lo = iv.Start
		}
		hi := end
		if iv.End < hi {
			hi = iv.End
		}
		if hi > lo {
			total += hi - lo
		}
	}
	return total
}

// CountEvents counts timestamps within [start, end].
func CountEvents(events []float64, start, end float64) int {
	count := 0
	for _, t := range events {
		if t >= start && t <= end {
			count++
		}
	}
	return count
}

// runFilterPass decodes video through a filter chain with a null muxer and
// returns stderr, where freezedetect and showinfo write their findings.
func runFilterPass(ctx context.Context, binary, path, vf string) (string, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffmpeg"
	}
	cmd := exec.CommandContext(ctx, binary,
		"-hide_banner",
		"-nostats",
		"-i", path,
		"-an",
		"-vf", vf,
		"-f", "null",
		"-",
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("ffmpeg: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return stderr.String(), nil
}
