package motion

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
)

var ydifRE = regexp.MustCompile(`lavfi\.signalstats\.YDIF=(\d+(?:\.\d+)?)`)

// Sample is a single motion measurement at a point in time.
type Sample struct {
	Time  float64
	Value float64
}

// ExtractFacecamMotion measures frame-to-frame luma difference inside the
// bottom-right facecam crop and reduces it to one mean value per hop. The
// returned series aligns with the audio RMS series for the same hop.
func ExtractFacecamMotion(ctx context.Context, binary, path string, wRatio, hRatio float64, sampleFPS int, hopSec, durationSec float64) ([]float64, error) {
	if wRatio <= 0 || wRatio > 1 || hRatio <= 0 || hRatio > 1 {
		return nil, fmt.Errorf("facecam motion: invalid crop ratios %g/%g", wRatio, hRatio)
	}
	if sampleFPS <= 0 {
		return nil, fmt.Errorf("facecam motion: invalid sample fps %d", sampleFPS)
	}
	if hopSec <= 0 {
		return nil, fmt.Errorf("facecam motion: invalid hop %v", hopSec)
	}

	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffmpeg"
	}

	crop := fmt.Sprintf("crop=iw*%g:ih*%g:iw-iw*%g:ih-ih*%g", wRatio, hRatio, wRatio, hRatio)
	vf := fmt.Sprintf("fps=%d,%s,signalstats,metadata=print:key=lavfi.signalstats.YDIF:file=-", sampleFPS, crop)

	cmd := exec.CommandContext(ctx, binary,
		"-hide_banner",
		"-nostats",
		"-i", path,
		"-an",
		"-vf", vf,
		"-f", "null",
		"-",
	)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("facecam motion: ffmpeg: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	samples := ParseMotionSamples(stdout.String())
	return BucketMotion(samples, hopSec, durationSec), nil
}

// ParseMotionSamples reads the metadata=print stream, pairing each frame's
// pts_time with its YDIF value.
func ParseMotionSamples(output string) []Sample {
	var samples []Sample
	current := math.NaN()
	for _, line := range strings.Split(output, "\n") {
		if m := showinfoTimeRE.FindStringSubmatch(line); m != nil {
			if v, err := strconv.ParseFloat(m[1], 64); err == nil {
				current = v
			}
			continue
		}
		if m := ydifRE.FindStringSubmatch(line); m != nil && !math.IsNaN(current) {
			if v, err := strconv.ParseFloat(m[1], 64); err == nil {
				samples = append(samples, Sample{Time: current, Value: v})
			}
			current = math.NaN()
		}
	}
	return samples
}

// BucketMotion averages samples into hop windows covering durationSec.
// Frames beyond the stated duration extend the series rather than being
// dropped.
func BucketMotion(samples []Sample, hopSec, durationSec float64) []float64 {
	if hopSec <= 0 {
		return nil
	}
	frames := 0
	if durationSec > 0 {
		frames = int(math.Ceil(durationSec / hopSec))
	}
	sums := make([]float64, frames)
	counts := make([]int, frames)
	for _, s := range samples {
		if s.Time < 0 {
			continue
		}
		idx := int(s.Time / hopSec)
		if idx >= len(sums) {
			grow := idx + 1 - len(sums)
			sums = append(sums, make([]float64, grow)...)
			counts = append(counts, make([]int, grow)...)
		}
		sums[idx] += s.Value
		counts[idx]++
	}
	series := make([]float64, len(sums))
	for i := range sums {
		if counts[i] > 0 {
			series[i] = sums[i] / float64(counts[i])
		}
	}
	return series
}
