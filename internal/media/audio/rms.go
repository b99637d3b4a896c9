package audio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"
)

// ExtractRMS decodes the file's audio to mono PCM at the given sample rate
// and returns one RMS value per hop window. The final partial window is
// included when it contains at least one sample.
func ExtractRMS(ctx context.Context, binary, path string, sampleRate int, hopSec float64) ([]float64, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffmpeg"
	}
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("extract rms: empty path")
	}
	if sampleRate <= 0 {
		return nil, fmt.Errorf("extract rms: invalid sample rate %d", sampleRate)
	}
	if hopSec <= 0 {
		return nil, fmt.Errorf("extract rms: invalid hop %v", hopSec)
	}

	cmd := exec.CommandContext(ctx, binary,
		"-v", "error",
		"-i", path,
		"-vn",
		"-ac", "1",
		"-ar", strconv.Itoa(sampleRate),
		"-f", "s16le",
		"-",
	)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("extract rms: ffmpeg: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	samples := DecodeS16LE(stdout.Bytes())
	if len(samples) == 0 {
		return nil, errors.New("extract rms: no audio samples decoded")
	}

	hopSamples := int(math.Round(hopSec * float64(sampleRate)))
	if hopSamples < 1 {
		hopSamples = 1
	}
	return RMSSeries(samples, hopSamples), nil
}

// DecodeS16LE converts little-endian signed 16-bit PCM into floats in [-1, 1].
// A trailing odd byte is ignored.
func DecodeS16LE(data []byte) []float64 {
	n := len(data) / 2
	samples := make([]float64, n)
	for i := 0; i < n; i++ {
		raw := int16(uint16(data[2*i]) | uint16(data[2*i+1])<<8)
		samples[i] = float64(raw) / 32768
	}
	return samples
}

// RMSSeries reduces samples to one root-mean-square value per window of
// hopSamples. The trailing partial window is kept.
func RMSSeries(samples []float64, hopSamples int) []float64 {
	if len(samples) == 0 || hopSamples <= 0 {
		return nil
	}
	frames := (len(samples) + hopSamples - 1) / hopSamples
	series := make([]float64, 0, frames)
	for start := 0; start < len(samples); start += hopSamples {
		end := start + hopSamples
		if end > len(samples) {
			end = len(samples)
		}
		var sum float64
		for _, s := range samples[start:end] {
			sum += s * s
		}
		series = append(series, math.Sqrt(sum/float64(end-start)))
	}
	return series
}
