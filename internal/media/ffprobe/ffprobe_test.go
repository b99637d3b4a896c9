package ffprobe

import (
	"math"
	"testing"
)

func TestResultHelpers(t *testing.T) {
	result := Result{
		Streams: []Stream{
			{CodecType: "video", Width: 1920, Height: 1080},
			{CodecType: "audio"},
		},
		Format: Format{
			Duration: "123.45",
			Size:     "1000",
		},
	}
	if result.VideoStreamCount() != 1 {
		t.Fatalf("expected 1 video stream, got %d", result.VideoStreamCount())
	}
	if !result.HasAudio() {
		t.Fatal("expected audio stream")
	}
	if w, h := result.VideoDimensions(); w != 1920 || h != 1080 {
		t.Fatalf("unexpected dimensions: %dx%d", w, h)
	}
	if result.DurationSeconds() != 123.45 {
		t.Fatalf("unexpected duration: %v", result.DurationSeconds())
	}
	if result.SizeBytes() != 1000 {
		t.Fatalf("unexpected size: %d", result.SizeBytes())
	}
}

func TestResultHelpersHandleInvalidNumbers(t *testing.T) {
	result := Result{
		Format: Format{
			Duration: "bad",
			Size:     "-1",
		},
	}
	if !math.IsNaN(result.DurationSeconds()) {
		t.Fatalf("expected duration NaN, got %v", result.DurationSeconds())
	}
	if result.SizeBytes() != 0 {
		t.Fatalf("expected size 0, got %d", result.SizeBytes())
	}
}

func TestResultWithoutVideoStream(t *testing.T) {
	result := Result{Streams: []Stream{{CodecType: "audio"}}}
	if w, h := result.VideoDimensions(); w != 0 || h != 0 {
		t.Fatalf("expected zero dimensions, got %dx%d", w, h)
	}
}
