package services_test

import (
	"errors"
	"strings"
	"testing"

	"clipforge/internal/queue"
	"clipforge/internal/services"
)

func TestWrapTagsMarkerAndDetail(t *testing.T) {
	cause := errors.New("exit status 1")
	err := services.Wrap(services.ErrExternalTool, "rendering", "ffmpeg", "filter graph failed", cause)
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool marker, got %v", err)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("expected cause to be wrapped, got %v", err)
	}
	for _, want := range []string{"rendering", "ffmpeg", "filter graph failed", "exit status 1"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("error %q missing %q", err, want)
		}
	}
}

func TestWrapDefaultsToTransient(t *testing.T) {
	err := services.Wrap(nil, "analyzing", "", "", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient marker, got %v", err)
	}
}

func TestWrapWithoutDetailUsesFallback(t *testing.T) {
	err := services.Wrap(services.ErrValidation, "", "", "", nil)
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("expected fallback detail, got %q", err)
	}
}

func TestFailureStatusRouting(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		expect queue.Status
	}{
		{"validation goes to review", services.Wrap(services.ErrValidation, "analyzing", "", "no audio", nil), queue.StatusReview},
		{"configuration goes to review", services.Wrap(services.ErrConfiguration, "", "", "bad layout", nil), queue.StatusReview},
		{"not found goes to review", services.Wrap(services.ErrNotFound, "", "", "source missing", nil), queue.StatusReview},
		{"external tool goes to failed", services.Wrap(services.ErrExternalTool, "", "ffmpeg", "", errors.New("boom")), queue.StatusFailed},
		{"transient goes to failed", services.Wrap(services.ErrTransient, "", "", "", nil), queue.StatusFailed},
		{"plain error goes to failed", errors.New("unclassified"), queue.StatusFailed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := services.FailureStatus(tc.err); got != tc.expect {
				t.Fatalf("FailureStatus = %s, want %s", got, tc.expect)
			}
		})
	}
}
