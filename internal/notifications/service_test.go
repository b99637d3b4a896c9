package notifications_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"clipforge/internal/config"
	"clipforge/internal/notifications"
)

func TestNewServiceReturnsNoopWhenTopicMissing(t *testing.T) {
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = ""
	svc := notifications.NewService(&cfg)
	if err := svc.NotifyClipsReady(context.Background(), "Example", "", 3); err != nil {
		t.Fatalf("expected noop notifier to return nil, got %v", err)
	}
}

type captured struct {
	title    string
	message  string
	tags     string
	priority string
}

func newCaptureServer(t *testing.T, sink *captured) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Errorf("read body: %v", err)
		}
		sink.title = r.Header.Get("Title")
		sink.message = string(body)
		sink.tags = r.Header.Get("Tags")
		sink.priority = r.Header.Get("Priority")
		w.WriteHeader(http.StatusOK)
	}))
}

func newServiceFor(t *testing.T, endpoint string) notifications.Service {
	t.Helper()
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = endpoint
	cfg.Notifications.RequestTimeout = 5
	return notifications.NewService(&cfg)
}

func TestNtfyServiceFormatsPayloads(t *testing.T) {
	var got captured
	server := newCaptureServer(t, &got)
	defer server.Close()
	svc := newServiceFor(t, server.URL)
	ctx := context.Background()

	if err := svc.NotifyAnalysisComplete(ctx, "Ranked Match", 4); err != nil {
		t.Fatalf("NotifyAnalysisComplete: %v", err)
	}
	if got.title != "Clipforge - Analyzed" {
		t.Fatalf("unexpected title: %q", got.title)
	}
	if got.message != "Found 4 clips in Ranked Match" {
		t.Fatalf("unexpected message: %q", got.message)
	}
	if got.tags != "clipforge,analyze,completed" {
		t.Fatalf("unexpected tags: %q", got.tags)
	}

	if err := svc.NotifyClipsReady(ctx, "Ranked Match", "/out/ranked", 4); err != nil {
		t.Fatalf("NotifyClipsReady: %v", err)
	}
	if got.priority != "high" {
		t.Fatalf("completion should be high priority, got %q", got.priority)
	}
	if got.message != "4 shorts ready: Ranked Match\nFolder: /out/ranked" {
		t.Fatalf("unexpected message: %q", got.message)
	}

	if err := svc.NotifyError(ctx, errors.New("boom"), "rendering"); err != nil {
		t.Fatalf("NotifyError: %v", err)
	}
	if got.message != "Error with rendering: boom" {
		t.Fatalf("unexpected error message: %q", got.message)
	}
}

func TestNtfyServiceSurfacesServerErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "topic not found", http.StatusNotFound)
	}))
	defer server.Close()
	svc := newServiceFor(t, server.URL)

	err := svc.TestNotification(context.Background())
	if err == nil {
		t.Fatal("expected error from 404 response")
	}
}
