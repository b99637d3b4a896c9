package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"clipforge/internal/config"
)

const userAgent = "clipforge/0.1.0"

// Service defines the notification surface exposed to workflow components.
type Service interface {
	NotifyFileQueued(ctx context.Context, title string) error
	NotifyAnalysisComplete(ctx context.Context, title string, clips int) error
	NotifyClipsReady(ctx context.Context, title, outputDir string, clips int) error
	NotifyReview(ctx context.Context, title, reason string) error
	NotifyError(ctx context.Context, err error, context string) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
}

func (n *ntfyService) NotifyFileQueued(ctx context.Context, title string) error {
	data := payload{
		title:   "Clipforge - Queued",
		message: fmt.Sprintf("New recording queued: %s", strings.TrimSpace(title)),
		tags:    []string{"clipforge", "queued"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyAnalysisComplete(ctx context.Context, title string, clips int) error {
	data := payload{
		title:   "Clipforge - Analyzed",
		message: fmt.Sprintf("Found %d clips in %s", clips, strings.TrimSpace(title)),
		tags:    []string{"clipforge", "analyze", "completed"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyClipsReady(ctx context.Context, title, outputDir string, clips int) error {
	message := fmt.Sprintf("%d shorts ready: %s", clips, strings.TrimSpace(title))
	if outputDir = strings.TrimSpace(outputDir); outputDir != "" {
		message = fmt.Sprintf("%s\nFolder: %s", message, outputDir)
	}
	data := payload{
		title:    "Clipforge - Complete",
		message:  message,
		tags:     []string{"clipforge", "render", "completed"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyReview(ctx context.Context, title, reason string) error {
	data := payload{
		title:   "Clipforge - Needs Review",
		message: fmt.Sprintf("%s\n%s", strings.TrimSpace(title), strings.TrimSpace(reason)),
		tags:    []string{"clipforge", "review"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyError(ctx context.Context, err error, contextLabel string) error {
	var builder strings.Builder
	builder.WriteString("Error")
	if contextLabel = strings.TrimSpace(contextLabel); contextLabel != "" {
		builder.WriteString(" with ")
		builder.WriteString(contextLabel)
	}
	builder.WriteString(": ")
	if err != nil {
		builder.WriteString(strings.TrimSpace(err.Error()))
	} else {
		builder.WriteString("unknown")
	}

	data := payload{
		title:    "Clipforge - Error",
		message:  builder.String(),
		tags:     []string{"clipforge", "error", "alert"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "Clipforge - Test",
		message:  "Notification system test",
		tags:     []string{"clipforge", "test"},
		priority: "low",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// NewNoop returns a notification service that discards everything.
func NewNoop() Service {
	return noopService{}
}

type noopService struct{}

func (noopService) NotifyFileQueued(context.Context, string) error              { return nil }
func (noopService) NotifyAnalysisComplete(context.Context, string, int) error   { return nil }
func (noopService) NotifyClipsReady(context.Context, string, string, int) error { return nil }
func (noopService) NotifyReview(context.Context, string, string) error          { return nil }
func (noopService) NotifyError(context.Context, error, string) error            { return nil }
func (noopService) TestNotification(context.Context) error                      { return nil }
