package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"cerebro/internal/config"
)

const userAgent = "Cerebro-Go/0.1.0"

// Service defines the notification surface exposed to daemon components.
type Service interface {
	NotifyTriggerFired(ctx context.Context, command, path string) error
	NotifyTriggerFailed(ctx context.Context, command, path string, cause error) error
	NotifyModuleError(ctx context.Context, module string, cause error) error
	NotifyDaemonStopped(ctx context.Context, reason string) error
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
		triggers: cfg.Notifications.Triggers,
		errors:   cfg.Notifications.Errors,
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
	triggers bool
	errors   bool
}

func (n *ntfyService) NotifyTriggerFired(ctx context.Context, command, path string) error {
	if !n.triggers {
		return nil
	}
	data := payload{
		title:   "Cerebro - Trigger Fired",
		message: fmt.Sprintf("Trigger fired on %s: %s", strings.TrimSpace(path), strings.TrimSpace(command)),
		tags:    []string{"cerebro", "trigger", "fired"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyTriggerFailed(ctx context.Context, command, path string, cause error) error {
	if !n.errors {
		return nil
	}
	message := fmt.Sprintf("Trigger command failed on %s: %s", strings.TrimSpace(path), strings.TrimSpace(command))
	if cause != nil {
		message = fmt.Sprintf("%s\n%s", message, strings.TrimSpace(cause.Error()))
	}
	data := payload{
		title:    "Cerebro - Trigger Failed",
		message:  message,
		tags:     []string{"cerebro", "trigger", "error"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyModuleError(ctx context.Context, module string, cause error) error {
	if !n.errors {
		return nil
	}
	var builder strings.Builder
	builder.WriteString("Module ")
	builder.WriteString(strings.TrimSpace(module))
	builder.WriteString(" error: ")
	if cause != nil {
		builder.WriteString(strings.TrimSpace(cause.Error()))
	} else {
		builder.WriteString("unknown")
	}

	data := payload{
		title:    "Cerebro - Module Error",
		message:  builder.String(),
		tags:     []string{"cerebro", "error", "alert"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyDaemonStopped(ctx context.Context, reason string) error {
	if !n.errors {
		return nil
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = "unknown"
	}
	data := payload{
		title:   "Cerebro - Stopped",
		message: fmt.Sprintf("Daemon stopped: %s", reason),
		tags:    []string{"cerebro", "daemon", "stopped"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "Cerebro - Test",
		message:  "Notification system test",
		tags:     []string{"cerebro", "test"},
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

type noopService struct{}

func (noopService) NotifyTriggerFired(context.Context, string, string) error         { return nil }
func (noopService) NotifyTriggerFailed(context.Context, string, string, error) error { return nil }
func (noopService) NotifyModuleError(context.Context, string, error) error           { return nil }
func (noopService) NotifyDaemonStopped(context.Context, string) error                { return nil }
func (noopService) TestNotification(context.Context) error                           { return nil }
