package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const userAgent = "Mapwatch-Go/0.1.0"

// Service defines the notification surface exposed to the monitor.
type Service interface {
	NotifyMonitorStarted(ctx context.Context, period string, units int) error
	NotifyFileAccepted(ctx context.Context, unit, category, filename string) error
	NotifyUnitSatisfied(ctx context.Context, unit string) error
	NotifyUrgentReminder(ctx context.Context, remaining int, units []string) error
	NotifyPeriodComplete(ctx context.Context, period string, duration time.Duration) error
	NotifyDeadlineReached(ctx context.Context, period string, pending, partial, satisfied int) error
	NotifyError(ctx context.Context, err error, contextLabel string) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when a topic
// is configured. Otherwise a noop implementation is returned.
func NewService(topic string, requestTimeout time.Duration) Service {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return noopService{}
	}
	if requestTimeout <= 0 {
		requestTimeout = 10 * time.Second
	}
	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: requestTimeout},
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

func (n *ntfyService) NotifyMonitorStarted(ctx context.Context, period string, units int) error {
	data := payload{
		title:   "Mapwatch - Monitoring Started",
		message: fmt.Sprintf("Watching for %d units, period %s", units, period),
		tags:    []string{"mapwatch", "monitor", "started"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyFileAccepted(ctx context.Context, unit, category, filename string) error {
	data := payload{
		title:   "Mapwatch - File Received",
		message: fmt.Sprintf("%s delivered %s: %s", strings.TrimSpace(unit), category, strings.TrimSpace(filename)),
		tags:    []string{"mapwatch", "file", "accepted"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyUnitSatisfied(ctx context.Context, unit string) error {
	data := payload{
		title:   "Mapwatch - Unit Complete",
		message: fmt.Sprintf("All deliverables received from %s", strings.TrimSpace(unit)),
		tags:    []string{"mapwatch", "unit", "satisfied"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyUrgentReminder(ctx context.Context, remaining int, units []string) error {
	message := fmt.Sprintf("%d units still outstanding", remaining)
	if len(units) > 0 {
		message = fmt.Sprintf("%s: %s", message, strings.Join(units, ", "))
	}
	data := payload{
		title:    "Mapwatch - Urgent",
		message:  message,
		tags:     []string{"mapwatch", "reminder", "urgent"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyPeriodComplete(ctx context.Context, period string, duration time.Duration) error {
	duration = duration.Round(time.Second)
	if duration < 0 {
		duration = 0
	}
	data := payload{
		title:    "Mapwatch - Period Complete",
		message:  fmt.Sprintf("All units satisfied for %s after %s", period, duration),
		tags:     []string{"mapwatch", "period", "completed"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyDeadlineReached(ctx context.Context, period string, pending, partial, satisfied int) error {
	data := payload{
		title: "Mapwatch - Deadline",
		message: fmt.Sprintf("Period %s closed: %d satisfied, %d partial, %d pending",
			period, satisfied, partial, pending),
		tags: []string{"mapwatch", "deadline", "summary"},
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
		title:    "Mapwatch - Error",
		message:  builder.String(),
		tags:     []string{"mapwatch", "error", "alert"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "Mapwatch - Test",
		message:  "Notification system test",
		tags:     []string{"mapwatch", "test"},
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

func (noopService) NotifyMonitorStarted(context.Context, string, int) error            { return nil }
func (noopService) NotifyFileAccepted(context.Context, string, string, string) error   { return nil }
func (noopService) NotifyUnitSatisfied(context.Context, string) error                  { return nil }
func (noopService) NotifyUrgentReminder(context.Context, int, []string) error          { return nil }
func (noopService) NotifyPeriodComplete(context.Context, string, time.Duration) error  { return nil }
func (noopService) NotifyDeadlineReached(context.Context, string, int, int, int) error { return nil }
func (noopService) NotifyError(context.Context, error, string) error                   { return nil }
func (noopService) TestNotification(context.Context) error                             { return nil }
