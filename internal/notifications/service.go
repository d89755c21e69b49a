package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"scenedeck/internal/config"
)

const userAgent = "SceneDeck/0.1.0"

// Service is the notification surface used by the autosave controller,
// the importer, and the recovery flow.
type Service interface {
	NotifySaveFailed(ctx context.Context, err error)
	NotifyRecoveryNeeded(ctx context.Context, projectName string, missing int) error
	NotifyRecoveryApplied(ctx context.Context, projectName string, relinked, deleted, skipped int) error
	NotifyImportCompleted(ctx context.Context, count, duplicates int) error
	TestNotification(ctx context.Context) error
}

// NewService builds a service backed by ntfy when a topic is configured,
// otherwise a noop implementation.
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
		cfg:      cfg.Notifications,
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
	cfg      config.Notifications
}

// NotifySaveFailed fires the persistent "save manually" notice. Delivery
// failure is swallowed: a broken notifier must never break a save path.
func (n *ntfyService) NotifySaveFailed(ctx context.Context, saveErr error) {
	if !n.cfg.SaveFailures {
		return
	}
	message := "Autosave failed, save manually"
	if saveErr != nil {
		message = fmt.Sprintf("%s: %s", message, strings.TrimSpace(saveErr.Error()))
	}
	_ = n.send(ctx, payload{
		title:    "SceneDeck - Save Failed",
		message:  message,
		tags:     []string{"scenedeck", "save", "failed"},
		priority: "high",
	})
}

func (n *ntfyService) NotifyRecoveryNeeded(ctx context.Context, projectName string, missing int) error {
	if !n.cfg.Recovery {
		return nil
	}
	return n.send(ctx, payload{
		title:   "SceneDeck - Missing Assets",
		message: fmt.Sprintf("%s has %d missing assets awaiting a decision", strings.TrimSpace(projectName), missing),
		tags:    []string{"scenedeck", "recovery", "pending"},
	})
}

func (n *ntfyService) NotifyRecoveryApplied(ctx context.Context, projectName string, relinked, deleted, skipped int) error {
	if !n.cfg.Recovery {
		return nil
	}
	return n.send(ctx, payload{
		title: "SceneDeck - Recovery Complete",
		message: fmt.Sprintf("%s: %d relinked, %d deleted, %d skipped",
			strings.TrimSpace(projectName), relinked, deleted, skipped),
		tags: []string{"scenedeck", "recovery", "completed"},
	})
}

func (n *ntfyService) NotifyImportCompleted(ctx context.Context, count, duplicates int) error {
	if !n.cfg.Imports {
		return nil
	}
	message := fmt.Sprintf("Imported %d assets", count)
	if duplicates > 0 {
		message = fmt.Sprintf("%s (%d deduplicated)", message, duplicates)
	}
	return n.send(ctx, payload{
		title:   "SceneDeck - Import Complete",
		message: message,
		tags:    []string{"scenedeck", "import", "completed"},
	})
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	return n.send(ctx, payload{
		title:    "SceneDeck - Test",
		message:  "Notification system test",
		tags:     []string{"scenedeck", "test"},
		priority: "low",
	})
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

func (noopService) NotifySaveFailed(context.Context, error)                        {}
func (noopService) NotifyRecoveryNeeded(context.Context, string, int) error        { return nil }
func (noopService) NotifyRecoveryApplied(context.Context, string, int, int, int) error {
	return nil
}
func (noopService) NotifyImportCompleted(context.Context, int, int) error { return nil }
func (noopService) TestNotification(context.Context) error                { return nil }
