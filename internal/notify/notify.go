// Package notify delivers structured processing events to a human channel.
// Rejections and registry outages need follow-up by an operator; the
// pipeline reports them here and moves on.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// EventKind classifies what the operator is being told.
type EventKind string

const (
	EventMissingFields   EventKind = "missing_fields"
	EventCodesNotFound   EventKind = "codes_not_found"
	EventUrgentDeadline  EventKind = "urgent_deadline"
	EventDuplicatePayee  EventKind = "duplicate_payee"
	EventRegistryOutage  EventKind = "registry_outage"
	EventTransferQueued  EventKind = "transfer_queued"
	EventUnreadableInput EventKind = "unreadable_input"
)

// Event is one notification. Message is the human-readable line; Details
// carries structured context for the channel's formatting.
type Event struct {
	Kind     EventKind         `json:"kind"`
	Source   string            `json:"source"` // document file name
	Message  string            `json:"message"`
	Details  map[string]string `json:"details,omitempty"`
	SentAt   time.Time         `json:"sentAt"`
}

// Notifier delivers events. Implementations must not block the pipeline
// beyond their own transport timeout.
type Notifier interface {
	Notify(ctx context.Context, ev Event) error
}

// WebhookNotifier posts events as JSON to a chat-webhook URL.
type WebhookNotifier struct {
	url    string
	client *http.Client
}

// NewWebhook builds a notifier for the URL. Delivery uses a short timeout:
// a slow chat service must not stall invoice processing.
func NewWebhook(url string) *WebhookNotifier {
	return &WebhookNotifier{
		url:    url,
		client: &http.Client{Timeout: 5 * time.Second},
	}
}

func (n *WebhookNotifier) Notify(ctx context.Context, ev Event) error {
	if ev.SentAt.IsZero() {
		ev.SentAt = time.Now()
	}
	payload, err := json.Marshal(map[string]any{
		"text":  fmt.Sprintf("[%s] %s: %s", ev.Kind, ev.Source, ev.Message),
		"event": ev,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("notification endpoint returned %d", resp.StatusCode)
	}
	return nil
}

// Nop discards every event. Used when no webhook URL is configured and in
// tests.
type Nop struct{}

func (Nop) Notify(context.Context, Event) error { return nil }
