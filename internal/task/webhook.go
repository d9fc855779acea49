package task

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/verdantlabs/flora-api/internal/config"
)

// WebhookPayload is the JSON body posted to the configured webhook after a
// species record is persisted.
type WebhookPayload struct {
	Species    string   `json:"species"`
	Locales    []string `json:"locales"`
	ImageCount int      `json:"image_count"`
}

// WebhookNotifyTask posts a persistence notification to an external
// endpoint. Delivery is best effort: a failed POST is logged by the runner
// and never retried.
type WebhookNotifyTask struct {
	id         uuid.UUID
	logger     *slog.Logger
	httpClient *http.Client
	url        string
	payload    WebhookPayload
}

// NewWebhookNotifyTask creates a notification task for one persisted record.
func NewWebhookNotifyTask(logger *slog.Logger, cfg config.WebhookConfig, payload WebhookPayload) *WebhookNotifyTask {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &WebhookNotifyTask{
		id:         uuid.New(),
		logger:     logger,
		httpClient: &http.Client{Timeout: timeout},
		url:        cfg.URL,
		payload:    payload,
	}
}

// ID returns the task's unique identifier
func (t *WebhookNotifyTask) ID() uuid.UUID { return t.id }

// Type returns the task type identifier
func (t *WebhookNotifyTask) Type() string { return TaskTypeWebhookNotify }

// Execute posts the payload to the webhook endpoint.
func (t *WebhookNotifyTask) Execute(ctx context.Context) error {
	body, err := json.Marshal(t.payload)
	if err != nil {
		return fmt.Errorf("failed to marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("webhook delivery failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	t.logger.Debug("webhook delivered",
		"species", t.payload.Species,
		"status", resp.StatusCode)
	return nil
}
