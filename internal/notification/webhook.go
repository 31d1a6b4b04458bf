package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// WebhookHook posts transition events as JSON to a configured endpoint.
type WebhookHook struct {
	url    string
	client *http.Client
	log    *zap.Logger
}

func NewWebhookHook(url string, log *zap.Logger) *WebhookHook {
	return &WebhookHook{
		url: url,
		client: &http.Client{
			Timeout: 5 * time.Second,
		},
		log: log.Named("notification.webhook"),
	}
}

func (h *WebhookHook) Notify(ctx context.Context, event Event) {
	body, err := json.Marshal(event)
	if err != nil {
		h.log.Warn("failed to encode notification", zap.String("action", event.Action), zap.Error(err))
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.url, bytes.NewReader(body))
	if err != nil {
		h.log.Warn("failed to build notification request", zap.Error(err))
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		h.log.Warn("notification delivery failed",
			zap.String("action", event.Action),
			zap.String("target_id", event.TargetID),
			zap.Error(err),
		)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		h.log.Warn("notification endpoint returned non-success",
			zap.String("action", event.Action),
			zap.Int("status", resp.StatusCode),
		)
	}
}
