package broadcast

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// WebhookSender delivers broadcast messages by POSTing them to the frontend's
// notify endpoint, which owns the actual chat delivery.
type WebhookSender struct {
	url    string
	client *http.Client
}

// NewWebhookSender creates a sender targeting the given URL.
func NewWebhookSender(url string) *WebhookSender {
	return &WebhookSender{
		url:    url,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

type webhookPayload struct {
	UserID int64  `json:"user_id"`
	Text   string `json:"text"`
}

// Send posts one message for one user. Non-2xx responses count as failures.
func (w *WebhookSender) Send(ctx context.Context, userID int64, text string) error {
	data, err := json.Marshal(webhookPayload{UserID: userID, Text: text})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("notify endpoint returned %d", resp.StatusCode)
	}
	return nil
}
