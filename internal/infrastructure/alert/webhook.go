package alert

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"
)

// Alerter reports unexpected reconciliation failures to an external channel.
type Alerter interface {
	Alert(ctx context.Context, subject, detail string)
}

// Webhook posts alerts to a configured HTTP endpoint. Delivery is best-effort;
// a failed alert is logged and dropped, never propagated to the event outcome.
type Webhook struct {
	url    string
	client *http.Client
}

func NewWebhook(url string) *Webhook {
	return &Webhook{
		url:    url,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

func (w *Webhook) Alert(ctx context.Context, subject, detail string) {
	if w.url == "" {
		return
	}
	body, err := json.Marshal(map[string]string{
		"subject": subject,
		"detail":  detail,
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		slog.Warn("alert payload marshal failed", "err", err)
		return
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		slog.Warn("alert request build failed", "err", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := w.client.Do(req)
	if err != nil {
		slog.Warn("alert delivery failed", "err", err)
		return
	}
	resp.Body.Close()
}
