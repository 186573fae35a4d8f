// Package notify delivers best-effort outbound notifications. Delivery is
// never part of a transition's correctness: callers log failures and move on.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Summary is what a recipient needs to act on a contract: where to sign and
// what they are signing. It never carries the raw access token separately;
// the token only appears embedded in the signing URL.
type Summary struct {
	ClientName  string  `json:"client_name"`
	ClientEmail string  `json:"client_email"`
	Title       string  `json:"title"`
	TotalValue  float64 `json:"total_value"`
	SignURL     string  `json:"sign_url"`
}

type Sender interface {
	Send(ctx context.Context, s Summary) error
}

// Webhook posts the summary as JSON to a delivery endpoint (mail bridge,
// Zapier hook, whatever the deployment wires up).
type Webhook struct {
	URL    string
	Client *http.Client
}

func NewWebhook(url string) *Webhook {
	return &Webhook{URL: url, Client: &http.Client{Timeout: 10 * time.Second}}
}

func (w *Webhook) Send(ctx context.Context, s Summary) error {
	body, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("notify: encode: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("notify: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := w.Client.Do(req)
	if err != nil {
		return fmt.Errorf("notify: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode >= 300 {
		return fmt.Errorf("notify: endpoint returned %d", resp.StatusCode)
	}
	return nil
}

// Nop logs instead of delivering. Used when no webhook is configured.
type Nop struct {
	Lg *zap.SugaredLogger
}

func (n Nop) Send(_ context.Context, s Summary) error {
	if n.Lg != nil {
		n.Lg.Infow("notification skipped (no sender configured)", "client_email", s.ClientEmail, "title", s.Title)
	}
	return nil
}
