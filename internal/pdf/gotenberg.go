// Package pdf materializes contracts into paginated documents through a
// Gotenberg sidecar (headless Chromium behind HTTP).
package pdf

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"dealdesk/internal/models"
)

const defaultTimeout = 30 * time.Second

type Gotenberg struct {
	url     string
	client  *http.Client
	timeout time.Duration
}

func NewGotenberg(url string, timeout time.Duration) *Gotenberg {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Gotenberg{
		url:     strings.TrimRight(url, "/"),
		client:  &http.Client{},
		timeout: timeout,
	}
}

// Render converts the contract's HTML layout into PDF bytes. The call is
// bounded by the configured timeout; the response body is closed on every
// path, so an aborted conversion leaves nothing behind.
func (g *Gotenberg) Render(ctx context.Context, c *models.Contract, sigs []models.Signature) ([]byte, error) {
	htmlDoc, err := Layout(c, sigs)
	if err != nil {
		return nil, err
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("files", "index.html")
	if err != nil {
		return nil, fmt.Errorf("gotenberg: form: %w", err)
	}
	if _, err := part.Write(htmlDoc); err != nil {
		return nil, fmt.Errorf("gotenberg: form: %w", err)
	}
	_ = writer.WriteField("paperWidth", "8.27")
	_ = writer.WriteField("paperHeight", "11.7")
	_ = writer.WriteField("marginTop", "0.5")
	_ = writer.WriteField("marginBottom", "0.5")
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("gotenberg: form: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.url+"/forms/chromium/convert/html", body)
	if err != nil {
		return nil, fmt.Errorf("gotenberg: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gotenberg: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("gotenberg: status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	out, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("gotenberg: read: %w", err)
	}
	return out, nil
}
