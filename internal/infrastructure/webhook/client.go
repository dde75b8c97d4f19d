package webhook

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/catherinechia/p4sbip/internal/config"
	"github.com/catherinechia/p4sbip/internal/ports"
)

// Client posts the JSON run digest to a configured HTTP endpoint.
type Client struct {
	url        string
	token      string
	httpClient *http.Client
}

var _ ports.DigestSink = (*Client)(nil)

// NewClient builds a sink from configuration.
func NewClient(cfg config.WebhookConfig) *Client {
	return &Client{
		url:   cfg.URL,
		token: cfg.Token,
		httpClient: &http.Client{
			Timeout: 20 * time.Second,
		},
	}
}

// SendDigest posts the JSON payload to the webhook endpoint.
func (c *Client) SendDigest(ctx context.Context, payload []byte) error {
	if c == nil {
		return fmt.Errorf("webhook client is nil")
	}
	if c.url == "" {
		return fmt.Errorf("webhook client misconfigured")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send digest: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("webhook error %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}

	return nil
}
