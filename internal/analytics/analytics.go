// Package analytics is the identity signal boundary: it tells the product
// analytics collaborator who is signed in, or that nobody is.
package analytics

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"agentcloud.dev/console/core/config"
)

type Traits struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Identifier is the contract the identity worker delivers against.
type Identifier interface {
	Identify(ctx context.Context, distinctID string, traits Traits) error
	Reset(ctx context.Context, distinctID string) error
}

// Client posts capture events to a PostHog-compatible endpoint.
type Client struct {
	endpoint string
	apiKey   string
	http     *http.Client
}

func NewClient(cfg config.AnalyticsConfig) *Client {
	return &Client{
		endpoint: cfg.Endpoint,
		apiKey:   cfg.APIKey,
		http:     &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) Identify(ctx context.Context, distinctID string, traits Traits) error {
	return c.capture(ctx, "$identify", distinctID, map[string]any{
		"$set": traits,
	})
}

func (c *Client) Reset(ctx context.Context, distinctID string) error {
	return c.capture(ctx, "$reset", distinctID, nil)
}

func (c *Client) capture(ctx context.Context, event, distinctID string, properties map[string]any) error {
	body, err := json.Marshal(map[string]any{
		"api_key":     c.apiKey,
		"event":       event,
		"distinct_id": distinctID,
		"properties":  properties,
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("encoding capture event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/capture", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building capture request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("sending capture event: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("analytics endpoint returned %d: %s", resp.StatusCode, msg)
	}
	return nil
}

// Noop satisfies Identifier when analytics is not configured.
type Noop struct{}

func (Noop) Identify(context.Context, string, Traits) error { return nil }
func (Noop) Reset(context.Context, string) error            { return nil }
