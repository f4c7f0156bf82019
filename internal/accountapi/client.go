// Package accountapi is the fetch collaborator: a client for the platform
// account API, which owns authentication, persistence, and retry policy.
package accountapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"agentcloud.dev/console/core/config"
	"agentcloud.dev/console/internal/model"
)

// Params carries the route-derived identifiers sent with an account fetch.
// Empty fields are omitted from the query string.
type Params struct {
	ResourceSlug string
	MemberID     string
}

// Payload is the account API response: the account plus any extra top-level
// fields, kept verbatim so the state layer can pass them through.
type Payload struct {
	Account *model.Account
	Extra   map[string]json.RawMessage
}

func (p *Payload) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	p.Extra = make(map[string]json.RawMessage, len(fields))
	for key, raw := range fields {
		if key == "account" {
			var account model.Account
			if err := json.Unmarshal(raw, &account); err != nil {
				return fmt.Errorf("parsing account field: %w", err)
			}
			p.Account = &account
			continue
		}
		p.Extra[key] = raw
	}
	return nil
}

// Fetcher is the contract the state layer consumes.
type Fetcher interface {
	FetchAccount(ctx context.Context, params Params) (*Payload, error)
}

type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

func NewClient(cfg config.AccountAPIConfig) *Client {
	return &Client{
		baseURL: cfg.BaseURL,
		token:   cfg.Token,
		http:    &http.Client{Timeout: cfg.Timeout},
	}
}

func (c *Client) FetchAccount(ctx context.Context, params Params) (*Payload, error) {
	query := url.Values{}
	if params.ResourceSlug != "" {
		query.Set("resourceSlug", params.ResourceSlug)
	}
	if params.MemberID != "" {
		query.Set("memberId", params.MemberID)
	}

	endpoint := c.baseURL + "/account"
	if encoded := query.Encode(); encoded != "" {
		endpoint += "?" + encoded
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("building account request: %w", err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching account: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("account API returned %d: %s", resp.StatusCode, body)
	}

	var payload Payload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decoding account response: %w", err)
	}
	return &payload, nil
}
