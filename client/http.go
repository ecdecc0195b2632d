package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/miosa/osa-view/table"
)

// MaxBody caps how much of a response Fetch reads.
const MaxBody = 64 << 20

// Client fetches remote content to view.
type Client struct {
	Token      string
	HTTPClient *http.Client
}

// New returns a Client with a bounded request timeout.
func New() *Client {
	return &Client{
		HTTPClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// SetToken sets the bearer token sent with every request.
func (c *Client) SetToken(token string) {
	c.Token = token
}

// Result is fetched content: a table when the response is a JSON table,
// otherwise raw text.
type Result struct {
	Text  string
	Table *table.Table
}

// Fetch downloads url. Bodies shaped like a JSON table are parsed; anything
// else is returned as text.
func (c *Client) Fetch(ctx context.Context, url string, forceTable bool) (Result, error) {
	resp, err := c.get(ctx, url)
	if err != nil {
		return Result{}, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Result{}, c.parseError(resp)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxBody))
	if err != nil {
		return Result{}, fmt.Errorf("read %s: %w", url, err)
	}
	if forceTable || table.LooksLikeTable(body) {
		t, err := table.Parse(body)
		if err != nil {
			return Result{}, fmt.Errorf("decode table: %w", err)
		}
		return Result{Table: t}, nil
	}
	return Result{Text: string(body)}, nil
}

// -- HTTP helpers -------------------------------------------------------------

func (c *Client) get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	c.setHeaders(req)
	return c.HTTPClient.Do(req)
}

func (c *Client) setHeaders(req *http.Request) {
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
}

// ErrorResponse is the JSON error body some servers return.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func (c *Client) parseError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var apiErr ErrorResponse
	if json.Unmarshal(body, &apiErr) == nil && apiErr.Error != "" {
		if apiErr.Details != "" {
			return fmt.Errorf("HTTP %d: %s: %s", resp.StatusCode, apiErr.Error, apiErr.Details)
		}
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, apiErr.Error)
	}
	return fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(body))
}
