package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"
)

// Invoker sends one action. A nil error only means an envelope came back;
// callers still have to look at its status.
type Invoker interface {
	Invoke(ctx context.Context, action string, payload any) (*Response, error)
}

// Client speaks the JSON-over-HTTP framing of the gateway. It keeps the
// bearer token handed out by login and swaps it when the server renews it.
type Client struct {
	url    string
	client *http.Client

	mu    sync.Mutex
	token string
}

func NewClient(url string, timeout time.Duration) *Client {
	return &Client{url: url, client: &http.Client{Timeout: timeout}}
}

func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *Client) Token() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

func (c *Client) Invoke(ctx context.Context, action string, payload any) (*Response, error) {
	if payload == nil {
		payload = struct{}{}
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, &TransportError{Action: action, Err: fmt.Errorf("encode payload: %w", err)}
	}
	body, _ := json.Marshal(Request{Action: action, Data: data})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, &TransportError{Action: action, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	if tok := c.Token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &TransportError{Action: action, Err: err}
	}
	defer resp.Body.Close()

	if tok := resp.Header.Get("X-New-Token"); tok != "" {
		c.SetToken(tok)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Action: action, Err: fmt.Errorf("read response: %w", err)}
	}

	var out Response
	if err := json.Unmarshal(raw, &out); err != nil || out.Status == "" {
		if resp.StatusCode >= 400 {
			return nil, &TransportError{Action: action, Err: fmt.Errorf("status %d: %.200s", resp.StatusCode, raw)}
		}
		return nil, &TransportError{Action: action, Err: fmt.Errorf("decode response: %.200s", raw)}
	}
	return &out, nil
}

// Do invokes action and decodes the data of a success envelope into out
// (which may be nil). Both failure modes come back as an error: the caller
// treats them alike and assumes nothing was written.
func Do(ctx context.Context, inv Invoker, action string, payload, out any) (*Response, error) {
	resp, err := inv.Invoke(ctx, action, payload)
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return resp, &ApplicationError{Action: action, Message: resp.Message}
	}
	if out != nil && len(resp.Data) > 0 && string(resp.Data) != "null" {
		if err := json.Unmarshal(resp.Data, out); err != nil {
			return resp, &TransportError{Action: action, Err: fmt.Errorf("decode data: %w", err)}
		}
	}
	return resp, nil
}
