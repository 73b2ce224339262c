package monitorclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Record is the capture payload posted to the monitor. Text is the plaintext
// as submitted by the sender; the monitor deliberately sees it before any
// encryption, as a debug-side trust-boundary exception.
type Record struct {
	Sender    string `json:"sender"`
	SenderID  int64  `json:"sender_id"`
	ChatID    int64  `json:"chat_id"`
	Text      string `json:"text"`
	Encrypted bool   `json:"encrypted"`
}

// Capture is the hook the message path uses to mirror traffic to the monitor.
type Capture interface {
	Capture(ctx context.Context, rec Record) error
}

// Client posts records to the monitor's append endpoint.
type Client struct {
	baseURL string
	http    *http.Client
}

// New builds a Client for the monitor at baseURL. An empty baseURL yields a
// disabled client whose Capture is a no-op.
func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 2 * time.Second},
	}
}

var _ Capture = (*Client)(nil)

// Capture posts one record. Callers treat failures as best-effort: the monitor
// is an observability side-channel, never part of the delivery path.
func (c *Client) Capture(ctx context.Context, rec Record) error {
	if c.baseURL == "" {
		return nil
	}

	body, err := json.Marshal(rec)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/log", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("monitor returned status %d", resp.StatusCode)
	}
	return nil
}
