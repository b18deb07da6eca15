// Package push talks to the Expo push gateway. Token format is only checked
// here, at send time; registration accepts anything.
package push

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"billkeep/internal/core"
)

// TokenPrefix marks tokens eligible for Expo delivery.
const TokenPrefix = "ExponentPushToken["

// IsDeliverable reports whether a stored token matches the Expo format.
func IsDeliverable(token string) bool {
	return strings.HasPrefix(token, TokenPrefix)
}

// FilterDeliverable returns the registrations whose tokens pass the format
// check, preserving registration order.
func FilterDeliverable(tokens []core.PushToken) []core.PushToken {
	var out []core.PushToken
	for _, t := range tokens {
		if IsDeliverable(t.Token) {
			out = append(out, t)
		}
	}
	return out
}

// Message is one notification in an Expo batch.
type Message struct {
	To    string         `json:"to"`
	Sound string         `json:"sound"`
	Title string         `json:"title"`
	Body  string         `json:"body"`
	Data  map[string]any `json:"data,omitempty"`
}

// Ticket is the gateway's per-message receipt.
type Ticket struct {
	Status  string `json:"status"`
	ID      string `json:"id,omitempty"`
	Message string `json:"message,omitempty"`
}

// Summarize builds the shared title and body for a set of upcoming bills.
func Summarize(upcoming []core.ProjectedBill) (title, body string) {
	if len(upcoming) == 1 {
		title = "1 bill due soon"
	} else {
		title = fmt.Sprintf("%d bills due soon", len(upcoming))
	}
	parts := make([]string, len(upcoming))
	for i, b := range upcoming {
		parts[i] = fmt.Sprintf("%s (%s) due on day %d", b.Name, b.Amount, b.DueDay)
	}
	return title, strings.Join(parts, "; ")
}

// BuildBatch creates one message per deliverable token, all sharing the same
// title and body.
func BuildBatch(tokens []core.PushToken, monthKey, title, body string) []Message {
	msgs := make([]Message, len(tokens))
	for i, t := range tokens {
		msgs[i] = Message{
			To:    t.Token,
			Sound: "default",
			Title: title,
			Body:  body,
			Data:  map[string]any{"month": monthKey},
		}
	}
	return msgs
}

// Client sends notification batches to the Expo push endpoint.
type Client struct {
	url        string
	httpClient *http.Client
}

func NewClient(url string) *Client {
	return &Client{url: url, httpClient: &http.Client{}}
}

// Send forwards the batch in a single call and returns the gateway's tickets.
// Any transport fault or non-success response is one aggregate error; there
// is no per-token failure breakdown.
func (c *Client) Send(ctx context.Context, msgs []Message) ([]Ticket, error) {
	payload, err := json.Marshal(msgs)
	if err != nil {
		return nil, fmt.Errorf("encode push batch: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build push request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("push gateway call: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read push gateway response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("push gateway returned %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var parsed struct {
		Data []Ticket `json:"data"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("parse push gateway response: %w", err)
	}
	return parsed.Data, nil
}
