// Package chat relays natural-language questions about the bill set to an
// OpenAI-compatible completion endpoint, grounded on the month's projection.
package chat

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

// UnavailableReply is returned (with 503) when no credential is configured.
const UnavailableReply = "The assistant is unavailable: no API credential is configured on the server."

// Client calls the chat-completions endpoint.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey, model string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{},
	}
}

// Configured reports whether a credential is present.
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

// UpstreamError carries the collaborator's status and message so the caller
// can relay them.
type UpstreamError struct {
	Status  int
	Message string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("chat upstream returned %d: %s", e.Status, e.Message)
}

// BuildGrounding renders the single system message that grounds the model in
// the month's bills and totals.
func BuildGrounding(monthKey string, bills []core.ProjectedBill, totals core.Totals) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are a helpful assistant for a personal bill tracker. ")
	fmt.Fprintf(&b, "Current month: %s.\n", monthKey)
	if len(bills) == 0 {
		b.WriteString("There are no bills registered.\n")
	} else {
		b.WriteString("Bills this month:\n")
		for _, bill := range bills {
			status := "UNPAID"
			if bill.IsPaid {
				status = "PAID"
			}
			fmt.Fprintf(&b, "- %s (id %s): amount %s, due day %d, %s", bill.Name, bill.ID, bill.Amount, bill.DueDay, status)
			if bill.Notes != "" {
				fmt.Fprintf(&b, ", notes: %s", bill.Notes)
			}
			b.WriteString("\n")
		}
	}
	fmt.Fprintf(&b, "Totals: due %s, paid %s, remaining %s.\n", totals.Total, totals.Paid, totals.Remaining)
	b.WriteString("Answer the user's question about these bills concisely.")
	return b.String()
}

type wireMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionRequest struct {
	Model    string        `json:"model"`
	Messages []wireMessage `json:"messages"`
}

type completionResponse struct {
	Choices []struct {
		Message wireMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Complete forwards the grounded question and returns the first generated
// message, trimmed. Upstream failures come back as *UpstreamError.
func (c *Client) Complete(ctx context.Context, grounding, question string) (string, error) {
	payload, err := json.Marshal(completionRequest{
		Model: c.model,
		Messages: []wireMessage{
			{Role: "system", Content: grounding},
			{Role: "user", Content: question},
		},
	})
	if err != nil {
		return "", fmt.Errorf("encode completion request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build completion request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &UpstreamError{Status: http.StatusBadGateway, Message: err.Error()}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", &UpstreamError{Status: http.StatusBadGateway, Message: err.Error()}
	}

	var parsed completionResponse
	if err := json.Unmarshal(raw, &parsed); err != nil && resp.StatusCode >= 200 && resp.StatusCode <= 299 {
		return "", &UpstreamError{Status: http.StatusBadGateway, Message: "unparsable completion response"}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		message := strings.TrimSpace(string(raw))
		if parsed.Error != nil && parsed.Error.Message != "" {
			message = parsed.Error.Message
		}
		return "", &UpstreamError{Status: resp.StatusCode, Message: message}
	}
	if len(parsed.Choices) == 0 {
		return "", &UpstreamError{Status: http.StatusBadGateway, Message: "completion response had no choices"}
	}
	return strings.TrimSpace(parsed.Choices[0].Message.Content), nil
}
