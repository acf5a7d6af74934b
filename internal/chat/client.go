// Package chat drives the preview conversation: the webhook client that
// produces assistant replies and the persisted transcript behind the
// preview widget.
package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/forgeworks/botsmith/internal/logger"
)

// FallbackReply is shown in place of an assistant reply when the webhook
// fails. The preview must keep the conversation going, not surface
// transport errors to the visitor.
const FallbackReply = "Sorry, I couldn't process that right now. Please try again."

// Client posts visitor messages to the chat-reply webhook.
type Client struct {
	url  string
	http *http.Client
}

// NewClient creates a webhook client. An empty URL is allowed; Send then
// always fails and the caller falls back.
func NewClient(url string) *Client {
	return &Client{
		url:  url,
		http: &http.Client{Timeout: 15 * time.Second},
	}
}

// reply tolerates the webhook answering under any of the common field
// names.
type reply struct {
	Response string `json:"response"`
	Message  string `json:"message"`
	Text     string `json:"text"`
}

func (r reply) value() string {
	switch {
	case r.Response != "":
		return r.Response
	case r.Message != "":
		return r.Message
	default:
		return r.Text
	}
}

// Send posts the visitor's message and returns the assistant's reply.
func (c *Client) Send(ctx context.Context, message string) (string, error) {
	if c.url == "" {
		return "", errors.New("no chat webhook configured")
	}

	body, err := json.Marshal(map[string]string{"message": message})
	if err != nil {
		return "", fmt.Errorf("encoding chat message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("building chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("posting chat message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("chat webhook returned status %d", resp.StatusCode)
	}

	var r reply
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return "", fmt.Errorf("decoding chat reply: %w", err)
	}
	if r.value() == "" {
		return "", errors.New("chat webhook returned an empty reply")
	}

	logger.Debug("chat reply received (%d chars)", len(r.value()))
	return r.value(), nil
}
