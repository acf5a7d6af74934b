package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/forgeworks/botsmith/internal/nats"
	"github.com/nats-io/nats.go/jetstream"
)

// Message roles in the preview transcript.
const (
	RoleVisitor   = "visitor"
	RoleAssistant = "assistant"
)

// Message is one transcript entry.
type Message struct {
	Role    string    `json:"role"`
	Content string    `json:"content"`
	At      time.Time `json:"at"`
}

// Transcript persists the preview conversation in the chat KV bucket.
// Each agent's transcript lives under one key and is read and written
// whole; the preview is the only writer.
type Transcript struct {
	kv jetstream.KeyValue
}

// NewTranscript wraps the chat KV bucket.
func NewTranscript(kv jetstream.KeyValue) *Transcript {
	return &Transcript{kv: kv}
}

// Load returns the stored transcript for the agent, empty when none
// exists yet.
func (t *Transcript) Load(ctx context.Context, agentID string) ([]Message, error) {
	entry, err := t.kv.Get(ctx, nats.TranscriptKey(agentID))
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("loading transcript: %w", err)
	}

	var msgs []Message
	if err := json.Unmarshal(entry.Value(), &msgs); err != nil {
		return nil, fmt.Errorf("decoding transcript: %w", err)
	}
	return msgs, nil
}

// Append adds a message to the agent's transcript.
func (t *Transcript) Append(ctx context.Context, agentID string, msg Message) error {
	msgs, err := t.Load(ctx, agentID)
	if err != nil {
		return err
	}
	msgs = append(msgs, msg)

	data, err := json.Marshal(msgs)
	if err != nil {
		return fmt.Errorf("encoding transcript: %w", err)
	}
	if _, err := t.kv.Put(ctx, nats.TranscriptKey(agentID), data); err != nil {
		return fmt.Errorf("storing transcript: %w", err)
	}
	return nil
}

// Clear deletes the agent's transcript. Used by the preview's refresh
// action.
func (t *Transcript) Clear(ctx context.Context, agentID string) error {
	err := t.kv.Purge(ctx, nats.TranscriptKey(agentID))
	if err != nil && !errors.Is(err, jetstream.ErrKeyNotFound) {
		return fmt.Errorf("clearing transcript: %w", err)
	}
	return nil
}
