package nats

import (
	"context"

	"github.com/nats-io/nats.go/jetstream"
)

// ChatBucket is the KV bucket holding chat-preview transcripts.
const ChatBucket = "botsmith_chat"

// TranscriptKey returns the KV key for an agent's preview transcript. The
// whole transcript lives under a single key.
func TranscriptKey(agentID string) string {
	return "transcript." + agentID
}

// SetupChatBucket creates the transcript bucket if it does not exist yet.
func SetupChatBucket(ctx context.Context, js jetstream.JetStream) (jetstream.KeyValue, error) {
	return js.CreateOrUpdateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:  ChatBucket,
		Storage: jetstream.FileStorage,
	})
}
