// Package publisher emits digest lifecycle events to JetStream.
package publisher

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Stream and subject names for digest events.
const (
	StreamName           = "DIGESTS"
	SubjectDigestCreated = "digests.created"
)

// JetStream is the publishing surface; satisfied by *nats.Client and
// mockable in tests.
type JetStream interface {
	EnsureStream(ctx context.Context, name string, subjects []string) error
	Publish(ctx context.Context, subject string, data any) error
}

// DigestEvent announces a completed analysis run to downstream consumers.
type DigestEvent struct {
	RunID     uuid.UUID `json:"run_id"`
	Summary   string    `json:"summary"`
	Messages  int       `json:"messages"`
	Channels  int       `json:"channels"`
	CreatedAt time.Time `json:"created_at"`
}

// Publisher publishes digest events.
type Publisher struct {
	js JetStream
}

// New creates a publisher and makes sure the digest stream exists.
func New(ctx context.Context, js JetStream) (*Publisher, error) {
	if err := js.EnsureStream(ctx, StreamName, []string{"digests.>"}); err != nil {
		return nil, fmt.Errorf("ensure digest stream: %w", err)
	}
	return &Publisher{js: js}, nil
}

// PublishDigestCreated emits a digests.created event.
func (p *Publisher) PublishDigestCreated(ctx context.Context, event DigestEvent) error {
	if err := p.js.Publish(ctx, SubjectDigestCreated, event); err != nil {
		return fmt.Errorf("publish digest event: %w", err)
	}
	return nil
}
