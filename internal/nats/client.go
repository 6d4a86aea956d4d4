// Package nats provides a thin JetStream publishing client for digest events.
package nats

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/YSC-hain/Message-Aggregator/internal/logger"
)

// Client wraps a nats connection and its jetstream context.
type Client struct {
	Conn *nats.Conn
	js   jetstream.JetStream
	log  *logger.Logger
}

// New connects to the nats server and sets up jetstream.
func New(_ context.Context, natsURL string) (*Client, error) {
	conn, err := nats.Connect(natsURL, nats.Name("message-aggregator"))
	if err != nil {
		return nil, fmt.Errorf("connect to nats: %w", err)
	}

	js, err := jetstream.New(conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("create jetstream context: %w", err)
	}

	return &Client{Conn: conn, js: js, log: logger.Get()}, nil
}

// EnsureStream creates or updates the stream carrying the given subjects.
func (c *Client) EnsureStream(ctx context.Context, name string, subjects []string) error {
	_, err := c.js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:     name,
		Subjects: subjects,
	})
	if err != nil {
		return fmt.Errorf("create stream %s: %w", name, err)
	}
	return nil
}

// Publish marshals data as JSON and publishes it to subject.
func (c *Client) Publish(ctx context.Context, subject string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	ack, err := c.js.Publish(ctx, subject, payload)
	if err != nil {
		return fmt.Errorf("publish to %s: %w", subject, err)
	}

	c.log.Debug().Str("subject", subject).Uint64("seq", ack.Sequence).Msg("nats: published")
	return nil
}

// Close closes the nats connection.
func (c *Client) Close() {
	c.Conn.Close()
}

// IsConnected reports whether the connection is alive.
func (c *Client) IsConnected() bool {
	return c.Conn != nil && c.Conn.IsConnected()
}
