// Package dispatcher delivers generated digests to subscribers over
// Telegram direct messages.
package dispatcher

import (
	"context"
	"fmt"
	"strings"

	"github.com/YSC-hain/Message-Aggregator/internal/analyzer"
	"github.com/YSC-hain/Message-Aggregator/internal/logger"
)

// telegram caps messages at 4096 chars; stay under it with room for the
// part header
const maxChunkRunes = 4000

// MessageSender sends a text message to a username.
type MessageSender interface {
	SendMessageToUser(ctx context.Context, username string, text string) error
}

// Dispatcher fans a digest out to all subscribers.
type Dispatcher struct {
	sender MessageSender
	log    *logger.Logger
}

// New creates a dispatcher.
func New(sender MessageSender) *Dispatcher {
	return &Dispatcher{
		sender: sender,
		log:    logger.Get(),
	}
}

// SendDigest delivers the digest to every subscriber. A failing subscriber
// is logged and skipped; an error is returned only when no subscriber could
// be reached at all.
func (d *Dispatcher) SendDigest(ctx context.Context, subscribers []string, result *analyzer.Result) error {
	if len(subscribers) == 0 {
		d.log.Debug().Msg("dispatch: no subscribers configured")
		return nil
	}

	chunks := chunkText(formatDigest(result), maxChunkRunes)

	delivered := 0
	for _, subscriber := range subscribers {
		if err := d.sendChunks(ctx, subscriber, chunks); err != nil {
			d.log.Warn().Err(err).Str("subscriber", subscriber).Msg("dispatch: delivery failed")
			continue
		}
		delivered++
	}

	d.log.Info().
		Int("delivered", delivered).
		Int("subscribers", len(subscribers)).
		Int("parts", len(chunks)).
		Msg("dispatch: digest sent")

	if delivered == 0 {
		return fmt.Errorf("digest not delivered to any of %d subscribers", len(subscribers))
	}
	return nil
}

func (d *Dispatcher) sendChunks(ctx context.Context, subscriber string, chunks []string) error {
	for i, chunk := range chunks {
		text := chunk
		if len(chunks) > 1 {
			text = fmt.Sprintf("(%d/%d)\n%s", i+1, len(chunks), chunk)
		}
		if err := d.sender.SendMessageToUser(ctx, subscriber, text); err != nil {
			return err
		}
	}
	return nil
}

// formatDigest renders the digest body sent to subscribers.
func formatDigest(result *analyzer.Result) string {
	var b strings.Builder
	b.WriteString(result.Summary)
	if result.Content != "" {
		b.WriteString("\n\n")
		b.WriteString(result.Content)
	}
	return b.String()
}

// chunkText splits text into rune-bounded chunks, preferring line breaks
// when one falls inside the tail of a chunk.
func chunkText(text string, size int) []string {
	runes := []rune(text)
	if len(runes) <= size {
		return []string{text}
	}

	var chunks []string
	for len(runes) > 0 {
		if len(runes) <= size {
			chunks = append(chunks, string(runes))
			break
		}

		cut := size
		// look back for a newline to avoid splitting mid-line
		for i := size - 1; i > size/2; i-- {
			if runes[i] == '\n' {
				cut = i + 1
				break
			}
		}

		chunks = append(chunks, strings.TrimRight(string(runes[:cut]), "\n"))
		runes = runes[cut:]
	}

	return chunks
}
