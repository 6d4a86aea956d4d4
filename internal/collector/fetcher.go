package collector

import (
	"context"
	"fmt"
	"time"

	"github.com/YSC-hain/Message-Aggregator/internal/logger"
	"github.com/YSC-hain/Message-Aggregator/internal/telegram"
)

// IncrementalFetcher retrieves new messages for a single channel. The mode
// is chosen per channel: a positive watermark means cursor mode, everything
// else falls back to a bounded time window.
type IncrementalFetcher struct {
	source  SourceClient
	media   *MediaAcquirer
	replies *ReplyResolver

	limit          int
	fallbackWindow time.Duration

	log *logger.Logger
}

// NewIncrementalFetcher creates a fetcher with the given page limit and
// fallback window.
func NewIncrementalFetcher(source SourceClient, media *MediaAcquirer, replies *ReplyResolver, limit int, fallbackWindow time.Duration) *IncrementalFetcher {
	if limit <= 0 {
		limit = 80
	}
	if fallbackWindow <= 0 {
		fallbackWindow = 24 * time.Hour
	}
	return &IncrementalFetcher{
		source:         source,
		media:          media,
		replies:        replies,
		limit:          limit,
		fallbackWindow: fallbackWindow,
		log:            logger.Get(),
	}
}

// selectMode picks the retrieval mode for a channel given its watermark.
func selectMode(watermark int) FetchMode {
	if watermark > 0 {
		return CursorMode
	}
	return FallbackMode
}

// FetchChannel retrieves and normalizes new messages for one channel.
// A fetch error makes the whole channel fail; media and reply failures
// only null the corresponding fields.
func (f *IncrementalFetcher) FetchChannel(ctx context.Context, channel *telegram.Channel, watermark int) (*ChannelBatch, error) {
	mode := selectMode(watermark)

	var (
		raw []telegram.Message
		err error
	)

	switch mode {
	case CursorMode:
		// the cursor alone defines novelty, no date filtering
		raw, err = f.source.GetHistory(ctx, channel, watermark, f.limit)
	case FallbackMode:
		raw, err = f.source.GetHistory(ctx, channel, 0, f.limit)
	}
	if err != nil {
		return nil, fmt.Errorf("fetch channel %s (%s mode): %w", channel.Handle, mode, err)
	}

	if mode == FallbackMode {
		cutoff := time.Now().Add(-f.fallbackWindow)
		raw = filterNewerThan(raw, cutoff)
	}

	batch := &ChannelBatch{
		Channel: channel,
		Mode:    mode,
	}

	for _, msg := range raw {
		batch.Messages = append(batch.Messages, f.normalize(ctx, channel, msg, raw))
		if msg.ID > batch.MaxID {
			batch.MaxID = msg.ID
		}
	}

	f.log.Info().
		Str("channel", channel.Handle).
		Str("mode", mode.String()).
		Int("watermark", watermark).
		Int("fetched", len(batch.Messages)).
		Msg("fetcher: channel done")

	return batch, nil
}

// normalize enriches a raw message with media and reply context. Enrichment
// failures never drop the message.
func (f *IncrementalFetcher) normalize(ctx context.Context, channel *telegram.Channel, msg telegram.Message, batch []telegram.Message) NormalizedMessage {
	out := NormalizedMessage{
		ID:                 msg.ID,
		ChannelID:          channel.ID,
		ChannelTitle:       channel.Title,
		ChannelUsername:    channel.Handle,
		ChannelDescription: channel.Description,
		Date:               msg.Date,
		Text:               msg.Text,
		MediaType:          msg.Media,
		Views:              msg.Views,
		Forwards:           msg.Forwards,
	}

	if msg.Media != telegram.MediaNone {
		path, err := f.media.Download(ctx, msg)
		if err != nil {
			f.log.Warn().Err(err).
				Str("channel", channel.Handle).
				Int("msg_id", msg.ID).
				Msg("fetcher: media download failed, keeping message without media")
		} else {
			out.MediaPath = path
		}
	}

	if msg.ReplyToID > 0 {
		replyID := msg.ReplyToID
		out.ReplyToMsgID = &replyID
		out.ReplyToMsgText = f.replies.Resolve(ctx, channel, replyID, batch)
	}

	return out
}

// filterNewerThan keeps messages dated at or after cutoff.
func filterNewerThan(msgs []telegram.Message, cutoff time.Time) []telegram.Message {
	var out []telegram.Message
	for _, m := range msgs {
		if !m.Date.Before(cutoff) {
			out = append(out, m)
		}
	}
	return out
}
