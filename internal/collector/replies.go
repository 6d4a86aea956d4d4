package collector

import (
	"context"

	"github.com/YSC-hain/Message-Aggregator/internal/logger"
	"github.com/YSC-hain/Message-Aggregator/internal/telegram"
)

// ReplyResolver finds the text of a reply parent. It scans the already
// fetched batch first and only falls back to a targeted fetch when the
// parent lies outside the current page.
type ReplyResolver struct {
	source SourceClient
	log    *logger.Logger
}

// NewReplyResolver creates a resolver backed by source.
func NewReplyResolver(source SourceClient) *ReplyResolver {
	return &ReplyResolver{
		source: source,
		log:    logger.Get(),
	}
}

// Resolve returns the parent message text, or nil when the parent cannot be
// found. Lookup failures are logged and collapse to nil, never propagated.
func (r *ReplyResolver) Resolve(ctx context.Context, channel *telegram.Channel, parentID int, batch []telegram.Message) *string {
	if parentID <= 0 {
		return nil
	}

	for i := range batch {
		if batch[i].ID == parentID {
			text := batch[i].Text
			return &text
		}
	}

	parent, err := r.source.GetMessage(ctx, channel, parentID)
	if err != nil {
		r.log.Warn().Err(err).
			Int64("channel_id", channel.ID).
			Int("parent_id", parentID).
			Msg("replies: lookup failed, keeping reply text empty")
		return nil
	}
	if parent == nil {
		return nil
	}

	text := parent.Text
	return &text
}
