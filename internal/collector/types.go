package collector

import (
	"context"
	"time"

	"github.com/YSC-hain/Message-Aggregator/internal/telegram"
)

// FetchMode selects how messages are retrieved for a single channel.
type FetchMode int

const (
	// CursorMode fetches only messages with id strictly greater than the
	// stored watermark.
	CursorMode FetchMode = iota
	// FallbackMode fetches the newest page and discards anything older than
	// the configured fallback window. Used when no watermark exists.
	FallbackMode
)

func (m FetchMode) String() string {
	switch m {
	case CursorMode:
		return "cursor"
	case FallbackMode:
		return "fallback"
	default:
		return "unknown"
	}
}

// SourceClient defines the message retrieval operations the fetcher needs.
type SourceClient interface {
	GetHistory(ctx context.Context, channel *telegram.Channel, minID int, limit int) ([]telegram.Message, error)
	GetMessage(ctx context.Context, channel *telegram.Channel, id int) (*telegram.Message, error)
}

// ChannelResolver maps a channel handle to a resolved channel.
type ChannelResolver interface {
	ResolveChannel(ctx context.Context, handle string) (*telegram.Channel, error)
}

// MediaDownloader fetches the raw media payload of a message.
type MediaDownloader interface {
	DownloadMessageMedia(ctx context.Context, msg telegram.Message) ([]byte, error)
}

// NormalizedMessage is the canonical per-message record handed downstream.
// Exactly one record exists per (channel id, message id) per run.
type NormalizedMessage struct {
	ID                 int                `json:"id"`
	ChannelID          int64              `json:"channel_id"`
	ChannelTitle       string             `json:"channel_title"`
	ChannelUsername    string             `json:"channel_username"`
	ChannelDescription string             `json:"channel_description,omitempty"`
	Date               time.Time          `json:"date"`
	Text               string             `json:"text"`
	MediaPath          string             `json:"media_path,omitempty"`
	MediaType          telegram.MediaKind `json:"media_type"`
	Views              int                `json:"views"`
	Forwards           int                `json:"forwards"`
	ReplyToMsgID       *int               `json:"reply_to_msg_id,omitempty"`
	ReplyToMsgText     *string            `json:"reply_to_msg_text,omitempty"`
}

// Corpus is one run's worth of normalized messages, sorted ascending by date.
type Corpus []NormalizedMessage

// ChannelBatch is the per-channel output of the fetcher.
type ChannelBatch struct {
	Channel  *telegram.Channel
	Mode     FetchMode
	Messages []NormalizedMessage
	MaxID    int
}

// CollectResult contains the merged corpus and run statistics.
type CollectResult struct {
	Corpus            Corpus
	Channels          []*telegram.Channel
	ChannelsRequested int
	ChannelsCollected int
	FailedChannels    []string
	StartedAt         time.Time
	FinishedAt        time.Time
}

// Descriptions returns channel title -> description for all channels that
// contributed to the run, for use in the analysis prompt.
func (r *CollectResult) Descriptions() map[string]string {
	out := make(map[string]string, len(r.Channels))
	for _, ch := range r.Channels {
		if ch.Description != "" {
			out[ch.Title] = ch.Description
		}
	}
	return out
}
