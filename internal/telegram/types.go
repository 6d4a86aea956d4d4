package telegram

import (
	"time"

	"github.com/gotd/td/tg"
)

// MediaKind classifies a message's media payload. It is decided once at
// ingestion so downstream code never inspects raw telegram types.
type MediaKind string

// Media kinds.
const (
	MediaNone     MediaKind = "none"
	MediaPhoto    MediaKind = "photo"
	MediaDocument MediaKind = "document"
)

// Channel represents a resolved telegram channel.
type Channel struct {
	ID          int64  // stable channel id
	AccessHash  int64  // access hash for api calls
	Handle      string // channel username (without @)
	Title       string // channel title
	Description string // channel about text
}

// Message represents a parsed telegram message.
type Message struct {
	ID        int       // message id (unique within channel, increasing)
	ChannelID int64     // owning channel id
	Text      string    // message text content
	Date      time.Time // message creation timestamp
	Media     MediaKind // media classification
	ReplyToID int       // id of the replied-to message (0 = not a reply)
	Views     int       // view count
	Forwards  int       // forward count

	// RawMedia keeps the original media payload for download. Nil for
	// messages without media and in tests that fake the source.
	RawMedia tg.MessageMediaClass
}
