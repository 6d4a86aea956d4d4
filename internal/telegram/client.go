// Package telegram provides a Telegram MTProto client wrapper.
package telegram

import (
	"bytes"
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/celestix/gotgproto"
	"github.com/gotd/td/telegram/downloader"
	"github.com/gotd/td/tg"

	"github.com/YSC-hain/Message-Aggregator/internal/logger"
)

// maxDocumentBytes caps document downloads; anything bigger is skipped
// rather than failed so the message itself still flows through.
const maxDocumentBytes = 32 * 1024 * 1024

// Client wraps the gotgproto client and provides the high-level telegram
// operations the collection pipeline needs. All calls go through a shared
// rate limiter that also honors FLOOD_WAIT backoff.
type Client struct {
	manager     *Manager
	rateLimiter *RateLimiter
	log         *logger.Logger
}

// NewClient creates a new telegram client wrapper using the Manager.
func NewClient(manager *Manager) *Client {
	return &Client{
		manager:     manager,
		rateLimiter: DefaultRateLimiter(),
		log:         logger.Get(),
	}
}

// Close stops the client via the manager.
func (c *Client) Close() {
	if c.manager != nil {
		c.manager.Stop()
	}
}

// GetStatus returns the current status of the telegram client.
func (c *Client) GetStatus() Status {
	return c.manager.GetStatus()
}

// getProto returns the current protocol client if available.
func (c *Client) getProto() (*gotgproto.Client, error) {
	proto := c.manager.GetClient()
	if proto == nil {
		return nil, fmt.Errorf("telegram client not authorized")
	}
	return proto, nil
}

// API returns the raw tg.Client for direct API calls.
func (c *Client) API() (*tg.Client, error) {
	proto, err := c.getProto()
	if err != nil {
		return nil, err
	}
	return proto.API(), nil
}

// ResolveChannel resolves a channel handle to channel info including the
// about text. The handle can be with or without @ prefix.
func (c *Client) ResolveChannel(ctx context.Context, handle string) (*Channel, error) {
	handle = strings.TrimPrefix(handle, "@")

	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, err
	}

	api, err := c.API()
	if err != nil {
		return nil, err
	}

	resolved, err := api.ContactsResolveUsername(ctx, &tg.ContactsResolveUsernameRequest{
		Username: handle,
	})
	if err != nil {
		if wait := c.checkFloodWait(err); wait > 0 {
			c.log.Warn().Int("wait_seconds", wait).Msg("telegram: FLOOD_WAIT detected, updating rate limiter")
			c.rateLimiter.SetFloodWait(wait)
		}
		return nil, fmt.Errorf("resolve username %s: %w", handle, err)
	}

	if len(resolved.Chats) == 0 {
		return nil, fmt.Errorf("channel not found: %s", handle)
	}

	ch, ok := resolved.Chats[0].(*tg.Channel)
	if !ok {
		return nil, fmt.Errorf("not a channel: %s", handle)
	}

	out := &Channel{
		ID:         ch.ID,
		AccessHash: ch.AccessHash,
		Handle:     handle,
		Title:      ch.Title,
	}

	// about text lives on the full channel; failure here is non-fatal
	fullCh, err := api.ChannelsGetFullChannel(ctx, &tg.InputChannel{
		ChannelID:  ch.ID,
		AccessHash: ch.AccessHash,
	})
	if err != nil {
		c.log.Warn().Err(err).Str("handle", handle).Msg("telegram: failed to fetch full channel info")
		return out, nil
	}

	if chFull, ok := fullCh.FullChat.(*tg.ChannelFull); ok {
		out.Description = chFull.About
	}

	return out, nil
}

// GetHistory fetches up to limit messages from a channel.
// minID > 0 restricts the result to messages with id strictly greater than
// minID; minID = 0 returns the newest page.
func (c *Client) GetHistory(ctx context.Context, channel *Channel, minID int, limit int) ([]Message, error) {
	if limit > 100 {
		limit = 100 // telegram api limit
	}

	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, err
	}

	api, err := c.API()
	if err != nil {
		return nil, err
	}

	history, err := api.MessagesGetHistory(ctx, &tg.MessagesGetHistoryRequest{
		Peer: &tg.InputPeerChannel{
			ChannelID:  channel.ID,
			AccessHash: channel.AccessHash,
		},
		MinID: minID,
		Limit: limit,
	})
	if err != nil {
		if wait := c.checkFloodWait(err); wait > 0 {
			c.log.Warn().Int("wait_seconds", wait).Msg("telegram: FLOOD_WAIT detected in GetHistory, updating rate limiter")
			c.rateLimiter.SetFloodWait(wait)
		}
		return nil, fmt.Errorf("get history: %w", err)
	}

	return c.extractMessages(history, channel), nil
}

// GetMessage fetches a single message from a channel by id.
// Returns nil without error when the message does not exist anymore.
func (c *Client) GetMessage(ctx context.Context, channel *Channel, id int) (*Message, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, err
	}

	api, err := c.API()
	if err != nil {
		return nil, err
	}

	result, err := api.ChannelsGetMessages(ctx, &tg.ChannelsGetMessagesRequest{
		Channel: &tg.InputChannel{
			ChannelID:  channel.ID,
			AccessHash: channel.AccessHash,
		},
		ID: []tg.InputMessageClass{&tg.InputMessageID{ID: id}},
	})
	if err != nil {
		if wait := c.checkFloodWait(err); wait > 0 {
			c.rateLimiter.SetFloodWait(wait)
		}
		return nil, fmt.Errorf("get message %d: %w", id, err)
	}

	messages := c.extractMessages(result, channel)
	for i := range messages {
		if messages[i].ID == id {
			return &messages[i], nil
		}
	}

	return nil, nil
}

// DownloadMessageMedia downloads the media payload of a message and returns
// the raw bytes, or nil when the message carries no downloadable media.
func (c *Client) DownloadMessageMedia(ctx context.Context, msg Message) ([]byte, error) {
	if msg.RawMedia == nil {
		return nil, nil
	}

	api, err := c.API()
	if err != nil {
		return nil, err
	}

	var fileLocation tg.InputFileLocationClass

	switch m := msg.RawMedia.(type) {
	case *tg.MessageMediaPhoto:
		photo, ok := m.Photo.(*tg.Photo)
		if !ok {
			return nil, nil
		}

		thumbSize := largestPhotoSize(photo)
		if thumbSize == "" {
			return nil, nil
		}

		fileLocation = &tg.InputPhotoFileLocation{
			ID:            photo.ID,
			AccessHash:    photo.AccessHash,
			FileReference: photo.FileReference,
			ThumbSize:     thumbSize,
		}

	case *tg.MessageMediaDocument:
		doc, ok := m.Document.(*tg.Document)
		if !ok {
			return nil, nil
		}

		if doc.Size > maxDocumentBytes {
			c.log.Debug().Int("msg_id", msg.ID).Int64("size", doc.Size).Msg("telegram: skipping oversized document")
			return nil, nil
		}

		fileLocation = &tg.InputDocumentFileLocation{
			ID:            doc.ID,
			AccessHash:    doc.AccessHash,
			FileReference: doc.FileReference,
		}

	default:
		return nil, nil
	}

	buf := new(bytes.Buffer)
	if _, err := downloader.NewDownloader().Download(api, fileLocation).Stream(ctx, buf); err != nil {
		return nil, fmt.Errorf("download media: %w", err)
	}

	return buf.Bytes(), nil
}

// SendMessageToUser resolves a username and sends a text message to them.
func (c *Client) SendMessageToUser(ctx context.Context, username string, text string) error {
	username = strings.TrimPrefix(username, "@")

	if err := c.rateLimiter.Wait(ctx); err != nil {
		return err
	}

	api, err := c.API()
	if err != nil {
		return err
	}

	resolved, err := api.ContactsResolveUsername(ctx, &tg.ContactsResolveUsernameRequest{
		Username: username,
	})
	if err != nil {
		return fmt.Errorf("resolve user %s: %w", username, err)
	}

	var peer tg.InputPeerClass
	for _, u := range resolved.Users {
		if user, ok := u.(*tg.User); ok {
			peer = &tg.InputPeerUser{UserID: user.ID, AccessHash: user.AccessHash}
			break
		}
	}
	if peer == nil {
		return fmt.Errorf("user not found: %s", username)
	}

	_, err = api.MessagesSendMessage(ctx, &tg.MessagesSendMessageRequest{
		Peer:     peer,
		Message:  text,
		RandomID: rand.Int63(),
	})
	if err != nil {
		if wait := c.checkFloodWait(err); wait > 0 {
			c.rateLimiter.SetFloodWait(wait)
		}
		return fmt.Errorf("send message to %s: %w", username, err)
	}

	return nil
}

// extractMessages converts a telegram message response to our Message type.
func (c *Client) extractMessages(messagesClass tg.MessagesMessagesClass, channel *Channel) []Message {
	var messages []Message

	switch h := messagesClass.(type) {
	case *tg.MessagesChannelMessages:
		for _, msg := range h.Messages {
			if m := parseMessage(msg, channel); m != nil {
				messages = append(messages, *m)
			}
		}
	case *tg.MessagesMessages:
		for _, msg := range h.Messages {
			if m := parseMessage(msg, channel); m != nil {
				messages = append(messages, *m)
			}
		}
	}

	return messages
}

// parseMessage converts a single telegram message to our Message type.
func parseMessage(msg tg.MessageClass, channel *Channel) *Message {
	m, ok := msg.(*tg.Message)
	if !ok {
		return nil
	}

	out := &Message{
		ID:        m.ID,
		ChannelID: channel.ID,
		Text:      m.Message,
		Date:      time.Unix(int64(m.Date), 0).UTC(),
		Media:     MediaNone,
		Views:     m.Views,
		Forwards:  m.Forwards,
	}

	switch m.Media.(type) {
	case *tg.MessageMediaPhoto:
		out.Media = MediaPhoto
		out.RawMedia = m.Media
	case *tg.MessageMediaDocument:
		out.Media = MediaDocument
		out.RawMedia = m.Media
	}

	if m.ReplyTo != nil {
		if header, ok := m.ReplyTo.(*tg.MessageReplyHeader); ok && header.ReplyToMsgID > 0 {
			out.ReplyToID = header.ReplyToMsgID
		}
	}

	return out
}

// largestPhotoSize returns the type of the largest available photo size,
// or "" when no usable size exists.
func largestPhotoSize(photo *tg.Photo) string {
	var thumbSize string
	maxArea := 0

	for _, size := range photo.Sizes {
		switch s := size.(type) {
		case *tg.PhotoSize:
			if s.W*s.H > maxArea {
				maxArea = s.W * s.H
				thumbSize = s.Type
			}
		case *tg.PhotoSizeProgressive:
			if s.W*s.H > maxArea {
				maxArea = s.W * s.H
				thumbSize = s.Type
			}
		}
	}

	return thumbSize
}

// checkFloodWait checks if err is a FLOOD_WAIT error and returns wait seconds.
func (c *Client) checkFloodWait(err error) int {
	if err == nil {
		return 0
	}

	// gotgproto/gotd errors are usually wrapped; the error string is the
	// most reliable signal without deep coupling to gotd internals
	str := err.Error()
	if strings.Contains(str, "FLOOD_WAIT_") {
		var seconds int
		parts := strings.Split(str, "FLOOD_WAIT_")
		if len(parts) > 1 {
			numStr := strings.TrimSpace(parts[1])
			_, _ = fmt.Sscanf(numStr, "%d", &seconds)
			return seconds
		}
	}
	return 0
}
