package telegram

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gotd/td/tg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/YSC-hain/Message-Aggregator/internal/config"
)

func newUnauthorizedClient(t *testing.T) *Client {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	manager := NewManager(&config.Config{}, db)
	// manager is never Init'd, so GetClient returns nil
	return NewClient(manager)
}

func TestClient_API_UnauthorizedError(t *testing.T) {
	client := newUnauthorizedClient(t)

	api, err := client.API()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "telegram client not authorized")
	assert.Nil(t, api)
}

func TestClient_ResolveChannel_UnauthorizedError(t *testing.T) {
	client := newUnauthorizedClient(t)

	channel, err := client.ResolveChannel(context.Background(), "testchannel")

	assert.Error(t, err)
	assert.Nil(t, channel)
}

func TestClient_GetHistory_UnauthorizedError(t *testing.T) {
	client := newUnauthorizedClient(t)

	msgs, err := client.GetHistory(context.Background(), &Channel{ID: 1}, 0, 50)

	assert.Error(t, err)
	assert.Nil(t, msgs)
}

func TestClient_DownloadMessageMedia_NoMedia(t *testing.T) {
	client := newUnauthorizedClient(t)

	// a message without media resolves to nil bytes before any api call
	data, err := client.DownloadMessageMedia(context.Background(), Message{ID: 1})

	assert.NoError(t, err)
	assert.Nil(t, data)
}

func TestCheckFloodWait(t *testing.T) {
	client := newUnauthorizedClient(t)

	tests := []struct {
		name string
		err  error
		want int
	}{
		{
			name: "nil error",
			err:  nil,
			want: 0,
		},
		{
			name: "flood wait error",
			err:  errors.New("rpc error code 420: FLOOD_WAIT_15"),
			want: 15,
		},
		{
			name: "flood wait with suffix",
			err:  errors.New("FLOOD_WAIT_30 (caused by messages.GetHistory)"),
			want: 30,
		},
		{
			name: "unrelated error",
			err:  errors.New("connection reset"),
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := client.checkFloodWait(tt.err); got != tt.want {
				t.Errorf("checkFloodWait() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestParseMessage(t *testing.T) {
	channel := &Channel{ID: 777}

	tests := []struct {
		name      string
		input     tg.MessageClass
		want      *Message
		wantMedia MediaKind
		wantReply int
	}{
		{
			name: "plain text message",
			input: &tg.Message{
				ID:      100,
				Message: "hello",
				Date:    int(time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC).Unix()),
			},
			wantMedia: MediaNone,
		},
		{
			name: "photo message",
			input: &tg.Message{
				ID:      101,
				Message: "with photo",
				Date:    int(time.Now().Unix()),
				Media:   &tg.MessageMediaPhoto{},
			},
			wantMedia: MediaPhoto,
		},
		{
			name: "document message",
			input: &tg.Message{
				ID:    102,
				Date:  int(time.Now().Unix()),
				Media: &tg.MessageMediaDocument{},
			},
			wantMedia: MediaDocument,
		},
		{
			name: "reply message",
			input: &tg.Message{
				ID:      103,
				Message: "a reply",
				Date:    int(time.Now().Unix()),
				ReplyTo: &tg.MessageReplyHeader{ReplyToMsgID: 42},
			},
			wantMedia: MediaNone,
			wantReply: 42,
		},
		{
			name:  "service message is skipped",
			input: &tg.MessageService{ID: 104},
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseMessage(tt.input, channel)

			if tt.want == nil && tt.name == "service message is skipped" {
				if got != nil {
					t.Fatalf("parseMessage() = %+v, want nil", got)
				}
				return
			}

			require.NotNil(t, got)
			assert.Equal(t, channel.ID, got.ChannelID)
			assert.Equal(t, tt.wantMedia, got.Media)
			assert.Equal(t, tt.wantReply, got.ReplyToID)
		})
	}
}

func TestLargestPhotoSize(t *testing.T) {
	photo := &tg.Photo{
		Sizes: []tg.PhotoSizeClass{
			&tg.PhotoSize{Type: "s", W: 90, H: 90},
			&tg.PhotoSize{Type: "x", W: 800, H: 600},
			&tg.PhotoSizeProgressive{Type: "y", W: 1280, H: 960},
		},
	}

	if got := largestPhotoSize(photo); got != "y" {
		t.Errorf("largestPhotoSize() = %q, want %q", got, "y")
	}

	if got := largestPhotoSize(&tg.Photo{}); got != "" {
		t.Errorf("largestPhotoSize(empty) = %q, want empty", got)
	}
}
