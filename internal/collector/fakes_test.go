package collector

import (
	"context"
	"errors"
	"time"

	"github.com/YSC-hain/Message-Aggregator/internal/telegram"
)

// fakeSource implements SourceClient, ChannelResolver and MediaDownloader
// for collector tests.
type fakeSource struct {
	channels map[string]*telegram.Channel
	history  map[int64][]telegram.Message

	resolveErr map[string]bool
	historyErr map[int64]bool
	msgErr     bool
	mediaErr   bool

	mediaData []byte

	lastMinID map[int64]int
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		channels:   map[string]*telegram.Channel{},
		history:    map[int64][]telegram.Message{},
		resolveErr: map[string]bool{},
		historyErr: map[int64]bool{},
		lastMinID:  map[int64]int{},
	}
}

func (f *fakeSource) addChannel(handle string, id int64, title string) *telegram.Channel {
	ch := &telegram.Channel{ID: id, Handle: handle, Title: title}
	f.channels[handle] = ch
	return ch
}

func (f *fakeSource) ResolveChannel(_ context.Context, handle string) (*telegram.Channel, error) {
	if f.resolveErr[handle] {
		return nil, errors.New("resolve failed")
	}
	ch, ok := f.channels[handle]
	if !ok {
		return nil, errors.New("channel not found")
	}
	return ch, nil
}

// GetHistory emulates the source-side MinID filter: only messages with id
// strictly greater than minID are returned.
func (f *fakeSource) GetHistory(_ context.Context, channel *telegram.Channel, minID int, limit int) ([]telegram.Message, error) {
	if f.historyErr[channel.ID] {
		return nil, errors.New("fetch failed")
	}
	f.lastMinID[channel.ID] = minID

	var out []telegram.Message
	for _, m := range f.history[channel.ID] {
		if m.ID > minID {
			out = append(out, m)
		}
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (f *fakeSource) GetMessage(_ context.Context, channel *telegram.Channel, id int) (*telegram.Message, error) {
	if f.msgErr {
		return nil, errors.New("get message failed")
	}
	for _, m := range f.history[channel.ID] {
		if m.ID == id {
			msg := m
			return &msg, nil
		}
	}
	return nil, nil
}

func (f *fakeSource) DownloadMessageMedia(_ context.Context, msg telegram.Message) ([]byte, error) {
	if f.mediaErr {
		return nil, errors.New("download failed")
	}
	return f.mediaData, nil
}

func textMessage(id int, channelID int64, text string, date time.Time) telegram.Message {
	return telegram.Message{
		ID:        id,
		ChannelID: channelID,
		Text:      text,
		Date:      date,
		Media:     telegram.MediaNone,
	}
}
