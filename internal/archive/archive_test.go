package archive

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/YSC-hain/Message-Aggregator/internal/analyzer"
	"github.com/YSC-hain/Message-Aggregator/internal/collector"
	"github.com/YSC-hain/Message-Aggregator/internal/telegram"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	store, err := NewStore(db)
	require.NoError(t, err)
	return store
}

func TestSaveCorpusAndLoad(t *testing.T) {
	store := newTestStore(t)
	now := time.Now()

	replyID := 1
	replyText := "parent text"
	corpus := collector.Corpus{
		{ID: 1, ChannelID: 100, ChannelTitle: "News", ChannelUsername: "news",
			Date: now.Add(-time.Minute), Text: "first", MediaType: telegram.MediaNone},
		{ID: 2, ChannelID: 100, ChannelTitle: "News", ChannelUsername: "news",
			Date: now, Text: "second", MediaType: telegram.MediaPhoto, MediaPath: "/media/2.jpg",
			ReplyToMsgID: &replyID, ReplyToMsgText: &replyText},
	}

	require.NoError(t, store.SaveCorpus(context.Background(), "run-1", corpus))

	rows, err := store.MessagesByRun(context.Background(), "run-1")
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "first", rows[0].Text)
	assert.Equal(t, "second", rows[1].Text)
	assert.Equal(t, "photo", rows[1].MediaType)
	require.NotNil(t, rows[1].ReplyToMsgText)
	assert.Equal(t, "parent text", *rows[1].ReplyToMsgText)
}

func TestSaveCorpus_Empty(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.SaveCorpus(context.Background(), "run-1", nil))

	rows, err := store.MessagesByRun(context.Background(), "run-1")
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestSaveAnalysisAndRecent(t *testing.T) {
	store := newTestStore(t)

	for i, summary := range []string{"first digest", "second digest"} {
		result := &analyzer.Result{
			Summary: summary,
			Content: "content",
			Sources: map[string]int{"News": 3},
		}
		require.NoError(t, store.SaveAnalysis(context.Background(), "run", result, 3+i))
		time.Sleep(5 * time.Millisecond) // distinct created_at ordering
	}

	recent, err := store.RecentAnalyses(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, "second digest", recent[0].Summary)
	assert.Equal(t, 1, recent[0].Channels)
}

func TestMessagesByRun_IsolatesRuns(t *testing.T) {
	store := newTestStore(t)
	now := time.Now()

	require.NoError(t, store.SaveCorpus(context.Background(), "run-a", collector.Corpus{
		{ID: 1, ChannelID: 1, Text: "a", Date: now},
	}))
	require.NoError(t, store.SaveCorpus(context.Background(), "run-b", collector.Corpus{
		{ID: 2, ChannelID: 1, Text: "b", Date: now},
	}))

	rows, err := store.MessagesByRun(context.Background(), "run-a")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "a", rows[0].Text)
}
