// Package archive persists collected messages and generated digests.
package archive

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/YSC-hain/Message-Aggregator/internal/analyzer"
	"github.com/YSC-hain/Message-Aggregator/internal/collector"
	"github.com/YSC-hain/Message-Aggregator/internal/logger"
)

// StoredMessage is the durable copy of a normalized message.
type StoredMessage struct {
	ID             uint   `gorm:"primarykey"`
	RunID          string `gorm:"index"`
	ChannelID      int64  `gorm:"index"`
	MessageID      int
	ChannelTitle   string
	ChannelHandle  string
	Date           time.Time `gorm:"index"`
	Text           string
	MediaPath      string
	MediaType      string
	Views          int
	Forwards       int
	ReplyToMsgID   *int
	ReplyToMsgText *string
	CreatedAt      time.Time
}

// StoredAnalysis is one generated digest.
type StoredAnalysis struct {
	ID        uint   `gorm:"primarykey"`
	RunID     string `gorm:"index"`
	Summary   string
	Content   string
	Messages  int
	Channels  int
	CreatedAt time.Time
}

// Store wraps the archive tables.
type Store struct {
	db  *gorm.DB
	log *logger.Logger
}

// NewStore migrates the archive schema and returns the store.
func NewStore(db *gorm.DB) (*Store, error) {
	if err := db.AutoMigrate(&StoredMessage{}, &StoredAnalysis{}); err != nil {
		return nil, fmt.Errorf("migrate archive schema: %w", err)
	}
	return &Store{db: db, log: logger.Get()}, nil
}

// SaveCorpus stores all messages of a run.
func (s *Store) SaveCorpus(ctx context.Context, runID string, corpus collector.Corpus) error {
	if len(corpus) == 0 {
		return nil
	}

	rows := make([]StoredMessage, 0, len(corpus))
	for _, msg := range corpus {
		rows = append(rows, StoredMessage{
			RunID:          runID,
			ChannelID:      msg.ChannelID,
			MessageID:      msg.ID,
			ChannelTitle:   msg.ChannelTitle,
			ChannelHandle:  msg.ChannelUsername,
			Date:           msg.Date,
			Text:           msg.Text,
			MediaPath:      msg.MediaPath,
			MediaType:      string(msg.MediaType),
			Views:          msg.Views,
			Forwards:       msg.Forwards,
			ReplyToMsgID:   msg.ReplyToMsgID,
			ReplyToMsgText: msg.ReplyToMsgText,
		})
	}

	if err := s.db.WithContext(ctx).Create(&rows).Error; err != nil {
		return fmt.Errorf("save corpus: %w", err)
	}

	s.log.Debug().Str("run_id", runID).Int("messages", len(rows)).Msg("archive: corpus saved")
	return nil
}

// SaveAnalysis stores the digest generated for a run.
func (s *Store) SaveAnalysis(ctx context.Context, runID string, result *analyzer.Result, messages int) error {
	row := StoredAnalysis{
		RunID:    runID,
		Summary:  result.Summary,
		Content:  result.Content,
		Messages: messages,
		Channels: len(result.Sources),
	}

	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("save analysis: %w", err)
	}
	return nil
}

// RecentAnalyses returns the latest digests, newest first.
func (s *Store) RecentAnalyses(ctx context.Context, limit int) ([]StoredAnalysis, error) {
	if limit <= 0 {
		limit = 10
	}

	var rows []StoredAnalysis
	err := s.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("load analyses: %w", err)
	}
	return rows, nil
}

// MessagesByRun returns all messages stored for one run in date order.
func (s *Store) MessagesByRun(ctx context.Context, runID string) ([]StoredMessage, error) {
	var rows []StoredMessage
	err := s.db.WithContext(ctx).
		Where("run_id = ?", runID).
		Order("date ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("load run messages: %w", err)
	}
	return rows, nil
}
