package collector

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/YSC-hain/Message-Aggregator/internal/config"
	"github.com/YSC-hain/Message-Aggregator/internal/logger"
	"github.com/YSC-hain/Message-Aggregator/internal/telegram"
)

// Service orchestrates a collection run across all configured channels.
// Channels are fetched sequentially over the single MTProto session; a
// failing channel is skipped and never aborts the run.
type Service struct {
	resolver   ChannelResolver
	fetcher    *IncrementalFetcher
	watermarks *WatermarkStore
	log        *logger.Logger
}

// NewService wires a collection service from its collaborators.
func NewService(resolver ChannelResolver, fetcher *IncrementalFetcher, watermarks *WatermarkStore) *Service {
	return &Service{
		resolver:   resolver,
		fetcher:    fetcher,
		watermarks: watermarks,
		log:        logger.Get(),
	}
}

// NewServiceFromConfig builds the full collaborator graph around a telegram
// client using the runtime configuration.
func NewServiceFromConfig(client *telegram.Client, cfg *config.Config) *Service {
	media := NewMediaAcquirer(cfg.MediaDir, client)
	replies := NewReplyResolver(client)
	fetcher := NewIncrementalFetcher(client, media, replies, cfg.FetchLimit, cfg.FallbackWindow())
	return NewService(client, fetcher, NewWatermarkStore(cfg.WatermarkFile))
}

// VerifyChannels resolves all handles and returns the accessible subset,
// preserving input order. Skipped handles are logged, not returned.
func (s *Service) VerifyChannels(ctx context.Context, handles []string) []*telegram.Channel {
	var accessible []*telegram.Channel
	for _, handle := range handles {
		channel, err := s.resolver.ResolveChannel(ctx, handle)
		if err != nil {
			s.log.Warn().Err(err).Str("channel", handle).Msg("collect: channel unreachable, skipping")
			continue
		}
		accessible = append(accessible, channel)
	}
	return accessible
}

// CollectAll runs one collection pass: resolve channels, fetch each one
// incrementally, merge, sort by date, and persist the advanced watermarks.
// Zero accessible channels yields an empty corpus, not an error; a failed
// final watermark write is the only run-fatal condition.
func (s *Service) CollectAll(ctx context.Context, handles []string) (*CollectResult, error) {
	result := &CollectResult{
		ChannelsRequested: len(handles),
		StartedAt:         time.Now(),
	}

	s.log.Info().Int("channels", len(handles)).Msg("collect: starting run")

	channels := s.VerifyChannels(ctx, handles)
	if len(channels) == 0 {
		s.log.Warn().Msg("collect: no accessible channels")
		result.FinishedAt = time.Now()
		return result, nil
	}

	// read once per run; written once at the end
	wm, err := s.watermarks.Load()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWatermarkPersistence, err)
	}

	for _, channel := range channels {
		if ctx.Err() != nil {
			s.log.Info().Msg("collect: run cancelled")
			return result, ctx.Err()
		}

		batch, err := s.fetcher.FetchChannel(ctx, channel, wm[channel.ID])
		if err != nil {
			err = fmt.Errorf("%w: %v", ErrChannelUnreachable, err)
			s.log.Error().Err(err).Str("channel", channel.Handle).Msg("collect: channel failed, skipping")
			result.FailedChannels = append(result.FailedChannels, channel.Handle)
			continue
		}

		result.Channels = append(result.Channels, channel)
		result.ChannelsCollected++
		result.Corpus = append(result.Corpus, batch.Messages...)

		// an empty batch leaves the watermark untouched; max() guards
		// against out-of-order delivery from the source
		if len(batch.Messages) > 0 && batch.MaxID > wm[channel.ID] {
			wm[channel.ID] = batch.MaxID
		}
	}

	sort.SliceStable(result.Corpus, func(i, j int) bool {
		return result.Corpus[i].Date.Before(result.Corpus[j].Date)
	})

	if err := s.watermarks.Save(wm); err != nil {
		return result, fmt.Errorf("%w: %v", ErrWatermarkPersistence, err)
	}

	result.FinishedAt = time.Now()

	s.log.Info().
		Int("messages", len(result.Corpus)).
		Int("channels_ok", result.ChannelsCollected).
		Int("channels_failed", len(result.FailedChannels)).
		Dur("took", result.FinishedAt.Sub(result.StartedAt)).
		Msg("collect: run completed")

	return result, nil
}
