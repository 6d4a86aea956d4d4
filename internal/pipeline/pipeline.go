// Package pipeline composes one end-to-end aggregation pass: collect,
// archive, analyze, publish, dispatch.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/YSC-hain/Message-Aggregator/internal/analyzer"
	"github.com/YSC-hain/Message-Aggregator/internal/collector"
	"github.com/YSC-hain/Message-Aggregator/internal/config"
	"github.com/YSC-hain/Message-Aggregator/internal/logger"
	"github.com/YSC-hain/Message-Aggregator/internal/publisher"
	"github.com/YSC-hain/Message-Aggregator/internal/telegram"
)

// Collector runs one collection pass.
type Collector interface {
	CollectAll(ctx context.Context, handles []string) (*collector.CollectResult, error)
}

// Analyzer produces a digest for a corpus.
type Analyzer interface {
	Analyze(ctx context.Context, corpus collector.Corpus, descriptions map[string]string) (*analyzer.Result, error)
}

// Archive persists corpus and digest.
type Archive interface {
	SaveCorpus(ctx context.Context, runID string, corpus collector.Corpus) error
	SaveAnalysis(ctx context.Context, runID string, result *analyzer.Result, messages int) error
}

// EventPublisher announces finished digests.
type EventPublisher interface {
	PublishDigestCreated(ctx context.Context, event publisher.DigestEvent) error
}

// DigestSender delivers digests to subscribers.
type DigestSender interface {
	SendDigest(ctx context.Context, subscribers []string, result *analyzer.Result) error
}

// StatusProvider reports the source client status.
type StatusProvider interface {
	GetStatus() telegram.Status
}

// Pipeline wires the run stages together. Analyzer, archive, publisher and
// sender are optional: a nil collaborator disables its stage, so the
// pipeline degrades to collect-only when NATS or the LLM are not configured.
type Pipeline struct {
	collector Collector
	analyzer  Analyzer
	archive   Archive
	publisher EventPublisher
	sender    DigestSender
	status    StatusProvider
	channels  *config.Channels
	log       *logger.Logger
}

// New creates a pipeline.
func New(
	col Collector,
	an Analyzer,
	ar Archive,
	pub EventPublisher,
	sender DigestSender,
	status StatusProvider,
	channels *config.Channels,
) *Pipeline {
	return &Pipeline{
		collector: col,
		analyzer:  an,
		archive:   ar,
		publisher: pub,
		sender:    sender,
		status:    status,
		channels:  channels,
		log:       logger.Get(),
	}
}

// GetTelegramStatus implements collector.Runner.
func (p *Pipeline) GetTelegramStatus() telegram.Status {
	if p.status == nil {
		return "UNKNOWN"
	}
	return p.status.GetStatus()
}

// Run executes one full pass. Collection and watermark persistence failures
// abort the run; failures in the downstream stages are logged and the
// remaining stages still execute where possible.
func (p *Pipeline) Run(ctx context.Context) error {
	runID := uuid.New().String()
	started := time.Now()

	p.log.Info().Str("run_id", runID).Msg("pipeline: run started")

	result, err := p.collector.CollectAll(ctx, p.channels.Channels)
	if err != nil {
		p.log.Error().Err(err).Str("run_id", runID).Msg("pipeline: collection failed")
		return fmt.Errorf("collect: %w", err)
	}

	if len(result.Corpus) == 0 {
		p.log.Info().Str("run_id", runID).Msg("pipeline: nothing new collected, skipping analysis")
		return nil
	}

	if p.archive != nil {
		if err := p.archive.SaveCorpus(ctx, runID, result.Corpus); err != nil {
			p.log.Warn().Err(err).Str("run_id", runID).Msg("pipeline: corpus archive failed")
		}
	}

	if p.analyzer == nil {
		p.log.Info().Str("run_id", runID).Int("messages", len(result.Corpus)).Msg("pipeline: collect-only run done")
		return nil
	}

	digest, err := p.analyzer.Analyze(ctx, result.Corpus, p.mergeDescriptions(result))
	if err != nil {
		p.log.Error().Err(err).Str("run_id", runID).Msg("pipeline: analysis failed")
		return fmt.Errorf("analyze: %w", err)
	}

	if p.archive != nil {
		if err := p.archive.SaveAnalysis(ctx, runID, digest, len(result.Corpus)); err != nil {
			p.log.Warn().Err(err).Str("run_id", runID).Msg("pipeline: analysis archive failed")
		}
	}

	if p.publisher != nil {
		event := publisher.DigestEvent{
			RunID:     uuid.MustParse(runID),
			Summary:   digest.Summary,
			Messages:  len(result.Corpus),
			Channels:  result.ChannelsCollected,
			CreatedAt: time.Now(),
		}
		if err := p.publisher.PublishDigestCreated(ctx, event); err != nil {
			p.log.Warn().Err(err).Str("run_id", runID).Msg("pipeline: event publish failed")
		}
	}

	if p.sender != nil {
		if err := p.sender.SendDigest(ctx, p.channels.Subscribers, digest); err != nil {
			p.log.Warn().Err(err).Str("run_id", runID).Msg("pipeline: digest delivery failed")
		}
	}

	p.log.Info().
		Str("run_id", runID).
		Int("messages", len(result.Corpus)).
		Int("channels", result.ChannelsCollected).
		Dur("took", time.Since(started)).
		Msg("pipeline: run completed")

	return nil
}

// mergeDescriptions combines operator-provided channel descriptions with
// the about text resolved from the source; the operator entry wins.
func (p *Pipeline) mergeDescriptions(result *collector.CollectResult) map[string]string {
	out := make(map[string]string)
	for _, ch := range result.Channels {
		if desc, ok := p.channels.Descriptions[ch.Handle]; ok && desc != "" {
			out[ch.Title] = desc
			continue
		}
		if ch.Description != "" {
			out[ch.Title] = ch.Description
		}
	}
	return out
}
