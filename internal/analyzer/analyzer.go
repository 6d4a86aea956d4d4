// Package analyzer turns a collected message corpus into a digest via an
// LLM, attaching message images for multimodal models.
package analyzer

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/YSC-hain/Message-Aggregator/internal/collector"
	"github.com/YSC-hain/Message-Aggregator/internal/llm"
	"github.com/YSC-hain/Message-Aggregator/internal/logger"
	"github.com/YSC-hain/Message-Aggregator/internal/telegram"
)

// maxImagesPerRequest bounds the number of attachments sent to the model.
const maxImagesPerRequest = 10

// LLMClient abstracts the LLM provider.
type LLMClient interface {
	CompleteWithImages(ctx context.Context, systemPrompt, userPrompt string, images [][]byte) (string, error)
}

// Result is the analysis output for one collection run.
type Result struct {
	Summary     string         `json:"summary"`
	Content     string         `json:"content"`
	Sources     map[string]int `json:"sources"`
	GeneratedAt time.Time      `json:"generated_at"`
}

// Analyzer drives the digest generation.
type Analyzer struct {
	llm          LLMClient
	systemPrompt string
	log          *logger.Logger
}

// New creates an analyzer. An empty customPrompt falls back to the default
// digest prompt.
func New(llmClient LLMClient, customPrompt string) *Analyzer {
	prompt := customPrompt
	if prompt == "" {
		prompt = llm.DefaultDigestSystemPrompt
	}
	return &Analyzer{
		llm:          llmClient,
		systemPrompt: prompt,
		log:          logger.Get(),
	}
}

// promptMessage is the compact per-message shape sent to the model.
type promptMessage struct {
	Channel  string  `json:"channel"`
	Date     string  `json:"date"`
	Text     string  `json:"text"`
	ReplyTo  *string `json:"reply_to,omitempty"`
	HasMedia bool    `json:"has_media,omitempty"`
}

// Analyze summarizes the corpus. Image read or resize failures skip the
// image, never the analysis.
func (a *Analyzer) Analyze(ctx context.Context, corpus collector.Corpus, descriptions map[string]string) (*Result, error) {
	if len(corpus) == 0 {
		return nil, fmt.Errorf("nothing to analyze: empty corpus")
	}

	batch := make([]promptMessage, 0, len(corpus))
	sources := make(map[string]int)
	for _, msg := range corpus {
		batch = append(batch, promptMessage{
			Channel:  msg.ChannelTitle,
			Date:     msg.Date.Format(time.RFC3339),
			Text:     msg.Text,
			ReplyTo:  msg.ReplyToMsgText,
			HasMedia: msg.MediaType != telegram.MediaNone,
		})
		sources[msg.ChannelTitle]++
	}

	messagesJSON, err := json.Marshal(batch)
	if err != nil {
		return nil, fmt.Errorf("marshal message batch: %w", err)
	}

	images := a.loadImages(corpus)

	userPrompt := llm.BuildDigestUserPrompt(string(messagesJSON), descriptions)

	raw, err := a.llm.CompleteWithImages(ctx, a.systemPrompt, userPrompt, images)
	if err != nil {
		return nil, fmt.Errorf("analyze corpus: %w", err)
	}

	result := a.parseResponse(raw)
	result.Sources = sources
	result.GeneratedAt = time.Now()

	a.log.Info().
		Int("messages", len(corpus)).
		Int("images", len(images)).
		Int("channels", len(sources)).
		Msg("analyzer: digest generated")

	return result, nil
}

// loadImages reads and size-reduces photo attachments from the corpus.
func (a *Analyzer) loadImages(corpus collector.Corpus) [][]byte {
	var images [][]byte
	for _, msg := range corpus {
		if msg.MediaType != telegram.MediaPhoto || msg.MediaPath == "" {
			continue
		}
		if len(images) >= maxImagesPerRequest {
			break
		}

		data, err := os.ReadFile(msg.MediaPath)
		if err != nil {
			a.log.Warn().Err(err).Str("path", msg.MediaPath).Msg("analyzer: cannot read image, skipping")
			continue
		}

		prepared, err := PrepareImage(data)
		if err != nil {
			a.log.Warn().Err(err).Str("path", msg.MediaPath).Msg("analyzer: cannot prepare image, skipping")
			continue
		}

		images = append(images, prepared)
	}
	return images
}

// parseResponse extracts summary/content from the model output, falling
// back to the raw text when the model ignored the JSON instruction.
func (a *Analyzer) parseResponse(raw string) *Result {
	cleaned := cleanJSON(raw)

	var parsed struct {
		Summary string `json:"summary"`
		Content string `json:"content"`
	}
	if err := json.Unmarshal([]byte(cleaned), &parsed); err != nil || parsed.Summary == "" {
		a.log.Warn().Msg("analyzer: response is not the expected json, using raw text")
		return &Result{Summary: strings.TrimSpace(raw)}
	}

	return &Result{Summary: parsed.Summary, Content: parsed.Content}
}

// cleanJSON removes markdown code blocks if present.
func cleanJSON(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
