package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// RetentionPolicy controls cleanup of a managed directory.
type RetentionPolicy struct {
	MaxAgeDays int `yaml:"max_age_days"`
	KeepLatest int `yaml:"keep_latest"`
}

// Channels holds the channel list and per-channel metadata consumed by the
// collection pipeline. It lives in a separate YAML file so operators can edit
// the channel set without touching the environment.
type Channels struct {
	// Handles of channels to collect from, with or without @ prefix.
	Channels []string `yaml:"channels"`

	// Descriptions maps a channel handle to a short description that is fed
	// to the analyzer as context.
	Descriptions map[string]string `yaml:"descriptions"`

	// Subscribers are usernames that receive the digest.
	Subscribers []string `yaml:"subscribers"`

	// AnalysisPrompt overrides the default analysis instruction when set.
	AnalysisPrompt string `yaml:"analysis_prompt"`

	// Cleanup maps a directory name to its retention policy.
	Cleanup map[string]RetentionPolicy `yaml:"cleanup"`
}

// LoadChannels reads the channels file. A missing file is an error: running
// the aggregator without any configured channels is almost certainly a
// deployment mistake.
func LoadChannels(path string) (*Channels, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read channels file: %w", err)
	}

	var ch Channels
	if err := yaml.Unmarshal(data, &ch); err != nil {
		return nil, fmt.Errorf("parse channels file: %w", err)
	}

	return &ch, nil
}
