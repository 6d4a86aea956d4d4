package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadChannels(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "channels.yaml")

	content := `channels:
  - "@technews"
  - worldevents
descriptions:
  "@technews": "Technology updates"
  worldevents: "Breaking world news"
subscribers:
  - alice
analysis_prompt: "Summarize the day."
cleanup:
  media:
    max_age_days: 7
    keep_latest: 100
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	ch, err := LoadChannels(path)
	if err != nil {
		t.Fatalf("LoadChannels() error = %v", err)
	}

	if len(ch.Channels) != 2 {
		t.Errorf("Channels count = %d, want 2", len(ch.Channels))
	}
	if ch.Descriptions["worldevents"] != "Breaking world news" {
		t.Errorf("description = %q, want %q", ch.Descriptions["worldevents"], "Breaking world news")
	}
	if len(ch.Subscribers) != 1 || ch.Subscribers[0] != "alice" {
		t.Errorf("Subscribers = %v, want [alice]", ch.Subscribers)
	}
	if ch.AnalysisPrompt != "Summarize the day." {
		t.Errorf("AnalysisPrompt = %q", ch.AnalysisPrompt)
	}
	if p := ch.Cleanup["media"]; p.MaxAgeDays != 7 || p.KeepLatest != 100 {
		t.Errorf("media policy = %+v, want {7 100}", p)
	}
}

func TestLoadChannels_MissingFile(t *testing.T) {
	_, err := LoadChannels(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadChannels_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "channels.yaml")
	if err := os.WriteFile(path, []byte("channels: [unclosed"), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	if _, err := LoadChannels(path); err == nil {
		t.Fatal("expected error for invalid yaml")
	}
}
