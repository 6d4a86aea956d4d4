package config

import (
	"os"
	"testing"
	"time"
)

func TestConfig_FetchLimitDefault(t *testing.T) {
	os.Unsetenv("FETCH_LIMIT")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.FetchLimit != 80 {
		t.Errorf("FetchLimit = %d, want %d", cfg.FetchLimit, 80)
	}
}

func TestConfig_FetchLimitFromEnv(t *testing.T) {
	os.Setenv("FETCH_LIMIT", "50")
	defer os.Unsetenv("FETCH_LIMIT")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.FetchLimit != 50 {
		t.Errorf("FetchLimit = %d, want %d", cfg.FetchLimit, 50)
	}
}

func TestConfig_RejectsNonPositiveFetchLimit(t *testing.T) {
	os.Setenv("FETCH_LIMIT", "-5")
	defer os.Unsetenv("FETCH_LIMIT")

	if _, err := Load(); err == nil {
		t.Fatal("Load() should reject a negative FETCH_LIMIT")
	}
}

func TestConfig_RejectsZeroFallbackHours(t *testing.T) {
	os.Setenv("FALLBACK_HOURS", "0")
	defer os.Unsetenv("FALLBACK_HOURS")

	if _, err := Load(); err == nil {
		t.Fatal("Load() should reject a non-positive FALLBACK_HOURS")
	}
}

func TestConfig_CollectionIntervalParsing(t *testing.T) {
	os.Setenv("COLLECTION_INTERVAL", "30m")
	defer os.Unsetenv("COLLECTION_INTERVAL")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.CollectionInterval != 30*time.Minute {
		t.Errorf("CollectionInterval = %v, want %v", cfg.CollectionInterval, 30*time.Minute)
	}
}

func TestConfig_InvalidIntervalFallsBack(t *testing.T) {
	os.Setenv("COLLECTION_INTERVAL", "not-a-duration")
	defer os.Unsetenv("COLLECTION_INTERVAL")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.CollectionInterval != time.Hour {
		t.Errorf("CollectionInterval = %v, want %v", cfg.CollectionInterval, time.Hour)
	}
}

func TestConfig_FallbackWindow(t *testing.T) {
	os.Setenv("FALLBACK_HOURS", "12")
	defer os.Unsetenv("FALLBACK_HOURS")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.FallbackWindow() != 12*time.Hour {
		t.Errorf("FallbackWindow() = %v, want %v", cfg.FallbackWindow(), 12*time.Hour)
	}
}
