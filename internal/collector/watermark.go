package collector

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/YSC-hain/Message-Aggregator/internal/logger"
)

// Watermarks maps a resolved channel id to the last processed message id.
// A missing entry means the channel has never been collected.
type Watermarks map[int64]int

// WatermarkStore persists watermarks as a JSON file. The file is read once
// at the start of a run and rewritten atomically at the end, so a crash
// mid-run always leaves the previous cursor set intact.
type WatermarkStore struct {
	path string
	log  *logger.Logger
}

// NewWatermarkStore creates a store backed by the given file path.
func NewWatermarkStore(path string) *WatermarkStore {
	return &WatermarkStore{
		path: path,
		log:  logger.Get(),
	}
}

// Load reads the watermark mapping. A missing file yields an empty mapping,
// not an error; every channel then starts in fallback mode.
func (s *WatermarkStore) Load() (Watermarks, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.log.Debug().Str("path", s.path).Msg("watermark: no file yet, starting empty")
			return Watermarks{}, nil
		}
		return nil, fmt.Errorf("read watermark file: %w", err)
	}

	var wm Watermarks
	if err := json.Unmarshal(data, &wm); err != nil {
		return nil, fmt.Errorf("parse watermark file %s: %w", s.path, err)
	}
	if wm == nil {
		wm = Watermarks{}
	}
	return wm, nil
}

// Save writes the mapping via write-to-temp-then-rename so a crash mid-write
// never leaves a torn file.
func (s *WatermarkStore) Save(wm Watermarks) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create watermark dir: %w", err)
	}

	data, err := json.MarshalIndent(wm, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal watermarks: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write watermark temp file: %w", err)
	}

	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace watermark file: %w", err)
	}

	return nil
}
