package collector

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/YSC-hain/Message-Aggregator/internal/logger"
	"github.com/YSC-hain/Message-Aggregator/internal/telegram"
)

// MediaAcquirer downloads message attachments into a local directory.
// Filenames embed the message id and a capture timestamp, so repeated
// downloads of the same message coexist harmlessly; dedup is the
// watermark's job, not the filesystem's.
type MediaAcquirer struct {
	dir        string
	downloader MediaDownloader
	log        *logger.Logger
}

// NewMediaAcquirer creates an acquirer writing into dir.
func NewMediaAcquirer(dir string, downloader MediaDownloader) *MediaAcquirer {
	return &MediaAcquirer{
		dir:        dir,
		downloader: downloader,
		log:        logger.Get(),
	}
}

// Download fetches the media of msg and stores it locally, returning the
// file path. Returns "" without error when the message has no downloadable
// media. Errors are returned for the caller to log; they must never cause
// the message itself to be dropped.
func (a *MediaAcquirer) Download(ctx context.Context, msg telegram.Message) (string, error) {
	if msg.Media == telegram.MediaNone {
		return "", nil
	}

	data, err := a.downloader.DownloadMessageMedia(ctx, msg)
	if err != nil {
		return "", fmt.Errorf("download media for message %d: %w", msg.ID, err)
	}
	if len(data) == 0 {
		return "", nil
	}

	if err := os.MkdirAll(a.dir, 0o755); err != nil {
		return "", fmt.Errorf("create media dir: %w", err)
	}

	name := fmt.Sprintf("%d_%s%s", msg.ID, time.Now().UTC().Format("20060102_150405"), mediaExtension(msg.Media))
	path := filepath.Join(a.dir, name)

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write media file: %w", err)
	}

	a.log.Debug().Int("msg_id", msg.ID).Str("path", path).Msg("media: saved attachment")
	return path, nil
}

func mediaExtension(kind telegram.MediaKind) string {
	switch kind {
	case telegram.MediaPhoto:
		return ".jpg"
	case telegram.MediaDocument:
		return ".bin"
	default:
		return ""
	}
}
