package loader

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"telegramdw/internal/models"
	"telegramdw/internal/scraper"
)

// ParseDay parses a scrape-day override in YYYY-MM-DD form. An empty value
// means today.
func ParseDay(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Now(), nil
	}
	day, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD: %w", value, err)
	}
	return day, nil
}

// MessageSaver persists raw messages. Satisfied by storage.RawRepository.
type MessageSaver interface {
	SaveMessages(ctx context.Context, msgs []models.RawMessage) (int64, error)
}

// Loader moves scraped JSON files into raw.telegram_messages. Loads are
// idempotent: already-present message ids are skipped.
type Loader struct {
	repo    MessageSaver
	dataDir string
	logger  *zap.Logger
}

// New creates a new Loader instance.
func New(repo MessageSaver, dataDir string, logger *zap.Logger) *Loader {
	return &Loader{repo: repo, dataDir: dataDir, logger: logger}
}

// Run loads every channel file from the given scrape day. A missing scrape
// directory is not an error; it just means there is nothing to load.
func (l *Loader) Run(ctx context.Context, day time.Time) error {
	dir := scraper.MessageDir(l.dataDir, day)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			l.logger.Warn("No scrape folder found, nothing to load", zap.String("dir", dir))
			return nil
		}
		return fmt.Errorf("failed to read scrape dir: %w", err)
	}

	var total int64
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		path := filepath.Join(dir, entry.Name())

		msgs, err := ParseFile(path)
		if err != nil {
			l.logger.Error("Failed to parse scrape file", zap.String("file", path), zap.Error(err))
			continue
		}

		inserted, err := l.repo.SaveMessages(ctx, msgs)
		if err != nil {
			return fmt.Errorf("failed to load %s: %w", path, err)
		}
		total += inserted
		l.logger.Info("Loaded scrape file",
			zap.String("file", entry.Name()),
			zap.Int("messages", len(msgs)),
			zap.Int64("inserted", inserted))
	}

	l.logger.Info("Load finished", zap.Int64("inserted", total))
	return nil
}

// ParseFile reads a channel scrape file and returns rows ready for insert.
// The channel name is the file stem; file_path records the source file when
// the message carries no media path of its own.
func ParseFile(path string) ([]models.RawMessage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var msgs []models.RawMessage
	if err := json.Unmarshal(data, &msgs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal messages: %w", err)
	}

	channel := strings.TrimSuffix(filepath.Base(path), ".json")
	for i := range msgs {
		msgs[i].Channel = channel
		if msgs[i].FilePath == "" {
			msgs[i].FilePath = path
		}
	}
	return msgs, nil
}
