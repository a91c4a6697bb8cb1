package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gotd/td/tg"
	"go.uber.org/zap"

	"telegramdw/internal/models"
	"telegramdw/internal/telegram"
)

// Scraper fetches recent messages from the configured channels and lands them
// as JSON files under <dataDir>/telegram_messages/<DATE>/<channel>.json, with
// photos under <dataDir>/telegram_images/<DATE>/<channel>/.
type Scraper struct {
	tgClient     *telegram.Client
	dataDir      string
	channels     []string
	messageLimit int
	logger       *zap.Logger
}

// New creates a new Scraper instance.
func New(tgClient *telegram.Client, dataDir string, channels []string, messageLimit int, logger *zap.Logger) *Scraper {
	return &Scraper{
		tgClient:     tgClient,
		dataDir:      dataDir,
		channels:     channels,
		messageLimit: messageLimit,
		logger:       logger,
	}
}

// MessageDir returns the JSON landing directory for the given scrape day.
func MessageDir(dataDir string, day time.Time) string {
	return filepath.Join(dataDir, "telegram_messages", day.Format("2006-01-02"))
}

// ImageDir returns the media landing directory for the given scrape day.
func ImageDir(dataDir string, day time.Time) string {
	return filepath.Join(dataDir, "telegram_images", day.Format("2006-01-02"))
}

// Run scrapes every configured channel. Channels that cannot be resolved are
// logged and skipped; the run only fails on filesystem errors or cancellation.
func (s *Scraper) Run(ctx context.Context) error {
	today := time.Now()
	msgDir := MessageDir(s.dataDir, today)
	imgDir := ImageDir(s.dataDir, today)
	if err := os.MkdirAll(msgDir, 0o755); err != nil {
		return fmt.Errorf("failed to create message dir: %w", err)
	}

	for _, channel := range s.channels {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := s.scrapeChannel(ctx, channel, msgDir, imgDir); err != nil {
			s.logger.Error("Failed to scrape channel",
				zap.String("channel", channel), zap.Error(err))
		}
	}
	return nil
}

func (s *Scraper) scrapeChannel(ctx context.Context, channel, msgDir, imgDir string) error {
	s.logger.Info("Scraping channel", zap.String("channel", channel))

	entity, err := s.tgClient.ResolveChannel(ctx, channel)
	if err != nil {
		return err
	}

	history, err := s.tgClient.FetchHistory(ctx, entity, s.messageLimit)
	if err != nil {
		return err
	}

	records := make([]models.RawMessage, 0, len(history))
	for _, msg := range history {
		rec := Record(msg, entity.ID)
		if msg.Media != nil {
			path, err := s.tgClient.DownloadPhoto(ctx, msg, filepath.Join(imgDir, channel))
			if err != nil {
				s.logger.Warn("Failed to download media",
					zap.Int("message_id", msg.ID), zap.Error(err))
			}
			rec.FilePath = path
		}
		records = append(records, rec)
	}

	outFile := filepath.Join(msgDir, channel+".json")
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal messages: %w", err)
	}
	if err := os.WriteFile(outFile, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", outFile, err)
	}

	s.logger.Info("Saved channel messages",
		zap.String("channel", channel),
		zap.Int("count", len(records)),
		zap.String("file", outFile))
	return nil
}

// Record converts a Telegram message into the raw-zone representation.
func Record(msg *tg.Message, chatID int64) models.RawMessage {
	rec := models.RawMessage{
		ID:    int64(msg.ID),
		Media: msg.Media != nil,
	}

	if msg.Date != 0 {
		date := time.Unix(int64(msg.Date), 0).UTC()
		rec.Date = &date
	}
	if msg.Message != "" {
		text := msg.Message
		rec.Message = &text
	}
	if chatID != 0 {
		rec.ChatID = &chatID
	}
	if from, ok := msg.FromID.(*tg.PeerUser); ok {
		fromID := from.UserID
		rec.FromID = &fromID
	}

	return rec
}
