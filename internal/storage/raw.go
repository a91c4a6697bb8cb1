package storage

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"telegramdw/internal/models"
)

// RawRepository manages the raw zone of the warehouse: immutable ingested
// messages and externally produced image detections.
type RawRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewRawRepository creates a new RawRepository instance.
func NewRawRepository(db *sqlx.DB, logger *zap.Logger) *RawRepository {
	return &RawRepository{db: db, logger: logger}
}

// SaveMessages inserts scraped messages into raw.telegram_messages. Rows whose
// id already exists are ignored, so reloading a scrape day is safe.
func (r *RawRepository) SaveMessages(ctx context.Context, msgs []models.RawMessage) (int64, error) {
	if len(msgs) == 0 {
		return 0, nil
	}

	query := `
	INSERT INTO raw.telegram_messages (
		id, date, message, from_id, chat_id, media, channel, file_path
	) VALUES (
		:id, :date, :message, :from_id, :chat_id, :media, :channel, :file_path
	) ON CONFLICT (id) DO NOTHING`

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var inserted int64
	for _, msg := range msgs {
		res, err := tx.NamedExecContext(ctx, query, msg)
		if err != nil {
			return 0, fmt.Errorf("failed to insert message %d: %w", msg.ID, err)
		}
		n, _ := res.RowsAffected()
		inserted += n
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit messages: %w", err)
	}
	return inserted, nil
}

// SaveDetections inserts object detections into raw.image_detections with
// conflict-ignore semantics.
func (r *RawRepository) SaveDetections(ctx context.Context, dets []models.Detection) error {
	if len(dets) == 0 {
		return nil
	}

	query := `
	INSERT INTO raw.image_detections (message_id, object_class, confidence)
	VALUES (:message_id, :object_class, :confidence)
	ON CONFLICT DO NOTHING`

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, det := range dets {
		if _, err := tx.NamedExecContext(ctx, query, det); err != nil {
			return fmt.Errorf("failed to insert detection for message %d: %w", det.MessageID, err)
		}
	}

	return tx.Commit()
}

// FetchUnprocessedMedia returns media messages that have no detections yet.
// Only rows whose file_path points at an image are returned; the loader falls
// back to the source JSON path for media it could not download, and those rows
// can never be detected.
func (r *RawRepository) FetchUnprocessedMedia(ctx context.Context) ([]models.MediaMessage, error) {
	query := `
	SELECT m.id, m.channel, m.file_path
	FROM raw.telegram_messages m
	WHERE m.media IS TRUE
	  AND m.file_path ~* '\.(jpg|jpeg|png|webp|bmp)$'
	  AND NOT EXISTS (
	      SELECT 1 FROM raw.image_detections d WHERE d.message_id = m.id
	  )`

	var rows []models.MediaMessage
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to fetch unprocessed media: %w", err)
	}
	return rows, nil
}
