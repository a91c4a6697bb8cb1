package models

import "time"

// RawMessage represents a row in the 'raw.telegram_messages' table. It mirrors
// the JSON produced by the scraper; Message is nil when the post has no text.
type RawMessage struct {
	ID       int64      `db:"id" json:"id"`
	Date     *time.Time `db:"date" json:"date"`
	Message  *string    `db:"message" json:"message"`
	FromID   *int64     `db:"from_id" json:"from_id"`
	ChatID   *int64     `db:"chat_id" json:"chat_id"`
	Media    bool       `db:"media" json:"media"`
	Channel  string     `db:"channel" json:"-"`
	FilePath string     `db:"file_path" json:"file_path,omitempty"`
	LoadedAt time.Time  `db:"loaded_at" json:"-"`
}

// Detection represents a row in the 'raw.image_detections' table.
type Detection struct {
	MessageID   int64     `db:"message_id" json:"message_id"`
	ObjectClass string    `db:"object_class" json:"object_class"`
	Confidence  float64   `db:"confidence" json:"confidence"`
	DetectedAt  time.Time `db:"detected_at" json:"detected_at"`
}

// MediaMessage is a media-carrying raw message that has no detections yet.
type MediaMessage struct {
	ID       int64  `db:"id"`
	Channel  string `db:"channel"`
	FilePath string `db:"file_path"`
}
