package models

import "time"

// TopProduct is one entry in the top detected object classes report.
type TopProduct struct {
	Product  string `db:"product" json:"product"`
	Mentions int64  `db:"mentions" json:"mentions"`
}

// ActivityPoint is a single day of posting activity for a channel.
type ActivityPoint struct {
	Date     time.Time `db:"date" json:"date"`
	Messages int64     `db:"messages" json:"messages"`
}

// MessageResult is one message search hit.
type MessageResult struct {
	MessageID int64      `db:"message_id" json:"message_id"`
	Channel   string     `db:"channel" json:"channel"`
	Text      string     `db:"text" json:"text"`
	Date      *time.Time `db:"date" json:"date"`
}
