package database

import (
	"database/sql"
	"time"
)

// Message is one harvested WhatsApp message, keyed by the gateway's message id.
// Content holds the text for text messages, the download URL for media, or a
// placeholder for kinds whose payload is not stored. It is never empty.
type Message struct {
	MessageID   string         `db:"message_id"`
	ChatID      string         `db:"chat_id"`
	Sender      string         `db:"sender"`
	MessageType string         `db:"message_type"`
	Content     string         `db:"message_content"`
	Caption     sql.NullString `db:"caption"`
	Timestamp   int64          `db:"timestamp"` // seconds since epoch

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// Group is one WhatsApp group as last seen in the gateway's chat listing.
// Owner and ParticipantCount are NULL when the metadata lookup failed.
type Group struct {
	GroupID          string         `db:"group_id"`
	Name             string         `db:"group_name"`
	Owner            sql.NullString `db:"owner"`
	ParticipantCount sql.NullInt64  `db:"participant_count"`

	UpdatedAt time.Time `db:"updated_at"`
}
