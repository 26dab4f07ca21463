package tasks

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/edgard/wadigest/internal/config"
	"github.com/edgard/wadigest/internal/database"
	"github.com/edgard/wadigest/internal/greenapi"
)

// Placeholder contents stored for kinds whose payload is not kept.
const (
	EmptyContent    = "EMPTY"
	LocationContent = "Location (not stored)"
	VCardContent    = "vCard (not stored)"
)

// excludedKinds are dropped before normalization and never stored.
var excludedKinds = map[string]struct{}{
	greenapi.TypeReaction:     {},
	greenapi.TypeQuoted:       {},
	greenapi.TypeExtendedText: {},
}

// IsExcludedKind reports whether messages of the given kind are never stored.
func IsExcludedKind(kind string) bool {
	_, ok := excludedKinds[kind]
	return ok
}

// FetchMessages fetches up to count messages of chatID and keeps those sent at
// or after cutoff. An upstream empty history yields an empty slice and no error.
func FetchMessages(ctx context.Context, gw Gateway, chatID string, count int, cutoff time.Time) ([]greenapi.Message, error) {
	history, err := gw.GetChatHistory(ctx, chatID, count)
	if err != nil {
		return nil, err
	}

	threshold := cutoff.Unix()
	recent := make([]greenapi.Message, 0, len(history))
	for _, m := range history {
		if m.Timestamp >= threshold {
			recent = append(recent, m)
		}
	}
	return recent, nil
}

// Normalize maps a gateway message to a store record. It returns false when
// the message has no identifier and cannot be stored. Image, video and
// document records always carry a caption, possibly empty; other kinds leave
// it NULL.
func Normalize(m greenapi.Message) (database.Message, bool) {
	if m.IDMessage == "" {
		return database.Message{}, false
	}

	var content string
	var caption sql.NullString
	switch m.TypeMessage {
	case greenapi.TypeText:
		content = m.TextMessage
	case greenapi.TypeImage, greenapi.TypeVideo:
		content = m.DownloadURL
		caption = sql.NullString{String: m.Caption, Valid: true}
	case greenapi.TypeAudio:
		content = m.DownloadURL
	case greenapi.TypeDocument:
		content = m.DownloadURL
		caption = sql.NullString{String: m.FileName, Valid: true}
	case greenapi.TypeLocation:
		content = LocationContent
	case greenapi.TypeVCard:
		content = VCardContent
	}
	if content == "" {
		content = EmptyContent
	}

	return database.Message{
		MessageID:   m.IDMessage,
		ChatID:      m.ChatID,
		Sender:      m.SenderID,
		MessageType: m.TypeMessage,
		Content:     content,
		Caption:     caption,
		Timestamp:   m.Timestamp,
	}, true
}

// newHarvestMessagesTask fetches the recent history of the configured chat
// and upserts every storable message in one batch.
func newHarvestMessagesTask(deps TaskDeps) ScheduledTaskFunc {
	return func(ctx context.Context) error {
		log := taskLogger(ctx, deps.Logger, config.TaskHarvestMessages)
		cfg := deps.Config.Harvest

		cutoff := deps.now().Add(-cfg.Lookback)
		msgs, err := FetchMessages(ctx, deps.Gateway, cfg.ChatID, cfg.Count, cutoff)
		if err != nil {
			return fmt.Errorf("failed to fetch chat history: %w", err)
		}
		log.InfoContext(ctx, "Fetched recent messages", "chat_id", cfg.ChatID, "count", len(msgs), "since", cutoff.UTC())

		records := make([]database.Message, 0, len(msgs))
		var excluded, unidentified int
		for _, m := range msgs {
			if IsExcludedKind(m.TypeMessage) {
				excluded++
				continue
			}
			if m.ChatID == "" {
				m.ChatID = cfg.ChatID
			}
			rec, ok := Normalize(m)
			if !ok {
				unidentified++
				log.WarnContext(ctx, "Skipping message without identifier", "type", m.TypeMessage, "timestamp", m.Timestamp)
				continue
			}
			records = append(records, rec)
		}

		if len(records) == 0 {
			log.InfoContext(ctx, "No messages to store", "excluded", excluded, "unidentified", unidentified)
			return nil
		}

		if err := deps.Store.UpsertMessages(ctx, records); err != nil {
			return fmt.Errorf("failed to store messages: %w", err)
		}

		log.InfoContext(ctx, "Stored messages",
			"stored", len(records),
			"excluded", excluded,
			"unidentified", unidentified)
		return nil
	}
}
