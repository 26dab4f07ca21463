// Package telegram mirrors published digests into a Telegram chat.
package telegram

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-telegram/bot"

	"github.com/edgard/wadigest/internal/config"
)

// NewTelegramBot creates a new Telegram bot instance using the go-telegram/bot library.
func NewTelegramBot(token string, logger *slog.Logger, opts ...bot.Option) (*bot.Bot, error) {
	if token == "" {
		return nil, fmt.Errorf("telegram bot token cannot be empty")
	}
	if logger == nil {
		logger = slog.Default()
	}
	log := logger.With("component", "telegram_bot")

	b, err := bot.New(token, opts...)
	if err != nil {
		log.Error("Failed to create Telegram bot instance", "error", err)
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	log.Info("Telegram bot instance created successfully", "token_prefix", tokenPrefix(token))
	return b, nil
}

func tokenPrefix(token string) string {
	if len(token) <= 8 {
		return "..."
	}
	return token[:8] + "..."
}

// Mirror posts digest text to a single Telegram chat.
type Mirror struct {
	bot    *bot.Bot
	chatID int64
	log    *slog.Logger
}

// NewMirror creates a mirror for the configured chat. The bot is created
// without the startup getMe call so a Telegram outage never blocks startup.
func NewMirror(cfg config.TelegramConfig, logger *slog.Logger, opts ...bot.Option) (*Mirror, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("telegram mirror requires both token and chat id")
	}
	if logger == nil {
		logger = slog.Default()
	}

	opts = append([]bot.Option{bot.WithSkipGetMe()}, opts...)
	b, err := NewTelegramBot(cfg.Token, logger, opts...)
	if err != nil {
		return nil, err
	}

	return &Mirror{
		bot:    b,
		chatID: cfg.ChatID,
		log:    logger.With("component", "telegram_mirror"),
	}, nil
}

// Publish sends text to the mirror chat.
func (m *Mirror) Publish(ctx context.Context, text string) error {
	sent, err := m.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: m.chatID,
		Text:   text,
	})
	if err != nil {
		m.log.ErrorContext(ctx, "Failed to mirror digest to Telegram", "chat_id", m.chatID, "error", err)
		return fmt.Errorf("failed to send telegram message: %w", err)
	}

	m.log.InfoContext(ctx, "Digest mirrored to Telegram", "chat_id", m.chatID, "message_id", sent.ID)
	return nil
}
