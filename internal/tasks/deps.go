// Package tasks implements the wadigest batch jobs: message harvest, group
// directory sync, digest publishing and store maintenance.
package tasks

import (
	"context"
	"log/slog"
	"time"

	"github.com/edgard/wadigest/internal/config"
	"github.com/edgard/wadigest/internal/database"
	"github.com/edgard/wadigest/internal/gemini"
	"github.com/edgard/wadigest/internal/greenapi"
)

// Gateway is the subset of the WhatsApp gateway used by the jobs.
type Gateway interface {
	GetChatHistory(ctx context.Context, chatID string, count int) ([]greenapi.Message, error)
	GetChats(ctx context.Context) ([]greenapi.Chat, error)
	GetGroupData(ctx context.Context, groupID string) (*greenapi.GroupData, error)
	SendMessage(ctx context.Context, chatID, text string) (string, error)
}

// Publisher delivers a finished digest to a secondary destination.
type Publisher interface {
	Publish(ctx context.Context, text string) error
}

// TaskDeps contains all dependencies required by the jobs.
// Mirror is optional; Now defaults to time.Now.
type TaskDeps struct {
	Logger     *slog.Logger
	Store      database.Store
	Gateway    Gateway
	Summarizer gemini.Summarizer
	Mirror     Publisher
	Config     *config.Config
	Now        func() time.Time
}

func (d TaskDeps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}
