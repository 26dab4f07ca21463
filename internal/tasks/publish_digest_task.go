package tasks

import (
	"context"
	"fmt"
	"strings"

	"github.com/edgard/wadigest/internal/config"
	"github.com/edgard/wadigest/internal/gemini"
)

// DigestInput joins the non-empty contents with newlines. The second result
// is false when nothing is left to summarize.
func DigestInput(contents []string) (string, bool) {
	kept := make([]string, 0, len(contents))
	for _, c := range contents {
		if c != "" {
			kept = append(kept, c)
		}
	}
	if len(kept) == 0 {
		return "", false
	}
	return strings.Join(kept, "\n"), true
}

// newPublishDigestTask summarizes every stored message and sends the summary
// to the configured chat. The Telegram mirror, when configured, receives the
// same text; its failure is logged only.
func newPublishDigestTask(deps TaskDeps) ScheduledTaskFunc {
	return func(ctx context.Context) error {
		log := taskLogger(ctx, deps.Logger, config.TaskPublishDigest)
		target := deps.Config.Digest.TargetChatID

		contents, err := deps.Store.GetMessageContents(ctx)
		if err != nil {
			return fmt.Errorf("failed to read stored messages: %w", err)
		}

		input, ok := DigestInput(contents)
		if !ok {
			log.InfoContext(ctx, "No stored content to summarize, skipping digest")
			return nil
		}
		log.InfoContext(ctx, "Generating digest", "messages", len(contents), "input_length", len(input))

		summary, err := deps.Summarizer.Summarize(ctx, gemini.DigestPrompt(input))
		if err != nil {
			return fmt.Errorf("failed to generate digest: %w", err)
		}

		sentID, err := deps.Gateway.SendMessage(ctx, target, summary)
		if err != nil {
			return fmt.Errorf("failed to send digest: %w", err)
		}
		log.InfoContext(ctx, "Digest sent", "chat_id", target, "message_id", sentID, "length", len(summary))

		if deps.Mirror != nil {
			if err := deps.Mirror.Publish(ctx, summary); err != nil {
				log.WarnContext(ctx, "Digest mirror failed", "error", err)
			}
		}
		return nil
	}
}
