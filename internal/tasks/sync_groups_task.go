package tasks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/edgard/wadigest/internal/config"
	"github.com/edgard/wadigest/internal/database"
	"github.com/edgard/wadigest/internal/greenapi"
)

// UnnamedGroup is stored for groups that have no display name upstream.
const UnnamedGroup = "ללא שם"

// ListGroups returns the group chats known to the gateway, in listing order.
func ListGroups(ctx context.Context, gw Gateway) ([]greenapi.Chat, error) {
	chats, err := gw.GetChats(ctx)
	if err != nil {
		return nil, err
	}

	groups := make([]greenapi.Chat, 0, len(chats))
	for _, c := range chats {
		if strings.HasSuffix(c.ID, greenapi.GroupSuffix) {
			groups = append(groups, c)
		}
	}
	return groups, nil
}

// Enrich looks up the metadata of every group. The result has one record per
// input group in the same order. A failed lookup leaves owner and
// participant count NULL.
func Enrich(ctx context.Context, gw Gateway, groups []greenapi.Chat, log *slog.Logger) []database.Group {
	out := make([]database.Group, 0, len(groups))
	for _, g := range groups {
		rec := database.Group{GroupID: g.ID, Name: g.Name}
		if rec.Name == "" {
			rec.Name = UnnamedGroup
		}

		data, err := gw.GetGroupData(ctx, g.ID)
		if err != nil {
			if log != nil {
				log.WarnContext(ctx, "Group metadata unavailable, storing without owner and count", "group_id", g.ID, "error", err)
			}
			out = append(out, rec)
			continue
		}

		if data.Owner != nil && *data.Owner != "" {
			rec.Owner = sql.NullString{String: *data.Owner, Valid: true}
		}
		rec.ParticipantCount = sql.NullInt64{Int64: int64(len(data.Participants)), Valid: true}
		out = append(out, rec)
	}
	return out
}

// StaleGroupIDs returns the stored ids absent from current, in stored order.
func StaleGroupIDs(stored []string, current []database.Group) []string {
	live := make(map[string]struct{}, len(current))
	for _, g := range current {
		live[g.GroupID] = struct{}{}
	}

	var stale []string
	for _, id := range stored {
		if _, ok := live[id]; !ok {
			stale = append(stale, id)
		}
	}
	return stale
}

// SyncGroups reconciles the stored directory with the enriched listing: rows
// absent from the listing are deleted in one call, then every listed group is
// upserted in one call. A failed delete does not stop the upsert; it is
// reported together with any upsert error. It returns the number of deleted
// groups.
func SyncGroups(ctx context.Context, store database.Store, groups []database.Group, log *slog.Logger) (int, error) {
	stored, err := store.GetGroupIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to read stored group ids: %w", err)
	}

	var deleteErr error
	deleted := 0
	stale := StaleGroupIDs(stored, groups)
	if len(stale) > 0 {
		if err := store.DeleteGroups(ctx, stale); err != nil {
			deleteErr = fmt.Errorf("failed to delete stale groups: %w", err)
			if log != nil {
				log.WarnContext(ctx, "Stale groups not deleted, upserting anyway", "stale", len(stale), "error", err)
			}
		} else {
			deleted = len(stale)
		}
	}

	if err := store.UpsertGroups(ctx, groups); err != nil {
		return deleted, errors.Join(deleteErr, fmt.Errorf("failed to upsert groups: %w", err))
	}
	return deleted, deleteErr
}

func newSyncGroupsTask(deps TaskDeps) ScheduledTaskFunc {
	return func(ctx context.Context) error {
		log := taskLogger(ctx, deps.Logger, config.TaskSyncGroups)

		groups, err := ListGroups(ctx, deps.Gateway)
		if err != nil {
			return fmt.Errorf("failed to list groups: %w", err)
		}
		if len(groups) == 0 {
			log.InfoContext(ctx, "No groups listed, nothing to sync")
			return nil
		}
		log.InfoContext(ctx, "Listed groups", "count", len(groups))

		enriched := Enrich(ctx, deps.Gateway, groups, log)

		deleted, err := SyncGroups(ctx, deps.Store, enriched, log)
		if err != nil {
			return err
		}

		log.InfoContext(ctx, "Group directory synced", "upserted", len(enriched), "deleted", deleted)
		return nil
	}
}
