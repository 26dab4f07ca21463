package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/edgard/wadigest/internal/config"
)

// ScheduledTaskFunc defines the standard signature for all jobs.
// The context provided by the caller should be respected for cancellation.
type ScheduledTaskFunc func(ctx context.Context) error

type loggerKey struct{}

// RegisterAllTasks returns every job keyed by the name used in the
// scheduler configuration and on the command line.
func RegisterAllTasks(deps TaskDeps) map[string]ScheduledTaskFunc {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}

	factories := map[string]func(TaskDeps) ScheduledTaskFunc{
		config.TaskHarvestMessages: newHarvestMessagesTask,
		config.TaskSyncGroups:      newSyncGroupsTask,
		config.TaskPublishDigest:   newPublishDigestTask,
		config.TaskSQLMaintenance:  newSQLMaintenanceTask,
	}

	tasks := make(map[string]ScheduledTaskFunc, len(factories))
	for name, factory := range factories {
		tasks[name] = instrument(name, deps.Logger, factory(deps))
	}

	deps.Logger.Info("Initialized tasks", "count", len(tasks))
	return tasks
}

// Names returns the registered task names in sorted order.
func Names(tasks map[string]ScheduledTaskFunc) []string {
	names := make([]string, 0, len(tasks))
	for name := range tasks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// instrument tags every run with a fresh run id and logs its outcome.
func instrument(name string, logger *slog.Logger, fn ScheduledTaskFunc) ScheduledTaskFunc {
	return func(ctx context.Context) error {
		log := logger.With("task", name, "run_id", uuid.NewString())
		ctx = context.WithValue(ctx, loggerKey{}, log)

		log.InfoContext(ctx, "Task started")
		start := time.Now()

		err := fn(ctx)

		duration := time.Since(start)
		if err != nil {
			log.ErrorContext(ctx, "Task failed", "error", err, "duration", duration)
			return fmt.Errorf("%s: %w", name, err)
		}
		log.InfoContext(ctx, "Task completed", "duration", duration)
		return nil
	}
}

// taskLogger returns the per-run logger installed by instrument.
func taskLogger(ctx context.Context, fallback *slog.Logger, name string) *slog.Logger {
	if log, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return log
	}
	if fallback == nil {
		fallback = slog.Default()
	}
	return fallback.With("task", name)
}
