package tasks

import (
	"context"
	"fmt"

	"github.com/edgard/wadigest/internal/config"
)

// newSQLMaintenanceTask creates the task function for running database maintenance.
func newSQLMaintenanceTask(deps TaskDeps) ScheduledTaskFunc {
	return func(ctx context.Context) error {
		log := taskLogger(ctx, deps.Logger, config.TaskSQLMaintenance)
		log.InfoContext(ctx, "Starting SQL maintenance...")

		if err := deps.Store.RunSQLMaintenance(ctx); err != nil {
			return fmt.Errorf("sql maintenance failed: %w", err)
		}

		log.InfoContext(ctx, "SQL maintenance completed successfully")
		return nil
	}
}
