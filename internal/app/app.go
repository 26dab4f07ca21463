// Package app wires the wadigest components together and manages their
// lifecycle for the run and serve commands.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-co-op/gocron/v2"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/edgard/wadigest/internal/config"
	"github.com/edgard/wadigest/internal/database"
	"github.com/edgard/wadigest/internal/gemini"
	"github.com/edgard/wadigest/internal/greenapi"
	"github.com/edgard/wadigest/internal/scheduler"
	"github.com/edgard/wadigest/internal/server"
	"github.com/edgard/wadigest/internal/tasks"
	"github.com/edgard/wadigest/internal/telegram"
)

// ErrUnknownTask is returned by RunTask for a name that is not registered.
var ErrUnknownTask = errors.New("unknown task")

// App owns the store connection and the registered tasks.
type App struct {
	logger *slog.Logger
	cfg    *config.Config
	db     *sqlx.DB
	store  database.Store
	tasks  map[string]tasks.ScheduledTaskFunc
}

// New connects to the store and builds every task with its dependencies.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	db, err := database.NewDB(cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to store: %w", err)
	}
	store := database.NewStore(db, logger)

	gw, err := greenapi.NewClient(cfg.GreenAPI, logger)
	if err != nil {
		database.CloseDB(db)
		return nil, fmt.Errorf("failed to create gateway client: %w", err)
	}

	summarizer, err := gemini.NewClient(ctx, cfg.Gemini, logger)
	if err != nil {
		database.CloseDB(db)
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	deps := tasks.TaskDeps{
		Logger:     logger,
		Store:      store,
		Gateway:    gw,
		Summarizer: summarizer,
		Config:     cfg,
	}
	if cfg.Telegram.Enabled() {
		mirror, err := telegram.NewMirror(cfg.Telegram, logger)
		if err != nil {
			database.CloseDB(db)
			return nil, fmt.Errorf("failed to create telegram mirror: %w", err)
		}
		deps.Mirror = mirror
	}

	return &App{
		logger: logger.With("component", "app"),
		cfg:    cfg,
		db:     db,
		store:  store,
		tasks:  tasks.RegisterAllTasks(deps),
	}, nil
}

// TaskNames lists the registered tasks.
func (a *App) TaskNames() []string {
	return tasks.Names(a.tasks)
}

// RunTask runs a single task once.
func (a *App) RunTask(ctx context.Context, name string) error {
	fn, ok := a.tasks[name]
	if !ok {
		return fmt.Errorf("%w %q (known: %v)", ErrUnknownTask, name, a.TaskNames())
	}
	return fn(ctx)
}

// Serve runs the scheduler, and the admin API when configured, until ctx is
// cancelled or a component fails.
func (a *App) Serve(ctx context.Context) error {
	a.logger.Info("Starting orchestrator...")

	var opts []gocron.SchedulerOption
	if addr := a.cfg.Scheduler.Redis.Addr; addr != "" {
		client, err := scheduler.NewRedisClient(ctx, a.cfg.Scheduler.Redis)
		if err != nil {
			return err
		}
		defer closeRedis(a.logger, client)
		opts = append(opts, gocron.WithDistributedLocker(scheduler.NewRedisLocker(client, a.cfg.Scheduler.Redis.LockTTL)))
		a.logger.Info("Distributed job locking enabled", "redis_addr", addr)
	}

	sched, err := scheduler.NewScheduler(a.logger, &a.cfg.Scheduler, a.tasks, opts...)
	if err != nil {
		return err
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.logger.Info("Starting scheduler...")
		if _, err := sched.Start(gCtx); err != nil {
			return fmt.Errorf("failed to start scheduler: %w", err)
		}

		<-gCtx.Done()
		a.logger.Info("Shutdown signal received, stopping scheduler...")

		if err := sched.Stop(); err != nil {
			a.logger.Error("Error stopping scheduler", "error", err)
		}
		return nil
	})

	if addr := a.cfg.Server.Addr; addr != "" {
		api := server.New(addr, a.store, a.tasks, a.logger)
		g.Go(func() error {
			return api.Run(gCtx)
		})
	}

	a.logger.Info("Orchestrator running. Waiting for shutdown signal or error...")
	err = g.Wait()

	if err != nil && !errors.Is(err, context.Canceled) {
		a.logger.Error("Orchestrator stopped due to error", "error", err)
		return err
	}

	a.logger.Info("Orchestrator stopped gracefully.")
	return nil
}

// Close releases the store connection.
func (a *App) Close() {
	database.CloseDB(a.db)
}

func closeRedis(log *slog.Logger, client *redis.Client) {
	if err := client.Close(); err != nil {
		log.Warn("Error closing redis client", "error", err)
	}
}
