package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/edgard/wadigest/internal/app"
	"github.com/edgard/wadigest/internal/config"
	"github.com/edgard/wadigest/internal/logger"
	"github.com/edgard/wadigest/internal/version"
)

type rootOptions struct {
	configPath string
	envFile    string
}

// run executes the command line and returns the process exit code: 0 on
// success, 1 on a configuration, bootstrap or task failure.
func run(ctx context.Context, args []string) int {
	return runWithOutput(ctx, args, os.Stdout, os.Stderr)
}

func runWithOutput(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.ExecuteContext(ctx); err != nil {
		slog.Error("Command failed", "error", err)
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "wadigest",
		Short: "Harvest WhatsApp groups and publish a Hebrew digest",
		Long: `wadigest harvests recent messages and the group directory of a WhatsApp
account through the Green API gateway, stores them in a relational database,
and publishes an AI-generated Hebrew digest back into a chat.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", "./config.yaml", "Path to configuration file")
	root.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "Path to .env file loaded before reading the environment")

	root.AddCommand(
		newRunCmd(opts),
		newServeCmd(opts),
		newVersionCmd(),
	)
	return root
}

func newRunCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "run <task>",
		Short: "Run a single task once and exit",
		Long: fmt.Sprintf("Run a single task once and exit. Tasks: %s, %s, %s, %s.",
			config.TaskHarvestMessages, config.TaskSyncGroups, config.TaskPublishDigest, config.TaskSQLMaintenance),
		Args: cobra.ExactArgs(1),
		ValidArgs: []string{
			config.TaskHarvestMessages,
			config.TaskSyncGroups,
			config.TaskPublishDigest,
			config.TaskSQLMaintenance,
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer a.Close()

			return a.RunTask(cmd.Context(), args[0])
		},
	}
}

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run tasks on their schedules until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := bootstrap(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer a.Close()

			return a.Serve(cmd.Context())
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(version.Get())
		},
	}
}

// bootstrap loads configuration, installs the logger and builds the app.
func bootstrap(ctx context.Context, opts *rootOptions) (*app.App, error) {
	cfg, err := config.Load(opts.configPath, opts.envFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	log := logger.NewLogger(cfg.Log.Level, cfg.Log.JSON)
	log.Info("Logger initialized", "level", cfg.Log.Level, "json", cfg.Log.JSON, "version", version.Get().Version)

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	return a, nil
}
