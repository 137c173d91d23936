// Package cli wires the readlog commands.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/readlog/internal/app"
	"github.com/MrSnakeDoc/readlog/internal/config"
	"github.com/MrSnakeDoc/readlog/internal/logger"
	"github.com/MrSnakeDoc/readlog/internal/service"
)

// NewRootCmd builds the command tree. Configuration always comes from the
// environment (and an optional .env file), never from flags.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "readlog",
		Short: "Track the books you read",
		Long: `readlog keeps a reading log: what you read, where you stopped,
and what you thought of it.

Records live in Redis, Postgres or memory (READLOG_STORE) and can be
exported to and imported from CSV files.

Without a command, readlog starts the HTTP server.`,
		Args:         cobra.NoArgs,
		RunE:         runServe,
		SilenceUsage: true,
	}

	root.AddCommand(
		newServeCmd(),
		newExportCmd(),
		newImportCmd(),
		newVersionCmd(),
	)
	return root
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}

func loadConfig() (*config.Config, logger.Logger, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, logger.New(cfg.LogLevel, cfg.PrettyLog), nil
}

// withRecords opens the configured store for a one-shot command.
func withRecords(ctx context.Context, fn func(*service.RecordService) error) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	backend, err := app.OpenBackend(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer backend.Close(log)

	return fn(service.NewRecordService(backend.Store, log))
}
