package cli

import (
	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/readlog/internal/app"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server (default command)",
		Long: `Start the HTTP API. Running readlog without a command does the same.

When READLOG_SEED_FILE points to a YAML library and the store is empty,
the library is loaded before the server starts listening.`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	a, err := app.New(cmd.Context(), cfg, log)
	if err != nil {
		return err
	}
	return a.Run()
}
