package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/readlog/internal/service"
)

func newExportCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every record to a CSV file",
		Long: `Export every record, in ID order, as CSV.

Examples:
  # Write reading-records_<timestamp>.csv in the current directory
  readlog export

  # Write to stdout
  readlog export --out -`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRecords(cmd.Context(), func(records *service.RecordService) error {
				file, err := records.Export(cmd.Context())
				if err != nil {
					return err
				}

				if out == "-" {
					_, err := cmd.OutOrStdout().Write(file.Data)
					return err
				}

				path := out
				if path == "" {
					path = file.Filename
				}
				if err := os.WriteFile(path, file.Data, 0o644); err != nil {
					return fmt.Errorf("write export: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "exported to %s\n", path)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", `Output file ("-" for stdout, default reading-records_<timestamp>.csv)`)
	return cmd
}
