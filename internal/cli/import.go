package cli

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/readlog/internal/domain"
	"github.com/MrSnakeDoc/readlog/internal/service"
)

func newImportCmd() *cobra.Command {
	var commit bool

	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Preview or import records from a CSV file",
		Long: `Import reads a CSV file, exported by readlog or written by hand.

Without --commit nothing is stored: the records that would be created
are listed together with rejected rows and defaulted fields.

Examples:
  # Preview
  readlog import books.csv

  # Store the records
  readlog import books.csv --commit`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}

			return withRecords(cmd.Context(), func(records *service.RecordService) error {
				preview, err := records.PreviewImport(cmd.Context(), data)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				printPreview(out, preview)
				if !commit {
					fmt.Fprintln(out, "\npreview only, run again with --commit to store these records")
					return nil
				}

				receipt, err := records.CommitImport(cmd.Context(), preview.Payload)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "\n%d records imported (batch %s)\n", len(receipt.Records), receipt.BatchID)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&commit, "commit", false, "Store the records instead of only previewing them")
	return cmd
}

func printPreview(out io.Writer, p *service.ImportPreview) {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TITLE\tAUTHOR\tSTATUS\tPROGRESS")
	for _, r := range p.Records {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.Title, r.Author, r.Status.Label(), progress(r))
	}
	_ = tw.Flush()

	fmt.Fprintf(out, "\n%d records, %d rejected (no title), %d unreadable rows\n", len(p.Records), p.Rejected, p.Skipped)
	for _, w := range p.Warnings {
		fmt.Fprintf(out, "warning: %s\n", w)
	}
}

func progress(r domain.Record) string {
	if r.TotalPages == nil {
		return fmt.Sprintf("p.%d", r.CurrentPage)
	}
	return fmt.Sprintf("%d/%d (%d%%)", r.CurrentPage, *r.TotalPages, r.Progress())
}
