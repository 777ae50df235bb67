package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newStatusCmd creates the 'status' subcommand, which reports how far a
// title-file crawl has progressed without starting one.
func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Report crawl progress from the output directory",
		Long: `Maps each output batch file back to the enumerated title batch containing
its first record and reports which title batches already have output. Useful
before resuming an interrupted crawl.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := buildApp()
			if err != nil {
				return err
			}
			defer a.close()

			report, err := buildDriver(a).Status(cmd.Context())
			if err != nil {
				return fmt.Errorf("collect status: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "output files:      %d\n", report.OutputFiles)
			fmt.Fprintf(out, "processed batches: %v\n", report.ProcessedBatches)
			if report.LastBatch >= 0 {
				fmt.Fprintf(out, "last batch:        %d\n", report.LastBatch)
			} else {
				fmt.Fprintln(out, "last batch:        none")
			}
			return nil
		},
	}
}
