package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"yashubustudio/clinicalreport/internal/batch"
)

func newBatchCmd(rt *runtime) *cobra.Command {
	var output, outputDir string
	var cleanup bool
	cmd := &cobra.Command{
		Use:   "batch INPUT",
		Short: "Label every report in a CSV or TSV file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if outputDir != "" {
				rt.cfg.Batch.OutputDir = outputDir
			}
			if output == "" {
				output = batch.DefaultOutputPath(rt.cfg.Batch.OutputDir, time.Now())
			}
			if !cmd.Flags().Changed("cleanup") {
				cleanup = rt.cfg.Labels.Cleanup
			}
			svc, err := rt.service()
			if err != nil {
				return err
			}
			defer svc.Close()

			res, err := svc.ProcessBatch(cmd.Context(), args[0], output, cleanup)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Processing Complete! %d reports written to %s (%.2fs)\n",
				res.Rows, res.OutputPath, res.Elapsed.Seconds())
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output CSV path (default: --output-dir/batch_results_*.csv)")
	cmd.Flags().StringVar(&outputDir, "output-dir", "", "directory for generated result files")
	cmd.Flags().BoolVar(&cleanup, "cleanup", true, "normalize sentences before matching (default from labels.cleanup)")
	return cmd
}
