package main

import (
	"github.com/spf13/cobra"

	"github.com/spektr-org/askdata/schema"
)

// NewDiscoverCommand creates the discover command.
func NewDiscoverCommand() *cobra.Command {
	var (
		data        dataFlags
		sampleSize  int
		recoverCols []string
	)

	cmd := &cobra.Command{
		Use:   "discover",
		Short: "Show the inferred schema of a dataset",
		Long: `Inspect a dataset and print each column's kind, cardinality and sample
values, followed by example questions the engine can answer.

Examples:
  askdata discover -f sales.csv
  askdata discover -s warehouse -o yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg := getConfig(ctx)
			logger := getLogger(ctx)

			view, id, err := loadView(ctx, cfg, logger, &data)
			if err != nil {
				return err
			}

			opts := schema.DefaultDiscoverOptions()
			opts.Name = id
			opts.RecoverColumns = recoverCols
			if sampleSize > 0 {
				opts.SampleSize = sampleSize
			}
			sch, err := schema.Discover(view, opts)
			if err != nil {
				return err
			}
			return renderSchema(cmd.OutOrStdout(), sch, cfg.Output)
		},
	}
	data.register(cmd)
	cmd.Flags().IntVar(&sampleSize, "sample-size", 0, "Rows to inspect (default 1000)")
	cmd.Flags().StringSliceVar(&recoverCols, "recover", nil, "Columns to keep even if discovery would skip them")
	return cmd
}
