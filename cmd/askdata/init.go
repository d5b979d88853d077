package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spektr-org/askdata/config"
)

// NewInitCommand creates the init command.
func NewInitCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write a starter askdata.yaml",
		Long: `Write a starter configuration file with example data sources.

Examples:
  askdata init
  askdata init ~/.askdata/askdata.yaml --force`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.FileName
			if len(args) == 1 {
				path = args[0]
			}
			if err := config.WriteTemplate(path, force); err != nil {
				return fmt.Errorf("%w (use --force to overwrite)", err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing configuration")
	return cmd
}
