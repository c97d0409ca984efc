package cmd

import (
	"github.com/spf13/cobra"

	"onetype.dev/pkg/onetype/internal/domain"
)

// fixCmd represents the fix command.
var fixCmd = newFixCmd()

func newFixCmd() *cobra.Command {
	var (
		dryRun bool
		only   []string
	)

	cmd := &cobra.Command{
		Use:   "fix [paths...]",
		Short: "Move, extract or rename until every type lives in its own file",
		Long:  fixLongDescription,
		RunE: func(cmd *cobra.Command, args []string) error {
			return workflow.Fix(cmd.Context(), domain.FixArgs{
				ListArgs: listArgs(args),
				DryRun:   dryRun,
				Only:     only,
			})
		},
	}

	cmd.Flags().BoolVarP(&dryRun, dryRunFlagName, "n", false, "print the fixes as diffs without writing them")
	cmd.Flags().StringSliceVar(&only, onlyFlagName, nil, "only fix types with these names (comma separated or repeated)")

	return cmd
}

func init() {
	rootCmd.AddCommand(fixCmd)
}
