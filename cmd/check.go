package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"onetype.dev/pkg/onetype/internal/domain"
	m "onetype.dev/pkg/onetype/internal/model"
)

// checkCmd represents the check command.
var checkCmd = newCheckCmd()

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check [paths...]",
		Short: "Report types whose name does not match their file name",
		Long:  checkLongDescription,
		RunE: func(cmd *cobra.Command, args []string) error {
			return workflow.Check(cmd.Context(), domain.CheckArgs{
				ListArgs: listArgs(args),
				Reports:  m.Path(viper.GetString(outputFlagName)),
			})
		},
	}
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
