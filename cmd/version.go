package cmd

import (
	"runtime/debug"
	"strings"

	"github.com/spf13/cobra"

	m "onetype.dev/pkg/onetype/internal/model"
)

// versionCmd represents the version command.
var versionCmd = newVersionCmd()

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the onetype build, its rule and the languages it reads",
		Run: func(cmd *cobra.Command, _ []string) {
			build := "(devel)"
			goVersion := "unknown"

			if info, ok := debug.ReadBuildInfo(); ok {
				goVersion = info.GoVersion
				if info.Main.Version != "" {
					build = info.Main.Version
				}
			}

			cmd.Printf("onetype\t%s\n", build)
			cmd.Printf("go\t%s\n", goVersion)
			cmd.Printf("rule\t%s %s\n", m.TypeFileRule.ID, m.TypeFileRule.Title)

			if parserAdapter != nil {
				cmd.Printf("sources\t%s\n", strings.Join(parserAdapter.Extensions(), " "))
			}
		},
	}
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
