// Package cmd provides the root command and CLI setup for onetype.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"onetype.dev/pkg/onetype/internal/adapter"
	"onetype.dev/pkg/onetype/internal/controller"
	"onetype.dev/pkg/onetype/internal/domain"
	m "onetype.dev/pkg/onetype/internal/model"
)

var sourceFSAdapter adapter.SourceFSAdapter
var parserAdapter adapter.ParserAdapter
var reportStore adapter.ReportStore
var projectLoader domain.ProjectLoader
var analyzer domain.Analyzer
var workflow domain.Workflow
var ui controller.UI

// reportsOutputDirFlag is a root-level flag shared by commands that read/write reports.
var reportsOutputDirFlag string

// excludePatterns and includePatterns filter the scanned files.
var excludePatterns []string
var includePatterns []string

var parallelFlag int
var verboseFlag bool
var logFileFlag string

func init() {
	configureRootFlags(rootCmd)

	parser, err := adapter.NewCachingParserAdapter(adapter.NewTreeSitterParserAdapter(), viper.GetInt(cacheSizeConfigKey))
	cobra.CheckErr(err)

	// Initialize shared dependencies.
	ui = controller.NewUI(rootCmd, controller.IsTTY(os.Stdout))
	sourceFSAdapter = adapter.NewLocalSourceFSAdapter()
	parserAdapter = parser
	reportStore = adapter.NewReportStore()
	projectLoader = domain.NewProjectLoader(sourceFSAdapter, parserAdapter)
	analyzer = domain.NewAnalyzer()
	workflow = domain.NewWorkflow(
		sourceFSAdapter,
		reportStore,
		ui,
		projectLoader,
		analyzer,
	)
}

const pathPatternsHelp = `Supports Go-style path patterns:
  - ./...          recursively scan current directory
  - ./src/...      recursively scan src directory
  - ./src ./lib    scan multiple directories`

const rootLongDescription = `Onetype keeps C# and Java sources at one top-level type per file, with
the file named after the type. It reports declarations whose name differs
from their file name and fixes them by moving the type into the file
named after it, extracting it into a new file, or renaming the file.

` + pathPatternsHelp

const listLongDescription = `List source files with their number of top-level types and mismatches.

` + pathPatternsHelp

const checkLongDescription = `Report every top-level type whose name does not match its file name,
together with the fix that would be applied. The report is saved to the
output directory. Exits with a non-zero status when mismatches are found.

` + pathPatternsHelp

const fixLongDescription = `Fix mismatches one at a time until the project is clean. Each fix is
computed on the result of the previous one. With --dry-run the fixes are
printed as unified diffs and nothing is written.

` + pathPatternsHelp

// rootCmd represents the base command when called without any subcommands.
var rootCmd = baseRootCmd()

func baseRootCmd() *cobra.Command {
	return &cobra.Command{
		Use:          "onetype",
		Short:        "One type per file checker and fixer",
		Long:         rootLongDescription,
		SilenceUsage: true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			configureLogger(viper.GetString(logFilenameKey), viper.GetBool(logVerboseKey))
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
}

// newRootCmd returns a root command with the shared flags and no subcommands.
func newRootCmd() *cobra.Command {
	cmd := baseRootCmd()
	configureRootFlags(cmd)

	return cmd
}

func configureRootFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()

	flags.StringVarP(&reportsOutputDirFlag, outputFlagName, "o", viper.GetString(outputFlagName), "output directory for check reports")
	bindFlagToConfig(flags.Lookup(outputFlagName), outputFlagName)

	flags.StringArrayVarP(&excludePatterns, excludeFlagName, "x", viper.GetStringSlice(excludeConfigKey), "exclude files matching regex (can be repeated)")
	bindFlagToConfig(flags.Lookup(excludeFlagName), excludeConfigKey)

	flags.StringArrayVar(&includePatterns, includeFlagName, viper.GetStringSlice(includeConfigKey), "only scan files matching glob, e.g. src/**/*.cs (can be repeated)")
	bindFlagToConfig(flags.Lookup(includeFlagName), includeConfigKey)

	flags.IntVarP(&parallelFlag, runParallelFlagName, "p", viper.GetInt(runParallelConfigKey), "number of files parsed in parallel")
	bindFlagToConfig(flags.Lookup(runParallelFlagName), runParallelConfigKey)

	flags.BoolVarP(&verboseFlag, verboseFlagName, "v", viper.GetBool(logVerboseKey), "log at debug level")
	bindFlagToConfig(flags.Lookup(verboseFlagName), logVerboseKey)

	flags.StringVar(&logFileFlag, logFileFlagName, viper.GetString(logFilenameKey), "log file path")
	bindFlagToConfig(flags.Lookup(logFileFlagName), logFilenameKey)
}

// bindFlagToConfig wires a Cobra flag to a Viper key so config/env values feed the flag.
func bindFlagToConfig(flag *pflag.Flag, key string) {
	if flag == nil {
		cobra.CheckErr(fmt.Errorf("flag for config key %q not found", key))
		return
	}

	cobra.CheckErr(viper.BindPFlag(key, flag))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		stop()
		os.Exit(1)
	}
}

func parsePaths(args []string) []m.Path {
	paths := make([]m.Path, 0, len(args))
	for _, arg := range args {
		paths = append(paths, m.Path(arg))
	}

	return paths
}

// listArgs collects the file selection shared by every scanning command.
func listArgs(args []string) domain.ListArgs {
	return domain.ListArgs{
		Paths:   parsePaths(args),
		Exclude: viper.GetStringSlice(excludeConfigKey),
		Include: viper.GetStringSlice(includeConfigKey),
		Threads: viper.GetInt(runParallelConfigKey),
	}
}
