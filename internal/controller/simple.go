package controller

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	m "onetype.dev/pkg/onetype/internal/model"
)

// SimpleUI implements UI using cobra Command's output.
type SimpleUI struct {
	cmd    *cobra.Command
	config StartConfig
}

// NewSimpleUI creates a new SimpleUI.
func NewSimpleUI(cmd *cobra.Command) *SimpleUI {
	return &SimpleUI{cmd: cmd}
}

// Start initializes the UI.
func (s *SimpleUI) Start(ctx context.Context, options ...StartOption) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.config = newStartConfig(options)

	return nil
}

// Close finalizes the UI.
func (s *SimpleUI) Close(ctx context.Context) {
	if err := ctx.Err(); err != nil {
		return
	}
}

// Wait blocks until the UI is closed (no-op for SimpleUI).
func (s *SimpleUI) Wait(ctx context.Context) {
	if err := ctx.Err(); err != nil {
		return
	}
}

// DisplayFiles prints the scanned files with their declaration counts.
func (s *SimpleUI) DisplayFiles(ctx context.Context, files []m.FileSummary) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.printf("\n%s", renderFilesTable(files))

	return nil
}

// DisplayFindings prints the mismatches found by a check run.
func (s *SimpleUI) DisplayFindings(ctx context.Context, findings []m.Finding) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if len(findings) == 0 {
		s.printf("No mismatches found.\n")
		return nil
	}

	entries := make([]m.ReportEntry, 0, len(findings))
	for _, finding := range findings {
		entry := m.NewReportEntry(finding)
		entry.File = displayPath(finding.Mismatch.File)

		if finding.Target != "" {
			entry.Target = displayPath(finding.Target)
		}

		entries = append(entries, entry)
	}

	s.printf("\n%s", renderFindingsTable(entries))
	s.printf("%d mismatch(es) found\n", len(findings))

	return nil
}

// DisplayFix prints an applied (or previewed) fix with its diff.
func (s *SimpleUI) DisplayFix(ctx context.Context, action m.FixAction, diff string) {
	if err := ctx.Err(); err != nil {
		return
	}

	s.printf("%s\n", fixHeadline(action, s.config.dryRun))

	if diff != "" {
		s.printf("%s\n", strings.TrimRight(diff, "\n"))
	}
}

// DisplayFixError prints a mismatch that could not be fixed.
func (s *SimpleUI) DisplayFixError(ctx context.Context, mismatch m.Mismatch, err error) {
	if ctx.Err() != nil {
		return
	}

	s.printf("Cannot fix %s in %s: %v\n", mismatch.ActualName, displayPath(mismatch.File), err)
}

// DisplayFixSummary prints the totals of a fix run.
func (s *SimpleUI) DisplayFixSummary(ctx context.Context, applied int, failed int, remaining int) {
	if err := ctx.Err(); err != nil {
		return
	}

	s.printf("%s\n", fixSummary(applied, failed, remaining, s.config.dryRun))
}

// DisplayReport prints a saved report.
func (s *SimpleUI) DisplayReport(ctx context.Context, report m.Report) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.printf("%s\n", reportHeadline(report))

	if len(report.Findings) == 0 {
		s.printf("No mismatches found.\n")
		return nil
	}

	s.printf("\n%s", renderFindingsTable(report.Findings))

	return nil
}

func (s *SimpleUI) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(s.cmd.OutOrStdout(), format, args...)
}

func renderFilesTable(files []m.FileSummary) string {
	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader([]string{"Path", "Types", "Nested", "Mismatches"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_CENTER, tablewriter.ALIGN_CENTER, tablewriter.ALIGN_CENTER})

	totalTypes, totalNested, totalMismatches := 0, 0, 0

	for _, file := range files {
		table.Append([]string{
			displayPath(file.Path),
			fmt.Sprintf("%d", file.Declarations),
			fmt.Sprintf("%d", file.Nested),
			fmt.Sprintf("%d", file.Mismatches),
		})

		totalTypes += file.Declarations
		totalNested += file.Nested
		totalMismatches += file.Mismatches
	}

	table.SetFooter([]string{
		fmt.Sprintf("Total Files %d", len(files)),
		fmt.Sprintf("%d", totalTypes),
		fmt.Sprintf("%d", totalNested),
		fmt.Sprintf("%d", totalMismatches),
	})

	table.Render()

	return tableBuffer.String()
}

func renderFindingsTable(entries []m.ReportEntry) string {
	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader([]string{"Location", "Type", "Expected", "Fix", "Target"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetAutoWrapText(false)

	for _, entry := range entries {
		table.Append([]string{
			fmt.Sprintf("%s:%d:%d", entry.File, entry.Line, entry.Column),
			typeLabel(entry.Kind, entry.Type),
			entry.Expected,
			entry.Strategy,
			entry.Target,
		})
	}

	table.Render()

	return tableBuffer.String()
}

// typeLabel prefixes name with its declaring keyword when known.
func typeLabel(keyword, name string) string {
	if keyword == "" {
		return name
	}

	return keyword + " " + name
}

func fixHeadline(action m.FixAction, dryRun bool) string {
	prefix := ""
	if dryRun {
		prefix = "[dry-run] "
	}

	return fmt.Sprintf("%s%s: %s (%s)", prefix, action.Title, action.Mismatch.ActualName, displayPath(action.Mismatch.File))
}

func fixSummary(applied, failed, remaining int, dryRun bool) string {
	verb := "Applied"
	if dryRun {
		verb = "Would apply"
	}

	return fmt.Sprintf("%s %d fix(es), %d failed, %d mismatch(es) remaining", verb, applied, failed, remaining)
}

func reportHeadline(report m.Report) string {
	return fmt.Sprintf("Report %s from %s: %d file(s), %d mismatch(es)",
		report.ID, report.GeneratedAt.Format("2006-01-02 15:04:05 MST"), report.Files, len(report.Findings))
}

// displayPath shortens absolute paths below the working directory.
func displayPath(path m.Path) string {
	p := string(path)
	if !filepath.IsAbs(p) {
		return p
	}

	wd, err := os.Getwd()
	if err != nil {
		return p
	}

	rel, err := filepath.Rel(wd, p)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return p
	}

	return rel
}
