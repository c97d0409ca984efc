package domain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"onetype.dev/pkg/onetype/internal/adapter"
	"onetype.dev/pkg/onetype/internal/controller"
	m "onetype.dev/pkg/onetype/internal/model"
)

// ListArgs selects the files a workflow operates on.
type ListArgs struct {
	Paths   []m.Path
	Exclude []string
	Include []string
	Threads int
}

// CheckArgs holds the arguments of a check run.
type CheckArgs struct {
	ListArgs
	Reports m.Path
}

// FixArgs holds the arguments of a fix run.
type FixArgs struct {
	ListArgs
	DryRun bool
	// Only restricts fixing to declarations with these names.
	Only []string
}

// ViewArgs holds the arguments of the view command.
type ViewArgs struct {
	Reports m.Path
}

// Workflow orchestrates the commands of the CLI.
type Workflow interface {
	List(ctx context.Context, args ListArgs) error
	Check(ctx context.Context, args CheckArgs) error
	Fix(ctx context.Context, args FixArgs) error
	View(ctx context.Context, args ViewArgs) error
}

type workflow struct {
	adapter.SourceFSAdapter
	adapter.ReportStore
	controller.UI
	ProjectLoader
	analyzer Analyzer
}

// NewWorkflow creates a new Workflow instance with the provided dependencies.
func NewWorkflow(
	fsAdapter adapter.SourceFSAdapter,
	reportStore adapter.ReportStore,
	ui controller.UI,
	loader ProjectLoader,
	analyzer Analyzer,
) Workflow {
	return &workflow{
		SourceFSAdapter: fsAdapter,
		ReportStore:     reportStore,
		UI:              ui,
		ProjectLoader:   loader,
		analyzer:        analyzer,
	}
}

// List shows every discovered file with its declaration and mismatch counts.
func (w *workflow) List(ctx context.Context, args ListArgs) error {
	if err := w.Start(ctx, controller.WithListMode()); err != nil {
		slog.Error("Failed to start workflow UI", "error", err)
		return err
	}
	defer w.Close(ctx)

	snapshot, files, err := w.Load(ctx, args)
	if err != nil {
		slog.Error("Failed to load project", "error", err)
		return fmt.Errorf("load project: %w", err)
	}

	summaries := make([]m.FileSummary, 0, len(files))
	for _, file := range files {
		unit, ok := snapshot.Unit(file.FullPath)
		if !ok {
			continue
		}

		decls := Declarations(unit)

		nested := 0
		for _, decl := range decls {
			nested += len(decl.Nested)
		}

		summaries = append(summaries, m.FileSummary{
			Path:         file.ShortPath,
			Declarations: len(decls),
			Nested:       nested,
			Mismatches:   len(w.analyzer.Check(unit)),
		})
	}

	if err := w.DisplayFiles(ctx, summaries); err != nil {
		slog.Error("Failed to display files", "error", err)
		return fmt.Errorf("display: %w", err)
	}

	w.Wait(ctx)

	return nil
}

// Check reports every mismatch with the repair currently selected for it and
// saves the result. It returns ErrMismatchesFound when the project is not clean.
func (w *workflow) Check(ctx context.Context, args CheckArgs) error {
	if err := w.Start(ctx, controller.WithCheckMode()); err != nil {
		slog.Error("Failed to start workflow UI", "error", err)
		return err
	}
	defer w.Close(ctx)

	snapshot, files, err := w.Load(ctx, args.ListArgs)
	if err != nil {
		slog.Error("Failed to load project", "error", err)
		return fmt.Errorf("load project: %w", err)
	}

	findings, err := w.findings(ctx, snapshot)
	if err != nil {
		return err
	}

	report := m.Report{
		ID:          uuid.NewString(),
		GeneratedAt: time.Now().UTC(),
		Files:       len(files),
		Findings:    make([]m.ReportEntry, 0, len(findings)),
	}

	shortPaths := shortPathIndex(files)
	for _, finding := range findings {
		entry := m.NewReportEntry(finding)
		entry.File = string(shortPaths.get(finding.Mismatch.File))

		if finding.Target != "" {
			entry.Target = string(shortPaths.get(finding.Target))
		}

		report.Findings = append(report.Findings, entry)
	}

	if args.Reports != "" {
		if err := w.SaveReport(args.Reports, report); err != nil {
			slog.Error("Failed to save report", "error", err)
			return fmt.Errorf("save report: %w", err)
		}

		slog.Info("Saved report", "id", report.ID, "dir", args.Reports, "findings", len(findings))
	}

	if err := w.DisplayFindings(ctx, findings); err != nil {
		slog.Error("Failed to display findings", "error", err)
		return fmt.Errorf("display: %w", err)
	}

	w.Wait(ctx)

	if len(findings) > 0 {
		return fmt.Errorf("%w: %d", ErrMismatchesFound, len(findings))
	}

	return nil
}

// Fix repairs the mismatches of the project one at a time and writes the
// result unless args.DryRun is set. The project is reloaded and checked again
// afterwards.
func (w *workflow) Fix(ctx context.Context, args FixArgs) error {
	if err := w.Start(ctx, controller.WithFixMode(args.DryRun)); err != nil {
		slog.Error("Failed to start workflow UI", "error", err)
		return err
	}
	defer w.Close(ctx)

	snapshot, _, err := w.Load(ctx, args.ListArgs)
	if err != nil {
		slog.Error("Failed to load project", "error", err)
		return fmt.Errorf("load project: %w", err)
	}

	result, err := w.fixAll(ctx, snapshot, args.Only)
	if err != nil {
		slog.Error("Fix run interrupted", "error", err)
		return err
	}

	for _, failure := range result.failures {
		w.DisplayFixError(ctx, failure.mismatch, failure.err)
	}

	failures := result.failures
	applied := 0

	for _, step := range result.steps {
		if !args.DryRun {
			if err := w.ApplyEdits(ctx, step.action.Edits); err != nil {
				slog.Error("Failed to apply fix", "type", step.action.Mismatch.ActualName, "error", err)
				w.DisplayFixError(ctx, step.action.Mismatch, err)
				failures = append(failures, fixFailure{mismatch: step.action.Mismatch, err: err})

				break
			}
		}

		applied++

		w.DisplayFix(ctx, step.action, step.diff)
	}

	final := result.snapshot

	if !args.DryRun {
		final = snapshot

		if applied > 0 {
			reloaded, _, err := w.Load(ctx, args.ListArgs)
			if err != nil {
				slog.Error("Failed to reload project", "error", err)
				return fmt.Errorf("reload project: %w", err)
			}

			final = reloaded
		}
	}

	remaining := len(filterMismatches(CheckSnapshot(final), args.Only))

	slog.Info("Fix run finished", "applied", applied, "failed", len(failures), "remaining", remaining, "dry_run", args.DryRun)

	w.DisplayFixSummary(ctx, applied, len(failures), remaining)
	w.Wait(ctx)

	if len(failures) > 0 {
		return fmt.Errorf("%d fix(es) failed: %w", len(failures), errors.Join(failureErrors(failures)...))
	}

	return nil
}

// View displays the last saved report.
func (w *workflow) View(ctx context.Context, args ViewArgs) error {
	if err := w.Start(ctx, controller.WithViewMode()); err != nil {
		slog.Error("Failed to start workflow UI", "error", err)
		return err
	}
	defer w.Close(ctx)

	report, err := w.LoadReport(args.Reports)
	if err != nil {
		slog.Error("Failed to load report", "error", err)
		return fmt.Errorf("load report: %w", err)
	}

	if err := w.DisplayReport(ctx, report); err != nil {
		slog.Error("Failed to display report", "error", err)
		return fmt.Errorf("display: %w", err)
	}

	w.Wait(ctx)

	return nil
}

func (w *workflow) findings(ctx context.Context, snapshot Snapshot) ([]m.Finding, error) {
	var findings []m.Finding

	for _, unit := range snapshot.Units() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		for _, mismatch := range w.analyzer.Check(unit) {
			finding, err := w.analyzer.Plan(snapshot, mismatch)
			if err != nil {
				slog.Error("Failed to plan fix", "file", mismatch.File, "type", mismatch.ActualName, "error", err)
				return nil, fmt.Errorf("plan %s: %w", mismatch.ActualName, err)
			}

			findings = append(findings, finding)
		}
	}

	return findings, nil
}
