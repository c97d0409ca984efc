package domain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"

	m "onetype.dev/pkg/onetype/internal/model"
)

type fixStep struct {
	action m.FixAction
	diff   string
}

type fixFailure struct {
	mismatch m.Mismatch
	err      error
}

type fixResult struct {
	snapshot Snapshot
	steps    []fixStep
	failures []fixFailure
}

// mismatchKey identifies a declaration across snapshots.
type mismatchKey struct {
	file       m.Path
	name       string
	occurrence int
}

func keyOf(mismatch m.Mismatch) mismatchKey {
	return mismatchKey{file: mismatch.File, name: mismatch.ActualName, occurrence: mismatch.Occurrence}
}

// fixAll repairs mismatches one at a time: check, fix the first mismatch,
// apply it to the snapshot, check again. A mismatch whose fix fails is
// skipped for the rest of the run. The number of rounds is bounded so a fix
// that keeps producing new mismatches cannot loop forever.
func (w *workflow) fixAll(ctx context.Context, snapshot Snapshot, only []string) (fixResult, error) {
	result := fixResult{snapshot: snapshot}
	skipped := make(map[mismatchKey]bool)

	rounds := 3*len(filterMismatches(CheckSnapshot(snapshot), only)) + 1

	for round := 0; round < rounds; round++ {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		mismatch, ok := nextMismatch(result.snapshot, only, skipped)
		if !ok {
			return result, nil
		}

		action, err := w.analyzer.SynthesizeFix(ctx, result.snapshot, mismatch)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return result, err
			}

			slog.Warn("Cannot fix mismatch", "file", mismatch.File, "type", mismatch.ActualName, "error", err)
			result.failures = append(result.failures, fixFailure{mismatch: mismatch, err: err})
			skipped[keyOf(mismatch)] = true

			continue
		}

		next, err := result.snapshot.Apply(action.Edits)
		if err != nil {
			slog.Warn("Fix does not apply", "file", mismatch.File, "type", mismatch.ActualName, "error", err)
			result.failures = append(result.failures, fixFailure{mismatch: mismatch, err: err})
			skipped[keyOf(mismatch)] = true

			continue
		}

		diff, err := RenderDiff(result.snapshot, action)
		if err != nil {
			return result, fmt.Errorf("render fix: %w", err)
		}

		slog.Debug("Fixed mismatch", "file", mismatch.File, "type", mismatch.ActualName, "strategy", action.Strategy.Name())

		result.steps = append(result.steps, fixStep{action: action, diff: diff})
		result.snapshot = next
	}

	if _, ok := nextMismatch(result.snapshot, only, skipped); ok {
		slog.Warn("Stopped fixing after round limit", "rounds", rounds)
	}

	return result, nil
}

func nextMismatch(snapshot Snapshot, only []string, skipped map[mismatchKey]bool) (m.Mismatch, bool) {
	for _, mismatch := range filterMismatches(CheckSnapshot(snapshot), only) {
		if !skipped[keyOf(mismatch)] {
			return mismatch, true
		}
	}

	return m.Mismatch{}, false
}

// filterMismatches keeps the mismatches of declarations named in only, or all
// of them when only is empty.
func filterMismatches(mismatches []m.Mismatch, only []string) []m.Mismatch {
	if len(only) == 0 {
		return mismatches
	}

	var kept []m.Mismatch

	for _, mismatch := range mismatches {
		if slices.Contains(only, mismatch.ActualName) {
			kept = append(kept, mismatch)
		}
	}

	return kept
}

func failureErrors(failures []fixFailure) []error {
	errs := make([]error, 0, len(failures))
	for _, failure := range failures {
		errs = append(errs, fmt.Errorf("%s in %s: %w", failure.mismatch.ActualName, failure.mismatch.File, failure.err))
	}

	return errs
}

// pathIndex maps the absolute paths of loaded files to their display paths.
// Paths of files created by a fix are resolved through their directory.
type pathIndex struct {
	files map[m.Path]m.Path
	dirs  map[m.Path]m.Path
}

func shortPathIndex(files []m.File) pathIndex {
	idx := pathIndex{
		files: make(map[m.Path]m.Path, len(files)),
		dirs:  make(map[m.Path]m.Path),
	}

	for _, file := range files {
		idx.files[file.FullPath] = file.ShortPath
		idx.dirs[m.Dir(file.FullPath)] = m.Dir(file.ShortPath)
	}

	return idx
}

func (idx pathIndex) get(path m.Path) m.Path {
	if short, ok := idx.files[path]; ok {
		return short
	}

	if dir, ok := idx.dirs[m.Dir(path)]; ok {
		return m.Path(filepath.Join(string(dir), filepath.Base(string(path))))
	}

	return path
}
