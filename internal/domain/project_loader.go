package domain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"onetype.dev/pkg/onetype/internal/adapter"
	m "onetype.dev/pkg/onetype/internal/model"
)

// ProjectLoader reads and parses the source files of a project into a snapshot.
type ProjectLoader interface {
	Load(ctx context.Context, args ListArgs) (Snapshot, []m.File, error)
}

type projectLoader struct {
	fs     adapter.SourceFSAdapter
	parser adapter.ParserAdapter
}

// NewProjectLoader creates a ProjectLoader reading through fs and parsing with parser.
func NewProjectLoader(fs adapter.SourceFSAdapter, parser adapter.ParserAdapter) ProjectLoader {
	return &projectLoader{fs: fs, parser: parser}
}

// Load discovers the files matching args and parses them in parallel. Files
// that do not parse are logged and left out of the snapshot.
func (l *projectLoader) Load(ctx context.Context, args ListArgs) (Snapshot, []m.File, error) {
	files, err := l.fs.Get(ctx, args.Paths, adapter.SourceFilter{
		Extensions: l.parser.Extensions(),
		Exclude:    args.Exclude,
		Include:    args.Include,
	})
	if err != nil {
		return Snapshot{}, nil, fmt.Errorf("find sources: %w", err)
	}

	units := make([]m.Unit, len(files))
	parsed := make([]bool, len(files))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(max(args.Threads, 1))

	for i, file := range files {
		group.Go(func() error {
			content, err := l.fs.ReadFile(groupCtx, file.FullPath)
			if err != nil {
				return fmt.Errorf("read %s: %w", file.ShortPath, err)
			}

			unit, err := l.parser.Parse(groupCtx, file.FullPath, content)
			if err != nil {
				if errors.Is(err, adapter.ErrSyntax) || errors.Is(err, adapter.ErrUnsupportedLanguage) {
					slog.Warn("Skipping file", "path", file.ShortPath, "error", err)
					return nil
				}

				return fmt.Errorf("parse %s: %w", file.ShortPath, err)
			}

			units[i] = unit
			parsed[i] = true

			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return Snapshot{}, nil, err
	}

	loaded := make([]m.Unit, 0, len(units))
	kept := make([]m.File, 0, len(files))

	for i, unit := range units {
		if !parsed[i] {
			continue
		}

		loaded = append(loaded, unit)
		kept = append(kept, files[i])
	}

	slog.Debug("Loaded project", "files", len(kept), "skipped", len(files)-len(kept))

	return NewSnapshot(loaded...), kept, nil
}
