// Package adapter contains the infrastructure adapters of the onetype CLI:
// source discovery, parsing, edit application and report storage.
package adapter

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	m "onetype.dev/pkg/onetype/internal/model"
)

// ErrPathTaken is returned when an edit would create a file over an existing one.
var ErrPathTaken = errors.New("path already exists")

// skippedDirs are build output and tooling folders never scanned for sources.
var skippedDirs = []string{".git", ".vs", ".idea", "bin", "obj", "node_modules", "target", "build"}

// SourceFilter narrows the files returned by SourceFSAdapter.Get.
type SourceFilter struct {
	// Extensions lists the accepted extensions, compared case-insensitively.
	Extensions []string
	// Exclude holds regular expressions matched against the slash-separated
	// path relative to the working directory.
	Exclude []string
	// Include holds doublestar globs. When set, a file must match one of them.
	Include []string
}

// SourceFSAdapter abstracts filesystem-specific operations that the domain layer
// relies on when scanning and rewriting user projects. It hides direct `os`
// access so the workflow logic can be tested without touching the disk.
//
//nolint:interfacebloat // A richer interface keeps workflow logic decoupled from os/fs.
type SourceFSAdapter interface {
	// Get resolves path patterns (`./...`, directories, files) to the source
	// files accepted by filter, sorted by path.
	Get(ctx context.Context, roots []m.Path, filter SourceFilter) ([]m.File, error)

	// Walk traverses the provided root path. When recursive is false the
	// implementation should limit itself to the root directory (no sub-dirs).
	Walk(root m.Path, recursive bool, fn FilepathWalkFunc) error

	// ReadFile loads a file from disk and returns its contents.
	ReadFile(ctx context.Context, path m.Path) ([]byte, error)

	// FileInfo returns metadata for a path so the domain can check existence or
	// distinguish between files and directories when necessary.
	FileInfo(path m.Path) (os.FileInfo, error)

	// ApplyEdits writes a fix to disk. New contents are staged next to their
	// destination before any file is touched.
	ApplyEdits(ctx context.Context, edits []m.Edit) error
}

// FilepathWalkFunc mirrors the callback shape used by filepath.Walk. It is
// defined here to avoid leaking the standard-library type directly into the
// domain layer.
type FilepathWalkFunc func(path string, info os.FileInfo, err error) error

// LocalSourceFSAdapter implements SourceFSAdapter on the local disk.
type LocalSourceFSAdapter struct{}

// NewLocalSourceFSAdapter constructs a LocalSourceFSAdapter instance ready to
// be wired into the workflow.
func NewLocalSourceFSAdapter() *LocalSourceFSAdapter {
	return &LocalSourceFSAdapter{}
}

// Get collects the source files under roots.
func (a *LocalSourceFSAdapter) Get(ctx context.Context, roots []m.Path, filter SourceFilter) ([]m.File, error) {
	if len(roots) == 0 {
		roots = []m.Path{"./..."}
	}

	accept, err := newFileMatcher(filter)
	if err != nil {
		return nil, err
	}

	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("get working directory: %w", err)
	}

	seen := make(map[string]struct{})

	var files []m.File

	collect := func(path string) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		file, ok, err := a.processFilePath(cwd, path, accept)
		if err != nil || !ok {
			return err
		}

		if _, exists := seen[string(file.FullPath)]; exists {
			return nil
		}

		seen[string(file.FullPath)] = struct{}{}
		files = append(files, file)

		return nil
	}

	for _, root := range roots {
		rootPath, recursive, err := normalizeRootPath(string(root))
		if err != nil {
			return nil, err
		}

		info, err := a.FileInfo(m.Path(rootPath))
		if err != nil {
			return nil, fmt.Errorf("root path error: %w", err)
		}

		if !info.IsDir() {
			if err := collect(rootPath); err != nil {
				return nil, err
			}

			continue
		}

		err = a.Walk(m.Path(rootPath), recursive, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}

			if info.IsDir() {
				if path != rootPath && slices.Contains(skippedDirs, info.Name()) {
					return filepath.SkipDir
				}

				return nil
			}

			return collect(path)
		})
		if err != nil {
			return nil, err
		}
	}

	slices.SortFunc(files, func(x, y m.File) int {
		return strings.Compare(string(x.FullPath), string(y.FullPath))
	})

	return files, nil
}

// Walk iterates over files under root, optionally descending into subdirectories.
func (a *LocalSourceFSAdapter) Walk(root m.Path, recursive bool, fn FilepathWalkFunc) error {
	rootStr := string(root)

	return filepath.Walk(rootStr, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return fn(path, info, err)
		}

		if info.IsDir() && !recursive && path != rootStr {
			return filepath.SkipDir
		}

		return fn(path, info, nil)
	})
}

// ReadFile loads file contents from disk.
func (a *LocalSourceFSAdapter) ReadFile(ctx context.Context, path m.Path) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return os.ReadFile(string(path))
}

// FileInfo returns os.FileInfo metadata for the given path.
func (a *LocalSourceFSAdapter) FileInfo(path m.Path) (os.FileInfo, error) {
	return os.Stat(string(path))
}

// stagedEdit is an edit whose new content already sits in a temporary file.
type stagedEdit struct {
	edit m.Edit
	temp string
}

// ApplyEdits checks every edit against the disk, stages new contents in
// temporary files and then moves them into place in order. A failure while
// staging leaves the project untouched.
func (a *LocalSourceFSAdapter) ApplyEdits(ctx context.Context, edits []m.Edit) error {
	staged := make([]stagedEdit, 0, len(edits))

	cleanup := func() {
		for _, s := range staged {
			if s.temp != "" {
				_ = os.Remove(s.temp)
			}
		}
	}

	for _, edit := range edits {
		if err := ctx.Err(); err != nil {
			cleanup()
			return err
		}

		s, err := a.stage(edit)
		if err != nil {
			cleanup()
			return err
		}

		staged = append(staged, s)
	}

	for i, s := range staged {
		if err := commit(s); err != nil {
			cleanup()
			return fmt.Errorf("apply %s %s (%d of %d edits written): %w", s.edit.Kind, s.edit.Path, i, len(staged), err)
		}

		staged[i].temp = ""
	}

	return nil
}

func (a *LocalSourceFSAdapter) stage(edit m.Edit) (stagedEdit, error) {
	path := string(edit.Path)

	switch edit.Kind {
	case m.EditAdd:
		if _, err := os.Stat(path); err == nil {
			return stagedEdit{}, fmt.Errorf("add %s: %w", path, ErrPathTaken)
		}
	case m.EditReplace, m.EditRemove:
		if _, err := os.Stat(path); err != nil {
			return stagedEdit{}, fmt.Errorf("%s %s: %w", edit.Kind, path, err)
		}
	case m.EditRename:
		if _, err := os.Stat(path); err != nil {
			return stagedEdit{}, fmt.Errorf("rename %s: %w", path, err)
		}

		if !caseOnlyRename(edit) {
			if _, err := os.Stat(string(edit.NewPath)); err == nil {
				return stagedEdit{}, fmt.Errorf("rename %s: %s: %w", path, edit.NewPath, ErrPathTaken)
			}
		}

		return stagedEdit{edit: edit}, nil
	default:
		return stagedEdit{}, fmt.Errorf("unknown edit kind %d", edit.Kind)
	}

	if edit.Kind == m.EditRemove {
		return stagedEdit{edit: edit}, nil
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return stagedEdit{}, fmt.Errorf("create %s: %w", dir, err)
	}

	temp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".onetype-*")
	if err != nil {
		return stagedEdit{}, fmt.Errorf("stage %s: %w", path, err)
	}

	_, writeErr := temp.Write(edit.Content())
	closeErr := temp.Close()

	if err := errors.Join(writeErr, closeErr); err != nil {
		_ = os.Remove(temp.Name())
		return stagedEdit{}, fmt.Errorf("stage %s: %w", path, err)
	}

	if edit.Kind == m.EditReplace {
		if info, err := os.Stat(path); err == nil {
			_ = os.Chmod(temp.Name(), info.Mode().Perm())
		}
	}

	return stagedEdit{edit: edit, temp: temp.Name()}, nil
}

func commit(s stagedEdit) error {
	switch s.edit.Kind {
	case m.EditAdd, m.EditReplace:
		return os.Rename(s.temp, string(s.edit.Path))
	case m.EditRemove:
		return os.Remove(string(s.edit.Path))
	case m.EditRename:
		if caseOnlyRename(s.edit) {
			// Case-insensitive file systems need an intermediate name.
			hop := string(s.edit.Path) + ".onetype-rename"
			if err := os.Rename(string(s.edit.Path), hop); err != nil {
				return err
			}

			return os.Rename(hop, string(s.edit.NewPath))
		}

		return os.Rename(string(s.edit.Path), string(s.edit.NewPath))
	}

	return fmt.Errorf("unknown edit kind %d", s.edit.Kind)
}

func caseOnlyRename(edit m.Edit) bool {
	return edit.Path != edit.NewPath && strings.EqualFold(string(edit.Path), string(edit.NewPath))
}

// fileMatcher decides whether a discovered file is a project source.
type fileMatcher struct {
	extensions []string
	exclude    []*regexp.Regexp
	include    []string
}

func newFileMatcher(filter SourceFilter) (*fileMatcher, error) {
	matcher := &fileMatcher{include: filter.Include}

	for _, ext := range filter.Extensions {
		matcher.extensions = append(matcher.extensions, strings.ToLower(ext))
	}

	for _, pattern := range filter.Exclude {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid exclude pattern %q: %w", pattern, err)
		}

		matcher.exclude = append(matcher.exclude, re)
	}

	for _, pattern := range filter.Include {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid include pattern %q", pattern)
		}
	}

	return matcher, nil
}

// matches reports whether rel, a slash-separated relative path, is accepted.
func (f *fileMatcher) matches(rel string) bool {
	if len(f.extensions) > 0 && !slices.Contains(f.extensions, strings.ToLower(filepath.Ext(rel))) {
		return false
	}

	for _, re := range f.exclude {
		if re.MatchString(rel) {
			return false
		}
	}

	if len(f.include) == 0 {
		return true
	}

	for _, pattern := range f.include {
		if ok, err := doublestar.Match(pattern, rel); err == nil && ok {
			return true
		}
	}

	return false
}

func (a *LocalSourceFSAdapter) processFilePath(cwd, path string, accept *fileMatcher) (m.File, bool, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return m.File{}, false, err
	}

	rel, err := filepath.Rel(cwd, absPath)
	if err != nil {
		rel = absPath
	}

	if !accept.matches(filepath.ToSlash(rel)) {
		return m.File{}, false, nil
	}

	if _, err := os.Stat(absPath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return m.File{}, false, nil
		}

		return m.File{}, false, err
	}

	return m.File{FullPath: m.Path(absPath), ShortPath: m.Path(rel)}, true, nil
}

func normalizeRootPath(root string) (string, bool, error) {
	rootStr, recursive := parseRootPath(root)

	if strings.HasPrefix(rootStr, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", false, err
		}

		suffix := strings.TrimPrefix(rootStr, "~")
		suffix = strings.TrimPrefix(suffix, string(os.PathSeparator))
		rootStr = filepath.Join(home, suffix)
	}

	if rootStr == "" {
		rootStr = "."
	}

	abs, err := filepath.Abs(rootStr)
	if err != nil {
		return "", false, err
	}

	return abs, recursive, nil
}

func parseRootPath(rootStr string) (path string, recursive bool) {
	if rootStr == "..." {
		return ".", true
	}

	if strings.HasSuffix(rootStr, "/...") {
		return strings.TrimSuffix(rootStr, "/..."), true
	}

	return rootStr, false
}
