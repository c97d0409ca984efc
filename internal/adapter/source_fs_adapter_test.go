package adapter

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	m "onetype.dev/pkg/onetype/internal/model"
)

func TestLocalSourceFSAdapter_Walk(t *testing.T) {
	t.Run("non recursive skips nested files", func(t *testing.T) {
		adapter := NewLocalSourceFSAdapter()

		root := t.TempDir()
		writeTestFile(t, filepath.Join(root, "Program.cs"), "class Program { }\n")

		nestedDir := filepath.Join(root, "nested")
		mustMkdir(t, nestedDir)
		writeTestFile(t, filepath.Join(nestedDir, "Child.cs"), "class Child { }\n")

		var visited []string
		err := adapter.Walk(m.Path(root), false, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			visited = append(visited, path)
			return nil
		})
		require.NoError(t, err)

		for _, forbidden := range []string{nestedDir, filepath.Join(nestedDir, "Child.cs")} {
			assert.Falsef(t, containsPath(visited, forbidden), "Walk() unexpectedly visited %s when recursive is false", forbidden)
		}

		assert.True(t, containsPath(visited, filepath.Join(root, "Program.cs")), "Walk() did not visit top-level file")
	})

	t.Run("recursive visits nested files", func(t *testing.T) {
		adapter := NewLocalSourceFSAdapter()

		root := t.TempDir()
		nestedDir := filepath.Join(root, "nested")
		mustMkdir(t, nestedDir)
		child := filepath.Join(nestedDir, "Child.cs")
		writeTestFile(t, child, "class Child { }\n")

		var visited []string
		err := adapter.Walk(m.Path(root), true, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			visited = append(visited, path)
			return nil
		})
		require.NoError(t, err)

		assert.True(t, containsPath(visited, child), "Walk() did not visit nested file when recursive")
	})
}

func TestLocalSourceFSAdapter_Get(t *testing.T) {
	ctx := context.Background()
	filter := SourceFilter{Extensions: []string{".cs", ".java"}}

	setup := func(t *testing.T) string {
		t.Helper()

		root := t.TempDir()
		writeTestFile(t, filepath.Join(root, "TypeA.cs"), "class TypeA { }\n")
		writeTestFile(t, filepath.Join(root, "README.md"), "# readme\n")
		mustMkdir(t, filepath.Join(root, "src"))
		writeTestFile(t, filepath.Join(root, "src", "Main.java"), "class Main { }\n")
		mustMkdir(t, filepath.Join(root, "obj"))
		writeTestFile(t, filepath.Join(root, "obj", "Generated.cs"), "class Generated { }\n")

		t.Chdir(root)

		return root
	}

	shortPaths := func(files []m.File) []string {
		paths := make([]string, 0, len(files))
		for _, f := range files {
			paths = append(paths, filepath.ToSlash(string(f.ShortPath)))
		}
		return paths
	}

	t.Run("recursive pattern finds sources and skips build folders", func(t *testing.T) {
		setup(t)

		files, err := NewLocalSourceFSAdapter().Get(ctx, []m.Path{"./..."}, filter)
		require.NoError(t, err)

		assert.Equal(t, []string{"TypeA.cs", "src/Main.java"}, shortPaths(files))
	})

	t.Run("defaults to the working directory", func(t *testing.T) {
		setup(t)

		files, err := NewLocalSourceFSAdapter().Get(ctx, nil, filter)
		require.NoError(t, err)

		assert.Len(t, files, 2)
	})

	t.Run("plain directory is not recursive", func(t *testing.T) {
		setup(t)

		files, err := NewLocalSourceFSAdapter().Get(ctx, []m.Path{"."}, filter)
		require.NoError(t, err)

		assert.Equal(t, []string{"TypeA.cs"}, shortPaths(files))
	})

	t.Run("single file root", func(t *testing.T) {
		root := setup(t)

		files, err := NewLocalSourceFSAdapter().Get(ctx, []m.Path{"src/Main.java"}, filter)
		require.NoError(t, err)
		require.Len(t, files, 1)

		assert.Equal(t, m.Path(filepath.Join(root, "src", "Main.java")), files[0].FullPath)
		assert.Equal(t, m.Path(filepath.Join("src", "Main.java")), files[0].ShortPath)
	})

	t.Run("exclude regex", func(t *testing.T) {
		setup(t)

		files, err := NewLocalSourceFSAdapter().Get(ctx, []m.Path{"./..."}, SourceFilter{
			Extensions: filter.Extensions,
			Exclude:    []string{`^src/`},
		})
		require.NoError(t, err)

		assert.Equal(t, []string{"TypeA.cs"}, shortPaths(files))
	})

	t.Run("include glob", func(t *testing.T) {
		setup(t)

		files, err := NewLocalSourceFSAdapter().Get(ctx, []m.Path{"./..."}, SourceFilter{
			Extensions: filter.Extensions,
			Include:    []string{"src/**/*.java"},
		})
		require.NoError(t, err)

		assert.Equal(t, []string{"src/Main.java"}, shortPaths(files))
	})

	t.Run("invalid exclude pattern", func(t *testing.T) {
		setup(t)

		_, err := NewLocalSourceFSAdapter().Get(ctx, []m.Path{"./..."}, SourceFilter{Exclude: []string{"("}})
		assert.Error(t, err)
	})

	t.Run("missing root", func(t *testing.T) {
		setup(t)

		_, err := NewLocalSourceFSAdapter().Get(ctx, []m.Path{"missing/..."}, filter)
		assert.Error(t, err)
	})
}

func TestLocalSourceFSAdapter_ReadFile(t *testing.T) {
	adapter := NewLocalSourceFSAdapter()

	root := t.TempDir()
	path := filepath.Join(root, "Program.cs")
	content := "using System;\n" + "class Program { }\n"
	writeTestFile(t, path, content)

	got, err := adapter.ReadFile(context.Background(), m.Path(path))
	require.NoError(t, err)

	assert.Equal(t, content, string(got))
}

func TestLocalSourceFSAdapter_ApplyEdits(t *testing.T) {
	ctx := context.Background()

	unit := func(text string) m.Unit {
		return m.Unit{Trailer: text}
	}

	t.Run("replace and add", func(t *testing.T) {
		root := t.TempDir()
		source := filepath.Join(root, "Types.cs")
		writeTestFile(t, source, "class TypeA { }\nclass TypeB { }\n")

		err := NewLocalSourceFSAdapter().ApplyEdits(ctx, []m.Edit{
			{Kind: m.EditReplace, Path: m.Path(source), Unit: unit("class TypeA { }\n")},
			{Kind: m.EditAdd, Path: m.Path(filepath.Join(root, "TypeB.cs")), Unit: unit("class TypeB { }\n")},
		})
		require.NoError(t, err)

		assert.Equal(t, "class TypeA { }\n", readTestFile(t, source))
		assert.Equal(t, "class TypeB { }\n", readTestFile(t, filepath.Join(root, "TypeB.cs")))
		assertNoStagedFiles(t, root)
	})

	t.Run("remove", func(t *testing.T) {
		root := t.TempDir()
		source := filepath.Join(root, "Old.cs")
		writeTestFile(t, source, "class Old { }\n")

		err := NewLocalSourceFSAdapter().ApplyEdits(ctx, []m.Edit{{Kind: m.EditRemove, Path: m.Path(source)}})
		require.NoError(t, err)

		assert.NoFileExists(t, source)
	})

	t.Run("rename keeps content", func(t *testing.T) {
		root := t.TempDir()
		source := filepath.Join(root, "Old.cs")
		target := filepath.Join(root, "New.cs")
		writeTestFile(t, source, "class New { }\n")

		err := NewLocalSourceFSAdapter().ApplyEdits(ctx, []m.Edit{
			{Kind: m.EditRename, Path: m.Path(source), NewPath: m.Path(target)},
		})
		require.NoError(t, err)

		assert.NoFileExists(t, source)
		assert.Equal(t, "class New { }\n", readTestFile(t, target))
	})

	t.Run("case only rename", func(t *testing.T) {
		root := t.TempDir()
		source := filepath.Join(root, "typea.cs")
		target := filepath.Join(root, "TypeA.cs")
		writeTestFile(t, source, "class TypeA { }\n")

		err := NewLocalSourceFSAdapter().ApplyEdits(ctx, []m.Edit{
			{Kind: m.EditRename, Path: m.Path(source), NewPath: m.Path(target)},
		})
		require.NoError(t, err)

		assert.Equal(t, "class TypeA { }\n", readTestFile(t, target))
	})

	t.Run("conflict leaves the project untouched", func(t *testing.T) {
		root := t.TempDir()
		source := filepath.Join(root, "Types.cs")
		existing := filepath.Join(root, "TypeB.cs")
		writeTestFile(t, source, "class TypeA { }\nclass TypeB { }\n")
		writeTestFile(t, existing, "class TypeB { }\n")

		err := NewLocalSourceFSAdapter().ApplyEdits(ctx, []m.Edit{
			{Kind: m.EditReplace, Path: m.Path(source), Unit: unit("class TypeA { }\n")},
			{Kind: m.EditAdd, Path: m.Path(existing), Unit: unit("class TypeB { }\n")},
		})
		require.ErrorIs(t, err, ErrPathTaken)

		assert.Equal(t, "class TypeA { }\nclass TypeB { }\n", readTestFile(t, source))
		assertNoStagedFiles(t, root)
	})

	t.Run("replace of missing file fails", func(t *testing.T) {
		root := t.TempDir()

		err := NewLocalSourceFSAdapter().ApplyEdits(ctx, []m.Edit{
			{Kind: m.EditReplace, Path: m.Path(filepath.Join(root, "Missing.cs")), Unit: unit("")},
		})
		assert.Error(t, err)
	})

	t.Run("cancelled context", func(t *testing.T) {
		root := t.TempDir()
		source := filepath.Join(root, "Old.cs")
		writeTestFile(t, source, "class Old { }\n")

		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		err := NewLocalSourceFSAdapter().ApplyEdits(cancelled, []m.Edit{{Kind: m.EditRemove, Path: m.Path(source)}})
		require.ErrorIs(t, err, context.Canceled)

		assert.FileExists(t, source)
	})
}

func TestLocalSourceFSAdapter_FileInfo(t *testing.T) {
	adapter := NewLocalSourceFSAdapter()

	root := t.TempDir()
	filePath := filepath.Join(root, "file.txt")
	writeTestFile(t, filePath, "content")

	info, err := adapter.FileInfo(m.Path(filePath))
	require.NoError(t, err)
	assert.False(t, info.IsDir())

	_, err = adapter.FileInfo(m.Path(filepath.Join(root, "missing")))
	assert.Error(t, err)
}

func writeTestFile(t *testing.T, path, contents string) {
	t.Helper()
	writeTestBytes(t, path, []byte(contents))
}

func writeTestBytes(t *testing.T, path string, contents []byte) {
	t.Helper()
	if err := os.WriteFile(path, contents, 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

func readTestFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func mustMkdir(t *testing.T, path string) {
	t.Helper()
	if err := os.Mkdir(path, 0o755); err != nil {
		t.Fatalf("failed to create dir %s: %v", path, err)
	}
}

func assertNoStagedFiles(t *testing.T, dir string) {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(dir, ".*.onetype-*"))
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func containsPath(paths []string, target string) bool {
	for _, p := range paths {
		if p == target {
			return true
		}
	}

	return false
}
