package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitCmd_WritesConfigFile(t *testing.T) {
	tempDir := t.TempDir()
	t.Chdir(tempDir)

	cmd, _ := newTestRootCmd(t, newInitCmd())
	cmd.SetArgs([]string{"init"})

	require.NoError(t, cmd.Execute())

	targetPath := filepath.Join(tempDir, configFileName)
	info, err := os.Stat(targetPath)
	require.NoError(t, err)
	require.False(t, info.IsDir())

	contents, err := os.ReadFile(targetPath)
	require.NoError(t, err)
	assert.Contains(t, string(contents), "output: .onetype")
	assert.Contains(t, string(contents), "parallel: 4")
}

func TestInitCmd_ErrorsWhenFileExists(t *testing.T) {
	tempDir := t.TempDir()
	t.Chdir(tempDir)

	targetPath := filepath.Join(tempDir, configFileName)
	require.NoError(t, os.WriteFile(targetPath, []byte("existing: true\n"), 0o644))

	cmd, _ := newTestRootCmd(t, newInitCmd())
	cmd.SetArgs([]string{"init"})

	require.Error(t, cmd.Execute())
}

func TestInitCmd_ForceOverwrites(t *testing.T) {
	tempDir := t.TempDir()
	t.Chdir(tempDir)

	targetPath := filepath.Join(tempDir, configFileName)
	require.NoError(t, os.WriteFile(targetPath, []byte("existing: true\n"), 0o644))

	cmd, out := newTestRootCmd(t, newInitCmd())
	cmd.SetArgs([]string{"init", "--force"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "Wrote onetype.yaml")

	contents, err := os.ReadFile(targetPath)
	require.NoError(t, err)
	assert.NotContains(t, string(contents), "existing")
	assert.Contains(t, string(contents), "output: .onetype")
}
