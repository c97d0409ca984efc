package cmd

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	domainmocks "onetype.dev/pkg/onetype/internal/domain/mocks"
)

// newTestRootCmd returns a root command holding subcommands, backed by a
// fresh viper state and logging into a temporary file.
func newTestRootCmd(t *testing.T, subcommands ...*cobra.Command) (*cobra.Command, *bytes.Buffer) {
	t.Helper()

	resetConfig := func() {
		viper.Reset()
		setDefaults()
	}

	resetConfig()
	t.Cleanup(resetConfig)

	viper.Set(logFilenameKey, filepath.Join(t.TempDir(), "onetype.log"))

	out := &bytes.Buffer{}

	cmd := newRootCmd()
	cmd.AddCommand(subcommands...)
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})

	return cmd, out
}

// useMockWorkflow swaps the shared workflow for a mock until t ends.
func useMockWorkflow(t *testing.T) *domainmocks.MockWorkflow {
	t.Helper()

	mockWorkflow := domainmocks.NewMockWorkflow(t)

	originalWorkflow := workflow
	workflow = mockWorkflow

	t.Cleanup(func() { workflow = originalWorkflow })

	return mockWorkflow
}
