// Package controller provides output adapters for displaying check and fix results.
package controller

import (
	"context"

	m "onetype.dev/pkg/onetype/internal/model"
)

// StartMode defines the mode of operation for the UI.
type StartMode int

// Available StartMode values.
const (
	ModeList StartMode = iota
	ModeCheck
	ModeFix
	ModeView
)

// StartOption is a functional option for Start method.
type StartOption func(*StartConfig)

// StartConfig holds configuration for starting the UI.
type StartConfig struct {
	mode   StartMode
	dryRun bool
}

// WithListMode sets the UI to file listing mode.
func WithListMode() StartOption {
	return func(c *StartConfig) {
		c.mode = ModeList
	}
}

// WithCheckMode sets the UI to check mode.
func WithCheckMode() StartOption {
	return func(c *StartConfig) {
		c.mode = ModeCheck
	}
}

// WithFixMode sets the UI to fix mode. In dry-run mode fixes are only previewed.
func WithFixMode(dryRun bool) StartOption {
	return func(c *StartConfig) {
		c.mode = ModeFix
		c.dryRun = dryRun
	}
}

// WithViewMode sets the UI to saved report mode.
func WithViewMode() StartOption {
	return func(c *StartConfig) {
		c.mode = ModeView
	}
}

func newStartConfig(options []StartOption) StartConfig {
	var config StartConfig
	for _, option := range options {
		option(&config)
	}

	return config
}

// UI defines the interface for displaying findings and fixes.
// Implementations can use different output methods (simple text, TUI, etc).
type UI interface {
	Start(ctx context.Context, options ...StartOption) error
	Close(ctx context.Context)
	Wait(ctx context.Context) // Wait for UI to finish (user closes it)
	DisplayFiles(ctx context.Context, files []m.FileSummary) error
	DisplayFindings(ctx context.Context, findings []m.Finding) error
	DisplayFix(ctx context.Context, action m.FixAction, diff string)
	DisplayFixError(ctx context.Context, mismatch m.Mismatch, err error)
	DisplayFixSummary(ctx context.Context, applied int, failed int, remaining int)
	DisplayReport(ctx context.Context, report m.Report) error
}
