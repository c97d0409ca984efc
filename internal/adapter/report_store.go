package adapter

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	m "onetype.dev/pkg/onetype/internal/model"
)

// ReportFileName is the name of the report written into the output directory.
const ReportFileName = "report.yaml"

// ErrNoReport is returned by LoadReport when no check run has been saved.
var ErrNoReport = errors.New("no report found")

// ReportStore persists the result of the last check run.
type ReportStore interface {
	SaveReport(dir m.Path, report m.Report) error
	LoadReport(dir m.Path) (m.Report, error)
}

// LocalReportStore keeps the report as YAML inside the output directory.
type LocalReportStore struct{}

// NewReportStore creates a LocalReportStore.
func NewReportStore() *LocalReportStore {
	return &LocalReportStore{}
}

// SaveReport writes report to dir, replacing the previous one.
func (s *LocalReportStore) SaveReport(dir m.Path, report m.Report) error {
	if err := os.MkdirAll(string(dir), 0o750); err != nil {
		return fmt.Errorf("create report directory: %w", err)
	}

	data, err := yaml.Marshal(report)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}

	path := filepath.Join(string(dir), ReportFileName)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	return nil
}

// LoadReport reads the report saved in dir.
func (s *LocalReportStore) LoadReport(dir m.Path) (m.Report, error) {
	path := filepath.Join(string(dir), ReportFileName)

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return m.Report{}, fmt.Errorf("%w in %s", ErrNoReport, dir)
		}

		return m.Report{}, fmt.Errorf("read report: %w", err)
	}

	var report m.Report
	if err := yaml.Unmarshal(data, &report); err != nil {
		return m.Report{}, fmt.Errorf("decode report %s: %w", path, err)
	}

	return report, nil
}
