// Package mocks provides testify mocks of the adapter interfaces.
package mocks

import (
	"context"
	"os"

	"github.com/stretchr/testify/mock"

	"onetype.dev/pkg/onetype/internal/adapter"
	m "onetype.dev/pkg/onetype/internal/model"
)

// MockSourceFSAdapter is a mock of adapter.SourceFSAdapter.
type MockSourceFSAdapter struct {
	mock.Mock
}

var _ adapter.SourceFSAdapter = (*MockSourceFSAdapter)(nil)

func (a *MockSourceFSAdapter) Get(ctx context.Context, roots []m.Path, filter adapter.SourceFilter) ([]m.File, error) {
	args := a.Called(ctx, roots, filter)
	files, _ := args.Get(0).([]m.File)

	return files, args.Error(1)
}

func (a *MockSourceFSAdapter) Walk(root m.Path, recursive bool, fn adapter.FilepathWalkFunc) error {
	return a.Called(root, recursive, fn).Error(0)
}

func (a *MockSourceFSAdapter) ReadFile(ctx context.Context, path m.Path) ([]byte, error) {
	args := a.Called(ctx, path)
	content, _ := args.Get(0).([]byte)

	return content, args.Error(1)
}

func (a *MockSourceFSAdapter) FileInfo(path m.Path) (os.FileInfo, error) {
	args := a.Called(path)
	info, _ := args.Get(0).(os.FileInfo)

	return info, args.Error(1)
}

func (a *MockSourceFSAdapter) ApplyEdits(ctx context.Context, edits []m.Edit) error {
	return a.Called(ctx, edits).Error(0)
}

// MockReportStore is a mock of adapter.ReportStore.
type MockReportStore struct {
	mock.Mock
}

var _ adapter.ReportStore = (*MockReportStore)(nil)

func (s *MockReportStore) SaveReport(dir m.Path, report m.Report) error {
	return s.Called(dir, report).Error(0)
}

func (s *MockReportStore) LoadReport(dir m.Path) (m.Report, error) {
	args := s.Called(dir)
	report, _ := args.Get(0).(m.Report)

	return report, args.Error(1)
}

// MockParserAdapter is a mock of adapter.ParserAdapter.
type MockParserAdapter struct {
	mock.Mock
}

var _ adapter.ParserAdapter = (*MockParserAdapter)(nil)

func (p *MockParserAdapter) Parse(ctx context.Context, path m.Path, content []byte) (m.Unit, error) {
	args := p.Called(ctx, path, content)
	unit, _ := args.Get(0).(m.Unit)

	return unit, args.Error(1)
}

func (p *MockParserAdapter) Supports(path m.Path) bool {
	return p.Called(path).Bool(0)
}

func (p *MockParserAdapter) Extensions() []string {
	exts, _ := p.Called().Get(0).([]string)
	return exts
}
