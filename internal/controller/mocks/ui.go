// Package mocks provides testify mocks of the controller interfaces.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"onetype.dev/pkg/onetype/internal/controller"
	m "onetype.dev/pkg/onetype/internal/model"
)

// MockUI is a mock of controller.UI.
type MockUI struct {
	mock.Mock
}

var _ controller.UI = (*MockUI)(nil)

func (u *MockUI) Start(ctx context.Context, options ...controller.StartOption) error {
	return u.Called(ctx, options).Error(0)
}

func (u *MockUI) Close(ctx context.Context) {
	u.Called(ctx)
}

func (u *MockUI) Wait(ctx context.Context) {
	u.Called(ctx)
}

func (u *MockUI) DisplayFiles(ctx context.Context, files []m.FileSummary) error {
	return u.Called(ctx, files).Error(0)
}

func (u *MockUI) DisplayFindings(ctx context.Context, findings []m.Finding) error {
	return u.Called(ctx, findings).Error(0)
}

func (u *MockUI) DisplayFix(ctx context.Context, action m.FixAction, diff string) {
	u.Called(ctx, action, diff)
}

func (u *MockUI) DisplayFixError(ctx context.Context, mismatch m.Mismatch, err error) {
	u.Called(ctx, mismatch, err)
}

func (u *MockUI) DisplayFixSummary(ctx context.Context, applied int, failed int, remaining int) {
	u.Called(ctx, applied, failed, remaining)
}

func (u *MockUI) DisplayReport(ctx context.Context, report m.Report) error {
	return u.Called(ctx, report).Error(0)
}
