package mocks

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"

	"onetype.dev/pkg/onetype/internal/domain"
)

// MockWorkflow is a mock of domain.Workflow.
type MockWorkflow struct {
	mock.Mock
}

var _ domain.Workflow = (*MockWorkflow)(nil)

// NewMockWorkflow creates a MockWorkflow whose expectations are asserted when t ends.
func NewMockWorkflow(t *testing.T) *MockWorkflow {
	w := &MockWorkflow{}
	w.Test(t)

	t.Cleanup(func() { w.AssertExpectations(t) })

	return w
}

func (w *MockWorkflow) List(ctx context.Context, args domain.ListArgs) error {
	return w.Called(ctx, args).Error(0)
}

func (w *MockWorkflow) Check(ctx context.Context, args domain.CheckArgs) error {
	return w.Called(ctx, args).Error(0)
}

func (w *MockWorkflow) Fix(ctx context.Context, args domain.FixArgs) error {
	return w.Called(ctx, args).Error(0)
}

func (w *MockWorkflow) View(ctx context.Context, args domain.ViewArgs) error {
	return w.Called(ctx, args).Error(0)
}
