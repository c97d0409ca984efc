// Package mocks provides testify mocks of the domain interfaces.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"onetype.dev/pkg/onetype/internal/domain"
	m "onetype.dev/pkg/onetype/internal/model"
)

// MockProjectLoader is a mock of domain.ProjectLoader.
type MockProjectLoader struct {
	mock.Mock
}

var _ domain.ProjectLoader = (*MockProjectLoader)(nil)

func (l *MockProjectLoader) Load(ctx context.Context, args domain.ListArgs) (domain.Snapshot, []m.File, error) {
	ret := l.Called(ctx, args)
	snapshot, _ := ret.Get(0).(domain.Snapshot)
	files, _ := ret.Get(1).([]m.File)

	return snapshot, files, ret.Error(2)
}
