package storage

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/max64180/lifetrack/schedule"
)

// MockStorage implements the Storage interface for testing
type MockStorage struct {
	mock.Mock
}

// LoadAll implements the Storage interface
func (m *MockStorage) LoadAll(ctx context.Context) ([]schedule.Occurrence, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]schedule.Occurrence), args.Error(1)
}

// SaveBatch implements the Storage interface
func (m *MockStorage) SaveBatch(ctx context.Context, occurrences []schedule.Occurrence) error {
	args := m.Called(ctx, occurrences)
	return args.Error(0)
}

// DeleteBatch implements the Storage interface
func (m *MockStorage) DeleteBatch(ctx context.Context, ids []string) error {
	args := m.Called(ctx, ids)
	return args.Error(0)
}
