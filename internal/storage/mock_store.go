package storage

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/JakeFAU/trendwatch/internal/trends"
)

// MockRecordStore is a mock implementation of trends.RecordStore for testing.
type MockRecordStore struct {
	mock.Mock
}

// Persist is the mock implementation of the Persist method.
func (m *MockRecordStore) Persist(ctx context.Context, record trends.FetchRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0) //nolint:wrapcheck
}
