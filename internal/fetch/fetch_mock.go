package fetch

import (
	"context"

	"github.com/huangsam/barrace/internal/contract"
	"github.com/huangsam/barrace/schema"
	"github.com/stretchr/testify/mock"
)

// MockFetcher is a mock implementation of Fetcher for testing.
type MockFetcher struct {
	mock.Mock
}

var _ contract.Fetcher = &MockFetcher{} // Compile-time check

// Fetch implements the Fetcher interface.
func (m *MockFetcher) Fetch(ctx context.Context, source string) ([]schema.RawRow, error) {
	args := m.Called(ctx, source)
	rows, _ := args.Get(0).([]schema.RawRow)
	return rows, args.Error(1)
}
