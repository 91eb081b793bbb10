// Package mocks provides testify mocks for the host collaborators used by the
// services.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/paystream/ledger/internal/models"
)

// MockTokenClient is a mock implementation of host.TokenClient.
type MockTokenClient struct {
	mock.Mock
}

// NewMockTokenClient creates a new MockTokenClient that fails the test if
// expectations are not met.
func NewMockTokenClient(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockTokenClient {
	m := &MockTokenClient{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockTokenClient) Transfer(ctx context.Context, token, from, to models.Address, amount models.Amount) error {
	args := m.Called(ctx, token, from, to, amount)
	return args.Error(0)
}
