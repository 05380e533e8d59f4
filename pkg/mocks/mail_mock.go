package mocks

import (
	"context"

	"github.com/piazza-crm/leadflow/pkg/mail"
	"github.com/stretchr/testify/mock"
)

// MockTransport is a mock implementation of mail.Transport.
type MockTransport struct {
	mock.Mock
}

func (m *MockTransport) IsConfigured() bool {
	args := m.Called()

	return args.Bool(0)
}

func (m *MockTransport) Send(ctx context.Context, msg mail.Message) (bool, error) {
	args := m.Called(ctx, msg)

	return args.Bool(0), args.Error(1)
}

func (m *MockTransport) TestConnection(ctx context.Context) error {
	args := m.Called(ctx)

	return args.Error(0)
}
