package mocks

import (
	"context"

	"github.com/audionodes/native/pkg/messages"
	"github.com/stretchr/testify/mock"
)

// MockSink is a mock implementation of messages.Sink interface.
type MockSink struct {
	mock.Mock
}

func (m *MockSink) Deliver(ctx context.Context, msg messages.ReturnMessage, execThread bool) error {
	args := m.Called(ctx, msg, execThread)

	return args.Error(0)
}

// MockMessenger is a mock implementation of node.Messenger interface.
type MockMessenger struct {
	mock.Mock
}

func (m *MockMessenger) Send(msg messages.ReturnMessage, execThread bool) bool {
	args := m.Called(msg, execThread)

	return args.Bool(0)
}
