package ratelimit

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/mock"
)

// stubSession satisfies server.ClientSession with a fixed ID.
type stubSession struct {
	id string
}

func (s *stubSession) SessionID() string { return s.id }

func (*stubSession) NotificationChannel() chan<- mcp.JSONRPCNotification { return nil }

func (*stubSession) Initialize() {}

func (*stubSession) Initialized() bool { return true }

// toolHandlerMock records the calls the middleware lets through
type toolHandlerMock struct {
	mock.Mock
}

func (m *toolHandlerMock) Handle(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := m.Called(ctx, request)
	return args.Get(0).(*mcp.CallToolResult), args.Error(1)
}
