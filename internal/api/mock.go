package api

import (
	"context"

	"github.com/stretchr/testify/mock"

	"chatterbox/internal/chat"
	"chatterbox/internal/types"
)

type MockChatService struct {
	mock.Mock
}

func (m *MockChatService) Register(ctx context.Context, username, password string) error {
	args := m.Called(ctx, username, password)
	return args.Error(0)
}

func (m *MockChatService) Authenticate(ctx context.Context, username, password string) (types.User, error) {
	args := m.Called(ctx, username, password)
	return args.Get(0).(types.User), args.Error(1)
}

func (m *MockChatService) CheckName(ctx context.Context, username string) error {
	args := m.Called(ctx, username)
	return args.Error(0)
}

func (m *MockChatService) Profile(ctx context.Context, username string) (types.User, types.Profile, error) {
	args := m.Called(ctx, username)
	return args.Get(0).(types.User), args.Get(1).(types.Profile), args.Error(2)
}

func (m *MockChatService) UpdateProfile(ctx context.Context, username string, profile types.Profile) error {
	args := m.Called(ctx, username, profile)
	return args.Error(0)
}

func (m *MockChatService) SetAvatar(ctx context.Context, username, url string) error {
	args := m.Called(ctx, username, url)
	return args.Error(0)
}

func (m *MockChatService) SearchUsers(ctx context.Context, query string) ([]types.User, error) {
	args := m.Called(ctx, query)
	return args.Get(0).([]types.User), args.Error(1)
}

func (m *MockChatService) Follow(ctx context.Context, username, friend string) error {
	args := m.Called(ctx, username, friend)
	return args.Error(0)
}

func (m *MockChatService) Unfollow(ctx context.Context, username, friend string) error {
	args := m.Called(ctx, username, friend)
	return args.Error(0)
}

func (m *MockChatService) Friends(ctx context.Context, username string) ([]types.Friend, error) {
	args := m.Called(ctx, username)
	return args.Get(0).([]types.Friend), args.Error(1)
}

func (m *MockChatService) CreateRoom(ctx context.Context, username, roomName, roomPassword string) (string, error) {
	args := m.Called(ctx, username, roomName, roomPassword)
	return args.String(0), args.Error(1)
}

func (m *MockChatService) JoinRoom(ctx context.Context, username, roomName string, roomPassword *string) (chat.JoinResult, error) {
	args := m.Called(ctx, username, roomName, roomPassword)
	return args.Get(0).(chat.JoinResult), args.Error(1)
}

func (m *MockChatService) ReadHistory(ctx context.Context, username, roomName string) ([]types.Message, error) {
	args := m.Called(ctx, username, roomName)
	return args.Get(0).([]types.Message), args.Error(1)
}

func (m *MockChatService) PostMessage(ctx context.Context, username, roomName, body string) error {
	args := m.Called(ctx, username, roomName, body)
	return args.Error(0)
}
