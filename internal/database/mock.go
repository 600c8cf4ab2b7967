package database

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type MockChatRepository struct {
	mock.Mock
}

func (m *MockChatRepository) Ping() error {
	args := m.Called()
	return args.Error(0)
}
func (m *MockChatRepository) CreateUser(ctx context.Context, params CreateUserParams) (User, error) {
	args := m.Called(ctx, params)
	return args.Get(0).(User), args.Error(1)
}
func (m *MockChatRepository) GetUserByUsername(ctx context.Context, username string) (User, error) {
	args := m.Called(ctx, username)
	return args.Get(0).(User), args.Error(1)
}
func (m *MockChatRepository) SearchUsers(ctx context.Context, query string) ([]User, error) {
	args := m.Called(ctx, query)
	return args.Get(0).([]User), args.Error(1)
}
func (m *MockChatRepository) UpdateProfile(ctx context.Context, params UpdateProfileParams) error {
	args := m.Called(ctx, params)
	return args.Error(0)
}
func (m *MockChatRepository) SetAvatarUrl(ctx context.Context, userId int, url string) error {
	args := m.Called(ctx, userId, url)
	return args.Error(0)
}
func (m *MockChatRepository) CreateRoom(ctx context.Context, params CreateRoomParams) (Room, error) {
	args := m.Called(ctx, params)
	return args.Get(0).(Room), args.Error(1)
}
func (m *MockChatRepository) GetRoomByName(ctx context.Context, name string) (Room, error) {
	args := m.Called(ctx, name)
	return args.Get(0).(Room), args.Error(1)
}
func (m *MockChatRepository) AddMember(ctx context.Context, roomId, userId int) error {
	args := m.Called(ctx, roomId, userId)
	return args.Error(0)
}
func (m *MockChatRepository) IsMember(ctx context.Context, roomId, userId int) (bool, error) {
	args := m.Called(ctx, roomId, userId)
	return args.Bool(0), args.Error(1)
}
func (m *MockChatRepository) AppendMessage(ctx context.Context, msg Message) (Message, error) {
	args := m.Called(ctx, msg)
	return args.Get(0).(Message), args.Error(1)
}
func (m *MockChatRepository) GetHistory(ctx context.Context, roomId int) ([]HistoryRow, error) {
	args := m.Called(ctx, roomId)
	return args.Get(0).([]HistoryRow), args.Error(1)
}
func (m *MockChatRepository) AddFriend(ctx context.Context, userId, friendId int) error {
	args := m.Called(ctx, userId, friendId)
	return args.Error(0)
}
func (m *MockChatRepository) RemoveFriend(ctx context.Context, userId, friendId int) error {
	args := m.Called(ctx, userId, friendId)
	return args.Error(0)
}
func (m *MockChatRepository) ListFriends(ctx context.Context, userId int) ([]User, error) {
	args := m.Called(ctx, userId)
	return args.Get(0).([]User), args.Error(1)
}
