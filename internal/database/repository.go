package database

import "context"

type ChatRepository interface {
	Ping() error
	CreateUser(ctx context.Context, params CreateUserParams) (User, error)
	GetUserByUsername(ctx context.Context, username string) (User, error)
	SearchUsers(ctx context.Context, query string) ([]User, error)
	UpdateProfile(ctx context.Context, params UpdateProfileParams) error
	SetAvatarUrl(ctx context.Context, userId int, url string) error
	CreateRoom(ctx context.Context, params CreateRoomParams) (Room, error)
	GetRoomByName(ctx context.Context, name string) (Room, error)
	AddMember(ctx context.Context, roomId, userId int) error
	IsMember(ctx context.Context, roomId, userId int) (bool, error)
	AppendMessage(ctx context.Context, msg Message) (Message, error)
	GetHistory(ctx context.Context, roomId int) ([]HistoryRow, error)
	AddFriend(ctx context.Context, userId, friendId int) error
	RemoveFriend(ctx context.Context, userId, friendId int) error
	ListFriends(ctx context.Context, userId int) ([]User, error)
}
