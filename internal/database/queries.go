package database

import (
	"context"
	"time"
)

func (db *PgChatRepository) CreateUser(ctx context.Context, params CreateUserParams) (User, error) {
	var u User
	err := db.conn.GetContext(ctx, &u,
		"INSERT INTO users (username, password_hash, created_at, updated_at) "+
			"VALUES ($1, $2, $3, $3) RETURNING *",
		params.Username,
		params.PasswordHash,
		time.Now().UTC(),
	)

	return u, err
}

func (db *PgChatRepository) GetUserByUsername(ctx context.Context, username string) (User, error) {
	var u User
	err := db.conn.GetContext(ctx, &u,
		"SELECT * FROM users WHERE username = $1 LIMIT 1",
		username,
	)

	return u, err
}

func (db *PgChatRepository) SearchUsers(ctx context.Context, query string) ([]User, error) {
	var users []User
	err := db.conn.SelectContext(ctx, &users,
		"SELECT * FROM users WHERE username LIKE '%' || $1 || '%' ORDER BY username",
		query,
	)

	return users, err
}

func (db *PgChatRepository) UpdateProfile(ctx context.Context, params UpdateProfileParams) error {
	_, err := db.conn.ExecContext(ctx,
		"UPDATE users SET gender = $2, birthday = $3, email = $4, company = $5, updated_at = $6 "+
			"WHERE id = $1",
		params.UserId,
		params.Gender,
		params.Birthday,
		params.Email,
		params.Company,
		time.Now().UTC(),
	)

	return err
}

func (db *PgChatRepository) SetAvatarUrl(ctx context.Context, userId int, url string) error {
	_, err := db.conn.ExecContext(ctx,
		"UPDATE users SET avatar_url = $2, updated_at = $3 WHERE id = $1",
		userId,
		url,
		time.Now().UTC(),
	)

	return err
}

// CreateRoom inserts the room and its creator's membership in one
// transaction, so a room is never observable without members. The
// unique index on rooms.name is the single duplicate-name authority.
func (db *PgChatRepository) CreateRoom(ctx context.Context, params CreateRoomParams) (Room, error) {
	tx, err := db.conn.BeginTxx(ctx, nil)
	if err != nil {
		return Room{}, err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	var room Room
	err = tx.GetContext(ctx, &room,
		"INSERT INTO rooms (external_id, name, password_hash, created_at) "+
			"VALUES ($1, $2, $3, $4) RETURNING *",
		params.ExternalId,
		params.Name,
		params.PasswordHash,
		time.Now().UTC(),
	)
	if err != nil {
		return Room{}, err
	}

	_, err = tx.ExecContext(ctx,
		"INSERT INTO room_members (room_id, user_id, created_at) VALUES ($1, $2, $3)",
		room.Id,
		params.CreatorId,
		time.Now().UTC(),
	)
	if err != nil {
		return Room{}, err
	}

	if err = tx.Commit(); err != nil {
		return Room{}, err
	}

	return room, nil
}

func (db *PgChatRepository) GetRoomByName(ctx context.Context, name string) (Room, error) {
	var room Room
	err := db.conn.GetContext(ctx, &room,
		"SELECT * FROM rooms WHERE name = $1 LIMIT 1",
		name,
	)

	return room, err
}

func (db *PgChatRepository) AddMember(ctx context.Context, roomId, userId int) error {
	_, err := db.conn.ExecContext(ctx,
		"INSERT INTO room_members (room_id, user_id, created_at) VALUES ($1, $2, $3) "+
			"ON CONFLICT (room_id, user_id) DO NOTHING",
		roomId,
		userId,
		time.Now().UTC(),
	)

	return err
}

func (db *PgChatRepository) IsMember(ctx context.Context, roomId, userId int) (bool, error) {
	var exists bool
	err := db.conn.GetContext(ctx, &exists,
		"SELECT EXISTS (SELECT 1 FROM room_members WHERE room_id = $1 AND user_id = $2)",
		roomId,
		userId,
	)

	return exists, err
}

func (db *PgChatRepository) AppendMessage(ctx context.Context, msg Message) (Message, error) {
	var saved Message
	err := db.conn.GetContext(ctx, &saved,
		"INSERT INTO messages (room_id, user_id, body, created_at) "+
			"VALUES ($1, $2, $3, $4) RETURNING *",
		msg.RoomId,
		msg.UserId,
		msg.Body,
		msg.CreatedAt,
	)

	return saved, err
}

func (db *PgChatRepository) GetHistory(ctx context.Context, roomId int) ([]HistoryRow, error) {
	rows := make([]HistoryRow, 0)
	err := db.conn.SelectContext(ctx, &rows,
		"SELECT u.username, u.avatar_url, m.body, m.created_at FROM messages m "+
			"JOIN users u ON m.user_id = u.id WHERE m.room_id = $1 ORDER BY m.id",
		roomId,
	)

	return rows, err
}

func (db *PgChatRepository) AddFriend(ctx context.Context, userId, friendId int) error {
	_, err := db.conn.ExecContext(ctx,
		"INSERT INTO friends (user_id, friend_id, created_at) VALUES ($1, $2, $3) "+
			"ON CONFLICT (user_id, friend_id) DO NOTHING",
		userId,
		friendId,
		time.Now().UTC(),
	)

	return err
}

func (db *PgChatRepository) RemoveFriend(ctx context.Context, userId, friendId int) error {
	_, err := db.conn.ExecContext(ctx,
		"DELETE FROM friends WHERE user_id = $1 AND friend_id = $2",
		userId,
		friendId,
	)

	return err
}

func (db *PgChatRepository) ListFriends(ctx context.Context, userId int) ([]User, error) {
	users := make([]User, 0)
	err := db.conn.SelectContext(ctx, &users,
		"SELECT u.* FROM friends f JOIN users u ON f.friend_id = u.id "+
			"WHERE f.user_id = $1 ORDER BY u.username",
		userId,
	)

	return users, err
}
