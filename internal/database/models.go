package database

import (
	"database/sql"
	"time"
)

type User struct {
	Id           int            `db:"id"`
	Username     string         `db:"username"`
	PasswordHash string         `db:"password_hash"`
	AvatarUrl    sql.NullString `db:"avatar_url"`
	Gender       sql.NullString `db:"gender"`
	Birthday     sql.NullString `db:"birthday"`
	Email        sql.NullString `db:"email"`
	Company      sql.NullString `db:"company"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
}

type Room struct {
	Id           int       `db:"id"`
	ExternalId   string    `db:"external_id"`
	Name         string    `db:"name"`
	PasswordHash string    `db:"password_hash"`
	CreatedAt    time.Time `db:"created_at"`
}

type Message struct {
	Id        int64     `db:"id"`
	RoomId    int       `db:"room_id"`
	UserId    int       `db:"user_id"`
	Body      string    `db:"body"`
	CreatedAt time.Time `db:"created_at"`
}

// HistoryRow is a message joined with its author at read time, so the
// name and avatar always reflect the author's current account.
type HistoryRow struct {
	Username  string         `db:"username"`
	Body      string         `db:"body"`
	AvatarUrl sql.NullString `db:"avatar_url"`
	CreatedAt time.Time      `db:"created_at"`
}

type CreateUserParams struct {
	Username     string
	PasswordHash string
}

type CreateRoomParams struct {
	Name         string
	ExternalId   string
	PasswordHash string
	CreatorId    int
}

type UpdateProfileParams struct {
	UserId   int
	Gender   string
	Birthday string
	Email    string
	Company  string
}
