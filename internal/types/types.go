package types

import (
	"time"
)

type User struct {
	Id        int       `json:"id"`
	Username  string    `json:"username"`
	Password  string    `json:"-"`
	AvatarUrl string    `json:"avatar,omitempty"`
	Online    bool      `json:"online"`
	CreatedAt time.Time `json:"created_at,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// Profile holds the free-form account fields. The chat core never
// interprets them.
type Profile struct {
	Gender   string `json:"gender"`
	Birthday string `json:"birthday"`
	Email    string `json:"email"`
	Company  string `json:"company"`
}

type Room struct {
	Id        string    `json:"room_id"`
	Name      string    `json:"room_name"`
	Members   []User    `json:"members,omitempty"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// Message is a single chat-history entry, denormalized with the
// author's display name and current avatar at read time.
type Message struct {
	Name      string    `json:"name"`
	Body      string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	AvatarUrl string    `json:"avatar,omitempty"`
}

// Friend is one directed follow edge together with the target's live
// presence.
type Friend struct {
	Username string `json:"username"`
	Online   bool   `json:"online"`
}
