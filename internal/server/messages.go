package server

import (
	"net/http"
	"time"

	"chatterbox/internal/types"
)

type BaseMessage struct {
	Id        int       `json:"id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// ClientMessage is an inbound websocket frame. Exactly one of the
// operation fields is set.
type ClientMessage struct {
	BaseMessage
	Subscribe *Subscribe `json:"subscribe,omitempty"`
	Leave     *Leave     `json:"leave,omitempty"`
	client    *Client    `json:"-"`
}

type Subscribe struct {
	RoomName string `json:"room_name"`
}

type Leave struct {
	RoomName string `json:"room_name"`
}

// ServerMessage is an outbound frame: either a response to a client
// frame or a pushed room event.
type ServerMessage struct {
	BaseMessage
	Response *Response     `json:"response,omitempty"`
	Message  *MessageEvent `json:"message,omitempty"`
}

type Response struct {
	ResponseCode int    `json:"response_code"`
	Error        string `json:"error,omitempty"`
	Data         any    `json:"data,omitempty"`
}

// MessageEvent carries a newly posted room message to subscribers.
type MessageEvent struct {
	RoomName  string    `json:"room_name"`
	Name      string    `json:"name"`
	Body      string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	AvatarUrl string    `json:"avatar,omitempty"`
}

func newMessageEvent(roomName string, msg types.Message) *ServerMessage {
	return &ServerMessage{
		BaseMessage: BaseMessage{Timestamp: Now()},
		Message: &MessageEvent{
			RoomName:  roomName,
			Name:      msg.Name,
			Body:      msg.Body,
			Timestamp: msg.Timestamp,
			AvatarUrl: msg.AvatarUrl,
		},
	}
}

func NoErrOK(id int, data any) *ServerMessage {
	return &ServerMessage{
		BaseMessage: BaseMessage{Id: id, Timestamp: Now()},
		Response: &Response{
			ResponseCode: http.StatusOK,
			Data:         data,
		},
	}
}

func ErrRoomNotFound(id int) *ServerMessage {
	return &ServerMessage{
		BaseMessage: BaseMessage{Id: id, Timestamp: Now()},
		Response: &Response{
			ResponseCode: http.StatusNotFound,
			Error:        "room not found",
		},
	}
}

func ErrAccessDenied(id int) *ServerMessage {
	return &ServerMessage{
		BaseMessage: BaseMessage{Id: id, Timestamp: Now()},
		Response: &Response{
			ResponseCode: http.StatusForbidden,
			Error:        "not a member of this room",
		},
	}
}

func ErrInternalError(id int) *ServerMessage {
	return &ServerMessage{
		BaseMessage: BaseMessage{Id: id, Timestamp: Now()},
		Response: &Response{
			ResponseCode: http.StatusInternalServerError,
			Error:        "internal server error",
		},
	}
}

func ErrInvalidMessage(id int) *ServerMessage {
	msg := &ServerMessage{
		BaseMessage: BaseMessage{Timestamp: Now()},
		Response: &Response{
			ResponseCode: http.StatusBadRequest,
			Error:        "invalid message format",
		},
	}

	if id > 0 {
		msg.Id = id
	}
	return msg
}

func Now() time.Time {
	return time.Now().UTC().Round(time.Millisecond)
}
