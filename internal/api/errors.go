package api

import (
	"fmt"
	"net/http"

	"chatterbox/internal/chat"
)

// ApiError is the failure wire shape: {"status":"failed","reason":...}.
// Reasons are the client-visible kinds from the chat error taxonomy.
type ApiError struct {
	StatusCode int    `json:"-"`
	Status     string `json:"status"`
	Reason     string `json:"reason"`
	Err        error  `json:"-"`
}

func (e *ApiError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s", e.Reason, e.Err.Error())
	}

	return e.Reason
}

func (e *ApiError) Unwrap() error {
	return e.Err
}

func NewApiError(statusCode int, reason string) *ApiError {
	return &ApiError{
		StatusCode: statusCode,
		Status:     "failed",
		Reason:     reason,
	}
}

func NewTypeError() *ApiError {
	return NewApiError(http.StatusBadRequest, string(chat.KindTypeError))
}

func NewEmptyValueError() *ApiError {
	return NewApiError(http.StatusBadRequest, string(chat.KindEmptyValue))
}

func NewUnauthorizedError() *ApiError {
	return NewApiError(http.StatusUnauthorized, string(chat.KindUnauthenticated))
}

func NewInvalidTokenError() *ApiError {
	return NewApiError(http.StatusUnauthorized, string(chat.KindInvalidToken))
}

func NewInternalServerError(err error) *ApiError {
	e := NewApiError(http.StatusInternalServerError, string(chat.KindStoreUnavailable))
	e.Err = err
	return e
}

// fromServiceError maps a chat service failure onto an HTTP status
// while keeping the taxonomy kind as the reason.
func fromServiceError(err error) *ApiError {
	kind := chat.KindOf(err)

	var statusCode int
	switch kind {
	case chat.KindUnauthenticated, chat.KindInvalidToken, chat.KindInvalidCredentials:
		statusCode = http.StatusUnauthorized
	case chat.KindRoomAccessDenied, chat.KindIncorrectRoomPassword:
		statusCode = http.StatusForbidden
	case chat.KindUserNotFound, chat.KindRoomNameNotFound:
		statusCode = http.StatusNotFound
	case chat.KindDuplicateUser, chat.KindDuplicateRoomName:
		statusCode = http.StatusConflict
	case chat.KindEmptyValue, chat.KindTypeError:
		statusCode = http.StatusBadRequest
	default:
		statusCode = http.StatusInternalServerError
	}

	e := NewApiError(statusCode, string(kind))
	e.Err = err
	return e
}
