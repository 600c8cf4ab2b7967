package chat

import (
	"errors"
	"fmt"
)

// Kind identifies a failure in the wire vocabulary clients branch on.
type Kind string

const (
	KindUnauthenticated       Kind = "UserNotLogin"
	KindInvalidToken          Kind = "InvalidJWT"
	KindInvalidCredentials    Kind = "InvalidUsernameOrPassword"
	KindUserNotFound          Kind = "UserNotFound"
	KindDuplicateUser         Kind = "DuplicateUserError"
	KindRoomNameNotFound      Kind = "RoomNameNotFound"
	KindDuplicateRoomName     Kind = "DuplicateRoomName"
	KindRoomAccessDenied      Kind = "RoomAccessDenied"
	KindIncorrectRoomPassword Kind = "IncorrectRoomPassword"
	KindEmptyValue            Kind = "EmptyValueError"
	KindTypeError             Kind = "TypeError"
	KindStoreUnavailable      Kind = "DatabaseFailedError"
)

type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s", e.Kind, e.Err.Error())
	}

	return string(e.Kind)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind Kind) *Error {
	return &Error{Kind: kind}
}

func wrapError(kind Kind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

// KindOf extracts the failure kind from err, defaulting to
// KindStoreUnavailable for anything untyped.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}

	return KindStoreUnavailable
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}
