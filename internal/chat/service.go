package chat

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"time"

	"github.com/teris-io/shortid"
	"golang.org/x/crypto/bcrypt"

	"chatterbox/internal/database"
	"chatterbox/internal/types"
)

// Broker receives every successfully persisted message for real-time
// fan-out to subscribed connections.
type Broker interface {
	Publish(roomName string, msg types.Message)
}

// PresenceTracker reports which users currently hold a live connection.
type PresenceTracker interface {
	Statuses(ctx context.Context, usernames []string) (map[string]bool, error)
}

// EventPublisher mirrors events.Publisher so the service can emit one
// event per persisted message without a hard dependency on AMQP.
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, event any) error
}

// MessageEvent is the envelope published to the event exchange after a
// message is persisted.
type MessageEvent struct {
	Room      string    `json:"room"`
	Name      string    `json:"name"`
	Body      string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

type JoinResult struct {
	RoomId           string `json:"roomId,omitempty"`
	PasswordRequired bool   `json:"passwordRequired,omitempty"`
}

// RoomService is the access-control layer: every room read, post and
// join decision runs through it, and it alone orders a room's
// append-and-publish step.
type RoomService struct {
	log      *log.Logger
	db       database.ChatRepository
	broker   Broker
	presence PresenceTracker
	events   EventPublisher
	locks    *roomLocks
	sid      *shortid.Shortid
}

func NewRoomService(logger *log.Logger, db database.ChatRepository, broker Broker, presence PresenceTracker, events EventPublisher) (*RoomService, error) {
	sid, err := shortid.New(1, shortid.DefaultABC, uint64(time.Now().UnixNano()))
	if err != nil {
		return nil, err
	}

	return &RoomService{
		log:      logger,
		db:       db,
		broker:   broker,
		presence: presence,
		events:   events,
		locks:    newRoomLocks(),
		sid:      sid,
	}, nil
}

// SetBroker binds the delivery fan-out after construction. The broker
// authorizes subscriptions against this service, so the two are wired
// in two steps.
func (s *RoomService) SetBroker(b Broker) {
	s.broker = b
}

// now returns the server-assigned message timestamp, second resolution.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Second)
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(hash), err
}

func verifyPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

func storeErr(err error) *Error {
	return wrapError(KindStoreUnavailable, err)
}

func (s *RoomService) resolveUser(ctx context.Context, username string) (database.User, error) {
	user, err := s.db.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return database.User{}, newError(KindUserNotFound)
		}
		return database.User{}, storeErr(err)
	}

	return user, nil
}

func (s *RoomService) resolveRoom(ctx context.Context, roomName string) (database.Room, error) {
	room, err := s.db.GetRoomByName(ctx, roomName)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return database.Room{}, newError(KindRoomNameNotFound)
		}
		return database.Room{}, storeErr(err)
	}

	return room, nil
}

// membership resolves the requester and room and answers the single
// membership question every room operation shares.
func (s *RoomService) membership(ctx context.Context, username, roomName string) (database.User, database.Room, bool, error) {
	user, err := s.resolveUser(ctx, username)
	if err != nil {
		return database.User{}, database.Room{}, false, err
	}

	room, err := s.resolveRoom(ctx, roomName)
	if err != nil {
		return database.User{}, database.Room{}, false, err
	}

	member, err := s.db.IsMember(ctx, room.Id, user.Id)
	if err != nil {
		return database.User{}, database.Room{}, false, storeErr(err)
	}

	return user, room, member, nil
}

// IsMember is the membership predicate shared with the broker, which
// re-validates it on every subscribe.
func (s *RoomService) IsMember(ctx context.Context, username, roomName string) (bool, error) {
	_, _, member, err := s.membership(ctx, username, roomName)
	return member, err
}

// CreateRoom creates a room with the requester as its sole member and
// returns the generated room id. The store's unique index decides
// duplicate names; there is no pre-check to race against.
func (s *RoomService) CreateRoom(ctx context.Context, username, roomName, roomPassword string) (string, error) {
	if roomName == "" || roomPassword == "" {
		return "", newError(KindEmptyValue)
	}

	user, err := s.resolveUser(ctx, username)
	if err != nil {
		return "", err
	}

	externalId, err := s.sid.Generate()
	if err != nil {
		return "", storeErr(err)
	}

	pwdHash, err := hashPassword(roomPassword)
	if err != nil {
		return "", storeErr(err)
	}

	room, err := s.db.CreateRoom(ctx, database.CreateRoomParams{
		Name:         roomName,
		ExternalId:   externalId,
		PasswordHash: pwdHash,
		CreatorId:    user.Id,
	})
	if err != nil {
		if database.IsUniqueViolation(err) {
			return "", newError(KindDuplicateRoomName)
		}
		return "", storeErr(err)
	}

	s.log.Printf("user %q created room %q (%s)", username, roomName, room.ExternalId)
	return room.ExternalId, nil
}

// JoinRoom is the three-way access decision. A member is let through
// without a password check; a non-member without a password gets a
// password prompt and no state change; a supplied password is compared
// against the room's hash and a match adds the membership.
func (s *RoomService) JoinRoom(ctx context.Context, username, roomName string, roomPassword *string) (JoinResult, error) {
	user, room, member, err := s.membership(ctx, username, roomName)
	if err != nil {
		return JoinResult{}, err
	}

	if member {
		return JoinResult{RoomId: room.ExternalId}, nil
	}

	if roomPassword == nil {
		return JoinResult{PasswordRequired: true}, nil
	}

	if !verifyPassword(room.PasswordHash, *roomPassword) {
		return JoinResult{}, newError(KindIncorrectRoomPassword)
	}

	if err := s.db.AddMember(ctx, room.Id, user.Id); err != nil {
		return JoinResult{}, storeErr(err)
	}

	s.log.Printf("user %q joined room %q", username, roomName)
	return JoinResult{RoomId: room.ExternalId}, nil
}

// ReadHistory returns the room's full message log in append order,
// denormalized with each author's current display name and avatar.
func (s *RoomService) ReadHistory(ctx context.Context, username, roomName string) ([]types.Message, error) {
	_, room, member, err := s.membership(ctx, username, roomName)
	if err != nil {
		return nil, err
	}

	if !member {
		return nil, newError(KindRoomAccessDenied)
	}

	rows, err := s.db.GetHistory(ctx, room.Id)
	if err != nil {
		return nil, storeErr(err)
	}

	messages := make([]types.Message, len(rows))
	for i, row := range rows {
		messages[i] = types.Message{
			Name:      row.Username,
			Body:      row.Body,
			Timestamp: row.CreatedAt,
			AvatarUrl: row.AvatarUrl.String,
		}
	}

	return messages, nil
}

// PostMessage appends a message and hands it to the broker. The room
// lock is held across both so subscribers observe messages in exactly
// the persisted order.
func (s *RoomService) PostMessage(ctx context.Context, username, roomName, body string) error {
	if body == "" {
		return newError(KindEmptyValue)
	}

	user, room, member, err := s.membership(ctx, username, roomName)
	if err != nil {
		return err
	}

	if !member {
		return newError(KindRoomAccessDenied)
	}

	unlock := s.locks.lock(roomName)
	defer unlock()

	saved, err := s.db.AppendMessage(ctx, database.Message{
		RoomId:    room.Id,
		UserId:    user.Id,
		Body:      body,
		CreatedAt: now(),
	})
	if err != nil {
		return storeErr(err)
	}

	msg := types.Message{
		Name:      username,
		Body:      saved.Body,
		Timestamp: saved.CreatedAt,
		AvatarUrl: user.AvatarUrl.String,
	}

	if s.broker != nil {
		s.broker.Publish(roomName, msg)
	}

	if s.events != nil {
		if err := s.events.Publish(ctx, "chat.messages", MessageEvent{
			Room:      roomName,
			Name:      username,
			Body:      saved.Body,
			Timestamp: saved.CreatedAt,
		}); err != nil {
			s.log.Printf("publish message event: %v", err)
		}
	}

	return nil
}
