package chat

import (
	"context"
	"database/sql"
	"errors"

	"chatterbox/internal/database"
	"chatterbox/internal/types"
)

// Register creates an account. The unique index on users.username is
// the duplicate authority, same as room names.
func (s *RoomService) Register(ctx context.Context, username, password string) error {
	if username == "" || password == "" {
		return newError(KindEmptyValue)
	}

	pwdHash, err := hashPassword(password)
	if err != nil {
		return storeErr(err)
	}

	_, err = s.db.CreateUser(ctx, database.CreateUserParams{
		Username:     username,
		PasswordHash: pwdHash,
	})
	if err != nil {
		if database.IsUniqueViolation(err) {
			return newError(KindDuplicateUser)
		}
		return storeErr(err)
	}

	s.log.Printf("registered user %q", username)
	return nil
}

// Authenticate verifies a username/password pair. Unknown users and
// wrong passwords are indistinguishable to the caller.
func (s *RoomService) Authenticate(ctx context.Context, username, password string) (types.User, error) {
	user, err := s.db.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.User{}, newError(KindInvalidCredentials)
		}
		return types.User{}, storeErr(err)
	}

	if !verifyPassword(user.PasswordHash, password) {
		return types.User{}, newError(KindInvalidCredentials)
	}

	return userToType(user), nil
}

// CheckName reports whether a username is still available.
func (s *RoomService) CheckName(ctx context.Context, username string) error {
	if username == "" {
		return newError(KindEmptyValue)
	}

	_, err := s.db.GetUserByUsername(ctx, username)
	if err == nil {
		return newError(KindDuplicateUser)
	}
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}

	return storeErr(err)
}

func (s *RoomService) Profile(ctx context.Context, username string) (types.User, types.Profile, error) {
	user, err := s.resolveUser(ctx, username)
	if err != nil {
		return types.User{}, types.Profile{}, err
	}

	profile := types.Profile{
		Gender:   user.Gender.String,
		Birthday: user.Birthday.String,
		Email:    user.Email.String,
		Company:  user.Company.String,
	}

	return userToType(user), profile, nil
}

func (s *RoomService) UpdateProfile(ctx context.Context, username string, profile types.Profile) error {
	user, err := s.resolveUser(ctx, username)
	if err != nil {
		return err
	}

	err = s.db.UpdateProfile(ctx, database.UpdateProfileParams{
		UserId:   user.Id,
		Gender:   profile.Gender,
		Birthday: profile.Birthday,
		Email:    profile.Email,
		Company:  profile.Company,
	})
	if err != nil {
		return storeErr(err)
	}

	return nil
}

func (s *RoomService) SetAvatar(ctx context.Context, username, url string) error {
	if url == "" {
		return newError(KindEmptyValue)
	}

	user, err := s.resolveUser(ctx, username)
	if err != nil {
		return err
	}

	if err := s.db.SetAvatarUrl(ctx, user.Id, url); err != nil {
		return storeErr(err)
	}

	return nil
}

// SearchUsers matches usernames by substring, each result carrying its
// live presence.
func (s *RoomService) SearchUsers(ctx context.Context, query string) ([]types.User, error) {
	users, err := s.db.SearchUsers(ctx, query)
	if err != nil {
		return nil, storeErr(err)
	}

	statuses, err := s.statuses(ctx, users)
	if err != nil {
		return nil, err
	}

	results := make([]types.User, len(users))
	for i, u := range users {
		results[i] = userToType(u)
		results[i].Online = statuses[u.Username]
	}

	return results, nil
}

// Follow records a directed follow edge. Only the follower's list is
// mutated; followership is not symmetric.
func (s *RoomService) Follow(ctx context.Context, username, friend string) error {
	user, err := s.resolveUser(ctx, username)
	if err != nil {
		return err
	}

	friendUser, err := s.resolveUser(ctx, friend)
	if err != nil {
		return err
	}

	if err := s.db.AddFriend(ctx, user.Id, friendUser.Id); err != nil {
		return storeErr(err)
	}

	return nil
}

func (s *RoomService) Unfollow(ctx context.Context, username, friend string) error {
	user, err := s.resolveUser(ctx, username)
	if err != nil {
		return err
	}

	friendUser, err := s.resolveUser(ctx, friend)
	if err != nil {
		return err
	}

	if err := s.db.RemoveFriend(ctx, user.Id, friendUser.Id); err != nil {
		return storeErr(err)
	}

	return nil
}

// Friends lists the requester's follow list with live presence.
func (s *RoomService) Friends(ctx context.Context, username string) ([]types.Friend, error) {
	user, err := s.resolveUser(ctx, username)
	if err != nil {
		return nil, err
	}

	friends, err := s.db.ListFriends(ctx, user.Id)
	if err != nil {
		return nil, storeErr(err)
	}

	statuses, err := s.statuses(ctx, friends)
	if err != nil {
		return nil, err
	}

	results := make([]types.Friend, len(friends))
	for i, f := range friends {
		results[i] = types.Friend{
			Username: f.Username,
			Online:   statuses[f.Username],
		}
	}

	return results, nil
}

func (s *RoomService) statuses(ctx context.Context, users []database.User) (map[string]bool, error) {
	if s.presence == nil || len(users) == 0 {
		return map[string]bool{}, nil
	}

	names := make([]string, len(users))
	for i, u := range users {
		names[i] = u.Username
	}

	statuses, err := s.presence.Statuses(ctx, names)
	if err != nil {
		// a failed presence read degrades to offline
		s.log.Printf("presence statuses: %v", err)
		return map[string]bool{}, nil
	}

	return statuses, nil
}

func userToType(u database.User) types.User {
	return types.User{
		Id:        u.Id,
		Username:  u.Username,
		AvatarUrl: u.AvatarUrl.String,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
