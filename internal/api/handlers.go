package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"chatterbox/internal/types"
)

type SignupRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type CheckNameRequest struct {
	Username string `json:"username"`
}

type SettingRequest struct {
	Gender   string `json:"gender"`
	Birthday string `json:"birthday"`
	Email    string `json:"email"`
	Company  string `json:"company"`
}

type FriendRequest struct {
	Friend string `json:"friend"`
}

type SearchRequest struct {
	User string `json:"user"`
}

type CreateRoomRequest struct {
	RoomName     string `json:"roomName"`
	RoomPassword string `json:"roomPassword"`
}

type JoinRoomRequest struct {
	RoomName string `json:"roomName"`
	// nil means the caller is probing whether a password is needed
	RoomPassword *string `json:"roomPassword"`
}

type MessagesRequest struct {
	RoomName string `json:"roomName"`
}

type SendRequest struct {
	RoomName string `json:"roomName"`
	Message  string `json:"message"`
}

func (s *ChatApp) writeJson(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if v == nil {
		return
	}

	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Printf("json encode: %v", err)
	}
}

// writeSuccess writes {"status":"success"} merged with data.
func (s *ChatApp) writeSuccess(w http.ResponseWriter, data map[string]any) {
	body := map[string]any{"status": "success"}
	for k, v := range data {
		body[k] = v
	}

	s.writeJson(w, http.StatusOK, body)
}

func (s *ChatApp) writeServiceError(w http.ResponseWriter, err error) {
	errResp := fromServiceError(err)
	if errResp.StatusCode >= http.StatusInternalServerError {
		s.log.Printf("service error: %v", err)
	}
	s.writeJson(w, errResp.StatusCode, errResp)
}

// decodeJson rejects malformed bodies before any store access.
func (s *ChatApp) decodeJson(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		errResp := NewTypeError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return false
	}

	return true
}

func (s *ChatApp) requireUsername(w http.ResponseWriter, r *http.Request) (string, bool) {
	username, ok := Username(r.Context())
	if !ok {
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return "", false
	}

	return username, true
}

func (s *ChatApp) healthCheck(w http.ResponseWriter, _ *http.Request) {
	if err := s.db.Ping(); err != nil {
		s.log.Printf("health check: %v", err)
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func (s *ChatApp) signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if !s.decodeJson(w, r, &req) {
		return
	}

	if err := s.svc.Register(r.Context(), req.Username, req.Password); err != nil {
		s.writeServiceError(w, err)
		return
	}

	s.writeSuccess(w, nil)
}

func (s *ChatApp) login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !s.decodeJson(w, r, &req) {
		return
	}

	user, err := s.svc.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	token, err := s.createJwtForSession(user.Username, defaultJwtExpiration)
	if err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	http.SetCookie(w, createJwtCookie(token, defaultJwtExpiration))
	s.writeSuccess(w, map[string]any{"username": user.Username})
}

func (s *ChatApp) logout(w http.ResponseWriter, _ *http.Request) {
	// overwrite the cookie with an already-expired token
	cookie := createJwtCookie("", 0)
	cookie.MaxAge = -1
	http.SetCookie(w, cookie)
	s.writeSuccess(w, nil)
}

// sessionLogin reports the username bound to a still-valid session
// cookie, so a client can restore state without re-authenticating.
func (s *ChatApp) sessionLogin(w http.ResponseWriter, r *http.Request) {
	username, ok := s.requireUsername(w, r)
	if !ok {
		return
	}

	s.writeSuccess(w, map[string]any{"username": username})
}

func (s *ChatApp) checkName(w http.ResponseWriter, r *http.Request) {
	var req CheckNameRequest
	if !s.decodeJson(w, r, &req) {
		return
	}

	if err := s.svc.CheckName(r.Context(), req.Username); err != nil {
		s.writeServiceError(w, err)
		return
	}

	s.writeSuccess(w, nil)
}

func (s *ChatApp) getUserInfo(w http.ResponseWriter, r *http.Request) {
	username, ok := s.requireUsername(w, r)
	if !ok {
		return
	}

	// viewing another user's public profile is allowed
	if name := r.URL.Query().Get("name"); name != "" {
		username = name
	}

	user, profile, err := s.svc.Profile(r.Context(), username)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	s.writeSuccess(w, map[string]any{
		"name":     user.Username,
		"avatar":   user.AvatarUrl,
		"gender":   profile.Gender,
		"birthday": profile.Birthday,
		"email":    profile.Email,
		"company":  profile.Company,
	})
}

func (s *ChatApp) setting(w http.ResponseWriter, r *http.Request) {
	username, ok := s.requireUsername(w, r)
	if !ok {
		return
	}

	var req SettingRequest
	if !s.decodeJson(w, r, &req) {
		return
	}

	err := s.svc.UpdateProfile(r.Context(), username, profileFromRequest(req))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	s.writeSuccess(w, nil)
}

func profileFromRequest(req SettingRequest) types.Profile {
	return types.Profile{
		Gender:   req.Gender,
		Birthday: req.Birthday,
		Email:    req.Email,
		Company:  req.Company,
	}
}

const maxAvatarSize = 5 << 20

func (s *ChatApp) uploadAvatar(w http.ResponseWriter, r *http.Request) {
	username, ok := s.requireUsername(w, r)
	if !ok {
		return
	}

	if s.avatars == nil {
		errResp := NewApiError(http.StatusNotImplemented, "AvatarStoreDisabled")
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if err := r.ParseMultipartForm(maxAvatarSize); err != nil {
		errResp := NewTypeError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	file, header, err := r.FormFile("avatar")
	if err != nil {
		errResp := NewTypeError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		errResp := NewTypeError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	url, err := s.avatars.Upload(r.Context(), file, header.Size, contentType)
	if err != nil {
		s.log.Printf("avatar upload: %v", err)
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if err := s.svc.SetAvatar(r.Context(), username, url); err != nil {
		s.writeServiceError(w, err)
		return
	}

	s.writeSuccess(w, map[string]any{"avatar": url})
}

func (s *ChatApp) searchFriends(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireUsername(w, r); !ok {
		return
	}

	var req SearchRequest
	if !s.decodeJson(w, r, &req) {
		return
	}

	users, err := s.svc.SearchUsers(r.Context(), req.User)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	s.writeSuccess(w, map[string]any{"body": users})
}

func (s *ChatApp) follow(w http.ResponseWriter, r *http.Request) {
	username, ok := s.requireUsername(w, r)
	if !ok {
		return
	}

	var req FriendRequest
	if !s.decodeJson(w, r, &req) {
		return
	}

	if err := s.svc.Follow(r.Context(), username, req.Friend); err != nil {
		s.writeServiceError(w, err)
		return
	}

	s.friendList(w, r, username)
}

func (s *ChatApp) unfollow(w http.ResponseWriter, r *http.Request) {
	username, ok := s.requireUsername(w, r)
	if !ok {
		return
	}

	var req FriendRequest
	if !s.decodeJson(w, r, &req) {
		return
	}

	if err := s.svc.Unfollow(r.Context(), username, req.Friend); err != nil {
		s.writeServiceError(w, err)
		return
	}

	s.friendList(w, r, username)
}

func (s *ChatApp) friends(w http.ResponseWriter, r *http.Request) {
	username, ok := s.requireUsername(w, r)
	if !ok {
		return
	}

	s.friendList(w, r, username)
}

func (s *ChatApp) friendList(w http.ResponseWriter, r *http.Request, username string) {
	friends, err := s.svc.Friends(r.Context(), username)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	s.writeSuccess(w, map[string]any{"body": friends})
}

func (s *ChatApp) createRoom(w http.ResponseWriter, r *http.Request) {
	username, ok := s.requireUsername(w, r)
	if !ok {
		return
	}

	var req CreateRoomRequest
	if !s.decodeJson(w, r, &req) {
		return
	}

	roomId, err := s.svc.CreateRoom(r.Context(), username, req.RoomName, req.RoomPassword)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	s.writeSuccess(w, map[string]any{"roomId": roomId})
}

func (s *ChatApp) joinRoom(w http.ResponseWriter, r *http.Request) {
	username, ok := s.requireUsername(w, r)
	if !ok {
		return
	}

	var req JoinRoomRequest
	if !s.decodeJson(w, r, &req) {
		return
	}

	result, err := s.svc.JoinRoom(r.Context(), username, req.RoomName, req.RoomPassword)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	if result.PasswordRequired {
		s.writeSuccess(w, map[string]any{"passwordRequired": true})
		return
	}

	s.writeSuccess(w, map[string]any{"roomId": result.RoomId})
}

func (s *ChatApp) messages(w http.ResponseWriter, r *http.Request) {
	username, ok := s.requireUsername(w, r)
	if !ok {
		return
	}

	var req MessagesRequest
	if !s.decodeJson(w, r, &req) {
		return
	}

	history, err := s.svc.ReadHistory(r.Context(), username, req.RoomName)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	s.writeSuccess(w, map[string]any{"messages": history})
}

func (s *ChatApp) send(w http.ResponseWriter, r *http.Request) {
	username, ok := s.requireUsername(w, r)
	if !ok {
		return
	}

	var req SendRequest
	if !s.decodeJson(w, r, &req) {
		return
	}

	if err := s.svc.PostMessage(r.Context(), username, req.RoomName, req.Message); err != nil {
		s.writeServiceError(w, err)
		return
	}

	s.writeSuccess(w, nil)
}
