package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"chatterbox/internal/chat"
	"chatterbox/internal/config"
	"chatterbox/internal/database"
	"chatterbox/internal/testutil"
	"chatterbox/internal/types"
)

func newTestApp(t *testing.T, svc ChatService, db database.ChatRepository) (*ChatApp, *http.ServeMux) {
	t.Helper()

	cfg := &config.Config{
		ServerAddr:     "localhost:0",
		DatabaseDSN:    "test",
		SigningKey:     []byte("test-signing-key"),
		AllowedOrigins: []string{"*"},
	}

	if db == nil {
		db = &database.MockChatRepository{}
	}

	mux := http.NewServeMux()
	app := NewChatApp(mux, testutil.TestLogger(t), svc, db, nil, nil, nil, cfg)
	return app, mux
}

func doRequest(t *testing.T, mux *http.ServeMux, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	return rr
}

func authedRequest(t *testing.T, app *ChatApp, method, target, body string) *http.Request {
	t.Helper()

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	token, err := app.createJwtForSession("alice", time.Hour)
	require.NoError(t, err)
	req.AddCookie(createJwtCookie(token, time.Hour))
	return req
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	return body
}

func findCookie(t *testing.T, rr *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()

	for _, c := range rr.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestSignup(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		svc := &MockChatService{}
		defer svc.AssertExpectations(t)
		svc.On("Register", mock.Anything, "alice", "pw").Return(nil)

		_, mux := newTestApp(t, svc, nil)
		rr := doRequest(t, mux, httptest.NewRequest(http.MethodPost, "/api/signup", strings.NewReader(`{"username":"alice","password":"pw"}`)))

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "success", decodeBody(t, rr)["status"])
	})

	t.Run("duplicate username", func(t *testing.T) {
		svc := &MockChatService{}
		defer svc.AssertExpectations(t)
		svc.On("Register", mock.Anything, "alice", "pw").Return(&chat.Error{Kind: chat.KindDuplicateUser})

		_, mux := newTestApp(t, svc, nil)
		rr := doRequest(t, mux, httptest.NewRequest(http.MethodPost, "/api/signup", strings.NewReader(`{"username":"alice","password":"pw"}`)))

		assert.Equal(t, http.StatusConflict, rr.Code)
		body := decodeBody(t, rr)
		assert.Equal(t, "failed", body["status"])
		assert.Equal(t, string(chat.KindDuplicateUser), body["reason"])
	})

	t.Run("malformed body", func(t *testing.T) {
		svc := &MockChatService{}
		defer svc.AssertExpectations(t)

		_, mux := newTestApp(t, svc, nil)
		rr := doRequest(t, mux, httptest.NewRequest(http.MethodPost, "/api/signup", strings.NewReader(`{"username":`)))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, string(chat.KindTypeError), decodeBody(t, rr)["reason"])
	})
}

func TestLogin(t *testing.T) {
	t.Run("success sets session cookie", func(t *testing.T) {
		svc := &MockChatService{}
		defer svc.AssertExpectations(t)
		svc.On("Authenticate", mock.Anything, "alice", "pw").Return(types.User{Id: 1, Username: "alice"}, nil)

		_, mux := newTestApp(t, svc, nil)
		rr := doRequest(t, mux, httptest.NewRequest(http.MethodPost, "/api/login", strings.NewReader(`{"username":"alice","password":"pw"}`)))

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "alice", decodeBody(t, rr)["username"])

		cookie := findCookie(t, rr, "jwt")
		require.NotNil(t, cookie, "expected a session cookie")
		assert.NotEmpty(t, cookie.Value)
		assert.True(t, cookie.HttpOnly)
	})

	t.Run("invalid credentials", func(t *testing.T) {
		svc := &MockChatService{}
		defer svc.AssertExpectations(t)
		svc.On("Authenticate", mock.Anything, "alice", "nope").Return(types.User{}, &chat.Error{Kind: chat.KindInvalidCredentials})

		_, mux := newTestApp(t, svc, nil)
		rr := doRequest(t, mux, httptest.NewRequest(http.MethodPost, "/api/login", strings.NewReader(`{"username":"alice","password":"nope"}`)))

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Equal(t, string(chat.KindInvalidCredentials), decodeBody(t, rr)["reason"])
		assert.Nil(t, findCookie(t, rr, "jwt"))
	})
}

func TestLogout(t *testing.T) {
	app, mux := newTestApp(t, &MockChatService{}, nil)
	rr := doRequest(t, mux, authedRequest(t, app, http.MethodPost, "/api/logout", ""))

	assert.Equal(t, http.StatusOK, rr.Code)
	cookie := findCookie(t, rr, "jwt")
	require.NotNil(t, cookie)
	assert.Empty(t, cookie.Value)
	assert.Negative(t, cookie.MaxAge, "expected the cookie to be expired")
}

func TestSessionLogin(t *testing.T) {
	app, mux := newTestApp(t, &MockChatService{}, nil)
	rr := doRequest(t, mux, authedRequest(t, app, http.MethodPost, "/api/sessionLogin", ""))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "alice", decodeBody(t, rr)["username"])
}

func TestAuthRequired(t *testing.T) {
	t.Run("missing cookie", func(t *testing.T) {
		_, mux := newTestApp(t, &MockChatService{}, nil)
		rr := doRequest(t, mux, httptest.NewRequest(http.MethodPost, "/api/createRoom", strings.NewReader(`{}`)))

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Equal(t, string(chat.KindUnauthenticated), decodeBody(t, rr)["reason"])
	})

	t.Run("garbage token", func(t *testing.T) {
		_, mux := newTestApp(t, &MockChatService{}, nil)
		req := httptest.NewRequest(http.MethodPost, "/api/createRoom", strings.NewReader(`{}`))
		req.AddCookie(&http.Cookie{Name: "jwt", Value: "not-a-token"})
		rr := doRequest(t, mux, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Equal(t, string(chat.KindInvalidToken), decodeBody(t, rr)["reason"])
	})
}

func TestCheckName(t *testing.T) {
	svc := &MockChatService{}
	defer svc.AssertExpectations(t)
	svc.On("CheckName", mock.Anything, "taken").Return(&chat.Error{Kind: chat.KindDuplicateUser})

	_, mux := newTestApp(t, svc, nil)
	rr := doRequest(t, mux, httptest.NewRequest(http.MethodPost, "/api/checkname", strings.NewReader(`{"username":"taken"}`)))

	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestGetUserInfo(t *testing.T) {
	svc := &MockChatService{}
	defer svc.AssertExpectations(t)
	svc.On("Profile", mock.Anything, "alice").Return(
		types.User{Id: 1, Username: "alice", AvatarUrl: "https://x/a.png"},
		types.Profile{Gender: "female", Email: "alice@example.com"},
		nil,
	)

	app, mux := newTestApp(t, svc, nil)
	rr := doRequest(t, mux, authedRequest(t, app, http.MethodGet, "/api/getUserInfo", ""))

	assert.Equal(t, http.StatusOK, rr.Code)
	body := decodeBody(t, rr)
	assert.Equal(t, "alice", body["name"])
	assert.Equal(t, "https://x/a.png", body["avatar"])
	assert.Equal(t, "female", body["gender"])
	assert.Equal(t, "alice@example.com", body["email"])
}

func TestSetting(t *testing.T) {
	svc := &MockChatService{}
	defer svc.AssertExpectations(t)
	svc.On("UpdateProfile", mock.Anything, "alice", types.Profile{Gender: "female", Company: "acme"}).Return(nil)

	app, mux := newTestApp(t, svc, nil)
	rr := doRequest(t, mux, authedRequest(t, app, http.MethodPost, "/api/setting", `{"gender":"female","company":"acme"}`))

	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestCreateRoom(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		svc := &MockChatService{}
		defer svc.AssertExpectations(t)
		svc.On("CreateRoom", mock.Anything, "alice", "general", "s3cret").Return("r-abc", nil)

		app, mux := newTestApp(t, svc, nil)
		rr := doRequest(t, mux, authedRequest(t, app, http.MethodPost, "/api/createRoom", `{"roomName":"general","roomPassword":"s3cret"}`))

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "r-abc", decodeBody(t, rr)["roomId"])
	})

	t.Run("duplicate name", func(t *testing.T) {
		svc := &MockChatService{}
		defer svc.AssertExpectations(t)
		svc.On("CreateRoom", mock.Anything, "alice", "general", "s3cret").Return("", &chat.Error{Kind: chat.KindDuplicateRoomName})

		app, mux := newTestApp(t, svc, nil)
		rr := doRequest(t, mux, authedRequest(t, app, http.MethodPost, "/api/createRoom", `{"roomName":"general","roomPassword":"s3cret"}`))

		assert.Equal(t, http.StatusConflict, rr.Code)
		assert.Equal(t, string(chat.KindDuplicateRoomName), decodeBody(t, rr)["reason"])
	})
}

func TestJoinRoom(t *testing.T) {
	t.Run("member or correct password returns room id", func(t *testing.T) {
		svc := &MockChatService{}
		defer svc.AssertExpectations(t)
		svc.On("JoinRoom", mock.Anything, "alice", "general", mock.MatchedBy(func(p *string) bool {
			return p != nil && *p == "s3cret"
		})).Return(chat.JoinResult{RoomId: "r-abc"}, nil)

		app, mux := newTestApp(t, svc, nil)
		rr := doRequest(t, mux, authedRequest(t, app, http.MethodPost, "/api/joinRoom", `{"roomName":"general","roomPassword":"s3cret"}`))

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "r-abc", decodeBody(t, rr)["roomId"])
	})

	t.Run("probe without password", func(t *testing.T) {
		svc := &MockChatService{}
		defer svc.AssertExpectations(t)
		svc.On("JoinRoom", mock.Anything, "alice", "general", (*string)(nil)).Return(chat.JoinResult{PasswordRequired: true}, nil)

		app, mux := newTestApp(t, svc, nil)
		rr := doRequest(t, mux, authedRequest(t, app, http.MethodPost, "/api/joinRoom", `{"roomName":"general"}`))

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, true, decodeBody(t, rr)["passwordRequired"])
	})

	t.Run("wrong password", func(t *testing.T) {
		svc := &MockChatService{}
		defer svc.AssertExpectations(t)
		svc.On("JoinRoom", mock.Anything, "alice", "general", mock.Anything).Return(chat.JoinResult{}, &chat.Error{Kind: chat.KindIncorrectRoomPassword})

		app, mux := newTestApp(t, svc, nil)
		rr := doRequest(t, mux, authedRequest(t, app, http.MethodPost, "/api/joinRoom", `{"roomName":"general","roomPassword":"nope"}`))

		assert.Equal(t, http.StatusForbidden, rr.Code)
		assert.Equal(t, string(chat.KindIncorrectRoomPassword), decodeBody(t, rr)["reason"])
	})
}

func TestMessages(t *testing.T) {
	t.Run("member reads history", func(t *testing.T) {
		svc := &MockChatService{}
		defer svc.AssertExpectations(t)

		ts := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
		svc.On("ReadHistory", mock.Anything, "alice", "general").Return([]types.Message{
			{Name: "alice", Body: "hello", Timestamp: ts},
		}, nil)

		app, mux := newTestApp(t, svc, nil)
		rr := doRequest(t, mux, authedRequest(t, app, http.MethodPost, "/api/messages", `{"roomName":"general"}`))

		assert.Equal(t, http.StatusOK, rr.Code)
		body := decodeBody(t, rr)
		messages, ok := body["messages"].([]any)
		require.True(t, ok)
		require.Len(t, messages, 1)
		first := messages[0].(map[string]any)
		assert.Equal(t, "alice", first["name"])
		assert.Equal(t, "hello", first["message"])
	})

	t.Run("non-member denied", func(t *testing.T) {
		svc := &MockChatService{}
		defer svc.AssertExpectations(t)
		svc.On("ReadHistory", mock.Anything, "alice", "private").Return([]types.Message(nil), &chat.Error{Kind: chat.KindRoomAccessDenied})

		app, mux := newTestApp(t, svc, nil)
		rr := doRequest(t, mux, authedRequest(t, app, http.MethodPost, "/api/messages", `{"roomName":"private"}`))

		assert.Equal(t, http.StatusForbidden, rr.Code)
		assert.Equal(t, string(chat.KindRoomAccessDenied), decodeBody(t, rr)["reason"])
	})
}

func TestSend(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		svc := &MockChatService{}
		defer svc.AssertExpectations(t)
		svc.On("PostMessage", mock.Anything, "alice", "general", "hello").Return(nil)

		app, mux := newTestApp(t, svc, nil)
		rr := doRequest(t, mux, authedRequest(t, app, http.MethodPost, "/api/send", `{"roomName":"general","message":"hello"}`))

		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("empty body rejected", func(t *testing.T) {
		svc := &MockChatService{}
		defer svc.AssertExpectations(t)
		svc.On("PostMessage", mock.Anything, "alice", "general", "").Return(&chat.Error{Kind: chat.KindEmptyValue})

		app, mux := newTestApp(t, svc, nil)
		rr := doRequest(t, mux, authedRequest(t, app, http.MethodPost, "/api/send", `{"roomName":"general","message":""}`))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, string(chat.KindEmptyValue), decodeBody(t, rr)["reason"])
	})
}

func TestFriendEndpoints(t *testing.T) {
	friends := []types.Friend{{Username: "bob", Online: true}}

	t.Run("follow returns the updated list", func(t *testing.T) {
		svc := &MockChatService{}
		defer svc.AssertExpectations(t)
		svc.On("Follow", mock.Anything, "alice", "bob").Return(nil)
		svc.On("Friends", mock.Anything, "alice").Return(friends, nil)

		app, mux := newTestApp(t, svc, nil)
		rr := doRequest(t, mux, authedRequest(t, app, http.MethodPost, "/api/friends/follow", `{"friend":"bob"}`))

		assert.Equal(t, http.StatusOK, rr.Code)
		body := decodeBody(t, rr)
		list, ok := body["body"].([]any)
		require.True(t, ok)
		require.Len(t, list, 1)
		entry := list[0].(map[string]any)
		assert.Equal(t, "bob", entry["username"])
		assert.Equal(t, true, entry["online"])
	})

	t.Run("unfollow returns the updated list", func(t *testing.T) {
		svc := &MockChatService{}
		defer svc.AssertExpectations(t)
		svc.On("Unfollow", mock.Anything, "alice", "bob").Return(nil)
		svc.On("Friends", mock.Anything, "alice").Return([]types.Friend{}, nil)

		app, mux := newTestApp(t, svc, nil)
		rr := doRequest(t, mux, authedRequest(t, app, http.MethodPost, "/api/friends/unfollow", `{"friend":"bob"}`))

		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("follow unknown user", func(t *testing.T) {
		svc := &MockChatService{}
		defer svc.AssertExpectations(t)
		svc.On("Follow", mock.Anything, "alice", "ghost").Return(&chat.Error{Kind: chat.KindUserNotFound})

		app, mux := newTestApp(t, svc, nil)
		rr := doRequest(t, mux, authedRequest(t, app, http.MethodPost, "/api/friends/follow", `{"friend":"ghost"}`))

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("search", func(t *testing.T) {
		svc := &MockChatService{}
		defer svc.AssertExpectations(t)
		svc.On("SearchUsers", mock.Anything, "bo").Return([]types.User{{Id: 2, Username: "bob", Online: true}}, nil)

		app, mux := newTestApp(t, svc, nil)
		rr := doRequest(t, mux, authedRequest(t, app, http.MethodPost, "/api/friends/search", `{"user":"bo"}`))

		assert.Equal(t, http.StatusOK, rr.Code)
	})
}

func TestHealthCheck(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		db := &database.MockChatRepository{}
		defer db.AssertExpectations(t)
		db.On("Ping").Return(nil)

		_, mux := newTestApp(t, &MockChatService{}, db)
		rr := doRequest(t, mux, httptest.NewRequest(http.MethodGet, "/healthz", nil))

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "OK", rr.Body.String())
	})

	t.Run("store down", func(t *testing.T) {
		db := &database.MockChatRepository{}
		defer db.AssertExpectations(t)
		db.On("Ping").Return(assert.AnError)

		_, mux := newTestApp(t, &MockChatService{}, db)
		rr := doRequest(t, mux, httptest.NewRequest(http.MethodGet, "/healthz", nil))

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
	})
}
