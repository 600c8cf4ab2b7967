package api

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gorilla/handlers"

	"chatterbox/internal/avatar"
	"chatterbox/internal/chat"
	"chatterbox/internal/config"
	"chatterbox/internal/database"
	"chatterbox/internal/server"
	"chatterbox/internal/stats"
	"chatterbox/internal/types"
)

// ChatService is the slice of the chat core the HTTP layer consumes.
type ChatService interface {
	Register(ctx context.Context, username, password string) error
	Authenticate(ctx context.Context, username, password string) (types.User, error)
	CheckName(ctx context.Context, username string) error
	Profile(ctx context.Context, username string) (types.User, types.Profile, error)
	UpdateProfile(ctx context.Context, username string, profile types.Profile) error
	SetAvatar(ctx context.Context, username, url string) error
	SearchUsers(ctx context.Context, query string) ([]types.User, error)
	Follow(ctx context.Context, username, friend string) error
	Unfollow(ctx context.Context, username, friend string) error
	Friends(ctx context.Context, username string) ([]types.Friend, error)
	CreateRoom(ctx context.Context, username, roomName, roomPassword string) (string, error)
	JoinRoom(ctx context.Context, username, roomName string, roomPassword *string) (chat.JoinResult, error)
	ReadHistory(ctx context.Context, username, roomName string) ([]types.Message, error)
	PostMessage(ctx context.Context, username, roomName, body string) error
}

type ChatApp struct {
	log            *log.Logger
	svc            ChatService
	db             database.ChatRepository
	cs             *server.ChatServer
	avatars        avatar.Store
	mux            *http.Server
	signingKey     []byte
	allowedOrigins []string
}

func NewChatApp(mux *http.ServeMux, logger *log.Logger, svc ChatService, db database.ChatRepository, cs *server.ChatServer, avatars avatar.Store, st *stats.PromStats, cfg *config.Config) *ChatApp {
	s := &ChatApp{
		log:            logger,
		svc:            svc,
		db:             db,
		cs:             cs,
		avatars:        avatars,
		signingKey:     cfg.SigningKey,
		allowedOrigins: cfg.AllowedOrigins,
	}

	mux.HandleFunc("POST /api/signup", s.signup)
	mux.HandleFunc("POST /api/login", s.login)
	mux.HandleFunc("POST /api/checkname", s.checkName)
	mux.Handle("POST /api/sessionLogin", s.authMiddleware(s.sessionLogin))
	mux.Handle("POST /api/logout", s.authMiddleware(s.logout))
	mux.Handle("GET /api/getUserInfo", s.authMiddleware(s.getUserInfo))
	mux.Handle("POST /api/setting", s.authMiddleware(s.setting))
	mux.Handle("POST /api/avatar", s.authMiddleware(s.uploadAvatar))
	mux.Handle("POST /api/friends/search", s.authMiddleware(s.searchFriends))
	mux.Handle("POST /api/friends/follow", s.authMiddleware(s.follow))
	mux.Handle("POST /api/friends/unfollow", s.authMiddleware(s.unfollow))
	mux.Handle("POST /api/friends/get", s.authMiddleware(s.friends))
	mux.Handle("POST /api/createRoom", s.authMiddleware(s.createRoom))
	mux.Handle("POST /api/joinRoom", s.authMiddleware(s.joinRoom))
	mux.Handle("POST /api/messages", s.authMiddleware(s.messages))
	mux.Handle("POST /api/send", s.authMiddleware(s.send))
	mux.Handle("GET /ws", s.authMiddleware(s.serveWs))
	mux.HandleFunc("GET /healthz", s.healthCheck)
	if st != nil {
		mux.Handle("GET /metrics", st.Handler())
	}

	h := handlers.CORS(
		handlers.MaxAge(3600),
		handlers.AllowedOrigins(cfg.AllowedOrigins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Origin", "Content-Type", "Accept"}),
		handlers.AllowCredentials(),
	)(mux)

	h = s.errorHandler(h)

	srv := &http.Server{
		Addr:    cfg.ServerAddr,
		Handler: h,
	}

	s.mux = srv
	return s
}

func (s *ChatApp) Start() error {
	s.log.Printf("starting server on %s\n", s.mux.Addr)
	return s.mux.ListenAndServe()
}

func (s *ChatApp) Shutdown(ctx context.Context) error {
	s.log.Println("shutting down HTTP server...")
	if err := s.mux.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	return nil
}
