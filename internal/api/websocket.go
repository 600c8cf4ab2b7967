package api

import (
	"net/http"

	"github.com/gorilla/websocket"

	"chatterbox/internal/server"
)

const (
	readBufferSize  = 1024
	writeBufferSize = 1024
)

// serveWs upgrades an authenticated request to a websocket and hands
// the connection to the chat server's pumps.
func (s *ChatApp) serveWs(w http.ResponseWriter, r *http.Request) {
	username, ok := s.requireUsername(w, r)
	if !ok {
		return
	}

	user, _, err := s.svc.Profile(r.Context(), username)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	upgrader := websocket.Upgrader{
		ReadBufferSize:  readBufferSize,
		WriteBufferSize: writeBufferSize,
		CheckOrigin:     s.checkOrigin,
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Printf("websocket upgrade: %v", err)
		return
	}

	client := server.NewClient(user, conn, s.cs, s.log)
	s.cs.RegisterClient(client)

	go client.Write()
	go client.Read()
}

func (s *ChatApp) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}

	for _, allowed := range s.allowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}

	return false
}
