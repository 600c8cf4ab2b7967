package server

import (
	"context"
	"log"
	"sync"

	"chatterbox/internal/chat"
	"chatterbox/internal/stats"
	"chatterbox/internal/types"
)

// PresenceStore records which users currently hold at least one live
// connection.
type PresenceStore interface {
	SetOnline(ctx context.Context, username string) error
	SetOffline(ctx context.Context, username string) error
}

// ChatServer is the message broker: one process-wide registry mapping
// room names to the connections subscribed to them. Membership is
// re-validated on every subscribe, not just at join time.
type ChatServer struct {
	log      *log.Logger
	auth     Authorizer
	presence PresenceStore
	stats    stats.Provider

	mu        sync.RWMutex
	clients   map[*Client]bool
	rooms     map[string]map[*Client]bool
	userConns map[string]int
}

// Authorizer answers the same membership question the chat service
// uses for reads and posts.
type Authorizer interface {
	IsMember(ctx context.Context, username, roomName string) (bool, error)
}

func NewChatServer(logger *log.Logger, auth Authorizer, presence PresenceStore, st stats.Provider) *ChatServer {
	return &ChatServer{
		log:       logger,
		auth:      auth,
		presence:  presence,
		stats:     st,
		clients:   make(map[*Client]bool),
		rooms:     make(map[string]map[*Client]bool),
		userConns: make(map[string]int),
	}
}

// RegisterClient adds a new connection and marks its user online on
// the first connection.
func (cs *ChatServer) RegisterClient(c *Client) {
	cs.mu.Lock()
	cs.clients[c] = true
	cs.userConns[c.user.Username]++
	first := cs.userConns[c.user.Username] == 1
	cs.mu.Unlock()

	cs.stats.Incr(stats.ActiveConnections)

	if first && cs.presence != nil {
		if err := cs.presence.SetOnline(context.Background(), c.user.Username); err != nil {
			cs.log.Printf("presence online %q: %v", c.user.Username, err)
		}
	}

	cs.log.Printf("registered connection for %q", c.user.Username)
}

// DeregisterClient removes a connection from every room it subscribed
// to and marks the user offline when it was their last connection.
func (cs *ChatServer) DeregisterClient(c *Client) {
	cs.mu.Lock()
	if _, ok := cs.clients[c]; !ok {
		cs.mu.Unlock()
		return
	}
	delete(cs.clients, c)

	for roomName, conns := range cs.rooms {
		if conns[c] {
			delete(conns, c)
			if len(conns) == 0 {
				delete(cs.rooms, roomName)
				cs.stats.Decr(stats.ActiveRooms)
			}
		}
	}

	cs.userConns[c.user.Username]--
	last := cs.userConns[c.user.Username] == 0
	if last {
		delete(cs.userConns, c.user.Username)
	}
	cs.mu.Unlock()

	cs.stats.Decr(stats.ActiveConnections)

	if last && cs.presence != nil {
		if err := cs.presence.SetOffline(context.Background(), c.user.Username); err != nil {
			cs.log.Printf("presence offline %q: %v", c.user.Username, err)
		}
	}

	cs.log.Printf("removed connection for %q", c.user.Username)
}

// Subscribe registers a connection's interest in a room after
// re-checking the user's membership.
func (cs *ChatServer) Subscribe(ctx context.Context, c *Client, roomName string) error {
	member, err := cs.auth.IsMember(ctx, c.user.Username, roomName)
	if err != nil {
		return err
	}
	if !member {
		return &chat.Error{Kind: chat.KindRoomAccessDenied}
	}

	cs.mu.Lock()
	defer cs.mu.Unlock()

	conns, ok := cs.rooms[roomName]
	if !ok {
		conns = make(map[*Client]bool)
		cs.rooms[roomName] = conns
		cs.stats.Incr(stats.ActiveRooms)
	}
	conns[c] = true

	cs.log.Printf("subscribed %q to room %q", c.user.Username, roomName)
	return nil
}

// Unsubscribe removes a connection from a single room.
func (cs *ChatServer) Unsubscribe(c *Client, roomName string) {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	if conns, ok := cs.rooms[roomName]; ok {
		delete(conns, c)
		if len(conns) == 0 {
			delete(cs.rooms, roomName)
			cs.stats.Decr(stats.ActiveRooms)
		}
	}
}

// Publish delivers a persisted message to every connection currently
// subscribed to the room. Delivery is best-effort and at-most-once: a
// client whose send buffer is full misses the event and catches up
// from the persisted history.
func (cs *ChatServer) Publish(roomName string, msg types.Message) {
	cs.mu.RLock()
	conns := make([]*Client, 0, len(cs.rooms[roomName]))
	for c := range cs.rooms[roomName] {
		conns = append(conns, c)
	}
	cs.mu.RUnlock()

	event := newMessageEvent(roomName, msg)
	for _, c := range conns {
		if c.queueMessage(event) {
			cs.stats.Incr(stats.MessagesPublished)
		} else {
			cs.stats.Incr(stats.MessagesDropped)
		}
	}
}

// Subscribers reports the number of connections subscribed to a room.
func (cs *ChatServer) Subscribers(roomName string) int {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return len(cs.rooms[roomName])
}

// Shutdown stops every connected client and waits for their pumps to
// exit.
func (cs *ChatServer) Shutdown() {
	cs.mu.Lock()
	clients := make([]*Client, 0, len(cs.clients))
	for c := range cs.clients {
		clients = append(clients, c)
	}
	cs.mu.Unlock()

	cs.log.Printf("stopping %d connections", len(clients))
	for _, c := range clients {
		c.stopClient()
	}
}
