package chat

import "sync"

// roomLocks hands out one mutex per room name. Holding a room's lock
// across "append message" + "publish to subscribers" keeps persistence
// order and delivery order identical for that room.
type roomLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newRoomLocks() *roomLocks {
	return &roomLocks{locks: make(map[string]*sync.Mutex)}
}

func (rl *roomLocks) lock(roomName string) func() {
	rl.mu.Lock()
	l, ok := rl.locks[roomName]
	if !ok {
		l = &sync.Mutex{}
		rl.locks[roomName] = l
	}
	rl.mu.Unlock()

	l.Lock()
	return l.Unlock
}
