package presence

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix = "presence:"

	// onlineTTL bounds staleness if an offline mark is lost on crash;
	// live connections refresh on reconnect.
	onlineTTL = 24 * time.Hour

	opTimeout = 3 * time.Second
)

// Tracker keeps per-user online flags in Redis. A user is online while
// they hold at least one live websocket connection.
type Tracker struct {
	client *redis.Client
}

func NewTracker(addr, password string) *Tracker {
	return &Tracker{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
		}),
	}
}

func key(username string) string {
	return keyPrefix + username
}

func (t *Tracker) SetOnline(ctx context.Context, username string) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if err := t.client.Set(ctx, key(username), "1", onlineTTL).Err(); err != nil {
		return fmt.Errorf("set online: %w", err)
	}
	return nil
}

func (t *Tracker) SetOffline(ctx context.Context, username string) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if err := t.client.Del(ctx, key(username)).Err(); err != nil && err != redis.Nil {
		return fmt.Errorf("set offline: %w", err)
	}
	return nil
}

func (t *Tracker) IsOnline(ctx context.Context, username string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	_, err := t.client.Get(ctx, key(username)).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("get presence: %w", err)
	}
	return true, nil
}

// Statuses resolves online flags for a batch of usernames in one
// round trip.
func (t *Tracker) Statuses(ctx context.Context, usernames []string) (map[string]bool, error) {
	statuses := make(map[string]bool, len(usernames))
	if len(usernames) == 0 {
		return statuses, nil
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	keys := make([]string, len(usernames))
	for i, name := range usernames {
		keys[i] = key(name)
	}

	vals, err := t.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("mget presence: %w", err)
	}

	for i, v := range vals {
		statuses[usernames[i]] = v != nil
	}
	return statuses, nil
}

func (t *Tracker) Close() error {
	return t.client.Close()
}
