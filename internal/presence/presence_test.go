package presence

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTracker(t *testing.T) *Tracker {
	t.Helper()

	srv := miniredis.RunT(t)
	tracker := NewTracker(srv.Addr(), "")
	t.Cleanup(func() { tracker.Close() })
	return tracker
}

func TestOnlineOffline(t *testing.T) {
	tracker := newTestTracker(t)
	ctx := context.Background()

	online, err := tracker.IsOnline(ctx, "alice")
	require.NoError(t, err)
	assert.False(t, online, "expected offline before any connection")

	require.NoError(t, tracker.SetOnline(ctx, "alice"))
	online, err = tracker.IsOnline(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, online)

	require.NoError(t, tracker.SetOffline(ctx, "alice"))
	online, err = tracker.IsOnline(ctx, "alice")
	require.NoError(t, err)
	assert.False(t, online)
}

func TestSetOfflineIdempotent(t *testing.T) {
	tracker := newTestTracker(t)
	ctx := context.Background()

	assert.NoError(t, tracker.SetOffline(ctx, "never-seen"))
}

func TestStatuses(t *testing.T) {
	tracker := newTestTracker(t)
	ctx := context.Background()

	require.NoError(t, tracker.SetOnline(ctx, "alice"))
	require.NoError(t, tracker.SetOnline(ctx, "carol"))

	statuses, err := tracker.Statuses(ctx, []string{"alice", "bob", "carol"})
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{
		"alice": true,
		"bob":   false,
		"carol": true,
	}, statuses)
}

func TestStatusesEmpty(t *testing.T) {
	tracker := newTestTracker(t)

	statuses, err := tracker.Statuses(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, statuses)
}
