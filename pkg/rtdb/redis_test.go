package rtdb

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedisStore(t *testing.T) *RedisStore {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStoreWithClient(client, WithNamespace("test"))
}

func TestRedisStoreRoundTrip(t *testing.T) {
	store := newTestRedisStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "/trial_bookings/b1", map[string]any{
		"parent_name": "Ana",
		"status":      "pending",
	}))

	snap, err := store.Get(ctx, "/trial_bookings/b1")
	require.NoError(t, err)
	assert.True(t, snap.Exists())
	assert.Equal(t, "pending", snap.Child("status").String(""))
}

func TestRedisStoreAssemblesBranchFromChildren(t *testing.T) {
	store := newTestRedisStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "/trial_bookings/b1", map[string]any{"status": "pending"}))
	require.NoError(t, store.Set(ctx, "/trial_bookings/b2", map[string]any{"status": "accepted"}))

	snap, err := store.Get(ctx, "/trial_bookings")
	require.NoError(t, err)
	assert.Equal(t, 2, snap.Len())
	assert.Equal(t, "accepted", snap.Child("b2").Child("status").String(""))
}

func TestRedisStoreRangeByKeyUsesLexOrder(t *testing.T) {
	store := newTestRedisStore(t)
	ctx := context.Background()

	for _, date := range []string{"2026-08-01", "2026-08-05", "2026-08-09"} {
		require.NoError(t, store.Set(ctx, "/site_analytics/pageViews/"+date+"/home/pv1", map[string]any{
			"timestamp": 1, "slug": "home",
		}))
	}

	snap, err := store.RangeByKey(ctx, "/site_analytics/pageViews", "2026-08-01", "2026-08-05")
	require.NoError(t, err)
	assert.Equal(t, []string{"2026-08-01", "2026-08-05"}, snap.Keys())
}

func TestRedisStoreGetInsideDocument(t *testing.T) {
	store := newTestRedisStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "/settings", map[string]any{"trial_bookings_enabled": false}))

	snap, err := store.Get(ctx, "/settings/trial_bookings_enabled")
	require.NoError(t, err)
	assert.True(t, snap.Exists())
	assert.False(t, snap.Bool(true))
}

func TestRedisStoreUpdatePreservesSiblings(t *testing.T) {
	store := newTestRedisStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "/trial_bookings/b1", map[string]any{
		"status": "pending",
		"email":  "a@x.com",
	}))
	require.NoError(t, store.Update(ctx, "/trial_bookings/b1", map[string]any{"status": "declined", "decline_reason": ""}))

	snap, err := store.Get(ctx, "/trial_bookings/b1")
	require.NoError(t, err)
	assert.Equal(t, "declined", snap.Child("status").String(""))
	assert.Equal(t, "a@x.com", snap.Child("email").String(""))
	assert.True(t, snap.Child("decline_reason").Exists())
}

func TestRedisStoreRemoveCleansIndex(t *testing.T) {
	store := newTestRedisStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "/trial_bookings/b1", map[string]any{"status": "cancelled"}))
	require.NoError(t, store.Remove(ctx, "/trial_bookings/b1"))

	snap, err := store.Get(ctx, "/trial_bookings")
	require.NoError(t, err)
	assert.False(t, snap.Child("b1").Exists())
}

func TestRedisStoreSubscribeReceivesChanges(t *testing.T) {
	store := newTestRedisStore(t)
	ctx := context.Background()

	var events atomic.Int64
	sub, err := store.Subscribe(ctx, "/site_analytics/presence", func(Snapshot) {
		events.Add(1)
	})
	require.NoError(t, err)
	defer sub.Cancel()

	require.EqualValues(t, 1, events.Load(), "initial snapshot should fire synchronously")

	require.NoError(t, store.Set(ctx, "/site_analytics/presence/p1", map[string]any{"lastSeen": 10}))
	require.Eventually(t, func() bool { return events.Load() >= 2 }, 2*time.Second, 10*time.Millisecond)
}
