package snapshot

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/genricoloni/mucwidget/internal/domain"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewRedisStoreFromClient(client, "HomeWidgetPreferences")
	t.Cleanup(func() { _ = store.Close() })
	return store, mr
}

func TestRedisStore_RoundTripThroughReader(t *testing.T) {
	store, _ := newTestRedisStore(t)
	ctx := context.Background()

	require.NoError(t, store.Ping(ctx))
	require.NoError(t, store.Put(ctx, map[string]any{
		KeyTitle:         "Song",
		KeyIsPlaying:     true,
		KeyRepeatMode:    "all",
		KeyOnColor:       int64(0xFF112233),
		KeyShowShuffle:   false,
		KeyShuffleActive: true,
	}))

	snap := NewReader(zap.NewNop(), store).Read(ctx)

	assert.Equal(t, "Song", snap.Title)
	assert.Equal(t, "Unknown", snap.Artist)
	assert.True(t, snap.IsPlaying)
	assert.True(t, snap.ShuffleActive)
	assert.False(t, snap.ShowShuffleControl)
	assert.Equal(t, domain.RepeatAll, snap.RepeatMode)
	assert.Equal(t, int64(0xFF112233), snap.OnColor)
}

func TestRedisStore_ValuesAreStrings(t *testing.T) {
	store, mr := newTestRedisStore(t)
	mr.HSet("HomeWidgetPreferences", KeyShowCover, "false")

	values, err := store.Values(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "false", values[KeyShowCover])
}

func TestRedisStore_UnreachableFallsBackToDefaults(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	store := NewRedisStoreFromClient(client, "HomeWidgetPreferences")
	defer store.Close()
	mr.Close()

	snap := NewReader(zap.NewNop(), store).Read(context.Background())
	assert.Equal(t, Defaults(), snap)
}

func TestRedisStore_PutEmptyIsNoop(t *testing.T) {
	store, mr := newTestRedisStore(t)
	require.NoError(t, store.Put(context.Background(), nil))
	assert.False(t, mr.Exists("HomeWidgetPreferences"))
}
