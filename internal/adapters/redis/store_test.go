package redisad_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	redisad "campus_map/internal/adapters/redis"
)

type state struct {
	Lang  string `json:"lang"`
	Query string `json:"query"`
}

func newStore(t *testing.T) (*redisad.Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	return redisad.NewFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()})), mr
}

func TestStore_SaveLoadDelete(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	var got state
	found, err := s.Load(ctx, "view:a", &got)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, s.Save(ctx, "view:a", state{Lang: "en", Query: "gym"}, time.Minute))
	found, err = s.Load(ctx, "view:a", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, state{Lang: "en", Query: "gym"}, got)

	require.NoError(t, s.Delete(ctx, "view:a"))
	found, err = s.Load(ctx, "view:a", &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestStore_TTL(t *testing.T) {
	s, mr := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "view:ttl", state{Lang: "ko"}, 30*time.Second))
	assert.Equal(t, 30*time.Second, mr.TTL("view:ttl"))

	mr.FastForward(31 * time.Second)
	var got state
	found, err := s.Load(ctx, "view:ttl", &got)
	require.NoError(t, err)
	assert.False(t, found, "expired state must not load")
}

func TestStore_CorruptValue(t *testing.T) {
	s, mr := newStore(t)
	require.NoError(t, mr.Set("view:bad", "{not json"))

	var got state
	_, err := s.Load(context.Background(), "view:bad", &got)
	assert.Error(t, err)
}

func TestStore_Unreachable(t *testing.T) {
	s, mr := newStore(t)
	mr.Close()

	var got state
	_, err := s.Load(context.Background(), "view:x", &got)
	assert.Error(t, err)
}
