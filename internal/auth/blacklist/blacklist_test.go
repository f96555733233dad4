package blacklist

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_AddAndCheck(t *testing.T) {
	bl := NewMemory()
	ctx := context.Background()

	require.NoError(t, bl.AddToBlacklist(ctx, "jti-1", time.Hour))

	revoked, err := bl.IsBlacklisted(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = bl.IsBlacklisted(ctx, "jti-2")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestMemory_EntriesExpire(t *testing.T) {
	bl := NewMemory()
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	bl.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, bl.AddToBlacklist(ctx, "jti-1", 15*time.Minute))

	now = now.Add(14 * time.Minute)
	revoked, _ := bl.IsBlacklisted(ctx, "jti-1")
	assert.True(t, revoked)

	now = now.Add(time.Minute)
	revoked, _ = bl.IsBlacklisted(ctx, "jti-1")
	assert.False(t, revoked)
	assert.Empty(t, bl.entries)
}

func TestMemory_IgnoresNonPositiveTTL(t *testing.T) {
	bl := NewMemory()
	ctx := context.Background()

	require.NoError(t, bl.AddToBlacklist(ctx, "jti-1", 0))

	revoked, _ := bl.IsBlacklisted(ctx, "jti-1")
	assert.False(t, revoked)
}

func newMiniredis(t *testing.T) (*miniredis.Miniredis, *Redis) {
	t.Helper()
	mr := miniredis.RunT(t)
	bl := NewRedisWithClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { bl.Close() })
	return mr, bl
}

func TestRedis_AddAndCheck(t *testing.T) {
	mr, bl := newMiniredis(t)
	ctx := context.Background()

	require.NoError(t, bl.AddToBlacklist(ctx, "jti-1", 15*time.Minute))

	assert.True(t, mr.Exists("token:blacklist:jti-1"))
	assert.Equal(t, 15*time.Minute, mr.TTL("token:blacklist:jti-1"))

	revoked, err := bl.IsBlacklisted(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = bl.IsBlacklisted(ctx, "jti-2")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestRedis_KeyExpiresWithToken(t *testing.T) {
	mr, bl := newMiniredis(t)
	ctx := context.Background()

	require.NoError(t, bl.AddToBlacklist(ctx, "jti-1", time.Minute))
	mr.FastForward(time.Minute + time.Second)

	revoked, err := bl.IsBlacklisted(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestRedis_Health(t *testing.T) {
	mr, bl := newMiniredis(t)

	assert.Equal(t, "up", bl.Health(context.Background())["status"])

	mr.Close()
	assert.Equal(t, "down", bl.Health(context.Background())["status"])
}

func TestRedis_ErrorWhenUnavailable(t *testing.T) {
	mr, bl := newMiniredis(t)
	mr.Close()

	_, err := bl.IsBlacklisted(context.Background(), "jti-1")
	assert.Error(t, err)
}
