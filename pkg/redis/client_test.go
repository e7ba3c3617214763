package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *Client) {
	t.Helper()

	mr := miniredis.RunT(t)
	client, err := NewClient("redis://"+mr.Addr(), "test", zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	return mr, client
}

func TestNewClientInvalidURL(t *testing.T) {
	_, err := NewClient("invalid://url", "test", zap.NewNop())
	assert.Error(t, err)
}

func TestClientSetGet(t *testing.T) {
	_, client := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, client.Set(ctx, "staging:draft:session:abc", "payload", time.Minute))

	val, err := client.Get(ctx, "staging:draft:session:abc")
	require.NoError(t, err)
	assert.Equal(t, "payload", val)
}

func TestClientGetMiss(t *testing.T) {
	_, client := setupTestRedis(t)

	_, err := client.Get(context.Background(), "staging:draft:session:missing")
	assert.Equal(t, Nil, err)
}

func TestClientSetTTL(t *testing.T) {
	mr, client := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, client.Set(ctx, "staging:draft:session:abc", "payload", TTLSession))

	// Past the TTL the entry is gone.
	mr.FastForward(TTLSession + time.Second)
	_, err := client.Get(ctx, "staging:draft:session:abc")
	assert.Equal(t, Nil, err)
}

func TestClientDeleteAndExists(t *testing.T) {
	_, client := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, client.Set(ctx, "staging:draft:session:abc", "payload", time.Minute))

	n, err := client.Exists(ctx, "staging:draft:session:abc")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	require.NoError(t, client.Delete(ctx, "staging:draft:session:abc"))

	n, err = client.Exists(ctx, "staging:draft:session:abc")
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestClientHealth(t *testing.T) {
	mr, client := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, client.Health(ctx))

	mr.Close()
	assert.Error(t, client.Health(ctx))
}
