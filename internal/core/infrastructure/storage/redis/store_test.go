package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hapi-protocol/hapi-core/pkg/interfaces/infrastructure/storage"
)

func setupStore(t *testing.T) (*miniredis.Miniredis, *Store) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	s, err := New(context.Background(), "redis://"+mr.Addr(), "hapi:test:", nil)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return mr, s
}

func TestRedisStore(t *testing.T) {
	ctx := context.Background()
	mr, s := setupStore(t)

	_, err := s.Get(ctx, "state")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, s.Set(ctx, "state", []byte(`{"cursor":"None"}`)))
	raw, err := mr.Get("hapi:test:state")
	require.NoError(t, err)
	assert.Equal(t, `{"cursor":"None"}`, raw)

	got, err := s.Get(ctx, "state")
	require.NoError(t, err)
	assert.Equal(t, `{"cursor":"None"}`, string(got))

	require.NoError(t, s.Delete(ctx, "state"))
	assert.False(t, mr.Exists("hapi:test:state"))
}

func TestRedisUnavailable(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	addr := mr.Addr()
	mr.Close()

	_, err = New(context.Background(), "redis://"+addr, "", nil)
	assert.ErrorContains(t, err, "ping")
}

func TestRedisBadURL(t *testing.T) {
	_, err := New(context.Background(), "http://nope", "", nil)
	assert.ErrorContains(t, err, "parse url")
}
