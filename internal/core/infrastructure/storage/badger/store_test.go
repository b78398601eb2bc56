package badger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hapi-protocol/hapi-core/pkg/interfaces/infrastructure/storage"
)

func TestInMemoryStore(t *testing.T) {
	ctx := context.Background()
	s, err := New(Options{InMemory: true}, nil)
	require.NoError(t, err)
	defer s.Close()

	_, err = s.Get(ctx, "state")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, s.Set(ctx, "state", []byte(`{"cursor":"None"}`)))
	got, err := s.Get(ctx, "state")
	require.NoError(t, err)
	assert.Equal(t, `{"cursor":"None"}`, string(got))

	require.NoError(t, s.Delete(ctx, "state"))
	_, err = s.Get(ctx, "state")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	s, err := New(Options{Path: dir, SyncWrites: true}, nil)
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, "state", []byte("42")))
	require.NoError(t, s.Close())

	s, err = New(Options{Path: dir}, nil)
	require.NoError(t, err)
	defer s.Close()
	got, err := s.Get(ctx, "state")
	require.NoError(t, err)
	assert.Equal(t, "42", string(got))
}

func TestWritesAfterClose(t *testing.T) {
	s, err := New(Options{InMemory: true}, nil)
	require.NoError(t, err)
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
	assert.ErrorContains(t, s.Set(context.Background(), "k", []byte("v")), "closing")
}
