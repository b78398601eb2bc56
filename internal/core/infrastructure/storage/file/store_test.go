package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hapi-protocol/hapi-core/pkg/interfaces/infrastructure/storage"
)

func TestStateFileRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "data", "state.json")
	s, err := New(path, nil)
	require.NoError(t, err)

	_, err = s.Get(ctx, storage.StateKey)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, s.Set(ctx, storage.StateKey, []byte(`{"cursor":"None"}`)))
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"cursor":"None"}`, string(raw))

	require.NoError(t, s.Set(ctx, storage.StateKey, []byte(`{"cursor":{"Block":7}}`)))
	got, err := s.Get(ctx, storage.StateKey)
	require.NoError(t, err)
	assert.JSONEq(t, `{"cursor":{"Block":7}}`, string(got))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must be cleaned up")
}

func TestOtherKeysAndDelete(t *testing.T) {
	ctx := context.Background()
	s, err := New(filepath.Join(t.TempDir(), "state.json"), nil)
	require.NoError(t, err)

	require.NoError(t, s.Set(ctx, "heartbeat", []byte("1")))
	got, err := s.Get(ctx, "heartbeat")
	require.NoError(t, err)
	assert.Equal(t, []byte("1"), got)

	require.NoError(t, s.Delete(ctx, "heartbeat"))
	require.NoError(t, s.Delete(ctx, "heartbeat"))
	_, err = s.Get(ctx, "heartbeat")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestRejectsEscapingKeys(t *testing.T) {
	s, err := New(filepath.Join(t.TempDir(), "state.json"), nil)
	require.NoError(t, err)
	for _, key := range []string{"", "..", "../x", `a\b`} {
		assert.Error(t, s.Set(context.Background(), key, nil), key)
	}
}

func TestClosed(t *testing.T) {
	s, err := New(filepath.Join(t.TempDir(), "state.json"), nil)
	require.NoError(t, err)
	require.NoError(t, s.Close())
	assert.Error(t, s.Set(context.Background(), storage.StateKey, []byte("x")))
}
