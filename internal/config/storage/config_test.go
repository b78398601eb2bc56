package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hapi-protocol/hapi-core/pkg/interfaces/infrastructure/storage"
)

func TestDefaults(t *testing.T) {
	cfg, err := New(nil)
	require.NoError(t, err)
	assert.Equal(t, storage.BackendFile, cfg.Backend())
	assert.Equal(t, "data/state.json", cfg.GetFilePath())
	assert.Equal(t, "data/badger", cfg.GetBadgerPath())
	assert.Equal(t, "hapi:indexer:", cfg.GetKeyPrefix())
}

func TestBackendValidation(t *testing.T) {
	cfg, err := New(&StorageOptions{Backend: " Badger "})
	require.NoError(t, err)
	assert.Equal(t, storage.BackendBadger, cfg.Backend())

	_, err = New(&StorageOptions{Backend: "redis"})
	assert.ErrorContains(t, err, "redis_url")

	_, err = New(&StorageOptions{Backend: "sqlite"})
	assert.ErrorContains(t, err, "unknown backend")
}
