package configs_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hapi-protocol/hapi-core/configs"
	indexerconfig "github.com/hapi-protocol/hapi-core/internal/config/indexer"
	"github.com/hapi-protocol/hapi-core/pkg/types"
)

func TestExamplesLoad(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "configuration.toml")
	secretPath := filepath.Join(dir, "secret.toml")
	require.NoError(t, os.WriteFile(configPath, configs.ConfigurationExample(), 0o600))
	require.NoError(t, os.WriteFile(secretPath, configs.SecretExample(), 0o600))

	cfg, err := indexerconfig.LoadFiles(configPath, secretPath)
	require.NoError(t, err)
	assert.Equal(t, types.NetworkSepolia, cfg.Indexer.Network)
	assert.Equal(t, "change-me", cfg.Indexer.JWTSecret)
	assert.Equal(t, uint64(500), cfg.Indexer.PageSize)
	assert.Equal(t, 100, cfg.Log.MaxSize)
}
