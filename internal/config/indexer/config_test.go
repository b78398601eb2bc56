package indexer

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hapi-protocol/hapi-core/pkg/interfaces/infrastructure/storage"
	"github.com/hapi-protocol/hapi-core/pkg/types"
)

const minimalConfig = `
[indexer]
network = "ethereum"
rpc_node_url = "http://localhost:8545"
webhook_url = "http://localhost:8080/"
contract_address = "0x5FbDB2315678afecb367f032d93F642f64180aa3"
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDefaultsAndSecret(t *testing.T) {
	dir := t.TempDir()
	configPath := writeFile(t, dir, "configuration.toml", minimalConfig)
	secretPath := writeFile(t, dir, "secret.toml", "[indexer]\njwt_secret = \"s3cret\"\n")

	cfg, err := LoadFiles(configPath, secretPath)
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.LogLevel)
	assert.True(t, cfg.IsJSONLogging)
	assert.Equal(t, "0.0.0.0:3000", cfg.Listener)

	ic := cfg.Indexer
	assert.Equal(t, types.NetworkEthereum, ic.Network)
	assert.Equal(t, "http://localhost:8080", ic.WebhookURL)
	assert.Equal(t, "s3cret", ic.JWTSecret)
	assert.Equal(t, time.Second, ic.WaitInterval())
	assert.Equal(t, 100*time.Millisecond, ic.FetchingDelay())
	assert.Equal(t, time.Minute, ic.HeartbeatInterval())
	assert.Equal(t, uint64(500), ic.PageSize)
	assert.Equal(t, "data/state.json", ic.StateFile)

	// the derived id is stable
	again, err := LoadFiles(configPath, secretPath)
	require.NoError(t, err)
	assert.Equal(t, ic.ID, again.Indexer.ID)

	st, err := cfg.StorageOptions()
	require.NoError(t, err)
	assert.Equal(t, storage.BackendFile, st.Backend())
	assert.Equal(t, "data/state.json", st.GetFilePath())

	logOpts := cfg.LogOptions()
	assert.Equal(t, "info", logOpts.Level)
	assert.True(t, logOpts.JSON)
}

func TestMissingSecretFileIsOptional(t *testing.T) {
	dir := t.TempDir()
	configPath := writeFile(t, dir, "configuration.toml", minimalConfig+"jwt_secret = \"inline\"\n")

	cfg, err := LoadFiles(configPath, filepath.Join(dir, "absent.toml"))
	require.NoError(t, err)
	assert.Equal(t, "inline", cfg.Indexer.JWTSecret)
}

func TestMissingConfigFile(t *testing.T) {
	_, err := LoadFiles(filepath.Join(t.TempDir(), "nope.toml"), "")
	assert.Error(t, err)
}

func TestRequiredKeys(t *testing.T) {
	dir := t.TempDir()
	configPath := writeFile(t, dir, "configuration.toml", "[indexer]\nnetwork = \"solana\"\n")

	_, err := LoadFiles(configPath, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "indexer.contract_address")
	assert.Contains(t, err.Error(), "indexer.jwt_secret")
	assert.Contains(t, err.Error(), "indexer.rpc_node_url")
}

func TestEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	configPath := writeFile(t, dir, "configuration.toml", minimalConfig)
	t.Setenv(ConfigPathEnv, configPath)
	t.Setenv(SecretPathEnv, filepath.Join(dir, "absent.toml"))
	t.Setenv("HAPI_INDEXER_INDEXER_JWT_SECRET", "from-env")
	t.Setenv("HAPI_INDEXER_INDEXER_PAGE_SIZE", "25")
	t.Setenv("HAPI_INDEXER_LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Indexer.JWTSecret)
	assert.Equal(t, uint64(25), cfg.Indexer.PageSize)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestInvalidValues(t *testing.T) {
	dir := t.TempDir()
	base := minimalConfig + "jwt_secret = \"x\"\n"

	for name, content := range map[string]string{
		"network":     strings.Replace(base, `"ethereum"`, `"dogecoin"`, 1),
		"page size":   base + "page_size = 0\n",
		"indexer id":  base + "indexer_id = \"not-a-uuid\"\n",
		"persistence": base + "persistence = \"sqlite\"\n",
		"redis url":   base + "persistence = \"redis\"\n",
	} {
		path := writeFile(t, dir, "c.toml", content)
		_, err := LoadFiles(path, "")
		assert.Error(t, err, name)
	}
}
