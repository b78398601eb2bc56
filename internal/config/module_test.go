package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	indexerconfig "github.com/hapi-protocol/hapi-core/internal/config/indexer"
	logconfig "github.com/hapi-protocol/hapi-core/internal/config/log"
	storageconfig "github.com/hapi-protocol/hapi-core/internal/config/storage"
	"github.com/hapi-protocol/hapi-core/pkg/interfaces/infrastructure/storage"
)

func testConfig() *indexerconfig.Config {
	return &indexerconfig.Config{
		LogLevel:      "debug",
		IsJSONLogging: false,
		Indexer: indexerconfig.IndexerConfig{
			Persistence: "file",
			StateFile:   "state.json",
		},
	}
}

func TestProvideConfigServices(t *testing.T) {
	out, err := ProvideConfigServices(testConfig())
	require.NoError(t, err)
	assert.Equal(t, "debug", out.Log.Level)
	assert.False(t, out.Log.JSON)
	assert.Equal(t, storage.BackendFile, out.Storage.Backend())
	assert.Equal(t, "state.json", out.Storage.GetFilePath())
	assert.NotNil(t, out.Event)
}

func TestProvideConfigServicesRejectsBackend(t *testing.T) {
	cfg := testConfig()
	cfg.Indexer.Persistence = "cassandra"
	_, err := ProvideConfigServices(cfg)
	assert.Error(t, err)
}

func TestModule(t *testing.T) {
	var (
		logOpts *logconfig.LogOptions
		st      *storageconfig.Config
	)
	app := fxtest.New(t, Module(testConfig()), fx.Populate(&logOpts, &st))
	app.RequireStart().RequireStop()
	assert.Equal(t, "debug", logOpts.Level)
	assert.Equal(t, storage.BackendFile, st.Backend())
}
