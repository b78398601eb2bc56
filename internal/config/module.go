// Package config provides the indexer configuration to the fx graph.
package config

import (
	"go.uber.org/fx"

	eventconfig "github.com/hapi-protocol/hapi-core/internal/config/event"
	indexerconfig "github.com/hapi-protocol/hapi-core/internal/config/indexer"
	logconfig "github.com/hapi-protocol/hapi-core/internal/config/log"
	storageconfig "github.com/hapi-protocol/hapi-core/internal/config/storage"
)

// ConfigOutput splits the loaded configuration into per-module options
type ConfigOutput struct {
	fx.Out

	Log     *logconfig.LogOptions
	Storage *storageconfig.Config
	Event   *eventconfig.EventOptions
}

// Module supplies cfg and the options derived from it
func Module(cfg *indexerconfig.Config) fx.Option {
	return fx.Module("config",
		fx.Supply(cfg),
		fx.Provide(ProvideConfigServices),
	)
}

// ProvideConfigServices derives module options from the indexer configuration
func ProvideConfigServices(cfg *indexerconfig.Config) (ConfigOutput, error) {
	st, err := cfg.StorageOptions()
	if err != nil {
		return ConfigOutput{}, err
	}
	return ConfigOutput{
		Log:     cfg.LogOptions(),
		Storage: st,
		Event:   cfg.EventOptions(),
	}, nil
}
