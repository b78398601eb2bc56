// Package storage builds the configured key/value backend.
package storage

import (
	"context"
	"fmt"

	"go.uber.org/fx"

	storageconfig "github.com/hapi-protocol/hapi-core/internal/config/storage"
	"github.com/hapi-protocol/hapi-core/internal/core/infrastructure/storage/badger"
	"github.com/hapi-protocol/hapi-core/internal/core/infrastructure/storage/file"
	"github.com/hapi-protocol/hapi-core/internal/core/infrastructure/storage/redis"
	"github.com/hapi-protocol/hapi-core/pkg/interfaces/infrastructure/log"
	"github.com/hapi-protocol/hapi-core/pkg/interfaces/infrastructure/storage"
)

// New opens the backend selected by cfg
func New(ctx context.Context, cfg *storageconfig.Config, logger log.Logger) (storage.Store, error) {
	switch cfg.Backend() {
	case storage.BackendFile:
		return file.New(cfg.GetFilePath(), logger)
	case storage.BackendBadger:
		return badger.New(badger.Options{
			Path:       cfg.GetBadgerPath(),
			InMemory:   cfg.IsInMemory(),
			SyncWrites: cfg.IsSyncWritesEnabled(),
		}, logger)
	case storage.BackendRedis:
		return redis.New(ctx, cfg.GetRedisURL(), cfg.GetKeyPrefix(), logger)
	default:
		return nil, fmt.Errorf("storage: unknown backend %q", cfg.Backend())
	}
}

// ModuleInput are the storage module dependencies
type ModuleInput struct {
	fx.In

	Config    *storageconfig.Config
	Logger    log.Logger `optional:"true"`
	Lifecycle fx.Lifecycle
}

// Module provides the store and closes it on shutdown
func Module() fx.Option {
	return fx.Module("storage",
		fx.Provide(func(in ModuleInput) (storage.Store, error) {
			var logger log.Logger
			if in.Logger != nil {
				logger = in.Logger.With("module", "storage")
			}
			store, err := New(context.Background(), in.Config, logger)
			if err != nil {
				return nil, err
			}
			in.Lifecycle.Append(fx.Hook{
				OnStop: func(context.Context) error { return store.Close() },
			})
			return store, nil
		}),
	)
}
