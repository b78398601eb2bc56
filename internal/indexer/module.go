package indexer

import (
	"context"
	"time"

	"go.uber.org/fx"

	indexerconfig "github.com/hapi-protocol/hapi-core/internal/config/indexer"
	"github.com/hapi-protocol/hapi-core/pkg/interfaces/hapicore"
	"github.com/hapi-protocol/hapi-core/pkg/interfaces/infrastructure/event"
	"github.com/hapi-protocol/hapi-core/pkg/interfaces/infrastructure/log"
	"github.com/hapi-protocol/hapi-core/pkg/interfaces/infrastructure/metrics"
	"github.com/hapi-protocol/hapi-core/pkg/interfaces/infrastructure/storage"
)

const webhookTimeout = 30 * time.Second

// ModuleInput is what the indexer needs from the other modules
type ModuleInput struct {
	fx.In

	Config     *indexerconfig.Config
	Store      storage.Store
	EventBus   event.EventBus
	Recorder   metrics.Recorder
	Logger     log.Logger
	Lifecycle  fx.Lifecycle
	Shutdowner fx.Shutdowner
}

// Module provides the *Indexer and runs it with the application
func Module() fx.Option {
	return fx.Module("indexer",
		fx.Provide(provide),
		fx.Invoke(func(*Indexer) {}),
	)
}

func provide(in ModuleInput) (*Indexer, error) {
	cfg := in.Config.Indexer
	logger := in.Logger.With("module", "indexer", "network", cfg.Network.String())

	source, err := NewSource(hapicore.Options{
		Network:         cfg.Network,
		ProviderURL:     cfg.RPCNodeURL,
		ContractAddress: cfg.ContractAddress,
		ChainID:         cfg.ChainID,
	}, cfg.PageSize, cfg.FetchingDelay(), logger)
	if err != nil {
		return nil, err
	}
	hook, err := NewWebhook(cfg.WebhookURL, cfg.ID, cfg.JWTSecret, webhookTimeout)
	if err != nil {
		return nil, err
	}
	ix, err := New(Options{
		Network:           cfg.Network,
		ChainID:           cfg.ChainID,
		ID:                cfg.ID,
		WaitInterval:      cfg.WaitInterval(),
		FetchingDelay:     cfg.FetchingDelay(),
		HeartbeatInterval: cfg.HeartbeatInterval(),
		CacheTTL:          cfg.CacheTTL(),
	}, source, in.Store, hook, in.EventBus, in.Recorder, logger)
	if err != nil {
		return nil, err
	}

	var (
		cancel context.CancelFunc
		done   = make(chan struct{})
	)
	in.Lifecycle.Append(fx.Hook{
		OnStart: func(context.Context) error {
			var ctx context.Context
			ctx, cancel = context.WithCancel(context.Background())
			go ix.RunHeartbeat(ctx)
			go func() {
				defer close(done)
				if err := ix.Run(ctx); err != nil {
					logger.Errorf("indexer failed: %v", err)
				}
				logger.Infof("indexer finished in state %s", ix.State())
				if ctx.Err() == nil {
					// stopped on its own: take the HTTP server down with it
					if err := in.Shutdowner.Shutdown(); err != nil {
						logger.Warnf("shutdown: %v", err)
					}
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			cancel()
			select {
			case <-done:
			case <-ctx.Done():
				return ctx.Err()
			}
			return ix.Close()
		},
	})
	return ix, nil
}
