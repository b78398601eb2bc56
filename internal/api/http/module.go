package http

import (
	"context"

	"go.uber.org/fx"

	"github.com/hapi-protocol/hapi-core/internal/api/websocket"
	indexerconfig "github.com/hapi-protocol/hapi-core/internal/config/indexer"
	coremetrics "github.com/hapi-protocol/hapi-core/internal/core/infrastructure/metrics"
	"github.com/hapi-protocol/hapi-core/internal/indexer"
	"github.com/hapi-protocol/hapi-core/pkg/interfaces/infrastructure/event"
	"github.com/hapi-protocol/hapi-core/pkg/interfaces/infrastructure/log"
)

// ModuleInput are the HTTP module dependencies
type ModuleInput struct {
	fx.In

	Config    *indexerconfig.Config
	Logger    log.Logger
	Metrics   *coremetrics.Prometheus
	Indexer   *indexer.Indexer
	EventBus  event.EventBus
	Lifecycle fx.Lifecycle
}

// Module provides the HTTP server and runs it with the application
func Module() fx.Option {
	return fx.Module("http",
		fx.Provide(provideServer),
		fx.Invoke(func(*Server) {}),
	)
}

func provideServer(in ModuleInput) (*Server, error) {
	logger := in.Logger.With("module", "http")
	ws, err := websocket.NewServer(logger.GetZapLogger(), in.EventBus, in.Indexer)
	if err != nil {
		return nil, err
	}
	server := NewServer(in.Config.Listener, logger, in.Metrics.Registry(), in.Indexer, ws)
	in.Lifecycle.Append(fx.Hook{
		OnStart: func(context.Context) error {
			return server.Start()
		},
		OnStop: func(ctx context.Context) error {
			err := server.Stop(ctx)
			if cerr := ws.Close(); err == nil {
				err = cerr
			}
			return err
		},
	})
	return server, nil
}
