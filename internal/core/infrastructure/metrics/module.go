package metrics

import (
	"go.uber.org/fx"

	indexerconfig "github.com/hapi-protocol/hapi-core/internal/config/indexer"
	metricsInterface "github.com/hapi-protocol/hapi-core/pkg/interfaces/infrastructure/metrics"
)

// ModuleOutput exposes the recorder and the registry behind it
type ModuleOutput struct {
	fx.Out

	Recorder metricsInterface.Recorder
	Registry *Prometheus
}

// Module provides the Prometheus recorder
func Module() fx.Option {
	return fx.Module("metrics",
		fx.Provide(func(cfg *indexerconfig.Config) ModuleOutput {
			p := NewPrometheus(cfg.Indexer.Network.String())
			return ModuleOutput{Recorder: p, Registry: p}
		}),
	)
}
