package event

import (
	"go.uber.org/fx"

	eventconfig "github.com/hapi-protocol/hapi-core/internal/config/event"
	eventInterface "github.com/hapi-protocol/hapi-core/pkg/interfaces/infrastructure/event"
	"github.com/hapi-protocol/hapi-core/pkg/interfaces/infrastructure/log"
)

// ModuleInput are the event module dependencies
type ModuleInput struct {
	fx.In

	Options *eventconfig.EventOptions `optional:"true"`
	Logger  log.Logger                `optional:"true"`
}

// ModuleOutput exposes the bus
type ModuleOutput struct {
	fx.Out

	EventBus eventInterface.EventBus
}

// Module provides the event bus
func Module() fx.Option {
	return fx.Module("event",
		fx.Provide(func(input ModuleInput) ModuleOutput {
			var logger log.Logger
			if input.Logger != nil {
				logger = input.Logger.With("module", "event")
			}
			return ModuleOutput{EventBus: New(eventconfig.New(input.Options), logger)}
		}),
	)
}
