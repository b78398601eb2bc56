package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	apihttp "github.com/hapi-protocol/hapi-core/internal/api/http"
	"github.com/hapi-protocol/hapi-core/internal/config"
	"github.com/hapi-protocol/hapi-core/internal/core/infrastructure/event"
	"github.com/hapi-protocol/hapi-core/internal/core/infrastructure/log"
	"github.com/hapi-protocol/hapi-core/internal/core/infrastructure/metrics"
	"github.com/hapi-protocol/hapi-core/internal/core/infrastructure/storage"
	"github.com/hapi-protocol/hapi-core/internal/indexer"
)

const startTimeout = 30 * time.Second

// Framework layers
const (
	LayerInfrastructure = "infrastructure"
	LayerBusiness       = "business"
	LayerApplication    = "application"
)

// Bootstrap assembles the fx application layer by layer
type Bootstrap struct {
	opts  *options
	fxApp *fx.App
}

// NewBootstrap creates a bootstrap for opts
func NewBootstrap(opts *options) *Bootstrap {
	return &Bootstrap{opts: opts}
}

// SetupInfrastructureLayer wires configuration, logging, events, storage and metrics
func (b *Bootstrap) SetupInfrastructureLayer() []fx.Option {
	return []fx.Option{
		config.Module(b.opts.config),
		log.Module(),
		event.Module(),
		storage.Module(),
		metrics.Module(),
	}
}

// SetupBusinessLayer wires the indexer
func (b *Bootstrap) SetupBusinessLayer() []fx.Option {
	return []fx.Option{
		indexer.Module(),
	}
}

// SetupApplicationLayer wires the HTTP API when enabled
func (b *Bootstrap) SetupApplicationLayer() []fx.Option {
	if !b.opts.enableAPI {
		return nil
	}
	return []fx.Option{
		apihttp.Module(),
	}
}

// SetupModules returns every layer in dependency order
func (b *Bootstrap) SetupModules() ([]fx.Option, error) {
	if b.opts.config == nil {
		return nil, errors.New("no configuration")
	}
	var modules []fx.Option
	modules = append(modules, b.SetupInfrastructureLayer()...)
	modules = append(modules, b.SetupBusinessLayer()...)
	modules = append(modules, b.SetupApplicationLayer()...)
	modules = append(modules, b.opts.extra...)
	return modules, nil
}

// CreateFxApp builds the fx application; fx events go to the zap logger at debug
func (b *Bootstrap) CreateFxApp() error {
	modules, err := b.SetupModules()
	if err != nil {
		return err
	}
	b.fxApp = fx.New(
		fx.Options(modules...),
		fx.WithLogger(func(logger *zap.Logger) fxevent.Logger {
			l := &fxevent.ZapLogger{Logger: logger}
			l.UseLogLevel(zap.DebugLevel)
			return l
		}),
		fx.StartTimeout(startTimeout),
	)
	return b.fxApp.Err()
}

// StartApp runs the OnStart hooks
func (b *Bootstrap) StartApp(ctx context.Context) error {
	if err := b.fxApp.Start(ctx); err != nil {
		return fmt.Errorf("start application: %w", err)
	}
	return nil
}

// StopApp runs the OnStop hooks
func (b *Bootstrap) StopApp(ctx context.Context) error {
	if err := b.fxApp.Stop(ctx); err != nil {
		return fmt.Errorf("stop application: %w", err)
	}
	return nil
}

// BootstrapApp builds and starts the application
func BootstrapApp(options ...Option) (App, error) {
	bootstrap := NewBootstrap(newOptions(options...))
	if err := bootstrap.CreateFxApp(); err != nil {
		return nil, fmt.Errorf("create application: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), startTimeout)
	defer cancel()
	if err := bootstrap.StartApp(ctx); err != nil {
		return nil, err
	}
	return &internalApp{bootstrap: bootstrap}, nil
}
