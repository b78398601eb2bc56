package app

import (
	"go.uber.org/fx"

	indexerconfig "github.com/hapi-protocol/hapi-core/internal/config/indexer"
)

// Option configures the application
type Option func(*options)

type options struct {
	config    *indexerconfig.Config
	enableAPI bool
	extra     []fx.Option
}

// WithConfig sets the loaded indexer configuration
func WithConfig(cfg *indexerconfig.Config) Option {
	return func(o *options) {
		o.config = cfg
	}
}

// WithoutAPI leaves the HTTP server out
func WithoutAPI() Option {
	return func(o *options) {
		o.enableAPI = false
	}
}

// WithFxOptions appends options to the graph, e.g. fx.Replace in tests
func WithFxOptions(opts ...fx.Option) Option {
	return func(o *options) {
		o.extra = append(o.extra, opts...)
	}
}

func newOptions(opts ...Option) *options {
	o := &options{enableAPI: true}
	for _, opt := range opts {
		opt(o)
	}
	return o
}
