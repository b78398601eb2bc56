// Package app assembles and runs the indexer application.
package app

import (
	"context"
	"os"
	"time"
)

const stopTimeout = 60 * time.Second

// App is a started indexer application
type App interface {
	// Stop runs the shutdown hooks
	Stop() error
	// Wait blocks until a signal arrives or a module asks for shutdown,
	// then stops the application
	Wait() (os.Signal, error)
	// Done delivers SIGINT, SIGTERM or the shutdown request of a module
	Done() <-chan os.Signal
}

type internalApp struct {
	bootstrap *Bootstrap
}

func (a *internalApp) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()
	return a.bootstrap.StopApp(ctx)
}

func (a *internalApp) Wait() (os.Signal, error) {
	sig := <-a.Done()
	return sig, a.Stop()
}

func (a *internalApp) Done() <-chan os.Signal {
	return a.bootstrap.fxApp.Done()
}

// Start builds and starts the application
func Start(options ...Option) (App, error) {
	return BootstrapApp(options...)
}
