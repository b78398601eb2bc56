// Package storage defines the key/value store behind indexer persistence.
package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get for a missing key
var ErrNotFound = errors.New("key not found")

// StateKey holds the persisted indexer state
const StateKey = "state"

// Store is a small byte-oriented key/value store
type Store interface {
	// Get returns the value of key or ErrNotFound
	Get(ctx context.Context, key string) ([]byte, error)
	// Set writes value under key, replacing any previous value
	Set(ctx context.Context, key string, value []byte) error
	// Delete removes key; a missing key is not an error
	Delete(ctx context.Context, key string) error
	// Close releases the backend
	Close() error
}

// Backend names a Store implementation
type Backend string

const (
	BackendFile   Backend = "file"
	BackendBadger Backend = "badger"
	BackendRedis  Backend = "redis"
)
