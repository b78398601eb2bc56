// Package storage configures the indexer persistence backend.
package storage

import (
	"fmt"
	"strings"

	"github.com/hapi-protocol/hapi-core/pkg/interfaces/infrastructure/storage"
)

const (
	defaultBackend    = storage.BackendFile
	defaultFilePath   = "data/state.json"
	defaultBadgerPath = "data/badger"
	defaultKeyPrefix  = "hapi:indexer:"
)

// StorageOptions selects and configures a backend
type StorageOptions struct {
	Backend string `json:"backend" mapstructure:"backend"`

	// file
	FilePath string `json:"file_path" mapstructure:"file_path"`

	// badger
	BadgerPath string `json:"badger_path" mapstructure:"badger_path"`
	InMemory   bool   `json:"in_memory" mapstructure:"in_memory"`
	SyncWrites bool   `json:"sync_writes" mapstructure:"sync_writes"`

	// redis
	RedisURL  string `json:"redis_url" mapstructure:"redis_url"`
	KeyPrefix string `json:"key_prefix" mapstructure:"key_prefix"`
}

// Config is the resolved storage configuration
type Config struct {
	options StorageOptions
	backend storage.Backend
}

// New resolves options, filling defaults and validating the backend
func New(options *StorageOptions) (*Config, error) {
	var opts StorageOptions
	if options != nil {
		opts = *options
	}
	backend := storage.Backend(strings.ToLower(strings.TrimSpace(opts.Backend)))
	if backend == "" {
		backend = defaultBackend
	}
	if opts.FilePath == "" {
		opts.FilePath = defaultFilePath
	}
	if opts.BadgerPath == "" {
		opts.BadgerPath = defaultBadgerPath
	}
	if opts.KeyPrefix == "" {
		opts.KeyPrefix = defaultKeyPrefix
	}
	switch backend {
	case storage.BackendFile, storage.BackendBadger:
	case storage.BackendRedis:
		if opts.RedisURL == "" {
			return nil, fmt.Errorf("storage: redis_url is required for the redis backend")
		}
	default:
		return nil, fmt.Errorf("storage: unknown backend %q", opts.Backend)
	}
	opts.Backend = string(backend)
	return &Config{options: opts, backend: backend}, nil
}

// Backend returns the selected backend
func (c *Config) Backend() storage.Backend { return c.backend }

// GetFilePath returns the state file used by the file backend
func (c *Config) GetFilePath() string { return c.options.FilePath }

// GetBadgerPath returns the badger data directory
func (c *Config) GetBadgerPath() string { return c.options.BadgerPath }

// IsInMemory reports whether badger runs without a data directory
func (c *Config) IsInMemory() bool { return c.options.InMemory }

// IsSyncWritesEnabled reports whether badger fsyncs every write
func (c *Config) IsSyncWritesEnabled() bool { return c.options.SyncWrites }

// GetRedisURL returns the redis connection URL
func (c *Config) GetRedisURL() string { return c.options.RedisURL }

// GetKeyPrefix returns the namespace prepended to redis keys
func (c *Config) GetKeyPrefix() string { return c.options.KeyPrefix }
