// Package indexer loads the indexer configuration from TOML files and the environment.
package indexer

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/viper"

	eventconfig "github.com/hapi-protocol/hapi-core/internal/config/event"
	logconfig "github.com/hapi-protocol/hapi-core/internal/config/log"
	storageconfig "github.com/hapi-protocol/hapi-core/internal/config/storage"
	"github.com/hapi-protocol/hapi-core/pkg/types"
)

// Config is the whole indexer configuration
type Config struct {
	LogLevel      string `mapstructure:"log_level"`
	IsJSONLogging bool   `mapstructure:"is_json_logging"`
	Listener      string `mapstructure:"listener"`

	// Log holds file output and rotation; level and encoding come from the keys above
	Log LogSection `mapstructure:"log"`

	Indexer IndexerConfig `mapstructure:"indexer"`
}

// LogSection is the [log] table
type LogSection struct {
	FilePath   string `mapstructure:"file_path"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
	Compress   bool   `mapstructure:"compress"`
}

// IndexerConfig is the [indexer] table
type IndexerConfig struct {
	NetworkName     string `mapstructure:"network"`
	ChainID         uint64 `mapstructure:"chain_id"`
	IndexerID       string `mapstructure:"indexer_id"`
	RPCNodeURL      string `mapstructure:"rpc_node_url"`
	WebhookURL      string `mapstructure:"webhook_url"`
	ContractAddress string `mapstructure:"contract_address"`

	WaitIntervalMs      uint64 `mapstructure:"wait_interval_ms"`
	StateFile           string `mapstructure:"state_file"`
	FetchingDelayMs     uint64 `mapstructure:"fetching_delay"`
	PageSize            uint64 `mapstructure:"page_size"`
	HeartbeatIntervalMs uint64 `mapstructure:"heartbeat_interval_ms"`

	JWTSecret string `mapstructure:"jwt_secret"`

	Persistence    string `mapstructure:"persistence"`
	BadgerPath     string `mapstructure:"badger_path"`
	RedisURL       string `mapstructure:"redis_url"`
	RedisKeyPrefix string `mapstructure:"redis_key_prefix"`

	CacheTTLSeconds uint64 `mapstructure:"cache_ttl_seconds"`

	Network types.Network `mapstructure:"-"`
	ID      uuid.UUID     `mapstructure:"-"`
}

// WaitInterval is the sleep between deadline checks while waiting
func (c IndexerConfig) WaitInterval() time.Duration {
	return time.Duration(c.WaitIntervalMs) * time.Millisecond
}

// FetchingDelay is the pause between RPC pages
func (c IndexerConfig) FetchingDelay() time.Duration {
	return time.Duration(c.FetchingDelayMs) * time.Millisecond
}

// HeartbeatInterval is the period of heartbeat requests
func (c IndexerConfig) HeartbeatInterval() time.Duration {
	return time.Duration(c.HeartbeatIntervalMs) * time.Millisecond
}

// CacheTTL is the lifetime of cached entities
func (c IndexerConfig) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

// Load reads CONFIG_PATH (required) and SECRET_PATH (optional)
func Load() (*Config, error) {
	configPath := os.Getenv(ConfigPathEnv)
	if configPath == "" {
		configPath = DefaultConfigPath
	}
	secretPath := os.Getenv(SecretPathEnv)
	if secretPath == "" {
		secretPath = DefaultSecretPath
	}
	return LoadFiles(configPath, secretPath)
}

// LoadFiles reads the given files; the secret file may be missing
func LoadFiles(configPath, secretPath string) (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.SetConfigType("toml")
	v.SetConfigFile(configPath)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read %s: %w", configPath, err)
	}
	if secretPath != "" {
		if _, err := os.Stat(secretPath); err == nil {
			v.SetConfigFile(secretPath)
			if err := v.MergeInConfig(); err != nil {
				return nil, fmt.Errorf("read %s: %w", secretPath, err)
			}
		} else if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("stat %s: %w", secretPath, err)
		}
	}
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks required keys and resolves the network and indexer id
func (c *Config) Validate() error {
	ic := &c.Indexer
	var missing []string
	for key, value := range map[string]string{
		"indexer.network":          ic.NetworkName,
		"indexer.rpc_node_url":     ic.RPCNodeURL,
		"indexer.webhook_url":      ic.WebhookURL,
		"indexer.contract_address": ic.ContractAddress,
		"indexer.jwt_secret":       ic.JWTSecret,
	} {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return fmt.Errorf("configuration: missing %s", strings.Join(missing, ", "))
	}

	network, err := types.ParseNetwork(ic.NetworkName)
	if err != nil {
		return fmt.Errorf("configuration: %w", err)
	}
	ic.Network = network
	ic.WebhookURL = strings.TrimRight(ic.WebhookURL, "/")

	if ic.PageSize == 0 {
		return fmt.Errorf("configuration: indexer.page_size must be positive")
	}
	if ic.WaitIntervalMs == 0 {
		return fmt.Errorf("configuration: indexer.wait_interval_ms must be positive")
	}

	if ic.IndexerID != "" {
		id, err := uuid.Parse(ic.IndexerID)
		if err != nil {
			return fmt.Errorf("configuration: indexer.indexer_id: %w", err)
		}
		ic.ID = id
	} else {
		// stable across restarts for the same deployment
		ic.ID = uuid.NewSHA1(uuid.NameSpaceURL, []byte(network.String()+"/"+ic.ContractAddress))
	}

	if _, err := c.StorageOptions(); err != nil {
		return fmt.Errorf("configuration: %w", err)
	}
	return nil
}

// LogOptions maps the logging keys onto the logger options
func (c *Config) LogOptions() *logconfig.LogOptions {
	opts := logconfig.DefaultOptions()
	opts.Level = c.LogLevel
	opts.JSON = c.IsJSONLogging
	opts.FilePath = c.Log.FilePath
	opts.MaxSize = c.Log.MaxSize
	opts.MaxBackups = c.Log.MaxBackups
	opts.MaxAge = c.Log.MaxAge
	opts.Compress = c.Log.Compress
	return opts
}

// StorageOptions maps the persistence keys onto the storage configuration
func (c *Config) StorageOptions() (*storageconfig.Config, error) {
	return storageconfig.New(&storageconfig.StorageOptions{
		Backend:    c.Indexer.Persistence,
		FilePath:   c.Indexer.StateFile,
		BadgerPath: c.Indexer.BadgerPath,
		RedisURL:   c.Indexer.RedisURL,
		KeyPrefix:  c.Indexer.RedisKeyPrefix,
	})
}

// EventOptions configures the in-process bus
func (c *Config) EventOptions() *eventconfig.EventOptions {
	return eventconfig.DefaultOptions()
}
