package indexer

const (
	// ConfigPathEnv and SecretPathEnv override the configuration file locations
	ConfigPathEnv = "CONFIG_PATH"
	SecretPathEnv = "SECRET_PATH"

	DefaultConfigPath = "configuration.toml"
	DefaultSecretPath = "secret.toml"

	// envPrefix namespaces per-key environment overrides, e.g. HAPI_INDEXER_INDEXER_WEBHOOK_URL
	envPrefix = "HAPI_INDEXER"

	defaultLogLevel      = "info"
	defaultIsJSONLogging = true
	defaultListener      = "0.0.0.0:3000"

	defaultWaitIntervalMs      = 1000
	defaultStateFile           = "data/state.json"
	defaultFetchingDelayMs     = 100
	defaultPageSize            = 500
	defaultHeartbeatIntervalMs = 60_000
	defaultPersistence         = "file"
	defaultBadgerPath          = "data/badger"
	defaultRedisKeyPrefix      = "hapi:indexer:"
	defaultCacheTTLSeconds     = 600
)

// defaults lists every key so env overrides reach keys absent from the files
var defaults = map[string]any{
	"log_level":                     defaultLogLevel,
	"is_json_logging":               defaultIsJSONLogging,
	"listener":                      defaultListener,
	"log.file_path":                 "",
	"log.max_size":                  0,
	"log.max_backups":               0,
	"log.max_age":                   0,
	"log.compress":                  true,
	"indexer.network":               "",
	"indexer.chain_id":              0,
	"indexer.indexer_id":            "",
	"indexer.rpc_node_url":          "",
	"indexer.webhook_url":           "",
	"indexer.contract_address":      "",
	"indexer.wait_interval_ms":      defaultWaitIntervalMs,
	"indexer.state_file":            defaultStateFile,
	"indexer.fetching_delay":        defaultFetchingDelayMs,
	"indexer.page_size":             defaultPageSize,
	"indexer.heartbeat_interval_ms": defaultHeartbeatIntervalMs,
	"indexer.jwt_secret":            "",
	"indexer.persistence":           defaultPersistence,
	"indexer.badger_path":           defaultBadgerPath,
	"indexer.redis_url":             "",
	"indexer.redis_key_prefix":      defaultRedisKeyPrefix,
	"indexer.cache_ttl_seconds":     defaultCacheTTLSeconds,
}
