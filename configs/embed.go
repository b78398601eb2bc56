// Package configs ships annotated example configuration files for the indexer.
package configs

import _ "embed"

//go:embed configuration.example.toml
var configurationExample []byte

//go:embed secret.example.toml
var secretExample []byte

// ConfigurationExample is a complete configuration.toml
func ConfigurationExample() []byte {
	return configurationExample
}

// SecretExample is a secret.toml holding the webhook JWT secret
func SecretExample() []byte {
	return secretExample
}
