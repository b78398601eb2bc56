// Package event configures the in-process event bus.
package event

// EventOptions are the user-facing bus settings
type EventOptions struct {
	Enabled        bool `json:"enabled" mapstructure:"enabled"`
	MaxSubscribers int  `json:"max_subscribers" mapstructure:"max_subscribers"`
}

// Config is the resolved bus configuration
type Config struct {
	options *EventOptions
}

// DefaultOptions returns the defaults
func DefaultOptions() *EventOptions {
	return &EventOptions{
		Enabled:        defaultEnabled,
		MaxSubscribers: defaultMaxSubscribers,
	}
}

// New resolves options; nil selects the defaults
func New(options *EventOptions) *Config {
	if options == nil {
		options = DefaultOptions()
	}
	if options.MaxSubscribers < 0 {
		options.MaxSubscribers = 0
	}
	return &Config{options: options}
}

// IsEnabled reports whether events are delivered
func (c *Config) IsEnabled() bool {
	return c.options.Enabled
}

// GetMaxSubscribers returns the per-topic handler cap, 0 for none
func (c *Config) GetMaxSubscribers() int {
	return c.options.MaxSubscribers
}

// GetOptions returns the underlying options
func (c *Config) GetOptions() *EventOptions {
	return c.options
}
