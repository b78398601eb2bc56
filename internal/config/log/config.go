// Package log holds the logger configuration.
package log

import (
	"strings"

	"go.uber.org/zap/zapcore"
)

// LogOptions configures the logger
type LogOptions struct {
	Level     string `json:"level" mapstructure:"level"`
	ToConsole bool   `json:"to_console" mapstructure:"to_console"`
	// Console is "stdout" (default) or "stderr"
	Console  string `json:"console" mapstructure:"console"`
	FilePath string `json:"file_path" mapstructure:"file_path"` // empty: no file output
	JSON     bool   `json:"json" mapstructure:"json"`

	MaxSize    int  `json:"max_size" mapstructure:"max_size"`
	MaxBackups int  `json:"max_backups" mapstructure:"max_backups"`
	MaxAge     int  `json:"max_age" mapstructure:"max_age"`
	Compress   bool `json:"compress" mapstructure:"compress"`

	EnableCaller     bool `json:"enable_caller" mapstructure:"enable_caller"`
	EnableStacktrace bool `json:"enable_stacktrace" mapstructure:"enable_stacktrace"`
}

// Config is the resolved logger configuration
type Config struct {
	options *LogOptions
}

// DefaultOptions returns the defaults: info level, JSON to stdout, no file
func DefaultOptions() *LogOptions {
	return &LogOptions{
		Level:            defaultLogLevel,
		ToConsole:        defaultToConsole,
		Console:          "stdout",
		JSON:             defaultJSON,
		MaxSize:          defaultMaxSize,
		MaxBackups:       defaultMaxBackups,
		MaxAge:           defaultMaxAge,
		Compress:         defaultCompress,
		EnableCaller:     defaultEnableCaller,
		EnableStacktrace: defaultEnableStacktrace,
	}
}

// New creates a configuration; nil options select the defaults and zero
// rotation settings are filled in
func New(options *LogOptions) *Config {
	if options == nil {
		return &Config{options: DefaultOptions()}
	}
	opts := *options
	if opts.Level == "" {
		opts.Level = defaultLogLevel
	}
	if opts.MaxSize == 0 {
		opts.MaxSize = defaultMaxSize
	}
	if opts.MaxBackups == 0 {
		opts.MaxBackups = defaultMaxBackups
	}
	if opts.MaxAge == 0 {
		opts.MaxAge = defaultMaxAge
	}
	return &Config{options: &opts}
}

// GetOptions returns the resolved options
func (c *Config) GetOptions() *LogOptions {
	return c.options
}

// GetZapLevel maps the level name, falling back to info
func (c *Config) GetZapLevel() zapcore.Level {
	if level, ok := defaultLevelMap[strings.ToLower(c.options.Level)]; ok {
		return level
	}
	return zapcore.InfoLevel
}

func (c *Config) IsConsoleEnabled() bool { return c.options.ToConsole }

// IsStderr reports whether console output goes to stderr
func (c *Config) IsStderr() bool { return c.options.Console == "stderr" }

func (c *Config) GetFilePath() string { return c.options.FilePath }

func (c *Config) IsJSON() bool { return c.options.JSON }

func (c *Config) GetMaxSize() int { return c.options.MaxSize }

func (c *Config) GetMaxBackups() int { return c.options.MaxBackups }

func (c *Config) GetMaxAge() int { return c.options.MaxAge }

func (c *Config) IsCompressionEnabled() bool { return c.options.Compress }

func (c *Config) IsCallerEnabled() bool { return c.options.EnableCaller }

func (c *Config) IsStacktraceEnabled() bool { return c.options.EnableStacktrace }

// CreateJSONEncoder is used for files and for JSON console output
func (c *Config) CreateJSONEncoder() zapcore.Encoder {
	return zapcore.NewJSONEncoder(zapcore.EncoderConfig{
		TimeKey:        "timestamp",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "message",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
	})
}

// CreateConsoleEncoder is the human-readable encoder
func (c *Config) CreateConsoleEncoder() zapcore.Encoder {
	return zapcore.NewConsoleEncoder(zapcore.EncoderConfig{
		TimeKey:        "timestamp",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "message",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeTime:     zapcore.TimeEncoderOfLayout("15:04:05.000"),
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
		EncodeLevel:    zapcore.CapitalLevelEncoder,
	})
}
