package config

import (
	"time"
)

// Config represents the complete application configuration.
// Values are layered: built-in defaults, the user config file, then
// SCRIPTSEQ_* environment variables and command-line flags.
type Config struct {
	Counter  CounterConfig `mapstructure:"counter" yaml:"counter"`
	Cooldown time.Duration `mapstructure:"cooldown" yaml:"cooldown"`
	State    StateConfig   `mapstructure:"state" yaml:"state"`
	Store    StoreConfig   `mapstructure:"store" yaml:"store"`
	Logging  LoggingConfig `mapstructure:"logging" yaml:"logging"`
}

// CounterConfig describes the remote counter service.
type CounterConfig struct {
	BaseURL string        `mapstructure:"base_url" yaml:"base_url"`
	Path    string        `mapstructure:"path" yaml:"path"`
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// StateConfig selects where the last generated sequence is kept.
type StateConfig struct {
	// Backend is "file" (single-line record) or "libsql".
	Backend string `mapstructure:"backend" yaml:"backend"`
	Path    string `mapstructure:"path" yaml:"path"`
}

// StoreConfig contains database configuration for the libsql state backend
type StoreConfig struct {
	Path      string `mapstructure:"path" yaml:"path"`
	URL       string `mapstructure:"url" yaml:"url"`
	AuthToken string `mapstructure:"auth_token" yaml:"auth_token"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	// Level controls the minimum log level
	// Valid values: trace, debug, info, warn, error
	Level string `mapstructure:"level" yaml:"level"`
}
