// Package config provides configuration loading for scriptseq.
// Defaults are registered on a viper instance, overlaid by the user config
// file and SCRIPTSEQ_* environment variables, then decoded into Config.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	gfconfig "github.com/fulmenhq/gofulmen/config"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

const (
	// AppName is used for XDG directories and the database file name.
	AppName = "scriptseq"

	// EnvPrefix prefixes environment overrides, e.g. SCRIPTSEQ_COUNTER_TIMEOUT.
	EnvPrefix = "SCRIPTSEQ"

	DefaultBaseURL     = "https://counter.spsa.pitsolutions.com:8080/"
	DefaultCounterPath = "Home/Generate"
	DefaultTimeout     = 5 * time.Second
	DefaultCooldown    = 24 * time.Hour
	DefaultBackend     = "file"
)

// SetDefaults registers default configuration values on v.
func SetDefaults(v *viper.Viper) {
	// Counter defaults
	v.SetDefault("counter.base_url", DefaultBaseURL)
	v.SetDefault("counter.path", DefaultCounterPath)
	v.SetDefault("counter.timeout", DefaultTimeout.String())

	v.SetDefault("cooldown", DefaultCooldown.String())

	// State defaults
	v.SetDefault("state.backend", DefaultBackend)
	v.SetDefault("state.path", DefaultStatePath())

	// Store defaults (libsql backend only)
	v.SetDefault("store.path", DefaultStorePath())
	v.SetDefault("store.url", "")
	v.SetDefault("store.auth_token", "")

	// Logging defaults
	v.SetDefault("logging.level", "info")
}

// BindEnv enables SCRIPTSEQ_* overrides for every nested key.
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// Load decodes the settings held by v into a validated Config.
func Load(v *viper.Viper) (*Config, error) {
	if v == nil {
		return nil, errors.New("config source is required")
	}

	cfg := &Config{}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           cfg,
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create decoder: %w", err)
	}

	if err := decoder.Decode(v.AllSettings()); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	normalize(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate reports configuration values the generator cannot run with.
func (c *Config) Validate() error {
	base, err := url.Parse(strings.TrimSpace(c.Counter.BaseURL))
	if err != nil {
		return fmt.Errorf("invalid counter.base_url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return fmt.Errorf("invalid counter.base_url %q: scheme must be http or https", c.Counter.BaseURL)
	}
	if base.Host == "" {
		return fmt.Errorf("invalid counter.base_url %q: host is required", c.Counter.BaseURL)
	}

	switch c.State.Backend {
	case "file":
		if strings.TrimSpace(c.State.Path) == "" {
			return errors.New("state.path is required for the file backend")
		}
	case "libsql":
		if strings.TrimSpace(c.Store.Path) == "" && strings.TrimSpace(c.Store.URL) == "" {
			return errors.New("store.path or store.url is required for the libsql backend")
		}
	default:
		return fmt.Errorf("unsupported state.backend: %s", c.State.Backend)
	}

	return nil
}

func normalize(cfg *Config) {
	cfg.Counter.BaseURL = strings.TrimSpace(cfg.Counter.BaseURL)
	if cfg.Counter.BaseURL == "" {
		cfg.Counter.BaseURL = DefaultBaseURL
	}
	if strings.TrimSpace(cfg.Counter.Path) == "" {
		cfg.Counter.Path = DefaultCounterPath
	}
	if cfg.Counter.Timeout <= 0 {
		cfg.Counter.Timeout = DefaultTimeout
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = DefaultCooldown
	}

	cfg.State.Backend = strings.ToLower(strings.TrimSpace(cfg.State.Backend))
	if cfg.State.Backend == "" {
		cfg.State.Backend = DefaultBackend
	}
	cfg.State.Path = expandHome(strings.TrimSpace(cfg.State.Path))
	if cfg.State.Path == "" {
		cfg.State.Path = DefaultStatePath()
	}

	if strings.TrimSpace(cfg.Store.URL) == "" && strings.TrimSpace(cfg.Store.Path) == "" {
		cfg.Store.Path = DefaultStorePath()
	}
}

// DefaultConfigPath returns the XDG-compliant path to the user config file.
func DefaultConfigPath() string {
	configDir := gfconfig.GetAppConfigDir(AppName)
	if strings.TrimSpace(configDir) == "" {
		return ""
	}
	return filepath.Join(configDir, "config.yaml")
}

// DefaultStatePath returns the per-user state file path. It is the location
// the editor command has always used, so existing records keep working.
func DefaultStatePath() string {
	home, err := os.UserHomeDir()
	if err != nil || strings.TrimSpace(home) == "" {
		dataDir := gfconfig.GetAppDataDir(AppName)
		if strings.TrimSpace(dataDir) == "" {
			return filepath.Join(".", "spsa.cfg")
		}
		return filepath.Join(dataDir, "spsa.cfg")
	}
	return filepath.Join(home, "VS", "Extensions", "Data", "spsa.cfg")
}

// DefaultStorePath returns the XDG-compliant path to the database file.
func DefaultStorePath() string {
	dataDir := gfconfig.GetAppDataDir(AppName)
	if strings.TrimSpace(dataDir) == "" {
		return "./" + AppName + ".db"
	}
	return filepath.Join(dataDir, AppName+".db")
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
