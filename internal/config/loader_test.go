package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestViper(t *testing.T) *viper.Viper {
	t.Helper()
	v := viper.New()
	SetDefaults(v)
	BindEnv(v)
	return v
}

func TestLoadDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := Load(newTestViper(t))
	require.NoError(t, err)

	assert.Equal(t, DefaultBaseURL, cfg.Counter.BaseURL)
	assert.Equal(t, DefaultCounterPath, cfg.Counter.Path)
	assert.Equal(t, 5*time.Second, cfg.Counter.Timeout)
	assert.Equal(t, 24*time.Hour, cfg.Cooldown)
	assert.Equal(t, "file", cfg.State.Backend)
	assert.Equal(t, filepath.Join(home, "VS", "Extensions", "Data", "spsa.cfg"), cfg.State.Path)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.NotEmpty(t, cfg.Store.Path)
}

func TestLoadConfigFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `counter:
  base_url: http://localhost:9000/counter
  timeout: 750ms
cooldown: 1h
state:
  backend: LibSQL
store:
  path: /tmp/scriptseq-test.db
logging:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	v := newTestViper(t)
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())

	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:9000/counter", cfg.Counter.BaseURL)
	assert.Equal(t, DefaultCounterPath, cfg.Counter.Path)
	assert.Equal(t, 750*time.Millisecond, cfg.Counter.Timeout)
	assert.Equal(t, time.Hour, cfg.Cooldown)
	assert.Equal(t, "libsql", cfg.State.Backend)
	assert.Equal(t, "/tmp/scriptseq-test.db", cfg.Store.Path)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("SCRIPTSEQ_COUNTER_TIMEOUT", "2s")
	t.Setenv("SCRIPTSEQ_STATE_PATH", "~/custom/spsa.cfg")

	cfg, err := Load(newTestViper(t))
	require.NoError(t, err)

	home, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.Equal(t, 2*time.Second, cfg.Counter.Timeout)
	assert.Equal(t, filepath.Join(home, "custom", "spsa.cfg"), cfg.State.Path)
}

func TestLoadRejectsInvalid(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cases := map[string]map[string]any{
		"RelativeBaseURL": {"counter.base_url": "counter.local/"},
		"FTPBaseURL":      {"counter.base_url": "ftp://counter.local/"},
		"UnknownBackend":  {"state.backend": "redis"},
		"BadDuration":     {"cooldown": "tomorrow"},
	}

	for name, overrides := range cases {
		t.Run(name, func(t *testing.T) {
			v := newTestViper(t)
			for key, value := range overrides {
				v.Set(key, value)
			}
			_, err := Load(v)
			require.Error(t, err)
		})
	}
}

func TestLoadNilSource(t *testing.T) {
	_, err := Load(nil)
	require.Error(t, err)
}

func TestDefaultStatePathUsesHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	require.Equal(t, filepath.Join(home, "VS", "Extensions", "Data", "spsa.cfg"), DefaultStatePath())
}

func TestExpandHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	require.Equal(t, home, expandHome("~"))
	require.Equal(t, filepath.Join(home, "a", "b"), expandHome("~/a/b"))
	require.Equal(t, "/abs/path", expandHome("/abs/path"))
	require.Equal(t, "~user/x", expandHome("~user/x"))
}
