package cmd

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/scriptseq/scriptseq/internal/config"
)

func TestWriteConfigYAMLRedactsSecrets(t *testing.T) {
	cfg := testConfig(t)
	cfg.Store.AuthToken = "super-secret"

	var buf bytes.Buffer
	require.NoError(t, writeConfigYAML(&buf, cfg))

	rendered := buf.String()
	require.NotContains(t, rendered, "super-secret")
	require.Contains(t, rendered, redacted)
	require.Contains(t, rendered, "base_url: https://counter.example.test:8080/")
	require.Equal(t, "super-secret", cfg.Store.AuthToken)
}

func TestBuildInitConfigRoundTrips(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	data, err := buildInitConfig()
	require.NoError(t, err)
	require.Contains(t, string(data), "# scriptseq config")

	var decoded config.Config
	require.NoError(t, yaml.Unmarshal(data, &decoded))
	require.Equal(t, config.DefaultBaseURL, decoded.Counter.BaseURL)
	require.Equal(t, 24*time.Hour, decoded.Cooldown)
	require.Equal(t, 5*time.Second, decoded.Counter.Timeout)
	require.Equal(t, "file", decoded.State.Backend)
}

func TestFormatTimeAgo(t *testing.T) {
	require.Equal(t, "unknown", formatTimeAgo(time.Time{}))
	require.Equal(t, "just now", formatTimeAgo(time.Now()))
	require.Equal(t, "2 hours ago", formatTimeAgo(time.Now().Add(-2*time.Hour-time.Minute)))
	require.Equal(t, "1 day ago", formatTimeAgo(time.Now().Add(-25*time.Hour)))
	require.Equal(t, "in the future", formatTimeAgo(time.Now().Add(time.Hour)))
}

func TestFormatFileSize(t *testing.T) {
	require.Equal(t, "29 bytes", formatFileSize(29))
	require.Equal(t, "1.5 KB", formatFileSize(1536))
}
