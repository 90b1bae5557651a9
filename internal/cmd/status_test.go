package cmd

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/scriptseq/scriptseq/internal/core"
	"github.com/scriptseq/scriptseq/internal/core/engine"
)

func TestBuildStatusWithoutRecord(t *testing.T) {
	limiter := &engine.RateLimiter{}
	status := buildStatus("file", "/tmp/spsa.cfg", nil, limiter, time.Now())

	require.False(t, status.Present)
	require.True(t, status.Allowed)
	require.Zero(t, status.Remaining)
	require.Equal(t, engine.DefaultCooldown, status.Cooldown)
}

func TestBuildStatusWithinCooldown(t *testing.T) {
	issued := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	record := &core.SequenceRecord{IssuedAt: issued, Token: "42-abc.sql"}
	limiter := &engine.RateLimiter{Cooldown: 24 * time.Hour}

	status := buildStatus("file", "/tmp/spsa.cfg", record, limiter, issued.Add(20*time.Hour))
	require.True(t, status.Present)
	require.False(t, status.Allowed)
	require.Equal(t, "42-abc.sql", status.Token)
	require.Equal(t, 4*time.Hour, status.Remaining)
	require.Equal(t, issued.Add(24*time.Hour), status.NextAllowedAt)

	status = buildStatus("file", "/tmp/spsa.cfg", record, limiter, issued.Add(24*time.Hour))
	require.True(t, status.Allowed)
}

func TestReadStatusReportsCorruptState(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spsa.cfg")
	require.NoError(t, os.WriteFile(path, []byte("not-a-record"), 0o644))

	_, err := readStatus(context.Background(), newFileStore(t, path), &engine.RateLimiter{}, time.Now())
	require.ErrorIs(t, err, core.ErrCorruptState)
}

func TestReadStatusFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spsa.cfg")
	require.NoError(t, os.WriteFile(path, []byte("637134336000000000,42-abc.sql"), 0o644))

	status, err := readStatus(context.Background(), newFileStore(t, path), &engine.RateLimiter{}, time.Date(2020, 1, 3, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Equal(t, "file", status.Backend)
	require.Equal(t, path, status.Location)
	require.Equal(t, "42-abc.sql", status.Token)
	require.True(t, status.Allowed)
}
