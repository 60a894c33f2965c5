package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "stdio", cfg.Transport.Mode)
	require.Equal(t, "0.0.0.0", cfg.Server.Host)
	require.Equal(t, 8080, cfg.Server.Port)
	require.Equal(t, "file", cfg.Storage.Backend)
	require.Equal(t, "ledgermind.json", cfg.Storage.Path)
	require.Equal(t, Duration(10*time.Second), cfg.Flush.CheckInterval)
	require.Equal(t, Duration(30*time.Second), cfg.Flush.IdleAfter)
	require.True(t, cfg.Lifecycle.AutoScale)
	require.InDelta(t, -10.0, cfg.Lifecycle.KillThreshold, 1e-9)
	require.InDelta(t, 50.0, cfg.Lifecycle.ScaleThreshold, 1e-9)
	require.Equal(t, "info", cfg.Log.Level)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
transport:
  mode: http
server:
  port: 9090
storage:
  backend: sqlite
  path: /tmp/state.db
flush:
  check_interval: 5s
  idle_after: 1m
lifecycle:
  kill_threshold: -25
log:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	t.Setenv("LEDGERMIND_CONFIG_PATH", path)

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "http", cfg.Transport.Mode)
	require.Equal(t, 9090, cfg.Server.Port)
	require.Equal(t, "sqlite", cfg.Storage.Backend)
	require.Equal(t, Duration(5*time.Second), cfg.Flush.CheckInterval)
	require.Equal(t, Duration(time.Minute), cfg.Flush.IdleAfter)
	require.InDelta(t, -25.0, cfg.Lifecycle.KillThreshold, 1e-9)
	require.Equal(t, "debug", cfg.Log.Level)
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("transport:\n  mode: http\n"), 0o644))
	t.Setenv("LEDGERMIND_CONFIG_PATH", path)
	t.Setenv("LEDGERMIND_TRANSPORT_MODE", "stdio")
	t.Setenv("LEDGERMIND_SERVER_PORT", "7070")
	t.Setenv("LEDGERMIND_STATE_PATH", "/var/lib/ledgermind/state.json")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "stdio", cfg.Transport.Mode)
	require.Equal(t, 7070, cfg.Server.Port)
	require.Equal(t, "/var/lib/ledgermind/state.json", cfg.Storage.Path)
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Run("unknown transport mode", func(t *testing.T) {
		t.Setenv("LEDGERMIND_TRANSPORT_MODE", "carrier-pigeon")
		_, err := Load()
		require.Error(t, err)
	})

	t.Run("bad port", func(t *testing.T) {
		t.Setenv("LEDGERMIND_SERVER_PORT", "not-a-number")
		_, err := Load()
		require.Error(t, err)
	})

	t.Run("bad duration in file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("flush:\n  check_interval: soon\n"), 0o644))
		t.Setenv("LEDGERMIND_CONFIG_PATH", path)
		_, err := Load()
		require.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		t.Setenv("LEDGERMIND_CONFIG_PATH", filepath.Join(t.TempDir(), "nope.yaml"))
		_, err := Load()
		require.Error(t, err)
	})
}
