package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rpggio/gantt/internal/domain/timeline"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("GANTT_CONFIG_PATH", "")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
	require.Equal(t, 50, cfg.History.Capacity)
	require.Equal(t, timeline.DefaultOptions(), cfg.Timeline)
	require.Equal(t, TransportHTTP, cfg.Transport.Mode)
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gantt.yaml")
	data := []byte(`
server:
  port: 9090
db:
  path: /tmp/plans.db
transport:
  mode: stdio
history:
  capacity: 10
timeline:
  pixels_per_day: 30
  min_pixels_per_day: 2
  max_pixels_per_day: 200
`)
	require.NoError(t, os.WriteFile(path, data, 0o600))

	t.Setenv("GANTT_CONFIG_PATH", path)
	t.Setenv("GANTT_SERVER_PORT", "7070")
	t.Setenv("GANTT_AUTH_ENABLED", "false")
	t.Setenv("GANTT_LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 7070, cfg.Server.Port)
	require.Equal(t, "0.0.0.0", cfg.Server.Host)
	require.Equal(t, "/tmp/plans.db", cfg.DB.Path)
	require.Equal(t, TransportStdio, cfg.Transport.Mode)
	require.False(t, cfg.Auth.Enabled)
	require.Equal(t, "debug", cfg.Log.Level)
	require.Equal(t, 10, cfg.History.Capacity)
	require.Equal(t, timeline.Options{PixelsPerDay: 30, MinPixelsPerDay: 2, MaxPixelsPerDay: 200}, cfg.Timeline)
}

func TestLoad_InvalidValues(t *testing.T) {
	t.Setenv("GANTT_CONFIG_PATH", "")

	t.Setenv("GANTT_SERVER_PORT", "eighty")
	_, err := Load()
	require.Error(t, err)
	t.Setenv("GANTT_SERVER_PORT", "")

	t.Setenv("GANTT_PIXELS_PER_DAY", "500")
	_, err = Load()
	require.ErrorIs(t, err, ErrInvalidConfig)
	require.ErrorIs(t, err, timeline.ErrInvalidOptions)
	t.Setenv("GANTT_PIXELS_PER_DAY", "")

	t.Setenv("GANTT_TRANSPORT", "carrier-pigeon")
	_, err = Load()
	require.ErrorIs(t, err, ErrInvalidConfig)
	t.Setenv("GANTT_TRANSPORT", "")

	t.Setenv("GANTT_HISTORY_CAPACITY", "0")
	_, err = Load()
	require.ErrorIs(t, err, ErrInvalidConfig)
}

func TestLoad_MissingFile(t *testing.T) {
	t.Setenv("GANTT_CONFIG_PATH", filepath.Join(t.TempDir(), "absent.yaml"))
	_, err := Load()
	require.Error(t, err)
}
